package model

type NoteEventType uint8

const (
	NoteOn NoteEventType = iota
	NoteOff
)

type NoteEvent struct {
	Type     NoteEventType
	Pitch    uint8
	Velocity uint8
}

type Track struct {
	Name   string
	Events []NoteEvent
}

// Score is the multi-track note-event structure handed over by a score reader.
type Score struct {
	Tracks []Track
}
