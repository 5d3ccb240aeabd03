// Package sample writes short standalone MIDI files: the opening of a
// work's melody track, or a phrase of plain notes.
package sample

import (
	"bytes"
	"os"

	"github.com/jeffreytso/contourdex/melody"
	"github.com/jeffreytso/contourdex/midi"
	"github.com/jeffreytso/contourdex/model"
	"github.com/mdobak/go-xerrors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const DefaultExcerptNotes = 16

// Create copies the melody track of mf up to its first maxNotes sounding
// notes. Meta and controller events before the cut are kept with their
// delta clamped to one tick so the excerpt starts immediately.
func Create(mf *smf.SMF, maxNotes int) (*smf.SMF, error) {
	idx, ok := melody.SelectMelodyTrack(midi.ToScore(mf))
	if !ok {
		return nil, xerrors.New("no tracks to excerpt", model.ErrEmptyMelody)
	}

	res := smf.New()
	res.TimeFormat = mf.TimeFormat

	var newTrack smf.Track
	var numNotes int
	started := false
	for _, evt := range mf.Tracks[idx] {
		var ch, key, vel uint8
		switch {
		case evt.Message.GetNoteOn(&ch, &key, &vel) && vel > 0:
			if numNotes >= maxNotes {
				newTrack.Close(0)
				return res, res.Add(newTrack)
			}
			numNotes++
			started = true
			newTrack = append(newTrack, evt)
		case evt.Message.Is(gomidi.NoteOnMsg), evt.Message.Is(gomidi.NoteOffMsg):
			newTrack = append(newTrack, evt)
		case isEndOfTrack(evt.Message):
		default:
			if !started {
				evt.Delta = min(evt.Delta, 1)
			}
			newTrack = append(newTrack, evt)
		}
	}
	newTrack.Close(0)
	return res, res.Add(newTrack)
}

func isEndOfTrack(m smf.Message) bool {
	return len(m) >= 2 && m[0] == 0xFF && m[1] == 0x2F
}

// FromNotes builds a single-track file playing notes back to back, each
// lasting ticks.
func FromNotes(notes []uint8, ticks uint32) *smf.SMF {
	res := smf.New()
	var track smf.Track
	for _, key := range notes {
		track.Add(0, gomidi.NoteOn(0, key, 100))
		track.Add(ticks, gomidi.NoteOff(0, key))
	}
	track.Close(0)
	res.Add(track)
	return res
}

// Bytes serialises s as a standard MIDI file.
func Bytes(s *smf.SMF) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, xerrors.New("write midi", err)
	}
	return buf.Bytes(), nil
}

func WriteFile(path string, s *smf.SMF) error {
	b, err := Bytes(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return xerrors.New("write "+path, err)
	}
	return nil
}
