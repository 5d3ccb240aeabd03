package model

// PitchSequence is an ordered list of MIDI pitch numbers. Symbolic sources
// produce integral values, audio sources fractional ones.
type PitchSequence = []float64

// Contour is a Parsons code string over the alphabet *UDR.
type Contour = string

// PitchSource is anything that can produce an ordered pitch sequence.
type PitchSource interface {
	PitchSequence() (PitchSequence, error)
}

type Waveform struct {
	Samples    []float64
	SampleRate int
	Channels   int
}
