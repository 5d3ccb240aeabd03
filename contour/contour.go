// Package contour turns pitch sequences into Parsons code.
package contour

import (
	"strings"

	"github.com/jeffreytso/contourdex/model"
	"github.com/mdobak/go-xerrors"
	"golang.org/x/exp/constraints"
)

const (
	Start  = '*'
	Up     = 'U'
	Down   = 'D'
	Repeat = 'R'
)

// Alphabet is the set of symbols a contour is made of.
const Alphabet = "*UDR"

// DefaultAudioTolerance is the equality tolerance, in semitones, for pitches
// estimated from audio. It matches the default segmentation threshold.
const DefaultAudioTolerance = 0.5

type Pitch interface {
	constraints.Integer | constraints.Float
}

// Encode produces the contour of seq. Two neighbouring pitches whose
// difference is within tolerance are a repeat. A tolerance of 0 compares
// exactly.
func Encode[P Pitch](seq []P, tolerance float64) (model.Contour, error) {
	if len(seq) < 2 {
		return "", xerrors.New("encode contour", model.ErrEmptyMelody)
	}

	var sb strings.Builder
	sb.Grow(len(seq))
	sb.WriteByte(Start)
	for i := 1; i < len(seq); i++ {
		sb.WriteByte(step(float64(seq[i-1]), float64(seq[i]), tolerance))
	}
	return sb.String(), nil
}

func step(prev, curr, tolerance float64) byte {
	diff := curr - prev
	switch {
	case diff > tolerance:
		return Up
	case diff < -tolerance:
		return Down
	default:
		return Repeat
	}
}

// EncodeSymbolic encodes a sequence of integral pitches with exact comparison.
func EncodeSymbolic(seq model.PitchSequence) (model.Contour, error) {
	return Encode(seq, 0)
}

// EncodeAudio encodes a fractional pitch sequence using DefaultAudioTolerance.
func EncodeAudio(seq model.PitchSequence) (model.Contour, error) {
	return Encode(seq, DefaultAudioTolerance)
}

// Valid reports whether s is a non-empty string over Alphabet, ignoring case.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range strings.ToUpper(s) {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}

// FromSource pulls a sequence out of src and encodes it with tolerance.
func FromSource(src model.PitchSource, tolerance float64) (model.Contour, error) {
	seq, err := src.PitchSequence()
	if err != nil {
		return "", err
	}
	return Encode(seq, tolerance)
}
