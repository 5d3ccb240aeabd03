package contour

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jeffreytso/contourdex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeScenarios(t *testing.T) {
	cases := []struct {
		name  string
		notes []uint8
		want  string
	}{
		{"up up down", []uint8{60, 62, 64, 63}, "*UUD"},
		{"two notes", []uint8{60, 67}, "*U"},
		{"repeat", []uint8{60, 60, 59}, "*RD"},
		{"ascending", []uint8{60, 61, 62, 63, 64, 65}, "*UUUUU"},
		{"descending", []uint8{72, 70, 68, 66}, "*DDD"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Encode(c.notes, 0)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestEncodeLengthAndStartSymbol(t *testing.T) {
	for n := 2; n < 40; n++ {
		seq := make(model.PitchSequence, n)
		for i := range seq {
			seq[i] = float64((i * 7) % 12)
		}
		got, err := EncodeSymbolic(seq)
		require.NoError(t, err)
		assert.Len(t, got, n)
		assert.Equal(t, byte(Start), got[0])
		assert.True(t, Valid(got), fmt.Sprintf("contour %q", got))
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	seq := model.PitchSequence{60, 64, 64, 62, 67, 55, 55}
	first, err := EncodeSymbolic(seq)
	require.NoError(t, err)
	second, err := EncodeSymbolic(seq)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "*URDUDR", first)
}

func TestEncodeTooShort(t *testing.T) {
	for _, seq := range []model.PitchSequence{nil, {}, {60}} {
		got, err := EncodeSymbolic(seq)
		assert.True(t, errors.Is(err, model.ErrEmptyMelody))
		assert.Empty(t, got)
	}
}

func TestEncodeAudioTolerance(t *testing.T) {
	seq := model.PitchSequence{60.0, 60.3, 59.6, 64.0, 63.55, 63.4}
	got, err := EncodeAudio(seq)
	require.NoError(t, err)
	// steps of 0.3, 0.45 and 0.15 semitones are repeats
	assert.Equal(t, "*RDURR", got)
}

func TestEncodeSymbolicIsExact(t *testing.T) {
	got, err := EncodeSymbolic(model.PitchSequence{60, 60.25, 60})
	require.NoError(t, err)
	assert.Equal(t, "*UD", got)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("*UDR"))
	assert.True(t, Valid("udr"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("*UXD"))
	assert.False(t, Valid(strings.Repeat("U", 3)+"."))
}

type staticSource struct {
	seq model.PitchSequence
	err error
}

func (s staticSource) PitchSequence() (model.PitchSequence, error) {
	return s.seq, s.err
}

func TestFromSource(t *testing.T) {
	got, err := FromSource(staticSource{seq: model.PitchSequence{60, 62, 64, 63}}, 0)
	require.NoError(t, err)
	assert.Equal(t, "*UUD", got)

	_, err = FromSource(staticSource{err: model.ErrEmptyMelody}, 0)
	assert.ErrorIs(t, err, model.ErrEmptyMelody)
}
