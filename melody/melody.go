package melody

import (
	"fmt"

	"github.com/jeffreytso/contourdex/midi"
	"github.com/jeffreytso/contourdex/model"
	"github.com/mdobak/go-xerrors"
	"gitlab.com/gomidi/midi/v2/smf"
)

func countNoteOns(track model.Track) int {
	var n int
	for _, evt := range track.Events {
		if evt.Type == model.NoteOn {
			n++
		}
	}
	return n
}

// SelectMelodyTrack returns the index of the track with the most note-on
// events. Ties go to the earliest track. It returns false when the score has
// no tracks.
func SelectMelodyTrack(score model.Score) (int, bool) {
	if len(score.Tracks) == 0 {
		return 0, false
	}
	best, bestCount := 0, -1
	for i, track := range score.Tracks {
		if n := countNoteOns(track); n > bestCount {
			best, bestCount = i, n
		}
	}
	return best, true
}

// Pitches returns the sounding note-on pitches of a track in event order.
func Pitches(track model.Track) model.PitchSequence {
	var res model.PitchSequence
	for _, evt := range track.Events {
		if evt.Type == model.NoteOn && evt.Velocity > 0 {
			res = append(res, float64(evt.Pitch))
		}
	}
	return res
}

// Extract derives the melody of a score.
func Extract(score model.Score) (model.PitchSequence, error) {
	idx, ok := SelectMelodyTrack(score)
	if !ok {
		return nil, xerrors.New("score has no tracks", model.ErrEmptyMelody)
	}
	seq := Pitches(score.Tracks[idx])
	if len(seq) < 2 {
		return nil, xerrors.New(fmt.Sprintf("melody track %d has %d notes", idx, len(seq)), model.ErrEmptyMelody)
	}
	return seq, nil
}

func FromSMF(s *smf.SMF) (model.PitchSequence, error) {
	return Extract(midi.ToScore(s))
}

// Extractor binds a score so it can be used as a model.PitchSource.
type Extractor struct {
	Score model.Score
}

func (e Extractor) PitchSequence() (model.PitchSequence, error) {
	return Extract(e.Score)
}
