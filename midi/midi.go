package midi

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jeffreytso/contourdex/model"
	"github.com/mdobak/go-xerrors"
	"gitlab.com/gomidi/midi/v2/smf"
)

func ReadMidiFile(filepath string) (*smf.SMF, error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, xerrors.New("error reading midi file", err)
	}
	return ReadMidiBytes(dat)
}

// readSMF is swapped in tests.
var readSMF = smf.ReadFrom

func ReadMidiBytes(dat []byte) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s = nil
			e = xerrors.New("error parsing midi file", xerrors.FromRecover(r))
		}
	}()

	res, err := readSMF(bytes.NewReader(dat))
	if err != nil {
		return nil, xerrors.New("error parsing midi file", err)
	}
	return res, nil
}

// ToScore reduces a parsed SMF to its note events, keeping track order.
// Tracks without any note event are kept so that indexes stay aligned
// with the file.
func ToScore(s *smf.SMF) model.Score {
	var score model.Score
	for i, events := range s.Tracks {
		track := model.Track{Name: fmt.Sprintf("track %d", i)}
		for _, event := range events {
			var channel, key, velocity uint8
			var name string
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				track.Events = append(track.Events, model.NoteEvent{
					Type:     model.NoteOn,
					Pitch:    key,
					Velocity: velocity,
				})
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				track.Events = append(track.Events, model.NoteEvent{
					Type:     model.NoteOff,
					Pitch:    key,
					Velocity: velocity,
				})
			case event.Message.GetMetaTrackName(&name):
				if name != "" {
					track.Name = name
				}
			}
		}
		score.Tracks = append(score.Tracks, track)
	}
	return score
}

// ReadScore reads a MIDI file and converts it with ToScore.
func ReadScore(filepath string) (model.Score, error) {
	s, err := ReadMidiFile(filepath)
	if err != nil {
		return model.Score{}, err
	}
	return ToScore(s), nil
}
