package pitch

import (
	"fmt"

	"github.com/jeffreytso/contourdex/audio"
	"github.com/jeffreytso/contourdex/logging"
	"github.com/jeffreytso/contourdex/model"
	"github.com/mdobak/go-xerrors"
)

type Segmenter struct {
	Config Config
}

func NewSegmenter(cfg Config) *Segmenter {
	return &Segmenter{Config: cfg}
}

// FramePitches prepares raw mono samples and returns the per-frame pitches
// before segmentation.
func (s *Segmenter) FramePitches(samples []float64, sampleRate int) ([]float64, error) {
	if len(samples) == 0 || sampleRate <= 0 {
		return nil, xerrors.New(fmt.Sprintf("%d samples at %d Hz", len(samples), sampleRate), model.ErrInvalidAudio)
	}
	prepared, err := audio.Resample(samples, sampleRate, s.Config.SampleRate)
	if err != nil {
		return nil, xerrors.New("resample", err, model.ErrInvalidAudio)
	}
	return FramePitches(prepared, s.Config), nil
}

// Segment turns mono samples into note pitches. Fewer than two notes is
// ErrEmptyMelody.
func (s *Segmenter) Segment(samples []float64, sampleRate int) (model.PitchSequence, error) {
	frames, err := s.FramePitches(samples, sampleRate)
	if err != nil {
		return nil, err
	}
	notes := Segment(frames, s.Config.Threshold)

	logging.WithFields(logging.Fields{"component": "segmenter"}).Debug("segmented audio", logging.Fields{
		"samples": len(samples),
		"frames":  len(frames),
		"notes":   len(notes),
	})

	if len(notes) < 2 {
		return nil, xerrors.New(fmt.Sprintf("%d notes segmented", len(notes)), model.ErrEmptyMelody)
	}
	return notes, nil
}

// SegmentWaveform mixes w down to mono before segmenting.
func (s *Segmenter) SegmentWaveform(w model.Waveform) (model.PitchSequence, error) {
	if w.Channels <= 0 {
		return nil, xerrors.New("waveform has no channels", model.ErrInvalidAudio)
	}
	return s.Segment(audio.Mono(w.Samples, w.Channels), w.SampleRate)
}

// Bind ties the segmenter to a waveform so it can be used as a
// model.PitchSource.
func (s *Segmenter) Bind(w model.Waveform) model.PitchSource {
	return boundSegmenter{s: s, w: w}
}

type boundSegmenter struct {
	s *Segmenter
	w model.Waveform
}

func (b boundSegmenter) PitchSequence() (model.PitchSequence, error) {
	return b.s.SegmentWaveform(b.w)
}
