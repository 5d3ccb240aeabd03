package audio

import (
	"fmt"

	"github.com/jeffreytso/contourdex/model"
	"github.com/mdobak/go-xerrors"
	resampling "github.com/tphakala/go-audio-resampling"
)

// Mono averages interleaved channels into a single channel.
func Mono(samples []float64, channels int) []float64 {
	if channels <= 1 {
		return samples
	}
	frames := len(samples) / channels
	out := make([]float64, frames)
	for i := range frames {
		var sum float64
		for c := range channels {
			sum += samples[i*channels+c]
		}
		out[i] = sum / float64(channels)
	}
	return out
}

// Resample converts mono samples from one rate to another. Equal rates
// return the input untouched.
func Resample(samples []float64, fromRate, toRate int) ([]float64, error) {
	if fromRate <= 0 || toRate <= 0 {
		return nil, xerrors.New(fmt.Sprintf("invalid resample %d -> %d Hz", fromRate, toRate), model.ErrInvalidAudio)
	}
	if fromRate == toRate || len(samples) == 0 {
		return samples, nil
	}

	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(fromRate),
		OutputRate: float64(toRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, xerrors.New("create resampler", err)
	}
	out, err := r.Process(samples)
	if err != nil {
		return nil, xerrors.New("resample", err)
	}
	return out, nil
}

// Prepare mixes w down to mono and resamples it to rate.
func Prepare(w model.Waveform, rate int) ([]float64, error) {
	return Resample(Mono(w.Samples, w.Channels), w.SampleRate, rate)
}
