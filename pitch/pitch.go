// Package pitch segments monophonic audio into a sequence of note pitches.
//
// Frames are analysed independently: each Hann-windowed frame contributes
// the MIDI pitch of its strongest spectral peak inside the vocal range,
// silent frames contribute nothing. Segment then collapses runs of nearly
// equal frame pitches into single notes.
package pitch

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

type Config struct {
	SampleRate int
	WindowSize int
	HopSize    int
	MinFreqHz  float64
	MaxFreqHz  float64
	SilenceRMS float64
	// Threshold is the minimum change in semitones that starts a new note.
	Threshold float64
}

func DefaultConfig() Config {
	return Config{
		SampleRate: 22050,
		WindowSize: 2048,
		HopSize:    512,
		MinFreqHz:  60,
		MaxFreqHz:  2000,
		SilenceRMS: 0.01,
		Threshold:  0.5,
	}
}

// HzToMIDI converts a frequency to a fractional MIDI note number.
func HzToMIDI(f float64) float64 {
	return 69 + 12*math.Log2(f/440)
}

// MIDIToHz is the inverse of HzToMIDI.
func MIDIToHz(p float64) float64 {
	return 440 * math.Pow(2, (p-69)/12)
}

func rms(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(frame, frame) / float64(len(frame)))
}

// peakFrequency returns the interpolated frequency of the largest
// magnitude bin in [minHz, maxHz], or 0 if the band is empty or flat.
func peakFrequency(frame []float64, sampleRate int, minHz, maxHz float64) float64 {
	n := len(frame)
	binHz := float64(sampleRate) / float64(n)

	lo := max(int(math.Ceil(minHz/binHz)), 1)
	hi := min(int(math.Floor(maxHz/binHz)), n/2-1)
	if lo > hi {
		return 0
	}

	spectrum := fft.FFTReal(frame)
	mags := make([]float64, hi-lo+1)
	for i := range mags {
		c := spectrum[lo+i]
		mags[i] = math.Hypot(real(c), imag(c))
	}

	k := floats.MaxIdx(mags)
	if mags[k] == 0 {
		return 0
	}

	// parabolic interpolation over the neighbouring bins
	bin := float64(lo + k)
	if k > 0 && k < len(mags)-1 {
		a, b, c := mags[k-1], mags[k], mags[k+1]
		if d := a - 2*b + c; d != 0 {
			bin += 0.5 * (a - c) / d
		}
	}
	return bin * binHz
}

// FramePitches returns one MIDI pitch per voiced frame of mono samples
// already at cfg.SampleRate.
func FramePitches(samples []float64, cfg Config) []float64 {
	var out []float64
	frame := make([]float64, cfg.WindowSize)
	for start := 0; start+cfg.WindowSize <= len(samples); start += cfg.HopSize {
		copy(frame, samples[start:start+cfg.WindowSize])
		if rms(frame) < cfg.SilenceRMS {
			continue
		}
		window.Apply(frame, window.Hann)
		f := peakFrequency(frame, cfg.SampleRate, cfg.MinFreqHz, cfg.MaxFreqHz)
		if f <= 0 {
			continue
		}
		out = append(out, HzToMIDI(f))
	}
	return out
}

// Segment keeps a frame pitch only when it differs from the last kept
// pitch by more than threshold semitones. The first pitch is always kept.
func Segment(frames []float64, threshold float64) []float64 {
	if len(frames) == 0 {
		return nil
	}
	out := []float64{frames[0]}
	last := frames[0]
	for _, p := range frames[1:] {
		if math.Abs(p-last) > threshold {
			out = append(out, p)
			last = p
		}
	}
	return out
}
