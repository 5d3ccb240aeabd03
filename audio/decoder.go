// Package audio turns uploaded audio bytes into float waveforms.
package audio

import (
	"context"

	"github.com/jeffreytso/contourdex/logging"
	"github.com/jeffreytso/contourdex/model"
	"github.com/mdobak/go-xerrors"
)

// Decoder decodes a complete audio file held in memory.
type Decoder interface {
	Decode(ctx context.Context, data []byte) (model.Waveform, error)
}

// AutoDecoder reads RIFF/WAVE input natively and hands everything else to
// ffmpeg. FFmpeg may be nil, in which case only WAV is accepted.
type AutoDecoder struct {
	WAV    WAVDecoder
	FFmpeg *FFmpegDecoder
}

func NewAutoDecoder(ffmpegPath, ffprobePath string) *AutoDecoder {
	return &AutoDecoder{FFmpeg: NewFFmpegDecoder(ffmpegPath, ffprobePath)}
}

func (a *AutoDecoder) Decode(ctx context.Context, data []byte) (model.Waveform, error) {
	if len(data) == 0 {
		return model.Waveform{}, xerrors.New("empty upload", model.ErrDecode)
	}
	if IsWAV(data) {
		w, err := a.WAV.Decode(ctx, data)
		if err == nil || a.FFmpeg == nil {
			return w, err
		}
		logging.WithFields(logging.Fields{"component": "audio_decoder"}).
			Debug("native WAV decode failed, falling back to ffmpeg", logging.Fields{"error": err.Error()})
	}
	if a.FFmpeg == nil {
		return model.Waveform{}, xerrors.New("unsupported audio container", model.ErrDecode)
	}
	return a.FFmpeg.Decode(ctx, data)
}
