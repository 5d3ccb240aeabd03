package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/jeffreytso/contourdex/model"
	"github.com/mdobak/go-xerrors"
)

const (
	formatPCM   = 1
	formatFloat = 3
)

// IsWAV reports whether data starts with a RIFF/WAVE header.
func IsWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// WAVDecoder decodes PCM integer (8/16/24/32 bit) and IEEE float (32/64
// bit) WAV files. Samples are normalised to [-1, 1] and left interleaved.
// Other encodings fail with ErrDecode so AutoDecoder can hand them to ffmpeg.
type WAVDecoder struct{}

func (WAVDecoder) Decode(_ context.Context, data []byte) (model.Waveform, error) {
	if !IsWAV(data) {
		return model.Waveform{}, xerrors.New("missing RIFF/WAVE header", model.ErrDecode)
	}

	d := wav.NewDecoder(bytes.NewReader(data))
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return model.Waveform{}, xerrors.New("read WAV header", err, model.ErrDecode)
	}
	if d.NumChans == 0 || d.SampleRate == 0 {
		return model.Waveform{}, xerrors.New("invalid channel count or sample rate", model.ErrDecode)
	}
	if err := d.FwdToPCM(); err != nil {
		return model.Waveform{}, xerrors.New("missing data chunk", err, model.ErrDecode)
	}

	var (
		samples []float64
		err     error
	)
	switch d.WavAudioFormat {
	case formatPCM:
		samples, err = decodePCM(d)
	case formatFloat:
		samples, err = decodeFloat(d)
	default:
		err = xerrors.New(fmt.Sprintf("unsupported WAV format %d", d.WavAudioFormat), model.ErrDecode)
	}
	if err != nil {
		return model.Waveform{}, err
	}
	return model.Waveform{
		Samples:    samples,
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
	}, nil
}

func decodePCM(d *wav.Decoder) ([]float64, error) {
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, xerrors.New("read PCM data", err, model.ErrDecode)
	}
	bits := int(d.BitDepth)
	if bits < 8 || bits > 32 {
		return nil, xerrors.New(fmt.Sprintf("unsupported bit depth %d", bits), model.ErrDecode)
	}

	out := make([]float64, len(buf.Data))
	if bits == 8 {
		// 8-bit WAV is unsigned
		for i, v := range buf.Data {
			out[i] = (float64(v) - 128) / 128
		}
		return out, nil
	}
	scale := math.Exp2(float64(bits - 1))
	for i, v := range buf.Data {
		out[i] = float64(v) / scale
	}
	return out, nil
}

// decodeFloat reads IEEE float samples straight from the data chunk, which
// the integer PCM buffer cannot represent.
func decodeFloat(d *wav.Decoder) ([]float64, error) {
	raw, err := io.ReadAll(io.LimitReader(d.PCMChunk, int64(d.PCMChunk.Size)))
	if err != nil {
		return nil, xerrors.New("read float data", err, model.ErrDecode)
	}

	switch d.BitDepth {
	case 32:
		out := make([]float64, len(raw)/4)
		for i := range out {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
		}
		return out, nil
	case 64:
		out := make([]float64, len(raw)/8)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return out, nil
	}
	return nil, xerrors.New(fmt.Sprintf("unsupported float bit depth %d", d.BitDepth), model.ErrDecode)
}

// EncodeWAV writes w as a 16-bit PCM WAV file. Samples outside [-1, 1]
// are clipped.
func EncodeWAV(w model.Waveform) []byte {
	channels := max(w.Channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: w.SampleRate},
		Data:           make([]int, len(w.Samples)),
		SourceBitDepth: 16,
	}
	for i, s := range w.Samples {
		buf.Data[i] = int(math.Round(max(-1, min(1, s)) * 32767))
	}

	out := &memFile{}
	e := wav.NewEncoder(out, w.SampleRate, 16, channels, formatPCM)
	// writes to memory cannot fail
	_ = e.Write(buf)
	_ = e.Close()
	return out.buf
}

// memFile is an in-memory io.WriteSeeker for the WAV encoder, which seeks
// back to patch chunk sizes on Close.
type memFile struct {
	buf []byte
	pos int
}

func (m *memFile) Write(p []byte) (int, error) {
	if end := m.pos + len(p); end > len(m.buf) {
		m.buf = append(m.buf, make([]byte, end-len(m.buf))...)
	}
	n := copy(m.buf[m.pos:], p)
	m.pos += n
	return n, nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(m.pos) + offset
	case io.SeekEnd:
		pos = int64(len(m.buf)) + offset
	}
	if pos < 0 {
		return 0, xerrors.New("negative seek position")
	}
	m.pos = int(pos)
	return pos, nil
}
