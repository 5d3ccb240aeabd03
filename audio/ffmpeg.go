package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"

	"github.com/jeffreytso/contourdex/logging"
	"github.com/jeffreytso/contourdex/model"
	"github.com/mdobak/go-xerrors"
	"github.com/tidwall/gjson"
)

// FFmpegDecoder shells out to ffprobe for the stream layout and ffmpeg for
// raw f64le samples. Input and output go through pipes, nothing touches
// the disk.
type FFmpegDecoder struct {
	FFmpegPath  string
	FFprobePath string
	Timeout     time.Duration
}

func NewFFmpegDecoder(ffmpegPath, ffprobePath string) *FFmpegDecoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegDecoder{
		FFmpegPath:  ffmpegPath,
		FFprobePath: ffprobePath,
		Timeout:     30 * time.Second,
	}
}

// StreamInfo is the subset of ffprobe's first audio stream we need.
type StreamInfo struct {
	Codec      string
	SampleRate int
	Channels   int
}

// ParseProbe extracts the first audio stream from ffprobe's JSON output.
func ParseProbe(out []byte) (StreamInfo, error) {
	stream := gjson.GetBytes(out, `streams.#(codec_type=="audio")`)
	if !stream.Exists() {
		return StreamInfo{}, xerrors.New("no audio stream found", model.ErrDecode)
	}

	rate, err := strconv.Atoi(stream.Get("sample_rate").String())
	if err != nil || rate <= 0 {
		return StreamInfo{}, xerrors.New(fmt.Sprintf("bad sample rate %q", stream.Get("sample_rate").String()), model.ErrDecode)
	}
	channels := int(stream.Get("channels").Int())
	if channels <= 0 || channels > 8 {
		return StreamInfo{}, xerrors.New(fmt.Sprintf("invalid channel count %d", channels), model.ErrDecode)
	}

	return StreamInfo{
		Codec:      stream.Get("codec_name").String(),
		SampleRate: rate,
		Channels:   channels,
	}, nil
}

func (d *FFmpegDecoder) run(ctx context.Context, path string, data []byte, args ...string) ([]byte, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = bytes.NewReader(data)

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, xerrors.New(fmt.Sprintf("%s failed: %s", path, exitErr.Stderr), model.ErrDecode)
		}
		return nil, xerrors.New(fmt.Sprintf("%s failed: %v", path, err), model.ErrDecode)
	}
	return out, nil
}

func (d *FFmpegDecoder) Probe(ctx context.Context, data []byte) (StreamInfo, error) {
	out, err := d.run(ctx, d.FFprobePath, data,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		"pipe:0",
	)
	if err != nil {
		return StreamInfo{}, err
	}
	return ParseProbe(out)
}

func (d *FFmpegDecoder) Decode(ctx context.Context, data []byte) (model.Waveform, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "Decode",
	})

	info, err := d.Probe(ctx, data)
	if err != nil {
		return model.Waveform{}, err
	}
	logger.Debug("probed upload", logging.Fields{
		"codec":       info.Codec,
		"sample_rate": info.SampleRate,
		"channels":    info.Channels,
	})

	out, err := d.run(ctx, d.FFmpegPath, data,
		"-i", "pipe:0",
		"-f", "f64le",
		"-ac", strconv.Itoa(info.Channels),
		"-ar", strconv.Itoa(info.SampleRate),
		"-v", "error",
		"pipe:1",
	)
	if err != nil {
		return model.Waveform{}, err
	}

	return model.Waveform{
		Samples:    bytesToFloat64(out),
		SampleRate: info.SampleRate,
		Channels:   info.Channels,
	}, nil
}

func bytesToFloat64(data []byte) []float64 {
	n := len(data) / 8
	samples := make([]float64, n)
	for i := range n {
		samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return samples
}
