// Package query turns user input (a typed contour, an audio upload or a
// handful of played notes) into corpus matches.
package query

import (
	"context"
	"errors"

	"github.com/jeffreytso/contourdex/audio"
	"github.com/jeffreytso/contourdex/constants"
	"github.com/jeffreytso/contourdex/contour"
	"github.com/jeffreytso/contourdex/index"
	"github.com/jeffreytso/contourdex/logging"
	"github.com/jeffreytso/contourdex/model"
	"github.com/jeffreytso/contourdex/pitch"
)

// Resolver fills in display metadata for matched entries. It must not drop
// or reorder entries.
type Resolver interface {
	Resolve(ctx context.Context, entries []model.CorpusEntry) []model.CorpusEntry
}

type Pipeline struct {
	Index     index.Index
	Segmenter *pitch.Segmenter
	Decoder   audio.Decoder
	Resolver  Resolver
	Logger    logging.Logger

	TextLimit  int
	AudioLimit int
}

type Option func(*Pipeline)

func WithDecoder(d audio.Decoder) Option {
	return func(p *Pipeline) { p.Decoder = d }
}

func WithSegmenter(s *pitch.Segmenter) Option {
	return func(p *Pipeline) { p.Segmenter = s }
}

func WithResolver(r Resolver) Option {
	return func(p *Pipeline) { p.Resolver = r }
}

func WithLogger(l logging.Logger) Option {
	return func(p *Pipeline) { p.Logger = l }
}

// New builds a pipeline over idx. Without options it decodes WAV only and
// uses the default segmenter configuration.
func New(idx index.Index, opts ...Option) *Pipeline {
	p := &Pipeline{
		Index:      idx,
		Segmenter:  pitch.NewSegmenter(pitch.DefaultConfig()),
		Decoder:    &audio.AutoDecoder{},
		Logger:     logging.WithFields(logging.Fields{"component": "query"}),
		TextLimit:  constants.DefaultTextLimit,
		AudioLimit: constants.DefaultAudioLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// search never fails: store errors are logged and reported as no matches.
func (p *Pipeline) search(ctx context.Context, pattern string, limit int) []model.CorpusEntry {
	results, err := p.Index.Query(ctx, pattern, limit)
	if err != nil {
		p.Logger.Error(err, "index query failed", logging.Fields{"pattern": pattern})
		return []model.CorpusEntry{}
	}
	if p.Resolver != nil && len(results) > 0 {
		results = p.Resolver.Resolve(ctx, results)
	}
	return results
}

// SearchByText forwards text verbatim as the search pattern.
func (p *Pipeline) SearchByText(ctx context.Context, text string) model.TextSearchResponse {
	if text != "" && !contour.Valid(text) {
		p.Logger.Debug("query has characters outside the contour alphabet", logging.Fields{"query": text})
	}
	return model.TextSearchResponse{
		Query:   text,
		Results: p.search(ctx, text, p.TextLimit),
	}
}

func emptyAudioResponse() model.AudioSearchResponse {
	return model.AudioSearchResponse{GeneratedContour: nil, Results: []model.CorpusEntry{}}
}

// recoverable reports whether err is an expected property of the input
// rather than a fault.
func recoverable(err error) bool {
	return errors.Is(err, model.ErrEmptyMelody) ||
		errors.Is(err, model.ErrInvalidAudio) ||
		errors.Is(err, model.ErrDecode)
}

func (p *Pipeline) audioFailure(err error, msg string) model.AudioSearchResponse {
	if recoverable(err) {
		p.Logger.Info(msg, logging.Fields{"reason": err.Error()})
	} else {
		p.Logger.Error(err, msg)
	}
	return emptyAudioResponse()
}

// SearchByAudio decodes an uploaded file and searches with its contour.
func (p *Pipeline) SearchByAudio(ctx context.Context, data []byte) model.AudioSearchResponse {
	w, err := p.Decoder.Decode(ctx, data)
	if err != nil {
		return p.audioFailure(err, "audio upload could not be decoded")
	}
	seq, err := p.Segmenter.SegmentWaveform(w)
	if err != nil {
		return p.audioFailure(err, "no melody in audio upload")
	}
	return p.searchAudioSequence(ctx, seq)
}

// SearchBySamples is SearchByAudio for already decoded mono samples.
func (p *Pipeline) SearchBySamples(ctx context.Context, samples []float64, sampleRate int) model.AudioSearchResponse {
	seq, err := p.Segmenter.Segment(samples, sampleRate)
	if err != nil {
		return p.audioFailure(err, "no melody in samples")
	}
	return p.searchAudioSequence(ctx, seq)
}

func (p *Pipeline) searchAudioSequence(ctx context.Context, seq model.PitchSequence) model.AudioSearchResponse {
	c, err := contour.Encode(seq, p.Segmenter.Config.Threshold)
	if err != nil {
		return p.audioFailure(err, "contour encoding failed")
	}
	p.Logger.Debug("audio contour", logging.Fields{"contour": c, "notes": len(seq)})
	return model.AudioSearchResponse{
		GeneratedContour: &c,
		Results:          p.search(ctx, c, p.AudioLimit),
	}
}

// SearchByNotes searches with the contour of notes played live.
func (p *Pipeline) SearchByNotes(ctx context.Context, notes []uint8) model.TextSearchResponse {
	c, err := contour.Encode(notes, 0)
	if err != nil {
		p.Logger.Debug("not enough notes to search", logging.Fields{"notes": len(notes)})
		return model.TextSearchResponse{Results: []model.CorpusEntry{}}
	}
	return p.SearchByText(ctx, c)
}

// Search dispatches a model.Query to the matching modality. For literal
// queries GeneratedContour is the pattern as given.
func (p *Pipeline) Search(ctx context.Context, q model.Query) model.AudioSearchResponse {
	switch q.Kind {
	case model.QueryAudio:
		return p.SearchBySamples(ctx, q.Samples, q.SampleRate)
	default:
		res := p.SearchByText(ctx, q.Text)
		return model.AudioSearchResponse{GeneratedContour: &res.Query, Results: res.Results}
	}
}

// Status reports how many entries are indexed.
func (p *Pipeline) Status(ctx context.Context) model.StatusResponse {
	res := model.StatusResponse{Message: "Music Search Engine is running!", Database: "successful"}
	n, err := p.Index.Count(ctx)
	if err != nil {
		p.Logger.Error(err, "count failed")
		res.Database = "failed"
		return res
	}
	res.Entries = n
	return res
}
