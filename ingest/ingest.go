// Package ingest builds the contour corpus from a directory of Mutopia-style
// works, one LilyPond source and one MIDI rendering per directory.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jeffreytso/contourdex/contour"
	"github.com/jeffreytso/contourdex/index"
	"github.com/jeffreytso/contourdex/logging"
	"github.com/jeffreytso/contourdex/melody"
	"github.com/jeffreytso/contourdex/midi"
	"github.com/jeffreytso/contourdex/model"
	"github.com/jeffreytso/contourdex/util"
	"github.com/mdobak/go-xerrors"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var ErrUnknownComposer = xerrors.Message("composer not in allow-list")

const unknownTitle = "Unknown Title"

// Work is one directory holding a LilyPond source and its MIDI rendering.
type Work struct {
	Dir          string
	LilypondPath string
	MidiPath     string
}

// FindWorks returns every directory under root holding both a .ly and a
// .mid file, taking the lexically first of each. Works are sorted by
// directory. maxNum > 0 caps the number of works.
func FindWorks(root string, maxNum int) ([]Work, error) {
	paths, err := util.GatherPaths(root, 0, ".ly", ".mid")
	if err != nil {
		return nil, err
	}

	byDir := make(map[string]*Work)
	for _, p := range paths {
		dir := filepath.Dir(p)
		w, ok := byDir[dir]
		if !ok {
			w = &Work{Dir: dir}
			byDir[dir] = w
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".ly":
			if w.LilypondPath == "" {
				w.LilypondPath = p
			}
		case ".mid":
			if w.MidiPath == "" {
				w.MidiPath = p
			}
		}
	}

	var works []Work
	for _, dir := range util.GetKeys(byDir) {
		w := byDir[dir]
		if w.LilypondPath == "" || w.MidiPath == "" {
			continue
		}
		works = append(works, *w)
		if maxNum > 0 && len(works) == maxNum {
			break
		}
	}
	return works, nil
}

// MetadataStore receives metadata for every inserted entry.
type MetadataStore interface {
	Put(ctx context.Context, ref string, m model.Metadata) error
}

type Stats struct {
	Works    int
	Inserted int
	Skipped  int
}

type Ingester struct {
	Index    index.Index
	Metadata MetadataStore
	Workers  int
	// Progress receives the progress bar; nil hides it.
	Progress io.Writer
	Logger   logging.Logger
	NewID    func() string
}

func New(idx index.Index) *Ingester {
	return &Ingester{
		Index:   idx,
		Workers: 1,
		Logger:  logging.WithFields(logging.Fields{"component": "ingest"}),
		NewID:   uuid.NewString,
	}
}

// BuildEntry turns a work into a corpus entry. The metadata reference is
// the LilyPond path relative to root, with forward slashes.
func BuildEntry(root string, w Work) (model.CorpusEntry, error) {
	header, err := ReadHeader(w.LilypondPath)
	if err != nil {
		return model.CorpusEntry{}, err
	}
	name, ok := ResolveComposer(header.Composer)
	if !ok {
		return model.CorpusEntry{}, xerrors.New(fmt.Sprintf("composer %q", header.Composer), ErrUnknownComposer)
	}

	score, err := midi.ReadScore(w.MidiPath)
	if err != nil {
		return model.CorpusEntry{}, err
	}
	seq, err := melody.Extract(score)
	if err != nil {
		return model.CorpusEntry{}, err
	}
	c, err := contour.EncodeSymbolic(seq)
	if err != nil {
		return model.CorpusEntry{}, err
	}

	ref, err := filepath.Rel(root, w.LilypondPath)
	if err != nil {
		return model.CorpusEntry{}, xerrors.New("relative lilypond path", err)
	}
	ref = filepath.ToSlash(ref)

	title := header.Title
	if title == "" {
		title = unknownTitle
	}
	return model.CorpusEntry{
		Contour:     c,
		MetadataRef: ref,
		Metadata: &model.Metadata{
			Title:        title,
			Composer:     model.Composer{Name: name},
			Opus:         header.Opus,
			Piece:        header.Piece,
			Year:         header.Year,
			LilypondPath: ref,
		},
	}, nil
}

type result struct {
	entry model.CorpusEntry
	err   error
}

// build runs BuildEntry over works on a bounded pool of workers. Results
// keep the order of works.
func (in *Ingester) build(ctx context.Context, root string, works []Work) []result {
	results := make([]result, len(works))
	if len(works) == 0 {
		return results
	}
	workers := max(min(in.Workers, len(works)), 1)

	out := in.Progress
	if out == nil {
		out = io.Discard
	}
	p := mpb.New(mpb.WithWidth(64), mpb.WithOutput(out))
	bar := p.AddBar(int64(len(works)),
		mpb.PrependDecorators(
			decor.Name("Indexing: "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)

	jobs := make(chan int, len(works))
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					results[i] = result{err: err}
				} else {
					e, err := BuildEntry(root, works[i])
					results[i] = result{entry: e, err: err}
				}
				bar.Increment()
			}
		}()
	}
	for i := range works {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	p.Wait()

	return results
}

// Run clears the index and refills it from the works under root.
func (in *Ingester) Run(ctx context.Context, root string, maxNum int) (Stats, error) {
	if _, err := os.Stat(root); err != nil {
		return Stats{}, xerrors.New("corpus root", err)
	}
	works, err := FindWorks(root, maxNum)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Works: len(works)}
	in.Logger.Info("found works", logging.Fields{"root": root, "works": len(works), "workers": in.Workers})

	if err := in.Index.Clear(ctx); err != nil {
		return stats, err
	}

	results := in.build(ctx, root, works)

	for i, r := range results {
		if r.err != nil {
			if errors.Is(r.err, context.Canceled) || errors.Is(r.err, context.DeadlineExceeded) {
				return stats, r.err
			}
			stats.Skipped++
			in.Logger.Warn("skipping work", logging.Fields{"dir": works[i].Dir, "reason": r.err.Error()})
			continue
		}

		entry := r.entry
		entry.ID = in.NewID()
		if err := in.Index.Insert(ctx, entry); err != nil {
			return stats, err
		}
		stats.Inserted++

		if in.Metadata != nil {
			if err := in.Metadata.Put(ctx, entry.MetadataRef, *entry.Metadata); err != nil {
				in.Logger.Error(err, "metadata put failed", logging.Fields{"ref": entry.MetadataRef})
			}
		}
		in.Logger.Debug("inserted", logging.Fields{"title": entry.Metadata.Title, "contour_len": len(entry.Contour)})
	}

	in.Logger.Info("index complete", logging.Fields{
		"inserted": stats.Inserted,
		"skipped":  stats.Skipped,
	})
	return stats, nil
}
