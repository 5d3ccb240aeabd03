package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/jeffreytso/contourdex/index"
	"github.com/jeffreytso/contourdex/logging"
	"github.com/jeffreytso/contourdex/melody"
	"github.com/jeffreytso/contourdex/midi"
	"github.com/jeffreytso/contourdex/model"
	"github.com/jeffreytso/contourdex/query"
	"github.com/jeffreytso/contourdex/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func quietPipeline(t *testing.T, entries ...model.CorpusEntry) *query.Pipeline {
	t.Helper()
	color.NoColor = true
	idx := index.NewMemory()
	for _, e := range entries {
		require.NoError(t, idx.Insert(context.Background(), e))
	}
	return query.New(idx, query.WithLogger(&logging.NoOpLogger{}))
}

func TestPrintResults(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	printResults(&buf, "*UU", []model.CorpusEntry{
		{ID: "a", Contour: "*UUD", MetadataRef: "bach/invention-1.ly", Metadata: &model.Metadata{
			Title: "Invention 1", Composer: model.Composer{Name: "Johann Sebastian Bach"},
		}},
		{ID: "b", Contour: "*UUR"},
	})

	assert.Equal(t, `2 result(s) for *UU
  1. Invention 1 by Johann Sebastian Bach
     *UUD
     bach/invention-1.ly
  2. (untitled)
     *UUR
`, buf.String())
}

func TestInspectWritesExcerpt(t *testing.T) {
	color.NoColor = true
	dir := t.TempDir()
	in := filepath.Join(dir, "tune.mid")
	require.NoError(t, sample.WriteFile(in, sample.FromNotes([]uint8{60, 62, 64, 63, 65}, 120)))

	excerptPath = filepath.Join(dir, "excerpt.mid")
	excerptNotes = 3
	t.Cleanup(func() {
		excerptPath = ""
		excerptNotes = sample.DefaultExcerptNotes
	})

	var buf bytes.Buffer
	require.NoError(t, inspect(&buf, in))
	assert.Contains(t, buf.String(), "contour: *UUDU")
	assert.Contains(t, buf.String(), "pitches: [60 62 64 63 65]")

	score, err := midi.ReadScore(excerptPath)
	require.NoError(t, err)
	seq, err := melody.Extract(score)
	require.NoError(t, err)
	assert.Equal(t, []float64{60, 62, 64}, []float64(seq))
}

func TestInspectMissingFile(t *testing.T) {
	assert.Error(t, inspect(&bytes.Buffer{}, filepath.Join(t.TempDir(), "missing.mid")))
}

func TestAnalyzeCorpus(t *testing.T) {
	p := quietPipeline(t,
		model.CorpusEntry{ID: "a", Contour: "*UUD", Metadata: &model.Metadata{Composer: model.Composer{Name: "Erik Satie"}}},
		model.CorpusEntry{ID: "b", Contour: "*RD", Metadata: &model.Metadata{Composer: model.Composer{Name: "Erik Satie"}}},
	)
	r, err := analyzeCorpus(context.Background(), p.Index)
	require.NoError(t, err)

	assert.Equal(t, 2, r.entries)
	assert.Equal(t, []float64{4, 3}, r.lengths)
	assert.Equal(t, map[rune]int{'U': 2, 'D': 2, 'R': 1}, r.symbols)
	assert.Equal(t, map[string]int{"Erik Satie": 2}, r.composers)

	var buf bytes.Buffer
	r.write(&buf)
	assert.Contains(t, buf.String(), "entries: 2")
	assert.Contains(t, buf.String(), "contour length mean: 3.5")
	assert.Contains(t, buf.String(), "U: 2 (40.0%)")
}

func TestPhraseListener(t *testing.T) {
	p := quietPipeline(t, model.CorpusEntry{ID: "a", Contour: "*UUDR", Metadata: &model.Metadata{Title: "Minuet"}})
	out := &syncBuffer{}
	record := filepath.Join(t.TempDir(), "phrase.mid")

	l := newPhraseListener(context.Background(), p, out, 20*time.Millisecond)
	l.record = record
	for _, key := range []uint8{60, 62, 64, 63} {
		l.noteOn(key)
	}

	assert.Eventually(t, func() bool {
		_, err := os.Stat(record)
		return err == nil
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "1 result(s) for *UUD")
	assert.Contains(t, out.String(), "Minuet")

	// a lone note is not a phrase
	l.noteOn(70)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, strings.Count(out.String(), "result(s)"))
}
