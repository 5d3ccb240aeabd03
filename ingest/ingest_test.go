package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jeffreytso/contourdex/index"
	"github.com/jeffreytso/contourdex/logging"
	"github.com/jeffreytso/contourdex/model"
	"github.com/jeffreytso/contourdex/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWork(t *testing.T, root, dir, header string, notes []uint8) {
	t.Helper()
	full := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(full, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(full, "score.ly"), []byte(header), 0o644))
	if notes != nil {
		require.NoError(t, sample.WriteFile(filepath.Join(full, "score.mid"), sample.FromNotes(notes, 120)))
	}
}

type recordingStore struct {
	refs []string
}

func (r *recordingStore) Put(_ context.Context, ref string, _ model.Metadata) error {
	r.refs = append(r.refs, ref)
	return nil
}

func newCorpus(t *testing.T) string {
	root := t.TempDir()
	writeWork(t, root, "bach/invention-1", `\header {
  title = "Invention 1"
  mutopiacomposer = "BachJS"
  composer = "J. S. Bach (1685-1750)"
  opus = "BWV 772"
  date = "c. 1723"
}`, []uint8{60, 62, 64, 63})
	writeWork(t, root, "abt/lied", `\header { composer = "Franz Abt (1819-1885)" }`, []uint8{60, 61})
	writeWork(t, root, "satie/gymnopedie", `\header { mutopiatitle = 'Gymnopédie 1' composer = 'Erik Satie' }`, []uint8{67, 67, 65})
	writeWork(t, root, "chopin/prelude", `\header { composer = "Chopin" }`, []uint8{70})
	writeWork(t, root, "lonely/ly-only", `\header { composer = "Bach" }`, nil)
	return root
}

func TestFindWorks(t *testing.T) {
	root := newCorpus(t)

	works, err := FindWorks(root, 0)
	require.NoError(t, err)
	var dirs []string
	for _, w := range works {
		dirs = append(dirs, filepath.ToSlash(mustRel(t, root, w.Dir)))
	}
	assert.Equal(t, []string{"abt/lied", "bach/invention-1", "chopin/prelude", "satie/gymnopedie"}, dirs)

	works, err = FindWorks(root, 2)
	require.NoError(t, err)
	assert.Len(t, works, 2)
}

func mustRel(t *testing.T, root, p string) string {
	rel, err := filepath.Rel(root, p)
	require.NoError(t, err)
	return rel
}

func TestRun(t *testing.T) {
	root := newCorpus(t)
	idx := index.NewMemory()
	store := &recordingStore{}

	n := 0
	in := New(idx)
	in.Workers = 3
	in.Logger = &logging.NoOpLogger{}
	in.Metadata = store
	in.NewID = func() string { n++; return fmt.Sprint(n) }

	// stale entries are cleared first
	require.NoError(t, idx.Insert(context.Background(), model.CorpusEntry{ID: "old", Contour: "*UUD"}))

	stats, err := in.Run(context.Background(), root, 0)
	require.NoError(t, err)
	assert.Equal(t, Stats{Works: 4, Inserted: 2, Skipped: 2}, stats)

	res, err := idx.Query(context.Background(), "*", 10)
	require.NoError(t, err)
	require.Len(t, res, 2)

	bach := res[0]
	assert.Equal(t, "1", bach.ID)
	assert.Equal(t, "*UUD", bach.Contour)
	assert.Equal(t, "bach/invention-1/score.ly", bach.MetadataRef)
	assert.Equal(t, &model.Metadata{
		Title:        "Invention 1",
		Composer:     model.Composer{Name: "Johann Sebastian Bach"},
		Opus:         "BWV 772",
		Year:         "1723",
		LilypondPath: "bach/invention-1/score.ly",
	}, bach.Metadata)

	satie := res[1]
	assert.Equal(t, "*RD", satie.Contour)
	assert.Equal(t, "Gymnopédie 1", satie.Metadata.Title)
	assert.Equal(t, "Erik Satie", satie.Metadata.Composer.Name)

	assert.Equal(t, []string{"bach/invention-1/score.ly", "satie/gymnopedie/score.ly"}, store.refs)
}

func TestRunMissingRoot(t *testing.T) {
	in := New(index.NewMemory())
	in.Logger = &logging.NoOpLogger{}
	_, err := in.Run(context.Background(), filepath.Join(t.TempDir(), "nope"), 0)
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := New(index.NewMemory())
	in.Logger = &logging.NoOpLogger{}
	_, err := in.Run(ctx, newCorpus(t), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildEntryUnknownComposer(t *testing.T) {
	root := t.TempDir()
	writeWork(t, root, "abt", `\header { composer = "Franz Abt" }`, []uint8{60, 62})
	_, err := BuildEntry(root, Work{
		Dir:          filepath.Join(root, "abt"),
		LilypondPath: filepath.Join(root, "abt", "score.ly"),
		MidiPath:     filepath.Join(root, "abt", "score.mid"),
	})
	assert.ErrorIs(t, err, ErrUnknownComposer)
}
