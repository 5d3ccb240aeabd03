package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Header
	}{
		{
			name: "mutopia fields win",
			content: `\header {
  title = "Sonata"
  mutopiatitle = "Piano Sonata No. 8"
  composer = "L. v. Beethoven"
  mutopiacomposer = "BeethovenLv (1770-1827)"
  mutopiaopus = "Op. 13"
  opus = "13"
  piece = "Grave"
  mutopiadate = "1798"
}`,
			want: Header{Title: "Piano Sonata No. 8", Composer: "BeethovenLv", Opus: "Op. 13", Piece: "Grave", Year: "1798"},
		},
		{
			name:    "single quotes and case",
			content: `\header { TITLE = 'Arabesque' Composer = 'Claude Debussy (1862-1918)' date = '1888-1891' }`,
			want:    Header{Title: "Arabesque", Composer: "Claude Debussy", Year: "1888"},
		},
		{
			name:    "subtitle is not a title",
			content: `\header { subtitle = "for piano" }`,
			want:    Header{},
		},
		{
			name:    "year out of range",
			content: `\header { date = "2150" }`,
			want:    Header{},
		},
		{
			name:    "empty",
			content: "",
			want:    Header{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseHeader(tt.content))
		})
	}
}

func TestResolveComposer(t *testing.T) {
	tests := map[string]string{
		"J. S. Bach":           "Johann Sebastian Bach",
		"BeethovenLv":          "Ludwig van Beethoven",
		"frederic CHOPIN":      "Frédéric Chopin",
		"Schumann, R.":         "Robert Schumann",
		"Camille Saint-Saëns":  "Camille Saint-Saëns",
		"Tchaikovsky, P. I.":   "Pyotr Ilyich Tchaikovsky",
		"Carl Philipp E. Bach": "Johann Sebastian Bach",
	}
	for in, want := range tests {
		got, ok := ResolveComposer(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "Franz Abt", "Anonymous"} {
		_, ok := ResolveComposer(in)
		assert.False(t, ok, in)
	}
}
