package ingest

import (
	"os"
	"regexp"
	"strings"

	"github.com/mdobak/go-xerrors"
)

// Header holds the fields of a LilyPond \header block we index.
type Header struct {
	Title    string
	Composer string
	Opus     string
	Piece    string
	Year     string
}

var (
	parenthesised = regexp.MustCompile(`\s*\([^)]*\)\s*`)
	yearPattern   = regexp.MustCompile(`\b(1[5-9]\d{2}|20\d{2})\b`)
)

func fieldPattern(names string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)\b(?:` + names + `)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
}

var (
	mutopiaTitle    = fieldPattern("mutopiatitle")
	title           = fieldPattern("title")
	mutopiaComposer = fieldPattern("mutopiacomposer")
	composer        = fieldPattern("composer")
	mutopiaOpus     = fieldPattern("mutopiaopus")
	opus            = fieldPattern("opus")
	piece           = fieldPattern("piece")
	date            = fieldPattern("date|mutopiadate")
)

// pickFirst returns the trimmed value of the first pattern that matches.
func pickFirst(content string, patterns ...*regexp.Regexp) string {
	for _, p := range patterns {
		m := p.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		v := m[1]
		if v == "" {
			v = m[2]
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// ParseHeader extracts header fields from LilyPond source. Mutopia fields
// win over their plain counterparts.
func ParseHeader(content string) Header {
	h := Header{
		Title: pickFirst(content, mutopiaTitle, title),
		Opus:  pickFirst(content, mutopiaOpus, opus),
		Piece: pickFirst(content, piece),
	}
	if c := pickFirst(content, mutopiaComposer, composer); c != "" {
		h.Composer = strings.TrimSpace(parenthesised.ReplaceAllString(c, " "))
	}
	if d := pickFirst(content, date); d != "" {
		h.Year = yearPattern.FindString(d)
	}
	return h
}

func ReadHeader(path string) (Header, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Header{}, xerrors.New("read lilypond header", err)
	}
	return ParseHeader(string(b)), nil
}
