package ingest

import (
	"strings"
)

// Composers is the allow-list of canonical composer names. Order matters:
// the first name whose last word occurs in a header wins.
var Composers = []string{
	"Johann Sebastian Bach",
	"Béla Bartók",
	"Johannes Brahms",
	"Max Bruch",
	"Anton Bruckner",
	"Ludwig van Beethoven",
	"Frédéric Chopin",
	"Carl Czerny",
	"Claude Debussy",
	"Antonín Dvořák",
	"Gabriel Fauré",
	"César Franck",
	"Edvard Grieg",
	"Joseph Haydn",
	"George Frideric Handel",
	"Franz Liszt",
	"Wolfgang Amadeus Mozart",
	"Felix Mendelssohn",
	"Modest Mussorgsky",
	"Niccolò Paganini",
	"Sergei Rachmaninoff",
	"Jean-Philippe Rameau",
	"Nikolai Rimsky-Korsakov",
	"Camille Saint-Saëns",
	"Franz Schubert",
	"Erik Satie",
	"Domenico Scarlatti",
	"Robert Schumann",
	"Alexander Scriabin",
	"Richard Strauss",
	"Pyotr Ilyich Tchaikovsky",
	"Tomaso Antonio Vitali",
	"Antonio Vivaldi",
}

func lastName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[len(fields)-1])
}

// ResolveComposer maps a free-form composer string to its canonical
// allow-list name.
func ResolveComposer(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	lc := strings.ToLower(name)
	for _, c := range Composers {
		if strings.Contains(lc, lastName(c)) {
			return c, true
		}
	}
	return "", false
}
