package model

type Composer struct {
	Name string `json:"name" bson:"name" msgpack:"name"`
}

type Metadata struct {
	Title        string   `json:"title" bson:"title" msgpack:"title"`
	Composer     Composer `json:"composer" bson:"composer" msgpack:"composer"`
	Opus         string   `json:"opus,omitempty" bson:"opus,omitempty" msgpack:"opus,omitempty"`
	Piece        string   `json:"piece,omitempty" bson:"piece,omitempty" msgpack:"piece,omitempty"`
	Year         string   `json:"year,omitempty" bson:"year,omitempty" msgpack:"year,omitempty"`
	LilypondPath string   `json:"lilypond_path,omitempty" bson:"lilypond_path,omitempty" msgpack:"lilypond_path,omitempty"`
}

// CorpusEntry is one indexed work. Only Contour is interpreted by the search
// core; MetadataRef is an opaque handle owned by the storage layer.
type CorpusEntry struct {
	ID          string    `json:"_id" bson:"_id" msgpack:"id"`
	Contour     Contour   `json:"melodic_contour" bson:"melodic_contour" msgpack:"contour"`
	MetadataRef string    `json:"metadata_ref,omitempty" bson:"metadata_ref,omitempty" msgpack:"metadata_ref,omitempty"`
	Metadata    *Metadata `json:"metadata,omitempty" bson:"metadata,omitempty" msgpack:"metadata,omitempty"`
}

type QueryKind uint8

const (
	QueryLiteral QueryKind = iota
	QueryAudio
)

type Query struct {
	Kind       QueryKind
	Text       string
	Samples    []float64
	SampleRate int
}
