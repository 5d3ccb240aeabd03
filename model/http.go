package model

type TextSearchResponse struct {
	Query   string        `json:"query"`
	Results []CorpusEntry `json:"results"`
}

type AudioSearchResponse struct {
	GeneratedContour *string       `json:"generated_contour"`
	Results          []CorpusEntry `json:"results"`
}

type StatusResponse struct {
	Message  string `json:"message"`
	Database string `json:"database_connection"`
	Entries  int    `json:"composition_count"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
