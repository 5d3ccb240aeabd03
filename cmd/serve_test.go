package cmd

import (
	"bytes"
	"context"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jeffreytso/contourdex/audio"
	"github.com/jeffreytso/contourdex/index"
	"github.com/jeffreytso/contourdex/logging"
	"github.com/jeffreytso/contourdex/model"
	"github.com/jeffreytso/contourdex/query"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logging.SetGlobalLogger(&logging.NoOpLogger{})
	t.Cleanup(func() { logging.SetGlobalLogger(logging.NewDefaultLogger()) })

	ctx := context.Background()
	idx := index.NewMemory()
	require.NoError(t, idx.Insert(ctx, model.CorpusEntry{
		ID:          "a",
		Contour:     "*UUD",
		MetadataRef: "bach/invention-1.ly",
		Metadata: &model.Metadata{
			Title:        "Invention 1",
			Composer:     model.Composer{Name: "Johann Sebastian Bach"},
			LilypondPath: "bach/invention-1.ly",
		},
	}))
	require.NoError(t, idx.Insert(ctx, model.CorpusEntry{ID: "b", Contour: "*DDU", MetadataRef: "satie/gymnopedie-1.ly"}))

	return NewRouter(query.New(idx))
}

func do(t *testing.T, h http.Handler, req *http.Request) (int, []byte) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	resp := w.Result()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func twoToneWAV() []byte {
	const rate = 22050
	var samples []float64
	for _, f := range []float64{440, 523.25} {
		for i := range rate / 2 {
			samples = append(samples, 0.5*math.Sin(2*math.Pi*f*float64(i)/rate))
		}
	}
	return audio.EncodeWAV(model.Waveform{Samples: samples, SampleRate: rate, Channels: 1})
}

func TestHTTPGolden(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name   string
		req    func() *http.Request
		status int
	}{
		{
			name:   "status",
			req:    func() *http.Request { return httptest.NewRequest(http.MethodGet, "/", nil) },
			status: http.StatusOK,
		},
		{
			name:   "parsons_match",
			req:    func() *http.Request { return httptest.NewRequest(http.MethodPost, "/search/parsons?query=UD", nil) },
			status: http.StatusOK,
		},
		{
			name: "parsons_json_body",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/search/parsons", strings.NewReader(`{"query": "dd"}`))
			},
			status: http.StatusOK,
		},
		{
			name:   "parsons_no_match",
			req:    func() *http.Request { return httptest.NewRequest(http.MethodPost, "/search/parsons?query=Z", nil) },
			status: http.StatusOK,
		},
		{
			name:   "parsons_missing_query",
			req:    func() *http.Request { return httptest.NewRequest(http.MethodPost, "/search/parsons", nil) },
			status: http.StatusUnprocessableEntity,
		},
		{
			name: "audio_match",
			req: func() *http.Request {
				var buf bytes.Buffer
				mw := multipart.NewWriter(&buf)
				fw, _ := mw.CreateFormFile("file", "hum.wav")
				fw.Write(twoToneWAV())
				mw.Close()
				req := httptest.NewRequest(http.MethodPost, "/search/audio", &buf)
				req.Header.Set("Content-Type", mw.FormDataContentType())
				return req
			},
			status: http.StatusOK,
		},
		{
			name: "audio_no_melody",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/search/audio", strings.NewReader("not audio at all"))
			},
			status: http.StatusOK,
		},
		{
			name:   "audio_missing_file",
			req:    func() *http.Request { return httptest.NewRequest(http.MethodPost, "/search/audio", nil) },
			status: http.StatusUnprocessableEntity,
		},
	}

	g := goldie.New(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, h, tt.req())
			assert.Equal(t, tt.status, status)
			g.Assert(t, tt.name, body)
		})
	}
}

func TestHTTPMethodNotAllowed(t *testing.T) {
	h := newTestRouter(t)
	status, _ := do(t, h, httptest.NewRequest(http.MethodGet, "/search/parsons?query=UD", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestHTTPCORSPreflight(t *testing.T) {
	h := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/search/parsons", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
