package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/buger/jsonparser"
	"github.com/gorilla/mux"
	"github.com/jeffreytso/contourdex/constants"
	"github.com/jeffreytso/contourdex/logging"
	"github.com/jeffreytso/contourdex/model"
	"github.com/jeffreytso/contourdex/query"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

const maxQueryBody = 64 << 10

var servePort int

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from PORT)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the search API",
	Long: `Serves the search API:

  GET  /                 corpus status
  POST /search/parsons   ?query=*UUD or {"query": "*UUD"}
  POST /search/audio     multipart "file" field or raw audio body`,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex(cmd.Context())
		if err != nil {
			return err
		}
		defer idx.Close()

		p, err := newPipeline(idx)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = constants.GetPort()
		}
		return serve(cmd.Context(), p, port)
	},
}

type server struct {
	pipeline *query.Pipeline
	logger   logging.Logger
}

// NewRouter wires the HTTP API onto p.
func NewRouter(p *query.Pipeline) http.Handler {
	s := &server{
		pipeline: p,
		logger:   logging.WithFields(logging.Fields{"component": "http"}),
	}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/", s.handleStatus).Methods("GET")
	router.HandleFunc("/search/parsons", s.handleParsons).Methods("POST")
	router.HandleFunc("/search/audio", s.handleAudio).Methods("POST")
	router.Use(s.requestLogger)

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
}

func serve(ctx context.Context, p *query.Pipeline, port int) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewRouter(p),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logging.Info("starting server", logging.Fields{"port": port})
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logging.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *server) writeError(w http.ResponseWriter, status int, msg string) {
	s.logger.Warn("request rejected", logging.Fields{"status": status, "detail": msg})
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pipeline.Status(r.Context()))
}

// parsonsQuery reads the query from the URL, falling back to a JSON body.
func parsonsQuery(r *http.Request) (string, bool, error) {
	if vals, ok := r.URL.Query()["query"]; ok && len(vals) > 0 {
		return vals[0], true, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxQueryBody))
	if err != nil {
		return "", false, err
	}
	if len(body) == 0 {
		return "", false, nil
	}
	q, err := jsonparser.GetString(body, "query")
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return q, true, nil
}

func (s *server) handleParsons(w http.ResponseWriter, r *http.Request) {
	q, ok, err := parsonsQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "could not read query: "+err.Error())
		return
	}
	if !ok {
		s.writeError(w, http.StatusUnprocessableEntity, "query is required")
		return
	}
	writeJSON(w, http.StatusOK, s.pipeline.SearchByText(r.Context(), q))
}

// uploadBytes returns the "file" form field of a multipart request, or the
// raw body otherwise.
func uploadBytes(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		return io.ReadAll(r.Body)
	}

	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func (s *server) handleAudio(w http.ResponseWriter, r *http.Request) {
	data, err := uploadBytes(w, r)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "file is required: "+err.Error())
		return
	}
	if len(data) == 0 {
		s.writeError(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	writeJSON(w, http.StatusOK, s.pipeline.SearchByAudio(r.Context(), data))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info("request", logging.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		})
	})
}
