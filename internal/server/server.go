// Package server exposes conversion and catalog synchronization over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kavithaselva95/excel-connector/pkg/connector"
	"github.com/kavithaselva95/excel-connector/pkg/connector/catalog"
	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
	"github.com/kavithaselva95/excel-connector/pkg/connector/output"
)

// MaxUploadBytes bounds the size of an uploaded workbook.
const MaxUploadBytes = 32 << 20

// Options configures the server.
type Options struct {
	// Addr is the listen address.
	Addr string
	// Directory is synchronized by GET /api/datasets.
	Directory string
	// Format is the default output format of POST /api/convert.
	Format  output.Format
	Convert connector.Options
	Catalog catalog.Options
	Logger  *slog.Logger
}

// Server serves the HTTP API.
type Server struct {
	router *chi.Mux
	opts   Options
	log    *slog.Logger
}

// New creates a server with routes registered.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		router: chi.NewRouter(),
		opts:   opts,
		log:    log,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/api/convert", s.handleConvert)
	s.router.Get("/api/datasets", s.handleDatasets)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleConvert converts an uploaded workbook. Form fields: file (required),
// format (json or jsonl), pretty, and sheet (repeatable).
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid upload: %w", err))
		return
	}

	format := s.opts.Format
	if v := r.FormValue("format"); v != "" {
		f, err := output.ParseFormat(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		format = f
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing file: %w", err))
		return
	}
	defer file.Close()

	path, cleanup, err := saveUpload(file, header.Filename)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer cleanup()

	opts := s.opts.Convert
	opts.Logger = s.log.With("request_id", middleware.GetReqID(r.Context()))
	if sheets := r.MultipartForm.Value["sheet"]; len(sheets) > 0 {
		opts.Sheets = sheets
	}

	wb, err := connector.Convert(r.Context(), path, opts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, connector.ErrUnreadableFile) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err)
		return
	}
	wb.BookName = filepath.Base(header.Filename)
	wb.Path = header.Filename

	var buf bytes.Buffer
	if err := output.WriteWorkbook(&buf, wb, format, r.FormValue("pretty") == "true"); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if format == output.FormatJSONL {
		w.Header().Set("Content-Type", "application/x-ndjson")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	opts := s.opts.Catalog
	opts.Logger = s.log.With("request_id", middleware.GetReqID(r.Context()))
	datasets, err := catalog.Synchronize(r.Context(), s.opts.Directory, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, datasets)
}

// saveUpload copies an upload to a temporary file keeping its extension.
func saveUpload(src io.Reader, name string) (string, func(), error) {
	tmp, err := os.CreateTemp("", "excel-connector-*"+filepath.Ext(name))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to store upload: %w", err)
	}
	return tmp.Name(), cleanup, nil
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: errorKind(err)})
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrUnreadableFile):
		return "unreadable_file"
	case errors.Is(err, models.ErrSheetNotFound):
		return "sheet_not_found"
	case errors.Is(err, models.ErrDuplicateColumn):
		return "duplicate_column"
	case errors.Is(err, models.ErrWrite):
		return "write"
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
