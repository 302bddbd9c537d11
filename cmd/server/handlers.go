package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/himanishpuri/LyricIndex/pkg/logger"
	"github.com/himanishpuri/LyricIndex/pkg/lyricindex"
	"github.com/himanishpuri/LyricIndex/pkg/models"
	"github.com/himanishpuri/LyricIndex/pkg/utils"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	library lyricindex.Library
	config  *ServerConfig
	log     lyricindex.Logger
	srv     *http.Server
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	AllowedOrigins []string
}

// NewServer creates a new server instance
func NewServer(library lyricindex.Library, config *ServerConfig) *Server {
	s := &Server{
		library: library,
		config:  config,
		log:     logger.GetLogger(),
	}
	s.srv = s.httpServer()
	return s
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// statusFor maps library errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lyricindex.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lyricindex.ErrUnknownFormat), errors.Is(err, lyricindex.ErrInvalidFormat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, lyricindex.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "LyricIndex API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":  "GET /health",
			"metrics": "GET /api/health/metrics",
			"search":  "GET /api/search?q=&mode=&max=",
			"songs":   "GET /api/songs",
			"import":  "POST /api/songs",
			"getSong": "GET /api/songs/{id}",
			"reindex": "POST /api/reindex",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	count, err := s.library.SongCount(r.Context())
	if err != nil {
		s.log.Errorf("Failed to get song count: %v", err)
		s.respondError(w, statusFor(err), "Failed to retrieve metrics")
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:    "healthy",
		Library:   s.library.Dir(),
		SongCount: count,
	})
}

// handleSearch handles GET /api/search
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := SearchRequest{Query: q.Get("q"), Mode: q.Get("mode")}
	if raw := q.Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "max must be a number")
			return
		}
		req.Max = n
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	mode := lyricindex.AnyWord
	if req.Mode != "" {
		m, err := lyricindex.ParseSearchMode(req.Mode)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		mode = m
	}

	results, err := s.library.Search(r.Context(), req.Query, mode, req.Max)
	if err != nil {
		s.log.Errorf("Search %q failed: %v", req.Query, err)
		s.respondError(w, statusFor(err), "Search failed")
		return
	}

	dtos := make([]ResultDTO, len(results))
	for i, res := range results {
		dtos[i] = ResultDTO{
			ID:             res.ID,
			Path:           res.Path,
			Title:          res.Title,
			Score:          res.Score,
			TitleSnippet:   res.TitleSnippet,
			VerseSnippet:   res.VerseSnippet,
			KeywordSnippet: res.KeywordSnippet,
		}
	}
	s.respondJSON(w, http.StatusOK, SearchResponse{
		Query:   req.Query,
		Mode:    mode.String(),
		Results: dtos,
		Count:   len(dtos),
	})
}

// handleListSongs handles GET /api/songs
func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.library.Songs(r.Context())
	if err != nil {
		s.log.Errorf("Failed to list songs: %v", err)
		s.respondError(w, statusFor(err), "Failed to retrieve songs")
		return
	}
	if songs == nil {
		songs = []lyricindex.SongInfo{}
	}

	s.respondJSON(w, http.StatusOK, ListSongsResponse{
		Songs: songs,
		Count: len(songs),
	})
}

// handleGetSong handles GET /api/songs/{id}; {id} may also be a library file name.
func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var (
		song *models.Song
		err  error
	)
	if utils.IsUUID(id) {
		song, err = s.library.Song(r.Context(), id)
	} else {
		song, err = s.library.SongByPath(r.Context(), id)
	}
	if err != nil {
		s.log.Warnf("Song %s: %v", id, err)
		s.respondError(w, statusFor(err), fmt.Sprintf("Song %s not available", id))
		return
	}
	s.respondJSON(w, http.StatusOK, song)
}

// handleImport handles POST /api/songs (multipart upload, field "file")
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.log.Errorf("Failed to read upload: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	name := filepath.Base(header.Filename)
	s.log.Infof("Importing upload %s (%d bytes)", name, len(data))
	result, err := s.library.Import(ctx, name, data)
	if err != nil {
		s.log.Errorf("Import of %s failed: %v", name, err)
		s.respondError(w, statusFor(err), fmt.Sprintf("Failed to import %s: %v", name, err))
		return
	}

	resp := ImportResponse{
		Message:  fmt.Sprintf("Imported %d song(s)", len(result.Imported)),
		Imported: make([]ImportedDTO, 0, len(result.Imported)),
	}
	for _, imp := range result.Imported {
		resp.Imported = append(resp.Imported, ImportedDTO{
			ID:     imp.ID,
			Path:   imp.Path,
			Title:  imp.Title,
			Entry:  imp.Entry,
			Format: imp.Format,
		})
	}
	for _, sk := range result.Skipped {
		resp.Skipped = append(resp.Skipped, SkippedDTO{Entry: sk.Entry, Error: sk.Err.Error()})
	}

	status := http.StatusCreated
	if len(resp.Imported) == 0 {
		status = http.StatusUnprocessableEntity
	}
	s.respondJSON(w, status, resp)
}

// handleReindex handles POST /api/reindex
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	report, err := s.library.Reindex(r.Context())
	if err != nil {
		s.log.Errorf("Reindex failed: %v", err)
		s.respondError(w, statusFor(err), "Reindex failed")
		return
	}
	s.respondJSON(w, http.StatusOK, newReindexResponse(report))
}
