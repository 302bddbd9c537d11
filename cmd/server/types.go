package main

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/himanishpuri/LyricIndex/pkg/lyricindex"
)

const (
	// MaxUploadBytes bounds POST /api/songs bodies.
	MaxUploadBytes = 64 << 20

	// MaxSearchResults is the largest max= a search request may ask for.
	MaxSearchResults = 500
)

// SearchRequest is decoded from the query string of GET /api/search.
type SearchRequest struct {
	Query string
	Mode  string
	Max   int
}

// Validate checks if the request is valid
func (r *SearchRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Query, validation.Required.Error("q is required")),
		validation.Field(&r.Max, validation.Min(0), validation.Max(MaxSearchResults)),
	)
}

// SearchResponse is the response for GET /api/search
type SearchResponse struct {
	Query   string      `json:"query"`
	Mode    string      `json:"mode"`
	Results []ResultDTO `json:"results"`
	Count   int         `json:"count"`
}

// ResultDTO represents a single search hit
type ResultDTO struct {
	ID             string  `json:"id,omitempty"`
	Path           string  `json:"path"`
	Title          string  `json:"title"`
	Score          float64 `json:"score"`
	TitleSnippet   string  `json:"title_snippet,omitempty"`
	VerseSnippet   string  `json:"verse_snippet,omitempty"`
	KeywordSnippet string  `json:"keyword_snippet,omitempty"`
}

// ListSongsResponse is the response for GET /api/songs
type ListSongsResponse struct {
	Songs []lyricindex.SongInfo `json:"songs"`
	Count int                   `json:"count"`
}

// ImportResponse is the response for POST /api/songs
type ImportResponse struct {
	Message  string        `json:"message"`
	Imported []ImportedDTO `json:"imported"`
	Skipped  []SkippedDTO  `json:"skipped,omitempty"`
}

type ImportedDTO struct {
	ID     string `json:"id"`
	Path   string `json:"path"`
	Title  string `json:"title"`
	Entry  string `json:"entry"`
	Format string `json:"format"`
}

type SkippedDTO struct {
	Entry string `json:"entry"`
	Error string `json:"error"`
}

// ReindexResponse is the response for POST /api/reindex
type ReindexResponse struct {
	Indexed         int          `json:"indexed"`
	Failed          int          `json:"failed"`
	Removed         int          `json:"removed"`
	CreatedMetadata int          `json:"created_metadata"`
	Failures        []SkippedDTO `json:"failures,omitempty"`
	Warnings        []string     `json:"warnings,omitempty"`
	DurationMs      int64        `json:"duration_ms"`
}

func newReindexResponse(r *lyricindex.ReindexReport) ReindexResponse {
	resp := ReindexResponse{
		Indexed:         r.Indexed,
		Failed:          r.Failed,
		Removed:         r.Removed,
		CreatedMetadata: r.CreatedMetadata,
		DurationMs:      r.Duration.Milliseconds(),
	}
	for _, f := range r.Failures {
		resp.Failures = append(resp.Failures, SkippedDTO{Entry: f.Path, Error: f.Err.Error()})
	}
	for _, w := range r.Warnings {
		resp.Warnings = append(resp.Warnings, w.String())
	}
	return resp
}

// MetricsResponse provides server health and library metrics
type MetricsResponse struct {
	Status    string `json:"status"`
	Library   string `json:"library"`
	SongCount int    `json:"song_count"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
