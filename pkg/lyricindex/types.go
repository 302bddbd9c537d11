package lyricindex

import (
	"time"

	"github.com/himanishpuri/LyricIndex/internal/index"
)

// SearchMode selects how the words of a query must match.
type SearchMode = index.Mode

const (
	Phrase   = index.Phrase   // PHRASE: words adjacent and in order
	AllWords = index.AllWords // ALL_WORDS: every word, any order
	AnyWord  = index.AnyWord  // ANY_WORD: at least one word
)

// ParseSearchMode accepts PHRASE, ALL_WORDS or ANY_WORD.
func ParseSearchMode(s string) (SearchMode, error) {
	return index.ParseMode(s)
}

// Result is one ranked search hit. Snippets wrap matched spans in <mark> and
// are empty for fields that did not match.
type Result struct {
	Path           string
	ID             string
	Title          string
	Score          float64
	TitleSnippet   string
	VerseSnippet   string
	KeywordSnippet string
}

// SongInfo is the catalog view of one song file.
type SongInfo struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Format    string    `json:"format"`
	Checksum  string    `json:"checksum"`
	Verses    int       `json:"verses"`
	Size      int64     `json:"size"`
	DateAdded time.Time `json:"dateAdded,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// CatalogEntry is what the library registers for each indexed file.
type CatalogEntry struct {
	Path        string
	PreferredID string
	Title       string
	Format      string
	Checksum    string
	Verses      int
	Size        int64
}

type Failure struct {
	Path string
	Err  error
}

// ReindexReport summarises one reconciliation pass.
type ReindexReport struct {
	Indexed         int
	Failed          int
	Removed         int
	CreatedMetadata int
	Failures        []Failure
	Warnings        []IndexCorruptionWarning
	Duration        time.Duration
}

type ImportedSong struct {
	Path   string // file written in the library
	ID     string
	Title  string
	Entry  string // source document or archive member
	Format string
}

type SkippedEntry struct {
	Entry string
	Err   error
}

type ImportResult struct {
	Imported []ImportedSong
	Skipped  []SkippedEntry
}
