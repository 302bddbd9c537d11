package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Author is a credited contributor of one Lyrics block.
type Author struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"` // words, music, translation
	Lang string `json:"lang,omitempty"` // set for translators
}

// Songbook is a hymnal reference, e.g. "Mission Praise" #48.
type Songbook struct {
	Name  string `json:"name"`
	Entry string `json:"entry,omitempty"`
}

// Verse is a named block of lyric text ("v1", "c1", "b").
type Verse struct {
	Name     string  `json:"name"`
	Text     string  `json:"text"`
	FontSize float64 `json:"fontSize,omitempty"` // 0 means no hint
}

// Lyrics is one language or transliteration variant of a song.
type Lyrics struct {
	Lang            string     `json:"lang,omitempty"`
	Transliteration bool       `json:"transliteration,omitempty"`
	Original        bool       `json:"original,omitempty"`
	Title           string     `json:"title"`
	Authors         []Author   `json:"authors,omitempty"`
	Songbooks       []Songbook `json:"songbooks,omitempty"`
	Verses          []Verse    `json:"verses"`
}

// Song is the canonical aggregate every importer produces.
type Song struct {
	ID         string    `json:"id,omitempty"`
	Source     string    `json:"source,omitempty"` // creating application
	Modified   time.Time `json:"modified,omitempty"`
	Copyright  string    `json:"copyright,omitempty"`
	CCLI       string    `json:"ccli,omitempty"`
	Released   string    `json:"released,omitempty"`
	Tempo      string    `json:"tempo,omitempty"`
	Key        string    `json:"key,omitempty"`
	Variant    string    `json:"variant,omitempty"`
	Publisher  string    `json:"publisher,omitempty"`
	Keywords   string    `json:"keywords,omitempty"`
	Comments   []string  `json:"comments,omitempty"`
	VerseOrder []string  `json:"verseOrder,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	Lyrics     []Lyrics  `json:"lyrics"`
	Default    int       `json:"default,omitempty"` // index into Lyrics
}

// DefaultLyrics returns the primary Lyrics block, or nil for an invalid song.
func (s *Song) DefaultLyrics() *Lyrics {
	if len(s.Lyrics) == 0 {
		return nil
	}
	if s.Default < 0 || s.Default >= len(s.Lyrics) {
		return &s.Lyrics[0]
	}
	return &s.Lyrics[s.Default]
}

// Title returns the title of the default Lyrics block.
func (s *Song) Title() string {
	if l := s.DefaultLyrics(); l != nil {
		return l.Title
	}
	return ""
}

// Titles returns every distinct non-empty title across all Lyrics blocks.
func (s *Song) Titles() []string {
	seen := make(map[string]bool, len(s.Lyrics))
	var out []string
	for _, l := range s.Lyrics {
		if l.Title == "" || seen[l.Title] {
			continue
		}
		seen[l.Title] = true
		out = append(out, l.Title)
	}
	return out
}

// VerseTexts returns the text of every verse in every Lyrics block.
func (s *Song) VerseTexts() []string {
	var out []string
	for _, l := range s.Lyrics {
		for _, v := range l.Verses {
			if v.Text != "" {
				out = append(out, v.Text)
			}
		}
	}
	return out
}

// Validate enforces the structural invariants of a Song.
func (s Song) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Lyrics, validation.Required.Error("a song needs at least one lyrics block")),
		validation.Field(&s.Default, validation.Min(0), validation.Max(maxIndex(len(s.Lyrics)))),
	)
}

// Validate checks a single Lyrics block.
func (l Lyrics) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Verses),
	)
}

// Validate checks a single verse.
func (v Verse) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.Name, validation.Required),
		validation.Field(&v.FontSize, validation.Min(0.0)),
	)
}

func maxIndex(n int) int {
	if n == 0 {
		return 0
	}
	return n - 1
}
