// Package importer turns external song documents into canonical models.Song values.
// Every parser is a pure function of its input bytes; failures are
// *domain.InvalidFormatError and no partial song is ever returned.
package importer

import (
	"fmt"
	"strings"

	"github.com/himanishpuri/LyricIndex/internal/domain"
	"github.com/himanishpuri/LyricIndex/pkg/models"
)

// Options tunes how verse text is rendered.
type Options struct {
	// Chords keeps chord symbols inline ("[G]Amazing") for musician display.
	Chords bool
}

// ParseFunc is the signature shared by every importer.
type ParseFunc func(data []byte, opts Options) ([]models.Song, error)

// Format names used in error messages.
const (
	kindOpenLyrics   = "OpenLyrics"
	kindInternalXML  = "internal XML"
	kindInternalJSON = "internal JSON"
	kindLegacy       = "legacy dataset"
)

// verseText renders plain multi-line text through the shared normalizer.
func verseText(s string, opts Options) string {
	return Render(Normalize(TextFragments(s)), opts.Chords)
}

// finish validates every parsed song and fills in defaults.
func finish(kind string, songs []models.Song) ([]models.Song, error) {
	if len(songs) == 0 {
		return nil, domain.Invalid(kind, "document contains no songs")
	}
	for i := range songs {
		s := &songs[i]
		for j := range s.Lyrics {
			l := &s.Lyrics[j]
			l.Title = strings.TrimSpace(l.Title)
			for k := range l.Verses {
				if l.Verses[k].Name == "" {
					l.Verses[k].Name = fmt.Sprintf("v%d", k+1)
				}
			}
		}
		if err := s.Validate(); err != nil {
			return nil, domain.Invalid(kind, "song %d: %w", i+1, err)
		}
	}
	return songs, nil
}

// splitList splits comma/semicolon separated lists, dropping blanks.
func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
