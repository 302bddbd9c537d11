package importer

import (
	"errors"
	"testing"

	"github.com/himanishpuri/LyricIndex/internal/domain"
	"github.com/himanishpuri/LyricIndex/pkg/models"
)

func TestParseInternalJSON(t *testing.T) {
	doc := `{
  "format": "Song",
  "version": 3,
  "song": {
    "id": "abc",
    "ccli": "22025",
    "keywords": "majesty",
    "lyrics": [
      {"title": "How Great Thou Art", "authors": [{"name": "Carl Boberg"}],
       "verses": [{"name": "v1", "text": "O Lord my God\n  when I in awesome wonder"}, {"text": "Then sings my soul"}]}
    ]
  }
}`

	songs, err := ParseInternalJSON([]byte(doc), Options{})
	if err != nil {
		t.Fatalf("ParseInternalJSON failed: %v", err)
	}
	if len(songs) != 1 {
		t.Fatalf("Expected 1 song, got %d", len(songs))
	}
	s := songs[0]
	if s.Title() != "How Great Thou Art" || s.ID != "abc" || s.CCLI != "22025" {
		t.Errorf("Unexpected song: %+v", s)
	}
	verses := s.Lyrics[0].Verses
	if len(verses) != 2 {
		t.Fatalf("Expected 2 verses, got %d", len(verses))
	}
	if verses[0].Text != "O Lord my God\nwhen I in awesome wonder" {
		t.Errorf("v1 = %q", verses[0].Text)
	}
	if verses[1].Name != "v2" {
		t.Errorf("unnamed verse got name %q, want v2", verses[1].Name)
	}
}

func TestParseInternalJSONInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"format":`},
		{"wrong marker", `{"format":"Playlist","version":3,"song":{"lyrics":[{"title":"x","verses":[]}]}}`},
		{"future version", `{"format":"Song","version":9,"song":{"lyrics":[{"title":"x","verses":[]}]}}`},
		{"no lyrics", `{"format":"Song","version":3,"song":{"lyrics":[]}}`},
		{"no song", `{"format":"Song","version":3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseInternalJSON([]byte(tt.doc), Options{}); !errors.Is(err, domain.ErrInvalidFormat) {
				t.Errorf("Expected ErrInvalidFormat, got %v", err)
			}
		})
	}
}

func TestEncodeInternalJSON(t *testing.T) {
	song := models.Song{
		Keywords: "grace",
		Lyrics: []models.Lyrics{{
			Title:  "Amazing Grace",
			Verses: []models.Verse{{Name: "v1", Text: "Amazing grace\nhow sweet the sound"}},
		}},
	}

	data, err := EncodeInternalJSON(song)
	if err != nil {
		t.Fatalf("EncodeInternalJSON failed: %v", err)
	}
	songs, err := ParseInternalJSON(data, Options{})
	if err != nil {
		t.Fatalf("ParseInternalJSON of encoded song failed: %v", err)
	}
	got := songs[0]
	if got.Title() != "Amazing Grace" || got.Keywords != "grace" {
		t.Errorf("Unexpected song after encode: %+v", got)
	}
	if got.Lyrics[0].Verses[0].Text != song.Lyrics[0].Verses[0].Text {
		t.Errorf("Verse text changed: %q", got.Lyrics[0].Verses[0].Text)
	}
}
