package importer

import (
	"github.com/goccy/go-json"

	"github.com/himanishpuri/LyricIndex/internal/domain"
	"github.com/himanishpuri/LyricIndex/pkg/models"
)

const (
	// SongMarker is the value of the "format" field in internal JSON documents.
	SongMarker = "Song"
	// InternalJSONVersion is the version written by EncodeInternalJSON.
	InternalJSONVersion = 3
)

type songEnvelope struct {
	Format  string        `json:"format"`
	Version int           `json:"version"`
	Song    *models.Song  `json:"song,omitempty"`
	Songs   []models.Song `json:"songs,omitempty"`
}

// ParseInternalJSON decodes the internal JSON song format.
func ParseInternalJSON(data []byte, opts Options) ([]models.Song, error) {
	var env songEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, domain.Invalid(kindInternalJSON, "decode: %w", err)
	}
	if env.Format != SongMarker {
		return nil, domain.Invalid(kindInternalJSON, "format marker %q is not %q", env.Format, SongMarker)
	}
	if env.Version > InternalJSONVersion {
		return nil, domain.Invalid(kindInternalJSON, "unsupported version %d", env.Version)
	}

	songs := env.Songs
	if env.Song != nil {
		songs = append([]models.Song{*env.Song}, songs...)
	}
	for i := range songs {
		for j := range songs[i].Lyrics {
			for k := range songs[i].Lyrics[j].Verses {
				v := &songs[i].Lyrics[j].Verses[k]
				v.Text = verseText(v.Text, opts)
			}
		}
	}
	return finish(kindInternalJSON, songs)
}

// EncodeInternalJSON writes song in the internal JSON format.
func EncodeInternalJSON(song models.Song) ([]byte, error) {
	return json.MarshalIndent(songEnvelope{
		Format:  SongMarker,
		Version: InternalJSONVersion,
		Song:    &song,
	}, "", "  ")
}
