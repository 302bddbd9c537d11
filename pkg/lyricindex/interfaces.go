package lyricindex

import (
	"context"

	"github.com/himanishpuri/LyricIndex/pkg/models"
)

// Library is an indexed directory of song files.
type Library interface {
	// Reindex re-parses every song file and brings the index, catalog and
	// sidecars in line with the directory.
	Reindex(ctx context.Context) (*ReindexReport, error)
	Search(ctx context.Context, text string, mode SearchMode, maxResults int) ([]Result, error)
	// Import sniffs data (a document or a zip of documents), stores each song in
	// the library as an internal .song file and indexes it.
	Import(ctx context.Context, name string, data []byte) (*ImportResult, error)
	Song(ctx context.Context, id string) (*models.Song, error)
	SongByPath(ctx context.Context, path string) (*models.Song, error)
	Songs(ctx context.Context) ([]SongInfo, error)
	SongCount(ctx context.Context) (int, error)
	Metadata(path string) (models.SongMetadata, bool)
	// Watch reindexes after changes to the library directory until ctx is done.
	Watch(ctx context.Context) error
	Dir() string
	Close() error
}

// Catalog maps song ids to library paths.
type Catalog interface {
	RegisterSong(e CatalogEntry) (string, error)
	GetSongByID(id string) (*SongInfo, error)
	GetSongByPath(path string) (*SongInfo, error)
	ListSongs() ([]SongInfo, error)
	CountSongs() (int64, error)
	DeleteSongByPath(path string) error
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
