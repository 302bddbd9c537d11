package lyricindex

import (
	"github.com/himanishpuri/LyricIndex/internal/storage"
)

// storageAdapter adapts the storage.DBClient to implement the Catalog interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteCatalog opens (or creates) a SQLite catalog at dbPath.
func NewSQLiteCatalog(dbPath string) (Catalog, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) RegisterSong(e CatalogEntry) (string, error) {
	return s.db.RegisterSong(storage.Entry{
		Path:        e.Path,
		PreferredID: e.PreferredID,
		Title:       e.Title,
		Format:      e.Format,
		Checksum:    e.Checksum,
		Verses:      e.Verses,
		Size:        e.Size,
	})
}

func (s *storageAdapter) GetSongByID(id string) (*SongInfo, error) {
	row, err := s.db.GetSongByID(id)
	if err != nil {
		return nil, err
	}
	info := toSongInfo(*row)
	return &info, nil
}

func (s *storageAdapter) GetSongByPath(path string) (*SongInfo, error) {
	row, err := s.db.GetSongByPath(path)
	if err != nil {
		return nil, err
	}
	info := toSongInfo(*row)
	return &info, nil
}

func (s *storageAdapter) ListSongs() ([]SongInfo, error) {
	rows, err := s.db.ListSongs()
	if err != nil {
		return nil, err
	}

	songs := make([]SongInfo, len(rows))
	for i, row := range rows {
		songs[i] = toSongInfo(row)
	}
	return songs, nil
}

func (s *storageAdapter) CountSongs() (int64, error) {
	return s.db.CountSongs()
}

func (s *storageAdapter) DeleteSongByPath(path string) error {
	return s.db.DeleteSongByPath(path)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}

func toSongInfo(row storage.Song) SongInfo {
	return SongInfo{
		ID:        row.ID,
		Path:      row.Path,
		Title:     row.Title,
		Format:    row.Format,
		Checksum:  row.Checksum,
		Verses:    row.Verses,
		Size:      row.Size,
		UpdatedAt: row.UpdatedAt,
	}
}
