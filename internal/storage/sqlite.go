package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/himanishpuri/LyricIndex/internal/domain"
	"github.com/himanishpuri/LyricIndex/pkg/utils"
)

const DefaultDBFile = "catalog.sqlite3"
const errDBClientNil = "db client is nil"

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// Song is the catalog row of one song file: a stable id for its path plus the
// facts needed to list songs without re-parsing them.
type Song struct {
	ID        string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Path      string `gorm:"uniqueIndex:idx_song_path" json:"path"`
	Title     string `gorm:"index:idx_song_title" json:"title"`
	Format    string `json:"format"`
	Checksum  string `json:"checksum"`
	Verses    int    `json:"verses"`
	Size      int64  `json:"size"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Entry is what callers register for a path.
type Entry struct {
	Path        string
	PreferredID string // used for new rows when it is a free UUID
	Title       string
	Format      string
	Checksum    string
	Verses      int
	Size        int64
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !os.IsExist(err) {
		if filepath.Dir(dbPath) != "." {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=busy_timeout(5000)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	// one writer; the library serialises mutations anyway
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Song{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// RegisterSong inserts or updates the row for e.Path and returns its id.
// The id of an existing path never changes.
func (c *DBClient) RegisterSong(e Entry) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}

	var song Song
	err := c.DB.Where("path = ?", e.Path).First(&song).Error
	if err == nil {
		updates := map[string]interface{}{
			"title":    e.Title,
			"format":   e.Format,
			"checksum": e.Checksum,
			"verses":   e.Verses,
			"size":     e.Size,
		}
		if err := c.DB.Model(&song).Updates(updates).Error; err != nil {
			return "", fmt.Errorf("updating song %s: %w", e.Path, err)
		}
		return song.ID, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("querying existing song: %w", err)
	}

	id := c.newID(e.PreferredID)
	song = Song{
		ID:       id,
		Path:     e.Path,
		Title:    e.Title,
		Format:   e.Format,
		Checksum: e.Checksum,
		Verses:   e.Verses,
		Size:     e.Size,
	}
	err = c.DB.Create(&song).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			(err.Error() != "" && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
				strings.Contains(err.Error(), "constraint failed"))) {
			if fetchErr := c.DB.Where("path = ?", e.Path).First(&song).Error; fetchErr != nil {
				return "", fmt.Errorf("fetching song after constraint violation: %w", fetchErr)
			}
			return song.ID, nil
		}
		return "", fmt.Errorf("creating song: %w", err)
	}

	return song.ID, nil
}

// newID honours a preferred UUID unless another row already owns it.
func (c *DBClient) newID(preferred string) string {
	if utils.IsUUID(preferred) {
		var n int64
		if err := c.DB.Model(&Song{}).Where("id = ?", preferred).Count(&n).Error; err == nil && n == 0 {
			return preferred
		}
	}
	return utils.GenerateUUID()
}

func (c *DBClient) GetSongByID(id string) (*Song, error) {
	return c.first("id = ?", id)
}

func (c *DBClient) GetSongByPath(path string) (*Song, error) {
	return c.first("path = ?", path)
}

func (c *DBClient) first(cond string, arg string) (*Song, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var song Song
	err := c.DB.Where(cond, arg).First(&song).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("song %s: %w", arg, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying song: %w", err)
	}
	return &song, nil
}

// ListSongs returns every catalog row ordered by title, then path.
func (c *DBClient) ListSongs() ([]Song, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var songs []Song
	if err := c.DB.Order("title, path").Find(&songs).Error; err != nil {
		return nil, fmt.Errorf("listing songs: %w", err)
	}
	return songs, nil
}

func (c *DBClient) DeleteSongByPath(path string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.Where("path = ?", path).Delete(&Song{}).Error
}

func (c *DBClient) CountSongs() (int64, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	var n int64
	err := c.DB.Model(&Song{}).Count(&n).Error
	return n, err
}
