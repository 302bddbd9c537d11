package lyricindex

import (
	"path/filepath"
	"runtime"
	"time"

	"github.com/himanishpuri/LyricIndex/internal/storage"
)

// Reserved subdirectories of a library root.
const (
	IndexDirName    = ".songindex"
	MetadataDirName = ".songmeta"
	CatalogFile     = storage.DefaultDBFile
	IndexName       = "lyrics.bleve"
)

type Config struct {
	IndexDir      string
	MetadataDir   string
	Logger        Logger
	Catalog       Catalog
	ParseWorkers  int
	Chords        bool
	MaxResults    int
	WatchDebounce time.Duration
}

type Option func(*Config)

func WithIndexDir(dir string) Option {
	return func(c *Config) {
		c.IndexDir = dir
	}
}

func WithMetadataDir(dir string) Option {
	return func(c *Config) {
		c.MetadataDir = dir
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

// WithCatalog replaces the default SQLite catalog. The library does not close
// a catalog it was given.
func WithCatalog(catalog Catalog) Option {
	return func(c *Config) {
		c.Catalog = catalog
	}
}

// WithParseWorkers bounds how many files are parsed concurrently during reindex.
func WithParseWorkers(n int) Option {
	return func(c *Config) {
		c.ParseWorkers = n
	}
}

// WithChords keeps chord symbols in verse text (musician display mode).
func WithChords(chords bool) Option {
	return func(c *Config) {
		c.Chords = chords
	}
}

// WithMaxResults sets the result cap used when Search is called with max <= 0.
func WithMaxResults(n int) Option {
	return func(c *Config) {
		c.MaxResults = n
	}
}

func WithWatchDebounce(d time.Duration) Option {
	return func(c *Config) {
		c.WatchDebounce = d
	}
}

func defaultConfig(root string) *Config {
	return &Config{
		IndexDir:      filepath.Join(root, IndexDirName),
		MetadataDir:   filepath.Join(root, MetadataDirName),
		ParseWorkers:  runtime.GOMAXPROCS(0),
		MaxResults:    50,
		WatchDebounce: 500 * time.Millisecond,
	}
}
