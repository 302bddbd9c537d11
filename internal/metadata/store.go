// Package metadata keeps one JSON sidecar per song file. A sidecar is created
// the first time its song is seen and never rewritten afterwards.
package metadata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/himanishpuri/LyricIndex/pkg/models"
	"github.com/himanishpuri/LyricIndex/pkg/utils"
)

// Suffix is appended to a song's file name to name its sidecar.
const Suffix = ".meta.json"

var ErrExists = errors.New("metadata already exists")

type Store struct {
	dir string
}

// NewStore opens the sidecar directory, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := utils.MakeDir(dir); err != nil {
		return nil, fmt.Errorf("create metadata dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// SidecarPath returns where the sidecar for songPath lives.
func (s *Store) SidecarPath(songPath string) string {
	return filepath.Join(s.dir, filepath.Base(songPath)+Suffix)
}

// LoadAll reads every sidecar into a map keyed by song path. Unreadable
// sidecars are skipped and reported in the second result.
func (s *Store) LoadAll() (map[string]models.SongMetadata, []error) {
	files, err := utils.ListRegularFiles(s.dir)
	if err != nil {
		return map[string]models.SongMetadata{}, []error{fmt.Errorf("list metadata: %w", err)}
	}

	out := make(map[string]models.SongMetadata, len(files))
	var errs []error
	for _, f := range files {
		if !strings.HasSuffix(f, Suffix) {
			continue
		}
		md, err := readSidecar(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if md.Path == "" {
			md.Path = strings.TrimSuffix(filepath.Base(f), Suffix)
		}
		out[md.Path] = md
	}
	return out, errs
}

func readSidecar(file string) (models.SongMetadata, error) {
	var md models.SongMetadata
	data, err := os.ReadFile(file)
	if err != nil {
		return md, fmt.Errorf("read %s: %w", file, err)
	}
	if err := json.Unmarshal(data, &md); err != nil {
		return md, fmt.Errorf("decode %s: %w", file, err)
	}
	return md, nil
}

// Get reads the sidecar of one song.
func (s *Store) Get(songPath string) (models.SongMetadata, error) {
	md, err := readSidecar(s.SidecarPath(songPath))
	if errors.Is(err, os.ErrNotExist) {
		return md, fmt.Errorf("metadata for %s: %w", songPath, os.ErrNotExist)
	}
	return md, err
}

// Create writes a sidecar for a song that has none. It returns ErrExists when
// one is already present; existing sidecars are never overwritten.
func (s *Store) Create(md models.SongMetadata) error {
	if md.Path == "" {
		return errors.New("metadata without path")
	}
	file := s.SidecarPath(md.Path)
	if utils.FileExists(file) {
		return fmt.Errorf("%s: %w", md.Path, ErrExists)
	}

	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	return utils.WriteFileAtomic(file, data)
}
