// Package reconcile decides how the index and the sidecar store must change to
// match a snapshot of the library directory. It performs no I/O.
package reconcile

import (
	"fmt"
	"sort"
	"time"

	"github.com/himanishpuri/LyricIndex/internal/domain"
	"github.com/himanishpuri/LyricIndex/pkg/models"
)

// Entry is one song file of the directory snapshot, parsed or not.
type Entry struct {
	Path string
	Song *models.Song
	Err  error
}

type Upsert struct {
	Path string
	Song *models.Song
}

type Failure struct {
	Path string
	Err  error
}

// Changes is the outcome of Plan.
type Changes struct {
	Upserts     []Upsert
	Deletes     []string
	NewMetadata []models.SongMetadata
	Failed      []Failure
	Warnings    []domain.IndexCorruptionWarning
}

// Plan compares a directory snapshot with the existing metadata and the paths
// currently indexed. Parsed files are upserted and get metadata dated now when
// they have none; files that fail to parse and paths no longer on disk lose
// their index documents. Existing metadata is never replaced.
func Plan(snapshot []Entry, prev map[string]models.SongMetadata, indexed []string, now time.Time) Changes {
	var c Changes

	inIndex := make(map[string]bool, len(indexed))
	for _, p := range indexed {
		inIndex[p] = true
	}
	onDisk := make(map[string]bool, len(snapshot))

	entries := append([]Entry(nil), snapshot...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	for _, e := range entries {
		if onDisk[e.Path] {
			continue
		}
		onDisk[e.Path] = true

		if e.Err != nil || e.Song == nil {
			err := e.Err
			if err == nil {
				err = fmt.Errorf("no song parsed")
			}
			c.Failed = append(c.Failed, Failure{Path: e.Path, Err: err})
			if inIndex[e.Path] {
				c.Deletes = append(c.Deletes, e.Path)
				c.Warnings = append(c.Warnings, domain.IndexCorruptionWarning{
					Path:   e.Path,
					Reason: fmt.Sprintf("stale document removed, file no longer parses: %v", err),
				})
			}
			continue
		}

		c.Upserts = append(c.Upserts, Upsert{Path: e.Path, Song: e.Song})
		if _, ok := prev[e.Path]; !ok {
			c.NewMetadata = append(c.NewMetadata, models.SongMetadata{Path: e.Path, DateAdded: now})
		}
	}

	var gone []string
	for _, p := range indexed {
		if !onDisk[p] {
			gone = append(gone, p)
		}
	}
	sort.Strings(gone)
	for _, p := range gone {
		c.Deletes = append(c.Deletes, p)
		c.Warnings = append(c.Warnings, domain.IndexCorruptionWarning{
			Path:   p,
			Reason: "stale document removed, file no longer exists",
		})
	}
	return c
}
