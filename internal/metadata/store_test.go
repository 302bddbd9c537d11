package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/himanishpuri/LyricIndex/pkg/models"
)

func TestCreateAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".songmeta")
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	added := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	md := models.SongMetadata{
		Path:        "amazing_grace.xml",
		DateAdded:   added,
		Annotations: []models.Annotation{{Verse: "v1", Text: "slow"}},
	}
	if err := s.Create(md); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "amazing_grace.xml.meta.json")); err != nil {
		t.Errorf("sidecar not written: %v", err)
	}

	all, errs := s.LoadAll()
	if len(errs) != 0 {
		t.Fatalf("LoadAll errors: %v", errs)
	}
	got, ok := all["amazing_grace.xml"]
	if !ok {
		t.Fatalf("metadata missing: %v", all)
	}
	if !got.DateAdded.Equal(added) || len(got.Annotations) != 1 {
		t.Errorf("Unexpected metadata: %+v", got)
	}

	one, err := s.Get("amazing_grace.xml")
	if err != nil || !one.DateAdded.Equal(added) {
		t.Errorf("Get = %+v, %v", one, err)
	}
}

func TestCreateNeverOverwrites(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	first := models.SongMetadata{Path: "a.xml", DateAdded: time.Unix(100, 0).UTC()}
	if err := s.Create(first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	err = s.Create(models.SongMetadata{Path: "a.xml", DateAdded: time.Unix(200, 0).UTC()})
	if !errors.Is(err, ErrExists) {
		t.Fatalf("Expected ErrExists, got %v", err)
	}

	got, _ := s.Get("a.xml")
	if !got.DateAdded.Equal(first.DateAdded) {
		t.Errorf("DateAdded overwritten: %v", got.DateAdded)
	}
}

func TestLoadAllSkipsCorrupt(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewStore(dir)
	if err := s.Create(models.SongMetadata{Path: "good.xml", DateAdded: time.Now().UTC()}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.xml"+Suffix), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	all, errs := s.LoadAll()
	if len(all) != 1 || len(errs) != 1 {
		t.Errorf("Expected 1 entry and 1 error, got %v and %v", all, errs)
	}
}

func TestGetMissing(t *testing.T) {
	s, _ := NewStore(t.TempDir())
	if _, err := s.Get("nope.xml"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}
