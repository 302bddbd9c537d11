package main

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/himanishpuri/LyricIndex/pkg/logger"
	"github.com/himanishpuri/LyricIndex/pkg/lyricindex"
)

const testSong = `<?xml version="1.0" encoding="UTF-8"?>
<song xmlns="http://openlyrics.info/namespace/2009/song" version="0.9">
  <properties><titles><title>How Great Thou Art</title></titles></properties>
  <lyrics>
    <verse name="c1"><lines>Then sings my soul<br/>how great thou art</lines></verse>
  </lyrics>
</song>
`

// setupTestServer opens a library over a temp dir holding one song.
func setupTestServer(t *testing.T) (http.Handler, lyricindex.Library) {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "how_great.xml"), []byte(testSong), 0644); err != nil {
		t.Fatal(err)
	}
	logger.SetDefault(logger.Discard())

	lib, err := lyricindex.Open(context.Background(), dir, lyricindex.WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("Failed to open library: %v", err)
	}
	t.Cleanup(func() { lib.Close() })

	s := NewServer(lib, &ServerConfig{Port: 0, AllowedOrigins: []string{"*"}})
	return s.setupRoutes(), lib
}

func doRequest(t *testing.T, h http.Handler, req *http.Request, want int, out any) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != want {
		t.Fatalf("%s %s: status %d, want %d (body %s)", req.Method, req.URL, rec.Code, want, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
}

func TestHandleSearch(t *testing.T) {
	h, _ := setupTestServer(t)

	var resp SearchResponse
	doRequest(t, h, httptest.NewRequest(http.MethodGet, "/api/search?q=thou+art&mode=PHRASE", nil), http.StatusOK, &resp)
	if resp.Count != 1 || resp.Results[0].Path != "how_great.xml" {
		t.Fatalf("Unexpected results: %+v", resp)
	}
	if resp.Mode != "PHRASE" {
		t.Errorf("Mode = %q", resp.Mode)
	}
	if !strings.Contains(resp.Results[0].VerseSnippet, "<mark>") {
		t.Errorf("VerseSnippet = %q", resp.Results[0].VerseSnippet)
	}

	doRequest(t, h, httptest.NewRequest(http.MethodGet, "/api/search", nil), http.StatusBadRequest, nil)
	doRequest(t, h, httptest.NewRequest(http.MethodGet, "/api/search?q=x&mode=FUZZY", nil), http.StatusBadRequest, nil)
	doRequest(t, h, httptest.NewRequest(http.MethodGet, "/api/search?q=x&max=many", nil), http.StatusBadRequest, nil)
}

func TestHandleSongs(t *testing.T) {
	h, _ := setupTestServer(t)

	var list ListSongsResponse
	doRequest(t, h, httptest.NewRequest(http.MethodGet, "/api/songs", nil), http.StatusOK, &list)
	if list.Count != 1 {
		t.Fatalf("Count = %d", list.Count)
	}

	var song map[string]any
	doRequest(t, h, httptest.NewRequest(http.MethodGet, "/api/songs/"+list.Songs[0].ID, nil), http.StatusOK, &song)
	if song["id"] != list.Songs[0].ID {
		t.Errorf("Song id = %v", song["id"])
	}

	doRequest(t, h, httptest.NewRequest(http.MethodGet, "/api/songs/how_great.xml", nil), http.StatusOK, nil)
	doRequest(t, h, httptest.NewRequest(http.MethodGet, "/api/songs/missing.xml", nil), http.StatusNotFound, nil)
	doRequest(t, h, httptest.NewRequest(http.MethodDelete, "/api/songs/how_great.xml", nil), http.StatusMethodNotAllowed, nil)
}

func TestHandleImport(t *testing.T) {
	h, lib := setupTestServer(t)

	upload := func(name, content string) *http.Request {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("file", name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
		mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/songs", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}

	var resp ImportResponse
	doRequest(t, h, upload("again.xml", testSong), http.StatusCreated, &resp)
	if len(resp.Imported) != 1 || resp.Imported[0].Path != "how_great_thou_art.song" {
		t.Fatalf("Imported = %+v", resp.Imported)
	}
	if _, err := os.Stat(filepath.Join(lib.Dir(), resp.Imported[0].Path)); err != nil {
		t.Errorf("Imported file missing: %v", err)
	}

	doRequest(t, h, upload("notes.txt", "nothing to see"), http.StatusUnprocessableEntity, nil)
}

func TestHandleReindex(t *testing.T) {
	h, lib := setupTestServer(t)

	if err := os.WriteFile(filepath.Join(lib.Dir(), "broken.xml"), []byte("<song"), 0644); err != nil {
		t.Fatal(err)
	}

	var resp ReindexResponse
	doRequest(t, h, httptest.NewRequest(http.MethodPost, "/api/reindex", nil), http.StatusOK, &resp)
	if resp.Indexed != 1 || resp.Failed != 1 {
		t.Errorf("Reindex = %+v", resp)
	}
	if len(resp.Failures) != 1 || resp.Failures[0].Entry != "broken.xml" {
		t.Errorf("Failures = %+v", resp.Failures)
	}
}

func TestHealth(t *testing.T) {
	h, lib := setupTestServer(t)

	doRequest(t, h, httptest.NewRequest(http.MethodGet, "/health", nil), http.StatusOK, nil)

	var m MetricsResponse
	doRequest(t, h, httptest.NewRequest(http.MethodGet, "/api/health/metrics", nil), http.StatusOK, &m)
	if m.SongCount != 1 || m.Library != lib.Dir() {
		t.Errorf("Metrics = %+v", m)
	}
}
