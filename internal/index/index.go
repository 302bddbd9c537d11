// Package index owns the persistent inverted index over song documents.
package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/highlight/highlighter/html"
)

var ErrIndexClosed = errors.New("index is closed")

// pageSize is used when walking every document in the index.
const pageSize = 500

// metaFile is the file bleve keeps index settings in.
const metaFile = "index_meta.json"

// Index wraps a bleve index with song-specific mapping, queries and highlighting.
type Index struct {
	mu     sync.RWMutex
	path   string
	idx    bleve.Index
	closed bool
}

// Hit is one ranked search result.
type Hit struct {
	Path           string
	ID             string
	Title          string
	Score          float64
	TitleSnippet   string
	VerseSnippet   string
	KeywordSnippet string
}

// Open opens the index at path, creating it when missing. An index whose
// metadata is missing or corrupt is discarded and rebuilt, and the returned
// cause says why. Any other open failure (permissions, a held lock) is
// returned without touching the files on disk.
func Open(path string) (x *Index, cause error, err error) {
	idx, err := bleve.Open(path)
	if err == nil {
		return &Index{path: path, idx: idx}, nil, nil
	}
	if !errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		if !isCorrupt(path, err) {
			return nil, nil, fmt.Errorf("open index %s: %w", path, err)
		}
		if rmErr := os.RemoveAll(path); rmErr != nil {
			return nil, nil, fmt.Errorf("remove unreadable index: %w", rmErr)
		}
		cause = err
	}

	im, err := BuildMapping()
	if err != nil {
		return nil, nil, fmt.Errorf("build mapping: %w", err)
	}
	idx, err = bleve.New(path, im)
	if err != nil {
		return nil, nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{path: path, idx: idx}, cause, nil
}

// isCorrupt reports whether err means the index contents are unusable.
// bleve reports any failure to read index_meta.json as missing, so only a meta
// file that really is absent counts as corruption.
func isCorrupt(path string, err error) bool {
	switch {
	case errors.Is(err, bleve.ErrorIndexMetaCorrupt), errors.Is(err, bleve.ErrorUnknownIndexType):
		return true
	case errors.Is(err, bleve.ErrorIndexMetaMissing):
		_, statErr := os.Stat(filepath.Join(path, metaFile))
		return errors.Is(statErr, fs.ErrNotExist)
	}
	return false
}

func (x *Index) Path() string { return x.path }

// Apply upserts docs and deletes the given paths in a single batch.
func (x *Index) Apply(ctx context.Context, docs []Document, deletes []string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return ErrIndexClosed
	}
	if len(docs) == 0 && len(deletes) == 0 {
		return nil
	}

	batch := x.idx.NewBatch()
	for _, p := range deletes {
		batch.Delete(p)
	}
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := batch.Index(d.Path, d); err != nil {
			return fmt.Errorf("index %s: %w", d.Path, err)
		}
	}
	return x.idx.Batch(batch)
}

// DocCount returns the number of documents in the index.
func (x *Index) DocCount() (uint64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return 0, ErrIndexClosed
	}
	return x.idx.DocCount()
}

// IndexedPaths returns the path of every document currently in the index.
func (x *Index) IndexedPaths(ctx context.Context) ([]string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return nil, ErrIndexClosed
	}

	var paths []string
	for from := 0; ; from += pageSize {
		req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), pageSize, from, false)
		res, err := x.idx.SearchInContext(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		for _, hit := range res.Hits {
			paths = append(paths, hit.ID)
		}
		if len(res.Hits) < pageSize {
			return paths, nil
		}
	}
}

// Analyze splits text with the analyzer configured for field.
func (x *Index) Analyze(field, text string) []string {
	m := x.idx.Mapping()
	analyzer := m.AnalyzerNamed(m.AnalyzerNameForPath(field))
	if analyzer == nil {
		return nil
	}
	var terms []string
	for _, tok := range analyzer.Analyze([]byte(text)) {
		terms = append(terms, string(tok.Term))
	}
	return terms
}

// Search runs text against title, verse and keyword fields. A text that yields
// no tokens returns no hits.
func (x *Index) Search(ctx context.Context, text string, mode Mode, limit int) ([]Hit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return nil, ErrIndexClosed
	}
	if limit <= 0 {
		return nil, nil
	}

	q := BuildQuery(x.Analyze, text, mode)
	if q == nil {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.IncludeLocations = true
	req.Fields = []string{FieldID, FieldTitle}
	req.Highlight = bleve.NewHighlightWithStyle(html.Name)
	for _, f := range SearchFields {
		req.Highlight.AddField(f)
	}

	res, err := x.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, dm := range res.Hits {
		hits = append(hits, convertHit(dm))
	}
	return hits, nil
}

// convertHit maps a bleve hit; missing or oddly typed fields are left empty.
func convertHit(dm *search.DocumentMatch) Hit {
	return Hit{
		Path:           dm.ID,
		ID:             firstString(dm.Fields[FieldID]),
		Title:          firstString(dm.Fields[FieldTitle]),
		Score:          dm.Score,
		TitleSnippet:   firstFragment(dm, FieldTitle),
		VerseSnippet:   firstFragment(dm, FieldVerse),
		KeywordSnippet: firstFragment(dm, FieldKeywords),
	}
}

func firstString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []interface{}:
		for _, e := range t {
			if s, ok := e.(string); ok {
				return s
			}
		}
	}
	return ""
}

// firstFragment returns the leading highlighted fragment of field. The html
// highlighter also emits the opening text of fields without term hits, so
// fields that have no match locations get no snippet.
func firstFragment(dm *search.DocumentMatch, field string) string {
	if len(dm.Locations[field]) == 0 {
		return ""
	}
	if f := dm.Fragments[field]; len(f) > 0 {
		return f[0]
	}
	return ""
}

func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return nil
	}
	x.closed = true
	return x.idx.Close()
}
