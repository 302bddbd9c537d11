package index

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/himanishpuri/LyricIndex/pkg/models"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()

	x, cause, err := Open(filepath.Join(t.TempDir(), "lyrics.bleve"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if cause != nil {
		t.Errorf("fresh index reported as rebuilt: %v", cause)
	}
	t.Cleanup(func() { x.Close() })

	docs := []Document{
		{Path: "amazing_grace.xml", ID: "id-a", Title: []string{"Amazing Grace"},
			Verse: []string{"Amazing grace how sweet the sound\nthat saved a wretch like me"}, Keywords: "grace mercy"},
		{Path: "how_great.xml", ID: "id-b", Title: []string{"How Great Thou Art"},
			Verse: []string{"O Lord my God when I in awesome wonder"}},
		{Path: "reversed.song", ID: "id-c", Title: []string{"Reversed"},
			Verse: []string{"art thou great"}},
	}
	if err := x.Apply(context.Background(), docs, nil); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	return x
}

func paths(hits []Hit) []string {
	var out []string
	for _, h := range hits {
		out = append(out, h.Path)
	}
	sort.Strings(out)
	return out
}

func TestSearchModes(t *testing.T) {
	x := openTestIndex(t)
	ctx := context.Background()

	twoVerses := Document{Path: "morning.song", ID: "id-d", Title: []string{"Morning"},
		Verse: []string{"morning has broken", "blackbird has spoken"}}
	if err := x.Apply(ctx, []Document{twoVerses}, nil); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	tests := []struct {
		name string
		text string
		mode Mode
		want []string
	}{
		{"any word single", "wretch", AnyWord, []string{"amazing_grace.xml"}},
		{"phrase in order", "thou art", Phrase, []string{"how_great.xml"}},
		{"all words any order", "thou art", AllWords, []string{"how_great.xml", "reversed.song"}},
		{"any word one present", "thou grace", AnyWord, []string{"amazing_grace.xml", "how_great.xml", "reversed.song"}},
		{"all words one missing", "thou grace", AllWords, nil},
		{"stop words kept", "the sound", Phrase, []string{"amazing_grace.xml"}},
		{"case folded", "AMAZING", AnyWord, []string{"amazing_grace.xml"}},
		{"keyword field", "mercy", Phrase, []string{"amazing_grace.xml"}},
		{"no tokens", "  !! ", AnyWord, nil},
		{"phrase inside one verse", "blackbird has spoken", Phrase, []string{"morning.song"}},
		{"phrase across verses", "broken blackbird", Phrase, nil},
		{"phrase across verses reversed", "blackbird broken", Phrase, nil},
		{"all words across verses", "broken blackbird", AllWords, []string{"morning.song"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := x.Search(ctx, tt.text, tt.mode, 10)
			if err != nil {
				t.Fatalf("Search failed: %v", err)
			}
			got := paths(hits)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Search(%q, %v) = %v, want %v", tt.text, tt.mode, got, tt.want)
			}
		})
	}
}

func TestSearchSnippets(t *testing.T) {
	x := openTestIndex(t)

	hits, err := x.Search(context.Background(), "wretch", AnyWord, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Expected 1 hit, got %d", len(hits))
	}
	h := hits[0]
	if !strings.Contains(h.VerseSnippet, "<mark>wretch</mark>") {
		t.Errorf("VerseSnippet = %q", h.VerseSnippet)
	}
	if h.TitleSnippet != "" || h.KeywordSnippet != "" {
		t.Errorf("Expected only a verse snippet, got title %q keywords %q", h.TitleSnippet, h.KeywordSnippet)
	}
	if h.ID != "id-a" || h.Title != "Amazing Grace" || h.Score <= 0 {
		t.Errorf("Unexpected hit: %+v", h)
	}

	hits, err = x.Search(context.Background(), "grace", AnyWord, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 || !strings.Contains(hits[0].TitleSnippet, "<mark>Grace</mark>") || hits[0].KeywordSnippet == "" {
		t.Errorf("Unexpected hits: %+v", hits)
	}
}

func TestSearchLimit(t *testing.T) {
	x := openTestIndex(t)

	hits, err := x.Search(context.Background(), "thou grace", AnyWord, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("Expected 2 hits, got %d", len(hits))
	}
	if hits[0].Score < hits[1].Score {
		t.Error("hits not ranked by score")
	}
}

func TestApplyDeleteAndIndexedPaths(t *testing.T) {
	x := openTestIndex(t)
	ctx := context.Background()

	song := &models.Song{Keywords: "new", Lyrics: []models.Lyrics{{Title: "Replacement", Verses: []models.Verse{{Name: "v1", Text: "fresh words"}}}}}
	if err := x.Apply(ctx, []Document{NewDocument("how_great.xml", "id-b", song)}, []string{"reversed.song"}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	got, err := x.IndexedPaths(ctx)
	if err != nil {
		t.Fatalf("IndexedPaths failed: %v", err)
	}
	sort.Strings(got)
	if strings.Join(got, ",") != "amazing_grace.xml,how_great.xml" {
		t.Errorf("IndexedPaths = %v", got)
	}

	hits, _ := x.Search(ctx, "thou", AnyWord, 10)
	if len(hits) != 0 {
		t.Errorf("replaced document still matches: %v", paths(hits))
	}
	hits, _ = x.Search(ctx, "fresh words", Phrase, 10)
	if len(hits) != 1 || hits[0].Title != "Replacement" {
		t.Errorf("Unexpected hits: %+v", hits)
	}
}

func TestReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lyrics.bleve")
	x, _, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	doc := Document{Path: "a.xml", Title: []string{"A"}, Verse: []string{"words"}}
	if err := x.Apply(context.Background(), []Document{doc}, nil); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := x.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := x.Search(context.Background(), "words", AnyWord, 10); err != ErrIndexClosed {
		t.Errorf("Expected ErrIndexClosed, got %v", err)
	}

	x, cause, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer x.Close()
	if cause != nil {
		t.Errorf("healthy index reported as rebuilt: %v", cause)
	}
	if n, _ := x.DocCount(); n != 1 {
		t.Errorf("DocCount = %d, want 1", n)
	}
}

func TestOpenRebuildsUnreadableIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lyrics.bleve")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index_meta.json"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	x, cause, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer x.Close()
	if !errors.Is(cause, bleve.ErrorIndexMetaCorrupt) {
		t.Errorf("Expected corrupt meta as cause, got %v", cause)
	}
}

func TestOpenRebuildsIndexWithoutMeta(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lyrics.bleve")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	x, cause, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer x.Close()
	if !errors.Is(cause, bleve.ErrorIndexMetaMissing) {
		t.Errorf("Expected missing meta as cause, got %v", cause)
	}
}

func TestOpenKeepsUnopenablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lyrics.bleve")
	if err := os.WriteFile(path, []byte("not an index"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := Open(path); err == nil {
		t.Fatal("Expected error opening a plain file as index")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("path was removed: %v", err)
	}
	if string(data) != "not an index" {
		t.Errorf("path was rewritten: %q", data)
	}
}

func TestBuildQuery(t *testing.T) {
	analyze := func(field, text string) []string {
		if field == FieldKeywords {
			return nil
		}
		return strings.Fields(strings.ToLower(text))
	}

	if q := BuildQuery(analyze, "   ", AnyWord); q != nil {
		t.Errorf("Expected nil query, got %#v", q)
	}

	q, ok := BuildQuery(analyze, "Thou Art", Phrase).(*query.DisjunctionQuery)
	if !ok || len(q.Disjuncts) != 2 {
		t.Fatalf("Expected disjunction over 2 fields, got %#v", q)
	}
	pq, ok := q.Disjuncts[0].(*query.PhraseQuery)
	if !ok || pq.Field != FieldTitle || strings.Join(pq.Terms, " ") != "thou art" {
		t.Errorf("Unexpected title clause %#v", q.Disjuncts[0])
	}

	q, _ = BuildQuery(analyze, "thou art", AllWords).(*query.DisjunctionQuery)
	if cq, ok := q.Disjuncts[1].(*query.ConjunctionQuery); !ok || len(cq.Conjuncts) != 2 {
		t.Errorf("Expected conjunction, got %#v", q.Disjuncts[1])
	}

	q, _ = BuildQuery(analyze, "thou art", AnyWord).(*query.DisjunctionQuery)
	if dq, ok := q.Disjuncts[1].(*query.DisjunctionQuery); !ok || len(dq.Disjuncts) != 2 {
		t.Errorf("Expected disjunction, got %#v", q.Disjuncts[1])
	}

	q, _ = BuildQuery(analyze, "thou", Phrase).(*query.DisjunctionQuery)
	if tq, ok := q.Disjuncts[0].(*query.TermQuery); !ok || tq.Term != "thou" {
		t.Errorf("Expected term clause, got %#v", q.Disjuncts[0])
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"phrase": Phrase, "ALL_WORDS": AllWords, "any-word": AnyWord, "any": AnyWord} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("fuzzy"); err == nil {
		t.Error("Expected error")
	}
}
