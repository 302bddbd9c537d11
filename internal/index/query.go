package index

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Mode selects how multi-token queries are combined within one field.
type Mode int

const (
	Phrase   Mode = iota // tokens adjacent and in order
	AllWords             // every token, any order
	AnyWord              // at least one token
)

func (m Mode) String() string {
	switch m {
	case Phrase:
		return "PHRASE"
	case AllWords:
		return "ALL_WORDS"
	case AnyWord:
		return "ANY_WORD"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts PHRASE, ALL_WORDS or ANY_WORD (case and separator insensitive).
func ParseMode(s string) (Mode, error) {
	norm := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToUpper(strings.TrimSpace(s)))
	switch norm {
	case "PHRASE":
		return Phrase, nil
	case "ALL_WORDS", "ALL":
		return AllWords, nil
	case "ANY_WORD", "ANY":
		return AnyWord, nil
	}
	return Phrase, fmt.Errorf("unknown search mode %q", s)
}

// AnalyzeFunc splits text into index terms the way field is analyzed.
type AnalyzeFunc func(field, text string) []string

// BuildQuery turns free text into a disjunction of per-field clauses. It
// returns nil when the text yields no tokens for any field.
func BuildQuery(analyze AnalyzeFunc, text string, mode Mode) query.Query {
	var clauses []query.Query
	for _, field := range SearchFields {
		if q := fieldQuery(field, analyze(field, text), mode); q != nil {
			clauses = append(clauses, q)
		}
	}
	switch len(clauses) {
	case 0:
		return nil
	case 1:
		return clauses[0]
	default:
		return bleve.NewDisjunctionQuery(clauses...)
	}
}

func fieldQuery(field string, terms []string, mode Mode) query.Query {
	switch len(terms) {
	case 0:
		return nil
	case 1:
		return termQuery(field, terms[0])
	}

	switch mode {
	case AllWords:
		conj := make([]query.Query, 0, len(terms))
		for _, t := range terms {
			conj = append(conj, termQuery(field, t))
		}
		return bleve.NewConjunctionQuery(conj...)
	case AnyWord:
		disj := make([]query.Query, 0, len(terms))
		for _, t := range terms {
			disj = append(disj, termQuery(field, t))
		}
		return bleve.NewDisjunctionQuery(disj...)
	default:
		return bleve.NewPhraseQuery(terms, field)
	}
}

func termQuery(field, term string) query.Query {
	q := bleve.NewTermQuery(term)
	q.SetField(field)
	return q
}
