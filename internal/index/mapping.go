package index

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

// AnalyzerName is the analyzer shared by every searchable field: Unicode word
// segmentation and lower-casing, no stop-word removal.
const AnalyzerName = "lyrics"

// Field names of an index document.
const (
	FieldPath     = "path"
	FieldID       = "id"
	FieldTitle    = "title"
	FieldVerse    = "verse"
	FieldKeywords = "keywords"
)

// SearchFields are queried and highlighted, in result order.
var SearchFields = []string{FieldTitle, FieldVerse, FieldKeywords}

// BuildMapping returns the index mapping for song documents.
func BuildMapping() (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()
	err := im.AddCustomAnalyzer(AnalyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, err
	}
	im.DefaultAnalyzer = AnalyzerName

	text := func() *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = AnalyzerName
		fm.Store = true
		fm.IncludeTermVectors = true
		return fm
	}
	keyword := bleve.NewKeywordFieldMapping()
	keyword.Store = true

	doc := bleve.NewDocumentStaticMapping()
	doc.AddFieldMappingsAt(FieldPath, keyword)
	doc.AddFieldMappingsAt(FieldID, keyword)
	doc.AddFieldMappingsAt(FieldTitle, text())
	doc.AddFieldMappingsAt(FieldVerse, text())
	doc.AddFieldMappingsAt(FieldKeywords, text())

	im.DefaultMapping = doc
	return im, nil
}
