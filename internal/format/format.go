// Package format identifies which importer understands a document and runs it.
package format

import (
	"github.com/himanishpuri/LyricIndex/internal/domain"
	"github.com/himanishpuri/LyricIndex/internal/importer"
	"github.com/himanishpuri/LyricIndex/pkg/models"
)

// Format is the closed set of supported document formats.
type Format int

const (
	Unknown Format = iota
	OpenLyrics
	InternalV1
	InternalV2
	InternalV3JSON
	Legacy
)

func (f Format) String() string {
	switch f {
	case OpenLyrics:
		return "openlyrics"
	case InternalV1:
		return "internal-v1"
	case InternalV2:
		return "internal-v2"
	case InternalV3JSON:
		return "internal-json"
	case Legacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Parser returns the importer for f, or nil for Unknown.
func (f Format) Parser() importer.ParseFunc {
	switch f {
	case OpenLyrics:
		return importer.ParseOpenLyrics
	case InternalV1, InternalV2:
		return importer.ParseInternalXML
	case InternalV3JSON:
		return importer.ParseInternalJSON
	case Legacy:
		return importer.ParseLegacy
	default:
		return nil
	}
}

// Detect runs the sniffing cascade over a single (non-archive) document.
func Detect(name string, data []byte) (Format, error) {
	if f := Classify(Probe(name, data)); f != Unknown {
		return f, nil
	}
	return Unknown, &domain.UnknownFormatError{File: name}
}

// ImportDocument detects and parses a single document. Errors carry the file name
// and no partial songs are returned.
func ImportDocument(name string, data []byte, opts importer.Options) (Format, []models.Song, error) {
	f, err := Detect(name, data)
	if err != nil {
		return Unknown, nil, err
	}
	songs, err := f.Parser()(data, opts)
	if err != nil {
		return f, nil, domain.WithFile(err, name)
	}
	return f, songs, nil
}
