package format

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tidwall/gjson"

	"github.com/himanishpuri/LyricIndex/internal/importer"
	"github.com/himanishpuri/LyricIndex/internal/xmlutil"
)

// File extensions with a fixed meaning.
const (
	ExtLegacy = ".cvdat"
	ExtXML    = ".xml"
	ExtSong   = ".song"
	ExtZip    = ".zip"
)

const maxFirstLine = 256

// Signals is everything the cascade looks at, collected up front so that
// Classify stays a pure function.
type Signals struct {
	MIME   string
	IsXML  bool // MIME probe says XML
	IsJSON bool // MIME probe says JSON
	IsZip  bool
	Gzip   bool // payload was gzip, root fields describe the inflated content

	RootName      string
	RootNamespace string
	RootVersion   string

	Marker    string // "format" field of a JSON object
	Ext       string // lower-cased, with dot
	FirstLine string
}

// Probe gathers sniffing signals for data; name is only used for its extension.
func Probe(name string, data []byte) Signals {
	s := Signals{Ext: strings.ToLower(filepath.Ext(name))}

	mt := mimetype.Detect(data)
	s.MIME = mt.String()
	for m := mt; m != nil; m = m.Parent() {
		switch {
		case m.Is("text/xml"), m.Is("application/xml"):
			s.IsXML = true
		case m.Is("application/json"):
			s.IsJSON = true
		case m.Is("application/zip"):
			s.IsZip = true
		}
	}

	body := data
	if importer.IsGzip(data) {
		if inflated, err := importer.Inflate(data); err == nil {
			s.Gzip = true
			body = inflated
		}
	}
	text, _ := xmlutil.ToUTF8(body)
	s.FirstLine = firstLine(text)

	trimmed := bytes.TrimLeft(text, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '<' {
		if root, err := xmlutil.InspectRoot(body); err == nil {
			s.RootName = root.Name
			s.RootNamespace = root.Namespace
			s.RootVersion = root.Attr("Version")
		}
	}
	if len(trimmed) > 0 && trimmed[0] == '{' {
		s.Marker = gjson.GetBytes(trimmed, "format").String()
	}
	return s
}

func firstLine(text []byte) string {
	for _, line := range bytes.Split(text, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if len(line) > maxFirstLine {
			line = line[:maxFirstLine]
		}
		return string(line)
	}
	return ""
}

// Classify resolves the format from signals: content first, then the file
// extension, then the first non-blank line.
func Classify(s Signals) Format {
	// content sniff
	if s.Gzip && s.RootName == importer.LegacyRoot {
		return Legacy
	}
	if s.IsXML && !s.Gzip {
		if f := fromRoot(s); f != Unknown {
			return f
		}
	}
	if s.IsJSON && s.Marker == importer.SongMarker {
		return InternalV3JSON
	}

	// extension fallback
	switch s.Ext {
	case ExtLegacy:
		return Legacy
	case ExtXML:
		if f := fromRoot(s); f != Unknown && !s.Gzip {
			return f
		}
	case ExtSong:
		if s.Marker == importer.SongMarker {
			return InternalV3JSON
		}
	}

	// first-line heuristic
	switch {
	case strings.HasPrefix(s.FirstLine, "{"):
		if s.Marker == importer.SongMarker {
			return InternalV3JSON
		}
	case strings.HasPrefix(s.FirstLine, "<"): // declaration or bare root element
		if f := fromRoot(s); f != Unknown && !s.Gzip {
			return f
		}
	}
	return Unknown
}

func fromRoot(s Signals) Format {
	switch {
	case s.RootName == importer.LegacyRoot:
		return Legacy
	case s.RootName == "Songs":
		if strings.TrimSpace(s.RootVersion) == importer.InternalXMLv2 {
			return InternalV2
		}
		return InternalV1
	case s.RootName == "song" && s.RootNamespace == importer.OpenLyricsNamespace:
		return OpenLyrics
	}
	return Unknown
}
