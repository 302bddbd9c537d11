package importer

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/himanishpuri/LyricIndex/internal/domain"
	"github.com/himanishpuri/LyricIndex/internal/xmlutil"
	"github.com/himanishpuri/LyricIndex/pkg/models"
)

// LegacyRoot is the root element of legacy dataset exports.
const LegacyRoot = "SongDataSet"

// maxLegacySize bounds the inflated size of a compressed dataset.
const maxLegacySize = 64 << 20

type legacySong struct {
	Title     string `xml:"Title"`
	Author    string `xml:"Author"`
	Copyright string `xml:"Copyright"`
	CCLI      string `xml:"CCLI"`
	Keywords  string `xml:"Keywords"`
	Category  string `xml:"Category"`
	Lyrics    string `xml:"Lyrics"`
}

type legacyDataSet struct {
	XMLName xml.Name     `xml:"SongDataSet"`
	Songs   []legacySong `xml:"Song"`
}

// IsGzip reports whether data starts with the gzip magic number.
func IsGzip(data []byte) bool {
	return len(data) > 2 && data[0] == 0x1f && data[1] == 0x8b
}

// Inflate returns the decompressed payload of a gzip stream.
func Inflate(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxLegacySize+1))
	if err != nil {
		return nil, err
	}
	if len(out) > maxLegacySize {
		return nil, fmt.Errorf("inflated payload exceeds %d bytes", maxLegacySize)
	}
	return out, nil
}

// ParseLegacy parses a legacy SongDataSet export (plain, UTF-16 or gzip-compressed).
func ParseLegacy(data []byte, opts Options) ([]models.Song, error) {
	if IsGzip(data) {
		inflated, err := Inflate(data)
		if err != nil {
			return nil, domain.Invalid(kindLegacy, "gzip: %w", err)
		}
		data = inflated
	}

	var ds legacyDataSet
	if err := xmlutil.NewDecoder(data).Decode(&ds); err != nil {
		return nil, domain.Invalid(kindLegacy, "decode: %w", err)
	}

	songs := make([]models.Song, 0, len(ds.Songs))
	for _, ls := range ds.Songs {
		l := models.Lyrics{Title: ls.Title, Verses: splitSections(ls.Lyrics, opts)}
		for _, name := range splitList(ls.Author) {
			l.Authors = append(l.Authors, models.Author{Name: name})
		}
		songs = append(songs, models.Song{
			Copyright: strings.TrimSpace(ls.Copyright),
			CCLI:      strings.TrimSpace(ls.CCLI),
			Keywords:  strings.TrimSpace(ls.Keywords),
			Tags:      splitList(ls.Category),
			Lyrics:    []models.Lyrics{l},
		})
	}
	return finish(kindLegacy, songs)
}

var sectionMarker = regexp.MustCompile(`^\[\s*([A-Za-z][A-Za-z\- ]*?)\s*(\d*)\s*\]$`)

var sectionPrefixes = map[string]string{
	"verse":      "v",
	"chorus":     "c",
	"refrain":    "c",
	"bridge":     "b",
	"pre-chorus": "p",
	"prechorus":  "p",
	"intro":      "i",
	"ending":     "e",
	"outro":      "e",
	"tag":        "t",
}

// splitSections cuts legacy lyric text into verses on blank lines and on
// "[Verse 2]" / "[Chorus]" style markers.
func splitSections(text string, opts Options) []models.Verse {
	text = strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n")

	var (
		verses  []models.Verse
		lines   []string
		name    string
		counter = map[string]int{}
	)
	flush := func() {
		body := verseText(strings.Join(lines, "\n"), opts)
		lines = lines[:0]
		if body == "" {
			return
		}
		if name == "" {
			counter["v"]++
			name = fmt.Sprintf("v%d", counter["v"])
		}
		verses = append(verses, models.Verse{Name: name, Text: body})
		name = ""
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if m := sectionMarker.FindStringSubmatch(trimmed); m != nil {
			flush()
			prefix, ok := sectionPrefixes[strings.ToLower(m[1])]
			if !ok {
				prefix = "o"
			}
			if n, err := strconv.Atoi(m[2]); err == nil {
				name = prefix + m[2]
				counter[prefix] = max(counter[prefix], n)
			} else {
				counter[prefix]++
				name = fmt.Sprintf("%s%d", prefix, counter[prefix])
			}
			continue
		}
		if trimmed == "" {
			// a marker followed by a blank line keeps its name
			if len(lines) > 0 {
				flush()
			}
			continue
		}
		lines = append(lines, line)
	}
	flush()
	return verses
}
