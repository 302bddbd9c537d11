package importer

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/himanishpuri/LyricIndex/internal/domain"
	"github.com/himanishpuri/LyricIndex/internal/xmlutil"
	"github.com/himanishpuri/LyricIndex/pkg/models"
)

// InternalXMLv2 is the Version attribute of multi-language internal XML documents.
const InternalXMLv2 = "2.0.0"

type xmlVerse struct {
	Name     string `xml:"Name,attr"`
	FontSize string `xml:"FontSize,attr"`
	Text     string `xml:",chardata"`
}

type xmlAuthor struct {
	Type string `xml:"Type,attr"`
	Lang string `xml:"Lang,attr"`
	Name string `xml:",chardata"`
}

type xmlSongbook struct {
	Name  string `xml:"Name,attr"`
	Entry string `xml:"Entry,attr"`
}

type xmlLyrics struct {
	Lang            string        `xml:"Lang,attr"`
	Default         bool          `xml:"Default,attr"`
	Original        bool          `xml:"Original,attr"`
	Transliteration bool          `xml:"Transliteration,attr"`
	Title           string        `xml:"Title"`
	Authors         []xmlAuthor   `xml:"Author"`
	Songbooks       []xmlSongbook `xml:"Songbook"`
	Verses          []xmlVerse    `xml:"Verse"`
}

type xmlSong struct {
	// shared
	Source     string   `xml:"Source,attr"`
	Modified   string   `xml:"Modified,attr"`
	Copyright  string   `xml:"Copyright"`
	CCLI       string   `xml:"CCLI"`
	Released   string   `xml:"Released"`
	Tempo      string   `xml:"Tempo"`
	Key        string   `xml:"Key"`
	Variant    string   `xml:"Variant"`
	Publisher  string   `xml:"Publisher"`
	Keywords   string   `xml:"Keywords"`
	Comments   []string `xml:"Comments>Comment"`
	VerseOrder string   `xml:"VerseOrder"`
	Tags       []string `xml:"Tags>Tag"`

	// v2
	Lyrics []xmlLyrics `xml:"Lyrics"`

	// v1
	Title     string        `xml:"Title"`
	Authors   []xmlAuthor   `xml:"Author"`
	Songbooks []xmlSongbook `xml:"Songbook"`
	Verses    []xmlVerse    `xml:"Verse"`
}

type xmlSongs struct {
	XMLName xml.Name  `xml:"Songs"`
	Version string    `xml:"Version,attr"`
	Songs   []xmlSong `xml:"Song"`
}

// ParseInternalXML parses both internal XML versions; the Songs root's Version
// attribute selects the multi-language (2.0.0) or single-language layout.
func ParseInternalXML(data []byte, opts Options) ([]models.Song, error) {
	var doc xmlSongs
	if err := xmlutil.NewDecoder(data).Decode(&doc); err != nil {
		return nil, domain.Invalid(kindInternalXML, "decode: %w", err)
	}

	v2 := strings.TrimSpace(doc.Version) == InternalXMLv2
	songs := make([]models.Song, 0, len(doc.Songs))
	for _, xs := range doc.Songs {
		s := models.Song{
			Source:     strings.TrimSpace(xs.Source),
			Copyright:  strings.TrimSpace(xs.Copyright),
			CCLI:       strings.TrimSpace(xs.CCLI),
			Released:   strings.TrimSpace(xs.Released),
			Tempo:      strings.TrimSpace(xs.Tempo),
			Key:        strings.TrimSpace(xs.Key),
			Variant:    strings.TrimSpace(xs.Variant),
			Publisher:  strings.TrimSpace(xs.Publisher),
			Keywords:   strings.TrimSpace(xs.Keywords),
			Comments:   trimAll(xs.Comments),
			VerseOrder: strings.Fields(xs.VerseOrder),
			Tags:       trimAll(xs.Tags),
		}
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(xs.Modified)); err == nil {
			s.Modified = t
		}

		if v2 {
			for i, xl := range xs.Lyrics {
				s.Lyrics = append(s.Lyrics, convertLyrics(xl, opts))
				if xl.Default {
					s.Default = i
				}
			}
		} else {
			s.Lyrics = []models.Lyrics{convertLyrics(xmlLyrics{
				Title:     xs.Title,
				Authors:   xs.Authors,
				Songbooks: xs.Songbooks,
				Verses:    xs.Verses,
			}, opts)}
		}
		songs = append(songs, s)
	}
	return finish(kindInternalXML, songs)
}

func convertLyrics(xl xmlLyrics, opts Options) models.Lyrics {
	l := models.Lyrics{
		Lang:            strings.TrimSpace(xl.Lang),
		Original:        xl.Original,
		Transliteration: xl.Transliteration,
		Title:           xl.Title,
	}
	for _, a := range xl.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			l.Authors = append(l.Authors, models.Author{Name: name, Type: a.Type, Lang: a.Lang})
		}
	}
	for _, b := range xl.Songbooks {
		if name := strings.TrimSpace(b.Name); name != "" {
			l.Songbooks = append(l.Songbooks, models.Songbook{Name: name, Entry: strings.TrimSpace(b.Entry)})
		}
	}
	for _, v := range xl.Verses {
		verse := models.Verse{Name: strings.TrimSpace(v.Name), Text: verseText(v.Text, opts)}
		if fs, err := strconv.ParseFloat(strings.TrimSpace(v.FontSize), 64); err == nil && fs > 0 {
			verse.FontSize = fs
		}
		l.Verses = append(l.Verses, verse)
	}
	return l
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
