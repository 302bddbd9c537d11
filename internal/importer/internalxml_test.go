package importer

import (
	"errors"
	"testing"

	"github.com/himanishpuri/LyricIndex/internal/domain"
)

func TestParseInternalXMLv1(t *testing.T) {
	doc := `<?xml version="1.0" encoding="utf-8"?>
<Songs Version="1.0.0">
  <Song>
    <Title>How Great Thou Art</Title>
    <Author>Carl Boberg</Author>
    <CCLI>14181</CCLI>
    <VerseOrder>v1 c1</VerseOrder>
    <Verse Name="v1" FontSize="32">O Lord my God
      when I in awesome wonder</Verse>
    <Verse Name="c1">Then sings my soul</Verse>
  </Song>
</Songs>`

	songs, err := ParseInternalXML([]byte(doc), Options{})
	if err != nil {
		t.Fatalf("ParseInternalXML failed: %v", err)
	}
	if len(songs) != 1 {
		t.Fatalf("Expected 1 song, got %d", len(songs))
	}
	s := songs[0]
	if s.Title() != "How Great Thou Art" || s.CCLI != "14181" {
		t.Errorf("Unexpected song: %+v", s)
	}
	l := s.Lyrics[0]
	if len(l.Verses) != 2 {
		t.Fatalf("Expected 2 verses, got %d", len(l.Verses))
	}
	if l.Verses[0].Text != "O Lord my God\nwhen I in awesome wonder" || l.Verses[0].FontSize != 32 {
		t.Errorf("v1 = %+v", l.Verses[0])
	}
	if len(l.Authors) != 1 || l.Authors[0].Name != "Carl Boberg" {
		t.Errorf("Authors = %+v", l.Authors)
	}
}

func TestParseInternalXMLv2(t *testing.T) {
	doc := `<Songs Version="2.0.0">
  <Song Source="LyricIndex" Modified="2024-01-02T03:04:05Z">
    <Tags><Tag>Praise</Tag></Tags>
    <Lyrics Lang="sv" Original="true">
      <Title>O store Gud</Title>
      <Verse Name="v1">O store Gud</Verse>
    </Lyrics>
    <Lyrics Lang="en" Default="true">
      <Title>How Great Thou Art</Title>
      <Songbook Name="Hymnal" Entry="12"/>
      <Verse Name="v1">O Lord my God</Verse>
    </Lyrics>
  </Song>
  <Song>
    <Lyrics><Title>Second</Title><Verse Name="v1">two</Verse></Lyrics>
  </Song>
</Songs>`

	songs, err := ParseInternalXML([]byte(doc), Options{})
	if err != nil {
		t.Fatalf("ParseInternalXML failed: %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("Expected 2 songs, got %d", len(songs))
	}
	s := songs[0]
	if len(s.Lyrics) != 2 || s.Default != 1 {
		t.Fatalf("Expected 2 blocks with default 1, got %d/%d", len(s.Lyrics), s.Default)
	}
	if s.Title() != "How Great Thou Art" || !s.Lyrics[0].Original {
		t.Errorf("Unexpected lyrics: %+v", s.Lyrics)
	}
	if s.Source != "LyricIndex" || s.Modified.Year() != 2024 || len(s.Tags) != 1 {
		t.Errorf("Unexpected properties: %+v", s)
	}
	if songs[1].Title() != "Second" {
		t.Errorf("second song title = %q", songs[1].Title())
	}
}

func TestParseInternalXMLInvalid(t *testing.T) {
	for _, doc := range []string{
		`<Songs Version="1.0.0"><Song><Title>x</Title>`,
		`<Songs Version="2.0.0"></Songs>`,
		`<Songs Version="2.0.0"><Song><Copyright>c</Copyright></Song></Songs>`,
		`<Other/>`,
	} {
		if _, err := ParseInternalXML([]byte(doc), Options{}); !errors.Is(err, domain.ErrInvalidFormat) {
			t.Errorf("Expected ErrInvalidFormat for %q, got %v", doc, err)
		}
	}
}
