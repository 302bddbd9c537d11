package importer

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/himanishpuri/LyricIndex/internal/domain"
	"github.com/himanishpuri/LyricIndex/internal/xmlutil"
	"github.com/himanishpuri/LyricIndex/pkg/models"
)

// OpenLyricsNamespace identifies the OpenLyrics song dialect.
const OpenLyricsNamespace = "http://openlyrics.info/namespace/2009/song"

// TokenSource yields XML tokens; *xml.Decoder satisfies it.
type TokenSource interface {
	Token() (xml.Token, error)
}

// ParseOpenLyrics parses an OpenLyrics document.
func ParseOpenLyrics(data []byte, opts Options) ([]models.Song, error) {
	return ParseOpenLyricsTokens(xmlutil.NewDecoder(data), opts)
}

// ParseOpenLyricsTokens drives the OpenLyrics state machine from any token source.
func ParseOpenLyricsTokens(src TokenSource, opts Options) ([]models.Song, error) {
	p := newOLParser(opts)
	for {
		tok, err := src.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.Invalid(kindOpenLyrics, "%w", err)
		}
		if err := p.handle(tok); err != nil {
			return nil, err
		}
	}
	if p.song == nil {
		return nil, domain.Invalid(kindOpenLyrics, "no song element")
	}
	if !p.done {
		return nil, domain.Invalid(kindOpenLyrics, "unexpected end of document inside <%s>", p.current())
	}
	return finish(kindOpenLyrics, []models.Song{*p.song})
}

type scope int

const (
	songScope scope = iota
	lyricsScope
	verseScope
)

// frame is one entry of the context stack: song, then lyrics, then a verse
// bound to the Lyrics block of its language.
type frame struct {
	scope  scope
	block  int // Lyrics index, verse scope only
	name   string
	frags  []Fragment
	nLines int
}

// fragLevel collects the children of an open <tag>, <chord> or <comment>
// inside <lines>.
type fragLevel struct {
	kind  FragmentKind
	name  string
	items []Fragment
}

type olParser struct {
	opts Options

	song   *models.Song
	done   bool
	blocks map[string]int
	books  []models.Songbook
	first  string // first title seen

	elems  []string // open element names
	attrs  []map[string]string
	frames []frame
	levels []fragLevel
	inLine bool
	text   strings.Builder
}

func newOLParser(opts Options) *olParser {
	return &olParser{opts: opts, blocks: make(map[string]int)}
}

func (p *olParser) current() string {
	if len(p.elems) == 0 {
		return "song"
	}
	return p.elems[len(p.elems)-1]
}

func (p *olParser) parent() string {
	if len(p.elems) < 2 {
		return ""
	}
	return p.elems[len(p.elems)-2]
}

func (p *olParser) top() *frame {
	if len(p.frames) == 0 {
		return nil
	}
	return &p.frames[len(p.frames)-1]
}

func (p *olParser) attr(name string) string {
	if len(p.attrs) == 0 {
		return ""
	}
	return p.attrs[len(p.attrs)-1][name]
}

func (p *olParser) handle(tok xml.Token) error {
	switch t := tok.(type) {
	case xml.StartElement:
		return p.start(t)
	case xml.EndElement:
		return p.end(t.Name.Local)
	case xml.CharData:
		p.chars(string(t))
	}
	return nil
}

func (p *olParser) start(se xml.StartElement) error {
	name := se.Name.Local
	attrs := make(map[string]string, len(se.Attr))
	for _, a := range se.Attr {
		attrs[a.Name.Local] = a.Value
	}

	if p.song == nil {
		if name != "song" {
			return domain.Invalid(kindOpenLyrics, "unexpected root element <%s>", name)
		}
		p.openSong(attrs)
		p.push(name, attrs)
		return nil
	}
	if p.done {
		return domain.Invalid(kindOpenLyrics, "content after </song>")
	}

	if p.inLine {
		return p.startInline(name, attrs)
	}

	p.push(name, attrs)
	p.text.Reset()

	top := p.top()
	switch name {
	case "lyrics":
		if top.scope != songScope {
			return domain.Invalid(kindOpenLyrics, "nested <lyrics>")
		}
		p.frames = append(p.frames, frame{scope: lyricsScope})
	case "verse":
		if top.scope != lyricsScope {
			return domain.Invalid(kindOpenLyrics, "<verse> outside <lyrics>")
		}
		block := p.lyricsFor(attrs["lang"], attrs["translit"])
		p.frames = append(p.frames, frame{scope: verseScope, block: block, name: attrs["name"]})
	case "lines":
		if top.scope != verseScope {
			return domain.Invalid(kindOpenLyrics, "<lines> outside <verse>")
		}
		if top.nLines > 0 {
			top.frags = append(top.frags, Break())
		}
		top.nLines++
		p.inLine = true
	case "songbook":
		if n := strings.TrimSpace(attrs["name"]); n != "" {
			p.books = append(p.books, models.Songbook{Name: n, Entry: strings.TrimSpace(attrs["entry"])})
		}
	}
	return nil
}

// startInline handles markup nested in <lines>.
func (p *olParser) startInline(name string, attrs map[string]string) error {
	p.push(name, attrs)
	top := p.top()
	switch name {
	case "br":
		top.frags = append(top.frags, Break())
	case "tag":
		p.levels = append(p.levels, fragLevel{kind: TagFragment, name: attrs["name"]})
	case "chord":
		p.levels = append(p.levels, fragLevel{kind: ChordFragment, name: chordName(attrs)})
	case "comment":
		p.levels = append(p.levels, fragLevel{kind: CommentFragment})
	default:
		// unknown inline markup is unwrapped like a formatting tag
		p.levels = append(p.levels, fragLevel{kind: TagFragment, name: name})
	}
	return nil
}

func chordName(attrs map[string]string) string {
	if n := attrs["name"]; n != "" {
		return n
	}
	name := attrs["root"] + attrs["structure"]
	if b := attrs["bass"]; b != "" {
		name += "/" + b
	}
	return name
}

func (p *olParser) chars(s string) {
	if p.song == nil || p.done {
		return
	}
	if p.inLine {
		p.appendFrag(Text(s))
		return
	}
	// character data may arrive in several callbacks for one run
	p.text.WriteString(s)
}

func (p *olParser) appendFrag(f Fragment) {
	if n := len(p.levels); n > 0 {
		p.levels[n-1].items = append(p.levels[n-1].items, f)
		return
	}
	top := p.top()
	top.frags = append(top.frags, f)
}

func (p *olParser) end(name string) error {
	if len(p.elems) == 0 || p.current() != name {
		return domain.Invalid(kindOpenLyrics, "unexpected </%s>", name)
	}

	if p.inLine {
		if name == "lines" {
			p.inLine = false
			p.levels = p.levels[:0]
			p.pop()
			return nil
		}
		if name != "br" && len(p.levels) > 0 {
			lv := p.levels[len(p.levels)-1]
			p.levels = p.levels[:len(p.levels)-1]
			p.appendFrag(Fragment{Kind: lv.kind, Name: lv.name, Children: lv.items})
			if name == "line" {
				// pre-0.8 documents wrap each line in <line>
				p.appendFrag(Break())
			}
		}
		p.pop()
		return nil
	}

	text := strings.TrimSpace(p.text.String())
	p.text.Reset()
	s := p.song
	parent := p.parent()

	switch name {
	case "title":
		p.commitTitle(text)
	case "author":
		if text != "" {
			block := p.lyricsFor(p.attr("lang"), "")
			s.Lyrics[block].Authors = append(s.Lyrics[block].Authors, models.Author{
				Name: text,
				Type: p.attr("type"),
				Lang: p.attr("lang"),
			})
		}
	case "copyright":
		s.Copyright = text
	case "ccliNo":
		s.CCLI = text
	case "released":
		s.Released = text
	case "tempo":
		s.Tempo = text
	case "key":
		s.Key = text
	case "variant":
		s.Variant = text
	case "publisher":
		s.Publisher = text
	case "keywords":
		s.Keywords = text
	case "verseOrder":
		s.VerseOrder = strings.Fields(text)
	case "theme":
		if text != "" {
			s.Tags = append(s.Tags, text)
		}
	case "comment":
		if parent == "comments" && text != "" {
			s.Comments = append(s.Comments, text)
		}
	case "verse":
		p.commitVerse()
	case "lyrics":
		p.frames = p.frames[:len(p.frames)-1]
	case "song":
		p.closeSong()
	}
	p.pop()
	return nil
}

func (p *olParser) push(name string, attrs map[string]string) {
	p.elems = append(p.elems, name)
	p.attrs = append(p.attrs, attrs)
}

func (p *olParser) pop() {
	p.elems = p.elems[:len(p.elems)-1]
	p.attrs = p.attrs[:len(p.attrs)-1]
}

func (p *olParser) openSong(attrs map[string]string) {
	p.song = &models.Song{Source: attrs["createdIn"]}
	if src := attrs["modifiedIn"]; src != "" && p.song.Source == "" {
		p.song.Source = src
	}
	if ts := attrs["modifiedDate"]; ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			p.song.Modified = t
		}
	}
	p.frames = append(p.frames, frame{scope: songScope})
}

// lyricsFor returns the Lyrics block for a language, creating it on first sight.
func (p *olParser) lyricsFor(lang, translit string) int {
	key := lang + "|" + translit
	if i, ok := p.blocks[key]; ok {
		return i
	}
	p.song.Lyrics = append(p.song.Lyrics, models.Lyrics{
		Lang:            lang,
		Transliteration: translit != "",
	})
	i := len(p.song.Lyrics) - 1
	p.blocks[key] = i
	return i
}

func (p *olParser) commitTitle(text string) {
	if text == "" {
		return
	}
	if p.first == "" {
		p.first = text
	}
	block := p.lyricsFor(p.attr("lang"), p.attr("translit"))
	l := &p.song.Lyrics[block]
	if l.Title == "" {
		l.Title = text
	}
	if p.attr("original") == "true" {
		l.Original = true
	}
}

func (p *olParser) commitVerse() {
	f := p.frames[len(p.frames)-1]
	p.frames = p.frames[:len(p.frames)-1]

	text := Render(Normalize(f.frags), p.opts.Chords)
	l := &p.song.Lyrics[f.block]
	l.Verses = append(l.Verses, models.Verse{Name: f.name, Text: text})
}

func (p *olParser) closeSong() {
	s := p.song
	p.done = true

	var carrier *models.Lyrics
	if i, ok := p.blocks["|"]; ok {
		carrier = &s.Lyrics[i]
	}
	for i := range s.Lyrics {
		l := &s.Lyrics[i]
		l.Songbooks = append(l.Songbooks, p.books...)
		if l.Title == "" {
			l.Title = p.first
		}
		if carrier != nil && l != carrier && len(l.Authors) == 0 {
			l.Authors = append(l.Authors, carrier.Authors...)
		}
	}

	// a language-less block that only carried properties is folded into the others
	if i, ok := p.blocks["|"]; ok && len(s.Lyrics[i].Verses) == 0 && len(s.Lyrics) > 1 && hasVerses(s.Lyrics) {
		s.Lyrics = append(s.Lyrics[:i], s.Lyrics[i+1:]...)
	}
	s.Default = chooseDefault(s.Lyrics)
}

func hasVerses(blocks []models.Lyrics) bool {
	for _, l := range blocks {
		if len(l.Verses) > 0 {
			return true
		}
	}
	return false
}

// chooseDefault picks the primary block: the first language-less block with
// verses, else the first block with verses, else the first block.
func chooseDefault(blocks []models.Lyrics) int {
	first := -1
	for i, l := range blocks {
		if len(l.Verses) == 0 {
			continue
		}
		if l.Lang == "" && !l.Transliteration {
			return i
		}
		if first < 0 {
			first = i
		}
	}
	if first < 0 {
		return 0
	}
	return first
}
