package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// FragmentKind tags the variant held by a Fragment.
type FragmentKind int

const (
	TextFragment FragmentKind = iota
	CommentFragment
	BreakFragment
	TagFragment   // formatting wrapper, unwrapped by Normalize
	ChordFragment // Name holds the chord symbol
)

func (k FragmentKind) String() string {
	switch k {
	case TextFragment:
		return "text"
	case CommentFragment:
		return "comment"
	case BreakFragment:
		return "break"
	case TagFragment:
		return "tag"
	case ChordFragment:
		return "chord"
	default:
		return "unknown"
	}
}

// Fragment is one node of a verse's mixed content.
type Fragment struct {
	Kind     FragmentKind
	Text     string
	Name     string
	Children []Fragment
}

func Text(s string) Fragment    { return Fragment{Kind: TextFragment, Text: s} }
func Comment(s string) Fragment { return Fragment{Kind: CommentFragment, Text: s} }
func Break() Fragment           { return Fragment{Kind: BreakFragment} }

func Tag(name string, children ...Fragment) Fragment {
	return Fragment{Kind: TagFragment, Name: name, Children: children}
}

func Chord(name string, children ...Fragment) Fragment {
	return Fragment{Kind: ChordFragment, Name: name, Children: children}
}

// TextFragments turns plain multi-line text into text fragments separated by breaks.
func TextFragments(s string) []Fragment {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	out := make([]Fragment, 0, 2*len(lines))
	for i, line := range lines {
		if i > 0 {
			out = append(out, Break())
		}
		out = append(out, Text(line))
	}
	return out
}

// Normalize flattens tags, strips literal newlines, collapses whitespace and trims
// text at line boundaries. The result contains only text, comment, break and
// childless chord fragments, and Normalize(Normalize(f)) equals Normalize(f).
func Normalize(frags []Fragment) []Fragment {
	flat := flatten(nil, frags)
	flat = mergeText(flat)

	for i := range flat {
		if flat[i].Kind != TextFragment && flat[i].Kind != CommentFragment {
			continue
		}
		flat[i].Text = collapseSpace(norm.NFC.String(flat[i].Text))
	}

	atLineStart := true
	for i := range flat {
		f := &flat[i]
		switch f.Kind {
		case BreakFragment:
			atLineStart = true
		case TextFragment:
			if atLineStart {
				f.Text = strings.TrimLeft(f.Text, " ")
			}
			if i == len(flat)-1 || flat[i+1].Kind == BreakFragment {
				f.Text = strings.TrimRight(f.Text, " ")
			}
			if f.Text != "" {
				atLineStart = false
			}
		case CommentFragment:
			f.Text = strings.TrimSpace(f.Text)
		}
	}

	out := flat[:0]
	for _, f := range flat {
		if f.Kind == TextFragment && f.Text == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

func flatten(dst []Fragment, frags []Fragment) []Fragment {
	for _, f := range frags {
		switch f.Kind {
		case TagFragment:
			dst = flatten(dst, f.Children)
		case ChordFragment:
			dst = append(dst, Fragment{Kind: ChordFragment, Name: f.Name})
			dst = flatten(dst, f.Children)
		case CommentFragment:
			// comments keep only their text; nested markup is folded in
			dst = append(dst, Fragment{Kind: CommentFragment, Text: f.Text + plainText(f.Children)})
		default:
			dst = append(dst, Fragment{Kind: f.Kind, Text: f.Text})
		}
	}
	return dst
}

func plainText(frags []Fragment) string {
	var sb strings.Builder
	for _, f := range frags {
		sb.WriteString(f.Text)
		sb.WriteString(plainText(f.Children))
	}
	return sb.String()
}

func mergeText(frags []Fragment) []Fragment {
	out := make([]Fragment, 0, len(frags))
	for _, f := range frags {
		if f.Kind == TextFragment && len(out) > 0 && out[len(out)-1].Kind == TextFragment {
			out[len(out)-1].Text += f.Text
			continue
		}
		out = append(out, f)
	}
	return out
}

// collapseSpace maps every whitespace run, newlines included, to a single space.
func collapseSpace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	if space {
		sb.WriteByte(' ')
	}
	return sb.String()
}

// Render turns normalized fragments into display text, one line per break.
// Chords are kept as "[D]" only when chords is set; comments are never rendered.
func Render(frags []Fragment, chords bool) string {
	var lines []string
	var cur strings.Builder
	flush := func() {
		lines = append(lines, strings.TrimSpace(collapseSpace(cur.String())))
		cur.Reset()
	}
	for _, f := range frags {
		switch f.Kind {
		case TextFragment:
			cur.WriteString(f.Text)
		case ChordFragment:
			if chords {
				cur.WriteString("[" + f.Name + "]")
			}
		case BreakFragment:
			flush()
		}
	}
	flush()
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
