package importer

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []Fragment
		want []Fragment
	}{
		{
			name: "collapse and trim",
			in:   []Fragment{Text("  Amazing   grace\n how sweet "), Break(), Text("\tthe sound  ")},
			want: []Fragment{Text("Amazing grace how sweet"), Break(), Text("the sound")},
		},
		{
			name: "flatten nested tags",
			in: []Fragment{
				Text("that "),
				Tag("bold", Text("saved "), Tag("it", Text("a wretch"))),
				Text(" like me"),
			},
			want: []Fragment{Text("that saved a wretch like me")},
		},
		{
			name: "chord with children",
			in:   []Fragment{Chord("D", Text(" Amaz")), Text("ing")},
			want: []Fragment{Chord("D"), Text("Amazing")},
		},
		{
			name: "whitespace only lines vanish",
			in:   []Fragment{Text("   "), Break(), Text("x")},
			want: []Fragment{Break(), Text("x")},
		},
		{
			name: "comment trimmed",
			in:   []Fragment{Text("a"), Comment("  slowly \n here ")},
			want: []Fragment{Text("a"), Comment("slowly here")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		in := randomFragments(rng, 3)
		once := Normalize(in)
		twice := Normalize(append([]Fragment(nil), once...))
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("Normalize not idempotent for %#v:\n once  %#v\n twice %#v", in, once, twice)
		}
		for _, f := range once {
			if f.Kind == TagFragment || len(f.Children) > 0 {
				t.Fatalf("Normalize left nested content: %#v", once)
			}
		}
	}
}

var fragmentWords = []string{"", " ", "  ", "\n", "grace", " sweet ", "e\u0301", "\u00e9", "\tsound\n", "a  b"}

func randomFragments(rng *rand.Rand, depth int) []Fragment {
	n := rng.Intn(6)
	out := make([]Fragment, 0, n)
	for i := 0; i < n; i++ {
		word := fragmentWords[rng.Intn(len(fragmentWords))]
		switch k := rng.Intn(5); {
		case k == 0:
			out = append(out, Break())
		case k == 1:
			out = append(out, Comment(word))
		case k == 2 && depth > 0:
			out = append(out, Tag("t", randomFragments(rng, depth-1)...))
		case k == 3 && depth > 0:
			out = append(out, Chord("G", randomFragments(rng, depth-1)...))
		default:
			out = append(out, Text(word))
		}
	}
	return out
}

func TestRender(t *testing.T) {
	frags := Normalize([]Fragment{
		Chord("G"), Text("Amazing "), Chord("C"), Text("grace"), Comment("slow"),
		Break(),
		Text("how sweet the sound"),
		Break(),
	})

	if got, want := Render(frags, false), "Amazing grace\nhow sweet the sound"; got != want {
		t.Errorf("Render(plain) = %q, want %q", got, want)
	}
	if got, want := Render(frags, true), "[G]Amazing [C]grace\nhow sweet the sound"; got != want {
		t.Errorf("Render(chords) = %q, want %q", got, want)
	}
}

func TestTextFragments(t *testing.T) {
	got := Render(Normalize(TextFragments("Line one  \r\n  line two\rline three")), false)
	want := "Line one\nline two\nline three"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
