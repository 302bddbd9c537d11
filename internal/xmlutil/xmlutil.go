// Package xmlutil holds the XML plumbing shared by the sniffer and the importers:
// BOM/charset aware decoding and root element inspection.
package xmlutil

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// ToUTF8 strips a byte order mark and transcodes UTF-16 input to UTF-8.
// The second result reports whether the input was transcoded from UTF-16.
func ToUTF8(data []byte) ([]byte, bool) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], false
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return data, false
		}
		return out, true
	default:
		return data, false
	}
}

// NewDecoder returns an xml.Decoder over data that understands BOMs and the
// charsets registered with IANA (windows-1252, iso-8859-1, ...).
func NewDecoder(data []byte) *xml.Decoder {
	utf8Data, transcoded := ToUTF8(data)
	dec := xml.NewDecoder(bytes.NewReader(utf8Data))
	dec.Strict = true
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		l := strings.ToLower(label)
		if l == "utf-8" || l == "utf8" || (transcoded && strings.HasPrefix(l, "utf-16")) {
			return input, nil
		}
		enc, err := ianaindex.IANA.Encoding(label)
		if err != nil {
			return nil, fmt.Errorf("charset %q: %w", label, err)
		}
		if enc == nil {
			return nil, fmt.Errorf("charset %q not supported", label)
		}
		return enc.NewDecoder().Reader(input), nil
	}
	return dec
}

// Root describes the first start element of an XML document.
type Root struct {
	Name      string
	Namespace string
	Attrs     map[string]string
}

// Attr returns the value of the attribute with the given local name (case-insensitive).
func (r Root) Attr(name string) string {
	for k, v := range r.Attrs {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// InspectRoot decodes just far enough to return the first start element.
func InspectRoot(data []byte) (Root, error) {
	dec := NewDecoder(data)
	dec.Strict = false
	for {
		tok, err := dec.Token()
		if err != nil {
			return Root{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			root := Root{
				Name:      se.Name.Local,
				Namespace: se.Name.Space,
				Attrs:     make(map[string]string, len(se.Attr)),
			}
			for _, a := range se.Attr {
				root.Attrs[a.Name.Local] = a.Value
			}
			return root, nil
		}
	}
}
