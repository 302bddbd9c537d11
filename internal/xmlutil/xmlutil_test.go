package xmlutil

import (
	"testing"

	"golang.org/x/text/encoding/unicode"
)

func TestInspectRoot(t *testing.T) {
	doc := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<!-- exported -->
<song xmlns="http://openlyrics.info/namespace/2009/song" version="0.9"><properties/></song>`)

	root, err := InspectRoot(doc)
	if err != nil {
		t.Fatalf("InspectRoot failed: %v", err)
	}
	if root.Name != "song" {
		t.Errorf("Name = %q, want song", root.Name)
	}
	if root.Namespace != "http://openlyrics.info/namespace/2009/song" {
		t.Errorf("Namespace = %q", root.Namespace)
	}
	if root.Attr("VERSION") != "0.9" {
		t.Errorf("Attr(version) = %q, want 0.9", root.Attr("VERSION"))
	}
}

func TestInspectRootUTF16(t *testing.T) {
	src := `<?xml version="1.0" encoding="utf-16"?><Songs Version="2.0.0"></Songs>`
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte(src))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	root, err := InspectRoot(data)
	if err != nil {
		t.Fatalf("InspectRoot failed: %v", err)
	}
	if root.Name != "Songs" || root.Attr("Version") != "2.0.0" {
		t.Errorf("Unexpected root %+v", root)
	}
}

func TestInspectRootLatin1(t *testing.T) {
	data := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><SongDataSet title=\"Gr\xfc\xdfe\"/>")

	root, err := InspectRoot(data)
	if err != nil {
		t.Fatalf("InspectRoot failed: %v", err)
	}
	if root.Attr("title") != "Grüße" {
		t.Errorf("Attr(title) = %q, want Grüße", root.Attr("title"))
	}
}

func TestInspectRootNotXML(t *testing.T) {
	if _, err := InspectRoot([]byte("just some text")); err == nil {
		t.Error("Expected error for non-XML input")
	}
}
