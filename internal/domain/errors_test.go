package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsMatchSentinels(t *testing.T) {
	unknown := &UnknownFormatError{File: "mystery.bin"}
	if !errors.Is(unknown, ErrUnknownFormat) {
		t.Error("UnknownFormatError should match ErrUnknownFormat")
	}

	cause := errors.New("unexpected EOF")
	invalid := &InvalidFormatError{File: "a.xml", Format: "openlyrics", Err: cause}
	wrapped := fmt.Errorf("import: %w", invalid)
	if !errors.Is(wrapped, ErrInvalidFormat) {
		t.Error("wrapped InvalidFormatError should match ErrInvalidFormat")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("InvalidFormatError should unwrap to its cause")
	}
	if errors.Is(invalid, ErrUnknownFormat) {
		t.Error("InvalidFormatError must not match ErrUnknownFormat")
	}
}

func TestWithFile(t *testing.T) {
	err := WithFile(Invalid("legacy", "missing %s", "Song rows"), "old.cvdat")

	var inv *InvalidFormatError
	if !errors.As(err, &inv) {
		t.Fatalf("Expected InvalidFormatError, got %T", err)
	}
	if inv.File != "old.cvdat" {
		t.Errorf("File = %q, want old.cvdat", inv.File)
	}
	want := "invalid legacy document old.cvdat: missing Song rows"
	if inv.Error() != want {
		t.Errorf("Error() = %q, want %q", inv.Error(), want)
	}

	unk := WithFile(&UnknownFormatError{}, "x.bin")
	if unk.Error() != "unknown song format: x.bin" {
		t.Errorf("Unexpected message %q", unk.Error())
	}
}
