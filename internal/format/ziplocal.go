package format

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

const (
	localHeaderLen = 30
	descriptorLen  = 12 // crc, compressed and uncompressed size

	flagEncrypted  = 0x1
	flagDescriptor = 0x8
)

var (
	localHeaderMagic = []byte("PK\x03\x04")
	descriptorMagic  = []byte("PK\x07\x08")
)

// localEntry is an archive member recovered from its local file header.
type localEntry struct {
	Name string
	Data []byte
	Err  error
}

// scanLocalEntries walks the local file headers of a zip whose central
// directory is missing or damaged, as left by an interrupted download. Stored
// and deflated members are recovered in order; a member that cannot be read
// carries its error and the scan resumes at the next local header.
func scanLocalEntries(data []byte) []localEntry {
	var out []localEntry
	pos := 0
	for pos+localHeaderLen <= len(data) && bytes.Equal(data[pos:pos+4], localHeaderMagic) {
		h := data[pos : pos+localHeaderLen]
		flags := binary.LittleEndian.Uint16(h[6:])
		method := binary.LittleEndian.Uint16(h[8:])
		crc := binary.LittleEndian.Uint32(h[14:])
		csize := int64(binary.LittleEndian.Uint32(h[18:]))
		nameEnd := pos + localHeaderLen + int(binary.LittleEndian.Uint16(h[26:]))
		start := nameEnd + int(binary.LittleEndian.Uint16(h[28:]))
		if start > len(data) {
			name := ""
			if nameEnd <= len(data) {
				name = string(data[pos+localHeaderLen : nameEnd])
			}
			return append(out, localEntry{Name: name, Err: fmt.Errorf("local header: %w", io.ErrUnexpectedEOF)})
		}

		e := localEntry{Name: string(data[pos+localHeaderLen : nameEnd])}
		end := -1
		switch {
		case flags&flagEncrypted != 0:
			e.Err = errors.New("encrypted entry")
		case method == zip.Deflate:
			e.Data, end, e.Err = inflateAt(data, start)
		case method == zip.Store:
			e.Data, end, e.Err = storedAt(data, start, csize, flags&flagDescriptor != 0)
		default:
			e.Err = fmt.Errorf("unsupported compression method %d", method)
		}

		if e.Err == nil {
			if want, ok := entryCRC(data, end, crc, flags&flagDescriptor != 0); ok && crc32.ChecksumIEEE(e.Data) != want {
				e.Err = zip.ErrChecksum
			}
		}
		if e.Err != nil {
			e.Data = nil
		}
		if len(e.Name) == 0 || e.Name[len(e.Name)-1] != '/' {
			out = append(out, e)
		}

		from := start
		if end > start {
			from = end
		}
		pos = nextLocalHeader(data, from)
	}
	return out
}

func nextLocalHeader(data []byte, from int) int {
	if from >= len(data) {
		return len(data)
	}
	i := bytes.Index(data[from:], localHeaderMagic)
	if i < 0 {
		return len(data)
	}
	return from + i
}

// inflateAt decompresses the deflate stream starting at start and reports
// where it ended.
func inflateAt(data []byte, start int) ([]byte, int, error) {
	r := bytes.NewReader(data[start:])
	fr := flate.NewReader(r)
	defer fr.Close()

	body, err := io.ReadAll(io.LimitReader(fr, maxEntrySize+1))
	if err != nil {
		return nil, -1, fmt.Errorf("inflate: %w", err)
	}
	if len(body) > maxEntrySize {
		return nil, -1, fmt.Errorf("entry larger than %d bytes", maxEntrySize)
	}
	return body, len(data) - r.Len(), nil
}

// storedAt slices an uncompressed member. When the sizes live in a trailing
// data descriptor, the descriptor whose size field matches its offset marks
// the end of the member.
func storedAt(data []byte, start int, csize int64, descriptor bool) ([]byte, int, error) {
	if descriptor && csize == 0 {
		for from := start; from < len(data); {
			i := bytes.Index(data[from:], descriptorMagic)
			if i < 0 {
				break
			}
			at := from + i
			if at+4+descriptorLen <= len(data) && int64(binary.LittleEndian.Uint32(data[at+8:])) == int64(at-start) {
				return data[start:at], at, nil
			}
			from = at + 1
		}
		return nil, -1, fmt.Errorf("stored entry: %w", io.ErrUnexpectedEOF)
	}
	if csize > maxEntrySize {
		return nil, -1, fmt.Errorf("entry larger than %d bytes", maxEntrySize)
	}
	end := start + int(csize)
	if end > len(data) {
		return nil, -1, fmt.Errorf("stored entry: %w", io.ErrUnexpectedEOF)
	}
	return data[start:end], end, nil
}

// entryCRC returns the checksum to verify a member against: the header value,
// or the data descriptor that follows the member. ok is false when the
// descriptor was cut off.
func entryCRC(data []byte, end int, headerCRC uint32, descriptor bool) (uint32, bool) {
	if !descriptor {
		return headerCRC, true
	}
	at := end
	if at+4 <= len(data) && bytes.Equal(data[at:at+4], descriptorMagic) {
		at += 4
	}
	if at+4 > len(data) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data[at:]), true
}
