package format

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/himanishpuri/LyricIndex/internal/importer"
	"github.com/himanishpuri/LyricIndex/pkg/logger"
	"github.com/himanishpuri/LyricIndex/pkg/models"
)

// maxEntrySize bounds a single archive member.
const maxEntrySize = 32 << 20

// Logger is the subset of the logger the sniffer needs.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

// Imported is one song together with where it came from.
type Imported struct {
	Entry  string // archive member name, or the file name for plain documents
	Format Format
	Song   models.Song
}

// Skipped records an archive member that could not be imported.
type Skipped struct {
	Entry string
	Err   error
}

// Batch is the result of importing a file that may be an archive.
type Batch struct {
	Songs   []Imported
	Skipped []Skipped
	Archive bool // input was read as a zip archive
}

// Sniffer imports plain documents and zip archives of documents.
type Sniffer struct {
	opts importer.Options
	log  Logger
}

func NewSniffer(opts importer.Options, log Logger) *Sniffer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Sniffer{opts: opts, log: log}
}

// Import imports every song in data. For zip archives each member is detected
// and parsed on its own: failing members are logged and recorded in
// Batch.Skipped, never returned as an error. An archive that yields nothing is
// retried as a single document. For plain documents the typed detection or
// parse error is returned.
func (s *Sniffer) Import(ctx context.Context, name string, data []byte) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sig := Probe(name, data)
	if sig.IsZip || strings.EqualFold(sig.Ext, ExtZip) {
		batch, err := s.importArchive(ctx, name, data)
		if err != nil {
			return batch, err
		}
		if len(batch.Songs) > 0 {
			return batch, nil
		}

		// TODO: decide with product whether zip-named plain documents should be rejected instead.
		f, songs, derr := s.importDocument(name, data)
		if derr != nil {
			if batch.Archive {
				s.log.Warnf("Archive %s produced no songs (%d skipped)", name, len(batch.Skipped))
				return batch, nil
			}
			return nil, derr
		}
		s.log.Warnf("%s is not a usable archive, imported as a single %s document", name, f)
		return documentBatch(name, f, songs), nil
	}

	f, songs, err := s.importDocument(name, data)
	if err != nil {
		return nil, err
	}
	return documentBatch(name, f, songs), nil
}

func (s *Sniffer) importDocument(name string, data []byte) (Format, []models.Song, error) {
	return ImportDocument(name, data, s.opts)
}

func documentBatch(name string, f Format, songs []models.Song) *Batch {
	b := &Batch{Songs: make([]Imported, 0, len(songs))}
	for _, song := range songs {
		b.Songs = append(b.Songs, Imported{Entry: name, Format: f, Song: song})
	}
	return b
}

// importArchive walks the members of a zip. A zip whose central directory is
// unreadable is recovered member by member from its local headers. A non-zip
// input yields an empty, non-archive batch so the caller can fall back.
func (s *Sniffer) importArchive(ctx context.Context, name string, data []byte) (*Batch, error) {
	batch := &Batch{}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if !bytes.HasPrefix(data, localHeaderMagic) {
			s.log.Debugf("%s is not readable as zip: %v", name, err)
			return batch, nil
		}
		s.log.Warnf("%s has no readable central directory (%v), recovering members from local headers", name, err)
		batch.Archive = true
		for _, e := range scanLocalEntries(data) {
			if err := ctx.Err(); err != nil {
				return batch, err
			}
			if e.Err != nil {
				s.skip(batch, name, e.Name, e.Err)
				continue
			}
			s.importEntry(batch, name, e.Name, e.Data)
		}
		return batch, nil
	}
	batch.Archive = true

	for _, zf := range zr.File {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		if zf.FileInfo().IsDir() || strings.HasSuffix(zf.Name, "/") {
			continue
		}

		entry, err := readEntry(zf)
		if err != nil {
			s.skip(batch, name, zf.Name, err)
			continue
		}
		s.importEntry(batch, name, zf.Name, entry)
	}
	return batch, nil
}

func (s *Sniffer) importEntry(b *Batch, archive, entry string, data []byte) {
	f, songs, err := s.importDocument(entry, data)
	if err != nil {
		s.skip(b, archive, entry, err)
		return
	}
	for _, song := range songs {
		b.Songs = append(b.Songs, Imported{Entry: entry, Format: f, Song: song})
	}
	s.log.Debugf("Imported %d song(s) from %s:%s (%s)", len(songs), archive, entry, f)
}

func (s *Sniffer) skip(b *Batch, archive, entry string, err error) {
	s.log.Warnf("Skipping %s:%s: %v", archive, entry, err)
	b.Skipped = append(b.Skipped, Skipped{Entry: entry, Err: err})
}

func readEntry(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("read entry: %w", err)
	}
	if len(data) > maxEntrySize {
		return nil, fmt.Errorf("entry larger than %d bytes", maxEntrySize)
	}
	return data, nil
}
