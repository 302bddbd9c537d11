package lyricindex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/himanishpuri/LyricIndex/internal/format"
	"github.com/himanishpuri/LyricIndex/internal/importer"
	"github.com/himanishpuri/LyricIndex/internal/index"
	"github.com/himanishpuri/LyricIndex/internal/metadata"
	"github.com/himanishpuri/LyricIndex/internal/reconcile"
	"github.com/himanishpuri/LyricIndex/internal/watch"
	"github.com/himanishpuri/LyricIndex/pkg/logger"
	"github.com/himanishpuri/LyricIndex/pkg/models"
	"github.com/himanishpuri/LyricIndex/pkg/utils"
)

// library is the default implementation of the Library interface. mu is held
// for writing by Reindex and Import and for reading by everything else, so a
// search never sees a half-applied pass.
type library struct {
	mu     sync.RWMutex
	dir    string
	config *Config
	log    Logger

	index       *index.Index
	store       *metadata.Store
	meta        map[string]models.SongMetadata
	catalog     Catalog
	ownsCatalog bool
	sniffer     *format.Sniffer
	closed      bool
}

// parsedFile is one song file after the parallel parse phase.
type parsedFile struct {
	entry    reconcile.Entry
	format   format.Format
	checksum string
	size     int64
}

// Open opens the library rooted at dir: it creates the reserved index and
// metadata directories, loads the sidecars, opens the index and runs a full
// reindex. Files that fail to parse are reported, never fatal.
func Open(ctx context.Context, dir string, opts ...Option) (Library, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, &IOError{Op: "resolve", Path: dir, Err: err}
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, &IOError{Op: "open library", Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &IOError{Op: "open library", Path: root, Err: errors.New("not a directory")}
	}

	cfg := defaultConfig(root)
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if cfg.ParseWorkers <= 0 {
		cfg.ParseWorkers = 1
	}

	if err := utils.MakeDir(cfg.IndexDir); err != nil {
		return nil, &IOError{Op: "create index dir", Path: cfg.IndexDir, Err: err}
	}
	store, err := metadata.NewStore(cfg.MetadataDir)
	if err != nil {
		return nil, &IOError{Op: "create metadata dir", Path: cfg.MetadataDir, Err: err}
	}

	l := &library{
		dir:     root,
		config:  cfg,
		log:     cfg.Logger,
		store:   store,
		sniffer: format.NewSniffer(importer.Options{Chords: cfg.Chords}, cfg.Logger),
	}

	if cfg.Catalog != nil {
		l.catalog = cfg.Catalog
	} else {
		cat, err := NewSQLiteCatalog(filepath.Join(cfg.IndexDir, CatalogFile))
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		l.catalog = cat
		l.ownsCatalog = true
	}

	idx, cause, err := index.Open(filepath.Join(cfg.IndexDir, IndexName))
	if err != nil {
		l.closeCatalog()
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	if cause != nil {
		l.log.Warnf("Index at %s was unreadable (%v) and has been rebuilt", idx.Path(), cause)
	}
	l.index = idx

	meta, errs := store.LoadAll()
	for _, err := range errs {
		l.log.Warnf("Ignoring unreadable metadata: %v", err)
	}
	l.meta = meta
	l.log.Debugf("Loaded %d metadata sidecars", len(meta))

	if _, err := l.Reindex(ctx); err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

func (l *library) Dir() string { return l.dir }

// Reindex parses every song file in parallel, then applies index, catalog and
// sidecar changes from a single writer.
func (l *library) Reindex(ctx context.Context) (*ReindexReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrClosed
	}

	start := time.Now()
	files, err := utils.ListRegularFiles(l.dir)
	if err != nil {
		return nil, &IOError{Op: "scan", Path: l.dir, Err: err}
	}

	parsed, err := l.parseAll(ctx, files)
	if err != nil {
		return nil, err
	}

	indexed, err := l.index.IndexedPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexed documents: %w", err)
	}

	snapshot := make([]reconcile.Entry, len(parsed))
	byPath := make(map[string]parsedFile, len(parsed))
	for i, p := range parsed {
		snapshot[i] = p.entry
		byPath[p.entry.Path] = p
	}
	changes := reconcile.Plan(snapshot, l.meta, indexed, time.Now().UTC())

	report, err := l.apply(ctx, changes, byPath)
	if err != nil {
		return nil, err
	}
	report.Duration = time.Since(start)

	l.log.Infof("Indexed %d songs (%d failed, %d removed) in %v",
		report.Indexed, report.Failed, report.Removed, report.Duration.Round(time.Millisecond))
	return report, nil
}

func (l *library) parseAll(ctx context.Context, files []string) ([]parsedFile, error) {
	out := make([]parsedFile, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.config.ParseWorkers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = l.parseFile(file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseFile reads and parses one file. A file holding several songs is
// indexed by its first one.
func (l *library) parseFile(file string) parsedFile {
	rel := filepath.Base(file)
	p := parsedFile{entry: reconcile.Entry{Path: rel}}

	data, err := os.ReadFile(file)
	if err != nil {
		p.entry.Err = &IOError{Op: "read", Path: file, Err: err}
		return p
	}
	p.size = int64(len(data))
	p.checksum = utils.Checksum(data)

	f, songs, err := format.ImportDocument(rel, data, importer.Options{Chords: l.config.Chords})
	if err != nil {
		p.entry.Err = err
		return p
	}
	if len(songs) > 1 {
		l.log.Warnf("%s holds %d songs, only the first is indexed; import it to split", rel, len(songs))
	}
	p.format = f
	p.entry.Song = &songs[0]
	return p
}

func (l *library) apply(ctx context.Context, c reconcile.Changes, byPath map[string]parsedFile) (*ReindexReport, error) {
	report := &ReindexReport{
		Indexed:  len(c.Upserts),
		Failed:   len(c.Failed),
		Removed:  len(c.Deletes),
		Warnings: c.Warnings,
	}

	for _, f := range c.Failed {
		l.log.Warnf("Skipping %s: %v", f.Path, f.Err)
		report.Failures = append(report.Failures, Failure{Path: f.Path, Err: f.Err})
	}
	for _, w := range c.Warnings {
		l.log.Warnf("Index: %s", w)
	}

	docs := make([]index.Document, 0, len(c.Upserts))
	for _, u := range c.Upserts {
		p := byPath[u.Path]
		id := l.register(u.Path, u.Song, p.format, p.checksum, p.size)
		docs = append(docs, index.NewDocument(u.Path, id, u.Song))
	}
	if err := l.index.Apply(ctx, docs, c.Deletes); err != nil {
		return nil, fmt.Errorf("failed to update index: %w", err)
	}

	for _, path := range c.Deletes {
		l.forget(path)
	}
	for _, f := range c.Failed {
		l.forget(f.Path)
	}

	for _, md := range c.NewMetadata {
		if l.createMetadata(md) {
			report.CreatedMetadata++
		}
	}
	return report, nil
}

// register records a parsed song in the catalog and returns its id. Catalog
// failures degrade to an index document without id.
func (l *library) register(path string, song *models.Song, f format.Format, checksum string, size int64) string {
	id, err := l.catalog.RegisterSong(CatalogEntry{
		Path:        path,
		PreferredID: song.ID,
		Title:       song.Title(),
		Format:      f.String(),
		Checksum:    checksum,
		Verses:      countVerses(song),
		Size:        size,
	})
	if err != nil {
		l.log.Warnf("Catalog update for %s failed: %v", path, err)
		return song.ID
	}
	return id
}

func (l *library) forget(path string) {
	if err := l.catalog.DeleteSongByPath(path); err != nil {
		l.log.Warnf("Catalog delete for %s failed: %v", path, err)
	}
}

func (l *library) createMetadata(md models.SongMetadata) bool {
	err := l.store.Create(md)
	if errors.Is(err, metadata.ErrExists) {
		// written outside this process since LoadAll; keep the file's value
		if existing, gerr := l.store.Get(md.Path); gerr == nil {
			l.meta[md.Path] = existing
		}
		return false
	}
	if err != nil {
		l.log.Warnf("Failed to write metadata for %s: %v", md.Path, err)
		return false
	}
	l.meta[md.Path] = md
	return true
}

func countVerses(song *models.Song) int {
	if lyr := song.DefaultLyrics(); lyr != nil {
		return len(lyr.Verses)
	}
	return 0
}

func (l *library) Search(ctx context.Context, text string, mode SearchMode, maxResults int) ([]Result, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, ErrClosed
	}
	if maxResults <= 0 {
		maxResults = l.config.MaxResults
	}

	hits, err := l.index.Search(ctx, text, mode, maxResults)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		results = append(results, Result{
			Path:           h.Path,
			ID:             h.ID,
			Title:          h.Title,
			Score:          h.Score,
			TitleSnippet:   h.TitleSnippet,
			VerseSnippet:   h.VerseSnippet,
			KeywordSnippet: h.KeywordSnippet,
		})
	}
	return results, nil
}

// Import stores and indexes every song found in data. Archive members that
// cannot be imported, and songs that cannot be written, are reported in
// ImportResult.Skipped without affecting the others.
func (l *library) Import(ctx context.Context, name string, data []byte) (*ImportResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrClosed
	}

	batch, err := l.sniffer.Import(ctx, name, data)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for _, s := range batch.Skipped {
		result.Skipped = append(result.Skipped, SkippedEntry{Entry: s.Entry, Err: s.Err})
	}

	var docs []index.Document
	now := time.Now().UTC()
	for _, imp := range batch.Songs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		song := imp.Song
		if !utils.IsUUID(song.ID) {
			song.ID = utils.GenerateUUID()
		}
		path, content, err := l.writeSong(&song)
		if err != nil {
			l.log.Warnf("Could not store %s: %v", imp.Entry, err)
			result.Skipped = append(result.Skipped, SkippedEntry{Entry: imp.Entry, Err: err})
			continue
		}

		id := l.register(path, &song, format.InternalV3JSON, utils.Checksum(content), int64(len(content)))
		docs = append(docs, index.NewDocument(path, id, &song))
		if _, ok := l.meta[path]; !ok {
			l.createMetadata(models.SongMetadata{Path: path, DateAdded: now})
		}
		result.Imported = append(result.Imported, ImportedSong{
			Path:   path,
			ID:     id,
			Title:  song.Title(),
			Entry:  imp.Entry,
			Format: imp.Format.String(),
		})
	}

	if err := l.index.Apply(ctx, docs, nil); err != nil {
		return result, fmt.Errorf("failed to index imported songs: %w", err)
	}
	l.log.Infof("Imported %d song(s) from %s, %d skipped", len(result.Imported), name, len(result.Skipped))
	return result, nil
}

// writeSong stores song as a new internal .song file with a unique name.
func (l *library) writeSong(song *models.Song) (string, []byte, error) {
	content, err := importer.EncodeInternalJSON(*song)
	if err != nil {
		return "", nil, fmt.Errorf("encode: %w", err)
	}

	base := utils.Slugify(song.Title())
	name := base + format.ExtSong
	for i := 2; utils.FileExists(filepath.Join(l.dir, name)); i++ {
		name = fmt.Sprintf("%s_%d%s", base, i, format.ExtSong)
	}

	full := filepath.Join(l.dir, name)
	if err := utils.WriteFileAtomic(full, content); err != nil {
		return "", nil, &IOError{Op: "write", Path: full, Err: err}
	}
	return name, content, nil
}

func (l *library) Song(ctx context.Context, id string) (*models.Song, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, ErrClosed
	}
	info, err := l.catalog.GetSongByID(id)
	if err != nil {
		return nil, err
	}
	return l.loadSong(info.Path, info.ID)
}

func (l *library) SongByPath(ctx context.Context, path string) (*models.Song, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, ErrClosed
	}
	rel := filepath.Base(path)
	id := ""
	if info, err := l.catalog.GetSongByPath(rel); err == nil {
		id = info.ID
	}
	return l.loadSong(rel, id)
}

// loadSong re-parses a library file; the canonical Song is never cached.
func (l *library) loadSong(rel, id string) (*models.Song, error) {
	file := filepath.Join(l.dir, rel)
	data, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", rel, ErrNotFound)
	}
	if err != nil {
		return nil, &IOError{Op: "read", Path: file, Err: err}
	}

	_, songs, err := format.ImportDocument(rel, data, importer.Options{Chords: l.config.Chords})
	if err != nil {
		return nil, err
	}
	song := songs[0]
	if id != "" {
		song.ID = id
	}
	return &song, nil
}

func (l *library) Songs(ctx context.Context) ([]SongInfo, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, ErrClosed
	}
	songs, err := l.catalog.ListSongs()
	if err != nil {
		return nil, err
	}
	for i := range songs {
		songs[i].DateAdded = l.meta[songs[i].Path].DateAdded
	}
	return songs, nil
}

// SongCount counts catalog rows without loading them.
func (l *library) SongCount(ctx context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return 0, ErrClosed
	}
	n, err := l.catalog.CountSongs()
	if err != nil {
		return 0, fmt.Errorf("count songs: %w", err)
	}
	return int(n), nil
}

func (l *library) Metadata(path string) (models.SongMetadata, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	md, ok := l.meta[filepath.Base(path)]
	return md, ok
}

func (l *library) Watch(ctx context.Context) error {
	l.mu.RLock()
	closed := l.closed
	l.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	w := watch.New(l.dir, l.config.WatchDebounce, l.log)
	l.log.Infof("Watching %s for changes", l.dir)
	return w.Run(ctx, func(ctx context.Context) error {
		_, err := l.Reindex(ctx)
		if errors.Is(err, ErrClosed) {
			return nil
		}
		return err
	})
}

func (l *library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	var errs []error
	if l.index != nil {
		errs = append(errs, l.index.Close())
	}
	errs = append(errs, l.closeCatalog())
	return errors.Join(errs...)
}

func (l *library) closeCatalog() error {
	if l.ownsCatalog && l.catalog != nil {
		return l.catalog.Close()
	}
	return nil
}

var _ Library = (*library)(nil)
