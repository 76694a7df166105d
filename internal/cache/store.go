package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/ipc"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"golang.org/x/sync/errgroup"

	"github.com/sqlstash/sqlstash/internal/table"
)

// entryFileExtension is the file extension used for cache entries.
const entryFileExtension = ".arrow"

// Schema metadata keys persisted alongside the payload. They carry the
// entry metadata so a file is self-describing.
const (
	metaKeyQuery     = "sqlstash.query"
	metaKeyCreatedAt = "sqlstash.created_at"
	metaKeyRows      = "sqlstash.rows"
)

// listConcurrency bounds how many entry files List inspects in parallel.
const listConcurrency = 8

// FileStore persists one cache entry per fingerprint as an Arrow IPC stream
// file inside a single directory. Writes replace atomically (temp file plus
// rename), so readers never observe a partially written entry. Safe for
// interleaved use within one process; concurrent processes sharing the
// directory are not coordinated.
type FileStore struct {
	directory string
	mem       memory.Allocator

	// now is stubbed in tests to age entries artificially.
	now func() time.Time

	// mu protects concurrent access to file operations.
	mu sync.RWMutex
}

// NewFileStore opens (creating if necessary) a cache store rooted at
// directory.
func NewFileStore(directory string) (*FileStore, error) {
	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &FileStore{
		directory: directory,
		mem:       memory.NewGoAllocator(),
		now:       time.Now,
	}, nil
}

// Directory returns the cache directory path.
func (s *FileStore) Directory() string { return s.directory }

func (s *FileStore) entryPath(fingerprint string) string {
	return filepath.Join(s.directory, fingerprint+entryFileExtension)
}

// Exists reports whether an entry file is present for the fingerprint.
func (s *FileStore) Exists(fingerprint string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.entryPath(fingerprint))
	return err == nil
}

// Save serializes the table and its metadata, replacing any prior entry for
// the fingerprint. The payload is written to a temp file in the same
// directory and renamed into place so an interrupted write never leaves a
// partial entry visible.
func (s *FileStore) Save(fingerprint string, t *table.Table, query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	md := arrow.NewMetadata(
		[]string{metaKeyQuery, metaKeyCreatedAt, metaKeyRows},
		[]string{query, s.now().UTC().Format(time.RFC3339Nano), strconv.Itoa(t.NumRows())},
	)
	schema, err := table.ArrowSchema(t.Columns, &md)
	if err != nil {
		return fmt.Errorf("build entry schema: %w", err)
	}

	rec, err := t.Record(schema, s.mem)
	if err != nil {
		return fmt.Errorf("build entry record: %w", err)
	}
	defer rec.Release()

	tmp, err := os.CreateTemp(s.directory, "."+fingerprint+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := writeEntryFile(tmp, schema, rec, s.mem); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close cache file: %w", err)
	}

	if err := os.Rename(tmpPath, s.entryPath(fingerprint)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}

func writeEntryFile(f *os.File, schema *arrow.Schema, rec arrow.Record, mem memory.Allocator) error {
	w := ipc.NewWriter(f, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err := w.Write(rec); err != nil {
		_ = w.Close()
		return fmt.Errorf("write record: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close arrow writer: %w", err)
	}
	return f.Sync()
}

// Stat reads an entry's metadata and column schema from the schema message
// of its file, without materializing row data.
func (s *FileStore) Stat(fingerprint string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.statLocked(fingerprint)
}

func (s *FileStore) statLocked(fingerprint string) (*Entry, error) {
	path := s.entryPath(fingerprint)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open cache file: %w", err)
	}
	defer f.Close()

	rdr, err := ipc.NewReader(f, ipc.WithAllocator(s.mem))
	if err != nil {
		return nil, fmt.Errorf("%w: read schema of %s: %v", ErrCorrupt, fingerprint, err)
	}
	defer rdr.Release()

	entry, err := entryFromSchema(fingerprint, rdr.Schema())
	if err != nil {
		return nil, err
	}
	if info, statErr := os.Stat(path); statErr == nil {
		entry.SizeBytes = info.Size()
	}
	return entry, nil
}

func entryFromSchema(fingerprint string, schema *arrow.Schema) (*Entry, error) {
	columns, err := table.ColumnsFromSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: schema of %s: %v", ErrCorrupt, fingerprint, err)
	}

	md := schema.Metadata()
	entry := &Entry{Fingerprint: fingerprint, Columns: columns}

	if i := md.FindKey(metaKeyQuery); i >= 0 {
		entry.Query = md.Values()[i]
	}
	if i := md.FindKey(metaKeyRows); i >= 0 {
		if n, convErr := strconv.ParseInt(md.Values()[i], 10, 64); convErr == nil {
			entry.Rows = n
		}
	}
	i := md.FindKey(metaKeyCreatedAt)
	if i < 0 {
		return nil, fmt.Errorf("%w: entry %s has no creation timestamp", ErrCorrupt, fingerprint)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, md.Values()[i])
	if err != nil {
		return nil, fmt.Errorf("%w: entry %s creation timestamp: %v", ErrCorrupt, fingerprint, err)
	}
	entry.CreatedAt = createdAt

	return entry, nil
}

// Age returns the elapsed time since the entry was created or refreshed.
// Returns ErrNotFound if no entry exists. For an entry whose metadata cannot
// be parsed the file modification time is used, so age-based maintenance
// still covers corrupt files.
func (s *FileStore) Age(fingerprint string) (time.Duration, error) {
	entry, err := s.Stat(fingerprint)
	if err == nil {
		return entry.Age(), nil
	}
	if errors.Is(err, ErrCorrupt) {
		if info, statErr := os.Stat(s.entryPath(fingerprint)); statErr == nil {
			return time.Since(info.ModTime()), nil
		}
		return 0, ErrNotFound
	}
	return 0, err
}

// Load deserializes the persisted payload and metadata for the fingerprint.
// Returns ErrNotFound if absent and ErrCorrupt if the file cannot be parsed.
func (s *FileStore) Load(fingerprint string) (*table.Table, *Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.entryPath(fingerprint)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("open cache file: %w", err)
	}
	defer f.Close()

	rdr, err := ipc.NewReader(f, ipc.WithAllocator(s.mem))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read schema of %s: %v", ErrCorrupt, fingerprint, err)
	}
	defer rdr.Release()

	entry, err := entryFromSchema(fingerprint, rdr.Schema())
	if err != nil {
		return nil, nil, err
	}
	if info, statErr := os.Stat(path); statErr == nil {
		entry.SizeBytes = info.Size()
	}

	tbl := table.New(entry.Columns)
	for rdr.Next() {
		if err := tbl.AppendRecord(rdr.Record()); err != nil {
			return nil, nil, fmt.Errorf("%w: payload of %s: %v", ErrCorrupt, fingerprint, err)
		}
	}
	if err := rdr.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: payload of %s: %v", ErrCorrupt, fingerprint, err)
	}
	return tbl, entry, nil
}

// List enumerates all entries in the store, in no particular order. Entry
// files that cannot be parsed are reported with Corrupt set (creation time
// taken from file modification time) rather than aborting the listing.
func (s *FileStore) List() ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fingerprints, err := s.fingerprintsLocked()
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, len(fingerprints))
	g := new(errgroup.Group)
	g.SetLimit(listConcurrency)
	for i, fp := range fingerprints {
		i, fp := i, fp
		g.Go(func() error {
			entry, statErr := s.statLocked(fp)
			if statErr != nil {
				if !errors.Is(statErr, ErrCorrupt) {
					return statErr
				}
				entry = &Entry{Fingerprint: fp, Corrupt: true}
				if info, infoErr := os.Stat(s.entryPath(fp)); infoErr == nil {
					entry.CreatedAt = info.ModTime()
					entry.SizeBytes = info.Size()
				}
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *FileStore) fingerprintsLocked() ([]string, error) {
	dirEntries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("read cache directory: %w", err)
	}

	var fingerprints []string
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != entryFileExtension {
			continue
		}
		fingerprints = append(fingerprints, strings.TrimSuffix(de.Name(), entryFileExtension))
	}
	return fingerprints, nil
}

// Delete removes a single entry. It is idempotent: deleting an absent entry
// is not an error.
func (s *FileStore) Delete(fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.entryPath(fingerprint))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete cache file: %w", err)
	}
	return nil
}

// DeleteOlderThan removes every entry whose age exceeds the threshold and
// returns the number removed.
func (s *FileStore) DeleteOlderThan(threshold time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fingerprints, err := s.fingerprintsLocked()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, fp := range fingerprints {
		age, ageErr := s.ageLocked(fp)
		if ageErr != nil {
			continue
		}
		if age <= threshold {
			continue
		}
		if rmErr := os.Remove(s.entryPath(fp)); rmErr != nil && !os.IsNotExist(rmErr) {
			return removed, fmt.Errorf("delete cache file: %w", rmErr)
		}
		removed++
	}
	return removed, nil
}

func (s *FileStore) ageLocked(fingerprint string) (time.Duration, error) {
	entry, err := s.statLocked(fingerprint)
	if err == nil {
		return entry.Age(), nil
	}
	if errors.Is(err, ErrCorrupt) {
		if info, statErr := os.Stat(s.entryPath(fingerprint)); statErr == nil {
			return time.Since(info.ModTime()), nil
		}
	}
	return 0, err
}

// ClearAll removes every entry unconditionally and returns the number
// removed.
func (s *FileStore) ClearAll() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fingerprints, err := s.fingerprintsLocked()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, fp := range fingerprints {
		if rmErr := os.Remove(s.entryPath(fp)); rmErr != nil && !os.IsNotExist(rmErr) {
			return removed, fmt.Errorf("delete cache file: %w", rmErr)
		}
		removed++
	}
	return removed, nil
}
