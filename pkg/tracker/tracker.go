// Package tracker persists the mapping from original file paths to their
// split records. The store is a single JSON document so that external
// tooling can inspect it; unknown fields are ignored on load.
package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Record describes one split original file.
type Record struct {
	OriginalFile string   `json:"original_file"`
	OriginalSize int64    `json:"original_size"`
	SplitPrefix  string   `json:"split_prefix"`
	SplitFiles   []string `json:"split_files"`
	SplitCount   int      `json:"split_count"`
}

// Store maps original file paths, exactly as seen at split time, to their
// records.
type Store map[string]Record

// Status is the result of checking a candidate path against the store.
type Status int

const (
	// NotSplit means the path has no usable record and needs a fresh split.
	NotSplit Status = iota
	// SplitValid means all chunks exist and the original is unchanged.
	SplitValid
	// SplitStale means chunks exist but the original changed size since the
	// split; the stale chunks must be removed before re-splitting.
	SplitStale
)

// Tracker reads and writes the store document at a fixed path.
type Tracker struct {
	path   string
	logger *zap.Logger
}

// New returns a Tracker bound to the store file at path.
func New(path string, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{path: path, logger: logger}
}

// Path returns the location of the store file.
func (t *Tracker) Path() string {
	return t.path
}

// Load reads the persisted store. A missing store yields an empty one with
// no error; an unreadable or unparseable store also yields an empty one,
// but with an error wrapping ErrCorruptStore so callers can log the
// recovery.
func (t *Tracker) Load() (Store, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			t.logger.Debug("no tracker store yet", zap.String("store", t.path))
			return Store{}, nil
		}
		return Store{}, fmt.Errorf("%w: reading %s: %v", ErrCorruptStore, t.path, err)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		return Store{}, fmt.Errorf("%w: parsing %s: %v", ErrCorruptStore, t.path, err)
	}
	if store == nil {
		store = Store{}
	}
	return store, nil
}

// Check reports whether path already has a usable split. Missing chunk
// files downgrade the record to NotSplit; a changed original size marks it
// stale so the caller can remove the outdated chunks first.
func (t *Tracker) Check(store Store, root, path string) (Status, Record) {
	rec, ok := store[path]
	if !ok {
		return NotSplit, Record{}
	}

	var missing []string
	for _, chunk := range rec.SplitFiles {
		if _, err := os.Stat(filepath.Join(root, chunk)); err != nil {
			missing = append(missing, chunk)
		}
	}
	if len(missing) > 0 {
		t.logger.Warn("split chunks missing, file will be split again",
			zap.String("file", path),
			zap.Strings("missingChunks", missing))
		return NotSplit, rec
	}

	info, err := os.Stat(filepath.Join(root, path))
	if err != nil {
		t.logger.Warn("cannot stat original file",
			zap.String("file", path),
			zap.Error(err))
		return NotSplit, rec
	}

	if info.Size() != rec.OriginalSize {
		t.logger.Warn("file size changed since last split",
			zap.String("file", path),
			zap.Int64("recordedSize", rec.OriginalSize),
			zap.Int64("currentSize", info.Size()))
		return SplitStale, rec
	}

	return SplitValid, rec
}

// Merge returns the key-wise union of store and records. New records win
// on key collisions; unrelated entries are never dropped.
func (t *Tracker) Merge(store Store, records map[string]Record) Store {
	merged := make(Store, len(store)+len(records))
	for k, v := range store {
		merged[k] = v
	}
	for k, v := range records {
		merged[k] = v
	}
	return merged
}

// Save persists the store atomically: the document is written to a unique
// temporary file next to the store and renamed into place, so a crash can
// never leave a half-written store visible.
func (t *Tracker) Save(store Store) error {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tracker store: %w", err)
	}

	tmp := fmt.Sprintf("%s.%s.tmp", t.path, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write tracker store: %w", err)
	}
	if err := os.Rename(tmp, t.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace tracker store: %w", err)
	}

	t.logger.Debug("persisted tracker store",
		zap.String("store", t.path),
		zap.Int("records", len(store)))
	return nil
}

// AllChunkPaths flattens the chunk file names across all records, keeping
// only those that currently exist under root. The result is sorted.
func (t *Tracker) AllChunkPaths(store Store, root string) []string {
	var chunks []string
	for _, rec := range store {
		for _, chunk := range rec.SplitFiles {
			if _, err := os.Stat(filepath.Join(root, chunk)); err == nil {
				chunks = append(chunks, chunk)
			}
		}
	}
	sort.Strings(chunks)
	return chunks
}

// Remove deletes the store file. A missing store is not an error.
func (t *Tracker) Remove() error {
	if err := os.Remove(t.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove tracker store: %w", err)
	}
	return nil
}
