package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DumpExt is appended to a vocabulary base name that has no extension.
const DumpExt = ".json"

// VocabularyStore defines how the final vocabulary of a run is persisted.
type VocabularyStore interface {
	// Persist writes the whole token → count mapping, replacing any
	// previous content.
	Persist(ctx context.Context, counts map[string]int) error

	// Load reads a previously persisted mapping.
	Load(ctx context.Context) (map[string]int, error)

	// Path returns the destination the store writes to.
	Path() string
}

// JSONStore keeps the vocabulary as a single JSON object on disk.
type JSONStore struct {
	path string
}

// NewJSONStore creates a store writing to path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// DumpPath derives the dump file name from a base name: "vocabulary"
// becomes "vocabulary.json", names with an extension are kept as is.
func DumpPath(base string) string {
	if filepath.Ext(base) != "" {
		return base
	}
	return base + DumpExt
}

func (s *JSONStore) Path() string { return s.path }

// Persist writes counts to a temporary file next to the destination and
// renames it into place, so a failed write never leaves a truncated dump.
func (s *JSONStore) Persist(ctx context.Context, counts map[string]int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if counts == nil {
		counts = map[string]int{}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: create %s: %w", s.path, err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(counts); err != nil {
		tmp.Close()
		return fmt.Errorf("store: encode %s: %w", s.path, err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close %s: %w", s.path, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("store: rename %s: %w", s.path, err)
	}
	return nil
}

// Load reads the dump back.
func (s *JSONStore) Load(ctx context.Context) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", s.path, err)
	}
	defer f.Close()

	counts := map[string]int{}
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&counts); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", s.path, err)
	}
	return counts, nil
}
