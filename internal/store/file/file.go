// Package file implements the storage port over a directory of JSON files,
// one file per slot.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

const slotExt = ".json"

// slotPattern restricts slot names to a single path element.
var slotPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Store keeps each slot at <dir>/<slot>.json.
type Store struct {
	dir string
}

// Open returns a Store rooted at dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("file store: data directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root directory.
func (s *Store) Dir() string { return s.dir }

// Load reads the slot file.
func (s *Store) Load(_ context.Context, slot string) ([]byte, error) {
	path, err := s.path(slot)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", slot, types.ErrSlotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Save replaces the slot file. Readers see either the old or the new
// content, never a partial write.
func (s *Store) Save(_ context.Context, slot string, data []byte) error {
	path, err := s.path(slot)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// Slots lists the slots present on disk, sorted.
func (s *Store) Slots() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.dir, err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, slotExt) || strings.HasPrefix(name, ".") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, slotExt))
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) path(slot string) (string, error) {
	if !slotPattern.MatchString(slot) {
		return "", fmt.Errorf("%q: %w", slot, types.ErrInvalidSlot)
	}
	return filepath.Join(s.dir, slot+slotExt), nil
}

// writeAtomic writes data to path using the temp-file, fsync, rename pattern.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".slot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
