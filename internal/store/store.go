package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pbaille/mdpress/internal/domain"
)

// Snapshot is the persisted term cache: taxonomy name to slug to term
type Snapshot map[string]map[string]domain.Term

// Count returns the number of terms across all taxonomies
func (s Snapshot) Count() int {
	n := 0
	for _, terms := range s {
		n += len(terms)
	}
	return n
}

// Store persists term cache snapshots. Save replaces everything previously stored.
type Store interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
	Close() error
}

// Open picks a backend from the file extension of path
func Open(path string) (Store, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".db", ".sqlite", ".sqlite3":
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		s, err := New(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case ".yaml", ".yml":
		return NewFile(path, FormatYAML), nil
	case ".toml":
		return NewFile(path, FormatTOML), nil
	case ".json":
		return NewFile(path, FormatJSON), nil
	default:
		return nil, fmt.Errorf("term cache %s: unsupported extension %q: %w", path, ext, domain.ErrConfig)
	}
}
