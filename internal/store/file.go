package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a structured file encoding for the term cache
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// File keeps the term cache in a single structured file
type File struct {
	path   string
	format Format
}

// NewFile returns a file store; nothing is touched until Load or Save
func NewFile(path string, format Format) *File {
	return &File{path: path, format: format}
}

// Load reads the file. A missing file is an empty cache.
func (f *File) Load() (Snapshot, error) {
	content, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read term cache: %w", err)
	}

	snap := Snapshot{}
	switch f.format {
	case FormatYAML:
		err = yaml.Unmarshal(content, &snap)
	case FormatTOML:
		err = toml.Unmarshal(content, &snap)
	case FormatJSON:
		if len(content) > 0 {
			err = json.Unmarshal(content, &snap)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", f.format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode term cache %s: %w", f.path, err)
	}
	if snap == nil {
		snap = Snapshot{}
	}
	return snap, nil
}

// Save overwrites the file with snap via a temp file and rename
func (f *File) Save(snap Snapshot) error {
	var (
		content []byte
		err     error
	)
	switch f.format {
	case FormatYAML:
		content, err = yaml.Marshal(snap)
	case FormatTOML:
		content, err = toml.Marshal(snap)
	case FormatJSON:
		content, err = json.MarshalIndent(snap, "", "  ")
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
	if err != nil {
		return fmt.Errorf("encode term cache: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write term cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close term cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace term cache: %w", err)
	}
	return nil
}

// Close is a no-op for file stores
func (f *File) Close() error { return nil }
