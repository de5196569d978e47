// Package repository persists trained models and their metadata on disk.
package repository

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hrsignal/attrition/internal/domain/forest"
	"github.com/hrsignal/attrition/internal/domain/model"
)

const (
	modelFile    = "attrition_model.gob"
	metadataFile = "model_metadata.gob"
)

// FileStore reads and writes the model pair under a single directory.
type FileStore struct {
	dir string
}

// Option customizes a FileStore.
type Option func(*FileStore)

// WithDir sets the storage directory.
func WithDir(dir string) Option {
	return func(s *FileStore) {
		if dir != "" {
			s.dir = dir
		}
	}
}

// NewFileStore creates a store rooted at "models" unless overridden.
func NewFileStore(opts ...Option) (*FileStore, error) {
	s := &FileStore{dir: "models"}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	return s, nil
}

// ModelPath returns the path of the serialized forest.
func (s *FileStore) ModelPath() string {
	return filepath.Join(s.dir, modelFile)
}

// MetadataPath returns the path of the serialized metadata.
func (s *FileStore) MetadataPath() string {
	return filepath.Join(s.dir, metadataFile)
}

// Save writes the forest and its metadata. The forest is written first so a
// crash between the two writes leaves a loadable model with stale metadata
// rather than the reverse.
func (s *FileStore) Save(f *forest.Forest, meta model.Metadata) error {
	if err := writeGob(s.ModelPath(), f); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	if err := writeGob(s.MetadataPath(), meta); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	return nil
}

// Load reads the persisted forest and metadata pair.
func (s *FileStore) Load() (*forest.Forest, model.Metadata, error) {
	var f forest.Forest
	if err := readGob(s.ModelPath(), &f); err != nil {
		return nil, model.Metadata{}, fmt.Errorf("load model: %w", err)
	}
	var meta model.Metadata
	if err := readGob(s.MetadataPath(), &meta); err != nil {
		return nil, model.Metadata{}, fmt.Errorf("load metadata: %w", err)
	}
	return &f, meta, nil
}

// Exists reports whether both files of the model pair are present.
func (s *FileStore) Exists() bool {
	if _, err := os.Stat(s.ModelPath()); err != nil {
		return false
	}
	if _, err := os.Stat(s.MetadataPath()); err != nil {
		return false
	}
	return true
}

// Remove deletes the persisted pair. Missing files are not an error.
func (s *FileStore) Remove() error {
	for _, p := range []string{s.ModelPath(), s.MetadataPath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

func writeGob(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return nil
}
