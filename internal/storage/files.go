// Package storage keeps generated source files and an index of them.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/ShayCichocki/agentnexus/pkg/models"
)

// CodeFileName is the file name used inside every artifact folder.
const CodeFileName = "generated_code.py"

// ErrInvalidID is returned for ids that are not canonical artifact uuids.
var ErrInvalidID = errors.New("invalid artifact id")

// checkID accepts only the canonical uuid form produced by Write, so an id
// can never name the root or escape it.
func checkID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// FileStore writes each artifact to <dir>/<uuid>/generated_code.py.
type FileStore struct {
	fs  afero.Fs
	dir string
}

// NewFileStore creates a FileStore rooted at dir on fs.
func NewFileStore(fs afero.Fs, dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("artifact directory is required")
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &FileStore{fs: fs, dir: dir}, nil
}

// NewOSFileStore creates a FileStore on the real filesystem.
func NewOSFileStore(dir string) (*FileStore, error) {
	return NewFileStore(afero.NewOsFs(), dir)
}

// Dir returns the root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Write saves code in a new artifact folder and returns its description.
func (s *FileStore) Write(task, code string) (models.Artifact, error) {
	id := uuid.New().String()
	folder := filepath.Join(s.dir, id)
	if err := s.fs.MkdirAll(folder, 0755); err != nil {
		return models.Artifact{}, fmt.Errorf("create artifact folder: %w", err)
	}

	path := filepath.Join(folder, CodeFileName)
	if err := afero.WriteFile(s.fs, path, []byte(code), 0644); err != nil {
		return models.Artifact{}, fmt.Errorf("write artifact: %w", err)
	}

	return models.Artifact{
		ID:        id,
		Path:      path,
		Task:      task,
		Size:      int64(len(code)),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// PathFor returns the code file path for id.
func (s *FileStore) PathFor(id string) string {
	return filepath.Join(s.dir, id, CodeFileName)
}

// Read returns the code stored for id.
func (s *FileStore) Read(id string) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}
	data, err := afero.ReadFile(s.fs, s.PathFor(id))
	if err != nil {
		return "", fmt.Errorf("read artifact %s: %w", id, err)
	}
	return string(data), nil
}

// Remove deletes the artifact folder for id.
func (s *FileStore) Remove(id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.fs.RemoveAll(filepath.Join(s.dir, id))
}
