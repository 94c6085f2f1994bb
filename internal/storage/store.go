package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ShayCichocki/agentnexus/internal/config"
	"github.com/ShayCichocki/agentnexus/internal/logging"
	"github.com/ShayCichocki/agentnexus/pkg/models"
)

// Store saves generated code to a FileStore and records it in an Index.
// The index is optional.
type Store struct {
	files  *FileStore
	index  *Index
	logger *zap.Logger
}

// NewStore combines files and index. index may be nil.
func NewStore(files *FileStore, index *Index, logger *zap.Logger) *Store {
	return &Store{files: files, index: index, logger: logging.OrNop(logger).Named("storage")}
}

// OpenFromConfig opens the store described by cfg on the real filesystem
// and migrates its index.
func OpenFromConfig(cfg *config.Config, logger *zap.Logger) (*Store, error) {
	files, err := NewOSFileStore(cfg.Storage.Dir)
	if err != nil {
		return nil, err
	}
	index, err := OpenIndex(cfg.ArtifactDBPath())
	if err != nil {
		return nil, err
	}
	if err := index.Migrate(); err != nil {
		index.Close()
		return nil, fmt.Errorf("migrate artifact index: %w", err)
	}
	return NewStore(files, index, logger), nil
}

// Save writes code and indexes it. The returned Path is the location handle.
func (s *Store) Save(ctx context.Context, task, code string) (models.Artifact, error) {
	a, err := s.files.Write(task, code)
	if err != nil {
		return models.Artifact{}, err
	}
	if s.index != nil {
		if err := s.index.Insert(ctx, a); err != nil {
			return a, err
		}
	}
	s.logger.Info("artifact saved", zap.String("id", a.ID), zap.String("path", a.Path), zap.Int64("size", a.Size))
	return a, nil
}

// List returns indexed artifacts, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]models.Artifact, error) {
	if s.index == nil {
		return nil, nil
	}
	return s.index.List(ctx, limit)
}

// Load returns an artifact's description and code.
func (s *Store) Load(ctx context.Context, id string) (models.Artifact, string, error) {
	var a models.Artifact
	if s.index != nil {
		var err error
		if a, err = s.index.Get(ctx, id); err != nil {
			return models.Artifact{}, "", err
		}
	}
	code, err := s.files.Read(id)
	if err != nil {
		return models.Artifact{}, "", err
	}
	if a.ID == "" {
		a = models.Artifact{ID: id, Path: s.files.PathFor(id), Size: int64(len(code))}
	}
	return a, code, nil
}

// Delete removes an artifact from the index and deletes its folder.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.Delete(ctx, id); err != nil {
			return err
		}
	}
	if err := s.files.Remove(id); err != nil {
		return fmt.Errorf("remove artifact %s: %w", id, err)
	}
	s.logger.Info("artifact deleted", zap.String("id", id))
	return nil
}

// Close releases the index.
func (s *Store) Close() error {
	if s.index == nil {
		return nil
	}
	return s.index.Close()
}
