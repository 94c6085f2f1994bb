package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ShayCichocki/agentnexus/pkg/models"
)

// ErrNotFound is returned when an artifact is not in the index.
var ErrNotFound = errors.New("artifact not found")

// Index is a SQLite catalog of saved artifacts.
type Index struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// OpenIndex opens an SQLite database at the given path.
// It creates the parent directories if they don't exist.
// WAL mode is enabled for concurrent reads.
func OpenIndex(path string) (*Index, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &Index{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.conn.Close()
}

// Path returns the path to the database file.
func (ix *Index) Path() string {
	return ix.path
}

// Migrate applies all pending schema migrations.
func (ix *Index) Migrate() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	_, err := ix.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := ix.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Artifacts},
		{2, migrationV2CreatedAtIndex},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := ix.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1Artifacts = `
CREATE TABLE IF NOT EXISTS artifacts (
	id TEXT PRIMARY KEY,
	path TEXT NOT NULL,
	task TEXT NOT NULL DEFAULT '',
	size INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
`

const migrationV2CreatedAtIndex = `
CREATE INDEX IF NOT EXISTS idx_artifacts_created_at ON artifacts(created_at);
`

// Insert records an artifact.
func (ix *Index) Insert(ctx context.Context, a models.Artifact) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	_, err := ix.conn.ExecContext(ctx, `
		INSERT INTO artifacts (id, path, task, size, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, a.ID, a.Path, a.Task, a.Size, a.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

// Get returns the artifact with id.
func (ix *Index) Get(ctx context.Context, id string) (models.Artifact, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	row := ix.conn.QueryRowContext(ctx, `
		SELECT id, path, task, size, created_at FROM artifacts WHERE id = ?
	`, id)
	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Artifact{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return a, err
}

// List returns up to limit artifacts, newest first. A limit of 0 returns all.
func (ix *Index) List(ctx context.Context, limit int) ([]models.Artifact, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	query := `SELECT id, path, task, size, created_at FROM artifacts ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := ix.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var out []models.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Delete removes the artifact with id from the index.
func (ix *Index) Delete(ctx context.Context, id string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	res, err := ix.conn.ExecContext(ctx, `DELETE FROM artifacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArtifact(s scanner) (models.Artifact, error) {
	var a models.Artifact
	var created string
	if err := s.Scan(&a.ID, &a.Path, &a.Task, &a.Size, &created); err != nil {
		return models.Artifact{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return models.Artifact{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	a.CreatedAt = t
	return a, nil
}
