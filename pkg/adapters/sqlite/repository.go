// Package sqlite implements the assessment repository on an embedded SQLite
// database. The full assessment is kept as a JSON payload next to the
// columns the listing needs, so schema churn stays minimal.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"triage/pkg/core"
)

// Config holds the configuration for the SQLite repository.
type Config struct {
	Path     string // database file path
	ReadOnly bool
	Logger   *slog.Logger
}

// Repository implements core.Repository on SQLite.
type Repository struct {
	db     *sql.DB
	config Config
	mu     sync.RWMutex
}

// NewRepository opens (or creates) the database file.
func NewRepository(config Config) (*Repository, error) {
	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Repository{db: db, config: config}, nil
}

// Initialize creates the schema.
func (r *Repository) Initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		final_urgency TEXT NOT NULL,
		top_condition TEXT,
		payload TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assessments_created ON assessments(created_at);
	CREATE INDEX IF NOT EXISTS idx_assessments_urgency ON assessments(final_urgency);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save persists an assessment, replacing any previous row with the same ID.
func (r *Repository) Save(ctx context.Context, a core.Assessment) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if a.ID == "" {
		return fmt.Errorf("assessment has no ID")
	}

	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to serialize assessment: %w", err)
	}

	top := ""
	if len(a.TopConditions) > 0 {
		top = a.TopConditions[0].Condition
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO assessments (id, created_at, final_urgency, top_condition, payload)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.CreatedAt.UTC().Format(time.RFC3339Nano), string(a.FinalUrgency), top, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}

	if r.config.Logger != nil {
		r.config.Logger.Debug("assessment written", "id", a.ID)
	}
	return nil
}

// Get retrieves an assessment by ID.
func (r *Repository) Get(ctx context.Context, id string) (core.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM assessments WHERE id = ?`, id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Assessment{}, core.ErrNotFound
	}
	if err != nil {
		return core.Assessment{}, fmt.Errorf("failed to query assessment: %w", err)
	}

	var a core.Assessment
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return core.Assessment{}, fmt.Errorf("failed to parse assessment %s: %w", id, err)
	}
	a.ID = id

	return a, nil
}

// List returns all stored assessments.
func (r *Repository) List(ctx context.Context) ([]core.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, payload FROM assessments ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	var out []core.Assessment
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}

		var a core.Assessment
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			if r.config.Logger != nil {
				r.config.Logger.Warn("failed to parse assessment during list", "id", id, "error", err)
			}
			continue
		}
		a.ID = id
		out = append(out, a)
	}

	return out, rows.Err()
}

// Delete removes a stored assessment.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `DELETE FROM assessments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete assessment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}

	return nil
}

var _ core.Repository = (*Repository)(nil)
