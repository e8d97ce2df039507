// Package fs implements the assessment repository as one JSON document per
// assessment on the local filesystem, with an mtime-based index cache for
// cheap listing.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"triage/pkg/core"
)

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	MustExist bool
	ReadOnly  bool
	Logger    *slog.Logger
	SystemDir string // e.g. ".triage"; holds the index cache
}

// Repository implements core.Repository using plain JSON files.
type Repository struct {
	Path   string
	cache  *cache
	config Config

	mu sync.RWMutex
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = ".triage"
	}
	return &Repository{
		Path:   config.Path,
		config: config,
		cache:  newCache(config.Path, config.SystemDir),
	}
}

// Initialize ensures the data directory exists.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", r.Path)
		}
		return nil
	}

	if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// Save persists an assessment as a pretty-printed JSON document, written
// atomically (temp file + rename).
func (r *Repository) Save(ctx context.Context, a core.Assessment) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if a.ID == "" {
		return fmt.Errorf("assessment has no ID")
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize assessment: %w", err)
	}

	filename := a.ID + ".json"
	fullPath := filepath.Join(r.Path, filename)

	if r.config.Logger != nil {
		r.config.Logger.Debug("writing assessment to disk", "id", a.ID, "path", fullPath)
	}

	if err := writeFileAtomic(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	// The next List re-reads the file and refreshes the entry.
	r.cache.Delete(filename)

	return nil
}

// Get retrieves an assessment by ID.
func (r *Repository) Get(ctx context.Context, id string) (core.Assessment, error) {
	fullPath := filepath.Join(r.Path, id+".json")

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return core.Assessment{}, core.ErrNotFound
		}
		return core.Assessment{}, err
	}

	var a core.Assessment
	if err := json.Unmarshal(data, &a); err != nil {
		return core.Assessment{}, fmt.Errorf("failed to parse assessment %s: %w", id, err)
	}
	a.ID = id

	return a, nil
}

// List scans the data directory for all assessments.
//
// Strategy:
//  1. Load the index cache from disk.
//  2. Walk the directory (skipping the system dir and temp files).
//  3. Cache hit (mtime match): return the listing projection only, without
//     re-reading the document. List is intended for discovery; use Get for
//     the full assessment.
//  4. Cache miss: full parse, update the cache.
//  5. Prune stale entries and save the cache back.
func (r *Repository) List(ctx context.Context) ([]core.Assessment, error) {
	if err := r.cache.Load(); err != nil {
		if r.config.Logger != nil {
			r.config.Logger.Warn("failed to load index cache", "error", err)
		}
	}
	seen := make(map[string]bool)

	var out []core.Assessment
	err := filepath.WalkDir(r.Path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == r.config.SystemDir {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(d.Name()) != ".json" || strings.HasPrefix(d.Name(), TempFilePrefix) {
			return nil
		}

		relPath, err := filepath.Rel(r.Path, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		id := strings.TrimSuffix(relPath, ".json")

		info, err := d.Info()
		if err != nil {
			return nil
		}
		mtime := info.ModTime()

		seen[relPath] = true

		if entry, hit := r.cache.Get(relPath, mtime); hit {
			a := core.Assessment{
				ID:           entry.ID,
				CreatedAt:    entry.CreatedAt,
				FinalUrgency: entry.FinalUrgency,
			}
			if entry.TopCondition != "" {
				a.TopConditions = []core.ConditionMatch{{Condition: entry.TopCondition}}
			}
			out = append(out, a)
			return nil
		}

		a, err := r.Get(ctx, id)
		if err != nil {
			if r.config.Logger != nil {
				r.config.Logger.Warn("failed to parse assessment during list", "id", id, "error", err)
			}
			return nil // Continue walking
		}

		entry := &indexEntry{
			ID:           id,
			CreatedAt:    a.CreatedAt,
			FinalUrgency: a.FinalUrgency,
			LastModified: mtime,
		}
		if len(a.TopConditions) > 0 {
			entry.TopCondition = a.TopConditions[0].Condition
		}
		r.cache.Set(relPath, entry)

		out = append(out, a)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk data dir: %w", err)
	}

	r.cache.Prune(seen)
	if !r.config.ReadOnly {
		if err := r.cache.Save(); err != nil {
			if r.config.Logger != nil {
				r.config.Logger.Warn("failed to save index cache", "error", err)
			}
		}
	}

	return out, nil
}

// Delete removes a stored assessment.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}

	filename := id + ".json"
	fullPath := filepath.Join(r.Path, filename)

	if r.config.Logger != nil {
		r.config.Logger.Debug("deleting assessment", "id", id, "path", fullPath)
	}

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return core.ErrNotFound
	}

	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	r.cache.Delete(filename)

	return nil
}

var _ core.Repository = (*Repository)(nil)
