package fs

import (
	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path      string `json:"path"`
	SystemDir string `json:"system_dir"`
	CacheSize int    `json:"cache_size"`
	ReadOnly  bool   `json:"read_only"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RepositoryState{
		Path:      r.Path,
		SystemDir: r.config.SystemDir,
		CacheSize: r.cache.Len(),
		ReadOnly:  r.config.ReadOnly,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "fs"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
