package kb

import (
	"log/slog"
	"sync"

	"github.com/aretw0/introspection"
)

// Provider owns the live knowledge base snapshot. Reads are lock-cheap and
// always see a fully compiled snapshot; Reload swaps it atomically so a
// half-parsed KB is never observable.
type Provider struct {
	dir      string
	patterns []string
	logger   *slog.Logger

	mu            sync.RWMutex
	kb            *KnowledgeBase
	revision      uint64
	watcherActive bool
}

// NewProvider performs the initial load. It fails if the KB directory is
// missing or invalid; a service must not start without rules.
func NewProvider(dir string, patterns []string, logger *slog.Logger) (*Provider, error) {
	k, err := Load(dir, patterns, logger)
	if err != nil {
		return nil, err
	}
	return &Provider{
		dir:      dir,
		patterns: patterns,
		logger:   logger,
		kb:       k,
		revision: 1,
	}, nil
}

// KB returns the current snapshot. Callers must not mutate it.
func (p *Provider) KB() *KnowledgeBase {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.kb
}

// Revision returns the number of successful loads so far.
func (p *Provider) Revision() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.revision
}

// Reload re-reads the KB files and swaps the snapshot on success.
// On failure the previous snapshot stays in place and the error is returned.
func (p *Provider) Reload() error {
	k, err := Load(p.dir, p.patterns, p.logger)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("knowledge base reload failed, keeping previous snapshot", "error", err)
		}
		return err
	}

	p.mu.Lock()
	p.kb = k
	p.revision++
	rev := p.revision
	p.mu.Unlock()

	if p.logger != nil {
		p.logger.Info("knowledge base reloaded", "revision", rev, "conditions", len(k.Conditions))
	}
	return nil
}

func (p *Provider) setWatcherActive(active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.watcherActive = active
}

// ProviderState exposes internal state for observability.
type ProviderState struct {
	Dir           string `json:"dir"`
	Revision      uint64 `json:"revision"`
	Conditions    int    `json:"conditions"`
	Synonyms      int    `json:"synonyms"`
	WatcherActive bool   `json:"watcher_active"`
}

// State implements introspection.Introspectable.
func (p *Provider) State() any {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return ProviderState{
		Dir:           p.dir,
		Revision:      p.revision,
		Conditions:    len(p.kb.Conditions),
		Synonyms:      len(p.kb.Synonyms),
		WatcherActive: p.watcherActive,
	}
}

// ComponentType implements introspection.Component.
func (p *Provider) ComponentType() string {
	return "knowledge_base"
}

var _ introspection.Introspectable = (*Provider)(nil)
var _ introspection.Component = (*Provider)(nil)
