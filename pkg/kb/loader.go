package kb

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// DefaultPatterns are the glob patterns used to discover knowledge base
// files inside the KB directory when none are configured.
var DefaultPatterns = []string{"**/*.yaml", "**/*.yml", "**/*.json"}

// document is the on-disk shape of a KB file. A directory may hold one big
// file or many partial files; all matched files are merged.
type document struct {
	Conditions      []Condition       `yaml:"conditions" json:"conditions"`
	Synonyms        map[string]string `yaml:"synonyms" json:"synonyms"`
	RedFlagKeywords []string          `yaml:"red_flag_keywords" json:"red_flag_keywords"`
}

// Load reads every file under dir matching the patterns, merges them into a
// single KnowledgeBase, validates and compiles it. logger may be nil.
func Load(dir string, patterns []string, logger *slog.Logger) (*KnowledgeBase, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("knowledge base directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("knowledge base path is not a directory: %s", dir)
	}

	files, err := matchFiles(dir, patterns)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no knowledge base files found in %s", dir)
	}

	k := &KnowledgeBase{Synonyms: make(map[string]string)}
	for _, f := range files {
		doc, err := parseFile(filepath.Join(dir, f))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		if err := merge(k, doc, f); err != nil {
			return nil, err
		}
	}

	if err := Validate(k, logger); err != nil {
		return nil, err
	}

	k.Compile()

	if logger != nil {
		logger.Debug("knowledge base loaded",
			"dir", dir,
			"files", len(files),
			"conditions", len(k.Conditions),
			"synonyms", len(k.Synonyms),
		)
	}

	return k, nil
}

// matchFiles resolves the glob patterns against dir and returns the sorted,
// de-duplicated relative paths. Sorting keeps merge order deterministic.
func matchFiles(dir string, patterns []string) ([]string, error) {
	fsys := os.DirFS(dir)
	seen := make(map[string]struct{})
	var files []string

	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}

	sort.Strings(files)
	return files, nil
}

func parseFile(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc := &document{}
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
	default: // .yaml / .yml
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("invalid yaml: %w", err)
		}
	}

	return doc, nil
}

func merge(k *KnowledgeBase, doc *document, file string) error {
	k.Conditions = append(k.Conditions, doc.Conditions...)
	k.RedFlagKeywords = append(k.RedFlagKeywords, doc.RedFlagKeywords...)

	for s, c := range doc.Synonyms {
		if existing, ok := k.Synonyms[s]; ok && existing != c {
			return fmt.Errorf("%s: synonym %q maps to both %q and %q", file, s, existing, c)
		}
		k.Synonyms[s] = c
	}
	return nil
}

// Validate checks the merged knowledge base for structural problems.
// Hard errors abort the load; soft issues are logged as warnings.
func Validate(k *KnowledgeBase, logger *slog.Logger) error {
	names := make(map[string]struct{}, len(k.Conditions))
	referenced := make(map[string]struct{})

	for i := range k.Conditions {
		c := &k.Conditions[i]
		if c.Name == "" {
			return fmt.Errorf("condition %d has no name", i)
		}
		if _, dup := names[c.Name]; dup {
			return fmt.Errorf("duplicate condition name: %q", c.Name)
		}
		names[c.Name] = struct{}{}

		// Empty urgency means "see a GP", matching the table defaults.
		if c.Urgency == "" {
			c.Urgency = "see_gp"
		}
		if !c.Urgency.Valid() {
			return fmt.Errorf("condition %q: unknown urgency %q", c.Name, c.Urgency)
		}

		for _, p := range c.RequiredSymptoms {
			referenced[normalizePhrase(p)] = struct{}{}
		}
		for _, p := range c.SupportingSymptoms {
			referenced[normalizePhrase(p)] = struct{}{}
		}
		for _, p := range c.RedFlags {
			referenced[normalizePhrase(p)] = struct{}{}
		}
	}

	// A synonym pointing at a symptom no condition uses is suspicious but
	// harmless; surface it without failing the load.
	if logger != nil {
		for s, c := range k.Synonyms {
			if _, ok := referenced[normalizePhrase(c)]; !ok {
				logger.Warn("synonym maps to unreferenced symptom", "synonym", s, "canonical", c)
			}
		}
	}

	return nil
}
