// Package kb holds the knowledge base: the rules table that maps symptom
// phrases to conditions, synonyms and red-flag keywords. It is loaded from
// plain YAML/JSON files on disk and can be hot-reloaded while serving.
package kb

import (
	"sort"
	"strings"

	"triage/pkg/core"
)

// Condition describes one entry of the rules table.
type Condition struct {
	Name               string       `yaml:"name" json:"name"`
	RequiredSymptoms   []string     `yaml:"required_symptoms" json:"required_symptoms"`
	SupportingSymptoms []string     `yaml:"supporting_symptoms" json:"supporting_symptoms"`
	RedFlags           []string     `yaml:"red_flags" json:"red_flags"`
	RecommendedTests   []string     `yaml:"recommended_tests" json:"recommended_tests"`
	Urgency            core.Urgency `yaml:"urgency" json:"urgency"`
}

// KnowledgeBase is an immutable snapshot of the rules table plus the
// derived lookups the engine needs. Build one via Load or Compile; never
// mutate a snapshot that has been handed out.
type KnowledgeBase struct {
	Conditions      []Condition
	Synonyms        map[string]string
	RedFlagKeywords []string

	// Derived on Compile.
	phrases  []string // all condition phrases, longest first
	synonyms []string // synonym phrases, longest first
	synCanon map[string]string
	tokens   map[string]struct{}
	common   []string // sorted distinct required+supporting symptoms
}

// Compile precomputes the derived lookups. Called by the loader; exposed for
// tests that construct a KnowledgeBase literal.
func (k *KnowledgeBase) Compile() {
	phraseSet := make(map[string]struct{})
	commonSet := make(map[string]struct{})
	for _, c := range k.Conditions {
		for _, p := range c.RequiredSymptoms {
			phraseSet[normalizePhrase(p)] = struct{}{}
			commonSet[normalizePhrase(p)] = struct{}{}
		}
		for _, p := range c.SupportingSymptoms {
			phraseSet[normalizePhrase(p)] = struct{}{}
			commonSet[normalizePhrase(p)] = struct{}{}
		}
		for _, p := range c.RedFlags {
			phraseSet[normalizePhrase(p)] = struct{}{}
		}
	}

	k.phrases = sortedLongestFirst(phraseSet)

	synSet := make(map[string]struct{}, len(k.Synonyms))
	k.synCanon = make(map[string]string, len(k.Synonyms))
	for s, c := range k.Synonyms {
		norm := normalizePhrase(s)
		synSet[norm] = struct{}{}
		k.synCanon[norm] = normalizePhrase(c)
	}
	k.synonyms = sortedLongestFirst(synSet)

	k.tokens = make(map[string]struct{})
	for p := range phraseSet {
		for _, t := range splitTokens(p) {
			k.tokens[t] = struct{}{}
		}
	}

	k.common = make([]string, 0, len(commonSet))
	for s := range commonSet {
		k.common = append(k.common, s)
	}
	sort.Strings(k.common)
}

// Phrases returns every condition phrase, longest first.
// Longer phrases must be matched before their sub-phrases.
func (k *KnowledgeBase) Phrases() []string { return k.phrases }

// SynonymPhrases returns the synonym keys, longest first.
func (k *KnowledgeBase) SynonymPhrases() []string { return k.synonyms }

// Canonical resolves a normalized synonym phrase to its canonical symptom.
func (k *KnowledgeBase) Canonical(synonym string) (string, bool) {
	c, ok := k.synCanon[synonym]
	return c, ok
}

// HasToken reports whether a single token appears in any known phrase.
func (k *KnowledgeBase) HasToken(t string) bool {
	_, ok := k.tokens[t]
	return ok
}

// CommonSymptoms returns the sorted distinct union of required and
// supporting symptoms, used to populate the intake form.
func (k *KnowledgeBase) CommonSymptoms() []string { return k.common }

// --- Helpers (private) ---

func normalizePhrase(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

func splitTokens(p string) []string {
	return strings.Fields(p)
}

// sortedLongestFirst orders phrases by descending length, then
// alphabetically so compilation is deterministic.
func sortedLongestFirst(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}
