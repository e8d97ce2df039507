// Package engine implements the assessment rule engine: free-text symptom
// extraction, weighted condition scoring and urgency triage over a
// knowledge base snapshot.
package engine

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"triage/pkg/kb"
)

var (
	// Strip punctuation but keep word characters, whitespace, internal
	// hyphens and apostrophes ("runny-nose", "can't breathe").
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}_\s\-']`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize lower-cases free text and collapses it to a single-spaced
// stream of word characters suitable for phrase matching.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = nonWordRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Extract returns the set of normalized symptom phrases found in the free
// text plus the explicitly checked items.
//
// Matching order:
//  1. checked items are taken as-is (they were explicit user choices);
//  2. synonym phrases, longest first, resolve to their canonical symptom;
//  3. global red-flag keywords;
//  4. every phrase known to any condition;
//  5. fallback: single tokens that appear in the KB vocabulary.
func Extract(text string, checked []string, k *kb.KnowledgeBase) map[string]struct{} {
	norm := Normalize(text)
	found := make(map[string]struct{})

	for _, item := range checked {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			found[item] = struct{}{}
		}
	}

	for _, syn := range k.SynonymPhrases() {
		if containsPhrase(norm, syn) {
			if canonical, ok := k.Canonical(syn); ok {
				found[canonical] = struct{}{}
			}
		}
	}

	for _, rf := range k.RedFlagKeywords {
		rf = strings.ToLower(strings.TrimSpace(rf))
		if rf != "" && containsPhrase(norm, rf) {
			found[rf] = struct{}{}
		}
	}

	for _, phrase := range k.Phrases() {
		if containsPhrase(norm, phrase) {
			found[phrase] = struct{}{}
		}
	}

	for _, token := range strings.Fields(norm) {
		if k.HasToken(token) {
			found[token] = struct{}{}
		}
	}

	return found
}

// containsPhrase reports whether phrase occurs in text on word boundaries.
// Both inputs must already be normalized.
func containsPhrase(text, phrase string) bool {
	if phrase == "" || text == "" {
		return false
	}

	offset := 0
	for {
		i := strings.Index(text[offset:], phrase)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(phrase)

		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		offset = start + 1
	}
}

func boundaryBefore(text string, start int) bool {
	if start == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:start])
	return !isWordRune(r)
}

func boundaryAfter(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
