package engine

import (
	"math"
	"sort"
	"strings"

	"triage/pkg/core"
	"triage/pkg/kb"
)

// Weights tune the contribution of each phrase class to a condition's raw
// score. All conditions share the same baseline so an empty intake still
// produces a stable (flat) ranking.
type Weights struct {
	Base       float64 `yaml:"base" json:"base"`
	Required   float64 `yaml:"required" json:"required"`
	Supporting float64 `yaml:"supporting" json:"supporting"`
	RedFlag    float64 `yaml:"red_flag" json:"red_flag"`
}

// DefaultWeights returns the tuned production weights.
func DefaultWeights() Weights {
	return Weights{
		Base:       0.5,
		Required:   1.5,
		Supporting: 0.8,
		RedFlag:    2.5,
	}
}

// Validate rejects weight sets that would invert or flatten the ranking.
func (w Weights) Validate() error {
	if w.Required <= 0 || w.Supporting <= 0 || w.RedFlag <= 0 {
		return errNonPositiveWeight
	}
	return nil
}

// Score ranks every condition of the knowledge base against the parsed
// symptom set. Scores are min-max normalized to [0,1] across the run and
// rounded to three decimals; the result is sorted by descending score with
// condition name as the tie-breaker.
func Score(symptoms map[string]struct{}, k *kb.KnowledgeBase, w Weights) []core.ConditionMatch {
	matches := make([]core.ConditionMatch, 0, len(k.Conditions))
	raw := make([]float64, 0, len(k.Conditions))

	for _, cond := range k.Conditions {
		score := w.Base
		ms := core.MatchSet{}

		for _, req := range cond.RequiredSymptoms {
			if phrase, ok := hit(symptoms, req); ok {
				score += w.Required
				ms.Required = append(ms.Required, phrase)
			}
		}
		for _, sup := range cond.SupportingSymptoms {
			if phrase, ok := hit(symptoms, sup); ok {
				score += w.Supporting
				ms.Supporting = append(ms.Supporting, phrase)
			}
		}
		for _, rf := range cond.RedFlags {
			if phrase, ok := hit(symptoms, rf); ok {
				score += w.RedFlag
				ms.RedFlags = append(ms.RedFlags, phrase)
			}
		}

		matches = append(matches, core.ConditionMatch{
			Condition:        cond.Name,
			Matches:          ms,
			RecommendedTests: cond.RecommendedTests,
			DeclaredUrgency:  cond.Urgency,
		})
		raw = append(raw, score)
	}

	normalize(matches, raw)

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Condition < matches[j].Condition
	})

	return matches
}

// hit checks whether a condition phrase is present in the parsed set.
func hit(symptoms map[string]struct{}, phrase string) (string, bool) {
	p := strings.ToLower(strings.TrimSpace(phrase))
	_, ok := symptoms[p]
	return p, ok
}

// normalize rescales raw scores to [0,1]. A zero span (all conditions equal,
// e.g. nothing matched) maps everything to 0 instead of dividing by zero.
func normalize(matches []core.ConditionMatch, raw []float64) {
	if len(raw) == 0 {
		return
	}

	minRaw, maxRaw := raw[0], raw[0]
	for _, r := range raw[1:] {
		minRaw = math.Min(minRaw, r)
		maxRaw = math.Max(maxRaw, r)
	}

	span := maxRaw - minRaw
	if span == 0 {
		span = 1
	}

	for i := range matches {
		matches[i].Score = round3((raw[i] - minRaw) / span)
	}
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
