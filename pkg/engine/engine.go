package engine

import (
	"sort"

	"triage/pkg/core"
	"triage/pkg/kb"
)

// Source provides the current knowledge base snapshot. Implemented by
// kb.Provider; tests can hand in a fixed snapshot.
type Source interface {
	KB() *kb.KnowledgeBase
}

// staticSource wraps a bare snapshot as a Source.
type staticSource struct{ kb *kb.KnowledgeBase }

func (s staticSource) KB() *kb.KnowledgeBase { return s.kb }

// StaticSource returns a Source that always serves the given snapshot.
func StaticSource(k *kb.KnowledgeBase) Source { return staticSource{kb: k} }

// Engine evaluates intakes against the live knowledge base.
type Engine struct {
	src        Source
	weights    Weights
	thresholds Thresholds
}

// New creates an Engine. Zero-valued weights or thresholds fall back to the
// defaults.
func New(src Source, w Weights, t Thresholds) *Engine {
	if w == (Weights{}) {
		w = DefaultWeights()
	}
	if t == (Thresholds{}) {
		t = DefaultThresholds()
	}
	return &Engine{src: src, weights: w, thresholds: t}
}

// Evaluate implements core.Assessor.
func (e *Engine) Evaluate(in core.Intake) ([]string, []core.ConditionMatch, core.Urgency) {
	k := e.src.KB()

	set := Extract(in.Text, in.Checked, k)
	ranked := Score(set, k, e.weights)
	urgency := Decide(ranked, e.thresholds)

	top := ranked
	if len(top) > 3 {
		top = top[:3]
	}

	symptoms := make([]string, 0, len(set))
	for s := range set {
		symptoms = append(symptoms, s)
	}
	sort.Strings(symptoms)

	return symptoms, top, urgency
}

// Explain implements core.Assessor: the full ranking, no truncation.
func (e *Engine) Explain(in core.Intake) []core.ConditionMatch {
	k := e.src.KB()
	return Score(Extract(in.Text, in.Checked, k), k, e.weights)
}

var _ core.Assessor = (*Engine)(nil)
