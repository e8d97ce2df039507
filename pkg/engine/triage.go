package engine

import (
	"errors"

	"triage/pkg/core"
)

var (
	errNonPositiveWeight = errors.New("scoring weights must be positive")
	errThresholdRange    = errors.New("triage thresholds must be in (0,1]")
)

// Thresholds are the minimum normalized top scores at which a condition's
// declared urgency escalates the final outcome.
type Thresholds struct {
	Urgent float64 `yaml:"urgent" json:"urgent"`
	SeeGP  float64 `yaml:"see_gp" json:"see_gp"`
}

// DefaultThresholds returns the tuned production thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Urgent: 0.35, SeeGP: 0.25}
}

// Validate rejects thresholds outside (0,1].
func (t Thresholds) Validate() error {
	if t.Urgent <= 0 || t.Urgent > 1 || t.SeeGP <= 0 || t.SeeGP > 1 {
		return errThresholdRange
	}
	return nil
}

// Decide derives the final urgency from a ranked condition list.
//
// A matched red flag on any condition forces urgent, regardless of rank:
// red flags exist precisely to override the scoring.
// Otherwise the top condition's declared urgency applies when its score
// clears the corresponding threshold; anything below stays self-care.
func Decide(ranked []core.ConditionMatch, t Thresholds) core.Urgency {
	for _, m := range ranked {
		if len(m.Matches.RedFlags) > 0 {
			return core.UrgencyUrgent
		}
	}

	if len(ranked) == 0 {
		return core.UrgencySelfCare
	}

	top := ranked[0]
	switch {
	case top.DeclaredUrgency == core.UrgencyUrgent && top.Score >= t.Urgent:
		return core.UrgencyUrgent
	case top.DeclaredUrgency == core.UrgencySeeGP && top.Score >= t.SeeGP:
		return core.UrgencySeeGP
	default:
		return core.UrgencySelfCare
	}
}
