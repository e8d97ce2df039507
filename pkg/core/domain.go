package core

import "time"

// Urgency is the triage outcome of an assessment.
type Urgency string

const (
	UrgencySelfCare Urgency = "self_care"
	UrgencySeeGP    Urgency = "see_gp"
	UrgencyUrgent   Urgency = "urgent"
)

// Severity returns a comparable rank for escalation logic.
// Higher means more urgent.
func (u Urgency) Severity() int {
	switch u {
	case UrgencyUrgent:
		return 2
	case UrgencySeeGP:
		return 1
	default:
		return 0
	}
}

// Valid reports whether u is one of the known urgency levels.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencySelfCare, UrgencySeeGP, UrgencyUrgent:
		return true
	}
	return false
}

// Intake is a raw symptom submission, before any parsing or scoring.
type Intake struct {
	Text     string   `json:"text"`
	Checked  []string `json:"checked,omitempty"`
	Duration string   `json:"duration,omitempty"`
	Severity string   `json:"severity,omitempty"`
	Age      string   `json:"age,omitempty"`
	Sex      string   `json:"sex,omitempty"`
	Image    string   `json:"image,omitempty"` // stored attachment filename, if any
}

// MatchSet holds the phrases of a condition that matched the parsed symptoms,
// grouped by their role in scoring.
type MatchSet struct {
	Required   []string `json:"required"`
	Supporting []string `json:"supporting"`
	RedFlags   []string `json:"red_flags"`
}

// ConditionMatch is one condition's ranking against a parsed intake.
// Score is normalized to [0,1] across all conditions of the same run.
type ConditionMatch struct {
	Condition        string   `json:"condition"`
	Score            float64  `json:"score"`
	Matches          MatchSet `json:"matches"`
	RecommendedTests []string `json:"recommended_tests,omitempty"`
	DeclaredUrgency  Urgency  `json:"declared_urgency"`
}

// Assessment is the persisted outcome of a single intake.
type Assessment struct {
	ID            string           `json:"id"`
	CreatedAt     time.Time        `json:"created_at"`
	Input         Intake           `json:"input"`
	Symptoms      []string         `json:"parsed_symptoms"`
	TopConditions []ConditionMatch `json:"top_conditions"`
	FinalUrgency  Urgency          `json:"final_urgency"`
}

// Summary is the listing projection of an Assessment.
type Summary struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	FinalUrgency Urgency   `json:"final_urgency"`
	TopCondition string    `json:"top_condition,omitempty"`
}

// Summarize projects a full assessment down to its listing form.
func (a Assessment) Summarize() Summary {
	s := Summary{
		ID:           a.ID,
		CreatedAt:    a.CreatedAt,
		FinalUrgency: a.FinalUrgency,
	}
	if len(a.TopConditions) > 0 {
		s.TopCondition = a.TopConditions[0].Condition
	}
	return s
}
