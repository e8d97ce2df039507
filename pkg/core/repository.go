package core

import "context"

// Repository defines the contract for storing and retrieving assessments.
// Adhering to this interface keeps the core independent of the underlying
// storage mechanism (JSON files, SQLite, in-memory).
type Repository interface {
	// Save persists an assessment. It creates if not exists, or updates if it does.
	Save(ctx context.Context, a Assessment) error

	// Get retrieves an assessment by its ID. Returns ErrNotFound when absent.
	Get(ctx context.Context, id string) (Assessment, error)

	// List returns all stored assessments.
	List(ctx context.Context) ([]Assessment, error)

	// Delete removes an assessment by its ID. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error

	// Initialize ensures the underlying storage is ready
	// (e.g. create directories, open database, run schema migration).
	Initialize(ctx context.Context) error
}

// Assessor turns a raw intake into parsed symptoms, ranked condition matches
// and a final urgency. Implemented by the rule engine.
type Assessor interface {
	// Evaluate returns the normalized parsed symptoms (sorted), the top
	// condition matches (at most three) and the final triage urgency.
	Evaluate(in Intake) (symptoms []string, top []ConditionMatch, urgency Urgency)

	// Explain returns the full ranking over every known condition.
	Explain(in Intake) []ConditionMatch
}
