package core

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service handles the business logic for assessments: it runs the rule
// engine over an intake and persists the outcome.
type Service struct {
	repo     Repository
	assessor Assessor
	logger   *slog.Logger

	mu    sync.RWMutex
	saved uint64

	// Overridable for deterministic tests.
	now   func() time.Time
	newID func() string
}

// NewService creates a new Service. logger may be nil.
func NewService(repo Repository, assessor Assessor, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		assessor: assessor,
		logger:   logger,
		now:      time.Now,
		newID:    NewID,
	}
}

// NewID returns a fresh URL-safe assessment identifier (uuid without dashes).
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Assess evaluates an intake and persists the resulting assessment.
func (s *Service) Assess(ctx context.Context, in Intake) (Assessment, error) {
	symptoms, top, urgency := s.assessor.Evaluate(in)
	sort.Strings(symptoms)

	a := Assessment{
		ID:            s.newID(),
		CreatedAt:     s.now().UTC(),
		Input:         in,
		Symptoms:      symptoms,
		TopConditions: top,
		FinalUrgency:  urgency,
	}

	if err := s.repo.Save(ctx, a); err != nil {
		return Assessment{}, err
	}

	s.mu.Lock()
	s.saved++
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("assessment stored",
			"id", a.ID,
			"urgency", a.FinalUrgency,
			"symptoms", len(a.Symptoms),
		)
	}

	return a, nil
}

// Preview evaluates an intake without persisting it. The returned
// assessment carries a fresh ID but is not stored.
func (s *Service) Preview(in Intake) Assessment {
	symptoms, top, urgency := s.assessor.Evaluate(in)
	sort.Strings(symptoms)

	return Assessment{
		ID:            s.newID(),
		CreatedAt:     s.now().UTC(),
		Input:         in,
		Symptoms:      symptoms,
		TopConditions: top,
		FinalUrgency:  urgency,
	}
}

// Explain runs the engine without persisting and returns the full ranking.
func (s *Service) Explain(in Intake) []ConditionMatch {
	return s.assessor.Explain(in)
}

// GetAssessment retrieves a stored assessment.
func (s *Service) GetAssessment(ctx context.Context, id string) (Assessment, error) {
	if id == "" {
		return Assessment{}, errors.New("assessment ID cannot be empty")
	}
	return s.repo.Get(ctx, id)
}

// ListAssessments retrieves all stored assessments, newest first.
func (s *Service) ListAssessments(ctx context.Context) ([]Assessment, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

// DeleteAssessment removes a stored assessment.
func (s *Service) DeleteAssessment(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("assessment ID cannot be empty")
	}
	return s.repo.Delete(ctx, id)
}
