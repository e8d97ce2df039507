package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"triage/pkg/core"
	"triage/pkg/engine"
)

func TestDecide(t *testing.T) {
	th := engine.DefaultThresholds()

	t.Run("Red Flag Anywhere Forces Urgent", func(t *testing.T) {
		ranked := []core.ConditionMatch{
			{Condition: "a", Score: 1.0, DeclaredUrgency: core.UrgencySelfCare},
			{Condition: "b", Score: 0.1, DeclaredUrgency: core.UrgencySelfCare,
				Matches: core.MatchSet{RedFlags: []string{"coughing blood"}}},
		}
		assert.Equal(t, core.UrgencyUrgent, engine.Decide(ranked, th))
	})

	t.Run("Declared Urgent Above Threshold", func(t *testing.T) {
		ranked := []core.ConditionMatch{
			{Condition: "a", Score: 0.4, DeclaredUrgency: core.UrgencyUrgent},
		}
		assert.Equal(t, core.UrgencyUrgent, engine.Decide(ranked, th))
	})

	t.Run("Declared Urgent Below Threshold Stays Self Care", func(t *testing.T) {
		ranked := []core.ConditionMatch{
			{Condition: "a", Score: 0.2, DeclaredUrgency: core.UrgencyUrgent},
		}
		assert.Equal(t, core.UrgencySelfCare, engine.Decide(ranked, th))
	})

	t.Run("See GP Threshold", func(t *testing.T) {
		ranked := []core.ConditionMatch{
			{Condition: "a", Score: 0.25, DeclaredUrgency: core.UrgencySeeGP},
		}
		assert.Equal(t, core.UrgencySeeGP, engine.Decide(ranked, th))

		ranked[0].Score = 0.1
		assert.Equal(t, core.UrgencySelfCare, engine.Decide(ranked, th))
	})

	t.Run("Empty Ranking Is Self Care", func(t *testing.T) {
		assert.Equal(t, core.UrgencySelfCare, engine.Decide(nil, th))
	})
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, engine.DefaultThresholds().Validate())

	bad := engine.DefaultThresholds()
	bad.Urgent = 1.5
	assert.Error(t, bad.Validate())

	bad = engine.DefaultThresholds()
	bad.SeeGP = 0
	assert.Error(t, bad.Validate())
}

func TestEngineEvaluate(t *testing.T) {
	k := testKB(t)
	e := engine.New(engine.StaticSource(k), engine.Weights{}, engine.Thresholds{})

	t.Run("End To End", func(t *testing.T) {
		symptoms, top, urgency := e.Evaluate(core.Intake{
			Text: "I have a temperature and body aches, plus a bad cough",
		})

		// The token fallback also records the bare "body"/"aches" tokens
		// alongside the full phrase.
		assert.Equal(t, []string{"aches", "body", "body aches", "cough", "fever"}, symptoms)
		assert.NotEmpty(t, top)
		assert.Equal(t, "Influenza", top[0].Condition)
		assert.Equal(t, core.UrgencySeeGP, urgency)
		assert.LessOrEqual(t, len(top), 3)
	})

	t.Run("Red Flag Escalates", func(t *testing.T) {
		_, _, urgency := e.Evaluate(core.Intake{
			Text: "cough and fever, now shortness of breath",
		})
		assert.Equal(t, core.UrgencyUrgent, urgency)
	})

	t.Run("Explain Returns Full Ranking", func(t *testing.T) {
		all := e.Explain(core.Intake{Text: "cough"})
		assert.Len(t, all, 3)
	})
}
