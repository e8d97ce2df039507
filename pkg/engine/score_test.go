package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triage/pkg/engine"
)

func symptomSet(symptoms ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(symptoms))
	for _, s := range symptoms {
		set[s] = struct{}{}
	}
	return set
}

func TestScore(t *testing.T) {
	k := testKB(t)
	w := engine.DefaultWeights()

	t.Run("Ranks By Weighted Matches", func(t *testing.T) {
		// Raw scores: cold 0.5+0.8=1.3, flu 0.5+1.5+1.5+0.8=4.3,
		// pneumonia 0.5+1.5+1.5=3.5. Normalized over span 3.0.
		ranked := engine.Score(symptomSet("fever", "body aches", "cough"), k, w)
		require.Len(t, ranked, 3)

		assert.Equal(t, "Influenza", ranked[0].Condition)
		assert.Equal(t, 1.0, ranked[0].Score)

		assert.Equal(t, "Pneumonia", ranked[1].Condition)
		assert.Equal(t, 0.733, ranked[1].Score)

		assert.Equal(t, "Common cold", ranked[2].Condition)
		assert.Equal(t, 0.0, ranked[2].Score)
	})

	t.Run("Records Matched Phrases", func(t *testing.T) {
		ranked := engine.Score(symptomSet("fever", "cough", "shortness of breath"), k, w)

		var flu *struct{ req, sup, red []string }
		for _, m := range ranked {
			if m.Condition == "Influenza" {
				flu = &struct{ req, sup, red []string }{
					m.Matches.Required, m.Matches.Supporting, m.Matches.RedFlags,
				}
			}
		}
		require.NotNil(t, flu)
		assert.Equal(t, []string{"fever"}, flu.req)
		assert.Equal(t, []string{"cough"}, flu.sup)
		assert.Equal(t, []string{"shortness of breath"}, flu.red)
	})

	t.Run("Zero Span Flattens To Zero", func(t *testing.T) {
		// Nothing matched: every condition sits at the baseline, and the
		// normalization must not divide by zero.
		ranked := engine.Score(symptomSet(), k, w)
		require.Len(t, ranked, 3)
		for _, m := range ranked {
			assert.Equal(t, 0.0, m.Score)
		}
	})

	t.Run("Ties Break By Name", func(t *testing.T) {
		ranked := engine.Score(symptomSet(), k, w)
		assert.Equal(t, "Common cold", ranked[0].Condition)
		assert.Equal(t, "Influenza", ranked[1].Condition)
		assert.Equal(t, "Pneumonia", ranked[2].Condition)
	})

	t.Run("Carries Declared Urgency And Tests", func(t *testing.T) {
		ranked := engine.Score(symptomSet("fever", "body aches"), k, w)
		assert.Equal(t, "Influenza", ranked[0].Condition)
		assert.Equal(t, []string{"influenza rapid antigen test"}, ranked[0].RecommendedTests)
		assert.EqualValues(t, "see_gp", ranked[0].DeclaredUrgency)
	})
}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, engine.DefaultWeights().Validate())

	bad := engine.DefaultWeights()
	bad.Required = 0
	assert.Error(t, bad.Validate())
}
