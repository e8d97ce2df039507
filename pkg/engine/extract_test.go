package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"triage/pkg/core"
	"triage/pkg/engine"
	"triage/pkg/kb"
)

func testKB(t *testing.T) *kb.KnowledgeBase {
	t.Helper()

	k := &kb.KnowledgeBase{
		Conditions: []kb.Condition{
			{
				Name:               "Common cold",
				RequiredSymptoms:   []string{"nasal congestion", "sore throat"},
				SupportingSymptoms: []string{"cough", "sneezing"},
				Urgency:            core.UrgencySelfCare,
			},
			{
				Name:               "Influenza",
				RequiredSymptoms:   []string{"fever", "body aches"},
				SupportingSymptoms: []string{"cough", "fatigue"},
				RedFlags:           []string{"shortness of breath"},
				RecommendedTests:   []string{"influenza rapid antigen test"},
				Urgency:            core.UrgencySeeGP,
			},
			{
				Name:             "Pneumonia",
				RequiredSymptoms: []string{"cough", "fever"},
				RedFlags:         []string{"shortness of breath", "coughing blood"},
				Urgency:          core.UrgencyUrgent,
			},
		},
		Synonyms: map[string]string{
			"runny nose":  "nasal congestion",
			"temperature": "fever",
		},
		RedFlagKeywords: []string{"chest pain"},
	}
	k.Compile()
	return k
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "sore throat and a runny-nose",
		engine.Normalize("  Sore THROAT, and a runny-nose!!  "))
	assert.Equal(t, "can't breathe", engine.Normalize("Can't breathe?"))
	assert.Equal(t, "", engine.Normalize(""))
}

func TestExtract(t *testing.T) {
	k := testKB(t)

	t.Run("Checked Items Are Explicit", func(t *testing.T) {
		found := engine.Extract("", []string{" Fever ", "", "sore throat"}, k)
		assert.Contains(t, found, "fever")
		assert.Contains(t, found, "sore throat")
		assert.Len(t, found, 2)
	})

	t.Run("Synonyms Resolve To Canonical", func(t *testing.T) {
		found := engine.Extract("I have a runny nose since monday", nil, k)
		assert.Contains(t, found, "nasal congestion")
	})

	t.Run("Red Flag Keywords", func(t *testing.T) {
		found := engine.Extract("sudden chest pain when walking", nil, k)
		assert.Contains(t, found, "chest pain")
	})

	t.Run("Condition Phrases Match Whole Words", func(t *testing.T) {
		found := engine.Extract("a nasty sore throat and some coughing", nil, k)
		assert.Contains(t, found, "sore throat")
		// "coughing" must not match the phrase "cough" mid-word...
		// but the token fallback doesn't apply either ("coughing" is not
		// a KB token).
		assert.NotContains(t, found, "coughing")
	})

	t.Run("No Partial Phrase Match", func(t *testing.T) {
		found := engine.Extract("my feverish imagination", nil, k)
		assert.NotContains(t, found, "fever")
	})

	t.Run("Token Fallback", func(t *testing.T) {
		// "fever" alone is a token of the phrase "fever" and of nothing
		// else; a bare mention is picked up.
		found := engine.Extract("fever", nil, k)
		assert.Contains(t, found, "fever")

		// "body" is a token of "body aches"; the fallback adds the token,
		// not the full phrase.
		found = engine.Extract("my whole body", nil, k)
		assert.Contains(t, found, "body")
		assert.NotContains(t, found, "body aches")
	})

	t.Run("Empty Input", func(t *testing.T) {
		found := engine.Extract("", nil, k)
		assert.Empty(t, found)
	})
}
