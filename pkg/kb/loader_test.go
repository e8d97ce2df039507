package kb_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triage/pkg/kb"
)

func writeKB(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad(t *testing.T) {
	t.Run("Merges Multiple Files", func(t *testing.T) {
		dir := t.TempDir()
		writeKB(t, dir, "kb.yaml", `
synonyms:
  "runny nose": "nasal congestion"
red_flag_keywords:
  - "chest pain"
`)
		writeKB(t, dir, "conditions/respiratory.yaml", `
conditions:
  - name: "Common cold"
    required_symptoms: ["nasal congestion"]
    supporting_symptoms: ["cough"]
    urgency: "self_care"
`)
		writeKB(t, dir, "conditions/flu.json", `{
  "conditions": [
    {
      "name": "Influenza",
      "required_symptoms": ["fever"],
      "red_flags": ["shortness of breath"],
      "urgency": "see_gp"
    }
  ]
}`)

		k, err := kb.Load(dir, nil, nil)
		require.NoError(t, err)

		assert.Len(t, k.Conditions, 2)
		assert.Equal(t, "nasal congestion", k.Synonyms["runny nose"])
		assert.Equal(t, []string{"chest pain"}, k.RedFlagKeywords)
	})

	t.Run("Empty Directory Fails", func(t *testing.T) {
		_, err := kb.Load(t.TempDir(), nil, nil)
		assert.ErrorContains(t, err, "no knowledge base files")
	})

	t.Run("Missing Directory Fails", func(t *testing.T) {
		_, err := kb.Load(filepath.Join(t.TempDir(), "nope"), nil, nil)
		assert.Error(t, err)
	})

	t.Run("Duplicate Condition Name Fails", func(t *testing.T) {
		dir := t.TempDir()
		writeKB(t, dir, "a.yaml", `
conditions:
  - name: "Common cold"
    required_symptoms: ["cough"]
`)
		writeKB(t, dir, "b.yaml", `
conditions:
  - name: "Common cold"
    required_symptoms: ["sneezing"]
`)
		_, err := kb.Load(dir, nil, nil)
		assert.ErrorContains(t, err, "duplicate condition")
	})

	t.Run("Unknown Urgency Fails", func(t *testing.T) {
		dir := t.TempDir()
		writeKB(t, dir, "a.yaml", `
conditions:
  - name: "Common cold"
    urgency: "panic"
`)
		_, err := kb.Load(dir, nil, nil)
		assert.ErrorContains(t, err, "unknown urgency")
	})

	t.Run("Empty Urgency Defaults To See GP", func(t *testing.T) {
		dir := t.TempDir()
		writeKB(t, dir, "a.yaml", `
conditions:
  - name: "Common cold"
    required_symptoms: ["cough"]
`)
		k, err := kb.Load(dir, nil, nil)
		require.NoError(t, err)
		assert.EqualValues(t, "see_gp", k.Conditions[0].Urgency)
	})

	t.Run("Conflicting Synonyms Fail", func(t *testing.T) {
		dir := t.TempDir()
		writeKB(t, dir, "a.yaml", `
conditions:
  - name: "c"
    required_symptoms: ["fever"]
synonyms:
  "temp": "fever"
`)
		writeKB(t, dir, "b.yaml", `
synonyms:
  "temp": "temperature"
`)
		_, err := kb.Load(dir, nil, nil)
		assert.ErrorContains(t, err, "synonym")
	})

	t.Run("Invalid YAML Names The File", func(t *testing.T) {
		dir := t.TempDir()
		writeKB(t, dir, "broken.yaml", "conditions: [oops")
		_, err := kb.Load(dir, nil, nil)
		assert.ErrorContains(t, err, "broken.yaml")
	})

	t.Run("Custom Patterns Restrict Discovery", func(t *testing.T) {
		dir := t.TempDir()
		writeKB(t, dir, "kb.yaml", `
conditions:
  - name: "c"
    required_symptoms: ["fever"]
`)
		writeKB(t, dir, "ignore.json", `{"conditions": [{"name": "d"}]}`)

		k, err := kb.Load(dir, []string{"**/*.yaml"}, nil)
		require.NoError(t, err)
		assert.Len(t, k.Conditions, 1)
	})
}
