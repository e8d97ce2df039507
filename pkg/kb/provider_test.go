package kb_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triage/pkg/kb"
)

func TestProvider(t *testing.T) {
	dir := t.TempDir()
	writeKB(t, dir, "kb.yaml", `
conditions:
  - name: "Common cold"
    required_symptoms: ["cough"]
    urgency: "self_care"
`)

	p, err := kb.NewProvider(dir, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), p.Revision())
	assert.Len(t, p.KB().Conditions, 1)

	t.Run("Reload Swaps Snapshot", func(t *testing.T) {
		before := p.KB()

		writeKB(t, dir, "more.yaml", `
conditions:
  - name: "Influenza"
    required_symptoms: ["fever"]
    urgency: "see_gp"
`)
		require.NoError(t, p.Reload())

		assert.Equal(t, uint64(2), p.Revision())
		assert.Len(t, p.KB().Conditions, 2)
		assert.Len(t, before.Conditions, 1, "handed-out snapshot is untouched")
	})

	t.Run("Failed Reload Keeps Previous Snapshot", func(t *testing.T) {
		writeKB(t, dir, "broken.yaml", "conditions: [oops")

		assert.Error(t, p.Reload())
		assert.Equal(t, uint64(2), p.Revision())
		assert.Len(t, p.KB().Conditions, 2)

		require.NoError(t, os.Remove(filepath.Join(dir, "broken.yaml")))
	})

	t.Run("State", func(t *testing.T) {
		state, ok := p.State().(kb.ProviderState)
		require.True(t, ok)
		assert.Equal(t, dir, state.Dir)
		assert.Equal(t, uint64(2), state.Revision)
		assert.Equal(t, 2, state.Conditions)
		assert.False(t, state.WatcherActive)
	})
}

func TestProviderInitialLoadFailure(t *testing.T) {
	_, err := kb.NewProvider(t.TempDir(), nil, nil)
	assert.Error(t, err)
}
