package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triage/internal/platform"
	"triage/pkg/core"
)

func seedKBDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := `
conditions:
  - name: "Common cold"
    required_symptoms: ["nasal congestion"]
    supporting_symptoms: ["cough"]
    urgency: "self_care"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kb.yaml"), []byte(content), 0644))
	return dir
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("FS Adapter End To End", func(t *testing.T) {
		app, err := platform.New(ctx,
			platform.WithKBDir(seedKBDir(t)),
			platform.WithDataDir(filepath.Join(t.TempDir(), "assessments")),
		)
		require.NoError(t, err)
		defer app.Close()

		a, err := app.Service.Assess(ctx, core.Intake{Text: "stuffy and a bad cough"})
		require.NoError(t, err)

		got, err := app.Service.GetAssessment(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)
	})

	t.Run("SQLite Adapter", func(t *testing.T) {
		cfg := platform.DefaultConfig()
		cfg.KB.Dir = seedKBDir(t)
		cfg.Adapter = platform.AdapterSQLite
		cfg.SQLitePath = filepath.Join(t.TempDir(), "triage.db")

		app, err := platform.New(ctx, platform.WithConfig(cfg))
		require.NoError(t, err)
		defer app.Close()

		_, err = app.Service.Assess(ctx, core.Intake{Text: "cough"})
		assert.NoError(t, err)
	})

	t.Run("Missing KB Fails", func(t *testing.T) {
		_, err := platform.New(ctx, platform.WithKBDir(t.TempDir()))
		assert.Error(t, err)
	})

	t.Run("Unknown Adapter Fails", func(t *testing.T) {
		_, err := platform.New(ctx,
			platform.WithKBDir(seedKBDir(t)),
			platform.WithAdapter("postgres"),
		)
		assert.ErrorContains(t, err, "unknown adapter")
	})

	t.Run("Read Only Blocks Writes", func(t *testing.T) {
		app, err := platform.New(ctx,
			platform.WithKBDir(seedKBDir(t)),
			platform.WithDataDir(filepath.Join(t.TempDir(), "assessments")),
			platform.WithReadOnly(true),
		)
		require.NoError(t, err)
		defer app.Close()

		_, err = app.Service.Assess(ctx, core.Intake{Text: "cough"})
		assert.ErrorIs(t, err, core.ErrReadOnly)
	})
}
