package kvconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, 8, cfg.Planner.PermutationCutoff)
	require.False(t, cfg.Planner.DisableNullAwareArguments)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFillsInDefaultsForUnsetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[logging]
level = "debug"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, 8, cfg.Planner.PermutationCutoff, "unset fields keep Default()'s value")
}

func TestLoadOverridesPlannerSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[planner]
permutation_cutoff = 4
disable_null_aware_arguments = true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Planner.PermutationCutoff)
	require.True(t, cfg.Planner.DisableNullAwareArguments)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestToPlannerConfig(t *testing.T) {
	cfg := Config{Planner: PlannerConfig{PermutationCutoff: 5, DisableNullAwareArguments: true}}
	pc := cfg.ToPlannerConfig()
	require.Equal(t, 5, pc.PermutationCutoff)
	require.True(t, pc.DisableNullAwareArguments)
}
