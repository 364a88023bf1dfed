// Package kvconfig loads the join execution subsystem's tunables from a
// TOML file, the way the teacher's engine.Config is populated from disk.
package kvconfig

import (
	"github.com/BurntSushi/toml"

	"github.com/kvrowdb/joinengine/kv/planner"
)

// Config is the on-disk shape of the subsystem's tunables (§9 open
// questions): the planner's inner-join permutation cutoff, the logging
// level, and whether the null-aware argument branch optimization is
// enabled.
type Config struct {
	Planner PlannerConfig `toml:"planner"`
	Logging LoggingConfig `toml:"logging"`
}

// PlannerConfig mirrors planner.Config, in its on-disk shape.
type PlannerConfig struct {
	// PermutationCutoff bounds how large an InnerJoins group the planner
	// will exhaustively permute before falling back to the greedy
	// heuristic. Zero means the package default of 8.
	PermutationCutoff int `toml:"permutation_cutoff"`

	// DisableNullAwareArguments turns off phase 4's negative-argument-index
	// branching. False (the zero value) keeps it enabled, matching
	// planner.Config's default-on behavior.
	DisableNullAwareArguments bool `toml:"disable_null_aware_arguments"`
}

// LoggingConfig controls the *logrus.Logger level every kv.Context shares.
type LoggingConfig struct {
	// Level is a logrus level name ("debug", "info", "warn", "error").
	// Empty means "info".
	Level string `toml:"level"`
}

// Default returns the subsystem's zero-configuration defaults.
func Default() Config {
	return Config{
		Planner: PlannerConfig{PermutationCutoff: 8},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads and decodes a TOML config file at path, filling in any field
// left unset with Default()'s value.
func Load(path string) (Config, error) {
	cfg := Default()
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ToPlannerConfig converts the on-disk shape into planner.Config.
func (c Config) ToPlannerConfig() planner.Config {
	return planner.Config{
		PermutationCutoff:        c.Planner.PermutationCutoff,
		DisableNullAwareArguments: c.Planner.DisableNullAwareArguments,
	}
}
