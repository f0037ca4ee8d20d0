package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
solver_id: channel
components: [heatFlux]
coefficients: [2.5]
grid:
  nx: 8
  ny: 2
  width: 4
  height: 1
interval: 5
gravity: [0, -9.81]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "channel", cfg.SolverID)
	assert.Equal(t, []string{"heatFlux"}, cfg.Components)
	assert.Equal(t, []float64{2.5}, cfg.Coefficients)
	assert.Equal(t, 8, cfg.Grid.Nx)
	assert.Equal(t, 5, cfg.Interval)
	assert.Equal(t, []float64{0, -9.81}, cfg.Gravity)

	// Unset keys keep their defaults
	assert.Equal(t, 10, cfg.Steps)
	assert.Equal(t, "boundary_monitor.gob", cfg.Output)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no components", func(c *Config) { c.Components = nil; c.Coefficients = nil }},
		{"mismatched coefficients", func(c *Config) { c.Coefficients = []float64{1} }},
		{"degenerate grid", func(c *Config) { c.Grid.Nx = 0 }},
		{"zero interval", func(c *Config) { c.Interval = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
