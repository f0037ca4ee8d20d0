// Package config holds the YAML run configuration for the demo driver.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Grid describes the structured demo mesh.
type Grid struct {
	Nx     int     `yaml:"nx"`
	Ny     int     `yaml:"ny"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Config is the full run configuration.
type Config struct {
	// SolverID names the boundary solver; it prefixes the monitor's
	// output name.
	SolverID string `yaml:"solver_id"`

	// Components are the monitored output quantities, in order.
	Components []string `yaml:"components"`

	// Coefficients parallel Components; each scales the adjacent cell
	// state into the component's flux value.
	Coefficients []float64 `yaml:"coefficients"`

	Grid Grid `yaml:"grid"`

	// Steps and Dt drive the stepping loop; a snapshot is saved every
	// Interval steps.
	Steps    int     `yaml:"steps"`
	Dt       float64 `yaml:"dt"`
	Interval int     `yaml:"interval"`

	// Output is the gob output file path.
	Output string `yaml:"output"`

	// Gravity enables the buoyancy process when non-empty.
	Gravity []float64 `yaml:"gravity"`
}

// Default returns a runnable configuration.
func Default() Config {
	return Config{
		SolverID:     "boundaryFlux",
		Components:   []string{"heatFlux", "massFlux"},
		Coefficients: []float64{1.0, 0.5},
		Grid:         Grid{Nx: 4, Ny: 3, Width: 1, Height: 1},
		Steps:        10,
		Dt:           0.01,
		Interval:     2,
		Output:       "boundary_monitor.gob",
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks cross-field consistency.
func (c Config) Validate() error {
	if len(c.Components) == 0 {
		return fmt.Errorf("at least one output component is required")
	}
	if len(c.Components) != len(c.Coefficients) {
		return fmt.Errorf("%d components but %d coefficients", len(c.Components), len(c.Coefficients))
	}
	if c.Grid.Nx < 1 || c.Grid.Ny < 1 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", c.Grid.Nx, c.Grid.Ny)
	}
	if c.Interval < 1 {
		return fmt.Errorf("save interval %d must be positive", c.Interval)
	}
	return nil
}
