// Package config owns the simulation parameter table from spec §4.4,
// following config/settings.go's shape: a JSON-tagged struct with
// defaults assigned in code and an optional load from disk.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	gcfg "gopkg.in/gcfg.v1"
)

// Config holds every option spec §4.4 recognizes. Changing it takes
// effect only through Simulation.Reset, never mid-step (spec §5
// "Cancellation").
type Config struct {
	NBodies               int     `json:"n_bodies"`
	Mass                  float64 `json:"mass"`
	MassZero              float64 `json:"mzero"`
	G                     float64 `json:"g"`
	Timestep              float64 `json:"timestep"`
	Softening             float64 `json:"softening"`
	Spin                  float64 `json:"spin"`
	TreeRatio             float64 `json:"tree_ratio"`
	Mode3D                bool    `json:"mode_3d"`
	Seed                  int64   `json:"seed"`
	RMin                  float64 `json:"r_min"`
	DiskScatterSigma      float64 `json:"disk_scatter_sigma"`
	DeterministicParallel bool    `json:"deterministic_parallel"`
}

// Default returns the baseline configuration, mirroring
// config/settings.go's loadSettings defaults.
func Default() Config {
	return Config{
		NBodies:               1000,
		Mass:                  1,
		MassZero:              1e6,
		G:                     1,
		Timestep:              1e-3,
		Softening:             0.01,
		Spin:                  0.05,
		TreeRatio:             1.0,
		Mode3D:                false,
		Seed:                  1,
		RMin:                  0.01,
		DiskScatterSigma:      0.02,
		DeterministicParallel: false,
	}
}

// Dim returns 2 or 3 depending on Mode3D, for indexing into vecmath.Bounds.
func (c Config) Dim() int {
	if c.Mode3D {
		return 3
	}
	return 2
}

// Validate reports the first *configuration error* found, per spec §7:
// non-positive N, non-positive mass, non-finite G, negative softening,
// negative tree_ratio, and the supplemental checks this module's fields
// need. Reported at construction/reset, never mid-step.
func (c Config) Validate() error {
	switch {
	case c.NBodies <= 0:
		return fmt.Errorf("config: n_bodies must be positive, got %d", c.NBodies)
	case c.Mass <= 0:
		return fmt.Errorf("config: mass must be positive, got %g", c.Mass)
	case c.MassZero < 0:
		return fmt.Errorf("config: mzero must be non-negative, got %g", c.MassZero)
	case math.IsNaN(c.G) || math.IsInf(c.G, 0):
		return fmt.Errorf("config: g must be finite, got %g", c.G)
	case c.Timestep <= 0:
		return fmt.Errorf("config: timestep must be positive, got %g", c.Timestep)
	case c.Softening < 0:
		return fmt.Errorf("config: softening must be non-negative, got %g", c.Softening)
	case c.TreeRatio < 0:
		return fmt.Errorf("config: tree_ratio must be non-negative, got %g", c.TreeRatio)
	case c.RMin <= 0:
		return fmt.Errorf("config: r_min must be positive, got %g", c.RMin)
	}
	return nil
}

// LoadJSONFile overlays cfg with values decoded from path, following
// config/settings.go's loadSettings: if the file doesn't exist, the
// caller's defaults are left untouched rather than treated as an error.
func LoadJSONFile(cfg *Config, path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("config: error parsing %s: %w", path, err)
	}
	return nil
}

// iniFile is the gcfg-tagged shape for the optional ini-style overlay
// (not wired to a CLI flag; --config reads JSON via LoadJSONFile), grounded on
// phil-mansfield-gotetra/io/config.go's gcfg.ReadFileInto usage.
type iniFile struct {
	Simulation struct {
		NBodies   int
		Mass      float64
		MassZero  float64
		G         float64
		Timestep  float64
		Softening float64
		Spin      float64
		TreeRatio float64
		Mode3D    bool
		Seed      int64
	}
}

// LoadIniFile overlays cfg with any fields present in an ini-style file at
// path. Fields absent from the file are left at cfg's current value.
func LoadIniFile(cfg *Config, path string) error {
	var f iniFile
	f.Simulation.NBodies = cfg.NBodies
	f.Simulation.Mass = cfg.Mass
	f.Simulation.MassZero = cfg.MassZero
	f.Simulation.G = cfg.G
	f.Simulation.Timestep = cfg.Timestep
	f.Simulation.Softening = cfg.Softening
	f.Simulation.Spin = cfg.Spin
	f.Simulation.TreeRatio = cfg.TreeRatio
	f.Simulation.Mode3D = cfg.Mode3D
	f.Simulation.Seed = cfg.Seed

	if err := gcfg.ReadFileInto(&f, path); err != nil {
		return fmt.Errorf("config: error parsing %s: %w", path, err)
	}

	cfg.NBodies = f.Simulation.NBodies
	cfg.Mass = f.Simulation.Mass
	cfg.MassZero = f.Simulation.MassZero
	cfg.G = f.Simulation.G
	cfg.Timestep = f.Simulation.Timestep
	cfg.Softening = f.Simulation.Softening
	cfg.Spin = f.Simulation.Spin
	cfg.TreeRatio = f.Simulation.TreeRatio
	cfg.Mode3D = f.Simulation.Mode3D
	cfg.Seed = f.Simulation.Seed
	return nil
}
