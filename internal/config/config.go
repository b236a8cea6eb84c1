// Package config loads run settings from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"starlane/internal/engine"
	"starlane/internal/galaxy"
	"starlane/internal/graph"
	"starlane/internal/logger"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds application settings. Zero sections in a file keep their defaults.
type Config struct {
	Galaxy       GalaxyConfig       `toml:"galaxy" yaml:"galaxy"`
	Hypernet     HypernetConfig     `toml:"hypernet" yaml:"hypernet"`
	Fleet        FleetConfig        `toml:"fleet" yaml:"fleet"`
	Colonization ColonizationConfig `toml:"colonization" yaml:"colonization"`
	Simulation   SimulationConfig   `toml:"simulation" yaml:"simulation"`
	Server       ServerConfig       `toml:"server" yaml:"server"`
	Log          LogConfig          `toml:"log" yaml:"log"`
	DB           DBConfig           `toml:"db" yaml:"db"`
}

type GalaxyConfig struct {
	Radius         float64 `toml:"radius" yaml:"radius"`
	MaxStars       int     `toml:"max_stars" yaml:"max_stars"`
	Spacing        float64 `toml:"spacing" yaml:"spacing"`
	Empires        int     `toml:"empires" yaml:"empires"`
	MaxBodies      int     `toml:"max_bodies" yaml:"max_bodies"`
	HomePopulation int64   `toml:"home_population" yaml:"home_population"`
}

// HypernetConfig tunes lane pruning.
type HypernetConfig struct {
	LengthFactor  float64 `toml:"length_factor" yaml:"length_factor"`
	RemovalRate   float64 `toml:"removal_rate" yaml:"removal_rate"`
	MaxDetourHops int     `toml:"max_detour_hops" yaml:"max_detour_hops"`
}

type FleetConfig struct {
	Speed          float64 `toml:"speed" yaml:"speed"`
	Hyperspeed     int     `toml:"hyperspeed" yaml:"hyperspeed"`
	CrewDivisor    int64   `toml:"crew_divisor" yaml:"crew_divisor"`
	ColonyShipCrew int64   `toml:"colony_ship_crew" yaml:"colony_ship_crew"`
	MaxPerEmpire   int     `toml:"max_per_empire" yaml:"max_per_empire"`
}

type ColonizationConfig struct {
	RevalidateInterval uint64  `toml:"revalidate_interval" yaml:"revalidate_interval"`
	ScanBatch          int     `toml:"scan_batch" yaml:"scan_batch"`
	ColonizedPenalty   float64 `toml:"colonized_penalty" yaml:"colonized_penalty"`
	Jitter             float64 `toml:"jitter" yaml:"jitter"`
}

// SimulationConfig controls a run. TickInterval only applies to serve, where
// ticks are paced in wall-clock time; zero runs them back to back.
type SimulationConfig struct {
	Seed             int64         `toml:"seed" yaml:"seed"`
	Ticks            int           `toml:"ticks" yaml:"ticks"`
	TickInterval     time.Duration `toml:"tick_interval" yaml:"tick_interval"`
	SnapshotInterval uint64        `toml:"snapshot_interval" yaml:"snapshot_interval"`
}

type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	JSON  bool   `toml:"json" yaml:"json"`
}

// DBConfig points at the sqlite ledger. An empty path disables recording.
type DBConfig struct {
	Path string `toml:"path" yaml:"path"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	gp := galaxy.DefaultParams()
	opts := engine.DefaultOptions()
	return &Config{
		Galaxy: GalaxyConfig{
			Radius:         gp.Radius,
			MaxStars:       gp.MaxStars,
			Spacing:        gp.Spacing,
			Empires:        gp.Empires,
			MaxBodies:      gp.MaxBodies,
			HomePopulation: gp.HomePopulation,
		},
		Hypernet: HypernetConfig{
			LengthFactor:  gp.Build.LengthFactor,
			RemovalRate:   gp.Build.RemovalRate,
			MaxDetourHops: gp.Build.MaxDetourHops,
		},
		Fleet: FleetConfig{
			Speed:          opts.Speed,
			Hyperspeed:     opts.Hyperspeed,
			CrewDivisor:    opts.CrewDivisor,
			ColonyShipCrew: opts.ColonyShipCrew,
			MaxPerEmpire:   opts.MaxFleetsPerEmpire,
		},
		Colonization: ColonizationConfig{
			RevalidateInterval: opts.RevalidateInterval,
			ScanBatch:          opts.ScanBatch,
			ColonizedPenalty:   opts.ColonizedPenalty,
			Jitter:             opts.Jitter,
		},
		Simulation: SimulationConfig{
			Seed:             opts.Seed,
			Ticks:            1000,
			TickInterval:     100 * time.Millisecond,
			SnapshotInterval: opts.SnapshotInterval,
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info"},
		DB:     DBConfig{Path: "starlane.db"},
	}
}

// Load reads path over the defaults. The format follows the extension:
// .toml, or .yaml/.yml. Unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("decode %s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config %s: unsupported format %q", path, ext)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Galaxy.Radius > 0, "galaxy.radius must be positive, got %v", c.Galaxy.Radius)
	check(c.Galaxy.Spacing > 0, "galaxy.spacing must be positive, got %v", c.Galaxy.Spacing)
	check(c.Galaxy.MaxStars >= 3, "galaxy.max_stars must be at least 3, got %d", c.Galaxy.MaxStars)
	check(c.Galaxy.Empires >= 0, "galaxy.empires must not be negative, got %d", c.Galaxy.Empires)
	check(c.Galaxy.MaxBodies >= 0, "galaxy.max_bodies must not be negative, got %d", c.Galaxy.MaxBodies)

	check(c.Hypernet.LengthFactor >= 1, "hypernet.length_factor must be at least 1, got %v", c.Hypernet.LengthFactor)
	check(c.Hypernet.RemovalRate >= 0 && c.Hypernet.RemovalRate <= 1,
		"hypernet.removal_rate must be within [0,1], got %v", c.Hypernet.RemovalRate)
	check(c.Hypernet.MaxDetourHops > 0, "hypernet.max_detour_hops must be positive, got %d", c.Hypernet.MaxDetourHops)

	check(c.Fleet.Speed > 0, "fleet.speed must be positive, got %v", c.Fleet.Speed)
	check(c.Fleet.Hyperspeed > 0, "fleet.hyperspeed must be positive, got %d", c.Fleet.Hyperspeed)
	check(c.Fleet.CrewDivisor >= 0, "fleet.crew_divisor must not be negative, got %d", c.Fleet.CrewDivisor)
	check(c.Fleet.ColonyShipCrew > 0, "fleet.colony_ship_crew must be positive, got %d", c.Fleet.ColonyShipCrew)
	check(c.Fleet.MaxPerEmpire > 0, "fleet.max_per_empire must be positive, got %d", c.Fleet.MaxPerEmpire)

	check(c.Colonization.RevalidateInterval > 0, "colonization.revalidate_interval must be positive")
	check(c.Colonization.ScanBatch > 0, "colonization.scan_batch must be positive, got %d", c.Colonization.ScanBatch)
	check(c.Colonization.Jitter >= 0, "colonization.jitter must not be negative, got %v", c.Colonization.Jitter)

	check(c.Simulation.Ticks >= 0, "simulation.ticks must not be negative, got %d", c.Simulation.Ticks)
	check(c.Simulation.TickInterval >= 0, "simulation.tick_interval must not be negative, got %v", c.Simulation.TickInterval)

	if _, ok := logger.ParseLevel(c.Log.Level); !ok && c.Log.Level != "" {
		errs = append(errs, fmt.Errorf("log.level %q is not a level", c.Log.Level))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// GalaxyParams converts the galaxy and hypernet sections for galaxy.Generate.
func (c *Config) GalaxyParams() galaxy.Params {
	return galaxy.Params{
		Radius:         c.Galaxy.Radius,
		MaxStars:       c.Galaxy.MaxStars,
		Spacing:        c.Galaxy.Spacing,
		Empires:        c.Galaxy.Empires,
		MaxBodies:      c.Galaxy.MaxBodies,
		HomePopulation: c.Galaxy.HomePopulation,
		Build: graph.BuildParams{
			LengthFactor:  c.Hypernet.LengthFactor,
			RemovalRate:   c.Hypernet.RemovalRate,
			MaxDetourHops: c.Hypernet.MaxDetourHops,
		},
	}
}

// EngineOptions converts the fleet, colonization and simulation sections.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		Seed:               c.Simulation.Seed,
		Speed:              c.Fleet.Speed,
		Hyperspeed:         c.Fleet.Hyperspeed,
		RevalidateInterval: c.Colonization.RevalidateInterval,
		ScanBatch:          c.Colonization.ScanBatch,
		ColonizedPenalty:   c.Colonization.ColonizedPenalty,
		Jitter:             c.Colonization.Jitter,
		CrewDivisor:        c.Fleet.CrewDivisor,
		ColonyShipCrew:     c.Fleet.ColonyShipCrew,
		MaxFleetsPerEmpire: c.Fleet.MaxPerEmpire,
		SnapshotInterval:   c.Simulation.SnapshotInterval,
	}
}

// LoggerOptions applies the log section on top of the runtime profile.
func (c *Config) LoggerOptions() logger.Options {
	opts := logger.DefaultOptions(logger.ProfileRuntime)
	if lvl, ok := logger.ParseLevel(c.Log.Level); ok {
		opts.Level = lvl
	}
	opts.JSON = c.Log.JSON
	return opts
}
