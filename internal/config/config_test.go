package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starlane/internal/engine"
	"starlane/internal/galaxy"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_Values(t *testing.T) {
	c := Default()
	require.NotNil(t, c)
	require.NoError(t, c.Validate())

	assert.Equal(t, galaxy.DefaultParams(), c.GalaxyParams())
	assert.Equal(t, engine.DefaultOptions(), c.EngineOptions())
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, 100*time.Millisecond, c.Simulation.TickInterval)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "run.toml", `
[galaxy]
radius = 250.0
empires = 4

[hypernet]
removal_rate = 0.3

[simulation]
seed = 42
ticks = 500
tick_interval = "250ms"

[log]
level = "debug"
json = true
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250.0, c.Galaxy.Radius)
	assert.Equal(t, 4, c.Galaxy.Empires)
	assert.Equal(t, 0.3, c.Hypernet.RemovalRate)
	assert.Equal(t, int64(42), c.Simulation.Seed)
	assert.Equal(t, 500, c.Simulation.Ticks)
	assert.Equal(t, 250*time.Millisecond, c.Simulation.TickInterval)
	// untouched keys keep their defaults
	assert.Equal(t, Default().Galaxy.Spacing, c.Galaxy.Spacing)
	assert.Equal(t, Default().Fleet, c.Fleet)

	opts := c.LoggerOptions()
	assert.Equal(t, zerolog.DebugLevel, opts.Level)
	assert.True(t, opts.JSON)
	assert.Equal(t, int64(42), c.EngineOptions().Seed)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "run.yaml", `
fleet:
  hyperspeed: 2500
  max_per_empire: 5
colonization:
  jitter: 0
server:
  addr: "127.0.0.1:9000"
db:
  path: ""
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2500, c.Fleet.Hyperspeed)
	assert.Equal(t, 5, c.EngineOptions().MaxFleetsPerEmpire)
	assert.Zero(t, c.Colonization.Jitter)
	assert.Equal(t, "127.0.0.1:9000", c.Server.Addr)
	assert.Empty(t, c.DB.Path)
	assert.Equal(t, Default().Galaxy, c.Galaxy)
}

func TestLoad_EmptyYAML(t *testing.T) {
	c, err := Load(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"unknown toml key", "a.toml", "[galaxy]\nradiuss = 3.0\n"},
		{"unknown yaml key", "a.yaml", "galaxy:\n  radiuss: 3\n"},
		{"bad toml", "a.toml", "[galaxy\n"},
		{"unsupported format", "a.json", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeFile(t, "bad.toml", "[hypernet]\nremoval_rate = 1.5\n"))
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "hypernet.removal_rate")
}

func TestValidate_ReportsEverything(t *testing.T) {
	c := Default()
	c.Galaxy.Radius = 0
	c.Fleet.Hyperspeed = -1
	c.Colonization.ScanBatch = 0
	c.Log.Level = "loud"

	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	for _, key := range []string{"galaxy.radius", "fleet.hyperspeed", "colonization.scan_batch", "log.level"} {
		assert.Contains(t, err.Error(), key)
	}
}
