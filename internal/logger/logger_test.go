package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, opts Options) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	ConfigureOutput(&buf, opts)
	t.Cleanup(func() { ConfigureOutput(&bytes.Buffer{}, DefaultOptions(ProfileTest)) })
	return &buf
}

func TestInfo_Success_Warn_Error_JSON(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	buf := capture(t, Options{Level: zerolog.DebugLevel, JSON: true})

	Debug("TAG", "d")
	Info("TAG", "i")
	Success("TAG", "s")
	Warn("TAG", "w")
	Error("TAG", "e")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 5)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[2], &rec))
	assert.Equal(t, "TAG", rec["tag"])
	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, true, rec["ok"])
	assert.Equal(t, "s", rec["message"])
}

func TestLevelFiltering(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	buf := capture(t, Options{Level: zerolog.WarnLevel, JSON: true})

	Info("TAG", "hidden")
	Warn("TAG", "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestEnvOverridesLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	buf := capture(t, Options{Level: zerolog.DebugLevel, JSON: true})

	Warn("TAG", "hidden")
	Error("TAG", "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestBannerSectionStats(t *testing.T) {
	buf := capture(t, DefaultOptions(ProfileTest))

	Banner("v1.0.0")
	Banner("")
	Section("Galaxy")
	Stats("Stars", 42)

	out := buf.String()
	assert.Contains(t, out, "v1.0.0")
	assert.Contains(t, out, "Galaxy")
	assert.Contains(t, out, "42")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
		ok   bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, true},
		{" WARNING ", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, "ParseLevel(%q)", tt.in)
		assert.Equal(t, tt.ok, ok, "ParseLevel(%q) ok", tt.in)
	}
}

func TestParseBool(t *testing.T) {
	v, ok := parseBool("true")
	assert.True(t, v)
	assert.True(t, ok)
	_, ok = parseBool("maybe")
	assert.False(t, ok)
	_, ok = parseBool(" ")
	assert.False(t, ok)
}
