package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 200*time.Millisecond, cfg.Watch.Debounce.Std())
	assert.Equal(t, "sqlite:///"+filepath.Join("lib", ".increvise", "library.db"), cfg.Database.ResolvedURL("lib"))
}

func TestLoadTOML(t *testing.T) {
	p := writeFile(t, "increvise.toml", `
[library]
root = "/notes"

[projection]
lenient_geometry = true

[watch]
debounce = "1s"
`)
	cfg, err := Load(WithFile(p), WithoutEnv())
	require.NoError(t, err)

	assert.Equal(t, "/notes", cfg.Library.Root)
	assert.Equal(t, 8, cfg.Library.LoadConcurrency, "unset keys keep defaults")
	assert.True(t, cfg.Projection.LenientGeometry)
	assert.Equal(t, time.Second, cfg.Watch.Debounce.Std())
	assert.True(t, cfg.Watch.Enabled)
}

func TestLoadYAML(t *testing.T) {
	p := writeFile(t, "increvise.yaml", `
logging:
  level: debug
  format: json
editor:
  read_only: true
watch:
  debounce: 50ms
`)
	cfg, err := Load(WithFile(p), WithoutEnv())
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Editor.ReadOnly)
	assert.Equal(t, 50*time.Millisecond, cfg.Watch.Debounce.Std())
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.toml")

	cfg, err := Load(WithFile(missing), WithoutEnv())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(WithRequiredFile(missing), WithoutEnv())
	assert.Error(t, err)
}

func TestLoadParseError(t *testing.T) {
	p := writeFile(t, "bad.toml", "[library\nroot = 1\n")

	_, err := Load(WithFile(p), WithoutEnv())

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, p, pe.Path)
	assert.Equal(t, 1, pe.Line)
}

func TestLoadUnknownFormat(t *testing.T) {
	p := writeFile(t, "config.ini", "x=1")
	_, err := Load(WithFile(p), WithoutEnv())
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestEnvOverridesFile(t *testing.T) {
	p := writeFile(t, "increvise.toml", "[logging]\nlevel = \"warn\"\n")
	t.Setenv("INCREVISE_LOGGING_LEVEL", "error")
	t.Setenv("INCREVISE_PROJECTION_LENIENT_GEOMETRY", "true")
	t.Setenv("INCREVISE_WATCH_DEBOUNCE", "5ms")

	cfg, err := Load(WithFile(p))
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.True(t, cfg.Projection.LenientGeometry)
	assert.Equal(t, 5*time.Millisecond, cfg.Watch.Debounce.Std())
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dotenv := writeFile(t, ".env", "INCREVISE_LIBRARY_ROOT=/from-dotenv\nINCREVISE_EDITOR_MAX_SHIFTS=32\n")
	t.Setenv("INCREVISE_LIBRARY_ROOT", "/from-env")
	// Registers cleanup for the variable the .env file sets.
	t.Setenv("INCREVISE_EDITOR_MAX_SHIFTS", "")
	require.NoError(t, os.Unsetenv("INCREVISE_EDITOR_MAX_SHIFTS"))

	cfg, err := Load(WithDotEnv(dotenv))
	require.NoError(t, err)

	assert.Equal(t, "/from-env", cfg.Library.Root)
	assert.Equal(t, 32, cfg.Editor.MaxShifts)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty root", func(c *Config) { c.Library.Root = " " }},
		{"zero concurrency", func(c *Config) { c.Library.LoadConcurrency = 0 }},
		{"postgres url", func(c *Config) { c.Database.URL = "postgres://x" }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -1 }},
		{"bad line ending", func(c *Config) { c.Editor.LineEnding = "cr" }},
		{"zero shifts", func(c *Config) { c.Editor.MaxShifts = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
