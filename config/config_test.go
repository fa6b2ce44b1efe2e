package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()

	assert.Equal(t, defaultCombo, cfg.Hotkey.Combo)
	assert.True(t, cfg.Hotkey.Suppress)
	assert.Equal(t, "auto", cfg.Hotkey.Backend)
	assert.Equal(t, 500*time.Millisecond, cfg.Hotkey.TriggerInterval.Duration)
	assert.Empty(t, cfg.Capture.CopyKeys)
	assert.Equal(t, 30*time.Second, cfg.Capture.CommandTimeout.Duration)
	assert.True(t, cfg.Sound.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, defaultCombo, cfg.Hotkey.Combo)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[hotkey]
combo = "ctrl+shift+f5"
suppress = false
backend = "evdev"
device = "/dev/input/event5"
trigger_interval = "750ms"

[capture]
copy_keys = "ctrl+c"
copy_delay = "200ms"
command = "pngquant -"
command_timeout = "10s"

[sound]
enabled = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ctrl+shift+f5", cfg.Hotkey.Combo)
	assert.False(t, cfg.Hotkey.Suppress)
	assert.Equal(t, "evdev", cfg.Hotkey.Backend)
	assert.Equal(t, "/dev/input/event5", cfg.Hotkey.Device)
	assert.Equal(t, 750*time.Millisecond, cfg.Hotkey.TriggerInterval.Duration)
	assert.Equal(t, "ctrl+c", cfg.Capture.CopyKeys)
	assert.Equal(t, 200*time.Millisecond, cfg.Capture.CopyDelay.Duration)
	assert.Equal(t, "pngquant -", cfg.Capture.Command)
	assert.Equal(t, 10*time.Second, cfg.Capture.CommandTimeout.Duration)
	assert.False(t, cfg.Sound.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[capture]\ncopy_keys = \"ctrl+c\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, defaultCombo, cfg.Hotkey.Combo)
	assert.Equal(t, 500*time.Millisecond, cfg.Hotkey.TriggerInterval.Duration)
	assert.Equal(t, "ctrl+c", cfg.Capture.CopyKeys)
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[hotkey]\ncombi = \"ctrl+a\"\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hotkey.combi")
}

func TestLoadBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[hotkey]\ntrigger_interval = \"soon\"\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Hotkey.Combo = "super+shift+4"
	cfg.Capture.CopyDelay = Duration{time.Second}

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.toml")
	require.NoError(t, Save(path, Default()))
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad combo", func(c *Config) { c.Hotkey.Combo = "hyper+x" }},
		{"empty combo", func(c *Config) { c.Hotkey.Combo = "" }},
		{"bad backend", func(c *Config) { c.Hotkey.Backend = "x11" }},
		{"zero interval", func(c *Config) { c.Hotkey.TriggerInterval = Duration{} }},
		{"bad copy keys", func(c *Config) { c.Capture.CopyKeys = "ctrl+nope" }},
		{"negative delay", func(c *Config) { c.Capture.CopyDelay = Duration{-time.Second} }},
		{"zero timeout", func(c *Config) { c.Capture.CommandTimeout = Duration{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
