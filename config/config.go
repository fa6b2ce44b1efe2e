// Package config loads and saves the snapkey TOML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"snapkey/hotkey"
)

const (
	defaultCombo    = "ctrl+alt+s"
	defaultInterval = 500 * time.Millisecond
)

// Duration is a time.Duration written as a Go duration string ("500ms").
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// HotkeyConfig selects the trigger combo and how it is captured.
type HotkeyConfig struct {
	Combo           string   `toml:"combo"`
	Suppress        bool     `toml:"suppress"`
	Backend         string   `toml:"backend"` // "auto", "grab" or "evdev"
	Device          string   `toml:"device"`  // evdev only; empty scans all keyboards
	TriggerInterval Duration `toml:"trigger_interval"`
}

// CaptureConfig describes the action run on each trigger.
type CaptureConfig struct {
	CopyKeys       string   `toml:"copy_keys"`
	CopyDelay      Duration `toml:"copy_delay"`
	Command        string   `toml:"command"`
	CommandTimeout Duration `toml:"command_timeout"`
}

type SoundConfig struct {
	Enabled bool `toml:"enabled"`
}

type Config struct {
	Hotkey  HotkeyConfig  `toml:"hotkey"`
	Capture CaptureConfig `toml:"capture"`
	Sound   SoundConfig   `toml:"sound"`
}

func Default() *Config {
	return &Config{
		Hotkey: HotkeyConfig{
			Combo:           defaultCombo,
			Suppress:        true,
			Backend:         hotkey.BackendAuto,
			TriggerInterval: Duration{defaultInterval},
		},
		Capture: CaptureConfig{
			CopyDelay:      Duration{150 * time.Millisecond},
			CommandTimeout: Duration{30 * time.Second},
		},
		Sound: SoundConfig{
			Enabled: true,
		},
	}
}

// DefaultPath returns the per-user config file path.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "snapkey", "config.toml")
}

// Validate checks combos, backend name and durations.
func (c *Config) Validate() error {
	if _, err := hotkey.ParseCombo(c.Hotkey.Combo); err != nil {
		return fmt.Errorf("hotkey.combo: %w", err)
	}
	switch c.Hotkey.Backend {
	case hotkey.BackendAuto, hotkey.BackendGrab, hotkey.BackendEvdev:
	default:
		return fmt.Errorf("hotkey.backend: unknown backend %q (valid: auto, grab, evdev)", c.Hotkey.Backend)
	}
	if c.Hotkey.TriggerInterval.Duration <= 0 {
		return errors.New("hotkey.trigger_interval must be positive")
	}
	if c.Capture.CopyKeys != "" {
		if _, err := hotkey.ParseCombo(c.Capture.CopyKeys); err != nil {
			return fmt.Errorf("capture.copy_keys: %w", err)
		}
	}
	if c.Capture.CopyDelay.Duration < 0 {
		return errors.New("capture.copy_delay must not be negative")
	}
	if c.Capture.CommandTimeout.Duration <= 0 {
		return errors.New("capture.command_timeout must be positive")
	}
	return nil
}

// Save writes the config as TOML to path, creating parent directories.
// The file is written to a temporary name and renamed into place.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".snapkey-config-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// Load reads the TOML config at path. A missing file yields the
// defaults. Keys the decoder does not know are reported as an error so
// typos do not pass silently.
func Load(path string) (*Config, error) {
	cfg := Default()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}
