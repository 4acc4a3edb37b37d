package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds every tunable the editor reads at startup. All durations
// are TOML integers in milliseconds.
type Config struct {
	// Drain controls the UI drain loop.
	Drain DrainConfig `toml:"drain"`

	// Trigger controls debounce delays.
	Trigger TriggerConfig `toml:"trigger"`

	// Overlay controls pop-up sizing.
	Overlay OverlayConfig `toml:"overlay"`

	// Lang controls language intelligence.
	Lang LangConfig `toml:"lang"`

	// Tasks maps task names to shell commands.
	Tasks map[string][]string `toml:"tasks"`

	// HooksPath is the Lua hook script, empty to disable.
	HooksPath string `toml:"hooks_path"`
}

// DrainConfig tunes the drain loop.
type DrainConfig struct {
	// IntervalMS is the tick cadence in milliseconds.
	IntervalMS int `toml:"interval_ms"`
}

// Interval returns the tick cadence.
func (d DrainConfig) Interval() time.Duration {
	return time.Duration(d.IntervalMS) * time.Millisecond
}

// TriggerConfig tunes debounce quiet periods.
type TriggerConfig struct {
	// CompletionMS delays completion requests after a keystroke.
	CompletionMS int `toml:"completion_ms"`

	// HoverMS delays hover requests after the caret settles.
	HoverMS int `toml:"hover_ms"`

	// VCSMS delays git refreshes after repository changes.
	VCSMS int `toml:"vcs_ms"`
}

// Completion returns the completion debounce.
func (t TriggerConfig) Completion() time.Duration {
	return time.Duration(t.CompletionMS) * time.Millisecond
}

// Hover returns the hover debounce.
func (t TriggerConfig) Hover() time.Duration {
	return time.Duration(t.HoverMS) * time.Millisecond
}

// VCS returns the git refresh debounce.
func (t TriggerConfig) VCS() time.Duration {
	return time.Duration(t.VCSMS) * time.Millisecond
}

// OverlayConfig tunes pop-up boxes.
type OverlayConfig struct {
	// MaxWidth caps overlay width in cells.
	MaxWidth int `toml:"max_width"`

	// MaxHeight caps overlay height in rows.
	MaxHeight int `toml:"max_height"`
}

// LangConfig tunes language intelligence.
type LangConfig struct {
	// TimeoutMS bounds each provider request.
	TimeoutMS int `toml:"timeout_ms"`

	// Servers maps language IDs to server commands.
	Servers map[string][]string `toml:"servers"`
}

// Timeout returns the per-request deadline.
func (l LangConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutMS) * time.Millisecond
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Drain:   DrainConfig{IntervalMS: 25},
		Trigger: TriggerConfig{CompletionMS: 150, HoverMS: 300, VCSMS: 200},
		Overlay: OverlayConfig{MaxWidth: 60, MaxHeight: 12},
		Lang:    LangConfig{TimeoutMS: 10000},
	}
}

// Load reads path and overlays it on the defaults. A missing file is not
// an error; the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values that would stall or thrash the UI.
func (c Config) Validate() error {
	if c.Drain.IntervalMS < 1 {
		return fmt.Errorf("drain.interval_ms must be at least 1, got %d", c.Drain.IntervalMS)
	}
	if c.Trigger.CompletionMS < 0 || c.Trigger.HoverMS < 0 || c.Trigger.VCSMS < 0 {
		return fmt.Errorf("trigger delays must not be negative")
	}
	if c.Overlay.MaxWidth < 1 || c.Overlay.MaxHeight < 1 {
		return fmt.Errorf("overlay dimensions must be at least 1")
	}
	if c.Lang.TimeoutMS < 1 {
		return fmt.Errorf("lang.timeout_ms must be at least 1, got %d", c.Lang.TimeoutMS)
	}
	return nil
}
