package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Drain.IntervalMS != Default().Drain.IntervalMS {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.toml")
	content := `
hooks_path = "hooks.lua"

[drain]
interval_ms = 16

[trigger]
completion_ms = 100

[lang]
timeout_ms = 5000

[lang.servers]
go = ["gopls"]

[tasks]
build = ["go", "build", "./..."]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Drain.Interval() != 16*time.Millisecond {
		t.Errorf("drain interval = %v", cfg.Drain.Interval())
	}
	if cfg.Trigger.Completion() != 100*time.Millisecond {
		t.Errorf("completion delay = %v", cfg.Trigger.Completion())
	}
	// Unset keys keep their defaults.
	if cfg.Trigger.Hover() != 300*time.Millisecond {
		t.Errorf("hover delay = %v, want default", cfg.Trigger.Hover())
	}
	if cfg.Overlay.MaxWidth != 60 {
		t.Errorf("overlay width = %d, want default", cfg.Overlay.MaxWidth)
	}
	if cfg.Lang.Timeout() != 5*time.Second {
		t.Errorf("lang timeout = %v", cfg.Lang.Timeout())
	}
	if got := cfg.Lang.Servers["go"]; len(got) != 1 || got[0] != "gopls" {
		t.Errorf("servers = %v", cfg.Lang.Servers)
	}
	if got := cfg.Tasks["build"]; len(got) != 3 {
		t.Errorf("tasks = %v", cfg.Tasks)
	}
	if cfg.HooksPath != "hooks.lua" {
		t.Errorf("hooks_path = %q", cfg.HooksPath)
	}
}

func TestLoadMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.toml")
	if err := os.WriteFile(path, []byte("drain = {{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed TOML should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"default", func(*Config) {}, true},
		{"zero drain interval", func(c *Config) { c.Drain.IntervalMS = 0 }, false},
		{"negative delay", func(c *Config) { c.Trigger.HoverMS = -1 }, false},
		{"zero overlay width", func(c *Config) { c.Overlay.MaxWidth = 0 }, false},
		{"zero timeout", func(c *Config) { c.Lang.TimeoutMS = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err == nil) != tt.wantOK {
				t.Errorf("Validate() = %v, wantOK %v", err, tt.wantOK)
			}
		})
	}
}

func TestLoadInvalidValuesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.toml")
	if err := os.WriteFile(path, []byte("[drain]\ninterval_ms = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("invalid values should fail validation")
	}
}
