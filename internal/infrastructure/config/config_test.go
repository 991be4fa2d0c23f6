package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, root, body string) {
	t.Helper()
	dir := filepath.Join(root, ".laborboard")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoadMissingUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Storage.Driver != DriverYAML || cfg.Dashboard.Addr != ":8080" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.RefreshInterval() != time.Minute {
		t.Errorf("expected 1m refresh, got %s", cfg.RefreshInterval())
	}
	if loc, _ := cfg.Location(); loc != time.Local {
		t.Errorf("expected local timezone, got %v", loc)
	}
}

func TestLoadFile(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `storage:
  driver: sqlite
dashboard:
  addr: ":9090"
  refresh: 30s
timezone: UTC
log:
  level: debug
centers:
  dining:
    label: Main Floor
    divisor: 200
`)

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Driver != DriverSQLite || cfg.Dashboard.Addr != ":9090" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.RefreshInterval() != 30*time.Second {
		t.Errorf("expected 30s, got %s", cfg.RefreshInterval())
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("expected debug level, got %s", cfg.LogLevel())
	}
	if got := cfg.Divisors()["dining"]; got != 200 {
		t.Errorf("expected dining divisor 200, got %f", got)
	}
	table, err := cfg.Displays()
	if err != nil {
		t.Fatal(err)
	}
	if d := table.For("dining"); d.Label != "Main Floor" || d.Icon != "utensils" {
		t.Errorf("unexpected display: %+v", d)
	}
	if want := filepath.Join(root, ".laborboard", "laborboard.sqlite"); cfg.StoragePath(root) != want {
		t.Errorf("want %s, got %s", want, cfg.StoragePath(root))
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "::bad"},
		{"unknown driver", "storage:\n  driver: mongo\n"},
		{"unknown key", "colour: blue\n"},
		{"unknown center", "centers:\n  rooftop:\n    label: Roof\n"},
		{"zero divisor", "centers:\n  patio:\n    divisor: 0\n"},
		{"bad refresh", "dashboard:\n  refresh: often\n"},
		{"bad color", "centers:\n  lounge:\n    color: purple\n"},
		{"bad timezone", "timezone: Mars/Olympus\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeConfig(t, root, tt.body)
			if _, err := Load(root); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "storage:\n  driver: yaml\n")

	t.Setenv(EnvStorageDriver, "buntdb")
	t.Setenv(EnvDashboardAddr, "127.0.0.1:7000")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Driver != DriverBunt || cfg.Dashboard.Addr != "127.0.0.1:7000" || cfg.LogLevel() != slog.LevelWarn {
		t.Errorf("overrides not applied: %+v", cfg)
	}

	t.Setenv(EnvStorageDriver, "floppy")
	if _, err := Load(root); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected invalid driver override to fail, got %v", err)
	}
}

func TestDotEnvFile(t *testing.T) {
	root := t.TempDir()
	t.Setenv(EnvTimezone, "")
	if err := os.Unsetenv(EnvTimezone); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte(EnvTimezone+"=UTC\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	loc, _ := cfg.Location()
	if loc != time.UTC {
		t.Errorf("expected UTC from .env, got %v", loc)
	}
}

func TestSaveAndLoad(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.Storage.Driver = DriverMemory
	cfg.Centers = map[string]CenterConfig{"lounge": {Color: "#112233", Divisor: 80}}

	if err := Save(root, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Storage.Driver != DriverMemory || loaded.Centers["lounge"].Divisor != 80 {
		t.Errorf("unexpected round trip: %+v", loaded)
	}
	if err := Save(root, nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestStoragePath(t *testing.T) {
	root := "/srv/board"
	tests := []struct {
		driver, path, want string
	}{
		{DriverYAML, "", "/srv/board/.laborboard"},
		{DriverBunt, "", "/srv/board/.laborboard/laborboard.db"},
		{DriverSQLite, "data/board.sqlite", "/srv/board/data/board.sqlite"},
		{DriverSQLite, "/var/lib/board.sqlite", "/var/lib/board.sqlite"},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.Storage = StorageConfig{Driver: tt.driver, Path: tt.path}
		if got := cfg.StoragePath(root); got != tt.want {
			t.Errorf("%s %q: want %s, got %s", tt.driver, tt.path, tt.want, got)
		}
	}
}
