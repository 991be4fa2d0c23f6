// Package config loads the board settings from .laborboard/config.yaml with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
	"github.com/felixgeelhaar/laborboard/pkg/storage"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig marks a config document that fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	DriverYAML   = "yaml"
	DriverMemory = "memory"
	DriverBunt   = "buntdb"
	DriverSQLite = "sqlite"
)

// Environment overrides, read after .env is loaded.
const (
	EnvStorageDriver = "LABORBOARD_STORAGE_DRIVER"
	EnvDashboardAddr = "LABORBOARD_DASHBOARD_ADDR"
	EnvTimezone      = "LABORBOARD_TIMEZONE"
	EnvLogLevel      = "LABORBOARD_LOG_LEVEL"
)

const DefaultRefresh = time.Minute

type Config struct {
	Storage   StorageConfig           `yaml:"storage"`
	Dashboard DashboardConfig         `yaml:"dashboard"`
	Timezone  string                  `yaml:"timezone,omitempty"`
	Log       LogConfig               `yaml:"log"`
	Centers   map[string]CenterConfig `yaml:"centers,omitempty"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path,omitempty"`
}

type DashboardConfig struct {
	Addr    string `yaml:"addr"`
	Refresh string `yaml:"refresh"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// CenterConfig is the per-center display and seeding config.
type CenterConfig struct {
	Label   string  `yaml:"label,omitempty"`
	Icon    string  `yaml:"icon,omitempty"`
	Color   string  `yaml:"color,omitempty"`
	Divisor float64 `yaml:"divisor,omitempty"`
}

func Default() *Config {
	return &Config{
		Storage:   StorageConfig{Driver: DriverYAML},
		Dashboard: DashboardConfig{Addr: ":8080", Refresh: DefaultRefresh.String()},
		Timezone:  "Local",
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads the config of the workspace at root. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(root string) (*Config, error) {
	cfg := Default()

	// A missing .env is the common case.
	_ = godotenv.Load(filepath.Join(root, ".env"))

	path, err := configPath(root)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := Validate(data); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	cfg.ApplyEnv()
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	path, err := configPath(root)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := Validate(data); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func configPath(root string) (string, error) {
	return storage.NewFilesystemRepository(root).ResolvePath(storage.ConfigFile)
}

// ApplyEnv overrides file values with LABORBOARD_* variables.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvStorageDriver)); v != "" {
		c.Storage.Driver = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDashboardAddr)); v != "" {
		c.Dashboard.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTimezone)); v != "" {
		c.Timezone = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
}

// check validates the values that env overrides may have changed.
func (c *Config) check() error {
	switch c.Storage.Driver {
	case DriverYAML, DriverMemory, DriverBunt, DriverSQLite:
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Displays(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Location resolves the configured timezone. Empty and "Local" mean the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// RefreshInterval is the live refresh period, falling back to DefaultRefresh.
func (c *Config) RefreshInterval() time.Duration {
	d, err := time.ParseDuration(c.Dashboard.Refresh)
	if err != nil || d <= 0 {
		return DefaultRefresh
	}
	return d
}

func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// StoragePath is where the configured driver keeps its data.
func (c *Config) StoragePath(root string) string {
	if c.Storage.Path != "" {
		if filepath.IsAbs(c.Storage.Path) {
			return c.Storage.Path
		}
		return filepath.Join(root, c.Storage.Path)
	}
	dir := filepath.Join(root, storage.DataDir)
	switch c.Storage.Driver {
	case DriverBunt:
		return filepath.Join(dir, storage.BuntFile)
	case DriverSQLite:
		return filepath.Join(dir, storage.SQLiteFile)
	default:
		return dir
	}
}

// Displays merges the configured labels, icons and colors over the defaults.
func (c *Config) Displays() (*labor.DisplayTable, error) {
	overrides := make(map[string]labor.Display, len(c.Centers))
	for name, cc := range c.Centers {
		overrides[name] = labor.Display{Label: cc.Label, Icon: cc.Icon, Color: cc.Color}
	}
	return labor.NewDisplayTable(overrides)
}

// Divisors returns the configured seed divisor per center.
func (c *Config) Divisors() map[string]float64 {
	out := make(map[string]float64, len(c.Centers))
	for name, cc := range c.Centers {
		if cc.Divisor > 0 {
			out[strings.ToLower(name)] = cc.Divisor
		}
	}
	return out
}
