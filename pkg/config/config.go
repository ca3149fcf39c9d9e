package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	dashboard "github.com/goliatone/go-rinsight/components/dashboard"
)

// Config is the rinsight CLI configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	BasePath string `yaml:"base_path"`
	// Engine is "router" (go-router over fiber), "fiber" or "http".
	Engine string `yaml:"engine"`
}

// BackendConfig points at the scoring backend. An empty BaseURL serves the
// built-in demo data.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	RPM     int           `yaml:"rpm"`
	Burst   int           `yaml:"burst"`
}

// DashboardConfig holds view defaults.
type DashboardConfig struct {
	DefaultCategory string        `yaml:"default_category"`
	DefaultTheme    string        `yaml:"default_theme"`
	StartDate       string        `yaml:"start_date"`
	EndDate         string        `yaml:"end_date"`
	ChartCacheTTL   time.Duration `yaml:"chart_cache_ttl"`
	ChartAssetsHost string        `yaml:"chart_assets_host"`
	// SessionTTL closes view sessions idle for longer; zero keeps them.
	SessionTTL      time.Duration `yaml:"session_ttl"`
	SessionSweep    time.Duration `yaml:"session_sweep"`
	MaxSessions     int           `yaml:"max_sessions"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:     ":8080",
			BasePath: "/rinsight",
			Engine:   "router",
		},
		Backend: BackendConfig{
			Timeout: 10 * time.Second,
			RPM:     600,
			Burst:   10,
		},
		Dashboard: DashboardConfig{
			DefaultCategory: string(dashboard.CategoryAcademic),
			DefaultTheme:    string(dashboard.ThemeLight),
			StartDate:       dashboard.DefaultDateRange.Start,
			EndDate:         dashboard.DefaultDateRange.End,
			ChartCacheTTL:   5 * time.Minute,
			SessionTTL:      30 * time.Minute,
			SessionSweep:    time.Minute,
			MaxSessions:     1000,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	switch c.Server.Engine {
	case "router", "fiber", "http":
	default:
		errs = append(errs, fmt.Errorf("server.engine must be router, fiber or http, got %q", c.Server.Engine))
	}
	if c.Backend.BaseURL != "" {
		if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("backend.base_url %q is not an absolute url", c.Backend.BaseURL))
		}
	}
	if c.Backend.RPM < 0 || c.Backend.Burst < 0 {
		errs = append(errs, errors.New("backend.rpm and backend.burst must not be negative"))
	}
	if c.Dashboard.SessionTTL < 0 || c.Dashboard.SessionSweep < 0 || c.Dashboard.MaxSessions < 0 {
		errs = append(errs, errors.New("dashboard session limits must not be negative"))
	}
	if c.Dashboard.SessionTTL > 0 && c.Dashboard.SessionSweep == 0 {
		errs = append(errs, errors.New("dashboard.session_sweep is required when session_ttl is set"))
	}
	if _, ok := dashboard.ParseCategory(c.Dashboard.DefaultCategory); !ok {
		errs = append(errs, fmt.Errorf("dashboard.default_category %q is unknown", c.Dashboard.DefaultCategory))
	}
	dates := c.DateRange()
	if err := dashboard.ValidateDateRange(nil, dates); err != nil {
		errs = append(errs, fmt.Errorf("dashboard dates: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// DateRange returns the configured default date range.
func (c Config) DateRange() dashboard.DateRange {
	return dashboard.DateRange{Start: c.Dashboard.StartDate, End: c.Dashboard.EndDate}
}
