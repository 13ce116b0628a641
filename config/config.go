// Package config holds the findash configuration.
//
// Values come from the defaults, then an optional YAML file, then FINDASH_*
// environment variables. Command-line flags are applied last by the commands.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/etnz/findash"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding the configuration file.
const (
	EnvConfigFile    = "FINDASH_CONFIG"
	EnvDataFile      = "FINDASH_DATA_FILE"
	EnvDatabase      = "FINDASH_DATABASE"
	EnvDays          = "FINDASH_DAYS"
	EnvSeed          = "FINDASH_SEED"
	EnvCategories    = "FINDASH_CATEGORIES"
	EnvRollingWindow = "FINDASH_ROLLING_WINDOW"
	EnvTableRows     = "FINDASH_TABLE_ROWS"
	EnvTheme         = "FINDASH_THEME"
	EnvCurrency      = "FINDASH_CURRENCY"
	EnvAddr          = "FINDASH_ADDR"
	EnvOrigins       = "FINDASH_ALLOWED_ORIGINS"
	EnvWatch         = "FINDASH_WATCH"
	EnvLogLevel      = "FINDASH_LOG_LEVEL"
)

// DefaultFile is the configuration file read when none is given.
const DefaultFile = "findash.yaml"

// Config holds all findash configuration.
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Generate  GenerateConfig  `yaml:"generate"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// DataConfig locates the dataset.
type DataConfig struct {
	File     string `yaml:"file"`     // CSV file
	Database string `yaml:"database"` // optional SQLite mirror
}

// GenerateConfig configures synthetic data generation.
type GenerateConfig struct {
	Days       int      `yaml:"days"`
	Seed       uint64   `yaml:"seed"` // 0 means time based
	Categories []string `yaml:"categories"`
}

// DashboardConfig configures the computed views.
type DashboardConfig struct {
	RollingWindow int    `yaml:"rolling_window"`
	TableRows     int    `yaml:"table_rows"`
	Theme         string `yaml:"theme"`
	Currency      string `yaml:"currency"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Watch          bool     `yaml:"watch"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the default configuration.
func Default() *Config {
	opts := findash.DefaultOptions()
	return &Config{
		Data: DataConfig{File: "financial_database.csv"},
		Generate: GenerateConfig{
			Days:       findash.DefaultDays,
			Categories: append([]string(nil), findash.DefaultCategories...),
		},
		Dashboard: DashboardConfig{
			RollingWindow: opts.RollingWindow,
			TableRows:     opts.TableRows,
			Theme:         string(opts.Theme),
			Currency:      findash.DefaultCurrency,
		},
		Server: ServerConfig{
			Addr:           ":8050",
			AllowedOrigins: []string{"*"},
			Watch:          true,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the configuration file at path, then applies the environment.
//
// A missing file is not an error when path is the DefaultFile.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvDataFile); v != "" {
		c.Data.File = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Data.Database = v
	}
	if v := os.Getenv(EnvCategories); v != "" {
		c.Generate.Categories = SplitList(v)
	}
	if v := os.Getenv(EnvTheme); v != "" {
		c.Dashboard.Theme = v
	}
	if v := os.Getenv(EnvCurrency); v != "" {
		c.Dashboard.Currency = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvOrigins); v != "" {
		c.Server.AllowedOrigins = SplitList(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}

	ints := []struct {
		env string
		dst *int
	}{
		{EnvDays, &c.Generate.Days},
		{EnvRollingWindow, &c.Dashboard.RollingWindow},
		{EnvTableRows, &c.Dashboard.TableRows},
	}
	for _, i := range ints {
		v := os.Getenv(i.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", i.env, v, err)
		}
		*i.dst = n
	}
	if v := os.Getenv(EnvSeed); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", EnvSeed, v, err)
		}
		c.Generate.Seed = n
	}
	if v := os.Getenv(EnvWatch); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", EnvWatch, v, err)
		}
		c.Server.Watch = b
	}
	return nil
}

// SplitList splits a comma separated list, trimming items and dropping blank ones.
func SplitList(v string) []string {
	var list []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			list = append(list, s)
		}
	}
	return list
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Data.File == "" {
		return fmt.Errorf("data file not configured")
	}
	if c.Generate.Days <= 0 {
		return fmt.Errorf("invalid number of days %d: must be positive", c.Generate.Days)
	}
	if err := findash.ValidateCategories(c.Generate.Categories); err != nil {
		return err
	}
	if c.Dashboard.RollingWindow <= 0 {
		return fmt.Errorf("invalid rolling window %d: must be positive", c.Dashboard.RollingWindow)
	}
	if c.Dashboard.TableRows <= 0 {
		return fmt.Errorf("invalid table rows %d: must be positive", c.Dashboard.TableRows)
	}
	if _, err := findash.ParseTheme(c.Dashboard.Theme); err != nil {
		return err
	}
	if !findash.KnownCurrency(c.Dashboard.Currency) {
		return fmt.Errorf("unknown currency %q", c.Dashboard.Currency)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// Options returns the dashboard options. The configuration must be valid.
func (c *Config) Options() findash.Options {
	theme, _ := findash.ParseTheme(c.Dashboard.Theme)
	return findash.Options{
		RollingWindow: c.Dashboard.RollingWindow,
		TableRows:     c.Dashboard.TableRows,
		Theme:         theme,
	}
}

// Generator returns a generator for the configured dataset.
func (c *Config) Generator() findash.Generator {
	return findash.Generator{
		Days:       c.Generate.Days,
		Categories: c.Generate.Categories,
		Currency:   c.Dashboard.Currency,
		Seed:       c.Generate.Seed,
	}
}

// CSVFile returns the configured CSV data file.
func (c *Config) CSVFile() findash.CSVFile {
	return findash.CSVFile{Path: c.Data.File, Currency: c.Dashboard.Currency}
}

// LogLevel parses the log level.
func (c *Config) LogLevel() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return lvl, nil
}
