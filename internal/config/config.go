//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-careetl.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/pgEdge/pgedge-careetl/internal/logging"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for pgedge-careetl.
type Config struct {
	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// LogFormat is console or json.
	LogFormat string `mapstructure:"log_format"`

	// OLTP is the transactional source database.
	OLTP DatabaseConfig `mapstructure:"oltp"`

	// OLAP is the analytical target database.
	OLAP DatabaseConfig `mapstructure:"olap"`

	// Damage bounds the synthetic damage reports.
	Damage DamageConfig `mapstructure:"damage"`

	// Init holds configuration for the init subcommand.
	Init InitConfig `mapstructure:"init"`

	// Serve holds configuration for the serve subcommand.
	Serve ServeConfig `mapstructure:"serve"`
}

// DatabaseConfig identifies one database.
type DatabaseConfig struct {
	// Driver is one of postgres, mysql or sqlite.
	Driver string `mapstructure:"driver"`

	// Connection is the driver specific connection string.
	Connection string `mapstructure:"connection"`
}

// DamageConfig bounds generated damage reports.
type DamageConfig struct {
	MinCost     int    `mapstructure:"min_cost"`
	MaxCost     int    `mapstructure:"max_cost"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
	Description string `mapstructure:"description"`

	// Seed makes damage reports reproducible. Zero draws a random seed.
	Seed uint64 `mapstructure:"seed"`
}

// InitConfig holds configuration for database initialization.
type InitConfig struct {
	// DropExisting drops existing schema before initialization.
	DropExisting bool `mapstructure:"drop_existing"`

	// Seed generates transactional data when the OLTP store is empty.
	Seed bool `mapstructure:"seed"`

	// Scale multiplies the generated row counts.
	Scale int `mapstructure:"scale"`
}

// ServeConfig holds configuration for the HTTP trigger.
type ServeConfig struct {
	// Listen is the HTTP listen address.
	Listen string `mapstructure:"listen"`

	// Schedule is a run interval such as "1h" (empty = no scheduled runs).
	Schedule string `mapstructure:"schedule"`

	// HistoryLimit is the number of runs returned by the history endpoint.
	HistoryLimit int `mapstructure:"history_limit"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: logging.FormatConsole,
		OLTP:     DatabaseConfig{Driver: DriverPostgres},
		OLAP:     DatabaseConfig{Driver: DriverPostgres},
		Damage: DamageConfig{
			MinCost:     50,
			MaxCost:     500,
			MaxAgeDays:  90,
			Description: "Generated damage report for maintenance",
		},
		Init: InitConfig{
			DropExisting: false,
			Seed:         true,
			Scale:        1,
		},
		Serve: ServeConfig{
			Listen:       ":8080",
			HistoryLimit: 20,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-careetl.yaml
// 3. ~/.config/pgedge-careetl/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("pgedge-careetl")
	v.SetConfigType("yaml")

	// Add config paths
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-careetl"))
	}

	// Use specific config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal config file values
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

func (d DatabaseConfig) validate(name string) error {
	switch d.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("%s driver must be one of postgres, mysql, sqlite (got %q)", name, d.Driver)
	}
	if d.Connection == "" {
		return fmt.Errorf("%s connection string is required", name)
	}
	return nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return err
	}
	if err := c.OLTP.validate("oltp"); err != nil {
		return err
	}
	if err := c.OLAP.validate("olap"); err != nil {
		return err
	}
	if c.Damage.MinCost < 0 {
		return fmt.Errorf("damage min_cost must be non-negative")
	}
	if c.Damage.MaxCost <= c.Damage.MinCost {
		return fmt.Errorf("damage max_cost must be > min_cost")
	}
	if c.Damage.MaxAgeDays < 2 {
		return fmt.Errorf("damage max_age_days must be at least 2")
	}
	return nil
}

// ValidateInit checks configuration required for init command.
func (c *Config) ValidateInit() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Init.Scale < 1 {
		return fmt.Errorf("scale must be at least 1")
	}
	return nil
}

// ValidateServe checks configuration required for serve command.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Serve.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Serve.HistoryLimit < 1 {
		return fmt.Errorf("history_limit must be at least 1")
	}
	if _, err := c.ScheduleInterval(); err != nil {
		return err
	}
	return nil
}

// ScheduleInterval parses Serve.Schedule. Zero means no scheduled runs.
func (c *Config) ScheduleInterval() (time.Duration, error) {
	if c.Serve.Schedule == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Serve.Schedule)
	if err != nil {
		return 0, fmt.Errorf("invalid schedule %q: %w", c.Serve.Schedule, err)
	}
	if d < time.Minute {
		return 0, fmt.Errorf("schedule must be at least 1m")
	}
	return d, nil
}
