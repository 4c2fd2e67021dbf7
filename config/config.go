/*
Package config loads the server configuration from YAML.

PURPOSE:
  Everything that differs between deployments: listen port, database file,
  the company name printed on reports, the payroll calendar and the
  dashboard overtime threshold. Values missing from the file keep their
  defaults, and command-line flags override both.

YAML SCHEMA:
  server:
    port: 8080
  database:
    path: timeclock.db
  company:
    name: Acme Diner
    timezone: America/Los_Angeles
  payroll:
    anchor: 2025-03-26        # first day of a known pay period
    period_days: 14
    weekly_overtime_hours: "40"

USAGE:
  cfg, err := config.Load("config.yaml")
  cal := cfg.Calendar()
  loc, _ := cfg.Location()
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/timeclock/calendar"
	"github.com/warp/timeclock/timeclock"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Company  CompanyConfig  `yaml:"company"`
	Payroll  PayrollConfig  `yaml:"payroll"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type CompanyConfig struct {
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

type PayrollConfig struct {
	Anchor              calendar.Date   `yaml:"anchor"`
	PeriodDays          int             `yaml:"period_days"`
	WeeklyOvertimeHours decimal.Decimal `yaml:"weekly_overtime_hours"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Path: "timeclock.db"},
		Company:  CompanyConfig{Name: "Company", Timezone: "America/Los_Angeles"},
		Payroll: PayrollConfig{
			Anchor:              calendar.DefaultAnchor,
			PeriodDays:          calendar.DefaultLength,
			WeeklyOvertimeHours: decimal.NewFromInt(40),
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the values can drive the engine.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.Payroll.Anchor.IsZero() {
		errs = append(errs, errors.New("payroll.anchor is required"))
	}
	if c.Payroll.PeriodDays <= 0 {
		errs = append(errs, fmt.Errorf("payroll.period_days must be positive, got %d", c.Payroll.PeriodDays))
	}
	if c.Payroll.WeeklyOvertimeHours.IsNegative() {
		errs = append(errs, errors.New("payroll.weekly_overtime_hours must not be negative"))
	}
	return errors.Join(errs...)
}

// Location resolves the company timezone. Empty means UTC.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Company.Timezone)
	if err != nil {
		return nil, fmt.Errorf("company.timezone %q: %w", c.Company.Timezone, err)
	}
	return loc, nil
}

// Calendar returns the payroll calendar.
func (c Config) Calendar() calendar.Calendar {
	return calendar.New(c.Payroll.Anchor, c.Payroll.PeriodDays)
}

// WeeklyThreshold returns the dashboard overtime threshold in minutes.
func (c Config) WeeklyThreshold() timeclock.Minutes {
	return timeclock.MinutesFromHours(c.Payroll.WeeklyOvertimeHours)
}
