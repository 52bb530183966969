package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/teamaptiv/volunteer-hub/pkg/core/clock"
)

const (
	configFileName = "aptiv_config.yaml"

	// DatabaseURLEnv overrides databaseURL from the yaml file
	DatabaseURLEnv = "DATABASE_URL"
)

// EventTemplate describes a recurring event that scheduleSeries can expand
type EventTemplate struct {
	Name           string          `yaml:"name" validate:"required"`
	RRule          string          `yaml:"rrule" validate:"required"`
	Start          string          `yaml:"start" validate:"required"`
	End            string          `yaml:"end" validate:"required"`
	Volunteers     int             `yaml:"volunteers" validate:"min=0"`
	Location       string          `yaml:"location,omitempty"`
	Description    string          `yaml:"description,omitempty"`
	DonationTarget decimal.Decimal `yaml:"donationTarget,omitempty"`
}

// Times returns the parsed start and end of the template
func (t EventTemplate) Times() (clock.TimeOfDay, clock.TimeOfDay, error) {
	start, err := clock.ParseMilitary(t.Start)
	if err != nil {
		return clock.TimeOfDay{}, clock.TimeOfDay{}, fmt.Errorf("start: %w", err)
	}
	end, err := clock.ParseMilitary(t.End)
	if err != nil {
		return clock.TimeOfDay{}, clock.TimeOfDay{}, fmt.Errorf("end: %w", err)
	}
	if !start.Before(end) {
		return clock.TimeOfDay{}, clock.TimeOfDay{}, fmt.Errorf("start %s must be before end %s", t.Start, t.End)
	}
	return start, end, nil
}

// Config represents the application configuration
type Config struct {
	DatabaseURL    string          `yaml:"databaseURL" validate:"required"`
	HTTPAddr       string          `yaml:"httpAddr" validate:"required"`
	LogDir         string          `yaml:"logDir,omitempty"`
	OrgName        string          `yaml:"orgName" validate:"required"`
	EventTemplates []EventTemplate `yaml:"eventTemplates,omitempty" validate:"dive"`
}

// Template returns the event template with the given name
func (c *Config) Template(name string) (EventTemplate, bool) {
	for _, t := range c.EventTemplates {
		if t.Name == name {
			return t, true
		}
	}
	return EventTemplate{}, false
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from aptiv_config.yaml
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads <env>_aptiv_config.yaml, falling back to aptiv_config.yaml.
// A .env file in the working directory is read first; DATABASE_URL from the
// environment overrides the file value.
func LoadWithEnv(env string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if url := os.Getenv(DatabaseURLEnv); url != "" {
		cfg.DatabaseURL = url
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct, rrule syntax and template times
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	seen := make(map[string]bool, len(cfg.EventTemplates))
	for i, tmpl := range cfg.EventTemplates {
		if seen[tmpl.Name] {
			return fmt.Errorf("duplicate template name %q in eventTemplates[%d]", tmpl.Name, i)
		}
		seen[tmpl.Name] = true

		if _, err := rrule.StrToRRule(tmpl.RRule); err != nil {
			return fmt.Errorf("invalid rrule in eventTemplates[%d]: %w", i, err)
		}
		if _, _, err := tmpl.Times(); err != nil {
			return fmt.Errorf("invalid times in eventTemplates[%d]: %w", i, err)
		}
		if tmpl.DonationTarget.IsNegative() {
			return fmt.Errorf("negative donationTarget in eventTemplates[%d]", i)
		}
	}

	return nil
}

// findConfigFile searches the current directory then the home directory,
// preferring the env-prefixed file in each
func findConfigFile(env string) (string, error) {
	names := []string{configFileName}
	if env != "" {
		names = []string{env + "_" + configFileName, configFileName}
	}

	dirs := []string{"."}
	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, homeDir)
	}

	for _, dir := range dirs {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", names[0])
}
