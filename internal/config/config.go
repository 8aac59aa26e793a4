// Package config provides YAML-based configuration loading for Quartermaster.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Quartermaster configuration, loaded from
// quartermaster.yaml.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Team     TeamConfig     `yaml:"team"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// DatabaseConfig selects and configures the storage backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or mysql
	Path   string `yaml:"path"`   // sqlite database file
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Name   string `yaml:"name"`
	User   string `yaml:"user"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DefaultsConfig holds team capacity parameters applied when a seeded team
// does not override them.
type DefaultsConfig struct {
	QuarterWorkingDays int     `yaml:"quarter_working_days"`
	BufferPercentage   float64 `yaml:"buffer_percentage"`
	OncallPerSprint    int     `yaml:"oncall_per_sprint"`
	SprintsInQuarter   int     `yaml:"sprints_in_quarter"`
}

// TeamConfig seeds an initial team with its roster.
type TeamConfig struct {
	Name    string         `yaml:"name"`
	Members []MemberConfig `yaml:"members"`
}

// MemberConfig is one seeded roster entry.
type MemberConfig struct {
	Name         string   `yaml:"name"`
	VacationDays int      `yaml:"vacation_days"`
	Skills       []string `yaml:"skills"`
}

// NotifyConfig controls capacity alerts and the scheduled digest.
type NotifyConfig struct {
	UtilizationWarn int           `yaml:"utilization_warn"` // percent, alert at or above
	DigestCron      string        `yaml:"digest_cron"`      // 5-field cron expression, empty disables
	Slack           SlackConfig   `yaml:"slack"`
	Discord         DiscordConfig `yaml:"discord"`
}

// SlackConfig holds Slack delivery settings. An empty token disables Slack.
type SlackConfig struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
}

// DiscordConfig holds Discord delivery settings. An empty token disables Discord.
type DiscordConfig struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "quartermaster.db"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Defaults.QuarterWorkingDays == 0 {
		c.Defaults.QuarterWorkingDays = 65
	}
	if c.Defaults.BufferPercentage == 0 {
		c.Defaults.BufferPercentage = 0.2
	}
	if c.Defaults.OncallPerSprint == 0 {
		c.Defaults.OncallPerSprint = 1
	}
	if c.Defaults.SprintsInQuarter == 0 {
		c.Defaults.SprintsInQuarter = 6
	}
	if c.Notify.UtilizationWarn == 0 {
		c.Notify.UtilizationWarn = 90
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (sqlite, mysql)", c.Database.Driver))
	}
	if c.Database.Driver == "mysql" && c.Database.Name == "" {
		errs = append(errs, "database.name is required for the mysql driver")
	}
	if c.Notify.UtilizationWarn < 1 || c.Notify.UtilizationWarn > 100 {
		errs = append(errs, "notify.utilization_warn must be within [1,100]")
	}
	for i, m := range c.Team.Members {
		if m.Name == "" {
			errs = append(errs, fmt.Sprintf("team.members[%d].name is required", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
