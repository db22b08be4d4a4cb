// Package app assembles the transport request bot from the core runtime and
// the domain packages.
package app

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/agrohub/transportbot/bot/dispatch"
	"github.com/agrohub/transportbot/bot/settlements"
	coreconfig "github.com/agrohub/transportbot/core/config"
	coredatabase "github.com/agrohub/transportbot/core/database"
)

// DepartmentConfig binds one request origin to its forum thread. Order in
// the file is the keyboard order.
type DepartmentConfig struct {
	Name     string `yaml:"name"`
	ThreadID int    `yaml:"thread_id"`
}

// QuickConfig tunes the shortened request flow.
type QuickConfig struct {
	DefaultCompany string `yaml:"default_company" envconfig:"QUICK_DEFAULT_COMPANY"`
}

// SessionConfig controls in-memory session retention.
type SessionConfig struct {
	IdleTTLMinutes         int `yaml:"idle_ttl_minutes" envconfig:"SESSION_IDLE_TTL_MINUTES"`
	JanitorIntervalMinutes int `yaml:"janitor_interval_minutes"`
}

// Config is the full bot configuration: the shared core sections inline at
// the top level plus the domain sections.
type Config struct {
	Core coreconfig.Config `yaml:",inline"`

	Database    coredatabase.Config `yaml:"database"`
	Dispatch    dispatch.Config     `yaml:"dispatch"`
	Departments []DepartmentConfig  `yaml:"departments"`
	Quick       QuickConfig         `yaml:"quick"`
	Search      settlements.Config  `yaml:"search"`
	Session     SessionConfig       `yaml:"session"`

	// BotUsername builds the /request deep link. Falls back to the bot's own
	// identity when empty.
	BotUsername string `yaml:"bot_username" envconfig:"BOT_USERNAME"`
}

// CoreConfig exposes the embedded core configuration for the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// Load reads the YAML file, applies environment overrides and validates.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalize(cfg *Config) error {
	if len(cfg.Departments) == 0 {
		cfg.Departments = []DepartmentConfig{
			{Name: "Тваринництво", ThreadID: 2},
			{Name: "Виробництво", ThreadID: 4},
		}
	}
	seen := make(map[string]struct{}, len(cfg.Departments))
	for _, d := range cfg.Departments {
		if d.Name == "" {
			return fmt.Errorf("departments: empty name")
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("departments: duplicate name %q", d.Name)
		}
		seen[d.Name] = struct{}{}
	}

	if cfg.Quick.DefaultCompany == "" {
		cfg.Quick.DefaultCompany = "Вінницький ХАБ"
	}
	if cfg.Session.IdleTTLMinutes < 0 {
		return fmt.Errorf("session.idle_ttl_minutes must be >= 0")
	}
	return nil
}
