// Package config loads service configuration: a YAML file for draft defaults
// plus DB_*/NATS_* environment variables (with sensible local defaults) for
// connection settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/neerajsa/fantasy-football-assistant/internal/models"
)

// Database holds Postgres connection settings.
type Database struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewDatabaseFromEnv reads DB_* environment variables.
func NewDatabaseFromEnv() Database {
	return Database{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		Database: getEnv("DB_NAME", "fantasy"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

// DSN returns the Postgres connection URL.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// NATS holds message bus settings. Enabled false means outbox events are
// logged instead of published.
type NATS struct {
	URL     string
	Enabled bool
}

// NewNATSFromEnv reads NATS_* environment variables.
func NewNATSFromEnv() NATS {
	return NATS{
		URL:     getEnv("NATS_URL", "nats://localhost:4222"),
		Enabled: getEnv("NATS_ENABLED", "false") == "true",
	}
}

// Draft holds tunable draft defaults loaded from YAML.
type Draft struct {
	DefaultNumTeams    int                `yaml:"default_num_teams"`
	DefaultDraftType   models.DraftType   `yaml:"default_draft_type"`
	DefaultScoringType models.ScoringType `yaml:"default_scoring_type"`
	Roster             models.RosterRules `yaml:"roster"`

	OutboxPollSeconds int `yaml:"outbox_poll_seconds"`
	OutboxBatchSize   int `yaml:"outbox_batch_size"`
}

// PollInterval converts the configured outbox poll cadence to a duration.
func (d Draft) PollInterval() time.Duration {
	return time.Duration(d.OutboxPollSeconds) * time.Second
}

// Config is the full service configuration.
type Config struct {
	Draft Draft `yaml:"draft"`

	DB   Database `yaml:"-"`
	NATS NATS     `yaml:"-"`
}

// Load reads the YAML file at path (optional: empty path skips the file) and
// merges environment-derived connection settings. Missing draft defaults fall
// back to a standard 12-team snake PPR setup.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Draft: Draft{
			DefaultNumTeams:    12,
			DefaultDraftType:   models.DraftTypeSnake,
			DefaultScoringType: models.ScoringPPR,
			Roster:             models.DefaultRosterRules(),
			OutboxPollSeconds:  1,
			OutboxBatchSize:    50,
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.DB = NewDatabaseFromEnv()
	cfg.NATS = NewNATSFromEnv()
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
