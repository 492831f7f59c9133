package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full application configuration, loaded from the
// environment with an optional .env file for local development.
type Config struct {
	AppEnv     string `env:"APP_ENV" envDefault:"local"`
	HealthPort int    `env:"HEALTH_PORT" envDefault:"8080"`

	Database   DatabaseConfig
	Search     SearchConfig
	Validation ValidationConfig
	Ingest     IngestConfig
	Generation GenerationConfig
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}
