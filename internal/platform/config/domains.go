package config

import "time"

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	PostgresDSN       string        `env:"POSTGRES_DSN,required"`
	MaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	MinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"2"`
	MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	HealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

// SearchConfig holds web-search provider settings. An empty API key
// disables the provider; the pipeline then runs on connector evidence
// alone.
type SearchConfig struct {
	OpenAIAPIKey string        `env:"OPENAI_API_KEY"`
	Model        string        `env:"SEARCH_MODEL" envDefault:"gpt-4o-mini"`
	Timeout      time.Duration `env:"SEARCH_TIMEOUT" envDefault:"20s"`
	RPS          float64       `env:"SEARCH_RPS" envDefault:"1"`
	MaxResults   int           `env:"SEARCH_MAX_RESULTS" envDefault:"10"`
}

// ValidationConfig holds URL liveness validation settings.
type ValidationConfig struct {
	Enabled bool          `env:"VALIDATE_URLS" envDefault:"true"`
	Timeout time.Duration `env:"VALIDATE_TIMEOUT" envDefault:"8s"`
	RPS     float64       `env:"VALIDATE_RPS" envDefault:"4"`
}

// IngestConfig holds source connector settings.
type IngestConfig struct {
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"8s"`
}

// GenerationConfig holds run generation settings.
type GenerationConfig struct {
	WorkspaceID     string `env:"WORKSPACE_ID" envDefault:"default"`
	ArtifactDir     string `env:"ARTIFACT_DIR" envDefault:"./artifacts"`
	CompanyListPath string `env:"COMPANY_LIST_PATH"`

	// LookbackDays overrides the cadence-derived window when > 0.
	LookbackDays int `env:"LOOKBACK_DAYS" envDefault:"0"`

	// Tick is how often the scheduler mode re-checks whether a run is
	// due. The cadence gate keeps extra ticks harmless.
	Tick time.Duration `env:"GENERATION_TICK" envDefault:"1h"`
}
