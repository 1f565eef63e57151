package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`

	// Redis backs the corpus cache. When empty, an in-process cache is used.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	LLMAPIKey    string        `env:"LLM_API_KEY"`
	LLMModel     string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMTimeout   time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
	RateLimitRPS int           `env:"RATE_LIMIT_RPS" envDefault:"1"`

	WorkerConcurrency  int           `env:"WORKER_CONCURRENCY" envDefault:"3"`
	WorkerPollInterval time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"2s"`
	JobMaxAttempts     int           `env:"JOB_MAX_ATTEMPTS" envDefault:"3"`
	JobBackoffBase     time.Duration `env:"JOB_BACKOFF_BASE" envDefault:"5s"`
	JobStuckThreshold  time.Duration `env:"JOB_STUCK_THRESHOLD" envDefault:"10m"`

	CorpusCacheTTL     time.Duration `env:"CORPUS_CACHE_TTL" envDefault:"1h"`
	TokenEstimate      int           `env:"TOKEN_ESTIMATE" envDefault:"1500"`
	RelevanceThreshold float64       `env:"RELEVANCE_THRESHOLD" envDefault:"0.25"`
	TopCandidates      int           `env:"TOP_CANDIDATES" envDefault:"20"`
	MaxSuggestions     int           `env:"MAX_SUGGESTIONS" envDefault:"5"`

	HealthPort int `env:"HEALTH_PORT" envDefault:"8080"`

	// Database pool
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"25"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"5"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
