package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Similarity SimilarityConfig `mapstructure:"similarity"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig represents the daily-summary store configuration.
// Driver selects between the embedded sqlite store ("sqlite") and
// Postgres ("postgres").
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// CacheConfig represents the similarity-search cache configuration.
type CacheConfig struct {
	LocalSize   int           `mapstructure:"local_size"`
	LocalTTL    time.Duration `mapstructure:"local_ttl"`
	RedisURL    string        `mapstructure:"redis_url"`
	RedisTTL    time.Duration `mapstructure:"redis_ttl"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
}

// AnalysisConfig selects the coaching backend and its dispatch behavior.
type AnalysisConfig struct {
	Mode           AnalysisMode  `mapstructure:"mode"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	WorkerPoolSize int           `mapstructure:"worker_pool_size"`
}

// LLMBackendConfig represents one LLM endpoint.
type LLMBackendConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RetryCount  int           `mapstructure:"retry_count"`
	RateLimit   float64       `mapstructure:"rate_limit"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
}

// LLMConfig holds one backend config per analysis mode.
type LLMConfig struct {
	DirectAPI LLMBackendConfig `mapstructure:"direct_api"`
	Chain     LLMBackendConfig `mapstructure:"chain"`
	FineTuned LLMBackendConfig `mapstructure:"fine_tuned"`
}

// SimilarityConfig tunes the past-pattern lookup over daily summaries.
type SimilarityConfig struct {
	TopK            int     `mapstructure:"top_k"`
	StrongThreshold float64 `mapstructure:"strong_threshold"`
}

// EvaluationConfig tunes the evaluation harness.
type EvaluationConfig struct {
	Rounds     int    `mapstructure:"rounds"`
	Workers    int    `mapstructure:"workers"`
	ResultsDir string `mapstructure:"results_dir"`
	DatasetDir string `mapstructure:"dataset_dir"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
