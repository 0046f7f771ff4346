package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/health-coach-server/internal/domain"
)

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	// Set configuration file name and paths
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/health-coach-server/")

	// Set environment variable prefix and enable automatic env binding
	viper.SetEnvPrefix("HEALTH_COACH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	m.setDefaults()

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	// Unmarshal configuration into struct
	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Summary store defaults
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "./data/summaries.db")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "health_coach")
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("database.migrations_path", "migrations")

	// Cache defaults
	viper.SetDefault("cache.local_size", 512)
	viper.SetDefault("cache.local_ttl", "10m")
	viper.SetDefault("cache.redis_url", "")
	viper.SetDefault("cache.redis_ttl", "1h")
	viper.SetDefault("cache.pool_size", 10)
	viper.SetDefault("cache.pool_timeout", "4s")

	// Analysis defaults
	viper.SetDefault("analysis.mode", "direct_api")
	viper.SetDefault("analysis.request_timeout", "30s")
	viper.SetDefault("analysis.worker_pool_size", 4)

	// LLM backend defaults
	viper.SetDefault("llm.direct_api.base_url", "https://api.openai.com/v1")
	viper.SetDefault("llm.direct_api.model", "gpt-4o-mini")
	viper.SetDefault("llm.direct_api.timeout", "30s")
	viper.SetDefault("llm.direct_api.retry_count", 2)
	viper.SetDefault("llm.direct_api.rate_limit", 5)
	viper.SetDefault("llm.direct_api.temperature", 0.3)
	viper.SetDefault("llm.direct_api.max_tokens", 1024)

	viper.SetDefault("llm.chain.base_url", "https://api.openai.com/v1")
	viper.SetDefault("llm.chain.model", "gpt-4o-mini")
	viper.SetDefault("llm.chain.timeout", "60s")
	viper.SetDefault("llm.chain.retry_count", 2)
	viper.SetDefault("llm.chain.rate_limit", 5)
	viper.SetDefault("llm.chain.temperature", 0.3)
	viper.SetDefault("llm.chain.max_tokens", 1024)

	viper.SetDefault("llm.fine_tuned.base_url", "http://localhost:8000/v1")
	viper.SetDefault("llm.fine_tuned.model", "health-coach-ft")
	viper.SetDefault("llm.fine_tuned.timeout", "45s")
	viper.SetDefault("llm.fine_tuned.retry_count", 1)
	viper.SetDefault("llm.fine_tuned.rate_limit", 10)
	viper.SetDefault("llm.fine_tuned.temperature", 0.2)
	viper.SetDefault("llm.fine_tuned.max_tokens", 1024)

	// Similarity defaults
	viper.SetDefault("similarity.top_k", 3)
	viper.SetDefault("similarity.strong_threshold", 0.85)

	// Evaluation defaults
	viper.SetDefault("evaluation.rounds", 3)
	viper.SetDefault("evaluation.workers", 4)
	viper.SetDefault("evaluation.results_dir", "./evaluation/results")
	viper.SetDefault("evaluation.dataset_dir", "./evaluation/datasets")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetDatabaseConfig returns summary store configuration
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// GetLLMConfig returns the LLM backend configuration
func (m *Manager) GetLLMConfig() *domain.LLMConfig {
	return &m.config.LLM
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	// Validate server configuration
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	// Validate summary store configuration
	switch config.Database.Driver {
	case "sqlite":
		if config.Database.Path == "" {
			return fmt.Errorf("sqlite database path is required")
		}
	case "postgres":
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if config.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if config.Database.Username == "" {
			return fmt.Errorf("database username is required")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", config.Database.Driver)
	}

	// Validate analysis configuration
	if !config.Analysis.Mode.IsValid() {
		return fmt.Errorf("invalid analysis mode: %s", config.Analysis.Mode)
	}
	if config.Analysis.WorkerPoolSize <= 0 {
		return fmt.Errorf("analysis worker pool size must be positive")
	}

	// Validate evaluation configuration
	if config.Evaluation.Rounds < 1 {
		return fmt.Errorf("evaluation rounds must be at least 1")
	}

	// Validate logging configuration
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// GetDatabaseConnectionString returns a formatted database connection string
func (m *Manager) GetDatabaseConnectionString() string {
	db := m.config.Database
	if db.Driver == "sqlite" {
		return db.Path
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.Username, db.Password, db.Database, db.SSLMode)
}

// GetRedisConnectionString returns the Redis connection string
func (m *Manager) GetRedisConnectionString() string {
	return m.config.Cache.RedisURL
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(viper.GetString("environment")) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(viper.GetString("environment"))
	return env == "development" || env == "dev" || env == ""
}
