package domain

import (
	"context"
)

// AnalysisEngine is one coaching backend. Implementations return a
// structurally valid assessment plus commentary, or a *BackendError whose
// FailureReason the dispatcher uses to attribute the rule-based fallback.
type AnalysisEngine interface {
	Analyze(ctx context.Context, req *AnalysisRequest) (*HealthAssessment, string, error)
	Name() string
}

// SummaryStore persists daily summaries for similarity lookups.
type SummaryStore interface {
	SaveSummary(ctx context.Context, summary *DailySummary) error
	GetSummary(ctx context.Context, id string) (*DailySummary, error)
	ListSummaries(ctx context.Context, userID string, limit int) ([]DailySummary, error)
	Close() error
}

// SimilaritySearcher finds historical days resembling today's snapshot.
// Results feed illustrative prompt context only, never the score.
type SimilaritySearcher interface {
	FindSimilarDays(ctx context.Context, userID string, snapshot *BiometricSnapshot, topK int) ([]SimilarDay, error)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetDatabaseConfig() *DatabaseConfig
	GetLLMConfig() *LLMConfig
	Reload() error
	Validate() error
	GetDatabaseConnectionString() string
	GetRedisConnectionString() string
	IsProduction() bool
	IsDevelopment() bool
}
