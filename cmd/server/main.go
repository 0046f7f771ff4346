package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/health-coach-server/internal/api"
	"github.com/health-coach-server/internal/config"
	"github.com/health-coach-server/internal/database"
	"github.com/health-coach-server/internal/domain"
	"github.com/health-coach-server/internal/repository"
	"github.com/health-coach-server/internal/service"
	"github.com/health-coach-server/internal/similarity"
	"github.com/health-coach-server/pkg/llm"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(&cfg.Logging)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
		"mode": cfg.Analysis.Mode,
	}).Info("Starting health coach server")

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the summary store
	store, err := openStore(ctx, &cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open summary store")
	}
	defer store.Close()

	searcher := similarity.NewSearcher(store, cfg.Similarity, &cfg.Cache, logger)

	analyzer := service.NewAnalyzer(logger,
		service.NewHealthInterpreter(logger),
		service.NewRoutineBuilder(logger),
		buildEngines(&cfg.LLM, logger),
		searcher,
		cfg.Analysis.RequestTimeout,
	)

	// Create server
	server := api.NewServer(configManager, analyzer, service.NewRoutineBuilder(logger), store, searcher, logger)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

func newLogger(cfg *domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

// openStore selects the summary store by driver. Postgres runs the
// schema migrations first; sqlite creates its schema on open.
func openStore(ctx context.Context, cfg *domain.DatabaseConfig, logger *logrus.Logger) (domain.SummaryStore, error) {
	if cfg.Driver == "postgres" {
		if cfg.MigrationsPath != "" {
			runner, err := database.NewMigrationRunnerFromConfig(cfg, logger)
			if err != nil {
				return nil, err
			}
			if err := runner.Up(ctx); err != nil {
				runner.Close()
				return nil, err
			}
			runner.Close()
		}

		db, err := database.NewConnection(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return repository.NewPostgresStore(db)
	}

	return repository.NewSQLiteStore(cfg.Path)
}

// buildEngines creates one LLM engine per configured backend. Backends
// without a base URL are skipped; their modes run rule-based only.
func buildEngines(cfg *domain.LLMConfig, logger *logrus.Logger) map[domain.AnalysisMode]domain.AnalysisEngine {
	knowledge := service.KnowledgeCatalog()
	engines := make(map[domain.AnalysisMode]domain.AnalysisEngine)

	if cfg.DirectAPI.BaseURL != "" {
		engines[domain.ModeDirectAPI] = llm.NewDirectEngine(cfg.DirectAPI, knowledge, logger)
	}
	if cfg.Chain.BaseURL != "" {
		engines[domain.ModeChainFramework] = llm.NewChainEngine(cfg.Chain, knowledge, logger)
	}
	if cfg.FineTuned.BaseURL != "" {
		engines[domain.ModeFineTuned] = llm.NewFineTunedEngine(cfg.FineTuned, knowledge, logger)
	}

	return engines
}
