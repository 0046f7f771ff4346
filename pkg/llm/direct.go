package llm

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/health-coach-server/internal/domain"
)

// DirectEngine calls a chat-completions endpoint once per analysis and
// parses the structured reply.
type DirectEngine struct {
	client    *Client
	logger    *logrus.Logger
	knowledge map[string]domain.ExerciseKnowledge
}

// NewDirectEngine creates the direct-API backend.
func NewDirectEngine(config domain.LLMBackendConfig, knowledge map[string]domain.ExerciseKnowledge, logger *logrus.Logger) *DirectEngine {
	return &DirectEngine{
		client:    NewClient("direct_api", config, logger),
		logger:    logger,
		knowledge: knowledge,
	}
}

// Name identifies the backend in analysis results.
func (e *DirectEngine) Name() string { return "direct_api" }

// Analyze runs one structured completion for the snapshot.
func (e *DirectEngine) Analyze(ctx context.Context, req *domain.AnalysisRequest) (*domain.HealthAssessment, string, error) {
	raw, err := e.client.Complete(ctx, systemPrompt, BuildUserPrompt(req, e.knowledge))
	if err != nil {
		return nil, "", err
	}

	assessment, commentary, err := ParseAssessment(raw)
	if err != nil {
		e.logger.WithError(err).Debug("Direct backend returned unusable output")
		return nil, "", err
	}

	return assessment, commentary, nil
}
