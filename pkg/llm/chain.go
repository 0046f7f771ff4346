package llm

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/health-coach-server/internal/domain"
)

// ChainEngine runs a two-step prompt chain: first an enhancement pass that
// rewrites the raw biometrics into an analysis brief, then a structured
// completion over the brief. Both steps share one client, breaker, and
// rate limit.
type ChainEngine struct {
	client    *Client
	logger    *logrus.Logger
	knowledge map[string]domain.ExerciseKnowledge
}

// NewChainEngine creates the chain-framework backend.
func NewChainEngine(config domain.LLMBackendConfig, knowledge map[string]domain.ExerciseKnowledge, logger *logrus.Logger) *ChainEngine {
	return &ChainEngine{
		client:    NewClient("chain_framework", config, logger),
		logger:    logger,
		knowledge: knowledge,
	}
}

// Name identifies the backend in analysis results.
func (e *ChainEngine) Name() string { return "chain_framework" }

// Analyze enhances the prompt, then requests the structured assessment.
// A failure in either step surfaces as a backend error.
func (e *ChainEngine) Analyze(ctx context.Context, req *domain.AnalysisRequest) (*domain.HealthAssessment, string, error) {
	userPrompt := BuildUserPrompt(req, e.knowledge)

	brief, err := e.client.Complete(ctx, "You are a health data analyst.", buildEnhancementPrompt(userPrompt))
	if err != nil {
		return nil, "", err
	}

	e.logger.WithField("brief_len", len(brief)).Debug("Chain enhancement step complete")

	raw, err := e.client.Complete(ctx, systemPrompt, "Analysis brief:\n"+brief+"\n\n"+userPrompt)
	if err != nil {
		return nil, "", err
	}

	return ParseAssessment(raw)
}
