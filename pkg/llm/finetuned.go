package llm

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/health-coach-server/internal/domain"
)

// FineTunedEngine calls a self-hosted fine-tuned model that serves the
// same chat-completions surface. The model was trained on the structured
// schema, so the system prompt is reduced to the output contract.
type FineTunedEngine struct {
	client    *Client
	logger    *logrus.Logger
	knowledge map[string]domain.ExerciseKnowledge
}

const fineTunedSystemPrompt = `Analyze the wearable biometrics and return the coaching JSON object ` +
	`(score, grade, grade_text, factors, sleep, activity, heart_rate, exercise_recommendation, commentary, confidence).`

// NewFineTunedEngine creates the fine-tuned backend.
func NewFineTunedEngine(config domain.LLMBackendConfig, knowledge map[string]domain.ExerciseKnowledge, logger *logrus.Logger) *FineTunedEngine {
	return &FineTunedEngine{
		client:    NewClient("fine_tuned", config, logger),
		logger:    logger,
		knowledge: knowledge,
	}
}

// Name identifies the backend in analysis results.
func (e *FineTunedEngine) Name() string { return "fine_tuned" }

// Analyze runs one completion against the fine-tuned endpoint.
func (e *FineTunedEngine) Analyze(ctx context.Context, req *domain.AnalysisRequest) (*domain.HealthAssessment, string, error) {
	raw, err := e.client.Complete(ctx, fineTunedSystemPrompt, BuildUserPrompt(req, e.knowledge))
	if err != nil {
		return nil, "", err
	}

	assessment, commentary, err := ParseAssessment(raw)
	if err != nil {
		e.logger.WithError(err).Debug("Fine-tuned backend returned unusable output")
		return nil, "", err
	}

	return assessment, commentary, nil
}
