package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/health-coach-server/internal/domain"
)

// assessmentPayload is the JSON shape the backends are asked to produce.
// It mirrors HealthAssessment minus the BMI and oxygen sub-assessments,
// which are always patched in from the rule engine.
type assessmentPayload struct {
	Score     int      `json:"score"`
	Grade     string   `json:"grade"`
	GradeText string   `json:"grade_text"`
	Factors   []string `json:"factors"`
	Sleep     struct {
		Status         string  `json:"status"`
		Hours          float64 `json:"hours"`
		Message        string  `json:"message"`
		Recommendation string  `json:"recommendation"`
	} `json:"sleep"`
	Activity struct {
		Level          string `json:"level"`
		Steps          int    `json:"steps"`
		Message        string `json:"message"`
		Recommendation string `json:"recommendation"`
	} `json:"activity"`
	HeartRate struct {
		Fitness string `json:"fitness"`
		CheckHR int    `json:"check_hr"`
		Message string `json:"message"`
	} `json:"heart_rate"`
	ExerciseRecommendation string  `json:"exercise_recommendation"`
	Commentary             string  `json:"commentary"`
	Confidence             float64 `json:"confidence"`
}

// lowConfidenceThreshold rejects self-reported confidence below this value.
const lowConfidenceThreshold = 0.5

// StripCodeFences removes a markdown code fence wrapper (``` or ```json)
// from model output, leaving the inner text. Output without fences passes
// through unchanged.
func StripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. "json").
		first := strings.TrimSpace(trimmed[:idx])
		if first == "" || !strings.ContainsAny(first, "{}[]") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// ParseAssessment parses model output into a HealthAssessment plus
// commentary. Unparseable or schema-invalid output is a parse_failed
// backend error; a self-reported confidence below threshold is
// low_confidence.
func ParseAssessment(raw string) (*domain.HealthAssessment, string, error) {
	cleaned := StripCodeFences(raw)

	var payload assessmentPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, "", domain.NewBackendError(domain.FailureParse, fmt.Errorf("decoding assessment: %w", err))
	}

	if payload.Score < 0 || payload.Score > 100 {
		return nil, "", domain.NewBackendError(domain.FailureParse, fmt.Errorf("score %d out of range", payload.Score))
	}

	grade := domain.Grade(payload.Grade)
	if !grade.IsValid() {
		return nil, "", domain.NewBackendError(domain.FailureParse, fmt.Errorf("invalid grade %q", payload.Grade))
	}

	if payload.Confidence != 0 && payload.Confidence < lowConfidenceThreshold {
		return nil, "", domain.NewBackendError(domain.FailureLowConfidence, fmt.Errorf("confidence %.2f below threshold", payload.Confidence))
	}

	gradeText := payload.GradeText
	if gradeText == "" {
		gradeText = grade.Label()
	}

	level := domain.IntensityLevel(payload.ExerciseRecommendation)
	if !level.IsValid() {
		level = domain.IntensityForScore(payload.Score)
	}

	assessment := &domain.HealthAssessment{
		Score:     payload.Score,
		Grade:     grade,
		GradeText: gradeText,
		Factors:   payload.Factors,
		Sleep: domain.SleepAssessment{
			Status:         domain.SleepStatus(payload.Sleep.Status),
			Hours:          payload.Sleep.Hours,
			Message:        payload.Sleep.Message,
			Recommendation: payload.Sleep.Recommendation,
		},
		Activity: domain.ActivityAssessment{
			Level:          domain.ActivityLevel(payload.Activity.Level),
			Steps:          payload.Activity.Steps,
			Message:        payload.Activity.Message,
			Recommendation: payload.Activity.Recommendation,
		},
		HeartRate: domain.HeartRateAssessment{
			Fitness: domain.FitnessLevel(payload.HeartRate.Fitness),
			CheckHR: payload.HeartRate.CheckHR,
			Message: payload.HeartRate.Message,
		},
		Intensity: domain.IntensityRecommendation{
			Level:  level,
			Factor: level.Factor(),
		},
	}

	return assessment, payload.Commentary, nil
}
