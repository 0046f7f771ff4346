package llm

import (
	"errors"
	"testing"

	"github.com/health-coach-server/internal/domain"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"No fences", `{"score": 80}`, `{"score": 80}`},
		{"Plain fences", "```\n{\"score\": 80}\n```", `{"score": 80}`},
		{"JSON language tag", "```json\n{\"score\": 80}\n```", `{"score": 80}`},
		{"Leading whitespace", "  ```json\n{\"score\": 80}\n```  ", `{"score": 80}`},
		{"Fence glued to content", "```{\"score\": 80}```", `{"score": 80}`},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.input); got != tt.expected {
				t.Errorf("StripCodeFences(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

const validPayload = "```json\n" + `{
  "score": 90,
  "grade": "A",
  "grade_text": "excellent",
  "factors": ["optimal sleep", "active day"],
  "sleep": {"status": "good", "hours": 7.5, "message": "Optimal sleep", "recommendation": "Keep it up"},
  "activity": {"level": "active", "steps": 8500, "message": "Active day", "recommendation": "Push for 10k"},
  "heart_rate": {"fitness": "good", "check_hr": 62, "message": "Good fitness"},
  "exercise_recommendation": "high",
  "commentary": "Strong day across the board.",
  "confidence": 0.9
}` + "\n```"

func TestParseAssessmentValid(t *testing.T) {
	assessment, commentary, err := ParseAssessment(validPayload)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if assessment.Score != 90 {
		t.Errorf("Expected score 90, got %d", assessment.Score)
	}
	if assessment.Grade != domain.GradeA {
		t.Errorf("Expected grade A, got %s", assessment.Grade)
	}
	if assessment.Sleep.Status != domain.SleepGood {
		t.Errorf("Expected sleep status good, got %s", assessment.Sleep.Status)
	}
	if assessment.Intensity.Level != domain.IntensityHigh || assessment.Intensity.Factor != 0.9 {
		t.Errorf("Expected high/0.9 intensity, got %+v", assessment.Intensity)
	}
	if commentary != "Strong day across the board." {
		t.Errorf("Unexpected commentary %q", commentary)
	}
}

func TestParseAssessmentFailures(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected domain.FailureReason
	}{
		{"Not JSON", "I think you are doing great!", domain.FailureParse},
		{"Score out of range", `{"score": 140, "grade": "A"}`, domain.FailureParse},
		{"Negative score", `{"score": -5, "grade": "F"}`, domain.FailureParse},
		{"Invalid grade", `{"score": 80, "grade": "S"}`, domain.FailureParse},
		{"Low confidence", `{"score": 80, "grade": "A", "confidence": 0.2}`, domain.FailureLowConfidence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseAssessment(tt.input)
			if err == nil {
				t.Fatal("Expected error")
			}
			var be *domain.BackendError
			if !errors.As(err, &be) {
				t.Fatalf("Expected *BackendError, got %T", err)
			}
			if be.Reason != tt.expected {
				t.Errorf("Expected reason %s, got %s", tt.expected, be.Reason)
			}
		})
	}
}

func TestParseAssessmentDefaults(t *testing.T) {
	// Missing grade_text falls back to the grade label; an unrecognized
	// intensity label falls back to the score-derived tier.
	assessment, _, err := ParseAssessment(`{"score": 60, "grade": "C+", "exercise_recommendation": "extreme"}`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if assessment.GradeText != "above average" {
		t.Errorf("Expected fallback grade text, got %q", assessment.GradeText)
	}
	if assessment.Intensity.Level != domain.IntensityMid {
		t.Errorf("Expected score-derived mid intensity, got %s", assessment.Intensity.Level)
	}
}

func TestParseAssessmentZeroConfidenceAccepted(t *testing.T) {
	// Confidence omitted (zero value) is not a low-confidence failure.
	if _, _, err := ParseAssessment(`{"score": 70, "grade": "B"}`); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}
