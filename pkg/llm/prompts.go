package llm

import (
	"fmt"
	"strings"

	"github.com/health-coach-server/internal/domain"
)

const systemPrompt = `You are a health and fitness coach analyzing one day of wearable biometric data.
Respond with a single JSON object, no surrounding prose, matching this schema:
{
  "score": <int 0-100>,
  "grade": "<A|B|C+|C|D|F>",
  "grade_text": "<short grade description>",
  "factors": ["<contributing factor>", ...],
  "sleep": {"status": "<good|fair|warning|critical|over|unknown>", "hours": <float>, "message": "<text>", "recommendation": "<text>"},
  "activity": {"level": "<sedentary|low|moderate|active|very_active|no_data>", "steps": <int>, "message": "<text>", "recommendation": "<text>"},
  "heart_rate": {"fitness": "<athlete|excellent|good|average|below_average|poor|unknown>", "check_hr": <int>, "message": "<text>"},
  "exercise_recommendation": "<high|mid|low>",
  "commentary": "<2-4 sentences of coaching advice citing the data>",
  "confidence": <float 0-1>
}
Scores of 80+ are grade A, 70+ B, 55+ C+, 45+ C, 35+ D, below 35 F.
Ground target heart rate advice in the Karvonen formula when heart rate data is present.`

// BuildUserPrompt renders the snapshot, optional past-pattern context, and
// exercise facts into the user message shared by all backends.
func BuildUserPrompt(req *domain.AnalysisRequest, knowledge map[string]domain.ExerciseKnowledge) string {
	var b strings.Builder

	b.WriteString("Today's biometrics:\n")
	s := req.Snapshot
	if s.SleepHours > 0 {
		fmt.Fprintf(&b, "- sleep: %.1f hours\n", s.SleepHours)
	}
	if s.Steps > 0 {
		fmt.Fprintf(&b, "- steps: %d\n", s.Steps)
	}
	if s.RestingHeartRate > 0 {
		fmt.Fprintf(&b, "- resting heart rate: %d bpm\n", s.RestingHeartRate)
	}
	if s.AvgHeartRate > 0 {
		fmt.Fprintf(&b, "- average heart rate: %d bpm\n", s.AvgHeartRate)
	}
	if s.BMI > 0 {
		fmt.Fprintf(&b, "- BMI: %.1f\n", s.BMI)
	}
	if s.OxygenSaturation > 0 {
		fmt.Fprintf(&b, "- oxygen saturation: %d%%\n", s.OxygenSaturation)
	}
	if s.ActiveCalories > 0 {
		fmt.Fprintf(&b, "- active calories: %d kcal\n", s.ActiveCalories)
	}

	if len(req.PastContext) > 0 {
		b.WriteString("\nSimilar past days:\n")
		for _, line := range req.PastContext {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}

	if len(knowledge) > 0 {
		b.WriteString("\nExercise facts you may reference:\n")
		for name, k := range knowledge {
			fmt.Fprintf(&b, "- %s: targets %s; %s\n", name, k.TargetMuscles, k.Benefit)
		}
	}

	b.WriteString("\nAnalyze today's condition and return the JSON object.")
	return b.String()
}

// buildEnhancementPrompt is the chain backend's first step: turn the raw
// user prompt into a richer analysis brief before the structured call.
func buildEnhancementPrompt(userPrompt string) string {
	return "Rewrite the following biometric report as a concise clinical-style brief, " +
		"highlighting which metrics are strong, which are weak, and any interactions " +
		"between sleep, activity, and heart rate worth calling out. Keep it under 150 words.\n\n" +
		userPrompt
}
