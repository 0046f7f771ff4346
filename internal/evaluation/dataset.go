package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/health-coach-server/internal/domain"
)

// Service names test cases are grouped under.
const (
	ServiceHealth   = "health"
	ServiceExercise = "exercise"
)

// EvaluationCase pairs an input snapshot with the structured criteria a
// good response must satisfy.
type EvaluationCase struct {
	ID          string                   `json:"id"`
	Service     string                   `json:"service"`
	Description string                   `json:"description,omitempty"`
	Input       domain.BiometricSnapshot `json:"input"`
	DurationMin int                      `json:"duration_min,omitempty"`
	Expected    ExpectedCriteria         `json:"expected"`
}

// LoadDataset reads every *.json case file under dir, each holding either
// a single case or an array of cases. Files load in name order so runs
// are reproducible.
func LoadDataset(dir string) ([]EvaluationCase, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading dataset dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var cases []EvaluationCase
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading case file %s: %w", name, err)
		}

		var batch []EvaluationCase
		if err := json.Unmarshal(raw, &batch); err != nil {
			var single EvaluationCase
			if err := json.Unmarshal(raw, &single); err != nil {
				return nil, fmt.Errorf("parsing case file %s: %w", name, err)
			}
			batch = []EvaluationCase{single}
		}
		cases = append(cases, batch...)
	}

	if len(cases) == 0 {
		return nil, fmt.Errorf("dataset dir %s contains no cases", dir)
	}
	return cases, nil
}

// BuiltinDataset is the bundled case set used when no dataset directory
// is configured. It spans the condition bands and both services.
func BuiltinDataset() []EvaluationCase {
	return []EvaluationCase{
		{
			ID:          "health-optimal-day",
			Service:     ServiceHealth,
			Description: "well-rested active day, expects an optimal verdict",
			Input: domain.BiometricSnapshot{
				SleepHours: 7.5, Steps: 10500, AvgHeartRate: 72, RestingHeartRate: 58,
				ActiveCalories: 520, BMI: 22.0, OxygenSaturation: 98, WeightKg: 68,
			},
			Expected: ExpectedCriteria{
				ConditionLevel:         domain.ConditionOptimal,
				Keywords:               []string{"sleep", "steps", "heart rate"},
				ExerciseRecommendation: domain.IntensityHigh,
				MinLength:              80,
				MaxLength:              2000,
			},
		},
		{
			ID:          "health-sleep-deprived",
			Service:     ServiceHealth,
			Description: "short sleep with decent activity",
			Input: domain.BiometricSnapshot{
				SleepHours: 4.5, Steps: 7500, AvgHeartRate: 80, RestingHeartRate: 66,
				ActiveCalories: 380, BMI: 24.0, OxygenSaturation: 97, WeightKg: 74,
			},
			Expected: ExpectedCriteria{
				ConditionLevel:         domain.ConditionModeratePlus,
				Keywords:               []string{"sleep"},
				ExerciseRecommendation: domain.IntensityMid,
				MinLength:              80,
				MaxLength:              2000,
			},
		},
		{
			ID:          "health-sedentary-overweight",
			Service:     ServiceHealth,
			Description: "sedentary day with elevated BMI and resting heart rate",
			Input: domain.BiometricSnapshot{
				SleepHours: 6.2, Steps: 2400, AvgHeartRate: 88, RestingHeartRate: 78,
				ActiveCalories: 120, BMI: 27.5, OxygenSaturation: 96, WeightKg: 88,
			},
			Expected: ExpectedCriteria{
				ConditionLevel:         domain.ConditionModerate,
				Keywords:               []string{"steps", "bmi"},
				ExerciseRecommendation: domain.IntensityMid,
				MinLength:              80,
				MaxLength:              2000,
			},
		},
		{
			ID:          "health-warning-signals",
			Service:     ServiceHealth,
			Description: "poor sleep, tachycardic rest, minimal movement",
			Input: domain.BiometricSnapshot{
				SleepHours: 3.0, Steps: 900, AvgHeartRate: 96, RestingHeartRate: 94,
				ActiveCalories: 40, BMI: 29.0, OxygenSaturation: 93, WeightKg: 92,
			},
			Expected: ExpectedCriteria{
				ConditionLevel:         domain.ConditionWarning,
				Keywords:               []string{"sleep", "heart rate"},
				ExerciseRecommendation: domain.IntensityLow,
				MinLength:              80,
				MaxLength:              2000,
			},
		},
		{
			ID:          "exercise-hiit-readiness",
			Service:     ServiceExercise,
			Description: "high-intensity guidance should cite interval-training evidence",
			Input: domain.BiometricSnapshot{
				SleepHours: 8.0, Steps: 11000, AvgHeartRate: 70, RestingHeartRate: 55,
				ActiveCalories: 600, BMI: 21.5, OxygenSaturation: 98, WeightKg: 70,
			},
			DurationMin: 40,
			Expected: ExpectedCriteria{
				ConditionLevel:         domain.ConditionOptimal,
				Keywords:               []string{"interval", "heart rate"},
				ShouldCiteBuchheit:     true,
				Concepts:               map[string]bool{"karvonen": true},
				ExerciseRecommendation: domain.IntensityHigh,
				MinLength:              80,
				MaxLength:              2500,
			},
		},
		{
			ID:          "exercise-youth-load-management",
			Service:     ServiceExercise,
			Description: "fatigue case should cite sleep/injury evidence and ease off",
			Input: domain.BiometricSnapshot{
				SleepHours: 5.0, Steps: 3000, AvgHeartRate: 85, RestingHeartRate: 72,
				ActiveCalories: 150, BMI: 23.5, OxygenSaturation: 96, WeightKg: 66,
			},
			DurationMin: 25,
			Expected: ExpectedCriteria{
				ConditionLevel:         domain.ConditionModerate,
				Keywords:               []string{"sleep", "recovery"},
				ShouldCiteMilewski:     true,
				Concepts:               map[string]bool{"recovery": true},
				ExerciseRecommendation: domain.IntensityMid,
				MinLength:              80,
				MaxLength:              2500,
			},
		},
		{
			ID:          "exercise-gentle-restart",
			Service:     ServiceExercise,
			Description: "deconditioned profile, expects low-intensity progression advice",
			Input: domain.BiometricSnapshot{
				SleepHours: 4.0, Steps: 3500, AvgHeartRate: 90, RestingHeartRate: 80,
				ActiveCalories: 80, BMI: 24.0, OxygenSaturation: 95, WeightKg: 98,
			},
			DurationMin: 20,
			Expected: ExpectedCriteria{
				ConditionLevel:         domain.ConditionCaution,
				Keywords:               []string{"low", "stretch"},
				Concepts:               map[string]bool{"progressive_overload": true},
				ExerciseRecommendation: domain.IntensityLow,
				MinLength:              60,
				MaxLength:              2500,
			},
		},
	}
}
