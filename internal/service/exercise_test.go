package service

import (
	"testing"

	"github.com/health-coach-server/internal/domain"
)

func TestSettingsForScoreBands(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		sets     int
		duration int
		rest     int
		metMin   float64
		metMax   float64
	}{
		{"A band", 85, 5, 50, 10, 5.5, 8.0},
		{"A lower bound", 80, 5, 50, 10, 5.5, 8.0},
		{"B band", 75, 4, 45, 12, 5.0, 6.0},
		{"C+ band", 60, 4, 42, 12, 4.5, 5.5},
		{"C band", 50, 3, 38, 15, 4.0, 4.5},
		{"D band", 40, 2, 32, 18, 3.0, 3.8},
		{"F band", 20, 2, 28, 20, 2.5, 3.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SettingsForScore(tt.score)
			if got.BaseSets != tt.sets {
				t.Errorf("Expected %d base sets, got %d", tt.sets, got.BaseSets)
			}
			if got.DurationSec != tt.duration {
				t.Errorf("Expected duration %ds, got %ds", tt.duration, got.DurationSec)
			}
			if got.RestSec != tt.rest {
				t.Errorf("Expected rest %ds, got %ds", tt.rest, got.RestSec)
			}
			if got.METMin != tt.metMin || got.METMax != tt.metMax {
				t.Errorf("Expected MET band [%v,%v], got [%v,%v]", tt.metMin, tt.metMax, got.METMin, got.METMax)
			}
			if got.CalorieMultiplier != 1.0 {
				t.Errorf("Expected calorie multiplier 1.0, got %v", got.CalorieMultiplier)
			}
		})
	}
}

func TestSelectPoolMembership(t *testing.T) {
	tests := []struct {
		name  string
		score int
		size  int
		first string
	}{
		{"High score gets low+mid+high", 85, 14, "standing knee up"},
		{"Lower bound of wide band", 70, 14, "standing knee up"},
		{"Mid band", 60, 11, "standing knee up"},
		{"Mid-low band", 50, 9, "standing knee up"},
		{"Low band only", 40, 4, "standing knee up"},
		{"Very low band", 20, 4, "hip thrust"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectPool(tt.score)
			if len(got) != tt.size {
				t.Errorf("Expected pool of %d, got %d", tt.size, len(got))
			}
			if len(got) > 0 && got[0].Name != tt.first {
				t.Errorf("Expected first exercise %q, got %q", tt.first, got[0].Name)
			}
		})
	}
}

func TestSelectPoolKeepsDuplicates(t *testing.T) {
	// crunch appears in both mid_low and mid, so the 45-54 and 55-69
	// bands each see it once; order within buckets is preserved.
	pool := SelectPool(60)
	count := 0
	for _, ex := range pool {
		if ex.Name == "crunch" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected crunch once in low+mid pool, got %d", count)
	}
}

func TestCatalogDifficulties(t *testing.T) {
	// Difficulty is rated per pool entry, not per bucket: Y-exercise stays
	// a 3 in the mid bucket while its neighbors rate 4-5, and the high
	// bucket mixes a 4 (push up) with 5s.
	tests := []struct {
		pool       []domain.ExerciseDefinition
		name       string
		difficulty int
	}{
		{poolVeryLow, "hip thrust", 3},
		{poolVeryLow, "arm circle", 2},
		{poolLow, "cross lunge", 4},
		{poolMidLow, "lying leg raise", 4},
		{poolMidLow, "Y-exercise", 3},
		{poolMid, "knee push up", 3},
		{poolMid, "bicycle crunch", 5},
		{poolMid, "side lunge", 5},
		{poolMid, "good morning exercise", 5},
		{poolHigh, "push up", 4},
		{poolHigh, "plank", 5},
	}

	for _, tt := range tests {
		found := false
		for _, ex := range tt.pool {
			if ex.Name == tt.name {
				found = true
				if ex.Difficulty != tt.difficulty {
					t.Errorf("%s: expected difficulty %d, got %d", tt.name, tt.difficulty, ex.Difficulty)
				}
			}
		}
		if !found {
			t.Errorf("%s: not found in its pool", tt.name)
		}
	}
}

func TestCalculateCalories(t *testing.T) {
	// 6.0 MET * 3.5 * 70kg / 200 = 7.35 kcal/min; 30 min -> 220.5 -> 220
	got := CalculateCalories(6.0, 70, 1800, 1.0)
	if got != 220 {
		t.Errorf("Expected 220 kcal, got %d", got)
	}
}

func TestCalculateCaloriesLinearity(t *testing.T) {
	base := CalculateCalories(4.0, 60, 1200, 1.0)

	if got := CalculateCalories(8.0, 60, 1200, 1.0); got != base*2 {
		t.Errorf("Doubling MET: expected %d, got %d", base*2, got)
	}
	if got := CalculateCalories(4.0, 120, 1200, 1.0); got != base*2 {
		t.Errorf("Doubling weight: expected %d, got %d", base*2, got)
	}
	if got := CalculateCalories(4.0, 60, 1200, 2.0); got != base*2 {
		t.Errorf("Doubling multiplier: expected %d, got %d", base*2, got)
	}
	if got := CalculateCalories(4.0, 60, 0, 1.0); got != 0 {
		t.Errorf("Zero duration: expected 0, got %d", got)
	}
}

func TestEstimateWeightPriorityChain(t *testing.T) {
	tests := []struct {
		name     string
		snapshot domain.BiometricSnapshot
		expected float64
	}{
		{
			name:     "Direct weight wins over everything",
			snapshot: domain.BiometricSnapshot{WeightKg: 70, BMI: 30, HeightM: 1.9},
			expected: 70.0,
		},
		{
			name:     "BMI inversion",
			snapshot: domain.BiometricSnapshot{BMI: 22, HeightM: 1.75},
			expected: 67.4, // 22 * 1.75^2 = 67.375, rounded to 1dp
		},
		{
			name:     "Height heuristic",
			snapshot: domain.BiometricSnapshot{HeightM: 1.75},
			expected: 67.5, // (175 - 100) * 0.9
		},
		{
			name:     "Population default",
			snapshot: domain.BiometricSnapshot{},
			expected: 65.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateWeight(&tt.snapshot); got != tt.expected {
				t.Errorf("Expected %.1f kg, got %.1f", tt.expected, got)
			}
		})
	}
}

func TestKnowledgeForCoversCatalog(t *testing.T) {
	for _, pool := range [][]domain.ExerciseDefinition{poolVeryLow, poolLow, poolMidLow, poolMid, poolHigh} {
		for _, ex := range pool {
			if _, ok := KnowledgeFor(ex.Name); !ok {
				t.Errorf("Missing knowledge entry for %q", ex.Name)
			}
		}
	}
	if _, ok := KnowledgeFor("deadlift"); ok {
		t.Error("Expected no knowledge entry for an uncataloged exercise")
	}
}
