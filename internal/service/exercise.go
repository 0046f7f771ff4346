package service

import (
	"math"

	"github.com/health-coach-server/internal/domain"
)

// Exercise catalog, settings resolution, pool selection, and the calorie
// and weight estimators. Everything here is a pure lookup or formula over
// read-only static tables, safe for concurrent use.

// settingsByBand fixes the routine-construction parameters per score band,
// ordered best to worst (A, B, C+, C, D, F).
var settingsByBand = []domain.ExerciseSettings{
	{GradeLabel: "excellent", IntensityLabel: "high", BaseSets: 5, MaxSets: 5, RestSec: 10, METMin: 5.5, METMax: 8.0, DurationSec: 50, CalorieMultiplier: 1.0},
	{GradeLabel: "good", IntensityLabel: "mid_high", BaseSets: 4, MaxSets: 5, RestSec: 12, METMin: 5.0, METMax: 6.0, DurationSec: 45, CalorieMultiplier: 1.0},
	{GradeLabel: "above average", IntensityLabel: "mid", BaseSets: 4, MaxSets: 4, RestSec: 12, METMin: 4.5, METMax: 5.5, DurationSec: 42, CalorieMultiplier: 1.0},
	{GradeLabel: "average", IntensityLabel: "mid_low", BaseSets: 3, MaxSets: 3, RestSec: 15, METMin: 4.0, METMax: 4.5, DurationSec: 38, CalorieMultiplier: 1.0},
	{GradeLabel: "needs improvement", IntensityLabel: "low", BaseSets: 2, MaxSets: 2, RestSec: 18, METMin: 3.0, METMax: 3.8, DurationSec: 32, CalorieMultiplier: 1.0},
	{GradeLabel: "caution", IntensityLabel: "very_low", BaseSets: 2, MaxSets: 2, RestSec: 20, METMin: 2.5, METMax: 3.2, DurationSec: 28, CalorieMultiplier: 1.0},
}

// SettingsForScore resolves routine-construction parameters over the same
// six score bands as the grade function.
func SettingsForScore(score int) domain.ExerciseSettings {
	switch {
	case score >= 80:
		return settingsByBand[0]
	case score >= 70:
		return settingsByBand[1]
	case score >= 55:
		return settingsByBand[2]
	case score >= 45:
		return settingsByBand[3]
	case score >= 35:
		return settingsByBand[4]
	default:
		return settingsByBand[5]
	}
}

// Static exercise catalog partitioned into five intensity buckets. An
// exercise may appear in more than one bucket; concatenation preserves
// order and duplicates.
var (
	poolVeryLow = []domain.ExerciseDefinition{
		{Name: "hip thrust", Categories: []domain.BodyRegion{domain.RegionLower, domain.RegionCore}, Difficulty: 3, MET: 3.5},
		{Name: "standing knee up", Categories: []domain.BodyRegion{domain.RegionLower, domain.RegionCore}, Difficulty: 3, MET: 3.3},
		{Name: "arm circle", Categories: []domain.BodyRegion{domain.RegionUpper}, Difficulty: 2, MET: 2.8},
		{Name: "shoulder stretch", Categories: []domain.BodyRegion{domain.RegionUpper}, Difficulty: 2, MET: 2.5},
	}

	poolLow = []domain.ExerciseDefinition{
		{Name: "standing knee up", Categories: []domain.BodyRegion{domain.RegionLower, domain.RegionCore}, Difficulty: 3, MET: 3.8},
		{Name: "hip thrust", Categories: []domain.BodyRegion{domain.RegionLower, domain.RegionCore}, Difficulty: 3, MET: 3.5},
		{Name: "standing side crunch", Categories: []domain.BodyRegion{domain.RegionCore}, Difficulty: 3, MET: 4.0},
		{Name: "cross lunge", Categories: []domain.BodyRegion{domain.RegionLower}, Difficulty: 4, MET: 3.8},
	}

	poolMidLow = []domain.ExerciseDefinition{
		{Name: "step forward dynamic lunge", Categories: []domain.BodyRegion{domain.RegionLower}, Difficulty: 4, MET: 4.0},
		{Name: "lying leg raise", Categories: []domain.BodyRegion{domain.RegionCore}, Difficulty: 4, MET: 4.0},
		{Name: "crunch", Categories: []domain.BodyRegion{domain.RegionCore}, Difficulty: 4, MET: 4.5},
		{Name: "scissor cross", Categories: []domain.BodyRegion{domain.RegionCore}, Difficulty: 4, MET: 4.5},
		{Name: "Y-exercise", Categories: []domain.BodyRegion{domain.RegionUpper}, Difficulty: 3, MET: 4.5},
	}

	poolMid = []domain.ExerciseDefinition{
		{Name: "crunch", Categories: []domain.BodyRegion{domain.RegionCore}, Difficulty: 4, MET: 4.5},
		{Name: "scissor cross", Categories: []domain.BodyRegion{domain.RegionCore}, Difficulty: 4, MET: 4.5},
		{Name: "Y-exercise", Categories: []domain.BodyRegion{domain.RegionUpper}, Difficulty: 3, MET: 4.5},
		{Name: "knee push up", Categories: []domain.BodyRegion{domain.RegionUpper}, Difficulty: 3, MET: 5.0},
		{Name: "bicycle crunch", Categories: []domain.BodyRegion{domain.RegionCore}, Difficulty: 5, MET: 5.0},
		{Name: "side lunge", Categories: []domain.BodyRegion{domain.RegionLower}, Difficulty: 5, MET: 5.0},
		{Name: "good morning exercise", Categories: []domain.BodyRegion{domain.RegionLower, domain.RegionCore}, Difficulty: 5, MET: 5.0},
	}

	poolHigh = []domain.ExerciseDefinition{
		{Name: "push up", Categories: []domain.BodyRegion{domain.RegionUpper}, Difficulty: 4, MET: 6.0},
		{Name: "burpee test", Categories: []domain.BodyRegion{domain.RegionFullBody}, Difficulty: 5, MET: 8.0},
		{Name: "plank", Categories: []domain.BodyRegion{domain.RegionCore}, Difficulty: 5, MET: 8.0},
	}
)

// exerciseKnowledge carries coaching facts per catalog entry, keyed by
// exercise name, used to enrich commentary prompts.
var exerciseKnowledge = map[string]domain.ExerciseKnowledge{
	"hip thrust":                 {TargetMuscles: "glutes, hamstrings", Benefit: "strengthens the posterior chain and supports the lower back", Tip: "squeeze the glutes at the top and avoid arching the lower back"},
	"standing knee up":           {TargetMuscles: "hip flexors, core", Benefit: "improves balance and raises heart rate gently", Tip: "drive the knee above hip height while keeping the torso tall"},
	"arm circle":                 {TargetMuscles: "shoulders", Benefit: "warms up the shoulder joint and improves mobility", Tip: "keep circles small and controlled before widening"},
	"shoulder stretch":           {TargetMuscles: "deltoids, upper back", Benefit: "relieves shoulder tension from desk posture", Tip: "hold each side for 15-20 seconds without bouncing"},
	"standing side crunch":       {TargetMuscles: "obliques", Benefit: "works the side core without floor work", Tip: "bring elbow and knee together along the side line"},
	"cross lunge":                {TargetMuscles: "glutes, quads", Benefit: "targets the glute medius through the crossing pattern", Tip: "keep the front knee tracking over the toes"},
	"step forward dynamic lunge": {TargetMuscles: "quads, glutes", Benefit: "builds single-leg strength and stability", Tip: "push back to standing through the front heel"},
	"lying leg raise":            {TargetMuscles: "lower abs, hip flexors", Benefit: "strengthens the lower core", Tip: "press the lower back into the floor throughout"},
	"crunch":                     {TargetMuscles: "rectus abdominis", Benefit: "isolates the upper abdominals", Tip: "curl the shoulder blades off the floor without pulling the neck"},
	"scissor cross":              {TargetMuscles: "lower abs", Benefit: "challenges core endurance through continuous tension", Tip: "keep both legs off the floor and move slowly"},
	"Y-exercise":                 {TargetMuscles: "lower traps, shoulders", Benefit: "improves shoulder stability and posture", Tip: "lead with the thumbs and avoid shrugging"},
	"knee push up":               {TargetMuscles: "chest, triceps", Benefit: "builds pressing strength with reduced load", Tip: "keep a straight line from knees to head"},
	"bicycle crunch":             {TargetMuscles: "obliques, rectus abdominis", Benefit: "works the full core with rotation", Tip: "rotate from the torso, not the elbows"},
	"side lunge":                 {TargetMuscles: "adductors, glutes", Benefit: "trains lateral movement the forward lunge misses", Tip: "sit the hips back and keep the stepping foot flat"},
	"good morning exercise":      {TargetMuscles: "hamstrings, lower back", Benefit: "teaches the hip hinge pattern", Tip: "hinge at the hips with a neutral spine"},
	"push up":                    {TargetMuscles: "chest, triceps, core", Benefit: "full upper-body pressing strength", Tip: "keep elbows at roughly 45 degrees from the torso"},
	"burpee test":                {TargetMuscles: "full body", Benefit: "maximal conditioning in minimal space", Tip: "pace evenly rather than sprinting the first sets"},
	"plank":                      {TargetMuscles: "core, shoulders", Benefit: "builds isometric trunk endurance", Tip: "brace the abs and avoid sagging hips"},
}

// KnowledgeFor returns the coaching facts for an exercise name, if known.
func KnowledgeFor(name string) (domain.ExerciseKnowledge, bool) {
	k, ok := exerciseKnowledge[name]
	return k, ok
}

// KnowledgeCatalog returns a copy of the full coaching-fact catalog,
// keyed by exercise name.
func KnowledgeCatalog() map[string]domain.ExerciseKnowledge {
	catalog := make(map[string]domain.ExerciseKnowledge, len(exerciseKnowledge))
	for name, k := range exerciseKnowledge {
		catalog[name] = k
	}
	return catalog
}

// SelectPool returns the candidate exercises for a score. Bucket membership
// widens with the score; duplicates across buckets are intentional.
func SelectPool(score int) []domain.ExerciseDefinition {
	switch {
	case score >= 70:
		return concatPools(poolLow, poolMid, poolHigh)
	case score >= 55:
		return concatPools(poolLow, poolMid)
	case score >= 45:
		return concatPools(poolLow, poolMidLow)
	case score >= 35:
		return concatPools(poolLow)
	default:
		return concatPools(poolVeryLow)
	}
}

func concatPools(pools ...[]domain.ExerciseDefinition) []domain.ExerciseDefinition {
	n := 0
	for _, p := range pools {
		n += len(p)
	}
	out := make([]domain.ExerciseDefinition, 0, n)
	for _, p := range pools {
		out = append(out, p...)
	}
	return out
}

// CalculateCalories applies the MET energy expenditure formula:
// met * 3.5 * kg / 200 gives kcal per minute; truncated to int. Total
// function, degenerate inputs yield 0.
func CalculateCalories(avgMET, weightKg float64, durationSec int, multiplier float64) int {
	perMinute := avgMET * 3.5 * weightKg / 200
	return int(perMinute * (float64(durationSec) / 60) * multiplier)
}

// EstimateWeight resolves body weight through a priority chain: direct
// reading, BMI inversion, height heuristic, then a population default of
// 65 kg. Never fails.
func EstimateWeight(s *domain.BiometricSnapshot) float64 {
	if s.WeightKg > 0 {
		return s.WeightKg
	}
	if s.BMI > 0 && s.HeightM > 0 {
		return math.Round(s.BMI*s.HeightM*s.HeightM*10) / 10
	}
	if s.HeightM > 0 {
		heightCm := s.HeightM * 100
		return math.Round((heightCm-100)*0.9*10) / 10
	}
	return 65.0
}
