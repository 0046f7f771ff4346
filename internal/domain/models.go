package domain

import (
	"time"
)

// BiometricSnapshot holds one day's raw wearable readings. A zero value in
// any field means "not measured", never a real zero reading; every
// interpretation function branches to an unknown sub-assessment on zero.
// Snapshots are immutable once passed into scoring.
type BiometricSnapshot struct {
	Date             string  `json:"date,omitempty"`
	SleepHours       float64 `json:"sleep_hr"`
	Steps            int     `json:"steps"`
	AvgHeartRate     int     `json:"avg_heart_rate"`
	RestingHeartRate int     `json:"resting_heart_rate"`
	ActiveCalories   int     `json:"active_calories"`
	BMI              float64 `json:"bmi"`
	OxygenSaturation int     `json:"oxygen_saturation"`
	WeightKg         float64 `json:"weight_kg"`
	HeightM          float64 `json:"height_m"`
}

// SleepAssessment is the per-domain sleep evaluation.
type SleepAssessment struct {
	Status         SleepStatus `json:"status"`
	Hours          float64     `json:"hours"`
	Message        string      `json:"message"`
	Recommendation string      `json:"recommendation"`
}

// ActivityAssessment is the per-domain step-count evaluation.
type ActivityAssessment struct {
	Level          ActivityLevel `json:"level"`
	Steps          int           `json:"steps"`
	Message        string        `json:"message"`
	Recommendation string        `json:"recommendation"`
}

// HeartRateAssessment is the per-domain cardiovascular evaluation. CheckHR
// is the heart rate the banding actually ran on: resting HR when measured,
// otherwise max(50, avg-15) as a proxy.
type HeartRateAssessment struct {
	Fitness FitnessLevel `json:"fitness"`
	CheckHR int          `json:"check_hr"`
	Message string       `json:"message"`
}

// BMIAssessment is the per-domain body-composition evaluation.
type BMIAssessment struct {
	Category BMICategory `json:"category"`
	BMI      float64     `json:"bmi"`
	Message  string      `json:"message"`
}

// OxygenAssessment is the per-domain blood-oxygen evaluation.
type OxygenAssessment struct {
	Status     OxygenStatus `json:"status"`
	Saturation int          `json:"saturation"`
	Message    string       `json:"message"`
}

// IntensityRecommendation is the 3-tier exercise intensity derived from the
// health score, with its numeric factor.
type IntensityRecommendation struct {
	Level  IntensityLevel `json:"level"`
	Factor float64        `json:"factor"`
}

// HealthAssessment is the full derived result of interpreting one snapshot.
// It is recomputed from the snapshot on every call and never persisted as
// mutable state.
type HealthAssessment struct {
	Score     int                     `json:"score"`
	Grade     Grade                   `json:"grade"`
	GradeText string                  `json:"grade_text"`
	Factors   []string                `json:"factors"`
	Sleep     SleepAssessment         `json:"sleep"`
	Activity  ActivityAssessment      `json:"activity"`
	HeartRate HeartRateAssessment     `json:"heart_rate"`
	BMI       BMIAssessment           `json:"bmi"`
	Oxygen    OxygenAssessment        `json:"oxygen"`
	Intensity IntensityRecommendation `json:"exercise_recommendation"`
}

// ExerciseSettings bundles the routine-construction parameters resolved
// from a health score. A pure lookup keyed by the six score bands.
type ExerciseSettings struct {
	GradeLabel        string  `json:"grade_label"`
	IntensityLabel    string  `json:"intensity_label"`
	BaseSets          int     `json:"base_sets"`
	MaxSets           int     `json:"max_sets"`
	RestSec           int     `json:"rest_sec"`
	METMin            float64 `json:"met_min"`
	METMax            float64 `json:"met_max"`
	DurationSec       int     `json:"duration_sec"`
	CalorieMultiplier float64 `json:"calorie_multiplier"`
}

// ExerciseDefinition is a static catalog entry. The catalog is fixed,
// immutable, and shared process-wide.
type ExerciseDefinition struct {
	Name       string       `json:"name"`
	Categories []BodyRegion `json:"categories"`
	Difficulty int          `json:"difficulty"`
	MET        float64      `json:"met"`
}

// ExerciseKnowledge carries the coaching facts attached to a catalog entry,
// used to enrich commentary prompts.
type ExerciseKnowledge struct {
	TargetMuscles string `json:"target_muscles"`
	Benefit       string `json:"benefit"`
	Tip           string `json:"tip"`
}

// RoutineItem is one scheduled exercise occurrence. Produced only by the
// routine builder.
type RoutineItem struct {
	Name        string       `json:"name"`
	Categories  []BodyRegion `json:"categories"`
	Difficulty  int          `json:"difficulty"`
	MET         float64      `json:"met"`
	DurationSec int          `json:"duration_sec"`
	RestSec     int          `json:"rest_sec"`
	Sets        int          `json:"sets"`
	Reps        int          `json:"reps,omitempty"`
}

// Routine is an ordered sequence of items with aggregate totals. TotalSec
// falls within [target*0.8, target*1.2] whenever the pool permits; a pool
// exhausted before reaching the band yields a legitimately shorter routine.
type Routine struct {
	Items         []RoutineItem `json:"items"`
	TotalTimeMin  int           `json:"total_time_min"`
	TotalCalories int           `json:"total_calories"`
	TotalSec      int           `json:"total_sec"`
	AvgMET        float64       `json:"avg_met"`
}

// DataQuality reports how complete a snapshot is for analysis purposes.
type DataQuality struct {
	Level         DataQualityLevel `json:"level"`
	HasSleep      bool             `json:"has_sleep"`
	HasSteps      bool             `json:"has_steps"`
	HasHeartRate  bool             `json:"has_heart_rate"`
	HasBMI        bool             `json:"has_bmi"`
	MissingFields []string         `json:"missing_fields,omitempty"`
}

// AnalysisRequest carries everything the dispatcher needs to produce a
// coaching analysis for one snapshot.
type AnalysisRequest struct {
	UserID      string            `json:"user_id"`
	Snapshot    BiometricSnapshot `json:"snapshot"`
	DurationMin int               `json:"duration_min"`
	PastContext []string          `json:"past_context,omitempty"`
}

// AnalysisResult is the dispatcher's output: a structurally valid
// assessment plus commentary, with fallback attribution when the LLM path
// failed. Engine names the backend that actually produced the assessment
// ("rule_based" after fallback).
type AnalysisResult struct {
	Assessment    HealthAssessment `json:"assessment"`
	Routine       Routine          `json:"routine"`
	Commentary    string           `json:"commentary"`
	Engine        string           `json:"engine"`
	Mode          AnalysisMode     `json:"mode"`
	FellBack      bool             `json:"fell_back"`
	FailureReason FailureReason    `json:"failure_reason,omitempty"`
	Quality       DataQuality      `json:"data_quality"`
	ElapsedMs     int64            `json:"elapsed_ms"`
}

// DailySummary is a persisted per-user, per-date digest of a snapshot and
// its assessment, used for past-pattern similarity lookups.
type DailySummary struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Date           string    `json:"date"`
	SleepHours     float64   `json:"sleep_hours"`
	Steps          int       `json:"steps"`
	RestingHR      int       `json:"resting_hr"`
	ActiveCalories int       `json:"active_calories"`
	Score          int       `json:"score"`
	Grade          Grade     `json:"grade"`
	Summary        string    `json:"summary"`
	CreatedAt      time.Time `json:"created_at"`
}

// SimilarDay is one similarity-search hit over stored daily summaries.
type SimilarDay struct {
	Summary    DailySummary `json:"summary"`
	Similarity float64      `json:"similarity"`
	Strength   string       `json:"strength"`
}
