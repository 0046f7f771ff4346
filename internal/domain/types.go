// Package domain contains core business entities and types for wearable
// biometric interpretation, exercise routine generation, and LLM-backed
// coaching analysis.
//
// Score-to-grade banding uses a single six-level partition shared by health
// scoring, exercise settings resolution, and evaluation grade matching:
// >=80 A, >=70 B, >=55 C+, >=45 C, >=35 D, else F.
package domain

import (
	"errors"
)

// Grade represents the six-level health grade derived from a health score.
type Grade string

const (
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeCPlus Grade = "C+"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// ConditionLevel is the evaluation-side name for the same six bands.
// Evaluation fixtures state their expectations in these terms rather than
// letter grades.
type ConditionLevel string

const (
	ConditionOptimal      ConditionLevel = "optimal"
	ConditionGood         ConditionLevel = "good"
	ConditionModeratePlus ConditionLevel = "moderate_plus"
	ConditionModerate     ConditionLevel = "moderate"
	ConditionCaution      ConditionLevel = "caution"
	ConditionWarning      ConditionLevel = "warning"
)

// conditionOrder fixes the worst-to-best ordering used for adjacency checks
// during evaluation grading.
var conditionOrder = []ConditionLevel{
	ConditionWarning,
	ConditionCaution,
	ConditionModerate,
	ConditionModeratePlus,
	ConditionGood,
	ConditionOptimal,
}

// SleepStatus classifies a night's sleep duration.
type SleepStatus string

const (
	SleepGood     SleepStatus = "good"
	SleepFair     SleepStatus = "fair"
	SleepWarning  SleepStatus = "warning"
	SleepCritical SleepStatus = "critical"
	SleepOver     SleepStatus = "over"
	SleepUnknown  SleepStatus = "unknown"
)

// ActivityLevel classifies a day's step count.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLow        ActivityLevel = "low"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
	ActivityNoData     ActivityLevel = "no_data"
)

// FitnessLevel classifies cardiovascular fitness from resting heart rate.
type FitnessLevel string

const (
	FitnessAthlete      FitnessLevel = "athlete"
	FitnessExcellent    FitnessLevel = "excellent"
	FitnessGood         FitnessLevel = "good"
	FitnessAverage      FitnessLevel = "average"
	FitnessBelowAverage FitnessLevel = "below_average"
	FitnessPoor         FitnessLevel = "poor"
	FitnessUnknown      FitnessLevel = "unknown"
)

// BMICategory classifies body mass index using the Asian-Pacific cutoffs
// (normal < 23, overweight < 25) the scoring rules are tuned for.
type BMICategory string

const (
	BMIUnderweight BMICategory = "underweight"
	BMINormal      BMICategory = "normal"
	BMIOverweight  BMICategory = "overweight"
	BMIObese       BMICategory = "obese"
	BMIUnknown     BMICategory = "unknown"
)

// OxygenStatus classifies blood oxygen saturation.
type OxygenStatus string

const (
	OxygenNormal  OxygenStatus = "normal"
	OxygenWarning OxygenStatus = "warning"
	OxygenUnknown OxygenStatus = "unknown"
)

// IntensityLevel is the 3-tier exercise intensity recommendation attached
// to a health assessment. Distinct from ExerciseSettings, which resolves
// over the full six-band partition.
type IntensityLevel string

const (
	IntensityHigh IntensityLevel = "high"
	IntensityMid  IntensityLevel = "mid"
	IntensityLow  IntensityLevel = "low"
)

// BodyRegion tags an exercise with the body regions it trains.
type BodyRegion int

const (
	RegionUpper    BodyRegion = 1
	RegionCore     BodyRegion = 2
	RegionLower    BodyRegion = 3
	RegionFullBody BodyRegion = 4
)

// AnalysisMode selects which LLM backend generates coaching commentary.
type AnalysisMode string

const (
	ModeDirectAPI      AnalysisMode = "direct_api"
	ModeChainFramework AnalysisMode = "chain_framework"
	ModeFineTuned      AnalysisMode = "fine_tuned"
)

// FailureReason attributes a fallback to the rule-based analysis path.
// It is a first-class value so evaluation tooling can distinguish outcome
// causes without parsing logs.
type FailureReason string

const (
	FailureNone          FailureReason = ""
	FailureNetwork       FailureReason = "network/timeout"
	FailureParse         FailureReason = "parse_failed"
	FailureLowConfidence FailureReason = "low_confidence"
)

// DataQualityLevel grades how complete a biometric snapshot is.
type DataQualityLevel string

const (
	DataQualityHigh   DataQualityLevel = "high"
	DataQualityMedium DataQualityLevel = "medium"
	DataQualityLow    DataQualityLevel = "low"
)

// Validation errors shared across the domain.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidMode      = errors.New("invalid analysis mode")
	ErrInvalidGrade     = errors.New("invalid health grade")
	ErrInvalidIntensity = errors.New("invalid intensity level")
)

// GradeForScore maps a clamped health score onto the six-level grade.
// Thresholds are fixed at 80/70/55/45/35.
func GradeForScore(score int) Grade {
	switch {
	case score >= 80:
		return GradeA
	case score >= 70:
		return GradeB
	case score >= 55:
		return GradeCPlus
	case score >= 45:
		return GradeC
	case score >= 35:
		return GradeD
	default:
		return GradeF
	}
}

// ConditionForScore maps a health score onto the evaluation-side condition
// level. Same bands as GradeForScore.
func ConditionForScore(score int) ConditionLevel {
	switch {
	case score >= 80:
		return ConditionOptimal
	case score >= 70:
		return ConditionGood
	case score >= 55:
		return ConditionModeratePlus
	case score >= 45:
		return ConditionModerate
	case score >= 35:
		return ConditionCaution
	default:
		return ConditionWarning
	}
}

// Label returns the human-readable description paired with each grade.
func (g Grade) Label() string {
	switch g {
	case GradeA:
		return "excellent"
	case GradeB:
		return "good"
	case GradeCPlus:
		return "above average"
	case GradeC:
		return "average"
	case GradeD:
		return "needs improvement"
	case GradeF:
		return "caution"
	default:
		return "unknown"
	}
}

// IsValid validates the grade value.
func (g Grade) IsValid() bool {
	switch g {
	case GradeA, GradeB, GradeCPlus, GradeC, GradeD, GradeF:
		return true
	default:
		return false
	}
}

// String returns the string representation of the grade.
func (g Grade) String() string {
	return string(g)
}

// Index returns the position of the level in the worst-to-best ordering,
// or -1 for an unrecognized level.
func (cl ConditionLevel) Index() int {
	for i, level := range conditionOrder {
		if level == cl {
			return i
		}
	}
	return -1
}

// IsAdjacent reports whether two condition levels are at most one band
// apart. Unrecognized levels are never adjacent.
func (cl ConditionLevel) IsAdjacent(other ConditionLevel) bool {
	i, j := cl.Index(), other.Index()
	if i < 0 || j < 0 {
		return false
	}
	diff := i - j
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1
}

// IsValid validates the condition level.
func (cl ConditionLevel) IsValid() bool {
	return cl.Index() >= 0
}

// String returns the string representation of the condition level.
func (cl ConditionLevel) String() string {
	return string(cl)
}

// IsValid validates the analysis mode.
func (m AnalysisMode) IsValid() bool {
	switch m {
	case ModeDirectAPI, ModeChainFramework, ModeFineTuned:
		return true
	default:
		return false
	}
}

// String returns the string representation of the analysis mode.
func (m AnalysisMode) String() string {
	return string(m)
}

// IsValid validates the intensity level.
func (il IntensityLevel) IsValid() bool {
	switch il {
	case IntensityHigh, IntensityMid, IntensityLow:
		return true
	default:
		return false
	}
}

// String returns the string representation of the intensity level.
func (il IntensityLevel) String() string {
	return string(il)
}

// Factor returns the numeric intensity factor paired with each tier.
func (il IntensityLevel) Factor() float64 {
	switch il {
	case IntensityHigh:
		return 0.9
	case IntensityMid:
		return 0.6
	default:
		return 0.3
	}
}

// IntensityForScore maps a health score onto the 3-tier recommendation:
// >=70 high, >=50 mid, else low.
func IntensityForScore(score int) IntensityLevel {
	switch {
	case score >= 70:
		return IntensityHigh
	case score >= 50:
		return IntensityMid
	default:
		return IntensityLow
	}
}
