package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/health-coach-server/internal/domain"
)

// HealthInterpreter converts a day's raw biometric snapshot into a composite
// health score, six-level grade, and per-domain sub-assessments. All methods
// are pure over the snapshot: no I/O, no failure modes. Missing metrics
// (zero values) degrade to unknown sub-assessments instead of erroring.
type HealthInterpreter struct {
	logger *logrus.Logger
}

// NewHealthInterpreter creates a new rule-based health interpreter
func NewHealthInterpreter(logger *logrus.Logger) *HealthInterpreter {
	return &HealthInterpreter{logger: logger}
}

// Interpret derives a full HealthAssessment from one snapshot.
func (h *HealthInterpreter) Interpret(snapshot *domain.BiometricSnapshot) *domain.HealthAssessment {
	sleep := h.assessSleep(snapshot.SleepHours)
	activity := h.assessActivity(snapshot.Steps)
	heartRate := h.assessHeartRate(snapshot.RestingHeartRate, snapshot.AvgHeartRate)
	bmi := h.assessBMI(snapshot.BMI)
	oxygen := h.assessOxygen(snapshot.OxygenSaturation)

	score, factors := h.computeScore(snapshot)
	grade := domain.GradeForScore(score)
	level := domain.IntensityForScore(score)

	assessment := &domain.HealthAssessment{
		Score:     score,
		Grade:     grade,
		GradeText: grade.Label(),
		Factors:   factors,
		Sleep:     sleep,
		Activity:  activity,
		HeartRate: heartRate,
		BMI:       bmi,
		Oxygen:    oxygen,
		Intensity: domain.IntensityRecommendation{
			Level:  level,
			Factor: level.Factor(),
		},
	}

	h.logger.WithFields(logrus.Fields{
		"score":     score,
		"grade":     grade.String(),
		"sleep":     string(sleep.Status),
		"activity":  string(activity.Level),
		"fitness":   string(heartRate.Fitness),
		"intensity": level.String(),
	}).Debug("Completed health interpretation")

	return assessment
}

// computeScore applies the additive scoring rules on a baseline of 50.
// Each adjustment fires only when the metric is present (>0); the result
// is clamped to [0,100]. Sleep between 5-6h or above 9h and steps between
// 3000-7000 contribute nothing.
func (h *HealthInterpreter) computeScore(s *domain.BiometricSnapshot) (int, []string) {
	score := 50
	factors := make([]string, 0, 4)

	if s.SleepHours > 0 {
		switch {
		case s.SleepHours >= 7 && s.SleepHours <= 9:
			score += 15
			factors = append(factors, fmt.Sprintf("optimal sleep %.1fh (+15)", s.SleepHours))
		case s.SleepHours >= 6:
			score += 10
			factors = append(factors, fmt.Sprintf("fair sleep %.1fh (+10)", s.SleepHours))
		case s.SleepHours < 5:
			score -= 10
			factors = append(factors, fmt.Sprintf("critical sleep %.1fh (-10)", s.SleepHours))
		}
	}

	if s.Steps > 0 {
		switch {
		case s.Steps >= 10000:
			score += 15
			factors = append(factors, fmt.Sprintf("very active %d steps (+15)", s.Steps))
		case s.Steps >= 7000:
			score += 10
			factors = append(factors, fmt.Sprintf("active %d steps (+10)", s.Steps))
		case s.Steps < 3000:
			score -= 5
			factors = append(factors, fmt.Sprintf("sedentary %d steps (-5)", s.Steps))
		}
	}

	if s.RestingHeartRate > 0 {
		switch {
		case s.RestingHeartRate >= 50 && s.RestingHeartRate < 70:
			score += 10
			factors = append(factors, fmt.Sprintf("healthy resting HR %d (+10)", s.RestingHeartRate))
		case s.RestingHeartRate >= 90:
			score -= 5
			factors = append(factors, fmt.Sprintf("elevated resting HR %d (-5)", s.RestingHeartRate))
		}
	}

	if s.BMI > 0 {
		switch {
		case s.BMI >= 18.5 && s.BMI < 23:
			score += 10
			factors = append(factors, fmt.Sprintf("normal BMI %.1f (+10)", s.BMI))
		case s.BMI >= 25:
			score -= 5
			factors = append(factors, fmt.Sprintf("high BMI %.1f (-5)", s.BMI))
		}
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return score, factors
}

// assessSleep classifies sleep duration into half-open bands,
// lower-inclusive.
func (h *HealthInterpreter) assessSleep(hours float64) domain.SleepAssessment {
	a := domain.SleepAssessment{Hours: hours}

	switch {
	case hours <= 0:
		a.Status = domain.SleepUnknown
		a.Message = "No sleep data recorded"
		a.Recommendation = "Wear the device overnight to track sleep"
	case hours < 5:
		a.Status = domain.SleepCritical
		a.Message = fmt.Sprintf("Severely short sleep at %.1f hours", hours)
		a.Recommendation = "Prioritize at least 7 hours of sleep tonight"
	case hours < 6:
		a.Status = domain.SleepWarning
		a.Message = fmt.Sprintf("Short sleep at %.1f hours", hours)
		a.Recommendation = "Aim to add an hour of sleep"
	case hours < 7:
		a.Status = domain.SleepFair
		a.Message = fmt.Sprintf("Slightly short sleep at %.1f hours", hours)
		a.Recommendation = "Close to optimal; target 7-9 hours"
	case hours <= 9:
		a.Status = domain.SleepGood
		a.Message = fmt.Sprintf("Optimal sleep at %.1f hours", hours)
		a.Recommendation = "Keep your current sleep schedule"
	default:
		a.Status = domain.SleepOver
		a.Message = fmt.Sprintf("Extended sleep at %.1f hours", hours)
		a.Recommendation = "Oversleeping can indicate fatigue; watch your energy levels"
	}

	return a
}

// assessActivity classifies the day's step count.
func (h *HealthInterpreter) assessActivity(steps int) domain.ActivityAssessment {
	a := domain.ActivityAssessment{Steps: steps}

	switch {
	case steps <= 0:
		a.Level = domain.ActivityNoData
		a.Message = "No step data recorded"
		a.Recommendation = "Carry the device to track activity"
	case steps < 3000:
		a.Level = domain.ActivitySedentary
		a.Message = fmt.Sprintf("Sedentary day with %d steps", steps)
		a.Recommendation = "Add a short walk to reach 5,000 steps"
	case steps < 5000:
		a.Level = domain.ActivityLow
		a.Message = fmt.Sprintf("Light activity with %d steps", steps)
		a.Recommendation = "Work toward 7,500 steps"
	case steps < 7500:
		a.Level = domain.ActivityModerate
		a.Message = fmt.Sprintf("Moderate activity with %d steps", steps)
		a.Recommendation = "A brisk evening walk would push you to active"
	case steps < 10000:
		a.Level = domain.ActivityActive
		a.Message = fmt.Sprintf("Active day with %d steps", steps)
		a.Recommendation = "Great pace; 10,000 is within reach"
	default:
		a.Level = domain.ActivityVeryActive
		a.Message = fmt.Sprintf("Very active day with %d steps", steps)
		a.Recommendation = "Excellent activity level; remember to recover"
	}

	return a
}

// assessHeartRate classifies cardiovascular fitness. Uses resting HR when
// measured, otherwise max(50, avg-15) as a proxy.
func (h *HealthInterpreter) assessHeartRate(restingHR, avgHR int) domain.HeartRateAssessment {
	if restingHR <= 0 && avgHR <= 0 {
		return domain.HeartRateAssessment{
			Fitness: domain.FitnessUnknown,
			Message: "No heart rate data recorded",
		}
	}

	checkHR := restingHR
	if checkHR <= 0 {
		checkHR = avgHR - 15
		if checkHR < 50 {
			checkHR = 50
		}
	}

	a := domain.HeartRateAssessment{CheckHR: checkHR}

	switch {
	case checkHR < 50:
		a.Fitness = domain.FitnessAthlete
		a.Message = fmt.Sprintf("Athlete-level resting heart rate at %d bpm", checkHR)
	case checkHR < 60:
		a.Fitness = domain.FitnessExcellent
		a.Message = fmt.Sprintf("Excellent cardiovascular fitness at %d bpm", checkHR)
	case checkHR < 70:
		a.Fitness = domain.FitnessGood
		a.Message = fmt.Sprintf("Good cardiovascular fitness at %d bpm", checkHR)
	case checkHR < 80:
		a.Fitness = domain.FitnessAverage
		a.Message = fmt.Sprintf("Average cardiovascular fitness at %d bpm", checkHR)
	case checkHR < 90:
		a.Fitness = domain.FitnessBelowAverage
		a.Message = fmt.Sprintf("Below-average cardiovascular fitness at %d bpm", checkHR)
	default:
		a.Fitness = domain.FitnessPoor
		a.Message = fmt.Sprintf("Elevated resting heart rate at %d bpm", checkHR)
	}

	return a
}

// assessBMI classifies body mass index with the Asian-Pacific cutoffs.
func (h *HealthInterpreter) assessBMI(bmi float64) domain.BMIAssessment {
	a := domain.BMIAssessment{BMI: bmi}

	switch {
	case bmi <= 0:
		a.Category = domain.BMIUnknown
		a.Message = "No BMI data recorded"
	case bmi < 18.5:
		a.Category = domain.BMIUnderweight
		a.Message = fmt.Sprintf("Underweight at BMI %.1f", bmi)
	case bmi < 23:
		a.Category = domain.BMINormal
		a.Message = fmt.Sprintf("Normal weight at BMI %.1f", bmi)
	case bmi < 25:
		a.Category = domain.BMIOverweight
		a.Message = fmt.Sprintf("Overweight at BMI %.1f", bmi)
	default:
		a.Category = domain.BMIObese
		a.Message = fmt.Sprintf("Obese range at BMI %.1f", bmi)
	}

	return a
}

// assessOxygen classifies blood oxygen saturation.
func (h *HealthInterpreter) assessOxygen(saturation int) domain.OxygenAssessment {
	a := domain.OxygenAssessment{Saturation: saturation}

	switch {
	case saturation <= 0:
		a.Status = domain.OxygenUnknown
		a.Message = "No oxygen saturation data recorded"
	case saturation >= 95:
		a.Status = domain.OxygenNormal
		a.Message = fmt.Sprintf("Normal oxygen saturation at %d%%", saturation)
	default:
		a.Status = domain.OxygenWarning
		a.Message = fmt.Sprintf("Low oxygen saturation at %d%%", saturation)
	}

	return a
}

// CheckDataQuality reports how complete a snapshot is. High needs all four
// core metrics, medium at least two.
func (h *HealthInterpreter) CheckDataQuality(s *domain.BiometricSnapshot) domain.DataQuality {
	q := domain.DataQuality{
		HasSleep:     s.SleepHours > 0,
		HasSteps:     s.Steps > 0,
		HasHeartRate: s.RestingHeartRate > 0 || s.AvgHeartRate > 0,
		HasBMI:       s.BMI > 0,
	}

	present := 0
	for _, ok := range []bool{q.HasSleep, q.HasSteps, q.HasHeartRate, q.HasBMI} {
		if ok {
			present++
		}
	}
	if !q.HasSleep {
		q.MissingFields = append(q.MissingFields, "sleep_hr")
	}
	if !q.HasSteps {
		q.MissingFields = append(q.MissingFields, "steps")
	}
	if !q.HasHeartRate {
		q.MissingFields = append(q.MissingFields, "heart_rate")
	}
	if !q.HasBMI {
		q.MissingFields = append(q.MissingFields, "bmi")
	}

	switch {
	case present == 4:
		q.Level = domain.DataQualityHigh
	case present >= 2:
		q.Level = domain.DataQualityMedium
	default:
		q.Level = domain.DataQualityLow
	}

	return q
}
