package service

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/health-coach-server/internal/domain"
)

// RoutineBuilder greedily packs exercise sets into a time-boxed routine.
// Termination is guaranteed by a hard iteration bound regardless of pool
// composition.
type RoutineBuilder struct {
	logger *logrus.Logger
}

// Tolerance band around the requested duration and the packing iteration
// bound. The closest-MET fallback always keeps 4 candidates.
const (
	toleranceLow   = 0.8
	toleranceHigh  = 1.2
	maxIterations  = 20
	fallbackPoolSz = 4
	minSets        = 2
)

// NewRoutineBuilder creates a new routine builder
func NewRoutineBuilder(logger *logrus.Logger) *RoutineBuilder {
	return &RoutineBuilder{logger: logger}
}

// Build assembles a routine for the given score, requested duration, and
// body weight. The pool is filtered to the settings' MET band; when the
// filter comes up empty, the 4 exercises closest to the band midpoint are
// used instead. Exhausting the iteration bound before reaching 80% of the
// target is accepted degradation, not an error.
func (b *RoutineBuilder) Build(score, durationMin int, weightKg float64, settings domain.ExerciseSettings) *domain.Routine {
	pool := b.filterPool(SelectPool(score), settings)
	targetSec := durationMin * 60

	routine := &domain.Routine{Items: make([]domain.RoutineItem, 0, 8)}
	if len(pool) == 0 || targetSec <= 0 {
		return routine
	}

	lowBound := float64(targetSec) * toleranceLow
	highBound := float64(targetSec) * toleranceHigh

	totalSec := 0
	for idx := 0; float64(totalSec) < lowBound && idx < maxIterations; idx++ {
		ex := pool[idx%len(pool)]
		sets := settings.BaseSets
		itemTime := itemDuration(settings.DurationSec, settings.RestSec, sets)

		if float64(totalSec+itemTime) > highBound {
			// Shrink this item's set count to what fits in the time left
			// to the target; stop entirely once even the minimum
			// overflows the upper tolerance.
			remaining := targetSec - totalSec
			sets = remaining / (settings.DurationSec + settings.RestSec)
			if sets < minSets {
				sets = minSets
			}
			itemTime = itemDuration(settings.DurationSec, settings.RestSec, sets)
			if float64(totalSec+itemTime) > highBound {
				break
			}
		}

		routine.Items = append(routine.Items, domain.RoutineItem{
			Name:        ex.Name,
			Categories:  ex.Categories,
			Difficulty:  ex.Difficulty,
			MET:         ex.MET,
			DurationSec: settings.DurationSec,
			RestSec:     settings.RestSec,
			Sets:        sets,
		})
		totalSec += itemTime
	}

	metSum := 0.0
	for _, item := range routine.Items {
		metSum += item.MET
	}
	divisor := len(routine.Items)
	if divisor < 1 {
		divisor = 1
	}
	avgMET := metSum / float64(divisor)

	routine.TotalSec = totalSec
	routine.TotalTimeMin = int(math.Round(float64(totalSec) / 60))
	routine.AvgMET = avgMET
	routine.TotalCalories = CalculateCalories(avgMET, weightKg, totalSec, settings.CalorieMultiplier)

	b.logger.WithFields(logrus.Fields{
		"score":      score,
		"target_sec": targetSec,
		"total_sec":  totalSec,
		"items":      len(routine.Items),
		"calories":   routine.TotalCalories,
	}).Debug("Assembled exercise routine")

	return routine
}

// itemDuration is the wall time of one scheduled item: sets of work with
// rest between sets (none after the last).
func itemDuration(durationSec, restSec, sets int) int {
	if sets <= 0 {
		return 0
	}
	return durationSec*sets + restSec*(sets-1)
}

// filterPool keeps exercises inside the MET band, falling back to the
// 4 closest to the band midpoint when none qualify.
func (b *RoutineBuilder) filterPool(pool []domain.ExerciseDefinition, settings domain.ExerciseSettings) []domain.ExerciseDefinition {
	filtered := make([]domain.ExerciseDefinition, 0, len(pool))
	for _, ex := range pool {
		if ex.MET >= settings.METMin && ex.MET <= settings.METMax {
			filtered = append(filtered, ex)
		}
	}
	if len(filtered) > 0 {
		return filtered
	}

	mid := (settings.METMin + settings.METMax) / 2
	sorted := make([]domain.ExerciseDefinition, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].MET-mid) < math.Abs(sorted[j].MET-mid)
	})
	if len(sorted) > fallbackPoolSz {
		sorted = sorted[:fallbackPoolSz]
	}

	b.logger.WithFields(logrus.Fields{
		"met_min":   settings.METMin,
		"met_max":   settings.METMax,
		"fallbacks": len(sorted),
	}).Debug("MET band filter empty, using closest exercises")

	return sorted
}
