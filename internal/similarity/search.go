// Package similarity finds historical days whose biometrics resemble
// today's snapshot. Results are illustrative prompt context only; the
// deterministic score computation never consumes them.
package similarity

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/health-coach-server/internal/domain"
)

// Searcher ranks a user's stored daily summaries by cosine similarity of
// a numeric feature vector over sleep, steps, resting heart rate, and
// active calories.
type Searcher struct {
	store  domain.SummaryStore
	cache  *resultCache
	config domain.SimilarityConfig
	logger *logrus.Logger
}

// How many recent summaries feed each search.
const searchWindow = 60

// Feature scales keep one dimension from dominating the cosine: hours,
// thousands of steps, bpm/10, hundreds of kcal.
var featureScales = [4]float64{1, 1000, 10, 100}

// NewSearcher creates a similarity searcher over the summary store.
func NewSearcher(store domain.SummaryStore, config domain.SimilarityConfig, cacheConfig *domain.CacheConfig, logger *logrus.Logger) *Searcher {
	return &Searcher{
		store:  store,
		cache:  newResultCache(cacheConfig, logger),
		config: config,
		logger: logger,
	}
}

// FindSimilarDays returns the topK most similar stored days for a user.
// topK <= 0 falls back to the configured default.
func (s *Searcher) FindSimilarDays(ctx context.Context, userID string, snapshot *domain.BiometricSnapshot, topK int) ([]domain.SimilarDay, error) {
	if topK <= 0 {
		topK = s.config.TopK
	}
	if topK <= 0 {
		topK = 3
	}

	key := cacheKey(userID, snapshot, topK)
	if days, ok := s.cache.get(ctx, key); ok {
		return days, nil
	}

	summaries, err := s.store.ListSummaries(ctx, userID, searchWindow)
	if err != nil {
		return nil, fmt.Errorf("listing summaries: %w", err)
	}

	query := snapshotVector(snapshot)
	days := make([]domain.SimilarDay, 0, len(summaries))
	for _, summary := range summaries {
		// Skip today itself so the past context stays historical.
		if summary.Date == snapshot.Date && snapshot.Date != "" {
			continue
		}
		sim := cosine(query, summaryVector(&summary))
		if math.IsNaN(sim) {
			continue
		}
		days = append(days, domain.SimilarDay{
			Summary:    summary,
			Similarity: sim,
			Strength:   s.strengthFor(sim),
		})
	}

	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Similarity > days[j].Similarity
	})
	if len(days) > topK {
		days = days[:topK]
	}

	s.cache.set(ctx, key, days)

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"matches": len(days),
		"top_k":   topK,
	}).Debug("Completed similarity search")

	return days, nil
}

func (s *Searcher) strengthFor(similarity float64) string {
	threshold := s.config.StrongThreshold
	if threshold <= 0 {
		threshold = 0.85
	}
	if similarity >= threshold {
		return "strong"
	}
	return "weak"
}

func cacheKey(userID string, snapshot *domain.BiometricSnapshot, topK int) string {
	return fmt.Sprintf("sim:%s:%.1f:%d:%d:%d:%d",
		userID, snapshot.SleepHours, snapshot.Steps, snapshot.RestingHeartRate, snapshot.ActiveCalories, topK)
}

func snapshotVector(s *domain.BiometricSnapshot) [4]float64 {
	return scaled(s.SleepHours, float64(s.Steps), float64(s.RestingHeartRate), float64(s.ActiveCalories))
}

func summaryVector(s *domain.DailySummary) [4]float64 {
	return scaled(s.SleepHours, float64(s.Steps), float64(s.RestingHR), float64(s.ActiveCalories))
}

func scaled(sleep, steps, rhr, calories float64) [4]float64 {
	return [4]float64{
		sleep / featureScales[0],
		steps / featureScales[1],
		rhr / featureScales[2],
		calories / featureScales[3],
	}
}

// cosine returns NaN when either vector is all zeros.
func cosine(a, b [4]float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
