package similarity

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/health-coach-server/internal/domain"
)

type memoryStore struct {
	summaries []domain.DailySummary
	err       error
	calls     int
}

func (m *memoryStore) SaveSummary(ctx context.Context, s *domain.DailySummary) error { return nil }
func (m *memoryStore) GetSummary(ctx context.Context, id string) (*domain.DailySummary, error) {
	return nil, domain.ErrNotFound
}
func (m *memoryStore) ListSummaries(ctx context.Context, userID string, limit int) ([]domain.DailySummary, error) {
	m.calls++
	return m.summaries, m.err
}
func (m *memoryStore) Close() error { return nil }

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestSearcher(store domain.SummaryStore) *Searcher {
	return NewSearcher(store,
		domain.SimilarityConfig{TopK: 3, StrongThreshold: 0.85},
		&domain.CacheConfig{LocalSize: 16, LocalTTL: time.Minute},
		testLogger())
}

func day(date string, sleep float64, steps, rhr, calories int) domain.DailySummary {
	return domain.DailySummary{
		ID: "id-" + date, UserID: "user-1", Date: date,
		SleepHours: sleep, Steps: steps, RestingHR: rhr, ActiveCalories: calories,
	}
}

func TestFindSimilarDaysRanksByCosine(t *testing.T) {
	store := &memoryStore{summaries: []domain.DailySummary{
		day("2026-08-20", 7.5, 8500, 62, 420), // near-identical to query
		day("2026-08-21", 3.0, 1000, 95, 50),  // very different profile
		day("2026-08-22", 7.0, 8000, 60, 400), // close
	}}
	searcher := newTestSearcher(store)

	snapshot := &domain.BiometricSnapshot{SleepHours: 7.5, Steps: 8500, RestingHeartRate: 62, ActiveCalories: 420}
	got, err := searcher.FindSimilarDays(context.Background(), "user-1", snapshot, 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(got))
	}
	if got[0].Summary.Date != "2026-08-20" {
		t.Errorf("Expected the identical day first, got %s", got[0].Summary.Date)
	}
	if math.Abs(got[0].Similarity-1.0) > 1e-9 {
		t.Errorf("Expected similarity 1.0 for identical vectors, got %v", got[0].Similarity)
	}
	if got[0].Strength != "strong" {
		t.Errorf("Expected strong match, got %s", got[0].Strength)
	}
	if got[2].Summary.Date != "2026-08-21" {
		t.Errorf("Expected the dissimilar day last, got %s", got[2].Summary.Date)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Similarity > got[i-1].Similarity {
			t.Error("Results not sorted by similarity")
		}
	}
}

func TestFindSimilarDaysTopK(t *testing.T) {
	store := &memoryStore{summaries: []domain.DailySummary{
		day("2026-08-20", 7, 8000, 60, 400),
		day("2026-08-21", 6, 7000, 65, 350),
		day("2026-08-22", 8, 9000, 58, 450),
		day("2026-08-23", 5, 4000, 70, 200),
	}}
	searcher := newTestSearcher(store)

	snapshot := &domain.BiometricSnapshot{SleepHours: 7, Steps: 8000, RestingHeartRate: 60, ActiveCalories: 400}
	got, err := searcher.FindSimilarDays(context.Background(), "user-1", snapshot, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 results, got %d", len(got))
	}
}

func TestFindSimilarDaysExcludesToday(t *testing.T) {
	store := &memoryStore{summaries: []domain.DailySummary{
		day("2026-08-26", 7.5, 8500, 62, 420),
		day("2026-08-20", 7.0, 8000, 60, 400),
	}}
	searcher := newTestSearcher(store)

	snapshot := &domain.BiometricSnapshot{Date: "2026-08-26", SleepHours: 7.5, Steps: 8500, RestingHeartRate: 62, ActiveCalories: 420}
	got, err := searcher.FindSimilarDays(context.Background(), "user-1", snapshot, 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, d := range got {
		if d.Summary.Date == "2026-08-26" {
			t.Error("Today's own summary must not appear in past context")
		}
	}
}

func TestFindSimilarDaysCachesResults(t *testing.T) {
	store := &memoryStore{summaries: []domain.DailySummary{
		day("2026-08-20", 7, 8000, 60, 400),
	}}
	searcher := newTestSearcher(store)

	snapshot := &domain.BiometricSnapshot{SleepHours: 7, Steps: 8000, RestingHeartRate: 60, ActiveCalories: 400}
	for i := 0; i < 3; i++ {
		if _, err := searcher.FindSimilarDays(context.Background(), "user-1", snapshot, 3); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	if store.calls != 1 {
		t.Errorf("Expected 1 store hit with warm cache, got %d", store.calls)
	}
}

func TestFindSimilarDaysStoreError(t *testing.T) {
	searcher := newTestSearcher(&memoryStore{err: errors.New("store down")})

	snapshot := &domain.BiometricSnapshot{SleepHours: 7}
	if _, err := searcher.FindSimilarDays(context.Background(), "user-1", snapshot, 3); err == nil {
		t.Fatal("Expected error from failing store")
	}
}

func TestCosineZeroVectorSkipped(t *testing.T) {
	store := &memoryStore{summaries: []domain.DailySummary{
		day("2026-08-20", 0, 0, 0, 0),
		day("2026-08-21", 7, 8000, 60, 400),
	}}
	searcher := newTestSearcher(store)

	snapshot := &domain.BiometricSnapshot{SleepHours: 7, Steps: 8000, RestingHeartRate: 60, ActiveCalories: 400}
	got, err := searcher.FindSimilarDays(context.Background(), "user-1", snapshot, 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected the all-zero day to be skipped, got %d results", len(got))
	}
	if got[0].Summary.Date != "2026-08-21" {
		t.Errorf("Unexpected surviving day %s", got[0].Summary.Date)
	}
}
