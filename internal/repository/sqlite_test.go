package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/health-coach-server/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "summaries.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSummary(userID, date string) *domain.DailySummary {
	return &domain.DailySummary{
		UserID:         userID,
		Date:           date,
		SleepHours:     7.5,
		Steps:          8500,
		RestingHR:      62,
		ActiveCalories: 420,
		Score:          90,
		Grade:          domain.GradeA,
		Summary:        "Strong day: optimal sleep, active, healthy resting HR.",
	}
}

func TestSaveAndGetSummary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	summary := sampleSummary("user-1", "2026-08-26")
	if err := store.SaveSummary(ctx, summary); err != nil {
		t.Fatalf("SaveSummary failed: %v", err)
	}
	if summary.ID == "" {
		t.Fatal("Expected generated summary ID")
	}

	got, err := store.GetSummary(ctx, summary.ID)
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}
	if got.UserID != "user-1" || got.Date != "2026-08-26" {
		t.Errorf("Unexpected summary identity: %s/%s", got.UserID, got.Date)
	}
	if got.Score != 90 || got.Grade != domain.GradeA {
		t.Errorf("Unexpected scoring fields: %d/%s", got.Score, got.Grade)
	}
	if got.SleepHours != 7.5 || got.Steps != 8500 {
		t.Errorf("Unexpected biometrics: %.1f/%d", got.SleepHours, got.Steps)
	}
}

func TestGetSummaryNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetSummary(context.Background(), "missing-id")
	if err != domain.ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSaveSummaryUpsertsByUserAndDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := sampleSummary("user-1", "2026-08-26")
	if err := store.SaveSummary(ctx, first); err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	second := sampleSummary("user-1", "2026-08-26")
	second.Score = 75
	second.Grade = domain.GradeB
	if err := store.SaveSummary(ctx, second); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Expected upsert to reuse ID %s, got %s", first.ID, second.ID)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 row after upsert, got %d", count)
	}

	got, err := store.GetSummary(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}
	if got.Score != 75 || got.Grade != domain.GradeB {
		t.Errorf("Expected updated fields, got %d/%s", got.Score, got.Grade)
	}
}

func TestListSummariesNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	dates := []string{"2026-08-20", "2026-08-22", "2026-08-21"}
	for _, d := range dates {
		if err := store.SaveSummary(ctx, sampleSummary("user-1", d)); err != nil {
			t.Fatalf("SaveSummary(%s) failed: %v", d, err)
		}
	}
	// Another user's rows must not leak in.
	if err := store.SaveSummary(ctx, sampleSummary("user-2", "2026-08-22")); err != nil {
		t.Fatalf("SaveSummary failed: %v", err)
	}

	got, err := store.ListSummaries(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("ListSummaries failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 summaries, got %d", len(got))
	}
	expected := []string{"2026-08-22", "2026-08-21", "2026-08-20"}
	for i, want := range expected {
		if got[i].Date != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, got[i].Date)
		}
	}
}

func TestListSummariesLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, d := range []string{"2026-08-20", "2026-08-21", "2026-08-22"} {
		if err := store.SaveSummary(ctx, sampleSummary("user-1", d)); err != nil {
			t.Fatalf("SaveSummary failed: %v", err)
		}
	}

	got, err := store.ListSummaries(ctx, "user-1", 2)
	if err != nil {
		t.Fatalf("ListSummaries failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 summaries, got %d", len(got))
	}
}
