package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/health-coach-server/internal/database"
	"github.com/health-coach-server/internal/domain"
)

// PostgresStore implements domain.SummaryStore on a pgx connection pool.
// It expects the schema to already exist (created via migrations).
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a new PostgreSQL summary store.
func NewPostgresStore(db *database.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	return &PostgresStore{db: db}, nil
}

// SaveSummary stores or updates the summary for a user and date.
func (s *PostgresStore) SaveSummary(ctx context.Context, summary *domain.DailySummary) error {
	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}

	query := `
		INSERT INTO daily_summaries (
			id, user_id, date, sleep_hours, steps, resting_hr,
			active_calories, score, grade, summary
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, date) DO UPDATE SET
			sleep_hours = EXCLUDED.sleep_hours,
			steps = EXCLUDED.steps,
			resting_hr = EXCLUDED.resting_hr,
			active_calories = EXCLUDED.active_calories,
			score = EXCLUDED.score,
			grade = EXCLUDED.grade,
			summary = EXCLUDED.summary
		RETURNING id, created_at
	`

	err := s.db.Pool.QueryRow(ctx, query,
		summary.ID,
		summary.UserID,
		summary.Date,
		summary.SleepHours,
		summary.Steps,
		summary.RestingHR,
		summary.ActiveCalories,
		summary.Score,
		string(summary.Grade),
		summary.Summary,
	).Scan(&summary.ID, &summary.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	return nil
}

// GetSummary retrieves one summary by id.
func (s *PostgresStore) GetSummary(ctx context.Context, id string) (*domain.DailySummary, error) {
	query := `
		SELECT id, user_id, date, sleep_hours, steps, resting_hr,
			active_calories, score, grade, summary, created_at
		FROM daily_summaries
		WHERE id = $1
		LIMIT 1
	`

	summary := &domain.DailySummary{}
	var grade string

	err := s.db.Pool.QueryRow(ctx, query, id).Scan(
		&summary.ID, &summary.UserID, &summary.Date,
		&summary.SleepHours, &summary.Steps, &summary.RestingHR,
		&summary.ActiveCalories, &summary.Score, &grade,
		&summary.Summary, &summary.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	summary.Grade = domain.Grade(grade)
	return summary, nil
}

// ListSummaries returns a user's most recent summaries, newest first.
func (s *PostgresStore) ListSummaries(ctx context.Context, userID string, limit int) ([]domain.DailySummary, error) {
	if limit <= 0 {
		limit = 30
	}

	query := `
		SELECT id, user_id, date, sleep_hours, steps, resting_hr,
			active_calories, score, grade, summary, created_at
		FROM daily_summaries
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT $2
	`

	rows, err := s.db.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var result []domain.DailySummary
	for rows.Next() {
		summary := domain.DailySummary{}
		var grade string
		if err := rows.Scan(
			&summary.ID, &summary.UserID, &summary.Date,
			&summary.SleepHours, &summary.Steps, &summary.RestingHR,
			&summary.ActiveCalories, &summary.Score, &grade,
			&summary.Summary, &summary.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		summary.Grade = domain.Grade(grade)
		result = append(result, summary)
	}
	return result, rows.Err()
}

// Close closes the underlying pool.
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
