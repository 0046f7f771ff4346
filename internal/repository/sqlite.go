// Package repository persists daily summaries behind the
// domain.SummaryStore interface, with an embedded SQLite default and a
// Postgres option for shared deployments.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/health-coach-server/internal/domain"
)

// SQLiteStore implements domain.SummaryStore using an embedded SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates the summary store, creating the database file and
// schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanSummary scans a row into a DailySummary.
func scanSummary(s scanner) (*domain.DailySummary, error) {
	summary := &domain.DailySummary{}
	var grade string

	err := s.Scan(
		&summary.ID, &summary.UserID, &summary.Date,
		&summary.SleepHours, &summary.Steps, &summary.RestingHR,
		&summary.ActiveCalories, &summary.Score, &grade,
		&summary.Summary, &summary.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	summary.Grade = domain.Grade(grade)
	return summary, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS daily_summaries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		sleep_hours REAL NOT NULL DEFAULT 0,
		steps INTEGER NOT NULL DEFAULT 0,
		resting_hr INTEGER NOT NULL DEFAULT 0,
		active_calories INTEGER NOT NULL DEFAULT 0,
		score INTEGER NOT NULL DEFAULT 0,
		grade TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_summaries_user ON daily_summaries(user_id);
	CREATE INDEX IF NOT EXISTS idx_summaries_date ON daily_summaries(date);
	`

	_, err := db.Exec(schema)
	return err
}

const summaryColumns = `id, user_id, date, sleep_hours, steps, resting_hr,
		active_calories, score, grade, summary, created_at`

// SaveSummary stores or updates the summary for a user and date. One
// summary per calendar day; a re-upload replaces the stored digest.
func (s *SQLiteStore) SaveSummary(ctx context.Context, summary *domain.DailySummary) error {
	now := time.Now()

	var existingID string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM daily_summaries WHERE user_id = ? AND date = ?",
		summary.UserID, summary.Date,
	).Scan(&existingID)

	if err == nil {
		summary.ID = existingID
		_, err = s.db.ExecContext(ctx, `
			UPDATE daily_summaries SET
				sleep_hours = ?,
				steps = ?,
				resting_hr = ?,
				active_calories = ?,
				score = ?,
				grade = ?,
				summary = ?
			WHERE id = ?
		`,
			summary.SleepHours,
			summary.Steps,
			summary.RestingHR,
			summary.ActiveCalories,
			summary.Score,
			string(summary.Grade),
			summary.Summary,
			existingID,
		)
		return err
	}

	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check existing: %w", err)
	}

	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}
	summary.CreatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO daily_summaries (
			id, user_id, date, sleep_hours, steps, resting_hr,
			active_calories, score, grade, summary, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
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
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	return nil
}

// GetSummary retrieves one summary by id.
func (s *SQLiteStore) GetSummary(ctx context.Context, id string) (*domain.DailySummary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+summaryColumns+`
		FROM daily_summaries
		WHERE id = ?
		LIMIT 1
	`, id)

	summary, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return summary, nil
}

// ListSummaries returns a user's most recent summaries, newest first.
func (s *SQLiteStore) ListSummaries(ctx context.Context, userID string, limit int) ([]domain.DailySummary, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+summaryColumns+`
		FROM daily_summaries
		WHERE user_id = ?
		ORDER BY date DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []domain.DailySummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, *summary)
	}
	return result, rows.Err()
}

// Count returns the total number of stored summaries.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM daily_summaries").Scan(&count)
	return count, err
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
