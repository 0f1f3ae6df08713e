package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/go-moodify/internal/history"
	"github.com/justestif/go-moodify/internal/mood"
)

// AnalysisRepository handles mood analysis database operations.
type AnalysisRepository struct {
	pool *pgxpool.Pool
}

var _ history.Store = (*AnalysisRepository)(nil)

// Save inserts a new analysis.
func (r *AnalysisRepository) Save(ctx context.Context, a history.Analysis) error {
	row := rowFromAnalysis(a)
	query := `
		INSERT INTO mood_analyses (id, source, mood, confidence, pitch, energy, tempo, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		row.ID,
		row.Source,
		row.Mood,
		row.Confidence,
		row.Pitch,
		row.Energy,
		row.Tempo,
		row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting analysis: %w", err)
	}
	return nil
}

// Recent returns up to limit analyses, newest first.
func (r *AnalysisRepository) Recent(ctx context.Context, limit int) ([]history.Analysis, error) {
	query := `
		SELECT id, source, mood, confidence, pitch, energy, tempo, created_at
		FROM mood_analyses
		ORDER BY created_at DESC
		LIMIT $1
	`
	return r.query(ctx, query, limit)
}

// VoiceSamples returns up to limit voice analyses, newest first.
func (r *AnalysisRepository) VoiceSamples(ctx context.Context, limit int) ([]history.Analysis, error) {
	query := `
		SELECT id, source, mood, confidence, pitch, energy, tempo, created_at
		FROM mood_analyses
		WHERE pitch IS NOT NULL AND energy IS NOT NULL AND tempo IS NOT NULL
		ORDER BY created_at DESC
		LIMIT $1
	`
	return r.query(ctx, query, limit)
}

// Counts returns the number of analyses per mood.
func (r *AnalysisRepository) Counts(ctx context.Context) (map[mood.Label]int, error) {
	query := `SELECT mood, COUNT(*) FROM mood_analyses GROUP BY mood`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("counting analyses: %w", err)
	}
	defer rows.Close()

	counts := make(map[mood.Label]int)
	for rows.Next() {
		var (
			label string
			count int64
		)
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[mood.Label(label)] = int(count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counts: %w", err)
	}
	return counts, nil
}

func (r *AnalysisRepository) query(ctx context.Context, query string, args ...any) ([]history.Analysis, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	analyses := []history.Analysis{}
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, row.Analysis())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating analyses: %w", err)
	}
	return analyses, nil
}

func scanRow(rows pgx.Rows) (AnalysisRow, error) {
	var row AnalysisRow
	err := rows.Scan(
		&row.ID,
		&row.Source,
		&row.Mood,
		&row.Confidence,
		&row.Pitch,
		&row.Energy,
		&row.Tempo,
		&row.CreatedAt,
	)
	if err != nil {
		return AnalysisRow{}, fmt.Errorf("scanning analysis: %w", err)
	}
	return row, nil
}
