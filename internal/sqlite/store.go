// Package sqlite provides a SQLite-backed history store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/justestif/go-moodify/internal/history"
	"github.com/justestif/go-moodify/internal/mood"
)

// Store implements history.Store on a SQLite database file.
type Store struct {
	db *sql.DB
}

var _ history.Store = (*Store)(nil)

// NewStore opens the database at path and creates its tables.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS mood_analyses (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		mood TEXT NOT NULL,
		confidence REAL NOT NULL,
		pitch REAL,
		energy REAL,
		tempo REAL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS mood_analyses_created_at_idx ON mood_analyses (created_at DESC);
	`
	_, err := s.db.Exec(query)
	return err
}

// Save inserts a new analysis.
func (s *Store) Save(ctx context.Context, a history.Analysis) error {
	var pitch, energy, tempo sql.NullFloat64
	if a.Voice != nil {
		pitch = sql.NullFloat64{Float64: a.Voice.Pitch, Valid: true}
		energy = sql.NullFloat64{Float64: a.Voice.Energy, Valid: true}
		tempo = sql.NullFloat64{Float64: a.Voice.Tempo, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mood_analyses (id, source, mood, confidence, pitch, energy, tempo, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID.String(), string(a.Source), string(a.Mood), a.Confidence, pitch, energy, tempo, a.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

// Recent returns up to limit analyses, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]history.Analysis, error) {
	return s.query(ctx, `
		SELECT id, source, mood, confidence, pitch, energy, tempo, created_at
		FROM mood_analyses
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
}

// VoiceSamples returns up to limit voice analyses, newest first.
func (s *Store) VoiceSamples(ctx context.Context, limit int) ([]history.Analysis, error) {
	return s.query(ctx, `
		SELECT id, source, mood, confidence, pitch, energy, tempo, created_at
		FROM mood_analyses
		WHERE pitch IS NOT NULL AND energy IS NOT NULL AND tempo IS NOT NULL
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
}

// Counts returns the number of analyses per mood.
func (s *Store) Counts(ctx context.Context) (map[mood.Label]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT mood, COUNT(*) FROM mood_analyses GROUP BY mood")
	if err != nil {
		return nil, fmt.Errorf("failed to count analyses: %w", err)
	}
	defer rows.Close()

	counts := make(map[mood.Label]int)
	for rows.Next() {
		var (
			label string
			count int
		)
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[mood.Label(label)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate counts: %w", err)
	}
	return counts, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]history.Analysis, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load analyses: %w", err)
	}
	defer rows.Close()

	analyses := []history.Analysis{}
	for rows.Next() {
		var (
			id, source, label    string
			confidence           float64
			pitch, energy, tempo sql.NullFloat64
			createdAt            int64
		)
		if err := rows.Scan(&id, &source, &label, &confidence, &pitch, &energy, &tempo, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}

		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("failed to parse analysis id %q: %w", id, err)
		}

		a := history.Analysis{
			ID:         parsed,
			Source:     history.Source(source),
			Mood:       mood.Label(label),
			Confidence: confidence,
			CreatedAt:  time.Unix(0, createdAt).UTC(),
		}
		if pitch.Valid && energy.Valid && tempo.Valid {
			a.Voice = &mood.VoiceFeatures{Pitch: pitch.Float64, Energy: energy.Float64, Tempo: tempo.Float64}
		}
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}
	return analyses, nil
}
