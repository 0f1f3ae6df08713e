package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-moodify/internal/history"
	"github.com/justestif/go-moodify/internal/mood"
)

// AnalysisRow is one row of the mood_analyses table.
type AnalysisRow struct {
	ID         uuid.UUID
	Source     string
	Mood       string
	Confidence float64
	Pitch      *float64 // nullable, set for voice analyses
	Energy     *float64 // nullable
	Tempo      *float64 // nullable
	CreatedAt  time.Time
}

func rowFromAnalysis(a history.Analysis) AnalysisRow {
	row := AnalysisRow{
		ID:         a.ID,
		Source:     string(a.Source),
		Mood:       string(a.Mood),
		Confidence: a.Confidence,
		CreatedAt:  a.CreatedAt,
	}
	if a.Voice != nil {
		row.Pitch = &a.Voice.Pitch
		row.Energy = &a.Voice.Energy
		row.Tempo = &a.Voice.Tempo
	}
	return row
}

// Analysis converts the row back to a history.Analysis. Voice features are
// only restored when all three columns are present.
func (r AnalysisRow) Analysis() history.Analysis {
	a := history.Analysis{
		ID:         r.ID,
		Source:     history.Source(r.Source),
		Mood:       mood.Label(r.Mood),
		Confidence: r.Confidence,
		CreatedAt:  r.CreatedAt.UTC(),
	}
	if r.Pitch != nil && r.Energy != nil && r.Tempo != nil {
		a.Voice = &mood.VoiceFeatures{Pitch: *r.Pitch, Energy: *r.Energy, Tempo: *r.Tempo}
	}
	return a
}
