// Package history records mood analyses and summarizes them.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-moodify/internal/mood"
)

// ErrUnknownSource is returned when an analysis has an unsupported source.
var ErrUnknownSource = errors.New("unknown analysis source")

// Source is the kind of signal an analysis was derived from.
type Source string

// Analysis sources.
const (
	SourceText  Source = "text"
	SourceVoice Source = "voice"
	SourceFace  Source = "face"
)

// Valid reports whether s is a supported source.
func (s Source) Valid() bool {
	switch s {
	case SourceText, SourceVoice, SourceFace:
		return true
	}
	return false
}

// Analysis is one recorded classification.
type Analysis struct {
	ID         uuid.UUID           `json:"id"`
	Source     Source              `json:"source"`
	Mood       mood.Label          `json:"mood"`
	Confidence float64             `json:"confidence"`
	Voice      *mood.VoiceFeatures `json:"voice,omitempty"` // set for voice analyses only
	CreatedAt  time.Time           `json:"createdAt"`
}

// Store persists analyses.
type Store interface {
	// Save inserts a new analysis.
	Save(ctx context.Context, a Analysis) error
	// Recent returns up to limit analyses, newest first.
	Recent(ctx context.Context, limit int) ([]Analysis, error)
	// Counts returns the number of analyses per mood.
	Counts(ctx context.Context) (map[mood.Label]int, error)
	// VoiceSamples returns up to limit voice analyses, newest first.
	VoiceSamples(ctx context.Context, limit int) ([]Analysis, error)
}
