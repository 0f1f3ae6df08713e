package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/justestif/go-moodify/internal/clustering"
	"github.com/justestif/go-moodify/internal/mood"
)

const (
	// DefaultRecentLimit is used when Recent is called without a limit.
	DefaultRecentLimit = 20
	// MaxRecentLimit caps the number of analyses Recent returns.
	MaxRecentLimit = 100
	// MaxVoiceSamples caps how many voice analyses are clustered.
	MaxVoiceSamples = 1000
)

// LabelCount is the number of analyses that produced a label.
type LabelCount struct {
	Mood  mood.Label `json:"mood"`
	Count int        `json:"count"`
}

// Service records analyses and builds summaries over them.
type Service struct {
	store Store
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the time source used to stamp analyses.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a history service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record stores a new analysis. voice must be set for voice analyses only.
func (s *Service) Record(ctx context.Context, source Source, label mood.Label, confidence float64, voice *mood.VoiceFeatures) (Analysis, error) {
	if !source.Valid() {
		return Analysis{}, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	a := Analysis{
		ID:         uuid.New(),
		Source:     source,
		Mood:       label,
		Confidence: confidence,
		CreatedAt:  s.now().UTC(),
	}
	if voice != nil {
		a.Voice = lo.ToPtr(*voice)
	}

	if err := s.store.Save(ctx, a); err != nil {
		return Analysis{}, fmt.Errorf("saving analysis: %w", err)
	}
	return a, nil
}

// Recent returns the latest analyses, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	limit = min(limit, MaxRecentLimit)

	items, err := s.store.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("loading recent analyses: %w", err)
	}
	return items, nil
}

// Stats returns the analysis count for every label in catalog order,
// including labels with no analyses.
func (s *Service) Stats(ctx context.Context) ([]LabelCount, error) {
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting analyses: %w", err)
	}

	return lo.Map(mood.Labels(), func(l mood.Label, _ int) LabelCount {
		return LabelCount{Mood: l, Count: counts[l]}
	}), nil
}

// VoiceClusters groups recorded voice analyses by feature similarity.
func (s *Service) VoiceClusters(ctx context.Context, cfg clustering.Config) ([]clustering.Cluster, []clustering.Sample, error) {
	items, err := s.store.VoiceSamples(ctx, MaxVoiceSamples)
	if err != nil {
		return nil, nil, fmt.Errorf("loading voice samples: %w", err)
	}

	samples := lo.FilterMap(items, func(a Analysis, _ int) (clustering.Sample, bool) {
		if a.Voice == nil {
			return clustering.Sample{}, false
		}
		return clustering.Sample{ID: a.ID.String(), Features: *a.Voice, RecordedAt: a.CreatedAt}, true
	})

	clusters, outliers, err := clustering.ClusterVoices(samples, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("clustering voice samples: %w", err)
	}
	return clusters, outliers, nil
}
