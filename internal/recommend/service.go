// Package recommend turns mood labels and search queries into normalized
// track lists by calling the catalog provider.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/justestif/go-moodify/internal/auth"
	"github.com/justestif/go-moodify/internal/mood"
	"github.com/justestif/go-moodify/internal/spotify"
)

// Provider is the catalog provider used by the Service.
type Provider interface {
	Recommendations(ctx context.Context, q spotify.RecommendationQuery) ([]spotify.TrackRecord, error)
	SearchTracks(ctx context.Context, query string, limit int) ([]spotify.TrackRecord, error)
}

// Default result cache size.
const DefaultCacheSize = 500

// Service resolves moods into provider queries and normalizes the results.
type Service struct {
	provider Provider
	cache    *trackCache
}

// Option configures a Service.
type Option func(*Service)

// WithCache keeps successful results for ttl, holding at most maxSize
// entries. A non-positive ttl disables caching.
func WithCache(ttl time.Duration, maxSize int64) Option {
	return func(s *Service) {
		if ttl <= 0 {
			s.cache = nil
			return
		}
		if maxSize <= 0 {
			maxSize = DefaultCacheSize
		}
		s.cache = newTrackCache(ttl, maxSize)
	}
}

// New creates a Service backed by provider.
func New(provider Provider, opts ...Option) *Service {
	s := &Service{provider: provider}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close releases the result cache.
func (s *Service) Close() {
	if s.cache != nil {
		s.cache.stop()
	}
}

// GetRecommendations returns tracks matching the given mood.
//
// An unsupported mood yields a *ValidationError listing every accepted label.
// Provider failures yield a *ProviderError.
func (s *Service) GetRecommendations(ctx context.Context, label mood.Label, limit int) ([]Track, error) {
	parsed, ok := mood.Parse(string(label))
	if !ok {
		return nil, &ValidationError{Field: "mood", Message: "Invalid mood", Accepted: mood.Strings()}
	}
	if limit < 1 {
		return nil, &ValidationError{Field: "limit", Message: "limit must be at least 1"}
	}

	profile := mood.ProfileFor(parsed)
	query := spotify.RecommendationQuery{
		SeedGenres: profile.Genres,
		Attributes: lo.Map(profile.Features, func(f mood.FeatureTarget, _ int) spotify.Attribute {
			return spotify.Attribute{Name: f.Name, Value: f.Value}
		}),
		Limit: limit,
	}

	key := fmt.Sprintf("recommendations:%s:%d", parsed, limit)
	return s.cached(key, func() ([]Track, error) {
		records, err := s.provider.Recommendations(ctx, query)
		if err != nil {
			return nil, newProviderError(OpRecommendations, err)
		}
		return normalizeAll(records), nil
	})
}

// SearchTracks runs a free-text track search. Empty or whitespace-only
// queries yield a *ValidationError.
func (s *Service) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &ValidationError{Field: "query", Message: "Query parameter is required"}
	}
	if limit < 1 {
		return nil, &ValidationError{Field: "limit", Message: "limit must be at least 1"}
	}

	key := fmt.Sprintf("search:%d:%s", limit, query)
	return s.cached(key, func() ([]Track, error) {
		records, err := s.provider.SearchTracks(ctx, query, limit)
		if err != nil {
			return nil, newProviderError(OpSearch, err)
		}
		return normalizeAll(records), nil
	})
}

func (s *Service) cached(key string, load func() ([]Track, error)) ([]Track, error) {
	if s.cache == nil {
		return load()
	}
	return s.cache.fetch(key, load)
}

func newProviderError(op Op, err error) *ProviderError {
	return &ProviderError{
		Op:          op,
		Unavailable: errors.Is(err, auth.ErrAuthentication),
		Err:         err,
	}
}
