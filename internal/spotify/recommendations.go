package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// maxRecommendations is the largest limit the recommendations endpoint accepts.
const maxRecommendations = 100

// ErrNoSeeds is returned when a recommendation query has no seed genres.
var ErrNoSeeds = errors.New("recommendations need at least one seed genre")

// Attribute is a tunable track attribute such as min_energy or target_valence.
type Attribute struct {
	Name  string
	Value float64
}

// RecommendationQuery describes a call to the recommendations endpoint.
type RecommendationQuery struct {
	SeedGenres []string
	Attributes []Attribute
	Limit      int
}

// rawQuery encodes the query with seed_genres, limit and market first and the
// attributes after them in their given order. url.Values would sort the keys.
func (q RecommendationQuery) rawQuery(market string) string {
	limit := min(max(q.Limit, 1), maxRecommendations)

	var b strings.Builder
	add := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}

	add("seed_genres", strings.Join(q.SeedGenres, ","))
	add("limit", strconv.Itoa(limit))
	add("market", market)
	for _, a := range q.Attributes {
		add(a.Name, strconv.FormatFloat(a.Value, 'f', -1, 64))
	}
	return b.String()
}

// Recommendations returns tracks seeded by genres and shaped by attributes.
func (c *Client) Recommendations(ctx context.Context, q RecommendationQuery) ([]TrackRecord, error) {
	if len(q.SeedGenres) == 0 {
		return nil, ErrNoSeeds
	}

	body, err := c.get(ctx, c.endpoint("/recommendations", q.rawQuery(c.market)))
	if err != nil {
		return nil, fmt.Errorf("fetching recommendations: %w", err)
	}

	tracks, err := decodeTracks(body, "tracks")
	if err != nil {
		return nil, fmt.Errorf("decoding recommendations: %w", err)
	}
	return tracks, nil
}
