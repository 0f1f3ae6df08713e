package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// maxSearchResults is the largest page size the search endpoint accepts.
const maxSearchResults = 50

// SearchTracks runs a free-text track search.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]TrackRecord, error) {
	params := url.Values{
		"q":      {query},
		"type":   {"track"},
		"limit":  {strconv.Itoa(min(max(limit, 1), maxSearchResults))},
		"market": {c.market},
	}

	body, err := c.get(ctx, c.endpoint("/search", params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("searching tracks: %w", err)
	}

	tracks, err := decodeTracks(body, "tracks.items")
	if err != nil {
		return nil, fmt.Errorf("decoding search results: %w", err)
	}
	return tracks, nil
}
