package spotify

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/zmb3/spotify/v2"
)

// TrackRecord is the subset of the Spotify track object the service relies on.
type TrackRecord struct {
	ID           spotify.ID        `json:"id"`
	Name         string            `json:"name"`
	Artists      []ArtistRecord    `json:"artists"`
	Album        AlbumRecord       `json:"album"`
	PreviewURL   *string           `json:"preview_url"`
	ExternalURLs map[string]string `json:"external_urls"`
	DurationMs   int               `json:"duration_ms"`
	Popularity   int               `json:"popularity"`
}

// ArtistRecord is a simplified artist object.
type ArtistRecord struct {
	ID   spotify.ID `json:"id"`
	Name string     `json:"name"`
}

// AlbumRecord is a simplified album object.
type AlbumRecord struct {
	ID     spotify.ID    `json:"id"`
	Name   string        `json:"name"`
	Images []ImageRecord `json:"images"`
}

// ImageRecord is an album cover image, widest first.
type ImageRecord struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// ExternalURL returns the open.spotify.com link for the track.
func (r TrackRecord) ExternalURL() string {
	return r.ExternalURLs["spotify"]
}

func (r TrackRecord) validate() error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: track without id", ErrMalformedPayload)
	case r.Name == "":
		return fmt.Errorf("%w: track %s without name", ErrMalformedPayload, r.ID)
	case r.ExternalURL() == "":
		return fmt.Errorf("%w: track %s without external url", ErrMalformedPayload, r.ID)
	}
	return nil
}

// decodeTracks extracts the track array found at path in body and validates
// every record. Null entries in the array are skipped.
func decodeTracks(body []byte, path string) ([]TrackRecord, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformedPayload)
	}

	raw := gjson.GetBytes(body, path)
	if !raw.IsArray() {
		return nil, fmt.Errorf("%w: %q is not an array", ErrMalformedPayload, path)
	}

	var items []*TrackRecord
	if err := json.Unmarshal([]byte(raw.Raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	records := make([]TrackRecord, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if err := item.validate(); err != nil {
			return nil, err
		}
		records = append(records, *item)
	}
	return records, nil
}
