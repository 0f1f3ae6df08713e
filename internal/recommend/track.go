package recommend

import (
	"strings"

	"github.com/samber/lo"

	"github.com/justestif/go-moodify/internal/spotify"
)

// Track is the normalized track returned to callers.
type Track struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Artist      string  `json:"artist"` // contributing artists joined by ", "
	Album       string  `json:"album"`
	AlbumArtURL *string `json:"albumArt"`
	PreviewURL  *string `json:"previewUrl"`
	ExternalURL string  `json:"spotifyUrl"`
	DurationMs  int     `json:"duration"`
	Popularity  int     `json:"popularity"`
}

// Normalize converts a provider record into a Track.
func Normalize(r spotify.TrackRecord) Track {
	artists := lo.Map(r.Artists, func(a spotify.ArtistRecord, _ int) string { return a.Name })

	var albumArt *string
	if len(r.Album.Images) > 0 && r.Album.Images[0].URL != "" {
		albumArt = lo.ToPtr(r.Album.Images[0].URL)
	}

	return Track{
		ID:          string(r.ID),
		Name:        r.Name,
		Artist:      strings.Join(artists, ", "),
		Album:       r.Album.Name,
		AlbumArtURL: albumArt,
		PreviewURL:  r.PreviewURL,
		ExternalURL: r.ExternalURL(),
		DurationMs:  r.DurationMs,
		Popularity:  r.Popularity,
	}
}

func normalizeAll(records []spotify.TrackRecord) []Track {
	return lo.Map(records, func(r spotify.TrackRecord, _ int) Track { return Normalize(r) })
}
