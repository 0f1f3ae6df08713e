// Package auth manages the application-only credential used to call the
// Spotify Web API.
package auth

import (
	"errors"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
)

// ExpiryBuffer is subtracted from the provider-reported token lifetime so a
// cached token is refreshed before the provider starts rejecting it.
const ExpiryBuffer = 5 * time.Minute

// RefreshTimeout bounds a token exchange shared by concurrent callers. It is
// independent of any caller's context.
const RefreshTimeout = 30 * time.Second

var (
	// ErrMissingCredentials is returned when the client id or secret is not set.
	ErrMissingCredentials = errors.New("missing SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET")

	// ErrAuthentication is returned when the credential exchange fails.
	ErrAuthentication = errors.New("failed to authenticate with Spotify")
)

// Config holds the client-credentials settings.
type Config struct {
	ClientID     string
	ClientSecret string

	// TokenURL defaults to the Spotify accounts service.
	TokenURL string
}

func (c Config) validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

func (c Config) tokenURL() string {
	if c.TokenURL == "" {
		return spotifyauth.TokenURL
	}
	return c.TokenURL
}
