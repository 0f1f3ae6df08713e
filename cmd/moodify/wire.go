package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/justestif/go-moodify/internal/auth"
	"github.com/justestif/go-moodify/internal/config"
	"github.com/justestif/go-moodify/internal/db"
	"github.com/justestif/go-moodify/internal/history"
	"github.com/justestif/go-moodify/internal/log"
	"github.com/justestif/go-moodify/internal/recommend"
	"github.com/justestif/go-moodify/internal/spotify"
	"github.com/justestif/go-moodify/internal/sqlite"
)

func loadConfig(cliCtx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(cliCtx.String(flagConfigFilePath), os.LookupEnv)
	if nil != err {
		return nil, fmt.Errorf("failed to load config: %v", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	logger, err := log.New(os.Stdout, cfg.Log.Format, cfg.Log.Level)
	if nil != err {
		return zerolog.Nop(), fmt.Errorf("failed to create logger: %v", err)
	}
	return logger, nil
}

// newRecommender builds the provider client stack. The caller closes the
// returned service.
func newRecommender(cfg *config.Config) (*recommend.Service, error) {
	if err := cfg.RequireCredentials(); nil != err {
		return nil, err
	}

	httpClient := newHTTPClient(cfg)

	tokens, err := auth.NewTokenManager(auth.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		TokenURL:     cfg.Spotify.TokenURL,
	}, auth.WithHTTPClient(httpClient))
	if nil != err {
		return nil, fmt.Errorf("failed to create token manager: %w", err)
	}

	opts := []spotify.Option{
		spotify.WithHTTPClient(httpClient),
		spotify.WithMarket(cfg.Spotify.Market),
		spotify.WithRetry(cfg.Spotify.MaxRetries, cfg.Spotify.RetryInterval),
	}
	if cfg.Spotify.BaseURL != "" {
		opts = append(opts, spotify.WithBaseURL(cfg.Spotify.BaseURL))
	}
	client := spotify.NewClient(tokens, opts...)

	return recommend.New(client, recommend.WithCache(cfg.Cache.TTL, cfg.Cache.MaxSize)), nil
}

// newHTTPClient returns the client shared by the token exchange and API calls.
func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Spotify.Timeout}
}

// openStore opens the configured history store. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (history.Store, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		database, err := db.New(ctx, cfg.Storage.DatabaseURL)
		if nil != err {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := database.EnsureSchema(ctx); nil != err {
			database.Close()
			return nil, nil, err
		}
		return database.Analyses(), database.Close, nil
	case config.DriverSQLite:
		store, err := sqlite.NewStore(cfg.Storage.SQLitePath)
		if nil != err {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return history.NewMemoryStore(cfg.Storage.MemoryCapacity), func() {}, nil
	}
}
