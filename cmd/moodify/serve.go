package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/justestif/go-moodify/internal/history"
	"github.com/justestif/go-moodify/internal/web"
)

func serve(cliCtx *cli.Context) error {
	ctx, cancel := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(cliCtx)
	if nil != err {
		return err
	}

	logger, err := newLogger(cfg)
	if nil != err {
		return err
	}

	recs, err := newRecommender(cfg)
	if nil != err {
		return err
	}
	defer recs.Close()

	store, closeStore, err := openStore(ctx, cfg)
	if nil != err {
		return err
	}
	defer closeStore()
	logger.Debug().Str("driver", cfg.Storage.Driver).Msg("History store ready")

	handlers := web.NewHandlers(recs, history.NewService(store))
	server := web.NewServer(web.ServerConfig{
		Addr:            cfg.Addr(),
		ClientURL:       cfg.Server.ClientURL,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger, handlers)

	if err := server.Run(ctx); nil != err {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}
