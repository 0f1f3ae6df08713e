// Command moodify serves the mood-based music recommendation API and exposes
// the classifiers on the command line.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"github.com/xeptore/flaw/v8"

	"github.com/justestif/go-moodify/internal/log"
)

const (
	flagConfigFilePath = "config"
	flagMood           = "mood"
	flagLimit          = "limit"
	flagPitch          = "pitch"
	flagEnergy         = "energy"
	flagTempo          = "tempo"
	flagClusters       = "k"
)

func main() {
	logger := log.NewPretty(os.Stderr).Level(zerolog.InfoLevel)
	if err := godotenv.Load(); nil != err {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug().Msg(".env file was not found")
		} else {
			logger.Fatal().Err(err).Msg("Failed to load .env file")
		}
	}

	if err := newApp().Run(os.Args); nil != err {
		if errors.Is(err, context.Canceled) {
			logger.Trace().Msg("Application was canceled")
			return
		}
		if flawErr := new(flaw.Flaw); errors.As(err, &flawErr) {
			logger.Fatal().Func(log.Flaw(flawErr)).Msg("Application exited with flaw")
			return
		}
		logger.Fatal().Err(err).Msg("Application exited with error")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "moodify",
		Usage:   "Mood-based music recommendations",
		Suggest: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfigFilePath,
				Aliases: []string{"c"},
				Usage:   "Config file path (YAML); environment variables override it",
				EnvVars: []string{"MOODIFY_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"s"},
				Usage:   "Run the HTTP API",
				Action:  serve,
			},
			{
				Name:   "moods",
				Usage:  "List supported moods",
				Action: listMoods,
			},
			{
				Name:  "classify",
				Usage: "Classify a mood signal offline",
				Subcommands: []*cli.Command{
					{
						Name:      "text",
						Usage:     "Classify free text",
						ArgsUsage: "<words...>",
						Action:    classifyText,
					},
					{
						Name:   "voice",
						Usage:  "Classify voice features",
						Action: classifyVoice,
						Flags: []cli.Flag{
							&cli.Float64Flag{Name: flagPitch, Usage: "Normalized pitch in [0,1]"},
							&cli.Float64Flag{Name: flagEnergy, Usage: "Normalized energy in [0,1]"},
							&cli.Float64Flag{Name: flagTempo, Usage: "Normalized tempo in [0,1]"},
						},
					},
					{
						Name:      "face",
						Usage:     "Classify facial expression confidences",
						ArgsUsage: "<name=confidence...>",
						Action:    classifyFace,
					},
				},
			},
			{
				Name:   "recommend",
				Usage:  "Fetch recommendations for a mood",
				Action: recommendTracks,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagMood, Aliases: []string{"m"}, Usage: "Mood label", Required: true},
					&cli.IntFlag{Name: flagLimit, Aliases: []string{"n"}, Usage: "Number of tracks", Value: 20},
				},
			},
			{
				Name:   "clusters",
				Usage:  "Cluster recorded voice analyses",
				Action: voiceClusters,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: flagClusters, Usage: "Number of clusters", Value: 3},
				},
			},
		},
	}
}
