package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/justestif/go-moodify/internal/clustering"
	"github.com/justestif/go-moodify/internal/history"
	"github.com/justestif/go-moodify/internal/mood"
)

func listMoods(cliCtx *cli.Context) error {
	return writeMoods(cliCtx.App.Writer)
}

func writeMoods(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MOOD\tNAME\tGENRES\tDESCRIPTION")
	for _, p := range mood.Profiles() {
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\n",
			p.Label, p.Display.Emoji, p.Display.Name, strings.Join(p.Genres, ", "), p.Display.Description)
	}
	return tw.Flush()
}

func classifyText(cliCtx *cli.Context) error {
	text := strings.Join(cliCtx.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return errors.New("text is required")
	}

	out := cliCtx.App.Writer
	fmt.Fprintf(out, "mood: %s\n", mood.ClassifyText(text))
	for _, s := range mood.ScoreText(text) {
		if len(s.Matches) > 0 {
			fmt.Fprintf(out, "  %s: %s\n", s.Label, strings.Join(s.Matches, ", "))
		}
	}
	return nil
}

func classifyVoice(cliCtx *cli.Context) error {
	f := mood.VoiceFeatures{
		Pitch:  cliCtx.Float64(flagPitch),
		Energy: cliCtx.Float64(flagEnergy),
		Tempo:  cliCtx.Float64(flagTempo),
	}

	label, rule := mood.ExplainVoice(f)
	if rule == "" {
		rule = "no rule matched"
	}
	fmt.Fprintf(cliCtx.App.Writer, "mood: %s (%s)\n", label, rule)
	return nil
}

func classifyFace(cliCtx *cli.Context) error {
	v, err := parseExpressions(cliCtx.Args().Slice())
	if nil != err {
		return err
	}

	dominant, ok := v.Dominant()
	if !ok {
		return errors.New("at least one name=confidence pair is required")
	}
	fmt.Fprintf(cliCtx.App.Writer, "mood: %s (dominant %s %.2f)\n", mood.ClassifyFace(v), dominant.Name, dominant.Confidence)
	return nil
}

// parseExpressions reads name=confidence arguments, keeping their order.
func parseExpressions(args []string) (mood.ExpressionVector, error) {
	v := make(mood.ExpressionVector, 0, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid expression %q, want name=confidence", arg)
		}
		c, err := strconv.ParseFloat(raw, 64)
		if nil != err {
			return nil, fmt.Errorf("invalid confidence for %q: %v", name, err)
		}
		v = append(v, mood.Expression{Name: strings.ToLower(name), Confidence: c})
	}
	return v, nil
}

func recommendTracks(cliCtx *cli.Context) error {
	cfg, err := loadConfig(cliCtx)
	if nil != err {
		return err
	}

	recs, err := newRecommender(cfg)
	if nil != err {
		return err
	}
	defer recs.Close()

	tracks, err := recs.GetRecommendations(cliCtx.Context, mood.Label(cliCtx.String(flagMood)), cliCtx.Int(flagLimit))
	if nil != err {
		return err
	}

	out := cliCtx.App.Writer
	for i, t := range tracks {
		fmt.Fprintf(out, "%2d. %s - %s\n    %s\n", i+1, t.Name, t.Artist, t.ExternalURL)
	}
	return nil
}

func voiceClusters(cliCtx *cli.Context) error {
	cfg, err := loadConfig(cliCtx)
	if nil != err {
		return err
	}

	store, closeStore, err := openStore(cliCtx.Context, cfg)
	if nil != err {
		return err
	}
	defer closeStore()

	ccfg := clustering.DefaultConfig()
	if k := cliCtx.Int(flagClusters); k > 0 {
		ccfg.NumClusters = k
	}

	clusters, outliers, err := history.NewService(store).VoiceClusters(cliCtx.Context, ccfg)
	if nil != err {
		return err
	}
	fmt.Fprint(cliCtx.App.Writer, clustering.FormatSummary(clusters, outliers))
	return nil
}
