// Package log builds the zerolog loggers used by moodify.
package log

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/pretty"
)

// Version is the build version reported on every log line. Release builds
// set it with -ldflags "-X github.com/justestif/go-moodify/internal/log.Version=v1.2.3".
var Version = "dev"

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

func newBaseLogger() zerolog.Logger {
	host, _ := os.Hostname()
	return zerolog.
		New(io.Discard).
		With().
		Str("app", "moodify").
		Dict("service", zerolog.Dict().
			Str("version", Version).
			Str("go", runtime.Version()).
			Str("host", host).
			Int("pid", os.Getpid())).
		Timestamp().
		Logger().
		Level(zerolog.TraceLevel)
}

func NewPretty(w io.Writer) zerolog.Logger {
	return newBaseLogger().Output(newPrettyWriter(w))
}

func NewPacked(w io.Writer) zerolog.Logger {
	return newBaseLogger().Output(w)
}

// New returns a pretty or packed logger filtered to level.
func New(w io.Writer, format, level string) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if nil != err {
		return zerolog.Nop(), err
	}

	switch strings.ToLower(format) {
	case "", "pretty":
		return NewPretty(w).Level(lvl), nil
	case "json":
		return NewPacked(w).Level(lvl), nil
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}
}

// ParseLevel parses a level name. An empty name means info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(s)
	if nil != err {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %v", s, err)
	}
	return lvl, nil
}

func newPrettyWriter(out io.Writer) prettyWriter {
	return prettyWriter{out}
}

type prettyWriter struct {
	out io.Writer
}

func (p prettyWriter) Write(line []byte) (int, error) {
	if n, err := p.out.Write(pretty.Color(pretty.Pretty(line), nil)); nil != err {
		return n, err
	}
	return len(line), nil
}
