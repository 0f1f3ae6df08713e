package log

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/xeptore/flaw/v8"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{in: "", want: zerolog.InfoLevel},
		{in: "debug", want: zerolog.DebugLevel},
		{in: " WARN ", want: zerolog.WarnLevel},
		{in: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_PackedFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "json", "warn")
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn().Str("mood", "sad").Msg("shown")
	line := buf.Bytes()
	require.True(t, gjson.ValidBytes(line), string(line))
	assert.Equal(t, "shown", gjson.GetBytes(line, "message").String())
	assert.Equal(t, "sad", gjson.GetBytes(line, "mood").String())
	assert.Equal(t, "moodify", gjson.GetBytes(line, "app").String())
	assert.Equal(t, Version, gjson.GetBytes(line, "service.version").String())
	assert.Equal(t, runtime.Version(), gjson.GetBytes(line, "service.go").String())
	assert.Equal(t, int64(os.Getpid()), gjson.GetBytes(line, "service.pid").Int())
}

func TestNew_Pretty(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "pretty", "info")
	require.NoError(t, err)

	logger.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "xml", "info")
	assert.Error(t, err)
}

func TestFlaw_PlainError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewPacked(&buf)

	logger.Error().Func(Flaw(errors.New("boom"))).Msg("failed")
	assert.Equal(t, "boom", gjson.GetBytes(buf.Bytes(), "error").String())
}

func TestFlaw_Records(t *testing.T) {
	var buf bytes.Buffer
	logger := NewPacked(&buf)

	err := flaw.From(errors.New("provider down")).Append(flaw.P{"mood": "happy", "limit": 20})
	logger.Error().Func(Flaw(fmt.Errorf("fetching: %w", err))).Msg("failed")

	out := buf.Bytes()
	assert.Contains(t, gjson.GetBytes(out, "error.message").String(), "provider down")
	records := gjson.GetBytes(out, "records")
	require.True(t, records.IsArray())
	assert.Contains(t, gjson.GetBytes(out, "records.#.payload.mood").String(), "happy")
	assert.True(t, gjson.GetBytes(out, "stack_traces").IsArray())
}

func TestPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := NewPacked(&buf)

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error().Func(Panic(rec)).Msg("recovered")
			}
		}()
		explode()
	}()

	out := buf.Bytes()
	assert.Equal(t, "string", gjson.GetBytes(out, "panic.type").String())
	assert.Equal(t, "nil map", gjson.GetBytes(out, "panic.value").String())

	stack := gjson.GetBytes(out, "panic.stack")
	require.True(t, stack.IsArray())
	var sawOrigin bool
	for _, frame := range stack.Array() {
		assert.NotContains(t, frame.String(), "runtime.gopanic")
		if strings.Contains(frame.String(), "log.explode") {
			sawOrigin = true
		}
	}
	assert.True(t, sawOrigin, stack.Raw)
}

func explode() {
	panic("nil map")
}
