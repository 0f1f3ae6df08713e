package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/justestif/go-moodify/internal/mood"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"moodify"}, args...))
	return out.String(), err
}

func TestMoodsCommand(t *testing.T) {
	out, err := runApp(t, "moods")
	if err != nil {
		t.Fatalf("moods error = %v", err)
	}
	for _, l := range mood.Labels() {
		if !strings.Contains(out, string(l)) {
			t.Errorf("output missing %q\n%s", l, out)
		}
	}
}

func TestClassifyCommands(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "text", args: []string{"classify", "text", "I", "am", "furious"}, want: "mood: angry"},
		{name: "text default", args: []string{"classify", "text", "spreadsheet"}, want: "mood: relaxed"},
		{name: "text empty", args: []string{"classify", "text"}, wantErr: true},
		{name: "voice", args: []string{"classify", "voice", "--pitch", "0.8", "--energy", "0.9", "--tempo", "0.9"}, want: "mood: energetic (loud, high and fast)"},
		{name: "voice zeros", args: []string{"classify", "voice"}, want: "mood: calm"},
		{name: "face", args: []string{"classify", "face", "neutral=0.1", "sad=0.8"}, want: "mood: sad (dominant sad 0.80)"},
		{name: "face bad pair", args: []string{"classify", "face", "sad"}, wantErr: true},
		{name: "face bad number", args: []string{"classify", "face", "sad=lots"}, wantErr: true},
		{name: "face empty", args: []string{"classify", "face"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runApp(t, tt.args...)
			if tt.wantErr {
				if err == nil {
					t.Errorf("error = nil, want failure (output %q)", out)
				}
				return
			}
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want it to contain %q", out, tt.want)
			}
		})
	}
}

func TestRecommendRequiresCredentials(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")

	if _, err := runApp(t, "recommend", "--mood", "happy"); err == nil {
		t.Error("recommend without credentials error = nil, want failure")
	}
}

func TestClustersCommand_MemoryStore(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	out, err := runApp(t, "clusters", "--k", "2")
	if err != nil {
		t.Fatalf("clusters error = %v", err)
	}
	if !strings.Contains(out, "No voice clusters found from 0 samples") {
		t.Errorf("output = %q", out)
	}
}
