package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// fakeTokens hands out "token-N" where N grows with every invalidation.
type fakeTokens struct {
	err           error
	calls         atomic.Int32
	invalidations atomic.Int32
}

func (f *fakeTokens) Token(ctx context.Context) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("token-%d", f.invalidations.Load()+1), nil
}

func (f *fakeTokens) Invalidate() {
	f.invalidations.Add(1)
}

func newTestClient(serverURL string, tokens TokenSource) *Client {
	return NewClient(tokens,
		WithBaseURL(serverURL),
		WithRetry(3, time.Millisecond),
	)
}

const recommendationsBody = `{
	"seeds": [],
	"tracks": [
		{
			"id": "t1",
			"name": "Master of Puppets",
			"artists": [{"id": "a1", "name": "Metallica"}],
			"album": {"id": "al1", "name": "Master of Puppets", "images": [{"url": "https://img/1.jpg", "height": 640, "width": 640}]},
			"preview_url": "https://preview/1.mp3",
			"external_urls": {"spotify": "https://open.spotify.com/track/t1"},
			"duration_ms": 515000,
			"popularity": 81
		},
		{
			"id": "t2",
			"name": "Collab",
			"artists": [{"id": "a2", "name": "A"}, {"id": "a3", "name": "B"}],
			"album": {"id": "al2", "name": "Split", "images": []},
			"preview_url": null,
			"external_urls": {"spotify": "https://open.spotify.com/track/t2"},
			"duration_ms": 200000,
			"popularity": 0
		}
	]
}`

func TestRecommendations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recommendations" {
			t.Errorf("path = %q, want /recommendations", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer token-1")
		}

		wantRaw := "seed_genres=metal%2Crock%2Chard-rock&limit=5&market=US&min_energy=0.7&min_loudness=-10&target_energy=0.9"
		if r.URL.RawQuery != wantRaw {
			t.Errorf("raw query = %q, want %q", r.URL.RawQuery, wantRaw)
		}

		q := r.URL.Query()
		want := map[string]string{
			"seed_genres":   "metal,rock,hard-rock",
			"limit":         "5",
			"market":        "US",
			"min_energy":    "0.7",
			"min_loudness":  "-10",
			"target_energy": "0.9",
		}
		for key, value := range want {
			if got := q.Get(key); got != value {
				t.Errorf("query %s = %q, want %q", key, got, value)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, recommendationsBody)
	}))
	defer server.Close()

	client := newTestClient(server.URL, &fakeTokens{})
	tracks, err := client.Recommendations(context.Background(), RecommendationQuery{
		SeedGenres: []string{"metal", "rock", "hard-rock"},
		Attributes: []Attribute{
			{Name: "min_energy", Value: 0.7},
			{Name: "min_loudness", Value: -10},
			{Name: "target_energy", Value: 0.9},
		},
		Limit: 5,
	})
	if err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}

	if len(tracks) != 2 {
		t.Fatalf("len(tracks) = %d, want 2", len(tracks))
	}
	if tracks[0].ID != "t1" || tracks[0].Popularity != 81 || tracks[0].DurationMs != 515000 {
		t.Errorf("tracks[0] = %+v", tracks[0])
	}
	if tracks[0].PreviewURL == nil || *tracks[0].PreviewURL != "https://preview/1.mp3" {
		t.Errorf("tracks[0].PreviewURL = %v", tracks[0].PreviewURL)
	}
	if tracks[1].PreviewURL != nil {
		t.Errorf("tracks[1].PreviewURL = %q, want nil", *tracks[1].PreviewURL)
	}
	if len(tracks[1].Album.Images) != 0 {
		t.Errorf("tracks[1].Album.Images = %v, want empty", tracks[1].Album.Images)
	}
	if got := tracks[1].ExternalURL(); got != "https://open.spotify.com/track/t2" {
		t.Errorf("tracks[1].ExternalURL() = %q", got)
	}
}

func TestRecommendations_NoSeeds(t *testing.T) {
	client := newTestClient("http://unused.invalid", &fakeTokens{})
	_, err := client.Recommendations(context.Background(), RecommendationQuery{Limit: 5})
	if !errors.Is(err, ErrNoSeeds) {
		t.Errorf("Recommendations() error = %v, want ErrNoSeeds", err)
	}
}

func TestSearchTracks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		q := r.URL.Query()
		want := map[string]string{
			"q":      "bohemian rhapsody",
			"type":   "track",
			"limit":  "50",
			"market": "SE",
		}
		for key, value := range want {
			if got := q.Get(key); got != value {
				t.Errorf("query %s = %q, want %q", key, got, value)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"tracks":{"href":"x","items":[
			{"id":"q1","name":"Bohemian Rhapsody","artists":[{"name":"Queen"}],
			 "album":{"name":"A Night at the Opera","images":[]},
			 "preview_url":null,"external_urls":{"spotify":"https://open.spotify.com/track/q1"},
			 "duration_ms":354000,"popularity":90},
			null
		],"total":1}}`)
	}))
	defer server.Close()

	client := NewClient(&fakeTokens{}, WithBaseURL(server.URL), WithMarket("SE"))
	if client.Market() != "SE" {
		t.Errorf("Market() = %q, want SE", client.Market())
	}

	tracks, err := client.SearchTracks(context.Background(), "bohemian rhapsody", 500)
	if err != nil {
		t.Fatalf("SearchTracks() error = %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("len(tracks) = %d, want 1 (null entries skipped)", len(tracks))
	}
	if tracks[0].Name != "Bohemian Rhapsody" {
		t.Errorf("tracks[0].Name = %q", tracks[0].Name)
	}
}

func TestDecodeTracks_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>oops</html>`},
		{name: "tracks not an array", body: `{"tracks":{}}`},
		{name: "missing tracks", body: `{"seeds":[]}`},
		{name: "empty object", body: `{}`},
		{name: "null tracks", body: `{"tracks":null}`},
		{name: "missing name", body: `{"tracks":[{"id":"x","external_urls":{"spotify":"u"}}]}`},
		{name: "missing external url", body: `{"tracks":[{"id":"x","name":"n"}]}`},
		{name: "wrong field type", body: `{"tracks":[{"id":"x","name":"n","external_urls":{"spotify":"u"},"duration_ms":"long"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeTracks([]byte(tt.body), "tracks")
			if !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("decodeTracks() error = %v, want ErrMalformedPayload", err)
			}
		})
	}
}

func TestClient_Retries(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int // status per attempt; 200 after the list is exhausted
		wantCalls  int32
		wantStatus int // 0 means success
	}{
		{name: "server error then success", statuses: []int{503}, wantCalls: 2},
		{name: "throttled twice then success", statuses: []int{429, 429}, wantCalls: 3},
		{name: "bad request is not retried", statuses: []int{400}, wantCalls: 1, wantStatus: 400},
		{name: "retries exhausted", statuses: []int{500, 500, 500, 500, 500}, wantCalls: 4, wantStatus: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := int(calls.Add(1))
				if n <= len(tt.statuses) {
					w.WriteHeader(tt.statuses[n-1])
					fmt.Fprint(w, `{"error":{"status":0,"message":"nope"}}`)
					return
				}
				fmt.Fprint(w, `{"tracks":[]}`)
			}))
			defer server.Close()

			client := newTestClient(server.URL, &fakeTokens{})
			_, err := client.Recommendations(context.Background(), RecommendationQuery{SeedGenres: []string{"pop"}, Limit: 1})

			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}

			if tt.wantStatus == 0 {
				if err != nil {
					t.Errorf("Recommendations() error = %v", err)
				}
				return
			}
			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("Recommendations() error = %v, want *StatusError", err)
			}
			if statusErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestClient_UnauthorizedRefreshesTokenOnce(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer token-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"tracks":[]}`)
	}))
	defer server.Close()

	tokens := &fakeTokens{}
	client := newTestClient(server.URL, tokens)
	if _, err := client.Recommendations(context.Background(), RecommendationQuery{SeedGenres: []string{"pop"}, Limit: 1}); err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}
	if got := tokens.invalidations.Load(); got != 1 {
		t.Errorf("invalidations = %d, want 1", got)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestClient_UnauthorizedTwiceFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tokens := &fakeTokens{}
	client := newTestClient(server.URL, tokens)
	_, err := client.SearchTracks(context.Background(), "x", 1)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("SearchTracks() error = %v, want 401 StatusError", err)
	}
	if got := tokens.invalidations.Load(); got != 1 {
		t.Errorf("invalidations = %d, want 1", got)
	}
}

func TestClient_TokenErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	tokenErr := errors.New("exchange failed")
	tokens := &fakeTokens{err: tokenErr}
	client := newTestClient(server.URL, tokens)

	_, err := client.SearchTracks(context.Background(), "x", 1)
	if !errors.Is(err, tokenErr) {
		t.Errorf("SearchTracks() error = %v, want %v", err, tokenErr)
	}
	if got := tokens.calls.Load(); got != 1 {
		t.Errorf("token calls = %d, want 1", got)
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("provider calls = %d, want 0", got)
	}
}

func TestStatusError_Temporary(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{429, true},
		{500, true},
		{503, true},
		{400, false},
		{401, false},
		{404, false},
	}
	for _, tt := range tests {
		if got := (&StatusError{StatusCode: tt.code}).Temporary(); got != tt.want {
			t.Errorf("StatusError{%d}.Temporary() = %v, want %v", tt.code, got, tt.want)
		}
	}
}
