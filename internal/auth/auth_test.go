package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newTokenServer returns a token endpoint that issues "token-N" for the Nth
// exchange and counts calls.
func newTokenServer(t *testing.T, expiresIn int, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)

		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		id, secret, ok := r.BasicAuth()
		if !ok || id != "client-id" || secret != "client-secret" {
			t.Errorf("basic auth = (%q, %q, %v), want client credentials", id, secret, ok)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q, want client_credentials", got)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token-%d","token_type":"Bearer","expires_in":%d}`, n, expiresIn)
	}))
}

func newTestManager(t *testing.T, tokenURL string, clock *fakeClock) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     tokenURL,
	}, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}
	return m
}

func TestNewTokenManager_MissingCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "both missing", cfg: Config{}},
		{name: "missing secret", cfg: Config{ClientID: "id"}},
		{name: "missing id", cfg: Config{ClientSecret: "secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenManager(tt.cfg)
			if !errors.Is(err, ErrMissingCredentials) {
				t.Errorf("NewTokenManager() error = %v, want ErrMissingCredentials", err)
			}
		})
	}
}

func TestToken_CachedUntilExpiry(t *testing.T) {
	var calls atomic.Int32
	server := newTokenServer(t, 3600, &calls)
	defer server.Close()

	clock := newFakeClock()
	m := newTestManager(t, server.URL, clock)

	if m.State() != StateUnset {
		t.Errorf("initial State() = %v, want %v", m.State(), StateUnset)
	}

	first, err := m.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if first != "token-1" {
		t.Errorf("Token() = %q, want %q", first, "token-1")
	}
	if m.State() != StateValid {
		t.Errorf("State() = %v, want %v", m.State(), StateValid)
	}

	// Just inside the buffered lifetime.
	clock.Advance(3600*time.Second - ExpiryBuffer - time.Second)
	second, err := m.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if second != first {
		t.Errorf("Token() = %q, want cached %q", second, first)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("exchange calls = %d, want 1", got)
	}

	// Expiry is exclusive: reaching it exactly requires a refresh.
	clock.Advance(time.Second)
	if m.State() != StateExpired {
		t.Errorf("State() = %v, want %v", m.State(), StateExpired)
	}
	third, err := m.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if third != "token-2" {
		t.Errorf("Token() = %q, want %q", third, "token-2")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("exchange calls = %d, want 2", got)
	}
}

func TestToken_ConcurrentCallersShareOneExchange(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"shared","token_type":"Bearer","expires_in":3600}`)
	}))
	defer server.Close()

	m := newTestManager(t, server.URL, newFakeClock())

	const callers = 20
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = m.Token(context.Background())
		}(i)
	}

	// Give every goroutine a chance to queue behind the in-flight exchange.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range tokens {
		if errs[i] != nil {
			t.Errorf("caller %d: Token() error = %v", i, errs[i])
		}
		if tokens[i] != "shared" {
			t.Errorf("caller %d: Token() = %q, want %q", i, tokens[i], "shared")
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("exchange calls = %d, want 1", got)
	}
}

func TestToken_ExchangeFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_client"}`)
	}))
	defer server.Close()

	m := newTestManager(t, server.URL, newFakeClock())

	_, err := m.Token(context.Background())
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("Token() error = %v, want ErrAuthentication", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("exchange calls = %d, want 1 (no retry)", got)
	}
	if m.State() != StateUnset {
		t.Errorf("State() = %v, want %v", m.State(), StateUnset)
	}
}

func TestToken_ShortLifetimeIsImmediatelyExpired(t *testing.T) {
	var calls atomic.Int32
	server := newTokenServer(t, 60, &calls)
	defer server.Close()

	m := newTestManager(t, server.URL, newFakeClock())

	for i := 0; i < 2; i++ {
		if _, err := m.Token(context.Background()); err != nil {
			t.Fatalf("Token() error = %v", err)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("exchange calls = %d, want 2", got)
	}
}

func TestInvalidate(t *testing.T) {
	var calls atomic.Int32
	server := newTokenServer(t, 3600, &calls)
	defer server.Close()

	m := newTestManager(t, server.URL, newFakeClock())

	// Invalidating an unset manager is a no-op.
	m.Invalidate()
	if m.State() != StateUnset {
		t.Errorf("State() = %v, want %v", m.State(), StateUnset)
	}

	if _, err := m.Token(context.Background()); err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	m.Invalidate()
	if m.State() != StateExpired {
		t.Errorf("State() = %v, want %v", m.State(), StateExpired)
	}

	token, err := m.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token != "token-2" {
		t.Errorf("Token() = %q, want %q", token, "token-2")
	}
}

func TestToken_CancelledCallerDoesNotAbortSharedExchange(t *testing.T) {
	var calls atomic.Int32
	arrived := make(chan struct{}, 1)
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		select {
		case arrived <- struct{}{}:
		default:
		}
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token-%d","token_type":"Bearer","expires_in":3600}`, n)
	}))
	defer server.Close()

	m := newTestManager(t, server.URL, newFakeClock())

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := m.Token(ctx)
		firstErr <- err
	}()

	select {
	case <-arrived:
	case <-time.After(5 * time.Second):
		t.Fatal("token endpoint was not called")
	}

	cancel()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("cancelled Token() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	type result struct {
		token string
		err   error
	}
	second := make(chan result, 1)
	go func() {
		token, err := m.Token(context.Background())
		second <- result{token, err}
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)

	select {
	case res := <-second:
		if res.err != nil {
			t.Fatalf("Token() error = %v", res.err)
		}
		if res.token != "token-1" {
			t.Errorf("Token() = %q, want %q", res.token, "token-1")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("second caller did not return")
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("token endpoint calls = %d, want 1", got)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUnset, "unset"},
		{StateValid, "valid"},
		{StateExpired, "expired"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
