package recommend

import (
	"errors"
	"fmt"
	"strings"
)

// ErrProviderUnavailable matches a ProviderError caused by a failed credential
// exchange.
var ErrProviderUnavailable = errors.New("provider unavailable")

// ValidationError reports caller input the service refuses to act on.
type ValidationError struct {
	Field    string
	Message  string
	Accepted []string // accepted values, when the field is an enumeration
}

func (e *ValidationError) Error() string {
	if len(e.Accepted) == 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s (accepted: %s)", e.Field, e.Message, strings.Join(e.Accepted, ", "))
}

// Op identifies the provider operation that failed.
type Op string

// Provider operations.
const (
	OpRecommendations Op = "recommendations"
	OpSearch          Op = "search"
)

// ProviderError is the normalized failure of a provider call. Its message
// never includes provider details; the cause is kept for logging via Unwrap.
type ProviderError struct {
	Op          Op
	Unavailable bool
	Err         error
}

func (e *ProviderError) Error() string {
	if e.Op == OpSearch {
		return "failed to search tracks"
	}
	return "failed to fetch recommendations"
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrProviderUnavailable and e was caused by an
// authentication failure.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderUnavailable && e.Unavailable
}
