package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrRateLimited matches every *RateLimitError under errors.Is.
var ErrRateLimited = errors.New("llm rate limited")

// defaultBackoff is used when a 429 carries no usable delay.
const defaultBackoff = time.Minute

// RateLimitError is a 429 from a chat provider. RetryAfter is how long the
// fallback client keeps that provider's circuit open.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited, retry in %s: %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// NewRateLimitError wraps err. A non-positive retryAfter becomes one minute.
func NewRateLimitError(provider string, err error, retryAfter time.Duration) *RateLimitError {
	if retryAfter <= 0 {
		retryAfter = defaultBackoff
	}
	return &RateLimitError{Provider: provider, RetryAfter: retryAfter, Err: err}
}

// RetryDelay reads how long a rate-limited caller should wait. The
// Retry-After header wins, in delta-seconds or HTTP-date form. Gemini puts
// the delay in the body instead, as a google.rpc.RetryInfo detail
// ("retryDelay": "17s"). Zero means no hint was found.
func RetryDelay(h http.Header, body []byte, now time.Time) time.Duration {
	if v := strings.TrimSpace(h.Get("Retry-After")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
		if at, err := http.ParseTime(v); err == nil && at.After(now) {
			return at.Sub(now)
		}
	}

	var payload struct {
		Error struct {
			Details []struct {
				RetryDelay string `json:"retryDelay"`
			} `json:"details"`
		} `json:"error"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return 0
	}
	for _, d := range payload.Error.Details {
		if d.RetryDelay == "" {
			continue
		}
		if delay, err := time.ParseDuration(d.RetryDelay); err == nil && delay > 0 {
			return delay
		}
	}
	return 0
}
