package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fisbench/internal/logger"
	"fisbench/internal/port"
)

// circuitState tracks rate-limit backoff for a single client.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackClient tries clients in order, skipping those with open circuits.
// Requests are forwarded with an empty Model so each client uses its own default.
type FallbackClient struct {
	clients  []port.ChatCompleter
	circuits []*circuitState
	names    []string
	log      *logger.Logger
	now      func() time.Time
}

// NewFallbackClient creates a FallbackClient from an ordered list of clients and their names.
func NewFallbackClient(clients []port.ChatCompleter, names []string, log *logger.Logger) *FallbackClient {
	circuits := make([]*circuitState, len(clients))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackClient{
		clients:  clients,
		circuits: circuits,
		names:    names,
		log:      log,
		now:      time.Now,
	}
}

func (f *FallbackClient) Complete(ctx context.Context, req port.ChatRequest) (*port.ChatResponse, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	req.Model = ""
	for i, c := range f.clients {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.log.Warn("llm fallback: skipping client, circuit open", "client", f.names[i], "until", resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := c.Complete(ctx, req)
		if err == nil {
			return out, nil
		}

		f.log.Warn("llm fallback: client failed", "client", f.names[i], "error", err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all llm clients rate limited"), retryAfter)
	}

	return nil, fmt.Errorf("all llm clients failed: %w", lastErr)
}
