package extractor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"customsdesk/internal/config"
	"customsdesk/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
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

// FallbackExtractor tries providers in order, skipping those whose circuit is
// open after a rate limit. It implements port.Extractor.
type FallbackExtractor struct {
	providers []port.Extractor
	circuits  []*circuitState
	names     []string
	now       func() time.Time
}

var _ port.Extractor = (*FallbackExtractor)(nil)

// NewFallbackExtractor creates a FallbackExtractor from an ordered list of
// providers and their names.
func NewFallbackExtractor(providers []port.Extractor, names []string) *FallbackExtractor {
	circuits := make([]*circuitState, len(providers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackExtractor{
		providers: providers,
		circuits:  circuits,
		names:     names,
		now:       time.Now,
	}
}

func (f *FallbackExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, p := range f.providers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			zap.L().Debug("extractor.FallbackExtractor: skipping provider",
				zap.String("provider", f.names[i]), zap.Time("circuit_open_until", resetAt))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := p.Extract(ctx, input)
		if err == nil {
			return out, nil
		}
		// A cancelled or expired request would fail on every provider.
		if ctx.Err() != nil {
			return nil, err
		}

		zap.L().Warn("extractor.FallbackExtractor: provider failed",
			zap.String("provider", f.names[i]), zap.Error(err))
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
		return nil, NewRateLimitError("all", errors.New("all providers rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}

// NewExtractorChain builds the primary provider from cfg and, when a fallback
// provider is configured, wraps both in a FallbackExtractor.
func NewExtractorChain(cfg *config.ExtractorConfig) (port.Extractor, error) {
	primary, err := NewExtractor(cfg)
	if err != nil {
		return nil, err
	}
	fbCfg := cfg.FallbackConfig()
	if fbCfg == nil {
		return primary, nil
	}
	secondary, err := NewExtractor(fbCfg)
	if err != nil {
		return nil, fmt.Errorf("fallback provider: %w", err)
	}
	return NewFallbackExtractor(
		[]port.Extractor{primary, secondary},
		[]string{cfg.Provider, fbCfg.Provider},
	), nil
}
