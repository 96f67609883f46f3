package extractor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"customsdesk/internal/domain"
)

// RateLimitError indicates an extraction provider returned HTTP 429.
// It unwraps to domain.ErrExtractionFailed.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err),
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// IsTimeout reports whether err came from an expired deadline or a client timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// TransportError classifies a failed provider call as a timeout or a generic
// extraction failure while keeping the original error in the chain.
func TransportError(provider string, err error) error {
	if IsTimeout(err) {
		return fmt.Errorf("%w: calling %s: %w", domain.ErrExtractionTimeout, provider, err)
	}
	return fmt.Errorf("%w: calling %s: %w", domain.ErrExtractionFailed, provider, err)
}

// StatusError reports a non-2xx provider response.
func StatusError(provider string, status int, body []byte) error {
	return fmt.Errorf("%w: %s API error (status %d): %s", domain.ErrExtractionFailed, provider, status, Truncate(string(body), 500))
}

// MalformedError reports a response body or message content that is not the expected JSON.
func MalformedError(provider string, err error, raw string) error {
	return fmt.Errorf("%w: %s returned malformed JSON: %v (raw: %s)", domain.ErrExtractionFailed, provider, err, Truncate(raw, 500))
}

// Truncate shortens s to maxLen bytes for log and error output.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
