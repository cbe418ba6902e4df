// Package externalapi holds the helpers shared by the source connectors.
package externalapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"competitor_backend/internal/feature/updates/domain"
)

// FromStatus maps a non-2xx response to a typed connector error. It returns nil for 2xx.
// 401/403 are Unauthorized, 429 is RateLimited (Retry-After honored), 408 and 5xx are
// Unavailable and any other status is a MalformedResponse.
func FromStatus(connector string, res *http.Response, now time.Time) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	cause := fmt.Errorf("http %d", res.StatusCode)
	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return domain.NewConnectorError(connector, domain.ErrConnectorUnauthorized, cause)
	case res.StatusCode == http.StatusTooManyRequests:
		e := domain.NewConnectorError(connector, domain.ErrConnectorRateLimited, cause)
		e.RetryAfter = ParseRetryAfter(res.Header.Get("Retry-After"), now)
		return e
	case res.StatusCode == http.StatusRequestTimeout || res.StatusCode >= 500:
		return domain.NewConnectorError(connector, domain.ErrConnectorUnavailable, cause)
	default:
		return domain.NewConnectorError(connector, domain.ErrConnectorMalformedResponse, cause)
	}
}

// FromTransport wraps a failed round trip as Unavailable. Context errors stay visible to errors.Is.
func FromTransport(connector string, err error) error {
	return domain.NewConnectorError(connector, domain.ErrConnectorUnavailable, err)
}

// Malformed wraps a decoding failure.
func Malformed(connector string, err error) error {
	return domain.NewConnectorError(connector, domain.ErrConnectorMalformedResponse, err)
}

// ParseRetryAfter reads delay-seconds or an HTTP date. Unparseable or past values yield 0.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

// IsContextError reports whether err came from a canceled or expired context.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
