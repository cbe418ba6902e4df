// Package domain defines domain-level errors for the updates feature.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Connector failure kinds. Every error returned by a source connector wraps exactly one of these.
var (
	// ErrConnectorUnauthorized indicates a missing or rejected credential. The connector is skipped without retry.
	ErrConnectorUnauthorized = errors.New("connector unauthorized")

	// ErrConnectorRateLimited indicates the source throttled the request. Retried once, then skipped.
	ErrConnectorRateLimited = errors.New("connector rate limited")

	// ErrConnectorUnavailable indicates a transport failure, timeout or 5xx. Retried once, then skipped.
	ErrConnectorUnavailable = errors.New("connector unavailable")

	// ErrConnectorMalformedResponse indicates a response that could not be decoded. Skipped.
	ErrConnectorMalformedResponse = errors.New("connector malformed response")
)

var (
	// ErrAllConnectorsExhausted is attached to diagnostics when no connector produced a usable batch.
	// It is never returned from a fetch operation.
	ErrAllConnectorsExhausted = errors.New("all connectors exhausted")

	// ErrPersistence wraps storage failures. It aborts the calling operation.
	ErrPersistence = errors.New("persistence failure")
)

// ConnectorError is the typed failure returned by a source connector.
type ConnectorError struct {
	Connector  string
	Kind       error
	RetryAfter time.Duration
	Err        error
}

// NewConnectorError builds a ConnectorError of the given kind.
func NewConnectorError(connector string, kind error, cause error) *ConnectorError {
	return &ConnectorError{Connector: connector, Kind: kind, Err: cause}
}

func (e *ConnectorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Connector, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Connector, e.Kind)
}

// Unwrap exposes both the kind sentinel and the underlying cause to errors.Is.
func (e *ConnectorError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}
