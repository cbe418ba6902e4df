// Package newsapi provides the NewsAPI (newsapi.org) source connector.
package newsapi

import "time"

// Config holds configuration for the NewsAPI connector.
type Config struct {
	APIKey   string        // sent as X-Api-Key; the connector is unconfigured without it
	BaseURL  string        // e.g. "https://newsapi.org"
	Language string        // ISO-639-1 code, default "en"
	Timeout  time.Duration // HTTP client timeout
}
