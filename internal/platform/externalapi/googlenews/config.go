// Package googlenews provides the free Google News RSS source connector.
package googlenews

import "time"

// Config holds configuration for the Google News RSS connector. No credential is needed.
type Config struct {
	BaseURL  string        // e.g. "https://news.google.com"
	Language string        // hl, e.g. "en-US"
	Country  string        // gl, e.g. "US"
	Timeout  time.Duration // HTTP client timeout
}
