// Package perplexity provides the Perplexity chat-completions source connector.
package perplexity

import "time"

// Config holds configuration for the Perplexity connector.
type Config struct {
	APIKey  string        // bearer token; the connector is unconfigured without it
	BaseURL string        // e.g. "https://api.perplexity.ai"
	Model   string        // online search model, default "sonar"
	Timeout time.Duration // HTTP client timeout
}
