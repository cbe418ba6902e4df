// Package dto defines the Perplexity wire format and the item schema requested from the model.
package dto

// ChatRequest is the body of POST /chat/completions.
type ChatRequest struct {
	Model               string    `json:"model"`
	Messages            []Message `json:"messages"`
	Temperature         float64   `json:"temperature"`
	MaxTokens           int       `json:"max_tokens,omitempty"`
	SearchRecencyFilter string    `json:"search_recency_filter,omitempty"`
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is the subset of the completion response the connector reads.
type ChatResponse struct {
	Choices   []Choice `json:"choices"`
	Citations []string `json:"citations"`
}

// Choice holds one completion.
type Choice struct {
	Message Message `json:"message"`
}

// Item is the schema the model is asked to emit, as a JSON array.
type Item struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	Source      string `json:"source"`
	Summary     string `json:"summary"`
	Social      bool   `json:"social"`
}
