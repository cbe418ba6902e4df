// Package dto defines the NewsAPI wire format.
package dto

// EverythingResponse is the body of GET /v2/everything.
// Failed requests carry Status "error" with a Code and Message.
type EverythingResponse struct {
	Status       string    `json:"status"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

// Article is one search hit.
type Article struct {
	Source      Source `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// Source names the publisher.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
