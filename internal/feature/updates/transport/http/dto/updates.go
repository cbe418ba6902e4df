// Package dto defines data transfer objects for the updates HTTP API.
package dto

import (
	"time"

	"competitor_backend/internal/feature/updates/domain/entity"
)

// FetchRequest is the body of POST /v1/fetch. A zero OrganizationID fetches every organization.
type FetchRequest struct {
	OrganizationID uint `json:"organization_id"`
	Days           int  `json:"days" binding:"min=0,max=365"`
	MaxResults     int  `json:"max_results" binding:"min=0,max=100"`
	IncludeSocial  bool `json:"include_social"`
}

// UpdateResponse represents one stored update.
type UpdateResponse struct {
	ID                 string    `json:"id"`
	Kind               string    `json:"kind"`
	Title              string    `json:"title"`
	URL                string    `json:"url"`
	PublishedAt        time.Time `json:"published_at"`
	Source             string    `json:"source"`
	Summary            string    `json:"summary,omitempty"`
	AISummary          string    `json:"ai_summary,omitempty"`
	Category           string    `json:"category"`
	CategoryConfidence float64   `json:"category_confidence"`
	Sentiment          string    `json:"sentiment"`
	SentimentScore     float64   `json:"sentiment_score"`
	Social             bool      `json:"social,omitempty"`
}

// FromUpdate converts a stored update into its response form.
func FromUpdate(u entity.Update) UpdateResponse {
	return UpdateResponse{
		ID:                 u.ID,
		Kind:               string(u.Kind),
		Title:              u.Title,
		URL:                u.URL,
		PublishedAt:        u.PublishedAt,
		Source:             u.Source,
		Summary:            u.Summary,
		AISummary:          u.AISummary,
		Category:           string(u.Category),
		CategoryConfidence: u.CategoryConfidence,
		Sentiment:          string(u.Sentiment),
		SentimentScore:     u.SentimentScore,
		Social:             u.Social,
	}
}

// RunResponse represents one tracking run.
type RunResponse struct {
	RunID      string    `json:"run_id"`
	Connector  string    `json:"connector,omitempty"`
	Fetched    int       `json:"fetched"`
	Duplicates int       `json:"duplicates"`
	Inserted   int       `json:"inserted"`
	Exhausted  bool      `json:"exhausted"`
	Reasons    string    `json:"reasons,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// FromRun converts a tracking run into its response form.
func FromRun(r entity.TrackingRun) RunResponse {
	return RunResponse{
		RunID:      r.RunID,
		Connector:  r.Connector,
		Fetched:    r.Fetched,
		Duplicates: r.Duplicates,
		Inserted:   r.Inserted,
		Exhausted:  r.Exhausted,
		Reasons:    r.Reasons,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

// FetchErrorResponse carries the partial result of a fetch that stopped on an error.
type FetchErrorResponse struct {
	Error  string              `json:"error"`
	Result *entity.FetchResult `json:"result,omitempty"`
}
