package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"competitor_backend/internal/feature/updates/domain/entity"
	"competitor_backend/internal/feature/updates/usecase"
	"competitor_backend/internal/platform/externalapi"
	"competitor_backend/internal/platform/externalapi/perplexity/dto"
	"competitor_backend/internal/shared/jsonblock"
	"competitor_backend/internal/shared/ratelimiter"
)

// Name identifies the connector in diagnostics and configuration.
const Name = "perplexity"

const systemPrompt = "You are a competitive intelligence researcher. Provide factual information with sources. " +
	"Answer with a JSON array only, no prose."

// Connector は Perplexity のオンライン検索モデルに問い合わせる SourceConnector 実装です。
// モデルには構造化されたJSON配列での回答を要求します。
type Connector struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
	now     func() time.Time
}

var _ usecase.SourceConnector = (*Connector)(nil)

// New は Perplexity コネクタを作成します。limiter は nil でも構いません。
func New(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *Connector {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.perplexity.ai"
	}
	if cfg.Model == "" {
		cfg.Model = "sonar"
	}
	return &Connector{cfg: cfg, client: client, limiter: limiter, now: time.Now}
}

func (c *Connector) Name() string { return Name }

func (c *Connector) Configured() bool { return c.cfg.APIKey != "" }

func (c *Connector) SupportsSocial() bool { return true }

// Search はモデルに検索を依頼し、回答のJSON配列を RawItem に変換します。
// ソーシャル投稿は q.IncludeSocial が真の場合のみ返します。
func (c *Connector) Search(ctx context.Context, q usecase.Query) ([]entity.RawItem, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, externalapi.FromTransport(Name, err)
		}
	}

	payload, err := json.Marshal(dto.ChatRequest{
		Model: c.cfg.Model,
		Messages: []dto.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(q)},
		},
		Temperature:         0.2,
		MaxTokens:           4000,
		SearchRecencyFilter: recencyFilter(q),
	})
	if err != nil {
		return nil, externalapi.Malformed(Name, err)
	}

	u := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, externalapi.Malformed(Name, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, externalapi.FromTransport(Name, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "component", "connector", "connector", Name, "error", err)
		}
	}()

	if err := externalapi.FromStatus(Name, res, c.now()); err != nil {
		return nil, err
	}

	var body dto.ChatResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, externalapi.Malformed(Name, err)
	}
	if len(body.Choices) == 0 {
		return nil, externalapi.Malformed(Name, errors.New("no choices in response"))
	}
	return parseItems(body.Choices[0].Message.Content, q)
}

// BuildPrompt は検索依頼のプロンプトを組み立てます。
func BuildPrompt(q usecase.Query) string {
	var b strings.Builder
	days := int(q.Until.Sub(q.Since).Hours()/24 + 0.5)
	if q.Since.IsZero() || q.Until.IsZero() || days <= 0 {
		days = 7
	}
	fmt.Fprintf(&b, "Find recent updates and news about %s from the last %d days.\n", q.OrganizationName, days)
	sources := "news articles, press releases, and industry publications"
	if q.IncludeSocial {
		sources += ", social media (Twitter, Reddit, LinkedIn, Hacker News), and blog posts"
	}
	fmt.Fprintf(&b, "Search %s.\n", sources)
	if len(q.Keywords) > 0 {
		fmt.Fprintf(&b, "Focus on these topics: %s\n", strings.Join(q.Keywords, ", "))
	}
	limit := q.MaxResults
	if limit <= 0 {
		limit = 20
	}
	fmt.Fprintf(&b, "Return at most %d items, most recent first, as a JSON array of objects with the keys "+
		`"title", "url", "published_at" (RFC 3339 or YYYY-MM-DD), "source", "summary" and "social" `+
		"(true only for social media posts). Return [] if nothing was found.", limit)
	return b.String()
}

func recencyFilter(q usecase.Query) string {
	if q.Since.IsZero() || q.Until.IsZero() {
		return "month"
	}
	switch d := q.Until.Sub(q.Since); {
	case d <= 24*time.Hour:
		return "day"
	case d <= 7*24*time.Hour:
		return "week"
	case d <= 31*24*time.Hour:
		return "month"
	default:
		return "year"
	}
}

func parseItems(content string, q usecase.Query) ([]entity.RawItem, error) {
	block, ok := jsonblock.Extract(content)
	if !ok {
		return nil, externalapi.Malformed(Name, errors.New("no JSON array in model output"))
	}
	var raw []dto.Item
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return nil, externalapi.Malformed(Name, err)
	}

	items := make([]entity.RawItem, 0, len(raw))
	for _, it := range raw {
		title := strings.TrimSpace(it.Title)
		if title == "" || (it.Social && !q.IncludeSocial) {
			continue
		}
		source := strings.TrimSpace(it.Source)
		if source == "" {
			source = Name
		}
		items = append(items, entity.RawItem{
			Title:       title,
			URL:         strings.TrimSpace(it.URL),
			PublishedAt: parseDate(it.PublishedAt),
			Source:      source,
			Summary:     strings.TrimSpace(it.Summary),
			Social:      it.Social,
		})
	}
	return items, nil
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02", "January 2, 2006", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
