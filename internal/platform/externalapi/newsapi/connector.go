package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"competitor_backend/internal/feature/updates/domain"
	"competitor_backend/internal/feature/updates/domain/entity"
	"competitor_backend/internal/feature/updates/usecase"
	"competitor_backend/internal/platform/externalapi"
	"competitor_backend/internal/platform/externalapi/newsapi/dto"
	"competitor_backend/internal/shared/ratelimiter"
)

// Name identifies the connector in diagnostics and configuration.
const Name = "newsapi"

// maxPageSize is the largest pageSize NewsAPI accepts.
const maxPageSize = 100

// removedTitle marks articles withdrawn by the publisher.
const removedTitle = "[Removed]"

// Connector は NewsAPI の /v2/everything を検索する SourceConnector 実装です。
type Connector struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
	now     func() time.Time
}

var _ usecase.SourceConnector = (*Connector)(nil)

// New は NewsAPI コネクタを作成します。limiter は nil でも構いません。
func New(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *Connector {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://newsapi.org"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &Connector{cfg: cfg, client: client, limiter: limiter, now: time.Now}
}

func (c *Connector) Name() string { return Name }

func (c *Connector) Configured() bool { return c.cfg.APIKey != "" }

func (c *Connector) SupportsSocial() bool { return false }

// Search は組織名とキーワードで記事を検索し、新しい順に返します。
func (c *Connector) Search(ctx context.Context, q usecase.Query) ([]entity.RawItem, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, externalapi.FromTransport(Name, err)
		}
	}

	pageSize := q.MaxResults
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	v := url.Values{}
	v.Set("q", q.Terms())
	v.Set("sortBy", "publishedAt")
	v.Set("language", c.cfg.Language)
	v.Set("pageSize", strconv.Itoa(pageSize))
	if !q.Since.IsZero() {
		v.Set("from", q.Since.UTC().Format(time.RFC3339))
	}
	if !q.Until.IsZero() {
		v.Set("to", q.Until.UTC().Format(time.RFC3339))
	}
	u := fmt.Sprintf("%s/v2/everything?%s", strings.TrimSuffix(c.cfg.BaseURL, "/"), v.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, externalapi.Malformed(Name, err)
	}
	req.Header.Set("X-Api-Key", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, externalapi.FromTransport(Name, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "component", "connector", "connector", Name, "error", err)
		}
	}()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, externalapi.FromTransport(Name, err)
	}
	var body dto.EverythingResponse
	decodeErr := json.Unmarshal(raw, &body)

	// NewsAPIはエラー時もJSONでコードを返すため、ステータスより先にコードを見る
	if decodeErr == nil && body.Status == "error" {
		return nil, c.fromCode(body, res)
	}
	if err := externalapi.FromStatus(Name, res, c.now()); err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, externalapi.Malformed(Name, decodeErr)
	}

	items := make([]entity.RawItem, 0, len(body.Articles))
	for _, a := range body.Articles {
		title := strings.TrimSpace(a.Title)
		if title == "" || title == removedTitle || a.URL == "" {
			continue
		}
		published, err := time.Parse(time.RFC3339, a.PublishedAt)
		if err != nil {
			published = time.Time{}
		}
		source := a.Source.Name
		if source == "" {
			source = Name
		}
		items = append(items, entity.RawItem{
			Title:       title,
			URL:         a.URL,
			PublishedAt: published.UTC(),
			Source:      source,
			Summary:     strings.TrimSpace(a.Description),
		})
	}
	return items, nil
}

// fromCode maps NewsAPI error codes to connector error kinds.
func (c *Connector) fromCode(body dto.EverythingResponse, res *http.Response) error {
	cause := fmt.Errorf("%s: %s", body.Code, body.Message)
	switch body.Code {
	case "apiKeyInvalid", "apiKeyMissing", "apiKeyDisabled", "apiKeyExhausted":
		return domain.NewConnectorError(Name, domain.ErrConnectorUnauthorized, cause)
	case "rateLimited":
		e := domain.NewConnectorError(Name, domain.ErrConnectorRateLimited, cause)
		e.RetryAfter = externalapi.ParseRetryAfter(res.Header.Get("Retry-After"), c.now())
		return e
	case "unexpectedError":
		return domain.NewConnectorError(Name, domain.ErrConnectorUnavailable, cause)
	}
	if err := externalapi.FromStatus(Name, res, c.now()); err != nil {
		return err
	}
	return domain.NewConnectorError(Name, domain.ErrConnectorMalformedResponse, cause)
}
