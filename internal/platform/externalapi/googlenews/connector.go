package googlenews

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"competitor_backend/internal/feature/updates/domain/entity"
	"competitor_backend/internal/feature/updates/usecase"
	"competitor_backend/internal/platform/externalapi"
	"competitor_backend/internal/platform/externalapi/googlenews/dto"
	"competitor_backend/internal/shared/ratelimiter"
)

// Name identifies the connector in diagnostics and configuration.
const Name = "googlenews"

var pubDateLayouts = []string{time.RFC1123Z, time.RFC1123, "Mon, 2 Jan 2006 15:04:05 MST"}

// Connector は Google News のRSS検索を読む SourceConnector 実装です。認証不要のため常に設定済みです。
type Connector struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
	now     func() time.Time
}

var _ usecase.SourceConnector = (*Connector)(nil)

// New は Google News コネクタを作成します。limiter は nil でも構いません。
func New(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *Connector {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://news.google.com"
	}
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	if cfg.Country == "" {
		cfg.Country = "US"
	}
	return &Connector{cfg: cfg, client: client, limiter: limiter, now: time.Now}
}

func (c *Connector) Name() string { return Name }

func (c *Connector) Configured() bool { return true }

func (c *Connector) SupportsSocial() bool { return false }

// Search はRSSを取得し、期間外の記事を除いて返します。
func (c *Connector) Search(ctx context.Context, q usecase.Query) ([]entity.RawItem, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, externalapi.FromTransport(Name, err)
		}
	}

	lang := strings.SplitN(c.cfg.Language, "-", 2)[0]
	v := url.Values{}
	v.Set("q", q.Terms())
	v.Set("hl", c.cfg.Language)
	v.Set("gl", c.cfg.Country)
	v.Set("ceid", c.cfg.Country+":"+lang)
	u := fmt.Sprintf("%s/rss/search?%s", strings.TrimSuffix(c.cfg.BaseURL, "/"), v.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, externalapi.Malformed(Name, err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml")

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

	var feed dto.RSS
	if err := xml.NewDecoder(res.Body).Decode(&feed); err != nil {
		return nil, externalapi.Malformed(Name, err)
	}

	items := make([]entity.RawItem, 0, len(feed.Channel.Items))
	for _, it := range feed.Channel.Items {
		published := parsePubDate(it.PubDate)
		if !inWindow(published, q.Since, q.Until) {
			continue
		}
		source := strings.TrimSpace(it.Source.Name)
		title := strings.TrimSpace(it.Title)
		if source != "" {
			title = strings.TrimSpace(strings.TrimSuffix(title, " - "+source))
		} else {
			source = "Google News"
		}
		if title == "" {
			continue
		}
		items = append(items, entity.RawItem{
			Title:       title,
			URL:         strings.TrimSpace(it.Link),
			PublishedAt: published,
			Source:      source,
			Summary:     StripHTML(it.Description),
		})
	}
	return items, nil
}

// StripHTML returns the visible text of an HTML fragment with whitespace collapsed.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func parsePubDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// inWindow keeps undated items; the deduplicator orders them last.
func inWindow(t, since, until time.Time) bool {
	if t.IsZero() {
		return true
	}
	if !since.IsZero() && t.Before(since) {
		return false
	}
	if !until.IsZero() && t.After(until) {
		return false
	}
	return true
}
