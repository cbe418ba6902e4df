// Package profile extracts a coarse organization profile from its homepage.
package profile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"competitor_backend/internal/feature/organizations/domain/entity"
	"competitor_backend/internal/feature/organizations/usecase"
	"competitor_backend/internal/shared/textnorm"
)

// maxBody caps how much of a homepage is parsed.
const maxBody = 2 << 20

// industryHints is checked in order; the first industry with a matching phrase wins.
var industryHints = []struct {
	industry string
	phrases  []string
}{
	{"Artificial Intelligence", []string{"artificial intelligence", "machine learning", "generative ai", "llm"}},
	{"Financial Services", []string{"fintech", "payments", "banking", "bank", "insurance", "lending"}},
	{"Healthcare", []string{"healthcare", "health", "medical", "pharma", "biotech", "clinical"}},
	{"Aerospace", []string{"aerospace", "rocket", "rockets", "satellite", "spacecraft"}},
	{"Energy", []string{"energy", "solar", "renewable", "battery", "oil and gas"}},
	{"Automotive", []string{"automotive", "vehicle", "vehicles", "electric car"}},
	{"Retail", []string{"ecommerce", "e commerce", "retail", "shop", "marketplace"}},
	{"Education", []string{"education", "edtech", "learning platform", "courses"}},
	{"Software", []string{"software", "saas", "cloud", "platform", "developer", "api"}},
}

// Fetcher downloads a homepage and reads its meta tags.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

var _ usecase.ProfileFetcher = (*Fetcher)(nil)

// NewFetcher returns a Fetcher; a nil client gets a 10s timeout client.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Fetcher{client: client, userAgent: "competitor-backend/1.0"}
}

// FetchProfile reads description, keywords and an industry guess from website.
func (f *Fetcher) FetchProfile(ctx context.Context, website string) (*entity.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, website, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request homepage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("homepage returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("parse homepage: %w", err)
	}
	return Extract(doc), nil
}

// Extract builds a Profile from a parsed homepage.
func Extract(doc *goquery.Document) *entity.Profile {
	p := &entity.Profile{
		Description: meta(doc, `meta[name="description"]`),
	}
	if p.Description == "" {
		p.Description = meta(doc, `meta[property="og:description"]`)
	}
	for _, k := range strings.Split(meta(doc, `meta[name="keywords"]`), ",") {
		if k = strings.TrimSpace(k); k != "" {
			p.Keywords = append(p.Keywords, k)
		}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	p.Industry = GuessIndustry(title + " " + p.Description + " " + strings.Join(p.Keywords, " "))
	return p
}

// GuessIndustry returns the first industry whose hint occurs in text, or "".
func GuessIndustry(text string) string {
	norm := textnorm.Normalize(text)
	for _, h := range industryHints {
		for _, phrase := range h.phrases {
			if textnorm.ContainsPhrase(norm, phrase) {
				return h.industry
			}
		}
	}
	return ""
}

func meta(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(v)
}
