// Package gemini はGoogle Gemini APIを使用した分析ナラティブ生成と極性判定を提供します。
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"competitor_backend/internal/feature/impact/usecase"
	updentity "competitor_backend/internal/feature/updates/domain/entity"
	updusecase "competitor_backend/internal/feature/updates/usecase"
	"competitor_backend/internal/shared/jsonblock"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
)

const sentimentSystemPrompt = "You classify the sentiment of news about a company from the company's point of view. " +
	`Answer with a single JSON object: {"sentiment": "positive|neutral|negative", "score": number between -1 and 1}.`

const summarySystemPrompt = "You are a business analyst summarizing competitor news. " +
	"Focus on the key facts and business implications. " +
	`Answer with a single JSON object: {"summary": "..."}.`

// Config はGeminiクライアントの設定です。
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL string
}

// Client はGemini APIを使用してテキストを生成します。
type Client struct {
	client *genai.Client
	model  string
}

// ClientがAICapability・SentimentJudge・ArticleSummarizerを実装していることをコンパイル時に検証します。
var (
	_ usecase.AICapability         = (*Client)(nil)
	_ updusecase.SentimentJudge    = (*Client)(nil)
	_ updusecase.ArticleSummarizer = (*Client)(nil)
)

// NewClient はAPIキーを使用してClientの新しいインスタンスを生成します。
// httpClient が nil の場合はSDKのデフォルトを使用します。
func NewClient(ctx context.Context, cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{client: client, model: cfg.Model}, nil
}

// Generate はシステム指示付きでJSON応答を要求し、生成テキストを返します。
func (c *Client) Generate(ctx context.Context, p usecase.PromptPayload) (string, error) {
	return c.generate(ctx, p.System, p.Prompt)
}

// JudgeSentiment はタイトルと概要から極性ラベルとスコアを判定します。
func (c *Client) JudgeSentiment(ctx context.Context, title, summary string) (updentity.Sentiment, float64, error) {
	prompt := "Title: " + title
	if summary != "" {
		prompt += "\nSummary: " + summary
	}
	text, err := c.generate(ctx, sentimentSystemPrompt, prompt)
	if err != nil {
		return "", 0, err
	}
	return parseSentiment(text)
}

// SummarizeArticle は記事を maxWords 語以内で要約します。
func (c *Client) SummarizeArticle(ctx context.Context, title, content string, maxWords int) (string, error) {
	prompt := fmt.Sprintf("Summarize the following news article in %d words or less.\n\nTitle: %s\n\nContent: %s", maxWords, title, content)
	text, err := c.generate(ctx, summarySystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	return parseSummary(text)
}

func (c *Client) generate(ctx context.Context, system, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.2),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

func parseSummary(text string) (string, error) {
	block, ok := jsonblock.Extract(text)
	if !ok {
		return "", fmt.Errorf("summary response has no JSON object: %q", text)
	}
	var r summaryResponse
	if err := json.Unmarshal([]byte(block), &r); err != nil {
		return "", fmt.Errorf("decode summary response: %w", err)
	}
	summary := strings.TrimSpace(r.Summary)
	if summary == "" {
		return "", errors.New("summary response is empty")
	}
	return summary, nil
}

type sentimentResponse struct {
	Sentiment string   `json:"sentiment"`
	Score     *float64 `json:"score"`
}

// parseSentiment は判定結果を検証します。スコアは [-1, 1] に丸め、符号をラベルに揃えます。
func parseSentiment(text string) (updentity.Sentiment, float64, error) {
	block, ok := jsonblock.Extract(text)
	if !ok {
		return "", 0, fmt.Errorf("sentiment response has no JSON object: %q", text)
	}
	var r sentimentResponse
	if err := json.Unmarshal([]byte(block), &r); err != nil {
		return "", 0, fmt.Errorf("decode sentiment response: %w", err)
	}

	var label updentity.Sentiment
	switch strings.ToLower(strings.TrimSpace(r.Sentiment)) {
	case "positive":
		label = updentity.SentimentPositive
	case "negative":
		label = updentity.SentimentNegative
	case "neutral":
		label = updentity.SentimentNeutral
	default:
		return "", 0, fmt.Errorf("unknown sentiment %q", r.Sentiment)
	}

	var score float64
	if r.Score != nil {
		score = math.Max(-1, math.Min(1, *r.Score))
	}
	switch {
	case label == updentity.SentimentNeutral:
		score = 0
	case label == updentity.SentimentPositive && score <= 0:
		score = 0.5
	case label == updentity.SentimentNegative && score >= 0:
		score = -0.5
	}
	return label, score, nil
}
