package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"competitor_backend/internal/feature/impact/domain"
	"competitor_backend/internal/feature/impact/domain/entity"
	updentity "competitor_backend/internal/feature/updates/domain/entity"
	"competitor_backend/internal/shared/jsonblock"
)

const (
	// maxPromptUpdates is how many recent updates are described to the model.
	maxPromptUpdates = 15
	// maxPromptDetail caps each update summary in runes.
	maxPromptDetail = 300
)

const analystSystemPrompt = "You are a strategic business intelligence analyst specializing in competitive analysis. " +
	"Provide specific, actionable insights. Answer with a single JSON object and nothing else."

// PromptPayload はAI能力に渡すプロンプトです。
type PromptPayload struct {
	System string
	Prompt string
}

// AICapability は生成AIを抽象化します。モデルや通信方式は実装側の関心事です。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type AICapability interface {
	Generate(ctx context.Context, p PromptPayload) (string, error)
}

// aiResponse is the JSON object requested from the model. Pointers detect missing fields.
type aiResponse struct {
	ExecutiveSummary         *string         `json:"executive_summary"`
	KeyFindings              *[]string       `json:"key_findings"`
	Threats                  *[]string       `json:"threats"`
	Opportunities            *[]string       `json:"opportunities"`
	StrategicRecommendations *[]string       `json:"strategic_recommendations"`
	ActionItems              *[]aiActionItem `json:"action_items"`
	MarketImplications       []string        `json:"market_implications"`
}

type aiActionItem struct {
	Priority   string `json:"priority"`
	Action     string `json:"action"`
	Department string `json:"department"`
	Timeframe  string `json:"timeframe"`
}

// buildPrompt describes the update set, the fixed levels and the business context to the model.
func buildPrompt(name string, s entity.Signals, threat, opportunity entity.Level, windowDays int, updates []updentity.Update, businessContext string) PromptPayload {
	recent := append([]updentity.Update(nil), updates...)
	sort.SliceStable(recent, func(i, j int) bool {
		if !recent[i].PublishedAt.Equal(recent[j].PublishedAt) {
			return recent[i].PublishedAt.After(recent[j].PublishedAt)
		}
		return recent[i].ID < recent[j].ID
	})
	if len(recent) > maxPromptUpdates {
		recent = recent[:maxPromptUpdates]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Competitor: %s\nWindow: last %d days\n\n", name, windowDays)
	fmt.Fprintf(&b, "Assessed threat level: %s (fixed, do not change)\n", threat)
	fmt.Fprintf(&b, "Assessed opportunity level: %s (fixed, do not change)\n", opportunity)
	fmt.Fprintf(&b, "Signals: %d updates, %d funding, %d product, %d partnership, %d leadership, %d legal; %d positive, %d negative, %d neutral\n\n",
		s.Updates, s.Funding, s.Product, s.Partnership, s.Leadership, s.Legal, s.Positive, s.Negative, s.Neutral)
	b.WriteString("Recent Activities:\n")
	for i, u := range recent {
		fmt.Fprintf(&b, "%d. %s\n", i+1, u.Title)
		if u.Summary != "" {
			fmt.Fprintf(&b, "   Details: %s\n", truncateRunes(u.Summary, maxPromptDetail))
		}
		fmt.Fprintf(&b, "   Category: %s\n   Sentiment: %s\n", u.Category, u.Sentiment)
	}
	if ctx := strings.TrimSpace(businessContext); ctx != "" {
		fmt.Fprintf(&b, "\nYour Business Context: %s\n", ctx)
	}
	b.WriteString(`
As a strategic business analyst, analyze these competitor activities and provide actionable intelligence
as a JSON object with exactly these fields:
{
  "executive_summary": "2-3 sentence overview of the competitive situation",
  "key_findings": ["specific insight about what the competitor is doing"],
  "threats": ["specific threat and why it matters"],
  "opportunities": ["opportunity you can capitalize on"],
  "strategic_recommendations": ["recommendation with rationale"],
  "action_items": [{"priority": "high|medium|low", "action": "specific action", "department": "team", "timeframe": "when"}],
  "market_implications": ["market trend or shift this indicates"]
}
Focus on actionable insights and specific recommendations, not generic observations.`)

	return PromptPayload{System: analystSystemPrompt, Prompt: b.String()}
}

// parseAINarrative validates the model output. Any structural problem yields ErrAIValidation.
func parseAINarrative(raw string) (narrative, error) {
	block, ok := jsonblock.Extract(raw)
	if !ok {
		return narrative{}, fmt.Errorf("%w: no JSON object in output", domain.ErrAIValidation)
	}
	var r aiResponse
	if err := json.Unmarshal([]byte(block), &r); err != nil {
		return narrative{}, fmt.Errorf("%w: %w", domain.ErrAIValidation, err)
	}

	switch {
	case r.ExecutiveSummary == nil || strings.TrimSpace(*r.ExecutiveSummary) == "":
		return narrative{}, fmt.Errorf("%w: executive_summary is missing", domain.ErrAIValidation)
	case r.KeyFindings == nil:
		return narrative{}, fmt.Errorf("%w: key_findings is missing", domain.ErrAIValidation)
	case r.Threats == nil:
		return narrative{}, fmt.Errorf("%w: threats is missing", domain.ErrAIValidation)
	case r.Opportunities == nil:
		return narrative{}, fmt.Errorf("%w: opportunities is missing", domain.ErrAIValidation)
	case r.StrategicRecommendations == nil:
		return narrative{}, fmt.Errorf("%w: strategic_recommendations is missing", domain.ErrAIValidation)
	case r.ActionItems == nil:
		return narrative{}, fmt.Errorf("%w: action_items is missing", domain.ErrAIValidation)
	}

	items := make([]entity.ActionItem, 0, len(*r.ActionItems))
	for i, it := range *r.ActionItems {
		p, ok := parsePriority(it.Priority)
		if !ok {
			return narrative{}, fmt.Errorf("%w: action_items[%d].priority %q", domain.ErrAIValidation, i, it.Priority)
		}
		if strings.TrimSpace(it.Action) == "" || strings.TrimSpace(it.Department) == "" {
			return narrative{}, fmt.Errorf("%w: action_items[%d] needs action and department", domain.ErrAIValidation, i)
		}
		items = append(items, entity.ActionItem{
			Priority:    p,
			Description: strings.TrimSpace(it.Action),
			Department:  strings.TrimSpace(it.Department),
			Timeframe:   strings.TrimSpace(it.Timeframe),
		})
	}

	return narrative{
		Summary:            strings.TrimSpace(*r.ExecutiveSummary),
		Findings:           cleanList(*r.KeyFindings),
		Threats:            cleanList(*r.Threats),
		Opportunities:      cleanList(*r.Opportunities),
		Recommendations:    cleanList(*r.StrategicRecommendations),
		ActionItems:        items,
		MarketImplications: cleanList(r.MarketImplications),
	}, nil
}

func parsePriority(s string) (entity.Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "critical":
		return entity.PriorityHigh, true
	case "medium":
		return entity.PriorityMedium, true
	case "low":
		return entity.PriorityLow, true
	}
	return "", false
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
