// Package entity defines impact assessments and executive briefings.
package entity

import "time"

// Level は脅威度・機会度の順序付き評価です。
type Level string

const (
	LevelLow      Level = "Low"
	LevelMedium   Level = "Medium"
	LevelHigh     Level = "High"
	LevelCritical Level = "Critical"
)

// Rank は Low=0 から Critical=3 までの順位を返します。未知の値は -1 です。
func (l Level) Rank() int {
	switch l {
	case LevelLow:
		return 0
	case LevelMedium:
		return 1
	case LevelHigh:
		return 2
	case LevelCritical:
		return 3
	}
	return -1
}

// Priority はアクションアイテムの優先度です。
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists every priority from highest to lowest.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Rank は Low=0 から High=2 までの順位を返します。未知の値は -1 です。
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	}
	return -1
}

// PriorityForLevel は評価レベルをアクションの優先度に写像します。High と Critical は High です。
func PriorityForLevel(l Level) Priority {
	switch {
	case l.Rank() >= LevelHigh.Rank():
		return PriorityHigh
	case l == LevelMedium:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Mode は評価のナラティブがどちらの経路で生成されたかを示します。
type Mode string

const (
	ModeRuleBased   Mode = "rule_based"
	ModeAIAugmented Mode = "ai_augmented"
)

// ActionItem は評価に付随する具体的な対応策です。
type ActionItem struct {
	Priority    Priority `json:"priority"`
	Description string   `json:"description"`
	Department  string   `json:"department"`
	Timeframe   string   `json:"timeframe"`
}

// Signals は脅威度・機会度の算出に使った集計値です。
type Signals struct {
	Updates               int     `json:"updates"`
	Funding               int     `json:"funding"`
	Product               int     `json:"product"`
	ProductContextMatches int     `json:"product_context_matches"`
	Partnership           int     `json:"partnership"`
	Leadership            int     `json:"leadership"`
	Legal                 int     `json:"legal"`
	Positive              int     `json:"positive"`
	Negative              int     `json:"negative"`
	Neutral               int     `json:"neutral"`
	VelocityPerDay        float64 `json:"velocity_per_day"`
	NegativeRatio         float64 `json:"negative_ratio"`
	ThreatScore           float64 `json:"threat_score"`
	OpportunityScore      float64 `json:"opportunity_score"`
}

// ImpactAssessment は1組織の更新情報から導いた事業影響評価です。
// 脅威度・機会度は更新情報と事業コンテキストのみから決定的に算出されます。
type ImpactAssessment struct {
	OrganizationID     uint         `json:"organization_id"`
	OrganizationName   string       `json:"organization_name"`
	WindowStart        time.Time    `json:"window_start"`
	WindowEnd          time.Time    `json:"window_end"`
	WindowDays         int          `json:"window_days"`
	ThreatLevel        Level        `json:"threat_level"`
	OpportunityLevel   Level        `json:"opportunity_level"`
	OverallImpact      string       `json:"overall_impact"`
	ExecutiveSummary   string       `json:"executive_summary"`
	KeyFindings        []string     `json:"key_findings"`
	Threats            []string     `json:"threats"`
	Opportunities      []string     `json:"opportunities"`
	Recommendations    []string     `json:"recommendations"`
	ActionItems        []ActionItem `json:"action_items"`
	MarketImplications []string     `json:"market_implications"`
	Signals            Signals      `json:"signals"`
	Mode               Mode         `json:"mode"`
	FallbackReason     string       `json:"fallback_reason,omitempty"`
	AnalyzedAt         time.Time    `json:"analyzed_at"`
}
