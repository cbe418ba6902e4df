package entity

import "time"

// BriefingEntry は1組織分の要約です。
type BriefingEntry struct {
	OrganizationID   uint     `json:"organization_id"`
	OrganizationName string   `json:"organization_name"`
	ThreatLevel      Level    `json:"threat_level"`
	OpportunityLevel Level    `json:"opportunity_level"`
	OverallImpact    string   `json:"overall_impact"`
	Summary          string   `json:"summary"`
	Threats          []string `json:"threats,omitempty"`
	ImmediateActions []string `json:"immediate_actions,omitempty"`
}

// Opportunity は組織名付きの機会です。
type Opportunity struct {
	OrganizationName string `json:"organization_name"`
	Text             string `json:"text"`
}

// BriefingActionItem は組織をまたいで統合されたアクションアイテムです。
// 同じ (説明, 部署) の組が複数の組織から出た場合は1件にまとめ、最も高い優先度を採用します。
type BriefingActionItem struct {
	ActionItem
	Organizations []string `json:"organizations"`
}

// ExecutiveBriefing は全組織の評価を統合した経営層向けサマリーです。永続化されません。
type ExecutiveBriefing struct {
	GeneratedAt           time.Time                         `json:"generated_at"`
	OrganizationsAnalyzed int                               `json:"organizations_analyzed"`
	HighPriorityThreats   []BriefingEntry                   `json:"high_priority_threats"`
	WatchItems            []BriefingEntry                   `json:"watch_items"`
	Opportunities         []Opportunity                     `json:"opportunities"`
	ActionItems           []BriefingActionItem              `json:"action_items"`
	ActionItemsByPriority map[Priority][]BriefingActionItem `json:"action_items_by_priority"`
	Recommendations       []string                          `json:"recommendations"`
}
