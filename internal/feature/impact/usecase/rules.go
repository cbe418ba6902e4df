package usecase

import (
	"fmt"
	"strings"

	"competitor_backend/internal/feature/impact/domain/entity"
	updentity "competitor_backend/internal/feature/updates/domain/entity"
)

// Placeholders used when a rule-based list would otherwise be empty.
// The briefing aggregator drops them.
const (
	NoActivityFinding    = "No recent activity detected"
	NoThreats            = "No immediate threats identified"
	NoOpportunities      = "No clear opportunities identified"
	ContinueMonitoring   = "Continue monitoring"
	NoMarketImplications = "No significant market shifts detected"
)

// rapidInnovationProduct is the product update count that signals a fast innovation cycle.
const rapidInnovationProduct = 3

// narrative はナラティブ部分（要約・所見・推奨・アクション）です。
// 脅威度・機会度は含まず、常にルールで算出した値が使われます。
type narrative struct {
	Summary            string
	Findings           []string
	Threats            []string
	Opportunities      []string
	Recommendations    []string
	ActionItems        []entity.ActionItem
	MarketImplications []string
}

// response は {脅威度, カテゴリ} から推奨とアクションへの固定の対応です。
type response struct {
	recommendation string
	action         string
	department     string
	timeframe      string
}

// categoryResponses は出現したカテゴリごとの対応です。%s には組織名が入ります。
var categoryResponses = []struct {
	category updentity.Category
	response response
}{
	{updentity.CategoryFunding, response{
		"Assess how %s's new funding could change pricing and hiring in your market",
		"Finance to model the impact of %s's funding on market pricing", "Finance", "This month",
	}},
	{updentity.CategoryLeadership, response{
		"Track %s's leadership changes for shifts in strategic direction",
		"Strategy team to profile %s's new leadership", "Product & Strategy", "This month",
	}},
	{updentity.CategoryPartnership, response{
		"Review the partnership landscape for gaps %s leaves open",
		"Business development to evaluate counter-partnerships to %s's alliances", "Business Development", "This quarter",
	}},
	{updentity.CategoryLegal, response{
		"Review exposure to the legal issues affecting %s",
		"Legal to assess whether %s's legal issues affect shared markets or contracts", "Legal", "Within 2 weeks",
	}},
	{updentity.CategoryProduct, response{
		"Analyze their product changes for feature gaps and opportunities",
		"Product team to review competitor feature releases", "Product", "Within 2 weeks",
	}},
}

// ruleInput is everything the rule-based narrative depends on.
type ruleInput struct {
	name             string
	signals          entity.Signals
	threat           entity.Level
	opportunity      entity.Level
	windowDays       int
	velocityBaseline float64
	ranked           []updentity.Update
	maxFindings      int
}

// ruleNarrative builds the deterministic narrative for one organization.
func ruleNarrative(in ruleInput) narrative {
	name, s, threat, opportunity, windowDays := in.name, in.signals, in.threat, in.opportunity, in.windowDays
	if s.Updates == 0 {
		return narrative{
			Summary:            fmt.Sprintf("No updates from %s in the last %d days.", name, windowDays),
			Findings:           []string{NoActivityFinding},
			Threats:            []string{NoThreats},
			Opportunities:      []string{NoOpportunities},
			Recommendations:    []string{ContinueMonitoring},
			ActionItems:        []entity.ActionItem{},
			MarketImplications: []string{NoMarketImplications},
		}
	}

	var n narrative
	for i, u := range in.ranked {
		if i == in.maxFindings {
			break
		}
		n.Findings = append(n.Findings, formatFinding(u))
	}

	if s.Product > 0 {
		n.Threats = append(n.Threats, "Active product development may lead to competitive features")
	}
	if s.ProductContextMatches > 0 {
		n.Threats = append(n.Threats, fmt.Sprintf("%d product updates overlap with your business focus", s.ProductContextMatches))
	}
	if s.Funding > 0 {
		n.Threats = append(n.Threats, "New funding provides resources for aggressive growth")
	}
	if float64(s.Updates)/float64(max(windowDays, 1)) > in.velocityBaseline {
		n.Threats = append(n.Threats, fmt.Sprintf("High activity rate (%.1f updates/day) signals an aggressive push", s.VelocityPerDay))
	}
	if s.Partnership > 0 {
		n.Opportunities = append(n.Opportunities, "Potential partnership gaps in the market")
	}
	if s.Leadership > 0 {
		n.Opportunities = append(n.Opportunities, fmt.Sprintf("Leadership changes may create strategic uncertainty at %s", name))
	}
	if s.Legal > 0 {
		n.Opportunities = append(n.Opportunities, fmt.Sprintf("Legal exposure may distract %s and unsettle its customers", name))
	}
	if s.Negative > s.Positive {
		n.Opportunities = append(n.Opportunities, "Market dissatisfaction could be an opportunity")
	}

	threatPriority := entity.PriorityForLevel(threat)
	if threat.Rank() >= entity.LevelHigh.Rank() {
		timeframe := "This week"
		if threat == entity.LevelCritical {
			timeframe = "Within 48 hours"
		}
		n.Recommendations = append(n.Recommendations, fmt.Sprintf("Monitor %s closely and review competitive strategy", name))
		n.ActionItems = append(n.ActionItems, entity.ActionItem{
			Priority:    entity.PriorityHigh,
			Description: fmt.Sprintf("Schedule competitive strategy review meeting about %s", name),
			Department:  "Product & Strategy",
			Timeframe:   timeframe,
		})
	}
	counts := map[updentity.Category]int{
		updentity.CategoryFunding:     s.Funding,
		updentity.CategoryLeadership:  s.Leadership,
		updentity.CategoryPartnership: s.Partnership,
		updentity.CategoryLegal:       s.Legal,
		updentity.CategoryProduct:     s.Product,
	}
	for _, cr := range categoryResponses {
		if counts[cr.category] == 0 {
			continue
		}
		n.Recommendations = append(n.Recommendations, withName(cr.response.recommendation, name))
		n.ActionItems = append(n.ActionItems, entity.ActionItem{
			Priority:    threatPriority,
			Description: withName(cr.response.action, name),
			Department:  cr.response.department,
			Timeframe:   cr.response.timeframe,
		})
	}
	if opportunity.Rank() >= entity.LevelMedium.Rank() {
		n.Recommendations = append(n.Recommendations, "Capitalize on competitor weaknesses with targeted marketing")
		n.ActionItems = append(n.ActionItems, entity.ActionItem{
			Priority:    entity.PriorityForLevel(opportunity),
			Description: "Marketing to develop competitive positioning campaign",
			Department:  "Marketing",
			Timeframe:   "This month",
		})
	}

	if s.Funding > 0 {
		n.MarketImplications = append(n.MarketImplications, "Increased investor interest in this market segment")
	}
	if s.Product >= rapidInnovationProduct {
		n.MarketImplications = append(n.MarketImplications, "Rapid innovation cycle in the industry")
	}

	n.Threats = orDefault(n.Threats, NoThreats)
	n.Opportunities = orDefault(n.Opportunities, NoOpportunities)
	n.Recommendations = orDefault(n.Recommendations, ContinueMonitoring)
	n.MarketImplications = orDefault(n.MarketImplications, NoMarketImplications)
	if n.ActionItems == nil {
		n.ActionItems = []entity.ActionItem{}
	}
	n.Summary = fmt.Sprintf("Analysis of %d recent updates from %s over the last %d days. Threat level: %s, opportunity level: %s. %d threats and %d opportunities identified.",
		s.Updates, name, windowDays, threat, opportunity, countReal(n.Threats, NoThreats), countReal(n.Opportunities, NoOpportunities))
	return n
}

func formatFinding(u updentity.Update) string {
	date := "undated"
	if !u.PublishedAt.IsZero() {
		date = u.PublishedAt.UTC().Format("2006-01-02")
	}
	return fmt.Sprintf("[%s] %s (%s, %s)", u.Category, u.Title, u.Sentiment, date)
}

func withName(format, name string) string {
	if strings.Contains(format, "%s") {
		return fmt.Sprintf(format, name)
	}
	return format
}

func orDefault(list []string, placeholder string) []string {
	if len(list) == 0 {
		return []string{placeholder}
	}
	return list
}

func countReal(list []string, placeholder string) int {
	if len(list) == 1 && list[0] == placeholder {
		return 0
	}
	return len(list)
}
