package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"competitor_backend/internal/feature/impact/domain/entity"
	updentity "competitor_backend/internal/feature/updates/domain/entity"
)

func narrativeFor(name string, us []updentity.Update, businessContext string, windowDays int) narrative {
	s := ComputeSignals(us, businessContext, windowDays, DefaultVelocityBaseline)
	return ruleNarrative(ruleInput{
		name:             name,
		signals:          s,
		threat:           BucketLevel(s.ThreatScore),
		opportunity:      BucketLevel(s.OpportunityScore),
		windowDays:       windowDays,
		velocityBaseline: DefaultVelocityBaseline,
		ranked:           rankForFindings(us),
		maxFindings:      DefaultMaxFindings,
	})
}

func TestRuleNarrative_NoUpdates(t *testing.T) {
	t.Parallel()

	n := narrativeFor("Acme", nil, "", 30)

	assert.Equal(t, "No updates from Acme in the last 30 days.", n.Summary)
	assert.Equal(t, []string{NoActivityFinding}, n.Findings)
	assert.Equal(t, []string{NoThreats}, n.Threats)
	assert.Equal(t, []string{NoOpportunities}, n.Opportunities)
	assert.Equal(t, []string{ContinueMonitoring}, n.Recommendations)
	assert.Empty(t, n.ActionItems)
	assert.NotNil(t, n.ActionItems)
}

func TestRuleNarrative_Acme(t *testing.T) {
	t.Parallel()

	n := narrativeFor("Acme", acmeUpdates(), "", 7)

	assert.Equal(t, []string{
		"[funding] Acme raises $50M Series B (positive, 2026-10-15)",
		"[legal] Acme faces patent lawsuit (negative, 2026-10-17)",
		"[product] Acme launches workflow builder (neutral, 2026-10-16)",
	}, n.Findings)
	assert.Equal(t, []string{
		"Active product development may lead to competitive features",
		"New funding provides resources for aggressive growth",
	}, n.Threats)
	assert.Equal(t, []string{"Legal exposure may distract Acme and unsettle its customers"}, n.Opportunities)
	assert.Equal(t, []entity.ActionItem{
		{Priority: entity.PriorityMedium, Description: "Finance to model the impact of Acme's funding on market pricing", Department: "Finance", Timeframe: "This month"},
		{Priority: entity.PriorityMedium, Description: "Legal to assess whether Acme's legal issues affect shared markets or contracts", Department: "Legal", Timeframe: "Within 2 weeks"},
		{Priority: entity.PriorityMedium, Description: "Product team to review competitor feature releases", Department: "Product", Timeframe: "Within 2 weeks"},
		{Priority: entity.PriorityMedium, Description: "Marketing to develop competitive positioning campaign", Department: "Marketing", Timeframe: "This month"},
	}, n.ActionItems)
	assert.Equal(t, []string{"Increased investor interest in this market segment"}, n.MarketImplications)
	assert.Equal(t, "Analysis of 3 recent updates from Acme over the last 7 days. Threat level: Medium, opportunity level: Medium. 2 threats and 1 opportunities identified.", n.Summary)
}

func TestRuleNarrative_HighThreatSchedulesReview(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		funding   int
		wantLevel entity.Level
		wantTime  string
	}{
		{name: "high", funding: 2, wantLevel: entity.LevelHigh, wantTime: "This week"},
		{name: "critical", funding: 4, wantLevel: entity.LevelCritical, wantTime: "Within 48 hours"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			us := make([]updentity.Update, tt.funding)
			for i := range us {
				us[i] = updentity.Update{ID: string(rune('a' + i)), Category: updentity.CategoryFunding, Sentiment: updentity.SentimentPositive}
			}
			// a long window keeps velocity out of the score
			s := ComputeSignals(us, "", 30, DefaultVelocityBaseline)
			assert.Equal(t, tt.wantLevel, BucketLevel(s.ThreatScore))

			n := narrativeFor("Globex", us, "", 30)

			first := n.ActionItems[0]
			assert.Equal(t, entity.PriorityHigh, first.Priority)
			assert.Equal(t, "Schedule competitive strategy review meeting about Globex", first.Description)
			assert.Equal(t, tt.wantTime, first.Timeframe)
			// category actions inherit the threat priority
			assert.Equal(t, entity.PriorityHigh, n.ActionItems[1].Priority)
			assert.Equal(t, "Finance", n.ActionItems[1].Department)
		})
	}
}

func TestRuleNarrative_FindingsCapped(t *testing.T) {
	t.Parallel()

	us := make([]updentity.Update, 8)
	for i := range us {
		us[i] = updentity.Update{ID: string(rune('a' + i)), Title: "news", Category: updentity.CategoryOther, Sentiment: updentity.SentimentNeutral}
	}

	n := narrativeFor("Acme", us, "", 30)

	assert.Len(t, n.Findings, DefaultMaxFindings)
	assert.Contains(t, n.Findings[0], "undated")
	assert.Equal(t, []string{NoThreats}, n.Threats)
	assert.Equal(t, []string{ContinueMonitoring}, n.Recommendations)
	assert.Contains(t, n.Summary, "0 threats and 0 opportunities")
}

func TestRuleNarrative_RapidInnovation(t *testing.T) {
	t.Parallel()

	us := make([]updentity.Update, rapidInnovationProduct)
	for i := range us {
		us[i] = updentity.Update{ID: string(rune('a' + i)), Category: updentity.CategoryProduct, Sentiment: updentity.SentimentNeutral}
	}

	n := narrativeFor("Acme", us, "", 30)

	assert.Equal(t, []string{"Rapid innovation cycle in the industry"}, n.MarketImplications)
}
