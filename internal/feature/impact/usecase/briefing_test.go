package usecase

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"competitor_backend/internal/feature/impact/domain/entity"
)

func assessment(id uint, name string, threat entity.Level) entity.ImpactAssessment {
	return entity.ImpactAssessment{
		OrganizationID:   id,
		OrganizationName: name,
		ThreatLevel:      threat,
		OpportunityLevel: entity.LevelLow,
		OverallImpact:    OverallImpact(threat),
		ExecutiveSummary: name + " summary",
	}
}

func TestAggregate_Sections(t *testing.T) {
	t.Parallel()

	initech := assessment(3, "Initech", entity.LevelHigh)
	initech.Threats = []string{"t1", "t2", "t3", "t4"}
	initech.ActionItems = []entity.ActionItem{
		{Priority: entity.PriorityHigh, Description: "Schedule competitive strategy review meeting about Initech", Department: "Product & Strategy"},
		{Priority: entity.PriorityMedium, Description: "Product team to review competitor feature releases", Department: "Product"},
	}
	in := []entity.ImpactAssessment{
		assessment(1, "Acme", entity.LevelMedium),
		initech,
		assessment(2, "Globex", entity.LevelCritical),
		assessment(4, "Hooli", entity.LevelLow),
		assessment(5, "Aardvark", entity.LevelHigh),
	}

	b := Aggregate(in, base)

	assert.Equal(t, 5, b.OrganizationsAnalyzed)
	assert.Equal(t, base, b.GeneratedAt)
	require.Len(t, b.HighPriorityThreats, 3)
	names := []string{b.HighPriorityThreats[0].OrganizationName, b.HighPriorityThreats[1].OrganizationName, b.HighPriorityThreats[2].OrganizationName}
	assert.Equal(t, []string{"Globex", "Aardvark", "Initech"}, names)
	assert.Equal(t, []string{"t1", "t2", "t3"}, b.HighPriorityThreats[2].Threats)
	assert.Equal(t, []string{"Schedule competitive strategy review meeting about Initech"}, b.HighPriorityThreats[2].ImmediateActions)
	require.Len(t, b.WatchItems, 1)
	assert.Equal(t, "Acme", b.WatchItems[0].OrganizationName)
}

func TestAggregate_MergesActionItems(t *testing.T) {
	t.Parallel()

	acme := assessment(1, "Acme", entity.LevelMedium)
	acme.ActionItems = []entity.ActionItem{
		{Priority: entity.PriorityMedium, Description: "product team to review competitor feature releases!", Department: "Product", Timeframe: "Within 2 weeks"},
		{Priority: entity.PriorityLow, Description: "Marketing to develop competitive positioning campaign", Department: "Marketing", Timeframe: "This month"},
	}
	globex := assessment(2, "Globex", entity.LevelHigh)
	globex.ActionItems = []entity.ActionItem{
		{Priority: entity.PriorityHigh, Description: "Product team to review competitor feature releases", Department: "Product", Timeframe: "This week"},
		{Priority: entity.PriorityHigh, Description: "Product team to review competitor feature releases", Department: "Design", Timeframe: "This week"},
	}

	b := Aggregate([]entity.ImpactAssessment{acme, globex}, base)

	want := []entity.BriefingActionItem{
		{
			ActionItem:    entity.ActionItem{Priority: entity.PriorityHigh, Description: "Product team to review competitor feature releases", Department: "Product", Timeframe: "This week"},
			Organizations: []string{"Globex", "Acme"},
		},
		{
			ActionItem:    entity.ActionItem{Priority: entity.PriorityHigh, Description: "Product team to review competitor feature releases", Department: "Design", Timeframe: "This week"},
			Organizations: []string{"Globex"},
		},
		{
			ActionItem:    entity.ActionItem{Priority: entity.PriorityLow, Description: "Marketing to develop competitive positioning campaign", Department: "Marketing", Timeframe: "This month"},
			Organizations: []string{"Acme"},
		},
	}
	if diff := cmp.Diff(want, b.ActionItems); diff != "" {
		t.Errorf("ActionItems mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, b.ActionItemsByPriority[entity.PriorityHigh], 2)
	assert.Empty(t, b.ActionItemsByPriority[entity.PriorityMedium])
	assert.NotNil(t, b.ActionItemsByPriority[entity.PriorityMedium])
	assert.Len(t, b.ActionItemsByPriority[entity.PriorityLow], 1)
}

func TestAggregate_OpportunitiesAndRecommendations(t *testing.T) {
	t.Parallel()

	acme := assessment(1, "Acme", entity.LevelLow)
	acme.Opportunities = []string{NoOpportunities}
	acme.Recommendations = []string{ContinueMonitoring}
	globex := assessment(2, "Globex", entity.LevelLow)
	globex.Opportunities = []string{"Potential partnership gaps in the market"}
	globex.Recommendations = []string{"Analyze their product changes for feature gaps and opportunities", "Capitalize on competitor weaknesses with targeted marketing"}
	initech := assessment(3, "Initech", entity.LevelLow)
	initech.Recommendations = []string{"analyze their product changes, for feature gaps and opportunities."}

	b := Aggregate([]entity.ImpactAssessment{acme, globex, initech}, base)

	assert.Equal(t, []entity.Opportunity{{OrganizationName: "Globex", Text: "Potential partnership gaps in the market"}}, b.Opportunities)
	assert.Equal(t, []string{
		"Analyze their product changes for feature gaps and opportunities",
		"Capitalize on competitor weaknesses with targeted marketing",
	}, b.Recommendations)
	assert.Empty(t, b.HighPriorityThreats)
	assert.Empty(t, b.WatchItems)
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	b := Aggregate(nil, base)

	assert.Equal(t, 0, b.OrganizationsAnalyzed)
	assert.NotNil(t, b.HighPriorityThreats)
	assert.NotNil(t, b.ActionItems)
	assert.NotNil(t, b.Recommendations)
	assert.Len(t, b.ActionItemsByPriority, 3)
}

func TestAggregate_InputOrderIndependent(t *testing.T) {
	t.Parallel()

	a := assessment(1, "Acme", entity.LevelHigh)
	a.ActionItems = []entity.ActionItem{{Priority: entity.PriorityHigh, Description: "x", Department: "d"}}
	g := assessment(2, "Globex", entity.LevelHigh)
	g.ActionItems = []entity.ActionItem{{Priority: entity.PriorityHigh, Description: "x", Department: "d"}}

	first := Aggregate([]entity.ImpactAssessment{a, g}, base)
	second := Aggregate([]entity.ImpactAssessment{g, a}, base)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Aggregate() depends on input order (-first +second):\n%s", diff)
	}
}
