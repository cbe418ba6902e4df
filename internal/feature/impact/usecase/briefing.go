package usecase

import (
	"cmp"
	"slices"
	"time"

	"competitor_backend/internal/feature/impact/domain/entity"
	"competitor_backend/internal/shared/textnorm"
)

// briefingThreatLimit is how many threats each high-priority entry carries.
const briefingThreatLimit = 3

var placeholders = map[string]struct{}{
	textnorm.Normalize(NoActivityFinding):    {},
	textnorm.Normalize(NoThreats):            {},
	textnorm.Normalize(NoOpportunities):      {},
	textnorm.Normalize(ContinueMonitoring):   {},
	textnorm.Normalize(NoMarketImplications): {},
}

func isPlaceholder(s string) bool {
	_, ok := placeholders[textnorm.Normalize(s)]
	return ok
}

// Aggregate は組織ごとの評価を1つの ExecutiveBriefing にまとめます。
// 入力順に依存しない結果を返します。
func Aggregate(assessments []entity.ImpactAssessment, now time.Time) entity.ExecutiveBriefing {
	sorted := slices.Clone(assessments)
	slices.SortStableFunc(sorted, func(a, b entity.ImpactAssessment) int {
		if c := cmp.Compare(b.ThreatLevel.Rank(), a.ThreatLevel.Rank()); c != 0 {
			return c
		}
		if c := cmp.Compare(a.OrganizationName, b.OrganizationName); c != 0 {
			return c
		}
		return cmp.Compare(a.OrganizationID, b.OrganizationID)
	})

	b := entity.ExecutiveBriefing{
		GeneratedAt:           now.UTC(),
		OrganizationsAnalyzed: len(assessments),
		HighPriorityThreats:   []entity.BriefingEntry{},
		WatchItems:            []entity.BriefingEntry{},
		Opportunities:         []entity.Opportunity{},
		Recommendations:       []string{},
	}

	actions := newActionMerger()
	seenRecs := map[string]struct{}{}

	for _, a := range sorted {
		switch {
		case a.ThreatLevel.Rank() >= entity.LevelHigh.Rank():
			b.HighPriorityThreats = append(b.HighPriorityThreats, highPriorityEntry(a))
		case a.ThreatLevel == entity.LevelMedium:
			b.WatchItems = append(b.WatchItems, entry(a))
		}

		for _, o := range a.Opportunities {
			if isPlaceholder(o) {
				continue
			}
			b.Opportunities = append(b.Opportunities, entity.Opportunity{OrganizationName: a.OrganizationName, Text: o})
		}
		for _, ai := range a.ActionItems {
			actions.add(ai, a.OrganizationName)
		}
		for _, r := range a.Recommendations {
			key := textnorm.Normalize(r)
			if key == "" || isPlaceholder(r) {
				continue
			}
			if _, ok := seenRecs[key]; ok {
				continue
			}
			seenRecs[key] = struct{}{}
			b.Recommendations = append(b.Recommendations, r)
		}
	}

	b.ActionItems = actions.items()
	b.ActionItemsByPriority = make(map[entity.Priority][]entity.BriefingActionItem, len(entity.Priorities))
	for _, p := range entity.Priorities {
		b.ActionItemsByPriority[p] = []entity.BriefingActionItem{}
	}
	for _, it := range b.ActionItems {
		b.ActionItemsByPriority[it.Priority] = append(b.ActionItemsByPriority[it.Priority], it)
	}
	return b
}

func entry(a entity.ImpactAssessment) entity.BriefingEntry {
	return entity.BriefingEntry{
		OrganizationID:   a.OrganizationID,
		OrganizationName: a.OrganizationName,
		ThreatLevel:      a.ThreatLevel,
		OpportunityLevel: a.OpportunityLevel,
		OverallImpact:    a.OverallImpact,
		Summary:          a.ExecutiveSummary,
	}
}

func highPriorityEntry(a entity.ImpactAssessment) entity.BriefingEntry {
	e := entry(a)
	for _, t := range a.Threats {
		if len(e.Threats) == briefingThreatLimit {
			break
		}
		if !isPlaceholder(t) {
			e.Threats = append(e.Threats, t)
		}
	}
	for _, ai := range a.ActionItems {
		if ai.Priority == entity.PriorityHigh {
			e.ImmediateActions = append(e.ImmediateActions, ai.Description)
		}
	}
	return e
}

type actionKey struct {
	description string
	department  string
}

// actionMerger は (説明, 部署) の組でアクションアイテムを統合します。
type actionMerger struct {
	order []actionKey
	byKey map[actionKey]*entity.BriefingActionItem
}

func newActionMerger() *actionMerger {
	return &actionMerger{byKey: map[actionKey]*entity.BriefingActionItem{}}
}

func (m *actionMerger) add(ai entity.ActionItem, org string) {
	k := actionKey{textnorm.Normalize(ai.Description), textnorm.Normalize(ai.Department)}
	if k.description == "" {
		return
	}
	cur, ok := m.byKey[k]
	if !ok {
		m.order = append(m.order, k)
		m.byKey[k] = &entity.BriefingActionItem{ActionItem: ai, Organizations: []string{org}}
		return
	}
	if ai.Priority.Rank() > cur.Priority.Rank() {
		cur.Priority = ai.Priority
		cur.Timeframe = ai.Timeframe
	}
	if !slices.Contains(cur.Organizations, org) {
		cur.Organizations = append(cur.Organizations, org)
	}
}

// items returns merged items, highest priority first, first-seen order within a priority.
func (m *actionMerger) items() []entity.BriefingActionItem {
	out := make([]entity.BriefingActionItem, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, *m.byKey[k])
	}
	slices.SortStableFunc(out, func(a, b entity.BriefingActionItem) int {
		return cmp.Compare(b.Priority.Rank(), a.Priority.Rank())
	})
	return out
}
