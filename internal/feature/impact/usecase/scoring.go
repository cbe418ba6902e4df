// Package usecase は事業影響評価とエグゼクティブブリーフィングのロジックを実装します。
package usecase

import (
	"math"
	"sort"

	"competitor_backend/internal/feature/impact/domain/entity"
	updentity "competitor_backend/internal/feature/updates/domain/entity"
	"competitor_backend/internal/shared/textnorm"
)

// Threat weights.
const (
	fundingWeight        = 2.5
	productWeight        = 1.0
	productContextWeight = 1.5 // added on top of productWeight
	partnershipWeight    = 0.5
	velocityWeight       = 2.0
	velocityCap          = 3.0
)

// Opportunity weights.
const (
	negativeRatioWeight = 4.0
	legalWeight         = 1.5
	leadershipWeight    = 1.0
)

// Cut points shared by threat and opportunity scores.
const (
	mediumCut   = 2.0
	highCut     = 5.0
	criticalCut = 8.0
)

// DefaultVelocityBaseline は脅威とみなす1日あたりの更新数の閾値です。
const DefaultVelocityBaseline = 1.0

// contextStopwords are ignored when matching business context against update text.
var contextStopwords = map[string]struct{}{
	"about": {}, "also": {}, "been": {}, "business": {}, "company": {}, "from": {}, "have": {},
	"into": {}, "market": {}, "more": {}, "most": {}, "other": {}, "ours": {}, "over": {},
	"that": {}, "their": {}, "them": {}, "they": {}, "this": {}, "through": {}, "what": {},
	"which": {}, "will": {}, "with": {}, "your": {},
}

// ContextTerms は事業コンテキストから照合に使う語を抽出します。4文字未満の語とストップワードは除きます。
func ContextTerms(businessContext string) map[string]struct{} {
	terms := textnorm.TokenSet(businessContext)
	for t := range terms {
		if _, stop := contextStopwords[t]; stop || len([]rune(t)) < 4 {
			delete(terms, t)
		}
	}
	return terms
}

// ComputeSignals は更新情報の集合から脅威・機会スコアを算出します。
// 結果は更新情報の並び順に依存しません。
func ComputeSignals(updates []updentity.Update, businessContext string, windowDays int, velocityBaseline float64) entity.Signals {
	if windowDays <= 0 {
		windowDays = 1
	}
	if velocityBaseline <= 0 {
		velocityBaseline = DefaultVelocityBaseline
	}
	terms := ContextTerms(businessContext)

	s := entity.Signals{Updates: len(updates)}
	for _, u := range updates {
		switch u.Category {
		case updentity.CategoryFunding:
			s.Funding++
		case updentity.CategoryProduct:
			s.Product++
			if overlaps(terms, u.Title+" "+u.Summary) {
				s.ProductContextMatches++
			}
		case updentity.CategoryPartnership:
			s.Partnership++
		case updentity.CategoryLeadership:
			s.Leadership++
		case updentity.CategoryLegal:
			s.Legal++
		}
		switch u.Sentiment {
		case updentity.SentimentPositive:
			s.Positive++
		case updentity.SentimentNegative:
			s.Negative++
		default:
			s.Neutral++
		}
	}

	s.VelocityPerDay = round(float64(s.Updates) / float64(windowDays))
	if s.Updates > 0 {
		s.NegativeRatio = round(float64(s.Negative) / float64(s.Updates))
	}

	threat := fundingWeight*float64(s.Funding) +
		productWeight*float64(s.Product) +
		productContextWeight*float64(s.ProductContextMatches) +
		partnershipWeight*float64(s.Partnership)
	if excess := float64(s.Updates)/float64(windowDays) - velocityBaseline; excess > 0 {
		threat += math.Min(excess*velocityWeight, velocityCap)
	}
	s.ThreatScore = round(threat)

	opportunity := negativeRatioWeight*float64(s.Negative)/math.Max(float64(s.Updates), 1) +
		legalWeight*float64(s.Legal) +
		leadershipWeight*float64(s.Leadership)
	s.OpportunityScore = round(opportunity)
	return s
}

// BucketLevel はスコアを Low/Medium/High/Critical に分類します。
func BucketLevel(score float64) entity.Level {
	switch {
	case score >= criticalCut:
		return entity.LevelCritical
	case score >= highCut:
		return entity.LevelHigh
	case score >= mediumCut:
		return entity.LevelMedium
	default:
		return entity.LevelLow
	}
}

// OverallImpact は脅威度から総合影響ラベルを導きます。
func OverallImpact(threat entity.Level) string {
	switch threat {
	case entity.LevelCritical:
		return "major"
	case entity.LevelHigh:
		return "significant"
	case entity.LevelMedium:
		return "moderate"
	default:
		return "minimal"
	}
}

// rankForFindings は重要な更新を先頭に並べます。
// 極性スコアの絶対値の降順、カテゴリ優先度、公開日時の降順、IDの順です。
func rankForFindings(updates []updentity.Update) []updentity.Update {
	out := append([]updentity.Update(nil), updates...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ma, mb := math.Abs(a.SentimentScore), math.Abs(b.SentimentScore); ma != mb {
			return ma > mb
		}
		if ra, rb := a.Category.Rank(), b.Category.Rank(); ra != rb {
			return ra < rb
		}
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.ID < b.ID
	})
	return out
}

func overlaps(terms map[string]struct{}, text string) bool {
	if len(terms) == 0 {
		return false
	}
	for t := range textnorm.TokenSet(text) {
		if _, ok := terms[t]; ok {
			return true
		}
	}
	return false
}

// round trims float noise so equal inputs always bucket identically.
func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
