package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"competitor_backend/internal/feature/impact/domain"
	"competitor_backend/internal/feature/impact/domain/entity"
	orgentity "competitor_backend/internal/feature/organizations/domain/entity"
	updentity "competitor_backend/internal/feature/updates/domain/entity"
)

const (
	// DefaultMaxFindings は主要所見に載せる更新の件数です。
	DefaultMaxFindings = 5
	// DefaultAITimeout はAI呼び出し1回あたりのタイムアウトです。
	DefaultAITimeout = 30 * time.Second
)

// AnalyzerOptions は Analyzer の調整値です。ゼロ値はデフォルトに置き換えられます。
type AnalyzerOptions struct {
	VelocityBaseline float64
	AITimeout        time.Duration
	MaxFindings      int
}

// AnalysisInput は1組織分の分析入力です。
type AnalysisInput struct {
	Organization    orgentity.Organization
	Updates         []updentity.Update
	BusinessContext string
	WindowStart     time.Time
	WindowEnd       time.Time
}

// Analyzer は更新情報から事業影響評価を作成します。
// 脅威度・機会度は常にルールで算出し、AIが設定されている場合はナラティブのみをAIに任せます。
// AIの失敗や不正な出力はエラーにせず、ルールベースのナラティブに切り替えます。
type Analyzer struct {
	ai   AICapability
	opts AnalyzerOptions
	now  func() time.Time
}

// NewAnalyzer は新しい Analyzer を作成します。ai は nil でも構いません。
func NewAnalyzer(ai AICapability, opts AnalyzerOptions) *Analyzer {
	if opts.VelocityBaseline <= 0 {
		opts.VelocityBaseline = DefaultVelocityBaseline
	}
	if opts.AITimeout <= 0 {
		opts.AITimeout = DefaultAITimeout
	}
	if opts.MaxFindings <= 0 {
		opts.MaxFindings = DefaultMaxFindings
	}
	return &Analyzer{ai: ai, opts: opts, now: time.Now}
}

// Analyze は1組織の評価を作成します。失敗しません。
func (a *Analyzer) Analyze(ctx context.Context, in AnalysisInput) entity.ImpactAssessment {
	windowDays := windowDays(in.WindowStart, in.WindowEnd)
	name := in.Organization.Name

	signals := ComputeSignals(in.Updates, in.BusinessContext, windowDays, a.opts.VelocityBaseline)
	threat := BucketLevel(signals.ThreatScore)
	opportunity := BucketLevel(signals.OpportunityScore)

	n := ruleNarrative(ruleInput{
		name:             name,
		signals:          signals,
		threat:           threat,
		opportunity:      opportunity,
		windowDays:       windowDays,
		velocityBaseline: a.opts.VelocityBaseline,
		ranked:           rankForFindings(in.Updates),
		maxFindings:      a.opts.MaxFindings,
	})
	mode := entity.ModeRuleBased
	var fallbackReason string

	if a.ai != nil && signals.Updates > 0 {
		aiN, err := a.narrateWithAI(ctx, buildPrompt(name, signals, threat, opportunity, windowDays, in.Updates, in.BusinessContext))
		if err != nil {
			slog.Warn("ai analysis failed, using rule-based narrative",
				"component", "impact", "organization_id", in.Organization.ID, "error", err)
			fallbackReason = err.Error()
		} else {
			if len(aiN.MarketImplications) == 0 {
				aiN.MarketImplications = n.MarketImplications
			}
			n = aiN
			mode = entity.ModeAIAugmented
		}
	}

	return entity.ImpactAssessment{
		OrganizationID:     in.Organization.ID,
		OrganizationName:   name,
		WindowStart:        in.WindowStart,
		WindowEnd:          in.WindowEnd,
		WindowDays:         windowDays,
		ThreatLevel:        threat,
		OpportunityLevel:   opportunity,
		OverallImpact:      OverallImpact(threat),
		ExecutiveSummary:   n.Summary,
		KeyFindings:        n.Findings,
		Threats:            n.Threats,
		Opportunities:      n.Opportunities,
		Recommendations:    n.Recommendations,
		ActionItems:        n.ActionItems,
		MarketImplications: n.MarketImplications,
		Signals:            signals,
		Mode:               mode,
		FallbackReason:     fallbackReason,
		AnalyzedAt:         a.now().UTC(),
	}
}

// narrateWithAI is the single AI path. Every failure is reported as ErrAIProviderFailure.
func (a *Analyzer) narrateWithAI(ctx context.Context, p PromptPayload) (narrative, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.AITimeout)
	defer cancel()

	raw, err := a.ai.Generate(ctx, p)
	if err != nil {
		return narrative{}, fmt.Errorf("%w: %w", domain.ErrAIProviderFailure, err)
	}
	return parseAINarrative(raw)
}

// windowDays rounds the window up to whole days, at least one.
func windowDays(start, end time.Time) int {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return 1
	}
	return max(int(math.Ceil(end.Sub(start).Hours()/24-1e-9)), 1)
}
