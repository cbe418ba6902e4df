package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"competitor_backend/internal/feature/impact/domain/entity"
	orgentity "competitor_backend/internal/feature/organizations/domain/entity"
	upddomain "competitor_backend/internal/feature/updates/domain"
	updentity "competitor_backend/internal/feature/updates/domain/entity"
)

const (
	// DefaultWindowDays は分析対象期間（日数）のデフォルト値です。
	DefaultWindowDays = 30
	// DefaultConcurrency はブリーフィング作成時に同時に分析する組織数です。
	DefaultConcurrency = 3
	// MaxBusinessContextLength は自社の事業説明として受け付ける最大文字数です。
	MaxBusinessContextLength = 2000
)

// OrganizationSource は分析対象の組織を参照します。
type OrganizationSource interface {
	FindByID(ctx context.Context, id uint) (*orgentity.Organization, error)
	List(ctx context.Context) ([]orgentity.Organization, error)
}

// UpdateReader は保存済みの更新情報を参照します。
type UpdateReader interface {
	FindByOrganization(ctx context.Context, organizationID uint, since time.Time) ([]updentity.Update, error)
}

// ImpactOptions は ImpactUsecase の調整値です。
type ImpactOptions struct {
	WindowDays  int
	Concurrency int
}

// ImpactUsecase は保存済みの更新情報から影響評価とブリーフィングを作成します。結果は永続化しません。
type ImpactUsecase struct {
	orgs     OrganizationSource
	updates  UpdateReader
	analyzer *Analyzer
	opts     ImpactOptions
	now      func() time.Time
}

// NewImpactUsecase は新しい ImpactUsecase を作成します。
func NewImpactUsecase(orgs OrganizationSource, updates UpdateReader, analyzer *Analyzer, opts ImpactOptions) *ImpactUsecase {
	if opts.WindowDays <= 0 {
		opts.WindowDays = DefaultWindowDays
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &ImpactUsecase{orgs: orgs, updates: updates, analyzer: analyzer, opts: opts, now: time.Now}
}

// AnalyzeImpact は1組織の影響評価を返します。
// 組織が存在しない場合は organizations の ErrOrganizationNotFound を返します。
func (u *ImpactUsecase) AnalyzeImpact(ctx context.Context, organizationID uint, businessContext string) (*entity.ImpactAssessment, error) {
	org, err := u.orgs.FindByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	start, end := u.window()
	a, err := u.analyzeOne(ctx, *org, businessContext, start, end)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// BuildExecutiveBriefing は全組織を分析し、結果を1つのブリーフィングに統合します。
// 1組織でも永続化エラーが起きた場合は全体がエラーになります。
func (u *ImpactUsecase) BuildExecutiveBriefing(ctx context.Context, businessContext string) (*entity.ExecutiveBriefing, error) {
	orgs, err := u.orgs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w: %w", upddomain.ErrPersistence, err)
	}
	start, end := u.window()

	assessments := make([]entity.ImpactAssessment, len(orgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.Concurrency)
	for i := range orgs {
		g.Go(func() error {
			a, err := u.analyzeOne(gctx, orgs[i], businessContext, start, end)
			if err != nil {
				return err
			}
			assessments[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := Aggregate(assessments, u.now())
	return &b, nil
}

func (u *ImpactUsecase) analyzeOne(ctx context.Context, org orgentity.Organization, businessContext string, start, end time.Time) (entity.ImpactAssessment, error) {
	us, err := u.updates.FindByOrganization(ctx, org.ID, start)
	if err != nil {
		return entity.ImpactAssessment{}, fmt.Errorf("load updates for %d: %w: %w", org.ID, upddomain.ErrPersistence, err)
	}
	// 期間は [start, end) です。end 以降に公開されたものは次の時間帯で数えます
	inWindow := us[:0:0]
	for _, up := range us {
		if up.PublishedAt.Before(end) {
			inWindow = append(inWindow, up)
		}
	}
	return u.analyzer.Analyze(ctx, AnalysisInput{
		Organization:    org,
		Updates:         inWindow,
		BusinessContext: businessContext,
		WindowStart:     start,
		WindowEnd:       end,
	}), nil
}

// window は時間単位に切り捨てた分析期間 [start, end) を返します。同じ時間帯の問い合わせはキャッシュを共有できます。
func (u *ImpactUsecase) window() (time.Time, time.Time) {
	end := u.now().UTC().Truncate(time.Hour)
	return end.AddDate(0, 0, -u.opts.WindowDays), end
}
