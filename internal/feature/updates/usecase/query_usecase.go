package usecase

import (
	"context"
	"fmt"
	"time"

	"competitor_backend/internal/feature/updates/domain"
	"competitor_backend/internal/feature/updates/domain/entity"
)

const (
	// DefaultListDays は更新一覧の対象期間のデフォルト値です。
	DefaultListDays = 30
	// MaxListDays は更新一覧の対象期間の上限です。
	MaxListDays = 365
	// DefaultRunLimit は実行履歴の返却件数のデフォルト値です。
	DefaultRunLimit = 20
)

// QueryUsecase は保存済み更新情報の参照を提供します。
type QueryUsecase struct {
	orgs    OrganizationSource
	updates UpdateRepository
	runs    TrackingRepository
	stats   StatsRepository
	now     func() time.Time
}

// NewQueryUsecase は新しい QueryUsecase を作成します。
func NewQueryUsecase(orgs OrganizationSource, updates UpdateRepository, runs TrackingRepository, stats StatsRepository) *QueryUsecase {
	return &QueryUsecase{orgs: orgs, updates: updates, runs: runs, stats: stats, now: time.Now}
}

// ListUpdates は指定組織の直近 days 日の更新情報を新しい順に返します。
// since は時間単位に切り捨てられるため、同じ時間帯の問い合わせはキャッシュを共有できます。
func (q *QueryUsecase) ListUpdates(ctx context.Context, organizationID uint, days int) ([]entity.Update, error) {
	if days <= 0 {
		days = DefaultListDays
	}
	if days > MaxListDays {
		days = MaxListDays
	}
	if _, err := q.orgs.FindByID(ctx, organizationID); err != nil {
		return nil, err
	}
	since := q.now().UTC().AddDate(0, 0, -days).Truncate(time.Hour)
	us, err := q.updates.FindByOrganization(ctx, organizationID, since)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return us, nil
}

// ListRuns は指定組織のフェッチ実行履歴を新しい順に返します。
func (q *QueryUsecase) ListRuns(ctx context.Context, organizationID uint, limit int) ([]entity.TrackingRun, error) {
	if limit <= 0 || limit > 100 {
		limit = DefaultRunLimit
	}
	if _, err := q.orgs.FindByID(ctx, organizationID); err != nil {
		return nil, err
	}
	runs, err := q.runs.ListByOrganization(ctx, organizationID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return runs, nil
}

// Stats は組織数・更新数・直近24時間の更新数・カテゴリ別件数を返します。
func (q *QueryUsecase) Stats(ctx context.Context) (*entity.Stats, error) {
	s, err := q.stats.Stats(ctx, q.now().UTC().Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return s, nil
}
