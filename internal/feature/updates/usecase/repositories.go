package usecase

import (
	"context"
	"time"

	orgentity "competitor_backend/internal/feature/organizations/domain/entity"
	"competitor_backend/internal/feature/updates/domain/entity"
)

// UpdateRepository は更新情報の永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type UpdateRepository interface {
	// ExistingFingerprints は fingerprints のうち組織にすでに保存されているものを返します。
	ExistingFingerprints(ctx context.Context, organizationID uint, fingerprints []string) (map[string]struct{}, error)
	// InsertIfAbsent は (organizationID, fingerprint) が未登録の場合のみ挿入し、新規に挿入されたかを返します。
	InsertIfAbsent(ctx context.Context, u entity.Update) (bool, error)
	// FindByOrganization は since 以降に公開された更新情報を新しい順に返します。
	FindByOrganization(ctx context.Context, organizationID uint, since time.Time) ([]entity.Update, error)
}

// OrganizationSource は追跡対象の組織を読み取ります。
type OrganizationSource interface {
	FindByID(ctx context.Context, id uint) (*orgentity.Organization, error)
	List(ctx context.Context) ([]orgentity.Organization, error)
}

// TrackingRepository はフェッチ実行履歴を保存します。
type TrackingRepository interface {
	Record(ctx context.Context, run entity.TrackingRun) error
	ListByOrganization(ctx context.Context, organizationID uint, limit int) ([]entity.TrackingRun, error)
}

// StatsRepository はダッシュボード向けの集計を返します。
type StatsRepository interface {
	Stats(ctx context.Context, recentSince time.Time) (*entity.Stats, error)
}
