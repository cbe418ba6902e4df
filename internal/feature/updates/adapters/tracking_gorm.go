package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"competitor_backend/internal/feature/updates/domain/entity"
	"competitor_backend/internal/feature/updates/usecase"
)

type trackingGorm struct {
	db *gorm.DB
}

var _ usecase.TrackingRepository = (*trackingGorm)(nil)

func NewTrackingRepository(db *gorm.DB) *trackingGorm {
	return &trackingGorm{db: db}
}

// TrackingRunModel は組織ごとのフェッチ実行履歴のテーブル定義です。
type TrackingRunModel struct {
	ID             uint      `gorm:"primaryKey"`
	RunID          string    `gorm:"size:36;not null;index"`
	OrganizationID uint      `gorm:"not null;index"`
	Connector      string    `gorm:"size:64"`
	Fetched        int       `gorm:"not null;default:0"`
	Duplicates     int       `gorm:"not null;default:0"`
	Inserted       int       `gorm:"not null;default:0"`
	Exhausted      bool      `gorm:"not null;default:false"`
	Reasons        string    `gorm:"size:512"`
	StartedAt      time.Time `gorm:"not null"`
	FinishedAt     time.Time `gorm:"not null"`
}

func (TrackingRunModel) TableName() string {
	return "tracking_runs"
}

func (r *trackingGorm) Record(ctx context.Context, run entity.TrackingRun) error {
	m := TrackingRunModel{
		RunID:          run.RunID,
		OrganizationID: run.OrganizationID,
		Connector:      run.Connector,
		Fetched:        run.Fetched,
		Duplicates:     run.Duplicates,
		Inserted:       run.Inserted,
		Exhausted:      run.Exhausted,
		Reasons:        run.Reasons,
		StartedAt:      run.StartedAt,
		FinishedAt:     run.FinishedAt,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *trackingGorm) ListByOrganization(ctx context.Context, organizationID uint, limit int) ([]entity.TrackingRun, error) {
	var rows []TrackingRunModel
	q := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("started_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.TrackingRun, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.TrackingRun{
			RunID:          m.RunID,
			OrganizationID: m.OrganizationID,
			Connector:      m.Connector,
			Fetched:        m.Fetched,
			Duplicates:     m.Duplicates,
			Inserted:       m.Inserted,
			Exhausted:      m.Exhausted,
			Reasons:        m.Reasons,
			StartedAt:      m.StartedAt.UTC(),
			FinishedAt:     m.FinishedAt.UTC(),
		})
	}
	return out, nil
}
