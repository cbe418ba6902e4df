package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"competitor_backend/internal/feature/organizations/domain"
	"competitor_backend/internal/feature/organizations/domain/entity"
	"competitor_backend/internal/feature/organizations/usecase"
	updadapters "competitor_backend/internal/feature/updates/adapters"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

type organizationGorm struct {
	db *gorm.DB
}

var _ usecase.OrganizationRepository = (*organizationGorm)(nil)

func NewOrganizationRepository(db *gorm.DB) *organizationGorm {
	return &organizationGorm{db: db}
}

// OrganizationModel は追跡対象組織のテーブル定義です。
type OrganizationModel struct {
	ID          uint     `gorm:"primaryKey"`
	Name        string   `gorm:"size:255;not null;uniqueIndex"`
	Website     string   `gorm:"size:2048"`
	Industry    string   `gorm:"size:255"`
	Description string   `gorm:"type:text"`
	Keywords    []string `gorm:"type:text;serializer:json"`
	Location    string   `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (OrganizationModel) TableName() string {
	return "organizations"
}

func toOrganizationModel(e entity.Organization) OrganizationModel {
	return OrganizationModel{
		ID:          e.ID,
		Name:        e.Name,
		Website:     e.Website,
		Industry:    e.Industry,
		Description: e.Description,
		Keywords:    e.Keywords,
		Location:    e.Location,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toOrganizationEntity(m OrganizationModel) entity.Organization {
	return entity.Organization{
		ID:          m.ID,
		Name:        m.Name,
		Website:     m.Website,
		Industry:    m.Industry,
		Description: m.Description,
		Keywords:    m.Keywords,
		Location:    m.Location,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

// isDuplicateKey reports whether err is a unique constraint violation.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// nameTaken は id 以外に同名の組織が存在するかを確認します。
func nameTaken(tx *gorm.DB, name string, exceptID uint) (bool, error) {
	var n int64
	q := tx.Model(&OrganizationModel{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *organizationGorm) Create(ctx context.Context, o *entity.Organization) error {
	m := toOrganizationModel(*o)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, m.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrOrganizationExists
		}
		return tx.Create(&m).Error
	})
	switch {
	case errors.Is(err, domain.ErrOrganizationExists), isDuplicateKey(err):
		return fmt.Errorf("%q: %w", o.Name, domain.ErrOrganizationExists)
	case err != nil:
		return fmt.Errorf("create organization: %w", err)
	}
	*o = toOrganizationEntity(m)
	return nil
}

func (r *organizationGorm) Update(ctx context.Context, o *entity.Organization) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current OrganizationModel
		if err := tx.First(&current, o.ID).Error; err != nil {
			return err
		}
		taken, err := nameTaken(tx, o.Name, o.ID)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrOrganizationExists
		}
		m := toOrganizationModel(*o)
		m.CreatedAt = current.CreatedAt
		return tx.Save(&m).Error
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("id %d: %w", o.ID, domain.ErrOrganizationNotFound)
	case errors.Is(err, domain.ErrOrganizationExists), isDuplicateKey(err):
		return fmt.Errorf("%q: %w", o.Name, domain.ErrOrganizationExists)
	case err != nil:
		return fmt.Errorf("update organization: %w", err)
	}
	return nil
}

// Delete は組織と、その組織が所有する更新情報・実行履歴を1トランザクションで削除します。
func (r *organizationGorm) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ?", id).Delete(&updadapters.UpdateModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", id).Delete(&updadapters.TrackingRunModel{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&OrganizationModel{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("id %d: %w", id, domain.ErrOrganizationNotFound)
	case err != nil:
		return fmt.Errorf("delete organization: %w", err)
	}
	return nil
}

func (r *organizationGorm) FindByID(ctx context.Context, id uint) (*entity.Organization, error) {
	var m OrganizationModel
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("id %d: %w", id, domain.ErrOrganizationNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find organization: %w", err)
	}
	o := toOrganizationEntity(m)
	return &o, nil
}

func (r *organizationGorm) List(ctx context.Context) ([]entity.Organization, error) {
	var rows []OrganizationModel
	if err := r.db.WithContext(ctx).Order("name").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	out := make([]entity.Organization, 0, len(rows))
	for _, m := range rows {
		out = append(out, toOrganizationEntity(m))
	}
	return out, nil
}
