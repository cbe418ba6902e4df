package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"competitor_backend/internal/feature/updates/domain/entity"
	"competitor_backend/internal/feature/updates/usecase"
)

type updateGorm struct {
	db *gorm.DB
}

var _ usecase.UpdateRepository = (*updateGorm)(nil)

func NewUpdateRepository(db *gorm.DB) *updateGorm {
	return &updateGorm{db: db}
}

// UpdateModel は更新情報のテーブル定義です。(organization_id, fingerprint) は一意です。
type UpdateModel struct {
	ID             string `gorm:"primaryKey;size:36"`
	OrganizationID uint   `gorm:"not null;uniqueIndex:update_org_fp,priority:1;index:update_org_published,priority:1"`
	Fingerprint    string `gorm:"size:32;not null;uniqueIndex:update_org_fp,priority:2"`

	Kind               string    `gorm:"size:32;not null"`
	Title              string    `gorm:"size:512;not null"`
	URL                string    `gorm:"size:2048"`
	PublishedAt        time.Time `gorm:"not null;index:update_org_published,priority:2"`
	Source             string    `gorm:"size:255"`
	Summary            string    `gorm:"type:text"`
	AISummary          string    `gorm:"type:text"`
	Category           string    `gorm:"size:32;not null;index"`
	CategoryConfidence float64   `gorm:"not null;default:0"`
	Sentiment          string    `gorm:"size:16;not null"`
	SentimentScore     float64   `gorm:"not null;default:0"`
	LexiconSentiment   string    `gorm:"size:16;not null"`
	LexiconScore       float64   `gorm:"not null;default:0"`
	Social             bool      `gorm:"not null;default:false"`
	FetchedAt          time.Time `gorm:"not null;index"`
}

func (UpdateModel) TableName() string {
	return "updates"
}

func toUpdateModel(e entity.Update) UpdateModel {
	return UpdateModel{
		ID:                 e.ID,
		OrganizationID:     e.OrganizationID,
		Fingerprint:        e.Fingerprint,
		Kind:               string(e.Kind),
		Title:              e.Title,
		URL:                e.URL,
		PublishedAt:        e.PublishedAt,
		Source:             e.Source,
		Summary:            e.Summary,
		AISummary:          e.AISummary,
		Category:           string(e.Category),
		CategoryConfidence: e.CategoryConfidence,
		Sentiment:          string(e.Sentiment),
		SentimentScore:     e.SentimentScore,
		LexiconSentiment:   string(e.LexiconSentiment),
		LexiconScore:       e.LexiconScore,
		Social:             e.Social,
		FetchedAt:          e.FetchedAt,
	}
}

func toUpdateEntity(m UpdateModel) entity.Update {
	return entity.Update{
		ID:                 m.ID,
		OrganizationID:     m.OrganizationID,
		Kind:               entity.Kind(m.Kind),
		Title:              m.Title,
		URL:                m.URL,
		PublishedAt:        m.PublishedAt.UTC(),
		Source:             m.Source,
		Summary:            m.Summary,
		AISummary:          m.AISummary,
		Category:           entity.Category(m.Category),
		CategoryConfidence: m.CategoryConfidence,
		Sentiment:          entity.Sentiment(m.Sentiment),
		SentimentScore:     m.SentimentScore,
		LexiconSentiment:   entity.Sentiment(m.LexiconSentiment),
		LexiconScore:       m.LexiconScore,
		Social:             m.Social,
		Fingerprint:        m.Fingerprint,
		FetchedAt:          m.FetchedAt.UTC(),
	}
}

func (r *updateGorm) ExistingFingerprints(ctx context.Context, organizationID uint, fingerprints []string) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(fingerprints))
	if len(fingerprints) == 0 {
		return out, nil
	}
	var found []string
	err := r.db.WithContext(ctx).Model(&UpdateModel{}).
		Where("organization_id = ? AND fingerprint IN ?", organizationID, fingerprints).
		Pluck("fingerprint", &found).Error
	if err != nil {
		return nil, err
	}
	for _, fp := range found {
		out[fp] = struct{}{}
	}
	return out, nil
}

// InsertIfAbsent は一意制約に衝突した場合は何もせず false を返します。
func (r *updateGorm) InsertIfAbsent(ctx context.Context, u entity.Update) (bool, error) {
	m := toUpdateModel(u)
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "organization_id"}, {Name: "fingerprint"}},
		DoNothing: true,
	}).Create(&m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *updateGorm) FindByOrganization(ctx context.Context, organizationID uint, since time.Time) ([]entity.Update, error) {
	var rows []UpdateModel
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND published_at >= ?", organizationID, since).
		Order("published_at DESC").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entity.Update, 0, len(rows))
	for _, m := range rows {
		out = append(out, toUpdateEntity(m))
	}
	return out, nil
}
