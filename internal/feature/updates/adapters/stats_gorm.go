package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"competitor_backend/internal/feature/updates/domain/entity"
	"competitor_backend/internal/feature/updates/usecase"
)

// organizationsTable は organizations フィーチャーが所有するテーブル名です。
const organizationsTable = "organizations"

type statsGorm struct {
	db *gorm.DB
}

var _ usecase.StatsRepository = (*statsGorm)(nil)

func NewStatsRepository(db *gorm.DB) *statsGorm {
	return &statsGorm{db: db}
}

type categoryCount struct {
	Category string
	N        int64
}

func (r *statsGorm) Stats(ctx context.Context, recentSince time.Time) (*entity.Stats, error) {
	db := r.db.WithContext(ctx)
	s := &entity.Stats{UpdatesByCategory: map[entity.Category]int64{}}

	if err := db.Table(organizationsTable).Count(&s.Organizations).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&UpdateModel{}).Count(&s.Updates).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&UpdateModel{}).Where("fetched_at >= ?", recentSince).Count(&s.UpdatesLast24h).Error; err != nil {
		return nil, err
	}

	var counts []categoryCount
	if err := db.Model(&UpdateModel{}).
		Select("category, COUNT(*) AS n").
		Group("category").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, c := range counts {
		s.UpdatesByCategory[entity.Category(c.Category)] = c.N
	}
	return s, nil
}
