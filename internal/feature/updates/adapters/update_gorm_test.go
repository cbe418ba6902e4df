package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"competitor_backend/internal/feature/updates/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&UpdateModel{}, &TrackingRunModel{})
	require.NoError(t, err, "failed to migrate tables")

	return db
}

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newUpdate(id string, orgID uint, fp string, published time.Time, category entity.Category) entity.Update {
	return entity.Update{
		ID:               id,
		OrganizationID:   orgID,
		Kind:             entity.KindForCategory(category),
		Title:            "title " + id,
		URL:              "https://example.com/" + id,
		PublishedAt:      published,
		Source:           "newsapi",
		Category:         category,
		Sentiment:        entity.SentimentNeutral,
		LexiconSentiment: entity.SentimentNeutral,
		Fingerprint:      fp,
		FetchedAt:        published,
	}
}

func TestNewUpdateRepository(t *testing.T) {
	db := setupTestDB(t)

	repo := NewUpdateRepository(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

// TestUpdateGorm_InsertIfAbsent は同じ組織・フィンガープリントの2回目の挿入がスキップされることを検証します。
func TestUpdateGorm_InsertIfAbsent(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewUpdateRepository(db)
	ctx := context.Background()

	inserted, err := repo.InsertIfAbsent(ctx, newUpdate("u1", 1, "fp1", baseTime, entity.CategoryFunding))
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.InsertIfAbsent(ctx, newUpdate("u2", 1, "fp1", baseTime, entity.CategoryFunding))
	require.NoError(t, err)
	assert.False(t, inserted, "same organization and fingerprint must be skipped")

	inserted, err = repo.InsertIfAbsent(ctx, newUpdate("u3", 2, "fp1", baseTime, entity.CategoryFunding))
	require.NoError(t, err)
	assert.True(t, inserted, "fingerprints are unique per organization only")

	var count int64
	require.NoError(t, db.Model(&UpdateModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestUpdateGorm_ExistingFingerprints(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewUpdateRepository(db)
	ctx := context.Background()
	for _, u := range []entity.Update{
		newUpdate("u1", 1, "fp1", baseTime, entity.CategoryOther),
		newUpdate("u2", 1, "fp2", baseTime, entity.CategoryOther),
		newUpdate("u3", 2, "fp3", baseTime, entity.CategoryOther),
	} {
		_, err := repo.InsertIfAbsent(ctx, u)
		require.NoError(t, err)
	}

	got, err := repo.ExistingFingerprints(ctx, 1, []string{"fp1", "fp3", "fp9"})
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"fp1": {}}, got)

	empty, err := repo.ExistingFingerprints(ctx, 1, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateGorm_FindByOrganization(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewUpdateRepository(db)
	ctx := context.Background()
	in := newUpdate("u1", 1, "fp1", baseTime.Add(-time.Hour), entity.CategoryProduct)
	in.Summary = "summary"
	in.AISummary = "ai summary"
	in.SentimentScore = 0.25
	in.Sentiment = entity.SentimentPositive
	in.CategoryConfidence = 0.5
	for _, u := range []entity.Update{
		in,
		newUpdate("u2", 1, "fp2", baseTime, entity.CategoryFunding),
		newUpdate("u3", 1, "fp3", baseTime.AddDate(0, 0, -10), entity.CategoryLegal),
		newUpdate("u4", 2, "fp4", baseTime, entity.CategoryLegal),
	} {
		_, err := repo.InsertIfAbsent(ctx, u)
		require.NoError(t, err)
	}

	got, err := repo.FindByOrganization(ctx, 1, baseTime.AddDate(0, 0, -7))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "u2", got[0].ID, "newest first")
	assert.Equal(t, "u1", got[1].ID)
	assert.Equal(t, in.Summary, got[1].Summary)
	assert.Equal(t, in.AISummary, got[1].AISummary)
	assert.Equal(t, entity.KindProductChange, got[1].Kind)
	assert.Equal(t, entity.SentimentPositive, got[1].Sentiment)
	assert.InDelta(t, 0.25, got[1].SentimentScore, 1e-9)
	assert.True(t, in.PublishedAt.Equal(got[1].PublishedAt))
}

func TestTrackingGorm_RecordAndList(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewTrackingRepository(db)
	ctx := context.Background()

	for i, started := range []time.Time{baseTime.Add(-2 * time.Hour), baseTime, baseTime.Add(-time.Hour)} {
		err := repo.Record(ctx, entity.TrackingRun{
			RunID:          "run",
			OrganizationID: 1,
			Connector:      "newsapi",
			Inserted:       i,
			Reasons:        "newsapi=ok",
			StartedAt:      started,
			FinishedAt:     started.Add(time.Second),
		})
		require.NoError(t, err)
	}
	require.NoError(t, repo.Record(ctx, entity.TrackingRun{RunID: "other", OrganizationID: 2, StartedAt: baseTime, FinishedAt: baseTime}))

	got, err := repo.ListByOrganization(ctx, 1, 2)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Inserted, "newest run first")
	assert.Equal(t, 2, got[1].Inserted)
	assert.Equal(t, "newsapi=ok", got[0].Reasons)
}

func TestStatsGorm_Stats(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	require.NoError(t, db.Exec("CREATE TABLE organizations (id integer primary key, name text)").Error)
	require.NoError(t, db.Exec("INSERT INTO organizations (id, name) VALUES (1, 'Acme'), (2, 'Globex')").Error)

	repo := NewUpdateRepository(db)
	ctx := context.Background()
	recent := newUpdate("u1", 1, "fp1", baseTime, entity.CategoryFunding)
	old := newUpdate("u2", 1, "fp2", baseTime.AddDate(0, 0, -3), entity.CategoryFunding)
	legal := newUpdate("u3", 2, "fp3", baseTime, entity.CategoryLegal)
	for _, u := range []entity.Update{recent, old, legal} {
		_, err := repo.InsertIfAbsent(ctx, u)
		require.NoError(t, err)
	}

	s, err := NewStatsRepository(db).Stats(ctx, baseTime.Add(-24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(2), s.Organizations)
	assert.Equal(t, int64(3), s.Updates)
	assert.Equal(t, int64(2), s.UpdatesLast24h)
	assert.Equal(t, map[entity.Category]int64{entity.CategoryFunding: 2, entity.CategoryLegal: 1}, s.UpdatesByCategory)
}
