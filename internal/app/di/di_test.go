package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"competitor_backend/internal/platform/config"
	"competitor_backend/internal/platform/db"
)

func TestNewConnectors_FollowsOrder(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Connectors
	cfg.Order = []string{"googlenews", "bogus", "newsapi"}
	cfg.NewsAPI.APIKey = "key"

	got := NewConnectors(cfg)

	require.Len(t, got, 2)
	assert.Equal(t, "googlenews", got[0].Name())
	assert.Equal(t, "newsapi", got[1].Name())
	assert.True(t, got[1].Configured())
}

func TestNewConnectors_DefaultOrder(t *testing.T) {
	t.Parallel()

	got := NewConnectors(config.Default().Connectors)

	names := make([]string, len(got))
	for i, c := range got {
		names[i] = c.Name()
	}
	assert.Equal(t, []string{"perplexity", "newsapi", "googlenews"}, names)
	// no keys configured: only the RSS fallback is usable
	assert.False(t, got[0].Configured())
	assert.False(t, got[1].Configured())
	assert.True(t, got[2].Configured())
}

func TestNewAI_WithoutKey(t *testing.T) {
	t.Parallel()

	ai, err := NewAI(context.Background(), config.AIConfig{})

	require.NoError(t, err)
	assert.Nil(t, ai)
}

func TestNewContainer_SQLite(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Database = config.DatabaseConfig{Driver: db.DriverSQLite, DSN: ":memory:"}
	gdb, err := db.Open(cfg.Database)
	require.NoError(t, err)

	c, err := NewContainer(context.Background(), cfg, gdb, nil)
	require.NoError(t, err)

	orgs, err := c.Organizations.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orgs)

	stats, err := c.Query.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Organizations)

	b, err := c.Impact.BuildExecutiveBriefing(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, b.OrganizationsAnalyzed)
}
