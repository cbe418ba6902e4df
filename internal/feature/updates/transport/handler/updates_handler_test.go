package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orgdomain "competitor_backend/internal/feature/organizations/domain"
	"competitor_backend/internal/feature/updates/domain"
	"competitor_backend/internal/feature/updates/domain/entity"
	"competitor_backend/internal/feature/updates/usecase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// mockFetchUsecase はFetchUsecaseインターフェースのモック実装です。
type mockFetchUsecase struct {
	FetchUpdatesFunc func(ctx context.Context, p usecase.FetchParams) (*entity.FetchResult, error)
}

func (m *mockFetchUsecase) FetchUpdates(ctx context.Context, p usecase.FetchParams) (*entity.FetchResult, error) {
	return m.FetchUpdatesFunc(ctx, p)
}

// mockQueryUsecase はQueryUsecaseインターフェースのモック実装です。
type mockQueryUsecase struct {
	ListUpdatesFunc func(ctx context.Context, organizationID uint, days int) ([]entity.Update, error)
	ListRunsFunc    func(ctx context.Context, organizationID uint, limit int) ([]entity.TrackingRun, error)
	StatsFunc       func(ctx context.Context) (*entity.Stats, error)
}

func (m *mockQueryUsecase) ListUpdates(ctx context.Context, organizationID uint, days int) ([]entity.Update, error) {
	return m.ListUpdatesFunc(ctx, organizationID, days)
}

func (m *mockQueryUsecase) ListRuns(ctx context.Context, organizationID uint, limit int) ([]entity.TrackingRun, error) {
	return m.ListRunsFunc(ctx, organizationID, limit)
}

func (m *mockQueryUsecase) Stats(ctx context.Context) (*entity.Stats, error) {
	return m.StatsFunc(ctx)
}

func newRouter(f FetchUsecase, q QueryUsecase) *gin.Engine {
	h := NewUpdatesHandler(f, q)
	r := gin.New()
	r.POST("/fetch", h.Fetch)
	r.GET("/organizations/:id/updates", h.List)
	r.GET("/organizations/:id/runs", h.Runs)
	r.GET("/stats", h.Stats)
	return r
}

func TestUpdatesHandler_Fetch(t *testing.T) {
	t.Parallel()

	exhausted := &entity.FetchResult{
		RunID: "run-1",
		PerOrganization: []entity.Diagnostics{{
			OrganizationID:   1,
			OrganizationName: "Acme",
			Exhausted:        true,
			Attempts: []entity.ConnectorAttempt{
				{Connector: "newsapi", Reason: entity.ReasonUnauthorized, Error: "newsapi: unauthorized"},
			},
		}},
	}

	tests := []struct {
		name           string
		body           string
		fetchFunc      func(ctx context.Context, p usecase.FetchParams) (*entity.FetchResult, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: all sources failed is still 200",
			body: `{"organization_id":1,"days":7,"max_results":5}`,
			fetchFunc: func(ctx context.Context, p usecase.FetchParams) (*entity.FetchResult, error) {
				assert.Equal(t, usecase.FetchParams{OrganizationID: 1, Days: 7, MaxResults: 5}, p)
				return exhausted, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"run_id":"run-1","inserted_count":0,"per_organization":[{"organization_id":1,"organization_name":"Acme",
				"attempts":[{"connector":"newsapi","reason":"unauthorized","items":0,"error":"newsapi: unauthorized"}],
				"exhausted":true,"fetched":0,"duplicates":0,"inserted":0}]}`,
		},
		{
			name: "success: empty body fetches every organization",
			fetchFunc: func(ctx context.Context, p usecase.FetchParams) (*entity.FetchResult, error) {
				assert.Zero(t, p.OrganizationID)
				return &entity.FetchResult{RunID: "run-2"}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"run_id":"run-2","inserted_count":0,"per_organization":null}`,
		},
		{
			name:           "failure: days out of range",
			body:           `{"days":1000}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request"}`,
		},
		{
			name: "failure: unknown organization",
			body: `{"organization_id":9}`,
			fetchFunc: func(ctx context.Context, p usecase.FetchParams) (*entity.FetchResult, error) {
				return nil, fmt.Errorf("id 9: %w", orgdomain.ErrOrganizationNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"id 9: organization not found"}`,
		},
		{
			name: "failure: persistence error keeps partial result",
			body: `{}`,
			fetchFunc: func(ctx context.Context, p usecase.FetchParams) (*entity.FetchResult, error) {
				return &entity.FetchResult{RunID: "run-3", InsertedCount: 2}, fmt.Errorf("insert: %w", domain.ErrPersistence)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"persistence failure","result":{"run_id":"run-3","inserted_count":2,"per_organization":null}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/fetch", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			newRouter(&mockFetchUsecase{FetchUpdatesFunc: tt.fetchFunc}, &mockQueryUsecase{}).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestUpdatesHandler_List(t *testing.T) {
	t.Parallel()

	published := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	q := &mockQueryUsecase{
		ListUpdatesFunc: func(ctx context.Context, organizationID uint, days int) ([]entity.Update, error) {
			if organizationID != 1 {
				return nil, orgdomain.ErrOrganizationNotFound
			}
			assert.Equal(t, 7, days)
			return []entity.Update{{
				ID: "u1", Kind: entity.KindCompanyUpdate, Title: "Acme raises $10M", URL: "https://news.example/a",
				PublishedAt: published, Source: "newsapi", Category: entity.CategoryFunding, CategoryConfidence: 0.25,
				Sentiment: entity.SentimentPositive, SentimentScore: 0.2,
			}}, nil
		},
	}
	router := newRouter(&mockFetchUsecase{}, q)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/organizations/1/updates?days=7", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":"u1","kind":"CompanyUpdate","title":"Acme raises $10M","url":"https://news.example/a",
		"published_at":"2025-03-01T12:00:00Z","source":"newsapi","category":"funding","category_confidence":0.25,
		"sentiment":"positive","sentiment_score":0.2}]`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/organizations/2/updates?days=7", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/organizations/x/updates", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatesHandler_RunsAndStats(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	q := &mockQueryUsecase{
		ListRunsFunc: func(ctx context.Context, organizationID uint, limit int) ([]entity.TrackingRun, error) {
			return []entity.TrackingRun{{RunID: "r1", OrganizationID: organizationID, Connector: "googlenews", Fetched: 3, Inserted: 2, Duplicates: 1, StartedAt: at, FinishedAt: at}}, nil
		},
		StatsFunc: func(ctx context.Context) (*entity.Stats, error) {
			return nil, errors.New("db down")
		},
	}
	router := newRouter(&mockFetchUsecase{}, q)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/organizations/1/runs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"run_id":"r1","connector":"googlenews","fetched":3,"duplicates":1,"inserted":2,"exhausted":false,
		"started_at":"2025-03-01T12:00:00Z","finished_at":"2025-03-01T12:00:00Z"}]`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
}
