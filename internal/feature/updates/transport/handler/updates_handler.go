// Package handler はupdatesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	orgdomain "competitor_backend/internal/feature/organizations/domain"
	orghandler "competitor_backend/internal/feature/organizations/transport/handler"
	"competitor_backend/internal/feature/updates/domain/entity"
	"competitor_backend/internal/feature/updates/transport/http/dto"
	"competitor_backend/internal/feature/updates/usecase"
)

// FetchUsecase は更新情報の取り込みユースケースです。
type FetchUsecase interface {
	FetchUpdates(ctx context.Context, p usecase.FetchParams) (*entity.FetchResult, error)
}

// QueryUsecase は保存済み更新情報の参照ユースケースです。
type QueryUsecase interface {
	ListUpdates(ctx context.Context, organizationID uint, days int) ([]entity.Update, error)
	ListRuns(ctx context.Context, organizationID uint, limit int) ([]entity.TrackingRun, error)
	Stats(ctx context.Context) (*entity.Stats, error)
}

// UpdatesHandler は更新情報のHTTPリクエストを処理します。
type UpdatesHandler struct {
	fetch FetchUsecase
	query QueryUsecase
}

// NewUpdatesHandler は新しい UpdatesHandler を作成します。
func NewUpdatesHandler(fetch FetchUsecase, query QueryUsecase) *UpdatesHandler {
	return &UpdatesHandler{fetch: fetch, query: query}
}

// Fetch は外部ソースから更新情報を取り込みます。
// ソースに到達できなかった場合も200を返し、組織ごとの診断情報で理由を伝えます。
// 組織が存在しない場合は404、永続化エラーの場合は500と部分的な結果を返します。
//
// POST /v1/fetch
func (h *UpdatesHandler) Fetch(c *gin.Context) {
	var req dto.FetchRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}
	res, err := h.fetch.FetchUpdates(c.Request.Context(), usecase.FetchParams{
		OrganizationID: req.OrganizationID,
		Days:           req.Days,
		MaxResults:     req.MaxResults,
		IncludeSocial:  req.IncludeSocial,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, orgdomain.ErrOrganizationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, dto.FetchErrorResponse{Error: "fetch canceled", Result: res})
	default:
		slog.Error("fetch failed", "component", "updates", "error", err)
		c.JSON(http.StatusInternalServerError, dto.FetchErrorResponse{Error: "persistence failure", Result: res})
	}
}

// List は組織の更新情報を新しい順に返します。
//
// GET /v1/organizations/:id/updates?days=30
func (h *UpdatesHandler) List(c *gin.Context) {
	id, ok := orghandler.ParseID(c)
	if !ok {
		return
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))
	us, err := h.query.ListUpdates(c.Request.Context(), id, days)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]dto.UpdateResponse, 0, len(us))
	for _, u := range us {
		out = append(out, dto.FromUpdate(u))
	}
	c.JSON(http.StatusOK, out)
}

// Runs は組織のフェッチ実行履歴を返します。
//
// GET /v1/organizations/:id/runs?limit=20
func (h *UpdatesHandler) Runs(c *gin.Context) {
	id, ok := orghandler.ParseID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	runs, err := h.query.ListRuns(c.Request.Context(), id, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]dto.RunResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, dto.FromRun(r))
	}
	c.JSON(http.StatusOK, out)
}

// Stats はダッシュボード向けの集計値を返します。
//
// GET /v1/stats
func (h *UpdatesHandler) Stats(c *gin.Context) {
	s, err := h.query.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *UpdatesHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, orgdomain.ErrOrganizationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	slog.Error("updates request failed", "component", "updates", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
