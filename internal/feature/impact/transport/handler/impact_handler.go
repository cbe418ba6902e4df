// Package handler はimpactフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"competitor_backend/internal/feature/impact/domain/entity"
	"competitor_backend/internal/feature/impact/transport/http/dto"
	orgdomain "competitor_backend/internal/feature/organizations/domain"
	orghandler "competitor_backend/internal/feature/organizations/transport/handler"
)

// ImpactUsecase は影響評価のユースケースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ImpactUsecase interface {
	AnalyzeImpact(ctx context.Context, organizationID uint, businessContext string) (*entity.ImpactAssessment, error)
	BuildExecutiveBriefing(ctx context.Context, businessContext string) (*entity.ExecutiveBriefing, error)
}

// ImpactHandler は影響評価のHTTPリクエストを処理します。
type ImpactHandler struct {
	uc ImpactUsecase
}

// NewImpactHandler は新しい ImpactHandler を作成します。
func NewImpactHandler(uc ImpactUsecase) *ImpactHandler {
	return &ImpactHandler{uc: uc}
}

// Analyze は1組織の影響評価を返します。
// - ボディは任意。business_context は2000文字まで
// - 組織が存在しない場合は404を返却
//
// POST /v1/organizations/:id/impact
func (h *ImpactHandler) Analyze(c *gin.Context) {
	id, ok := orghandler.ParseID(c)
	if !ok {
		return
	}
	req, ok := bindRequest(c)
	if !ok {
		return
	}
	a, err := h.uc.AnalyzeImpact(c.Request.Context(), id, req.BusinessContext)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Briefing は全組織のエグゼクティブブリーフィングを返します。
//
// POST /v1/briefing
func (h *ImpactHandler) Briefing(c *gin.Context) {
	req, ok := bindRequest(c)
	if !ok {
		return
	}
	b, err := h.uc.BuildExecutiveBriefing(c.Request.Context(), req.BusinessContext)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func bindRequest(c *gin.Context) (dto.AnalyzeRequest, bool) {
	var req dto.AnalyzeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			slog.Warn("impact request validation failed", "component", "impact", "error", err)
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
			return req, false
		}
	}
	req.BusinessContext = strings.TrimSpace(req.BusinessContext)
	return req, true
}

func (h *ImpactHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orgdomain.ErrOrganizationNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "organization not found"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "analysis canceled"})
	default:
		slog.Error("impact analysis failed", "component", "impact", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}
