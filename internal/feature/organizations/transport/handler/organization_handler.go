// Package handler はorganizationsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"competitor_backend/internal/feature/organizations/domain"
	"competitor_backend/internal/feature/organizations/domain/entity"
	"competitor_backend/internal/feature/organizations/transport/http/dto"
)

// OrganizationUsecase は組織管理のユースケースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type OrganizationUsecase interface {
	Create(ctx context.Context, o entity.Organization) (*entity.Organization, error)
	Update(ctx context.Context, id uint, o entity.Organization) (*entity.Organization, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (*entity.Organization, error)
	List(ctx context.Context) ([]entity.Organization, error)
}

// OrganizationHandler は組織管理のHTTPリクエストを処理します。
type OrganizationHandler struct {
	uc OrganizationUsecase
}

// NewOrganizationHandler は新しい OrganizationHandler を作成します。
func NewOrganizationHandler(uc OrganizationUsecase) *OrganizationHandler {
	return &OrganizationHandler{uc: uc}
}

// List は全組織を返します。
//
// GET /v1/organizations
func (h *OrganizationHandler) List(c *gin.Context) {
	orgs, err := h.uc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]dto.OrganizationResponse, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, dto.FromEntity(o))
	}
	c.JSON(http.StatusOK, out)
}

// Get は組織を1件返します。
//
// GET /v1/organizations/:id
func (h *OrganizationHandler) Get(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}
	o, err := h.uc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromEntity(*o))
}

// Create は組織を登録します。
// - バリデーションエラー時は400、同名の組織がある場合は409を返却
// - 成功時は201を返却
//
// POST /v1/organizations
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req dto.OrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("organization validation failed", "component", "organizations", "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
		return
	}
	o, err := h.uc.Create(c.Request.Context(), req.ToEntity())
	if err != nil {
		h.fail(c, err)
		return
	}
	slog.Info("organization created", "component", "organizations", "organization_id", o.ID, "name", o.Name)
	c.JSON(http.StatusCreated, dto.FromEntity(*o))
}

// Update は組織の内容を置き換えます。
//
// PUT /v1/organizations/:id
func (h *OrganizationHandler) Update(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}
	var req dto.OrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
		return
	}
	o, err := h.uc.Update(c.Request.Context(), id, req.ToEntity())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromEntity(*o))
}

// Delete は組織とその更新情報を削除します。成功時は204を返却します。
//
// DELETE /v1/organizations/:id
func (h *OrganizationHandler) Delete(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}
	if err := h.uc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	slog.Info("organization deleted", "component", "organizations", "organization_id", id)
	c.Status(http.StatusNoContent)
}

func (h *OrganizationHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrOrganizationNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidOrganization):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrOrganizationExists):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("organization request failed", "component", "organizations", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}

// ParseID は :id パスパラメータを読み取ります。不正な場合は400を書き込み false を返します。
func ParseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid organization id"})
		return 0, false
	}
	return uint(id), true
}
