package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/FACorreiaa/family-ledger/internal/domain/category"
	"github.com/FACorreiaa/family-ledger/internal/domain/common"
	"github.com/FACorreiaa/family-ledger/pkg/interceptors"
	"github.com/FACorreiaa/family-ledger/pkg/respond"
)

// CategoryService is the behaviour the handler needs.
type CategoryService interface {
	List(ctx context.Context, userID uuid.UUID) ([]category.Category, error)
	Create(ctx context.Context, userID uuid.UUID, in category.CreateInput) (*category.Category, error)
	Update(ctx context.Context, userID, id uuid.UUID, in category.UpdateInput) (*category.Category, error)
	Delete(ctx context.Context, userID, id uuid.UUID, reassignTo *uuid.UUID) (*category.DeleteResult, error)
}

// CategoryHandler serves /api/categories.
type CategoryHandler struct {
	svc    CategoryService
	logger *slog.Logger
}

// NewCategoryHandler creates a CategoryHandler.
func NewCategoryHandler(svc CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the handler on an authenticated group.
func (h *CategoryHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/categories")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *CategoryHandler) List(c *gin.Context) {
	userID, _ := interceptors.UserID(c)

	categories, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	userID, _ := interceptors.UserID(c)

	var in category.CreateInput
	if err := respond.BindJSON(c, &in); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	created, err := h.svc.Create(c.Request.Context(), userID, in)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	userID, _ := interceptors.UserID(c)
	id, err := respond.PathID(c)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	var in category.UpdateInput
	if err := respond.BindJSON(c, &in); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	userID, _ := interceptors.UserID(c)
	id, err := respond.PathID(c)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	var reassignTo *uuid.UUID
	if raw := c.Query("reassignTo"); raw != "" {
		target, err := uuid.Parse(raw)
		if err != nil {
			respond.Error(c, h.logger, common.Invalid("reassignTo", "must be a valid id"))
			return
		}
		reassignTo = &target
	}

	if _, err := h.svc.Delete(c.Request.Context(), userID, id, reassignTo); err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
