package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/FACorreiaa/family-ledger/internal/domain/income"
	"github.com/FACorreiaa/family-ledger/pkg/interceptors"
	"github.com/FACorreiaa/family-ledger/pkg/respond"
)

// IncomeService is the behaviour the handler needs.
type IncomeService interface {
	List(ctx context.Context, userID uuid.UUID) ([]income.Income, error)
	Upsert(ctx context.Context, userID uuid.UUID, in income.UpsertInput) (*income.Income, bool, error)
	Update(ctx context.Context, userID, id uuid.UUID, in income.UpdateInput) (*income.Income, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// IncomeHandler serves /api/income.
type IncomeHandler struct {
	svc    IncomeService
	logger *slog.Logger
}

// NewIncomeHandler creates an IncomeHandler.
func NewIncomeHandler(svc IncomeService, logger *slog.Logger) *IncomeHandler {
	return &IncomeHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the handler on an authenticated group.
func (h *IncomeHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/income")
	g.GET("", h.List)
	g.POST("", h.Upsert)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *IncomeHandler) List(c *gin.Context) {
	userID, _ := interceptors.UserID(c)

	rows, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"income": rows})
}

// Upsert answers 201 for a new month and 200 when it replaced one.
func (h *IncomeHandler) Upsert(c *gin.Context) {
	userID, _ := interceptors.UserID(c)

	var in income.UpsertInput
	if err := respond.BindJSON(c, &in); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	row, created, err := h.svc.Upsert(c.Request.Context(), userID, in)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, row)
}

func (h *IncomeHandler) Update(c *gin.Context) {
	userID, _ := interceptors.UserID(c)
	id, err := respond.PathID(c)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	var in income.UpdateInput
	if err := respond.BindJSON(c, &in); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	row, err := h.svc.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *IncomeHandler) Delete(c *gin.Context) {
	userID, _ := interceptors.UserID(c)
	id, err := respond.PathID(c)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, id); err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
