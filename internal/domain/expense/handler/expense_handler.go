package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/FACorreiaa/family-ledger/internal/domain/common"
	"github.com/FACorreiaa/family-ledger/internal/domain/expense"
	"github.com/FACorreiaa/family-ledger/pkg/interceptors"
	"github.com/FACorreiaa/family-ledger/pkg/respond"
)

// ExpenseService is the behaviour the handler needs.
type ExpenseService interface {
	List(ctx context.Context, userID uuid.UUID, q expense.ListQuery) (*expense.Page, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*expense.Expense, error)
	Create(ctx context.Context, userID uuid.UUID, in expense.CreateInput) (*expense.Expense, error)
	Update(ctx context.Context, userID, id uuid.UUID, in expense.UpdateInput) (*expense.Expense, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	BulkDelete(ctx context.Context, userID uuid.UUID, in expense.BulkDeleteInput) (int64, error)
}

// ExpenseHandler serves /api/expenses.
type ExpenseHandler struct {
	svc    ExpenseService
	logger *slog.Logger
}

// NewExpenseHandler creates an ExpenseHandler.
func NewExpenseHandler(svc ExpenseService, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the handler on an authenticated group.
func (h *ExpenseHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/expenses")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.POST("/bulk-delete", h.BulkDelete)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *ExpenseHandler) List(c *gin.Context) {
	userID, _ := interceptors.UserID(c)

	var q expense.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respond.Error(c, h.logger, common.Invalid("query", "invalid query parameters"))
		return
	}

	page, err := h.svc.List(c.Request.Context(), userID, q)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ExpenseHandler) Get(c *gin.Context) {
	userID, _ := interceptors.UserID(c)
	id, err := respond.PathID(c)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	e, err := h.svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *ExpenseHandler) Create(c *gin.Context) {
	userID, _ := interceptors.UserID(c)

	var in expense.CreateInput
	if err := respond.BindJSON(c, &in); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	e, err := h.svc.Create(c.Request.Context(), userID, in)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *ExpenseHandler) Update(c *gin.Context) {
	userID, _ := interceptors.UserID(c)
	id, err := respond.PathID(c)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	var in expense.UpdateInput
	if err := respond.BindJSON(c, &in); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	e, err := h.svc.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *ExpenseHandler) Delete(c *gin.Context) {
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

func (h *ExpenseHandler) BulkDelete(c *gin.Context) {
	userID, _ := interceptors.UserID(c)

	var in expense.BulkDeleteInput
	if err := respond.BindJSON(c, &in); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	n, err := h.svc.BulkDelete(c.Request.Context(), userID, in)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
