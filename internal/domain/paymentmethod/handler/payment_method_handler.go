package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/FACorreiaa/family-ledger/internal/domain/paymentmethod"
	"github.com/FACorreiaa/family-ledger/pkg/interceptors"
	"github.com/FACorreiaa/family-ledger/pkg/respond"
)

// PaymentMethodService is the behaviour the handler needs.
type PaymentMethodService interface {
	List(ctx context.Context, userID uuid.UUID) ([]paymentmethod.PaymentMethod, error)
	Create(ctx context.Context, userID uuid.UUID, in paymentmethod.CreateInput) (*paymentmethod.PaymentMethod, error)
	Update(ctx context.Context, userID, id uuid.UUID, in paymentmethod.UpdateInput) (*paymentmethod.PaymentMethod, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// PaymentMethodHandler serves /api/payment-methods.
type PaymentMethodHandler struct {
	svc    PaymentMethodService
	logger *slog.Logger
}

// NewPaymentMethodHandler creates a PaymentMethodHandler.
func NewPaymentMethodHandler(svc PaymentMethodService, logger *slog.Logger) *PaymentMethodHandler {
	return &PaymentMethodHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the handler on an authenticated group.
func (h *PaymentMethodHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/payment-methods")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *PaymentMethodHandler) List(c *gin.Context) {
	userID, _ := interceptors.UserID(c)

	methods, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paymentMethods": methods})
}

func (h *PaymentMethodHandler) Create(c *gin.Context) {
	userID, _ := interceptors.UserID(c)

	var in paymentmethod.CreateInput
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

func (h *PaymentMethodHandler) Update(c *gin.Context) {
	userID, _ := interceptors.UserID(c)
	id, err := respond.PathID(c)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	var in paymentmethod.UpdateInput
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

func (h *PaymentMethodHandler) Delete(c *gin.Context) {
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
