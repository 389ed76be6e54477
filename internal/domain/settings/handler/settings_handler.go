package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/FACorreiaa/family-ledger/internal/domain/settings"
	"github.com/FACorreiaa/family-ledger/pkg/interceptors"
	"github.com/FACorreiaa/family-ledger/pkg/respond"
)

// SettingsService is the behaviour the handler needs.
type SettingsService interface {
	Get(ctx context.Context, userID uuid.UUID) (*settings.Settings, error)
	Update(ctx context.Context, userID uuid.UUID, in settings.UpdateInput) (*settings.Settings, error)
}

// SettingsHandler serves /api/settings.
type SettingsHandler struct {
	svc    SettingsService
	logger *slog.Logger
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(svc SettingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the handler on an authenticated group.
func (h *SettingsHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/settings", h.Get)
	r.PATCH("/settings", h.Update)
}

// Get returns the current settings.
func (h *SettingsHandler) Get(c *gin.Context) {
	userID, _ := interceptors.UserID(c)

	s, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": s})
}

// Update applies a partial update.
func (h *SettingsHandler) Update(c *gin.Context) {
	userID, _ := interceptors.UserID(c)

	var in settings.UpdateInput
	if err := respond.BindJSON(c, &in); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	s, err := h.svc.Update(c.Request.Context(), userID, in)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": s})
}
