package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/FACorreiaa/family-ledger/internal/domain/common"
	"github.com/FACorreiaa/family-ledger/internal/domain/dashboard"
	"github.com/FACorreiaa/family-ledger/pkg/interceptors"
	"github.com/FACorreiaa/family-ledger/pkg/respond"
)

// DashboardService is the behaviour the handler needs.
type DashboardService interface {
	Summary(ctx context.Context, userID uuid.UUID, q dashboard.SummaryQuery) (*dashboard.Summary, error)
	Trends(ctx context.Context, userID uuid.UUID) ([]dashboard.TrendPoint, error)
}

// DashboardHandler serves /api/dashboard.
type DashboardHandler struct {
	svc    DashboardService
	logger *slog.Logger
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(svc DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the handler on an authenticated group.
func (h *DashboardHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/dashboard")
	g.GET("/summary", h.Summary)
	g.GET("/trends", h.Trends)
}

// Summary accepts ?month=YYYY-MM or ?startDate=&endDate=.
func (h *DashboardHandler) Summary(c *gin.Context) {
	userID, _ := interceptors.UserID(c)

	var q dashboard.SummaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respond.Error(c, h.logger, common.Invalid("query", "invalid query parameters"))
		return
	}

	sum, err := h.svc.Summary(c.Request.Context(), userID, q)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *DashboardHandler) Trends(c *gin.Context) {
	userID, _ := interceptors.UserID(c)

	months, err := h.svc.Trends(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": months})
}
