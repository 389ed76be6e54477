package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/family-ledger/internal/domain/auth"
	"github.com/FACorreiaa/family-ledger/pkg/respond"
)

// AuthService is the behaviour the handler needs.
type AuthService interface {
	Register(ctx context.Context, in auth.Credentials) (*auth.Session, error)
	Login(ctx context.Context, in auth.Credentials) (*auth.Session, error)
}

// AuthHandler serves /api/auth. It is mounted outside the authenticated group.
type AuthHandler struct {
	svc    AuthService
	logger *slog.Logger
}

func NewAuthHandler(svc AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts register and login. Callers attach the auth rate
// limiter to r.
func (h *AuthHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in auth.Credentials
	if err := respond.BindJSON(c, &in); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	s, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in auth.Credentials
	if err := respond.BindJSON(c, &in); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	s, err := h.svc.Login(c.Request.Context(), in)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
