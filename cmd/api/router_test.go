package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/family-ledger/internal/domain/auth"
	"github.com/FACorreiaa/family-ledger/pkg/interceptors"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type routes func(r gin.IRouter)

func (f routes) RegisterRoutes(r gin.IRouter) { f(r) }

func testRouter(t *testing.T, health Pinger, tokens *auth.TokenManager) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authRoutes := routes(func(r gin.IRouter) {
		r.POST("/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	})
	whoami := routes(func(r gin.IRouter) {
		r.GET("/whoami", func(c *gin.Context) {
			userID, _ := interceptors.UserID(c)
			c.String(http.StatusOK, userID.String())
		})
	})

	return NewRouter(RouterConfig{
		Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens:             tokens,
		Metrics:            interceptors.NewMetrics(prometheus.NewRegistry()),
		Health:             health,
		Auth:               authRoutes,
		API:                []RouteRegistrar{whoami},
		CORSOrigins:        []string{"http://localhost:5173"},
		RateLimitPerSecond: 1000,
		RateLimitBurst:     1000,
		AuthRateLimit:      5,
	})
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	tokens := auth.NewTokenManager("0123456789abcdef0123456789abcdef", 0)

	w := do(testRouter(t, pinger{}, tokens), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = do(testRouter(t, pinger{err: errors.New("down")}, tokens), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_AuthenticatedGroup(t *testing.T) {
	tokens := auth.NewTokenManager("0123456789abcdef0123456789abcdef", 0)
	h := testRouter(t, pinger{}, tokens)

	w := do(h, httptest.NewRequest(http.MethodGet, "/api/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	userID := uuid.New()
	token, err := tokens.Generate(userID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = do(h, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())
}

func TestRouter_AuthRateLimit(t *testing.T) {
	h := testRouter(t, pinger{}, auth.NewTokenManager("0123456789abcdef0123456789abcdef", 0))

	for i := 0; i < 5; i++ {
		w := do(h, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
		require.Equal(t, http.StatusOK, w.Code, "attempt %d", i+1)
	}

	w := do(h, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := testRouter(t, pinger{}, auth.NewTokenManager("0123456789abcdef0123456789abcdef", 0))

	req := httptest.NewRequest(http.MethodOptions, "/api/whoami", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "authorization")
	w := do(h, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
