package interceptors

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubParser struct {
	userID uuid.UUID
	err    error
}

func (p stubParser) ParseToken(string) (uuid.UUID, error) {
	return p.userID, p.err
}

func newTestRouter(parser TokenParser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Auth(parser), func(c *gin.Context) {
		fromGin, _ := UserID(c)
		fromCtx, _ := GetUserIDFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"gin": fromGin.String(), "ctx": fromCtx.String()})
	})
	return r
}

func TestAuth(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		header     string
		parser     stubParser
		wantStatus int
	}{
		{"missing header", "", stubParser{userID: userID}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", stubParser{userID: userID}, http.StatusUnauthorized},
		{"empty token", "Bearer ", stubParser{userID: userID}, http.StatusUnauthorized},
		{"invalid token", "Bearer abc", stubParser{err: errors.New("expired")}, http.StatusUnauthorized},
		{"valid token", "Bearer abc", stubParser{userID: userID}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			newTestRouter(tt.parser).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"gin":"`+userID.String()+`"`)
				assert.Contains(t, rec.Body.String(), `"ctx":"`+userID.String()+`"`)
			}
		})
	}
}

func TestGetUserIDFromContext(t *testing.T) {
	_, ok := GetUserIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = GetUserIDFromContext(WithUserID(context.Background(), uuid.Nil))
	assert.False(t, ok)

	id := uuid.New()
	got, ok := GetUserIDFromContext(WithUserID(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}
