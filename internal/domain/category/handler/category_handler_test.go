package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/family-ledger/internal/domain/category"
	"github.com/FACorreiaa/family-ledger/internal/domain/common"
	"github.com/FACorreiaa/family-ledger/pkg/interceptors"
)

type fakeService struct {
	deleteErr  error
	reassignTo *uuid.UUID
	deleted    uuid.UUID
}

func (f *fakeService) List(ctx context.Context, userID uuid.UUID) ([]category.Category, error) {
	return []category.Category{{ID: uuid.New(), Name: "Food", ExpenseCount: 3}}, nil
}

func (f *fakeService) Create(ctx context.Context, userID uuid.UUID, in category.CreateInput) (*category.Category, error) {
	return &category.Category{ID: uuid.New(), Name: in.Name}, nil
}

func (f *fakeService) Update(ctx context.Context, userID, id uuid.UUID, in category.UpdateInput) (*category.Category, error) {
	return &category.Category{ID: id}, nil
}

func (f *fakeService) Delete(ctx context.Context, userID, id uuid.UUID, reassignTo *uuid.UUID) (*category.DeleteResult, error) {
	f.deleted, f.reassignTo = id, reassignTo
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &category.DeleteResult{}, nil
}

type staticToken uuid.UUID

func (s staticToken) ParseToken(string) (uuid.UUID, error) { return uuid.UUID(s), nil }

func serve(svc CategoryService, method, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", interceptors.Auth(staticToken(uuid.New())))
	NewCategoryHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).RegisterRoutes(api)

	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer test")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCategoryHandler_List(t *testing.T) {
	rec := serve(&fakeService{}, http.MethodGet, "/api/categories")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Categories []category.Category `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Categories, 1)
	assert.Equal(t, 3, body.Categories[0].ExpenseCount)
}

func TestCategoryHandler_Delete(t *testing.T) {
	id, target := uuid.New(), uuid.New()

	t.Run("without reassignment", func(t *testing.T) {
		svc := &fakeService{}
		rec := serve(svc, http.MethodDelete, "/api/categories/"+id.String())
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, id, svc.deleted)
		assert.Nil(t, svc.reassignTo)
	})

	t.Run("with reassignment", func(t *testing.T) {
		svc := &fakeService{}
		rec := serve(svc, http.MethodDelete, "/api/categories/"+id.String()+"?reassignTo="+target.String())
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, svc.reassignTo)
		assert.Equal(t, target, *svc.reassignTo)
	})

	t.Run("expenses still attached", func(t *testing.T) {
		svc := &fakeService{deleteErr: common.Conflict("Category has expenses", 4)}
		rec := serve(svc, http.MethodDelete, "/api/categories/"+id.String())
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error":"Category has expenses","expenseCount":4}`, rec.Body.String())
	})

	t.Run("bad reassignment id", func(t *testing.T) {
		svc := &fakeService{}
		rec := serve(svc, http.MethodDelete, "/api/categories/"+id.String()+"?reassignTo=nope")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, uuid.Nil, svc.deleted)
	})
}
