package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/FACorreiaa/family-ledger/internal/domain/common"
	"github.com/FACorreiaa/family-ledger/internal/domain/imports"
	"github.com/FACorreiaa/family-ledger/pkg/interceptors"
	"github.com/FACorreiaa/family-ledger/pkg/respond"
)

// multipartOverhead is the slack allowed on top of the file limit for
// boundaries and part headers.
const multipartOverhead = 64 << 10

// ImportService is the behaviour the handler needs.
type ImportService interface {
	Import(ctx context.Context, userID uuid.UUID, format imports.Format, r io.Reader) (*imports.Result, error)
}

// ImportHandler serves /api/import.
type ImportHandler struct {
	svc      ImportService
	logger   *slog.Logger
	maxBytes int64
}

// NewImportHandler creates an ImportHandler accepting files up to maxBytes.
func NewImportHandler(svc ImportService, logger *slog.Logger, maxBytes int64) *ImportHandler {
	return &ImportHandler{svc: svc, logger: logger, maxBytes: maxBytes}
}

// RegisterRoutes mounts the handler on an authenticated group.
func (h *ImportHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/import")
	g.POST("/excel", h.upload(imports.FormatExcel, ".xlsx"))
	g.POST("/csv", h.upload(imports.FormatCSV, ".csv"))
}

func (h *ImportHandler) tooLarge() error {
	return common.Invalid("file", fmt.Sprintf("File too large. Maximum size is %dMB.", h.maxBytes>>20))
}

func (h *ImportHandler) upload(format imports.Format, ext string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := interceptors.UserID(c)
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)

		fh, err := c.FormFile("file")
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				respond.Error(c, h.logger, h.tooLarge())
				return
			}
			respond.Error(c, h.logger, common.Invalid("file", "No file uploaded"))
			return
		}

		if fh.Size > h.maxBytes {
			respond.Error(c, h.logger, h.tooLarge())
			return
		}
		if !strings.EqualFold(filepath.Ext(fh.Filename), ext) {
			respond.Error(c, h.logger, common.Invalid("file", fmt.Sprintf("Only %s files are accepted", ext)))
			return
		}

		f, err := fh.Open()
		if err != nil {
			respond.Error(c, h.logger, err)
			return
		}
		defer f.Close()

		res, err := h.svc.Import(c.Request.Context(), userID, format, f)
		if err != nil {
			respond.Error(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
