// Package respond writes JSON responses and maps domain errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/FACorreiaa/family-ledger/internal/domain/common"
)

// Error writes the response for err.
func Error(c *gin.Context, logger *slog.Logger, err error) {
	var (
		verr     *common.ValidationError
		notFound *common.NotFoundError
		conflict *common.ConflictError
	)

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": verr.Fields})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": capitalize(notFound.Error())})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.As(err, &conflict):
		body := gin.H{"error": conflict.Message}
		if conflict.ExpenseCount > 0 {
			body["expenseCount"] = conflict.ExpenseCount
		}
		c.JSON(http.StatusConflict, body)
	case errors.Is(err, common.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, common.ErrInvariant):
		logger.Error("ledger invariant violated",
			slog.Bool("alert", true),
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	default:
		logger.Error("request failed",
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// BindJSON decodes the request body into v. Malformed JSON is reported as a
// validation error on the "body" field.
func BindJSON(c *gin.Context, v any) error {
	dec := json.NewDecoder(c.Request.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return common.Invalid("body", "request body is required")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return common.Invalid(typeErr.Field, "has the wrong type")
		}
		return common.Invalid("body", "invalid JSON")
	}
	return nil
}

// PathID parses the :id route parameter.
func PathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, common.Invalid("id", "must be a valid id")
	}
	return id, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
