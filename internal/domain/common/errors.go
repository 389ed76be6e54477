// Package common holds the error taxonomy shared by every ledger domain and
// the helpers that translate validator and Postgres failures into it.
package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/family-ledger/pkg/money"
)

var (
	// ErrNotFound is returned when an entity does not exist or is not owned
	// by the requesting user. The two cases are intentionally indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrInvariant marks a computed value that would violate a ledger invariant
	// (net + cashback == amount, cashback ceiling, non-negative amounts). It is
	// a programming fault and must be alerted on, never shown as a 4xx.
	ErrInvariant = money.ErrInvariant

	// ErrUnauthorized is returned for bad credentials or tokens.
	ErrUnauthorized = errors.New("unauthorized")
)

// Postgres SQLSTATE codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// NotFoundError names the missing entity. It matches ErrNotFound.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound returns a NotFoundError, e.g. "category not found".
func NotFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

// Invariant wraps ErrInvariant with a formatted detail.
func Invariant(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}

// ConflictError reports a referential or uniqueness conflict. ExpenseCount is
// set when the conflict is caused by expenses still referencing the entity.
type ConflictError struct {
	Message      string
	ExpenseCount int
}

func (e *ConflictError) Error() string {
	if e.ExpenseCount > 0 {
		return fmt.Sprintf("%s (%d expenses)", e.Message, e.ExpenseCount)
	}
	return e.Message
}

// Conflict creates a ConflictError.
func Conflict(message string, expenseCount int) *ConflictError {
	return &ConflictError{Message: message, ExpenseCount: expenseCount}
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field-level input problems.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field errors were collected.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Invalid is shorthand for a single-field validation error.
func Invalid(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// FromPgError translates constraint violations on writes into the domain
// taxonomy. Unknown errors are returned unchanged.
func FromPgError(err error, entity string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return Conflict(entity+" already exists", 0)
	case pgForeignKeyViolation:
		return Conflict(entity+" is referenced by other records", 0)
	case pgCheckViolation:
		return Invariant("%s check %s", entity, pgErr.ConstraintName)
	}
	return err
}
