package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"maintitrack/internal/ledger"
)

type contextKey string

// OperatorKey carries the authenticated operator name through the request context.
const OperatorKey contextKey = "operator"

// GetOperatorFromContext extracts the operator name set by the JWT middleware.
func GetOperatorFromContext(ctx context.Context) (string, bool) {
	operator, ok := ctx.Value(OperatorKey).(string)
	return operator, ok && operator != ""
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	return &resp
}

// SendDomainError maps a ledger error to its HTTP status and sends the
// standardized envelope. Reconciliation refusals are conflicts, not client
// mistakes, so they map to 409.
func SendDomainError(c echo.Context, err error) error {
	code := ledger.CodeOf(err)
	status := http.StatusInternalServerError

	switch code {
	case ledger.ErrCodeNotFound:
		status = http.StatusNotFound
	case ledger.ErrCodeInvalidArgument:
		status = http.StatusBadRequest
	case ledger.ErrCodeInsufficientStock,
		ledger.ErrCodeOutstandingBalance,
		ledger.ErrCodeProtectedCategory,
		ledger.ErrCodeCategoryInUse:
		status = http.StatusConflict
	case "":
		code = "SERVER_ERROR"
	}

	message := err.Error()
	var derr *ledger.DomainError
	if errors.As(err, &derr) {
		message = derr.Message
	}

	return c.JSON(status, CreateErrorResponse(code, message))
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", message))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access"))
}

// ValidateUUID validates a path or body identifier.
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID", fieldName)
	}
	return id, nil
}
