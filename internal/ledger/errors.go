package ledger

import (
	"errors"
	"fmt"
)

// DomainError carries a stable code alongside the human-readable message so
// handlers can map failures to HTTP statuses without string matching.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const (
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInvalidArgument    = "INVALID_ARGUMENT"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeOutstandingBalance = "OUTSTANDING_BALANCE"
	ErrCodeProtectedCategory  = "PROTECTED_CATEGORY"
	ErrCodeCategoryInUse      = "CATEGORY_IN_USE"
)

func NewNotFoundError(msg string) error {
	return &DomainError{Code: ErrCodeNotFound, Message: msg}
}

func NewInvalidArgumentError(msg string) error {
	return &DomainError{Code: ErrCodeInvalidArgument, Message: msg}
}

func NewInsufficientStockError(requested, available int) error {
	return &DomainError{
		Code:    ErrCodeInsufficientStock,
		Message: fmt.Sprintf("requested %d units but only %d available", requested, available),
	}
}

func NewOutstandingBalanceError(itemName string, outstanding int) error {
	return &DomainError{
		Code:    ErrCodeOutstandingBalance,
		Message: fmt.Sprintf("cannot delete %q: %d units are still on loan", itemName, outstanding),
	}
}

func NewProtectedCategoryError(name string) error {
	return &DomainError{
		Code:    ErrCodeProtectedCategory,
		Message: fmt.Sprintf("category %q is the system fallback and cannot be deleted", name),
	}
}

func NewCategoryInUseError(name string, items int) error {
	return &DomainError{
		Code:    ErrCodeCategoryInUse,
		Message: fmt.Sprintf("%d items reference category %q; confirm reassignment to delete", items, name),
	}
}

// CodeOf extracts the domain error code, or empty string for foreign errors.
func CodeOf(err error) string {
	var derr *DomainError
	if errors.As(err, &derr) {
		return derr.Code
	}
	return ""
}
