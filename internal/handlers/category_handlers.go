package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"maintitrack/internal/common"
	"maintitrack/internal/ledger"
)

// CategoryHandlers handles category-related HTTP requests
type CategoryHandlers struct {
	ledger *ledger.Ledger
}

// NewCategoryHandlers creates a new category handlers instance
func NewCategoryHandlers(l *ledger.Ledger) *CategoryHandlers {
	return &CategoryHandlers{ledger: l}
}

// ListCategories returns the known category set.
func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"categories": h.ledger.Categories()})
}

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateCategory registers a new category label.
func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name is required")
	}

	if err := h.ledger.AddCategory(c.Request().Context(), name); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"name": name})
}

// DeleteCategory removes a category. When items still reference it the call
// is refused with a conflict until the client retries with ?confirm=true,
// which relabels those items to the fallback category first.
func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Category name is required")
	}
	confirm := c.QueryParam("confirm") == "true"

	if err := h.ledger.DeleteCategory(c.Request().Context(), name, confirm); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
