package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"maintitrack/internal/common"
	"maintitrack/internal/ledger"
	"maintitrack/internal/models"
)

// InventoryHandlers handles inventory-related HTTP requests
type InventoryHandlers struct {
	ledger *ledger.Ledger
}

// NewInventoryHandlers creates a new inventory handlers instance
func NewInventoryHandlers(l *ledger.Ledger) *InventoryHandlers {
	return &InventoryHandlers{ledger: l}
}

// ListItemsRequest represents query parameters for listing items
type ListItemsRequest struct {
	Search   string `query:"search"`
	Category string `query:"category"`
}

// ListItems returns the inventory ledger, optionally filtered by a search
// term over name and SKU, and by category.
func (h *InventoryHandlers) ListItems(c echo.Context) error {
	var req ListItemsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	items := h.ledger.Items()
	if req.Search != "" || req.Category != "" {
		search := strings.ToLower(req.Search)
		filtered := make([]*models.InventoryItem, 0, len(items))
		for _, item := range items {
			if req.Category != "" && item.Category != req.Category {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(item.Name), search) &&
				!strings.Contains(strings.ToLower(item.SKU), search) {
				continue
			}
			filtered = append(filtered, item)
		}
		items = filtered
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}

// GetItem returns a single inventory item by ID.
func (h *InventoryHandlers) GetItem(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	item, err := h.ledger.Item(id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// ReceiveStockRequest represents the stock receipt payload
type ReceiveStockRequest struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity" validate:"required"`
	Location string `json:"location"`
}

// ReceiveStock records a stock receipt, merging into an existing SKU or
// creating a new item.
func (h *InventoryHandlers) ReceiveStock(c echo.Context) error {
	ctx := c.Request().Context()

	var req ReceiveStockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	operator, ok := common.GetOperatorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	item, err := h.ledger.Receive(ctx, ledger.ReceiveRequest{
		SKU:      strings.TrimSpace(req.SKU),
		Name:     strings.TrimSpace(req.Name),
		Category: strings.TrimSpace(req.Category),
		Quantity: req.Quantity,
		Location: strings.TrimSpace(req.Location),
		Operator: operator,
	})
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, item)
}

// AdjustStockRequest represents the stock correction payload
type AdjustStockRequest struct {
	NewTotal int    `json:"new_total"`
	Reason   string `json:"reason"`
	Category string `json:"category"`
	Location string `json:"location"`
	SKU      string `json:"sku"`
}

// AdjustStock sets a new total quantity and optional metadata overwrites.
func (h *InventoryHandlers) AdjustStock(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	var req AdjustStockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	operator, ok := common.GetOperatorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	item, err := h.ledger.AdjustStock(ctx, ledger.AdjustRequest{
		ItemID:      id,
		NewTotal:    req.NewTotal,
		Reason:      req.Reason,
		NewCategory: strings.TrimSpace(req.Category),
		NewLocation: strings.TrimSpace(req.Location),
		NewSKU:      strings.TrimSpace(req.SKU),
		Operator:    operator,
	})
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, item)
}

// DeleteItem removes an item. Refused with a conflict while units are on loan.
func (h *InventoryHandlers) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	operator, ok := common.GetOperatorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.ledger.DeleteItem(ctx, id, operator); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GenerateSKU previews the SKU the next item in a category would receive.
func (h *InventoryHandlers) GenerateSKU(c echo.Context) error {
	category := c.QueryParam("category")
	if category == "" {
		category = models.FallbackCategory
	}
	return c.JSON(http.StatusOK, map[string]string{"sku": h.ledger.GenerateSKU(category)})
}
