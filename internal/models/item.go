package models

import (
	"time"

	"github.com/google/uuid"
)

// FallbackCategory is the distinguished category items fall back to. It can
// never be deleted.
const FallbackCategory = "General"

// InventoryItem represents one SKU of shared equipment. Quantity is the total
// owned; AvailableQuantity is the portion currently loanable.
type InventoryItem struct {
	ID                uuid.UUID `json:"id"`
	SKU               string    `json:"sku"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	Quantity          int       `json:"quantity"`
	AvailableQuantity int       `json:"available_quantity"`
	Location          string    `json:"location"`
	LastUpdated       time.Time `json:"last_updated"`
}

// Borrowed returns the number of units currently out on loan, derived from
// total and available rather than tracked separately.
func (i *InventoryItem) Borrowed() int {
	return i.Quantity - i.AvailableQuantity
}
