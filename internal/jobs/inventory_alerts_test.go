package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"maintitrack/internal/models"
)

type staticLedger struct {
	items []*models.InventoryItem
	loans []*models.LoanRecord
}

func (s *staticLedger) Items() []*models.InventoryItem { return s.items }
func (s *staticLedger) Loans() []*models.LoanRecord    { return s.loans }

func TestCheckLowStock(t *testing.T) {
	ledger := &staticLedger{
		items: []*models.InventoryItem{
			{SKU: "TOL-001", Name: "Multimeter", Quantity: 10, AvailableQuantity: 9},
			{SKU: "SAF-002", Name: "Welding Mask", Quantity: 10, AvailableQuantity: 1},
			{SKU: "MEC-003", Name: "Jack", Quantity: 2, AvailableQuantity: 0},
			{SKU: "ELE-004", Name: "Ghost Item", Quantity: 0, AvailableQuantity: 0},
		},
	}

	alerts := NewAlertService(ledger, nil).CheckLowStock()

	assert.Len(t, alerts, 2)
	assert.Equal(t, "SAF-002", alerts[0].SKU)
	assert.Equal(t, "MEC-003", alerts[1].SKU)
}

func TestCheckOverdueLoans(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	ledger := &staticLedger{
		loans: []*models.LoanRecord{
			{ItemName: "Multimeter", BorrowerName: "bob", Quantity: 1, Status: models.LoanStatusActive, ExpectedReturnDate: now.AddDate(0, 0, -3)},
			{ItemName: "Jack", BorrowerName: "carol", Quantity: 2, Status: models.LoanStatusActive, ExpectedReturnDate: now.AddDate(0, 0, 2)},
			{ItemName: "Mask", BorrowerName: "dave", Quantity: 1, Status: models.LoanStatusActive}, // no due date
		},
	}

	alerts := NewAlertService(ledger, nil).CheckOverdueLoans(now)

	assert.Len(t, alerts, 1)
	assert.Equal(t, "bob", alerts[0].BorrowerName)
}
