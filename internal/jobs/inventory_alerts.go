package jobs

import (
	"time"

	"go.uber.org/zap"

	"maintitrack/internal/models"
)

const defaultLowStockThreshold = 0.2

// LedgerReader is the read-only view of the ledger the alert checks need.
type LedgerReader interface {
	Items() []*models.InventoryItem
	Loans() []*models.LoanRecord
}

// AlertService scans the ledger for stock and loan conditions worth flagging
// to the store keeper.
type AlertService struct {
	ledger LedgerReader
	logger *zap.Logger
}

// StockAlert flags an item whose available stock has run low.
type StockAlert struct {
	SKU       string
	Name      string
	Available int
	Total     int
}

// OverdueAlert flags a loan past its expected return date.
type OverdueAlert struct {
	ItemName     string
	BorrowerName string
	Quantity     int
	DueDate      time.Time
}

func NewAlertService(ledger LedgerReader, logger *zap.Logger) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{ledger: ledger, logger: logger}
}

// CheckLowStock flags items with no available units, or with availability
// under the threshold fraction of their total.
func (a *AlertService) CheckLowStock() []StockAlert {
	var alerts []StockAlert
	for _, item := range a.ledger.Items() {
		if item.Quantity == 0 {
			continue
		}
		ratio := float64(item.AvailableQuantity) / float64(item.Quantity)
		if item.AvailableQuantity == 0 || ratio < defaultLowStockThreshold {
			alerts = append(alerts, StockAlert{
				SKU:       item.SKU,
				Name:      item.Name,
				Available: item.AvailableQuantity,
				Total:     item.Quantity,
			})
		}
	}
	return alerts
}

// CheckOverdueLoans flags active loans past their expected return date.
func (a *AlertService) CheckOverdueLoans(now time.Time) []OverdueAlert {
	var alerts []OverdueAlert
	for _, loan := range a.ledger.Loans() {
		if loan.Overdue(now) {
			alerts = append(alerts, OverdueAlert{
				ItemName:     loan.ItemName,
				BorrowerName: loan.BorrowerName,
				Quantity:     loan.Quantity,
				DueDate:      loan.ExpectedReturnDate,
			})
		}
	}
	return alerts
}

// RunChecks executes both scans and logs the findings.
func (a *AlertService) RunChecks() {
	lowStock := a.CheckLowStock()
	for _, alert := range lowStock {
		a.logger.Warn("low stock",
			zap.String("sku", alert.SKU),
			zap.String("item", alert.Name),
			zap.Int("available", alert.Available),
			zap.Int("total", alert.Total))
	}

	overdue := a.CheckOverdueLoans(time.Now())
	for _, alert := range overdue {
		a.logger.Warn("overdue loan",
			zap.String("item", alert.ItemName),
			zap.String("borrower", alert.BorrowerName),
			zap.Int("quantity", alert.Quantity),
			zap.Time("due", alert.DueDate))
	}

	if len(lowStock) == 0 && len(overdue) == 0 {
		a.logger.Info("inventory checks clean")
	}
}
