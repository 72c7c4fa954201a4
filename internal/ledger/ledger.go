package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"maintitrack/internal/models"
	"maintitrack/internal/persistence"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// IDGen abstracts identifier generation for deterministic tests.
type IDGen interface {
	New() uuid.UUID
}

type uuidGen struct{}

func (uuidGen) New() uuid.UUID { return uuid.New() }

// Ledger owns the inventory, the loan registry, the transaction log, and the
// known-category set, and exposes the reconciliation operations as its only
// mutation entry points. Every successful mutation appends exactly one log
// entry and writes a snapshot to the persistence collaborator.
//
// A single mutex serializes operations: the stores are owned by one logical
// actor at a time, so each operation runs to completion before the next.
type Ledger struct {
	mu         sync.Mutex
	items      []*models.InventoryItem
	loans      []*models.LoanRecord
	history    []*models.TransactionLog
	categories []string

	store  persistence.SnapshotStore
	clock  Clock
	id     IDGen
	logger *zap.Logger
}

// New creates a ledger over the given snapshot store. State is empty until
// Restore is called.
func New(store persistence.SnapshotStore, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		store:  store,
		clock:  realClock{},
		id:     uuidGen{},
		logger: logger,
	}
}

// Restore loads the persisted stores, falling back to the seed inventory and
// category set for any store the collaborator has never saved.
func (l *Ledger) Restore(ctx context.Context) error {
	state, err := l.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore ledger state: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if state.Items != nil {
		l.items = state.Items
	} else {
		l.items = l.seedItems()
	}
	if state.Loans != nil {
		l.loans = state.Loans
	} else {
		l.loans = []*models.LoanRecord{}
	}
	if state.History != nil {
		l.history = state.History
	} else {
		l.history = []*models.TransactionLog{}
	}
	if state.Categories != nil {
		l.categories = state.Categories
	} else {
		l.categories = []string{"Tools", "Safety", "Testing", "Mechanical", "Electrical", models.FallbackCategory}
	}

	l.logger.Info("ledger restored",
		zap.Int("items", len(l.items)),
		zap.Int("loans", len(l.loans)),
		zap.Int("history", len(l.history)))
	return nil
}

func (l *Ledger) seedItems() []*models.InventoryItem {
	now := l.clock.Now()
	return []*models.InventoryItem{
		{ID: l.id.New(), SKU: "TOL-001", Name: "Fluke Multimeter", Category: "Testing", Quantity: 5, AvailableQuantity: 3, Location: "Shelf A1", LastUpdated: now},
		{ID: l.id.New(), SKU: "MEC-042", Name: "Hydraulic Jack 2T", Category: "Mechanical", Quantity: 2, AvailableQuantity: 2, Location: "Floor B", LastUpdated: now},
		{ID: l.id.New(), SKU: "SAF-109", Name: "Welding Mask Pro", Category: "Safety", Quantity: 10, AvailableQuantity: 8, Location: "Safety Cabinet", LastUpdated: now},
	}
}

// persist writes all four stores. The mutation has already happened, so a
// failed save is logged rather than unwound.
func (l *Ledger) persist(ctx context.Context) {
	state := l.stateLocked()
	if err := l.store.Save(ctx, state); err != nil {
		l.logger.Warn("failed to persist ledger state", zap.Error(err))
	}
}

func (l *Ledger) stateLocked() *persistence.State {
	return &persistence.State{
		Items:      copyItems(l.items),
		Loans:      copyLoans(l.loans),
		History:    copyHistory(l.history),
		Categories: append([]string(nil), l.categories...),
	}
}

func (l *Ledger) appendLogLocked(entry *models.TransactionLog) {
	// Newest first, matching display order.
	l.history = append([]*models.TransactionLog{entry}, l.history...)
}

func (l *Ledger) findItemLocked(id uuid.UUID) *models.InventoryItem {
	for _, item := range l.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

func (l *Ledger) findItemBySKULocked(sku string) *models.InventoryItem {
	for _, item := range l.items {
		if item.SKU == sku {
			return item
		}
	}
	return nil
}

func (l *Ledger) hasCategoryLocked(name string) bool {
	for _, c := range l.categories {
		if c == name {
			return true
		}
	}
	return false
}

func (l *Ledger) registerCategoryLocked(name string) {
	if name != "" && !l.hasCategoryLocked(name) {
		l.categories = append(l.categories, name)
	}
}

// ReceiveRequest describes a stock receipt. An empty category falls back to
// the system default; an empty SKU gets one generated from the category.
type ReceiveRequest struct {
	SKU      string
	Name     string
	Category string
	Quantity int
	Location string
	Operator string
}

// Receive adds stock: merged into the existing item when the SKU is already
// known, otherwise recorded as a new item with all units available.
func (l *Ledger) Receive(ctx context.Context, req ReceiveRequest) (*models.InventoryItem, error) {
	if req.Quantity < 0 {
		return nil, NewInvalidArgumentError("received quantity cannot be negative")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	category := req.Category
	if category == "" {
		category = models.FallbackCategory
	}
	l.registerCategoryLocked(category)

	sku := req.SKU
	if sku == "" {
		sku = nextSKU(category, l.skusLocked())
	}

	now := l.clock.Now()
	item := l.findItemBySKULocked(sku)
	if item != nil {
		item.Quantity += req.Quantity
		item.AvailableQuantity += req.Quantity
		item.LastUpdated = now
	} else {
		name := req.Name
		if name == "" {
			name = "New Item"
		}
		location := req.Location
		if location == "" {
			location = "Pending"
		}
		item = &models.InventoryItem{
			ID:                l.id.New(),
			SKU:               sku,
			Name:              name,
			Category:          category,
			Quantity:          req.Quantity,
			AvailableQuantity: req.Quantity,
			Location:          location,
			LastUpdated:       now,
		}
		l.items = append(l.items, item)
	}

	l.appendLogLocked(&models.TransactionLog{
		ID:        l.id.New(),
		Type:      models.TxReceive,
		ItemID:    item.ID,
		ItemName:  item.Name,
		Quantity:  req.Quantity,
		User:      req.Operator,
		Operator:  req.Operator,
		Timestamp: now,
		Notes:     "Received new stock shipment",
	})

	l.persist(ctx)
	return copyItem(item), nil
}

// BorrowRequest describes a checkout of one or more units of an item.
type BorrowRequest struct {
	ItemID             uuid.UUID
	Quantity           int
	BorrowerName       string
	Department         string
	ExpectedReturnDate time.Time
	ProofImage         string
	Operator           string
}

// Borrow checks units out. The borrow is refused outright when the requested
// quantity exceeds availability: nothing is mutated and nothing is logged.
func (l *Ledger) Borrow(ctx context.Context, req BorrowRequest) (*models.LoanRecord, error) {
	if req.Quantity <= 0 {
		return nil, NewInvalidArgumentError("borrow quantity must be positive")
	}
	if req.BorrowerName == "" {
		return nil, NewInvalidArgumentError("borrower name is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	item := l.findItemLocked(req.ItemID)
	if item == nil {
		return nil, NewNotFoundError("item not found")
	}
	if req.Quantity > item.AvailableQuantity {
		return nil, NewInsufficientStockError(req.Quantity, item.AvailableQuantity)
	}

	now := l.clock.Now()
	item.AvailableQuantity -= req.Quantity
	item.LastUpdated = now

	loan := &models.LoanRecord{
		ID:                   l.id.New(),
		ItemID:               item.ID,
		ItemName:             item.Name,
		BorrowerName:         req.BorrowerName,
		Department:           req.Department,
		BorrowDate:           now,
		ExpectedReturnDate:   req.ExpectedReturnDate,
		Quantity:             req.Quantity,
		Status:               models.LoanStatusActive,
		AcknowledgementToken: fmt.Sprintf("%s-Signed-%d", req.BorrowerName, now.UnixMilli()),
		ProofImage:           req.ProofImage,
	}
	l.loans = append(l.loans, loan)

	l.appendLogLocked(&models.TransactionLog{
		ID:         l.id.New(),
		Type:       models.TxBorrow,
		ItemID:     item.ID,
		ItemName:   item.Name,
		Quantity:   req.Quantity,
		User:       req.BorrowerName,
		Operator:   req.Operator,
		Timestamp:  now,
		Notes:      fmt.Sprintf("Borrowed %d units for %s", req.Quantity, req.Department),
		ProofImage: req.ProofImage,
	})

	l.persist(ctx)
	return copyLoan(loan), nil
}

// Return settles processedQty units of a loan with a condition assessment.
// The loan is removed once its balance reaches zero; an overshoot settles the
// loan rather than raising an error. Inventory effects depend on condition:
// GOOD and PARTIAL restore availability, DAMAGED returns units to the shelf
// without making them loanable, LOST removes them from the total.
func (l *Ledger) Return(ctx context.Context, loanID uuid.UUID, condition string, processedQty int, proofImage, operator string) error {
	if processedQty <= 0 {
		return NewInvalidArgumentError("processed quantity must be positive")
	}
	if !models.ValidCondition(condition) {
		return NewInvalidArgumentError("unknown return condition " + condition)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var loan *models.LoanRecord
	for _, candidate := range l.loans {
		if candidate.ID == loanID {
			loan = candidate
			break
		}
	}
	if loan == nil {
		return NewNotFoundError("loan not found")
	}

	now := l.clock.Now()
	totalAtStart := loan.Quantity
	balance := totalAtStart - processedQty

	if balance <= 0 {
		remaining := l.loans[:0]
		for _, candidate := range l.loans {
			if candidate.ID != loanID {
				remaining = append(remaining, candidate)
			}
		}
		l.loans = remaining
	} else {
		loan.Quantity = balance
	}

	// Dangling item references are tolerated: the loan still settles and the
	// return is still logged.
	if item := l.findItemLocked(loan.ItemID); item != nil {
		switch condition {
		case models.ConditionGood, models.ConditionPartial:
			item.AvailableQuantity += processedQty
		case models.ConditionLost:
			item.Quantity -= processedQty
		case models.ConditionDamaged:
			// Units occupy physical stock but are not loanable.
		}
		item.LastUpdated = now
	}

	notes := fmt.Sprintf("Processed %d/%d units. Status: %s", processedQty, totalAtStart, condition)
	if balance > 0 {
		notes += fmt.Sprintf(". Remaining on loan: %d", balance)
	}

	l.appendLogLocked(&models.TransactionLog{
		ID:         l.id.New(),
		Type:       models.TxReturn,
		ItemID:     loan.ItemID,
		ItemName:   loan.ItemName,
		Quantity:   processedQty,
		User:       loan.BorrowerName,
		Operator:   operator,
		Timestamp:  now,
		Notes:      notes,
		Condition:  condition,
		ProofImage: proofImage,
	})

	l.persist(ctx)
	return nil
}

// AdjustRequest describes a stock correction. Optional fields overwrite the
// item's metadata when non-empty.
type AdjustRequest struct {
	ItemID      uuid.UUID
	NewTotal    int
	Reason      string
	NewCategory string
	NewLocation string
	NewSKU      string
	Operator    string
}

// AdjustStock sets a new total quantity. Availability is recomputed from the
// units currently on loan and clamps at zero: shrinking the total below the
// outstanding loans is permitted, available stock just cannot go negative.
func (l *Ledger) AdjustStock(ctx context.Context, req AdjustRequest) (*models.InventoryItem, error) {
	if req.NewTotal < 0 {
		return nil, NewInvalidArgumentError("total quantity cannot be negative")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	item := l.findItemLocked(req.ItemID)
	if item == nil {
		return nil, NewNotFoundError("item not found")
	}

	l.registerCategoryLocked(req.NewCategory)

	now := l.clock.Now()
	borrowed := item.Quantity - item.AvailableQuantity
	delta := req.NewTotal - item.Quantity

	item.Quantity = req.NewTotal
	item.AvailableQuantity = max(0, req.NewTotal-borrowed)
	if req.NewCategory != "" {
		item.Category = req.NewCategory
	}
	if req.NewLocation != "" {
		item.Location = req.NewLocation
	}
	if req.NewSKU != "" {
		item.SKU = req.NewSKU
	}
	item.LastUpdated = now

	l.appendLogLocked(&models.TransactionLog{
		ID:        l.id.New(),
		Type:      models.TxAdjust,
		ItemID:    item.ID,
		ItemName:  item.Name,
		Quantity:  delta,
		User:      req.Operator,
		Operator:  req.Operator,
		Timestamp: now,
		Notes:     "Stock adjustment/Update. Reason: " + req.Reason,
	})

	l.persist(ctx)
	return copyItem(item), nil
}

// DeleteItem removes an item from the ledger. Refused while any units are on
// loan; the removal is logged as an adjustment carrying the negative total.
func (l *Ledger) DeleteItem(ctx context.Context, itemID uuid.UUID, operator string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	item := l.findItemLocked(itemID)
	if item == nil {
		return NewNotFoundError("item not found")
	}
	if item.AvailableQuantity < item.Quantity {
		return NewOutstandingBalanceError(item.Name, item.Borrowed())
	}

	remaining := l.items[:0]
	for _, candidate := range l.items {
		if candidate.ID != itemID {
			remaining = append(remaining, candidate)
		}
	}
	l.items = remaining

	l.appendLogLocked(&models.TransactionLog{
		ID:        l.id.New(),
		Type:      models.TxAdjust,
		ItemID:    item.ID,
		ItemName:  item.Name,
		Quantity:  -item.Quantity,
		User:      operator,
		Operator:  operator,
		Timestamp: l.clock.Now(),
		Notes:     fmt.Sprintf("Permanently removed item %q from store records.", item.Name),
	})

	l.persist(ctx)
	return nil
}

// AddCategory registers a new category label.
func (l *Ledger) AddCategory(ctx context.Context, name string) error {
	if name == "" {
		return NewInvalidArgumentError("category name is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.hasCategoryLocked(name) {
		return NewInvalidArgumentError(fmt.Sprintf("category %q already exists", name))
	}
	l.categories = append(l.categories, name)
	l.persist(ctx)
	return nil
}

// DeleteCategory removes a category from the known set. The fallback category
// is protected. When items still reference the category, the caller must pass
// confirmReassign; the items are then relabeled to the fallback first.
func (l *Ledger) DeleteCategory(ctx context.Context, name string, confirmReassign bool) error {
	if name == models.FallbackCategory {
		return NewProtectedCategoryError(name)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.hasCategoryLocked(name) {
		return NewNotFoundError(fmt.Sprintf("category %q not found", name))
	}

	referencing := 0
	for _, item := range l.items {
		if item.Category == name {
			referencing++
		}
	}
	if referencing > 0 {
		if !confirmReassign {
			return NewCategoryInUseError(name, referencing)
		}
		now := l.clock.Now()
		for _, item := range l.items {
			if item.Category == name {
				item.Category = models.FallbackCategory
				item.LastUpdated = now
			}
		}
	}

	remaining := l.categories[:0]
	for _, c := range l.categories {
		if c != name {
			remaining = append(remaining, c)
		}
	}
	l.categories = remaining

	l.persist(ctx)
	return nil
}

// GenerateSKU previews the SKU the next item in the category would receive.
func (l *Ledger) GenerateSKU(category string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return nextSKU(category, l.skusLocked())
}

func (l *Ledger) skusLocked() []string {
	skus := make([]string, 0, len(l.items))
	for _, item := range l.items {
		skus = append(skus, item.SKU)
	}
	return skus
}

// Items returns a copy of the inventory ledger.
func (l *Ledger) Items() []*models.InventoryItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	return copyItems(l.items)
}

// Item returns a copy of a single inventory item.
func (l *Ledger) Item(id uuid.UUID) (*models.InventoryItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item := l.findItemLocked(id)
	if item == nil {
		return nil, NewNotFoundError("item not found")
	}
	return copyItem(item), nil
}

// Loans returns a copy of the active loan registry.
func (l *Ledger) Loans() []*models.LoanRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return copyLoans(l.loans)
}

// History returns a copy of the transaction log, newest first.
func (l *Ledger) History() []*models.TransactionLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	return copyHistory(l.history)
}

// Categories returns a copy of the known-category set.
func (l *Ledger) Categories() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.categories...)
}

// Snapshot returns a deep copy of the full state for read-only collaborators.
func (l *Ledger) Snapshot() *persistence.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stateLocked()
}

func copyItem(item *models.InventoryItem) *models.InventoryItem {
	cp := *item
	return &cp
}

func copyItems(items []*models.InventoryItem) []*models.InventoryItem {
	out := make([]*models.InventoryItem, len(items))
	for i, item := range items {
		out[i] = copyItem(item)
	}
	return out
}

func copyLoan(loan *models.LoanRecord) *models.LoanRecord {
	cp := *loan
	return &cp
}

func copyLoans(loans []*models.LoanRecord) []*models.LoanRecord {
	out := make([]*models.LoanRecord, len(loans))
	for i, loan := range loans {
		out[i] = copyLoan(loan)
	}
	return out
}

func copyHistory(history []*models.TransactionLog) []*models.TransactionLog {
	out := make([]*models.TransactionLog, len(history))
	for i, entry := range history {
		cp := *entry
		out[i] = &cp
	}
	return out
}
