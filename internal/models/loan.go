package models

import (
	"time"

	"github.com/google/uuid"
)

// Loan status constants
const (
	LoanStatusActive   = "ACTIVE"
	LoanStatusReturned = "RETURNED"
)

// LoanRecord represents an open borrow. Quantity is the outstanding balance
// and is decremented by partial returns; a record exists in the registry only
// while the balance is positive.
type LoanRecord struct {
	ID                   uuid.UUID `json:"id"`
	ItemID               uuid.UUID `json:"item_id"`
	ItemName             string    `json:"item_name"`
	BorrowerName         string    `json:"borrower_name"`
	Department           string    `json:"department"`
	BorrowDate           time.Time `json:"borrow_date"`
	ExpectedReturnDate   time.Time `json:"expected_return_date"`
	Quantity             int       `json:"quantity"`
	Status               string    `json:"status"`
	AcknowledgementToken string    `json:"acknowledgement_token"`
	ProofImage           string    `json:"proof_image,omitempty"`
}

// Overdue reports whether the loan's expected return date has passed.
func (l *LoanRecord) Overdue(now time.Time) bool {
	return !l.ExpectedReturnDate.IsZero() && now.After(l.ExpectedReturnDate)
}
