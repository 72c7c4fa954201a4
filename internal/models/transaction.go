package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction type constants for the audit trail
const (
	TxReceive = "RECEIVE"
	TxBorrow  = "BORROW"
	TxReturn  = "RETURN"
	TxAdjust  = "ADJUST"
	TxDelete  = "DELETE"
	TxAdd     = "ADD"
)

// Return condition constants
const (
	ConditionGood    = "GOOD"
	ConditionPartial = "PARTIAL"
	ConditionDamaged = "DAMAGED"
	ConditionLost    = "LOST"
)

// ValidCondition reports whether c is one of the recognized return conditions.
func ValidCondition(c string) bool {
	switch c {
	case ConditionGood, ConditionPartial, ConditionDamaged, ConditionLost:
		return true
	}
	return false
}

// IncidentCondition reports whether c marks a non-optimal return that belongs
// in the incident log.
func IncidentCondition(c string) bool {
	switch c {
	case ConditionPartial, ConditionDamaged, ConditionLost:
		return true
	}
	return false
}

// TransactionLog is one append-only audit trail entry. Quantity carries the
// signed delta of the operation. Entries are never mutated after creation.
type TransactionLog struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	ItemID     uuid.UUID `json:"item_id"`
	ItemName   string    `json:"item_name"`
	Quantity   int       `json:"quantity"`
	User       string    `json:"user"`
	Operator   string    `json:"operator"`
	Timestamp  time.Time `json:"timestamp"`
	Notes      string    `json:"notes,omitempty"`
	Condition  string    `json:"condition,omitempty"`
	ProofImage string    `json:"proof_image,omitempty"`
}
