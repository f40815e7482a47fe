package entity

import "time"

// Ledger action kinds
const (
	ActionInitialAdd         = "initial_add"
	ActionManualAdd          = "manual_add"
	ActionManualRemove       = "manual_remove"
	ActionSale               = "sale"
	ActionPurchase           = "purchase"
	ActionWaste              = "waste"
	ActionRequestFulfillment = "request_fulfillment"
)

var ledgerActions = map[string]bool{
	ActionInitialAdd:         true,
	ActionManualAdd:          true,
	ActionManualRemove:       true,
	ActionSale:               true,
	ActionPurchase:           true,
	ActionWaste:              true,
	ActionRequestFulfillment: true,
}

// ValidLedgerAction reports whether kind is a known ledger action.
func ValidLedgerAction(kind string) bool {
	return ledgerActions[kind]
}

// AdditiveAction reports whether kind may only increase stock.
// manual_remove/sale/waste may only decrease it.
func AdditiveAction(kind string) bool {
	switch kind {
	case ActionInitialAdd, ActionManualAdd, ActionPurchase, ActionRequestFulfillment:
		return true
	}
	return false
}

// InventoryLogEntry is one append-only ledger row. Entries are never updated
// or deleted; replaying them in creation order from zero reproduces the
// item's current quantity. Invariant: PreviousQuantity + Quantity == NewQuantity.
type InventoryLogEntry struct {
	ID               string    `json:"id" gorm:"primaryKey;size:32"`
	ItemID           string    `json:"item_id" gorm:"size:32;not null;index"`
	ActionType       string    `json:"action_type" gorm:"size:30;not null"`
	Quantity         float64   `json:"quantity" gorm:"type:decimal(12,4);not null"` // signed delta
	PreviousQuantity float64   `json:"previous_quantity" gorm:"type:decimal(12,4);not null"`
	NewQuantity      float64   `json:"new_quantity" gorm:"type:decimal(12,4);not null"`
	UserID           string    `json:"user_id" gorm:"size:32;not null"`
	Notes            string    `json:"notes" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at" gorm:"index"`
}

func (InventoryLogEntry) TableName() string {
	return "inventory_log"
}
