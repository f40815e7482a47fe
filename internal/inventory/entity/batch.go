package entity

import "time"

// Batch states. Unlike the request workflow, any state may move to any other
// state: batches record physical reality and admins must be able to correct
// mistakes. Every change appends a BatchNote.
const (
	BatchStatusActive     = "active"
	BatchStatusQuarantine = "quarantine"
	BatchStatusConsumed   = "consumed"
	BatchStatusExpired    = "expired"
	BatchStatusDiscarded  = "discarded"
)

// ValidBatchStatus reports whether s is a known batch status.
func ValidBatchStatus(s string) bool {
	switch s {
	case BatchStatusActive, BatchStatusQuarantine, BatchStatusConsumed,
		BatchStatusExpired, BatchStatusDiscarded:
		return true
	}
	return false
}

// Batch is one received lot of an item. The stored Status is authoritative
// for writes and audit; expiry classification on reads is computed from
// ExpiryDate and never written back.
type Batch struct {
	ID                string     `json:"id" gorm:"primaryKey;size:32"`
	BatchNumber       string     `json:"batch_number" gorm:"size:50;uniqueIndex;not null"`
	ItemID            string     `json:"item_id" gorm:"size:32;not null;index"`
	Quantity          float64    `json:"quantity" gorm:"type:decimal(12,4);not null"`
	ManufacturingDate *time.Time `json:"manufacturing_date"`
	ExpiryDate        *time.Time `json:"expiry_date" gorm:"index"`
	ReceivedDate      time.Time  `json:"received_date"`
	Status            string     `json:"status" gorm:"size:20;not null;default:active;index"`
	SupplierID        *string    `json:"supplier_id" gorm:"size:32;index"`
	CostPerUnit       float64    `json:"cost_per_unit" gorm:"type:decimal(12,4);default:0"`
	ReceivedBy        string     `json:"received_by" gorm:"size:32"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Item     *InventoryItem `json:"item,omitempty" gorm:"foreignKey:ItemID"`
	Supplier *Supplier      `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Notes    []BatchNote    `json:"notes,omitempty" gorm:"foreignKey:BatchID"`
}

func (Batch) TableName() string {
	return "inventory_batches"
}

// BatchNote action kinds
const (
	BatchNoteStatusChange = "status_change"
	BatchNoteAttachment   = "attachment"
)

// BatchNote is one row of a batch's append-only history. Rows are created
// once and never updated or deleted.
type BatchNote struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	BatchID       string    `json:"batch_id" gorm:"size:32;not null;index"`
	Action        string    `json:"action" gorm:"size:30;not null"`
	FromStatus    string    `json:"from_status" gorm:"size:20"`
	ToStatus      string    `json:"to_status" gorm:"size:20"`
	Content       string    `json:"content" gorm:"type:text"`
	AttachmentURL string    `json:"attachment_url" gorm:"size:512"`
	OperatorID    string    `json:"operator_id" gorm:"size:32"`
	CreatedAt     time.Time `json:"created_at"`
}

func (BatchNote) TableName() string {
	return "inventory_batch_notes"
}
