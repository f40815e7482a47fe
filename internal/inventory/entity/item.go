package entity

import "time"

// Item lifecycle status
const (
	ItemStatusActive   = "active"
	ItemStatusInactive = "inactive"
)

// InventoryItem is a stocked item. CurrentQuantity is owned by the ledger
// service; nothing else writes it.
type InventoryItem struct {
	ID              string     `json:"id" gorm:"primaryKey;size:32"`
	SKU             string     `json:"sku" gorm:"size:64;uniqueIndex;not null"`
	ItemName        string     `json:"item_name" gorm:"size:200;not null"`
	Category        string     `json:"category" gorm:"size:50"` // feed/seed/fertilizer/medicine/equipment/other
	CurrentQuantity float64    `json:"current_quantity" gorm:"type:decimal(12,4);not null;default:0"`
	UnitOfMeasure   string     `json:"unit_of_measure" gorm:"size:20;not null;default:pcs"`
	ReorderLevel    float64    `json:"reorder_level" gorm:"type:decimal(12,4);default:0"`
	MaximumLevel    float64    `json:"maximum_level" gorm:"type:decimal(12,4);default:0"`
	UnitCost        float64    `json:"unit_cost" gorm:"type:decimal(12,4);default:0"`
	ExpiryDate      *time.Time `json:"expiry_date"`
	BatchLabel      string     `json:"batch_label" gorm:"size:50"`
	Status          string     `json:"status" gorm:"size:20;not null;default:active"`
	CreatedBy       string     `json:"created_by" gorm:"size:32"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}
