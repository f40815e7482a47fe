package entity

import "time"

// Supplier states
const (
	SupplierStatusActive   = "active"
	SupplierStatusInactive = "inactive"
)

// Supplier is a minimal registry entry so batches can reference their source.
type Supplier struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	Code        string    `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	ContactName string    `json:"contact_name" gorm:"size:100"`
	Phone       string    `json:"phone" gorm:"size:50"`
	Email       string    `json:"email" gorm:"size:128"`
	Address     string    `json:"address" gorm:"size:500"`
	Status      string    `json:"status" gorm:"size:20;not null;default:active"`
	CreatedBy   string    `json:"created_by" gorm:"size:32"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Supplier) TableName() string {
	return "suppliers"
}
