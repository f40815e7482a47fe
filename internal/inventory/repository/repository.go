package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories is the inventory repository set.
type Repositories struct {
	Item     *ItemRepository
	Log      *LogRepository
	Request  *RequestRepository
	Batch    *BatchRepository
	Supplier *SupplierRepository
}

// NewRepositories creates the inventory repository set.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Item:     NewItemRepository(db),
		Log:      NewLogRepository(db),
		Request:  NewRequestRepository(db),
		Batch:    NewBatchRepository(db),
		Supplier: NewSupplierRepository(db),
	}
}
