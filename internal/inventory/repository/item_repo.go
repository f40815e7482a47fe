package repository

import (
	"context"
	"errors"

	"github.com/croftlabs/farmops/internal/inventory/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemRepository persists inventory items.
type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// ItemListParams filters the item listing.
type ItemListParams struct {
	Status   string
	Category string
	Search   string
	LowStock bool
	Page     int
	PageSize int
}

// FindAll lists items with filters and pagination.
func (r *ItemRepository) FindAll(ctx context.Context, p ItemListParams) ([]entity.InventoryItem, int64, error) {
	var items []entity.InventoryItem
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.InventoryItem{})

	if p.Status != "" {
		query = query.Where("status = ?", p.Status)
	}
	if p.Category != "" {
		query = query.Where("category = ?", p.Category)
	}
	if p.Search != "" {
		query = query.Where("item_name ILIKE ? OR sku ILIKE ?", "%"+p.Search+"%", "%"+p.Search+"%")
	}
	if p.LowStock {
		query = query.Where("reorder_level > 0 AND current_quantity <= reorder_level")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (p.Page - 1) * p.PageSize
	err := query.
		Order("item_name ASC").
		Offset(offset).
		Limit(p.PageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID looks up one item.
func (r *ItemRepository) FindByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// LockByID loads an item under FOR UPDATE. Must be called inside a
// transaction; the lock is held until that transaction ends.
func (r *ItemRepository) LockByID(tx *gorm.DB, id string) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts an item.
func (r *ItemRepository) Create(ctx context.Context, item *entity.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateFields applies a partial update to an item's descriptive columns.
// current_quantity is deliberately never part of this path.
func (r *ItemRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	delete(fields, "current_quantity")
	res := r.db.WithContext(ctx).Model(&entity.InventoryItem{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus counts items in one lifecycle status.
func (r *ItemRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.InventoryItem{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}

// TotalStockValue sums current_quantity * unit_cost over active items.
func (r *ItemRepository) TotalStockValue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&entity.InventoryItem{}).
		Select("COALESCE(SUM(current_quantity * unit_cost), 0)").
		Where("status = ?", entity.ItemStatusActive).
		Scan(&total).Error
	return total, err
}

// CountLowStock counts active items at or below their reorder level.
func (r *ItemRepository) CountLowStock(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.InventoryItem{}).
		Where("status = ? AND reorder_level > 0 AND current_quantity <= reorder_level", entity.ItemStatusActive).
		Count(&n).Error
	return n, err
}
