package service

import (
	"context"
	"fmt"
	"time"

	"github.com/croftlabs/farmops/internal/inventory/entity"
	"github.com/croftlabs/farmops/internal/inventory/expiry"
	"github.com/croftlabs/farmops/internal/inventory/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var itemCategories = map[string]bool{
	"feed": true, "seed": true, "fertilizer": true,
	"medicine": true, "equipment": true, "other": true,
}

type ItemService struct {
	db     *gorm.DB
	repos  *repository.Repositories
	ledger *LedgerService
	logger *zap.Logger
}

func NewItemService(db *gorm.DB, repos *repository.Repositories, ledger *LedgerService, logger *zap.Logger) *ItemService {
	return &ItemService{db: db, repos: repos, ledger: ledger, logger: logger}
}

// CreateItemReq carries the fields for a new item. InitialQuantity, when
// positive, lands in the ledger as an initial_add entry.
type CreateItemReq struct {
	SKU             string     `json:"sku" binding:"required"`
	ItemName        string     `json:"item_name" binding:"required"`
	Category        string     `json:"category" binding:"required"`
	InitialQuantity float64    `json:"initial_quantity"`
	UnitOfMeasure   string     `json:"unit_of_measure"`
	ReorderLevel    float64    `json:"reorder_level"`
	MaximumLevel    float64    `json:"maximum_level"`
	UnitCost        float64    `json:"unit_cost"`
	ExpiryDate      *time.Time `json:"expiry_date"`
	BatchLabel      string     `json:"batch_label"`
}

// Create inserts an item and, when an opening quantity is given, its opening
// ledger entry in the same transaction.
func (s *ItemService) Create(ctx context.Context, req CreateItemReq, userID string) (*entity.InventoryItem, error) {
	if !itemCategories[req.Category] {
		return nil, validationErr("category", fmt.Sprintf("unknown category %q", req.Category))
	}
	if req.InitialQuantity < 0 {
		return nil, validationErr("initial_quantity", "must not be negative")
	}
	if req.ReorderLevel < 0 || req.MaximumLevel < 0 {
		return nil, validationErr("reorder_level", "levels must not be negative")
	}
	if req.MaximumLevel > 0 && req.MaximumLevel < req.ReorderLevel {
		return nil, validationErr("maximum_level", "must be at least the reorder level")
	}

	unit := req.UnitOfMeasure
	if unit == "" {
		unit = "pcs"
	}

	item := &entity.InventoryItem{
		ID:            newID(),
		SKU:           req.SKU,
		ItemName:      req.ItemName,
		Category:      req.Category,
		UnitOfMeasure: unit,
		ReorderLevel:  req.ReorderLevel,
		MaximumLevel:  req.MaximumLevel,
		UnitCost:      req.UnitCost,
		ExpiryDate:    req.ExpiryDate,
		BatchLabel:    req.BatchLabel,
		Status:        entity.ItemStatusActive,
		CreatedBy:     userID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("create item: %w", err)
		}
		if req.InitialQuantity > 0 {
			entry, err := s.ledger.applyDeltaTx(tx, item.ID, entity.ActionInitialAdd, req.InitialQuantity, userID, "opening stock")
			if err != nil {
				return err
			}
			item.CurrentQuantity = entry.NewQuantity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item created",
		zap.String("item_id", item.ID),
		zap.String("sku", item.SKU),
		zap.Float64("initial_quantity", req.InitialQuantity))
	return item, nil
}

func (s *ItemService) Get(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return s.repos.Item.FindByID(ctx, id)
}

func (s *ItemService) List(ctx context.Context, p repository.ItemListParams) ([]entity.InventoryItem, int64, error) {
	return s.repos.Item.FindAll(ctx, p)
}

// UpdateItemReq holds optional field updates. Quantity is absent on purpose;
// stock moves only through the ledger.
type UpdateItemReq struct {
	ItemName      *string    `json:"item_name"`
	Category      *string    `json:"category"`
	UnitOfMeasure *string    `json:"unit_of_measure"`
	ReorderLevel  *float64   `json:"reorder_level"`
	MaximumLevel  *float64   `json:"maximum_level"`
	UnitCost      *float64   `json:"unit_cost"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	BatchLabel    *string    `json:"batch_label"`
}

func (s *ItemService) Update(ctx context.Context, id string, req UpdateItemReq) (*entity.InventoryItem, error) {
	item, err := s.repos.Item.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.ItemName != nil {
		fields["item_name"] = *req.ItemName
	}
	if req.Category != nil {
		if !itemCategories[*req.Category] {
			return nil, validationErr("category", fmt.Sprintf("unknown category %q", *req.Category))
		}
		fields["category"] = *req.Category
	}
	if req.UnitOfMeasure != nil {
		fields["unit_of_measure"] = *req.UnitOfMeasure
	}

	reorder := item.ReorderLevel
	maximum := item.MaximumLevel
	if req.ReorderLevel != nil {
		reorder = *req.ReorderLevel
		fields["reorder_level"] = reorder
	}
	if req.MaximumLevel != nil {
		maximum = *req.MaximumLevel
		fields["maximum_level"] = maximum
	}
	if reorder < 0 || maximum < 0 {
		return nil, validationErr("reorder_level", "levels must not be negative")
	}
	if maximum > 0 && maximum < reorder {
		return nil, validationErr("maximum_level", "must be at least the reorder level")
	}

	if req.UnitCost != nil {
		fields["unit_cost"] = *req.UnitCost
	}
	if req.ExpiryDate != nil {
		fields["expiry_date"] = *req.ExpiryDate
	}
	if req.BatchLabel != nil {
		fields["batch_label"] = *req.BatchLabel
	}

	if len(fields) > 0 {
		if err := s.repos.Item.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.repos.Item.FindByID(ctx, id)
}

// SetStatus activates or deactivates an item. Deactivation keeps the item and
// its ledger; it only blocks new movements and fulfillments.
func (s *ItemService) SetStatus(ctx context.Context, id, status string) (*entity.InventoryItem, error) {
	if status != entity.ItemStatusActive && status != entity.ItemStatusInactive {
		return nil, validationErr("status", fmt.Sprintf("unknown status %q", status))
	}
	item, err := s.repos.Item.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status == status {
		return item, nil
	}
	if err := s.repos.Item.UpdateFields(ctx, id, map[string]interface{}{"status": status}); err != nil {
		return nil, err
	}
	s.logger.Info("item status changed",
		zap.String("item_id", id),
		zap.String("from", item.Status),
		zap.String("to", status))
	item.Status = status
	return item, nil
}

// Export writes the filtered item list to an xlsx workbook, with an expiry
// classification column computed at export time.
func (s *ItemService) Export(ctx context.Context, p repository.ItemListParams, horizonDays int) (*excelize.File, error) {
	p.Page = 1
	p.PageSize = exportPageSize
	var items []entity.InventoryItem
	for {
		page, _, err := s.repos.Item.FindAll(ctx, p)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
		if len(page) < exportPageSize {
			break
		}
		p.Page++
	}

	f := excelize.NewFile()
	sheet := "Items"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"SKU", "Name", "Category", "Quantity", "Unit", "Reorder Level", "Maximum Level", "Unit Cost", "Expiry Date", "Expiry Status", "Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	f.SetCellStyle(sheet, "A1", "K1", headerStyle)

	now := time.Now()
	for i, it := range items {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), it.SKU)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), it.ItemName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), it.Category)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), it.CurrentQuantity)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), it.UnitOfMeasure)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), it.ReorderLevel)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), it.MaximumLevel)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), it.UnitCost)
		if it.ExpiryDate != nil {
			f.SetCellValue(sheet, fmt.Sprintf("I%d", row), it.ExpiryDate.Format("2006-01-02"))
		}
		f.SetCellValue(sheet, fmt.Sprintf("J%d", row), expiry.Classify(it.ExpiryDate, now, horizonDays))
		f.SetCellValue(sheet, fmt.Sprintf("K%d", row), it.Status)
	}
	f.SetColWidth(sheet, "B", "B", 32)

	return f, nil
}
