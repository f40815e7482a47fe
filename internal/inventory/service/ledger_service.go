package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/croftlabs/farmops/internal/config"
	"github.com/croftlabs/farmops/internal/inventory/entity"
	"github.com/croftlabs/farmops/internal/inventory/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LedgerService is the only writer of item quantities. Every change goes
// through one transaction that locks the item row, updates the quantity and
// appends a log entry, so the log always replays to the stored quantity.
type LedgerService struct {
	db      *gorm.DB
	repos   *repository.Repositories
	logger  *zap.Logger
	timeout time.Duration
}

func NewLedgerService(db *gorm.DB, repos *repository.Repositories, cfg *config.Config, logger *zap.Logger) *LedgerService {
	timeout := cfg.Inventory.OperationTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &LedgerService{db: db, repos: repos, logger: logger, timeout: timeout}
}

// ApplyDeltaReq describes one stock movement. Quantity is a positive
// magnitude; the action type decides the sign.
type ApplyDeltaReq struct {
	ItemID     string  `json:"item_id" binding:"required"`
	ActionType string  `json:"action_type" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required"`
	Notes      string  `json:"notes"`
}

// ApplyDelta records a stock movement against an item.
func (s *LedgerService) ApplyDelta(ctx context.Context, req ApplyDeltaReq, userID string) (*entity.InventoryLogEntry, error) {
	if !entity.ValidLedgerAction(req.ActionType) {
		return nil, validationErr("action_type", fmt.Sprintf("unknown action %q", req.ActionType))
	}
	if req.Quantity <= 0 {
		return nil, validationErr("quantity", "must be greater than zero")
	}

	delta := req.Quantity
	if !entity.AdditiveAction(req.ActionType) {
		delta = -delta
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var entry *entity.InventoryLogEntry
	err := s.db.WithContext(opCtx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = s.applyDeltaTx(tx, req.ItemID, req.ActionType, delta, userID, req.Notes)
		return txErr
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("stock operation timed out waiting for row lock",
				zap.String("item_id", req.ItemID),
				zap.String("action", req.ActionType))
			return nil, ErrBusy
		}
		return nil, err
	}

	s.logger.Info("stock movement recorded",
		zap.String("item_id", req.ItemID),
		zap.String("action", req.ActionType),
		zap.Float64("delta", delta),
		zap.Float64("new_quantity", entry.NewQuantity))
	return entry, nil
}

// applyDeltaTx performs the locked update inside an existing transaction.
// Callers in this package fold it into larger transactions, such as request
// fulfillment, so the status flip and the stock credit commit together.
func (s *LedgerService) applyDeltaTx(tx *gorm.DB, itemID, actionType string, delta float64, userID, notes string) (*entity.InventoryLogEntry, error) {
	item, err := s.repos.Item.LockByID(tx, itemID)
	if err != nil {
		return nil, err
	}

	newQty := item.CurrentQuantity + delta
	if newQty < 0 {
		return nil, &InvalidQuantityError{ItemID: itemID, Current: item.CurrentQuantity, Delta: delta}
	}

	if err := tx.Model(&entity.InventoryItem{}).
		Where("id = ?", itemID).
		Update("current_quantity", newQty).Error; err != nil {
		return nil, fmt.Errorf("update quantity: %w", err)
	}

	entry := &entity.InventoryLogEntry{
		ID:               newID(),
		ItemID:           itemID,
		ActionType:       actionType,
		Quantity:         delta,
		PreviousQuantity: item.CurrentQuantity,
		NewQuantity:      newQty,
		UserID:           userID,
		Notes:            notes,
		CreatedAt:        time.Now(),
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("append log entry: %w", err)
	}
	return entry, nil
}

// ListEntries returns ledger entries, newest first.
func (s *LedgerService) ListEntries(ctx context.Context, p repository.LogListParams) ([]entity.InventoryLogEntry, int64, error) {
	return s.repos.Log.FindAll(ctx, p)
}

// ReconcileResult compares an item's stored quantity with its replayed log.
type ReconcileResult struct {
	ItemID          string  `json:"item_id"`
	StoredQuantity  float64 `json:"stored_quantity"`
	LedgerQuantity  float64 `json:"ledger_quantity"`
	Drift           float64 `json:"drift"`
	Consistent      bool    `json:"consistent"`
	EntryCount      int     `json:"entry_count"`
	ChainConsistent bool    `json:"chain_consistent"`
}

// reconcileEpsilon absorbs float64 rounding when replaying quantities, which
// are stored as decimal(12,4). Real drift is at least one ten-thousandth.
const reconcileEpsilon = 1e-6

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < reconcileEpsilon
}

// Reconcile replays an item's ledger and checks it against the stored
// quantity, and that each entry's previous quantity matches the one before.
func (s *LedgerService) Reconcile(ctx context.Context, itemID string) (*ReconcileResult, error) {
	item, err := s.repos.Item.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	entries, err := s.repos.Log.FindByItemAsc(ctx, itemID)
	if err != nil {
		return nil, err
	}

	var replayed float64
	chainOK := true
	for _, e := range entries {
		if !approxEqual(e.PreviousQuantity, replayed) || !approxEqual(e.PreviousQuantity+e.Quantity, e.NewQuantity) {
			chainOK = false
		}
		replayed += e.Quantity
	}

	result := &ReconcileResult{
		ItemID:          itemID,
		StoredQuantity:  item.CurrentQuantity,
		LedgerQuantity:  replayed,
		Drift:           item.CurrentQuantity - replayed,
		Consistent:      approxEqual(item.CurrentQuantity, replayed),
		EntryCount:      len(entries),
		ChainConsistent: chainOK,
	}
	if !result.Consistent || !chainOK {
		s.logger.Warn("ledger reconciliation drift",
			zap.String("item_id", itemID),
			zap.Float64("stored", item.CurrentQuantity),
			zap.Float64("replayed", replayed))
	}
	return result, nil
}

// ExportLedger writes ledger entries to an xlsx workbook.
func (s *LedgerService) ExportLedger(ctx context.Context, p repository.LogListParams) (*excelize.File, error) {
	p.Page = 1
	p.PageSize = exportPageSize
	var entries []entity.InventoryLogEntry
	for {
		page, _, err := s.repos.Log.FindAll(ctx, p)
		if err != nil {
			return nil, err
		}
		entries = append(entries, page...)
		if len(page) < exportPageSize {
			break
		}
		p.Page++
	}

	f := excelize.NewFile()
	sheet := "Ledger"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Time", "Item ID", "Action", "Delta", "Previous", "New", "User", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	f.SetCellStyle(sheet, "A1", "H1", headerStyle)

	for i, e := range entries {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.CreatedAt.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), e.ItemID)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), e.ActionType)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), e.Quantity)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), e.PreviousQuantity)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), e.NewQuantity)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), e.UserID)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), e.Notes)
	}
	f.SetColWidth(sheet, "A", "A", 20)
	f.SetColWidth(sheet, "B", "B", 34)
	f.SetColWidth(sheet, "H", "H", 40)

	return f, nil
}
