package service

import (
	"context"
	"errors"
	"testing"

	"github.com/croftlabs/farmops/internal/inventory/entity"
	"github.com/croftlabs/farmops/internal/inventory/repository"
	"github.com/croftlabs/farmops/internal/inventory/testutil"
	"go.uber.org/zap"
)

func setupItemTest(t *testing.T) (*ItemService, *repository.Repositories) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	cfg := testutil.TestConfig()
	logger := zap.NewNop()
	ledger := NewLedgerService(db, repos, cfg, logger)
	svc := NewItemService(db, repos, ledger, logger)
	return svc, repos
}

func TestItemCreateWithOpeningStock(t *testing.T) {
	svc, repos := setupItemTest(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, CreateItemReq{
		SKU:             "SKU-100",
		ItemName:        "Starter Feed",
		Category:        "feed",
		InitialQuantity: 75,
		UnitOfMeasure:   "kg",
		ReorderLevel:    20,
	}, "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.CurrentQuantity != 75 {
		t.Fatalf("expected opening quantity 75, got %v", item.CurrentQuantity)
	}
	if item.Status != entity.ItemStatusActive {
		t.Fatalf("expected active, got %q", item.Status)
	}

	entries, err := repos.Log.FindByItemAsc(ctx, item.ID)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 opening entry, got %d", len(entries))
	}
	if entries[0].ActionType != entity.ActionInitialAdd {
		t.Fatalf("unexpected action %q", entries[0].ActionType)
	}
	if entries[0].PreviousQuantity != 0 || entries[0].NewQuantity != 75 {
		t.Fatalf("unexpected opening entry: %+v", entries[0])
	}
}

func TestItemCreateNoOpeningStockNoEntry(t *testing.T) {
	svc, repos := setupItemTest(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, CreateItemReq{SKU: "SKU-101", ItemName: "Shovel", Category: "equipment"}, "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.CurrentQuantity != 0 {
		t.Fatalf("expected zero quantity, got %v", item.CurrentQuantity)
	}
	if item.UnitOfMeasure != "pcs" {
		t.Fatalf("expected default unit pcs, got %q", item.UnitOfMeasure)
	}

	entries, _ := repos.Log.FindByItemAsc(ctx, item.ID)
	if len(entries) != 0 {
		t.Fatalf("expected no ledger entries, got %d", len(entries))
	}
}

func TestItemCreateValidation(t *testing.T) {
	svc, _ := setupItemTest(t)
	ctx := context.Background()

	var vErr *ValidationError
	cases := []CreateItemReq{
		{SKU: "S1", ItemName: "X", Category: "vehicles"},
		{SKU: "S2", ItemName: "X", Category: "feed", InitialQuantity: -1},
		{SKU: "S3", ItemName: "X", Category: "feed", ReorderLevel: -5},
		{SKU: "S4", ItemName: "X", Category: "feed", ReorderLevel: 50, MaximumLevel: 10},
	}
	for i, req := range cases {
		if _, err := svc.Create(ctx, req, "u"); !errors.As(err, &vErr) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestItemUpdateKeepsQuantity(t *testing.T) {
	svc, _ := setupItemTest(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, CreateItemReq{
		SKU: "SKU-102", ItemName: "Corn Seed", Category: "seed", InitialQuantity: 30,
	}, "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Sweet Corn Seed"
	cost := 4.5
	updated, err := svc.Update(ctx, item.ID, UpdateItemReq{ItemName: &name, UnitCost: &cost})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ItemName != name || updated.UnitCost != cost {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.CurrentQuantity != 30 {
		t.Fatalf("quantity must not move on update, got %v", updated.CurrentQuantity)
	}

	// Level checks hold against values already stored.
	maximum := 10.0
	var vErr *ValidationError
	reorder := 50.0
	if _, err := svc.Update(ctx, item.ID, UpdateItemReq{ReorderLevel: &reorder, MaximumLevel: &maximum}); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for levels, got %v", err)
	}
}

func TestItemSetStatus(t *testing.T) {
	svc, _ := setupItemTest(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, CreateItemReq{SKU: "SKU-103", ItemName: "Vaccine", Category: "medicine"}, "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	deactivated, err := svc.SetStatus(ctx, item.ID, entity.ItemStatusInactive)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if deactivated.Status != entity.ItemStatusInactive {
		t.Fatalf("expected inactive, got %q", deactivated.Status)
	}

	// Idempotent re-apply.
	again, err := svc.SetStatus(ctx, item.ID, entity.ItemStatusInactive)
	if err != nil {
		t.Fatalf("repeat deactivate: %v", err)
	}
	if again.Status != entity.ItemStatusInactive {
		t.Fatalf("expected inactive, got %q", again.Status)
	}

	var vErr *ValidationError
	if _, err := svc.SetStatus(ctx, item.ID, "archived"); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.SetStatus(ctx, "missing", entity.ItemStatusActive); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
