package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/croftlabs/farmops/internal/inventory/entity"
	"github.com/croftlabs/farmops/internal/inventory/repository"
	"github.com/croftlabs/farmops/internal/inventory/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupRequestTest(t *testing.T) (*RequestService, *repository.Repositories, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	cfg := testutil.TestConfig()
	logger := zap.NewNop()
	ledger := NewLedgerService(db, repos, cfg, logger)
	svc := NewRequestService(db, repos, ledger, nil, cfg, logger)
	return svc, repos, db
}

func TestRequestCreateGeneratesCode(t *testing.T) {
	svc, _, db := setupRequestTest(t)
	ctx := context.Background()

	testutil.SeedItem(t, db, "item-001", "SKU-001", "Fertilizer A", 100)

	first, err := svc.Create(ctx, CreateRequestReq{ItemID: "item-001", RequestedQuantity: 50}, "staff-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	year := time.Now().Format("2006")
	if first.Code != fmt.Sprintf("REQ-%s-0001", year) {
		t.Fatalf("unexpected code %q", first.Code)
	}
	if first.Status != entity.RequestStatusPending {
		t.Fatalf("expected pending, got %q", first.Status)
	}
	if first.Priority != entity.RequestPriorityMedium {
		t.Fatalf("expected default priority medium, got %q", first.Priority)
	}

	second, err := svc.Create(ctx, CreateRequestReq{ItemID: "item-001", RequestedQuantity: 5, Priority: "high"}, "staff-1")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.Code != fmt.Sprintf("REQ-%s-0002", year) {
		t.Fatalf("expected sequential code, got %q", second.Code)
	}
}

func TestRequestCreateValidation(t *testing.T) {
	svc, _, db := setupRequestTest(t)
	ctx := context.Background()

	item := testutil.SeedItem(t, db, "item-001", "SKU-001", "Fertilizer A", 100)

	var vErr *ValidationError
	if _, err := svc.Create(ctx, CreateRequestReq{ItemID: item.ID, RequestedQuantity: 0}, "u"); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for quantity, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateRequestReq{ItemID: item.ID, RequestedQuantity: 5, Priority: "extreme"}, "u"); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for priority, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateRequestReq{ItemID: "missing", RequestedQuantity: 5}, "u"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	db.Model(&entity.InventoryItem{}).Where("id = ?", item.ID).Update("status", entity.ItemStatusInactive)
	if _, err := svc.Create(ctx, CreateRequestReq{ItemID: item.ID, RequestedQuantity: 5}, "u"); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for inactive item, got %v", err)
	}
}

func TestRequestFullLifecycle(t *testing.T) {
	svc, repos, db := setupRequestTest(t)
	ctx := context.Background()

	testutil.SeedItem(t, db, "item-001", "SKU-001", "Fertilizer A", 100)

	created, err := svc.Create(ctx, CreateRequestReq{ItemID: "item-001", RequestedQuantity: 50}, "staff-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	approved, err := svc.Approve(ctx, created.ID, "admin-1", "looks fine")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != entity.RequestStatusApproved {
		t.Fatalf("expected approved, got %q", approved.Status)
	}
	if approved.ApprovedBy == nil || *approved.ApprovedBy != "admin-1" {
		t.Fatalf("approved_by not recorded: %+v", approved.ApprovedBy)
	}
	if approved.ApprovedDate == nil {
		t.Fatal("approved_date not recorded")
	}

	fulfilled, err := svc.Fulfill(ctx, created.ID, "admin-1", "restocked", "")
	if err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	if fulfilled.Status != entity.RequestStatusFulfilled {
		t.Fatalf("expected fulfilled, got %q", fulfilled.Status)
	}
	if fulfilled.FulfilledDate == nil {
		t.Fatal("fulfilled_date not recorded")
	}

	item, _ := repos.Item.FindByID(ctx, "item-001")
	if item.CurrentQuantity != 150 {
		t.Fatalf("expected 150 after fulfillment, got %v", item.CurrentQuantity)
	}

	entries, _ := repos.Log.FindByItemAsc(ctx, "item-001")
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(entries))
	}
	if entries[0].ActionType != entity.ActionRequestFulfillment {
		t.Fatalf("unexpected action %q", entries[0].ActionType)
	}
	if entries[0].PreviousQuantity != 100 || entries[0].NewQuantity != 150 {
		t.Fatalf("unexpected ledger entry: %+v", entries[0])
	}
}

func TestRequestInvalidTransitions(t *testing.T) {
	svc, _, db := setupRequestTest(t)
	ctx := context.Background()

	testutil.SeedItem(t, db, "item-001", "SKU-001", "Fertilizer A", 100)

	created, err := svc.Create(ctx, CreateRequestReq{ItemID: "item-001", RequestedQuantity: 10}, "staff-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Fulfilling before approval must be rejected.
	var transErr *InvalidTransitionError
	if _, err := svc.Fulfill(ctx, created.ID, "admin-1", "", ""); !errors.As(err, &transErr) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}

	if _, err := svc.Approve(ctx, created.ID, "admin-1", ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// Approving twice must be rejected.
	if _, err := svc.Approve(ctx, created.ID, "admin-2", ""); !errors.As(err, &transErr) {
		t.Fatalf("expected InvalidTransitionError on double approve, got %v", err)
	}
	if transErr.Current != entity.RequestStatusApproved {
		t.Fatalf("expected current approved, got %q", transErr.Current)
	}

	if _, err := svc.Reject(ctx, created.ID, "admin-1", "cancelled"); err != nil {
		t.Fatalf("reject approved: %v", err)
	}

	// Terminal states are final.
	if _, err := svc.Approve(ctx, created.ID, "admin-1", ""); !errors.As(err, &transErr) {
		t.Fatalf("expected InvalidTransitionError after rejection, got %v", err)
	}
	if _, err := svc.Fulfill(ctx, created.ID, "admin-1", "", ""); !errors.As(err, &transErr) {
		t.Fatalf("expected InvalidTransitionError after rejection, got %v", err)
	}
}

func TestRequestDoubleFulfillRace(t *testing.T) {
	svc, repos, db := setupRequestTest(t)
	ctx := context.Background()

	testutil.SeedItem(t, db, "item-001", "SKU-001", "Fertilizer A", 100)

	created, err := svc.Create(ctx, CreateRequestReq{ItemID: "item-001", RequestedQuantity: 50}, "staff-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(ctx, created.ID, "admin-1", ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = svc.Fulfill(ctx, created.ID, fmt.Sprintf("admin-%d", n), "", "")
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		var transErr *InvalidTransitionError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &transErr):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflict != 1 {
		t.Fatalf("expected exactly one winner, got ok=%d conflict=%d", ok, conflict)
	}

	// Stock credited exactly once.
	item, _ := repos.Item.FindByID(ctx, "item-001")
	if item.CurrentQuantity != 150 {
		t.Fatalf("expected 150, got %v", item.CurrentQuantity)
	}
	entries, _ := repos.Log.FindByItemAsc(ctx, "item-001")
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(entries))
	}
}

func TestRequestDoubleApproveRace(t *testing.T) {
	svc, repos, db := setupRequestTest(t)
	ctx := context.Background()

	testutil.SeedItem(t, db, "item-001", "SKU-001", "Fertilizer A", 100)

	created, err := svc.Create(ctx, CreateRequestReq{ItemID: "item-001", RequestedQuantity: 50}, "staff-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = svc.Approve(ctx, created.ID, fmt.Sprintf("admin-%d", n), "")
		}(i)
	}
	wg.Wait()

	winner := -1
	var conflict int
	for n, err := range errs {
		var transErr *InvalidTransitionError
		switch {
		case err == nil:
			winner = n
		case errors.As(err, &transErr):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winner < 0 || conflict != 1 {
		t.Fatalf("expected exactly one winner, got winner=%d conflict=%d", winner, conflict)
	}

	// The loser must not have overwritten the approval stamp.
	reloaded, _ := repos.Request.FindByID(ctx, created.ID)
	if reloaded.Status != entity.RequestStatusApproved {
		t.Fatalf("expected approved, got %q", reloaded.Status)
	}
	if reloaded.ApprovedBy == nil || *reloaded.ApprovedBy != fmt.Sprintf("admin-%d", winner) {
		t.Fatalf("approved_by does not match the winner: %+v", reloaded.ApprovedBy)
	}
	if reloaded.ApprovedDate == nil {
		t.Fatal("approved_date not recorded")
	}
}

func TestRequestFulfillRetryAfterFailedAttempt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	rdb := testutil.SetupTestRedis(t)
	repos := repository.NewRepositories(db)
	cfg := testutil.TestConfig()
	logger := zap.NewNop()
	ledger := NewLedgerService(db, repos, cfg, logger)
	svc := NewRequestService(db, repos, ledger, rdb, cfg, logger)
	ctx := context.Background()

	item := testutil.SeedItem(t, db, "item-001", "SKU-001", "Fertilizer A", 100)

	created, err := svc.Create(ctx, CreateRequestReq{ItemID: item.ID, RequestedQuantity: 50}, "staff-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(ctx, created.ID, "admin-1", ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	idemKey := fmt.Sprintf("retry-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		rdb.Del(context.Background(), "farmops:fulfill:"+idemKey)
	})

	// Deactivate the item so the first attempt fails inside the transaction.
	db.Model(&entity.InventoryItem{}).Where("id = ?", item.ID).Update("status", entity.ItemStatusInactive)
	var vErr *ValidationError
	if _, err := svc.Fulfill(ctx, created.ID, "admin-1", "", idemKey); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for inactive item, got %v", err)
	}

	// The failed attempt must not have consumed the key; the retry performs
	// the fulfillment.
	db.Model(&entity.InventoryItem{}).Where("id = ?", item.ID).Update("status", entity.ItemStatusActive)
	fulfilled, err := svc.Fulfill(ctx, created.ID, "admin-1", "", idemKey)
	if err != nil {
		t.Fatalf("retry fulfill: %v", err)
	}
	if fulfilled.Status != entity.RequestStatusFulfilled {
		t.Fatalf("expected fulfilled, got %q", fulfilled.Status)
	}

	// A further replay with the same key returns current state without
	// reapplying.
	replayed, err := svc.Fulfill(ctx, created.ID, "admin-1", "", idemKey)
	if err != nil {
		t.Fatalf("replay fulfill: %v", err)
	}
	if replayed.Status != entity.RequestStatusFulfilled {
		t.Fatalf("expected fulfilled on replay, got %q", replayed.Status)
	}

	loaded, _ := repos.Item.FindByID(ctx, item.ID)
	if loaded.CurrentQuantity != 150 {
		t.Fatalf("expected 150, got %v", loaded.CurrentQuantity)
	}
	entries, _ := repos.Log.FindByItemAsc(ctx, item.ID)
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(entries))
	}
}

func TestRequestFulfillInactiveItem(t *testing.T) {
	svc, repos, db := setupRequestTest(t)
	ctx := context.Background()

	item := testutil.SeedItem(t, db, "item-001", "SKU-001", "Fertilizer A", 100)

	created, err := svc.Create(ctx, CreateRequestReq{ItemID: item.ID, RequestedQuantity: 10}, "staff-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(ctx, created.ID, "admin-1", ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	db.Model(&entity.InventoryItem{}).Where("id = ?", item.ID).Update("status", entity.ItemStatusInactive)

	var vErr *ValidationError
	if _, err := svc.Fulfill(ctx, created.ID, "admin-1", "", ""); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for inactive item, got %v", err)
	}

	// The request stays approved so it can be fulfilled after reactivation.
	reloaded, _ := repos.Request.FindByID(ctx, created.ID)
	if reloaded.Status != entity.RequestStatusApproved {
		t.Fatalf("expected request to stay approved, got %q", reloaded.Status)
	}
	loaded, _ := repos.Item.FindByID(ctx, item.ID)
	if loaded.CurrentQuantity != 100 {
		t.Fatalf("stock must not move, got %v", loaded.CurrentQuantity)
	}
}

func TestRequestNotesAccumulate(t *testing.T) {
	svc, repos, db := setupRequestTest(t)
	ctx := context.Background()

	testutil.SeedItem(t, db, "item-001", "SKU-001", "Fertilizer A", 100)

	created, err := svc.Create(ctx, CreateRequestReq{ItemID: "item-001", RequestedQuantity: 10, Notes: "running low"}, "staff-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(ctx, created.ID, "admin-1", "go ahead"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.Fulfill(ctx, created.ID, "admin-1", "done", ""); err != nil {
		t.Fatalf("fulfill: %v", err)
	}

	reloaded, _ := repos.Request.FindByID(ctx, created.ID)
	for _, want := range []string{"running low", "go ahead", "done"} {
		if !strings.Contains(reloaded.AdminNotes, want) {
			t.Fatalf("notes missing %q: %q", want, reloaded.AdminNotes)
		}
	}
	if len(strings.Split(reloaded.AdminNotes, "\n")) != 3 {
		t.Fatalf("expected 3 note lines, got %q", reloaded.AdminNotes)
	}
}
