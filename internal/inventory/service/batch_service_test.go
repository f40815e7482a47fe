package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/croftlabs/farmops/internal/inventory/entity"
	"github.com/croftlabs/farmops/internal/inventory/repository"
	"github.com/croftlabs/farmops/internal/inventory/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupBatchTest(t *testing.T) (*BatchService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewBatchService(db, repos, nil, testutil.TestConfig(), zap.NewNop())
	return svc, db
}

func daysFromNow(d int) *time.Time {
	ts := time.Now().AddDate(0, 0, d)
	return &ts
}

func TestBatchReceive(t *testing.T) {
	svc, db := setupBatchTest(t)
	ctx := context.Background()

	testutil.SeedItem(t, db, "item-001", "SKU-001", "Layer Feed", 0)

	batch, err := svc.Receive(ctx, ReceiveBatchReq{
		ItemID:     "item-001",
		Quantity:   200,
		ExpiryDate: daysFromNow(90),
		Notes:      "delivery from truck 4",
	}, "user-1")
	if err != nil {
		t.Fatalf("receive: %v", err)
	}

	year := time.Now().Format("2006")
	if batch.BatchNumber != fmt.Sprintf("BCH-%s-0001", year) {
		t.Fatalf("unexpected batch number %q", batch.BatchNumber)
	}
	if batch.Status != entity.BatchStatusActive {
		t.Fatalf("expected active, got %q", batch.Status)
	}
	if batch.ExpiryStatus != "valid" {
		t.Fatalf("expected valid classification, got %q", batch.ExpiryStatus)
	}

	notes, err := svc.History(ctx, batch.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 history note, got %d", len(notes))
	}
	if notes[0].Action != entity.BatchNoteStatusChange || notes[0].ToStatus != entity.BatchStatusActive {
		t.Fatalf("unexpected initial note: %+v", notes[0])
	}
	if notes[0].Content != "delivery from truck 4" {
		t.Fatalf("unexpected note content %q", notes[0].Content)
	}
}

func TestBatchReceiveValidation(t *testing.T) {
	svc, db := setupBatchTest(t)
	ctx := context.Background()

	item := testutil.SeedItem(t, db, "item-001", "SKU-001", "Layer Feed", 0)

	var vErr *ValidationError
	if _, err := svc.Receive(ctx, ReceiveBatchReq{ItemID: item.ID, Quantity: 0}, "u"); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for quantity, got %v", err)
	}

	mfg := time.Now()
	exp := mfg.AddDate(0, 0, -1)
	if _, err := svc.Receive(ctx, ReceiveBatchReq{
		ItemID:            item.ID,
		Quantity:          10,
		ManufacturingDate: &mfg,
		ExpiryDate:        &exp,
	}, "u"); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for expiry before manufacturing, got %v", err)
	}

	unknown := "no-such-supplier"
	if _, err := svc.Receive(ctx, ReceiveBatchReq{ItemID: item.ID, Quantity: 10, SupplierID: &unknown}, "u"); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for unknown supplier, got %v", err)
	}
}

func TestBatchSetStatusAppendsHistory(t *testing.T) {
	svc, db := setupBatchTest(t)
	ctx := context.Background()

	testutil.SeedItem(t, db, "item-001", "SKU-001", "Layer Feed", 0)
	batch, err := svc.Receive(ctx, ReceiveBatchReq{ItemID: "item-001", Quantity: 50}, "user-1")
	if err != nil {
		t.Fatalf("receive: %v", err)
	}

	updated, err := svc.SetStatus(ctx, batch.ID, entity.BatchStatusQuarantine, "mold suspected", "user-2")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != entity.BatchStatusQuarantine {
		t.Fatalf("expected quarantine, got %q", updated.Status)
	}

	// Any-to-any is allowed, including back to a previous status.
	if _, err := svc.SetStatus(ctx, batch.ID, entity.BatchStatusActive, "cleared by inspection", "user-2"); err != nil {
		t.Fatalf("set status back: %v", err)
	}

	// Re-applying the current status still records the note.
	if _, err := svc.SetStatus(ctx, batch.ID, entity.BatchStatusActive, "spot check", "user-2"); err != nil {
		t.Fatalf("same-status note: %v", err)
	}

	var vErr *ValidationError
	if _, err := svc.SetStatus(ctx, batch.ID, "vanished", "", "user-2"); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}

	notes, err := svc.History(ctx, batch.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(notes) != 4 {
		t.Fatalf("expected 4 history notes, got %d", len(notes))
	}
	second := notes[1]
	if second.FromStatus != entity.BatchStatusActive || second.ToStatus != entity.BatchStatusQuarantine {
		t.Fatalf("unexpected transition note: %+v", second)
	}
	if second.Content != "mold suspected" || second.OperatorID != "user-2" {
		t.Fatalf("unexpected note detail: %+v", second)
	}
}

func TestBatchExpiryClassification(t *testing.T) {
	svc, db := setupBatchTest(t)
	ctx := context.Background()

	testutil.SeedItem(t, db, "item-001", "SKU-001", "Layer Feed", 0)

	cases := []struct {
		expiry *time.Time
		want   string
	}{
		{nil, "valid"},
		{daysFromNow(90), "valid"},
		{daysFromNow(10), "expiring_soon"},
		{daysFromNow(-1), "expired"},
	}
	for _, tc := range cases {
		batch, err := svc.Receive(ctx, ReceiveBatchReq{ItemID: "item-001", Quantity: 10, ExpiryDate: tc.expiry}, "u")
		if err != nil {
			t.Fatalf("receive: %v", err)
		}
		if batch.ExpiryStatus != tc.want {
			t.Fatalf("expiry %v: expected %q, got %q", tc.expiry, tc.want, batch.ExpiryStatus)
		}
	}

	// Classification filters the listing without being stored anywhere.
	views, total, err := svc.List(ctx, BatchListParams{
		BatchListParams: repository.BatchListParams{Page: 1, PageSize: 20},
		ExpiryStatus:    "expired",
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(views) != 1 {
		t.Fatalf("expected 1 expired batch, got total=%d len=%d", total, len(views))
	}
	if views[0].ExpiryStatus != "expired" {
		t.Fatalf("unexpected classification %q", views[0].ExpiryStatus)
	}
}

func TestBatchExpiryFilterSpansPages(t *testing.T) {
	svc, db := setupBatchTest(t)
	ctx := context.Background()

	testutil.SeedItem(t, db, "item-001", "SKU-001", "Layer Feed", 0)

	// The expired batches are received first, so the received_date DESC
	// ordering sorts them past the first page of an unfiltered listing.
	for i := 0; i < 5; i++ {
		if _, err := svc.Receive(ctx, ReceiveBatchReq{ItemID: "item-001", Quantity: 10, ExpiryDate: daysFromNow(-2)}, "u"); err != nil {
			t.Fatalf("receive expired: %v", err)
		}
	}
	for i := 0; i < 20; i++ {
		if _, err := svc.Receive(ctx, ReceiveBatchReq{ItemID: "item-001", Quantity: 10, ExpiryDate: daysFromNow(120)}, "u"); err != nil {
			t.Fatalf("receive valid: %v", err)
		}
	}

	views, total, err := svc.List(ctx, BatchListParams{
		BatchListParams: repository.BatchListParams{Page: 1, PageSize: 20},
		ExpiryStatus:    "expired",
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 || len(views) != 5 {
		t.Fatalf("expected all 5 expired batches on page 1, got total=%d len=%d", total, len(views))
	}
	for _, v := range views {
		if v.ExpiryStatus != "expired" {
			t.Fatalf("unexpected classification %q", v.ExpiryStatus)
		}
	}

	views, total, err = svc.List(ctx, BatchListParams{
		BatchListParams: repository.BatchListParams{Page: 2, PageSize: 20},
		ExpiryStatus:    "expired",
	})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if total != 5 || len(views) != 0 {
		t.Fatalf("expected empty second page with total 5, got total=%d len=%d", total, len(views))
	}

	var vErr *ValidationError
	if _, _, err := svc.List(ctx, BatchListParams{
		BatchListParams: repository.BatchListParams{Page: 1, PageSize: 20},
		ExpiryStatus:    "fresh",
	}); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for unknown classification, got %v", err)
	}
}
