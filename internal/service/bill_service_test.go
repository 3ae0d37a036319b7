package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tallysplit/tally/internal/models"
	"github.com/tallysplit/tally/internal/storage/sqlite"
)

func newTestService(t *testing.T) *BillService {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "tally-service-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewBillService(store)
}

func dinnerBill() *models.Bill {
	return &models.Bill{
		Venue:   "Luigi's",
		TaxRate: decimal.RequireFromString("0.10"),
		TipRate: decimal.RequireFromString("0.20"),
		Participants: []models.Participant{
			{Name: "Alice"}, {Name: "Bob"}, {Name: "Charlie"},
		},
		Items: []models.LineItem{
			{Description: "Family platter", Amount: decimal.RequireFromString("45"), Shares: models.ShareSpec{1, 1, 1}},
			{Description: "Wine", Amount: decimal.RequireFromString("10"), Shares: models.ShareSpec{1, 0, 1}},
			{Description: "Coupon", Amount: decimal.RequireFromString("-3"), Shares: models.ShareSpec{2, 0, 1}},
		},
	}
}

func TestCreateAndFinalizeBill(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	bill := dinnerBill()
	if err := svc.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	if bill.ID == "" {
		t.Fatal("expected bill ID to be assigned")
	}
	for i, p := range bill.Participants {
		if p.ID != i+1 {
			t.Errorf("participant %d assigned id %d, want %d", i, p.ID, i+1)
		}
	}

	_, result, err := svc.FinalizeBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("FinalizeBill failed: %v", err)
	}
	if !result.SubTotal.Equal(decimal.RequireFromString("55.00")) {
		t.Errorf("SubTotal = %s, want 55.00", result.SubTotal)
	}

	sum := decimal.Zero
	for _, pc := range result.PersonCosts {
		sum = sum.Add(pc.Amount)
	}
	if !sum.Equal(result.TotalAmount) {
		t.Errorf("sum of amounts = %s, TotalAmount = %s", sum, result.TotalAmount)
	}
}

func TestFinalizeBillIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	bill := dinnerBill()
	if err := svc.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	_, first, err := svc.FinalizeBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("FinalizeBill failed: %v", err)
	}
	_, second, err := svc.FinalizeBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("second FinalizeBill failed: %v", err)
	}

	if !first.TotalAmount.Equal(second.TotalAmount) {
		t.Errorf("TotalAmount changed between runs: %s -> %s", first.TotalAmount, second.TotalAmount)
	}
	for i := range first.PersonCosts {
		if !first.PersonCosts[i].Amount.Equal(second.PersonCosts[i].Amount) {
			t.Errorf("participant %d amount changed between runs", i+1)
		}
	}
}

func TestCreateBillRejectsMalformedShares(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	bill := dinnerBill()
	bill.Items[1].Shares = models.ShareSpec{1, 0} // two weights, three participants
	if err := svc.CreateBill(ctx, bill); err == nil {
		t.Fatal("expected CreateBill to reject a mismatched share spec")
	}

	if bill.ID != "" {
		if _, err := svc.GetBill(ctx, bill.ID); err == nil {
			t.Error("rejected bill must not be persisted")
		}
	}
}

func TestCreateBillRequiresParticipants(t *testing.T) {
	svc := newTestService(t)
	bill := dinnerBill()
	bill.Participants = nil
	if err := svc.CreateBill(context.Background(), bill); err == nil {
		t.Fatal("expected CreateBill to reject a bill with no participants")
	}
}

func TestUpdateBillRevalidates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	bill := dinnerBill()
	if err := svc.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	bill.TaxRate = decimal.RequireFromString("-0.10")
	if err := svc.UpdateBill(ctx, bill); err == nil {
		t.Fatal("expected UpdateBill to reject a negative tax rate")
	}

	stored, err := svc.GetBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if stored.TaxRate.IsNegative() {
		t.Error("rejected update must not change stored state")
	}
}
