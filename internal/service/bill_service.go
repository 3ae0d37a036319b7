// Package service orchestrates bill persistence and finalization. It sits
// between callers (the CLI today) and the storage/engine layers: storage
// holds input state, the engine derives totals, and nothing derived is ever
// written back as input.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tallysplit/tally/internal/engine"
	"github.com/tallysplit/tally/internal/models"
	"github.com/tallysplit/tally/internal/storage"
)

// BillService exposes the bill operations the rest of the system depends on.
type BillService struct {
	store storage.Store
}

// NewBillService creates a BillService with the given storage backend.
func NewBillService(store storage.Store) *BillService {
	return &BillService{store: store}
}

// CreateBill validates and persists a new bill. Participants are assigned
// sequential 1-based ids in list order if the caller left them zero, so
// share-spec slots always line up with stored participant order.
func (s *BillService) CreateBill(ctx context.Context, bill *models.Bill) error {
	if len(bill.Participants) == 0 {
		return fmt.Errorf("bill needs at least one participant")
	}
	unassigned := true
	for _, p := range bill.Participants {
		if p.ID != 0 {
			unassigned = false
			break
		}
	}
	if unassigned {
		for i := range bill.Participants {
			bill.Participants[i].ID = i + 1
		}
	}

	// Reject malformed bills before they reach disk. Finalize validates
	// without producing side effects, so it doubles as the gate here.
	if _, err := engine.Finalize(bill); err != nil {
		return fmt.Errorf("bill failed validation: %w", err)
	}

	if err := s.store.CreateBill(ctx, bill); err != nil {
		return fmt.Errorf("failed to store bill: %w", err)
	}
	slog.Info("Bill created",
		"bill_id", bill.ID,
		"venue", bill.Venue,
		"participants", len(bill.Participants),
		"items", len(bill.Items),
	)
	return nil
}

// GetBill loads a bill by id.
func (s *BillService) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	return s.store.GetBill(ctx, billID)
}

// ListBills returns summaries of stored bills, newest first.
func (s *BillService) ListBills(ctx context.Context) ([]storage.BillSummary, error) {
	return s.store.ListBills(ctx)
}

// UpdateBill validates and replaces a stored bill's contents.
func (s *BillService) UpdateBill(ctx context.Context, bill *models.Bill) error {
	if _, err := engine.Finalize(bill); err != nil {
		return fmt.Errorf("bill failed validation: %w", err)
	}
	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	slog.Info("Bill updated", "bill_id", bill.ID)
	return nil
}

// FinalizeBill loads a stored bill and computes its allocation. The result
// is derived state only; nothing is written back, so repeated calls on an
// unchanged bill return identical output.
func (s *BillService) FinalizeBill(ctx context.Context, billID string) (*models.Bill, *engine.Result, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load bill: %w", err)
	}

	result, err := engine.Finalize(bill)
	if err != nil {
		slog.Error("Finalize failed", "bill_id", billID, "error", err)
		return nil, nil, err
	}

	if !result.RoundingErrorAmount.IsZero() {
		slog.Warn("Rounding error survived redistribution",
			"bill_id", billID,
			"rounding_error", result.RoundingErrorAmount,
		)
	}
	slog.Info("Bill finalized",
		"bill_id", billID,
		"subtotal", result.SubTotal,
		"total", result.TotalAmount,
		"unallocated", result.UnallocatedAmount,
	)
	return bill, result, nil
}
