// Package storage provides abstractions for persistent bill storage.
package storage

import (
	"context"

	"github.com/tallysplit/tally/internal/models"
)

// BillSummary is the listing view of a stored bill: enough to pick one
// without loading its items.
type BillSummary struct {
	ID           string
	Venue        string
	Participants int
	Items        int
	CreatedAt    int64
}

// Store defines the interface for bill storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer. The allocation engine never
// touches a Store; it only sees Bill values, so the persistence format
// stays a collaborator concern.
type Store interface {
	// CreateBill persists a new bill and returns the assigned ID.
	// The bill.ID field will be populated by the store.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill by its ID, including participants and line
	// items. Returns an error if the bill is not found.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// UpdateBill replaces an existing bill's contents.
	// Returns an error if the bill is not found.
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// ListBills returns summaries of all stored bills, newest first.
	ListBills(ctx context.Context) ([]BillSummary, error)

	// Close releases any resources held by the store.
	Close() error
}
