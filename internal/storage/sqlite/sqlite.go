// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/tallysplit/tally/internal/models"
	"github.com/tallysplit/tally/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateBill persists a new bill to the database.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertBill(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateBill replaces a bill's contents. Participants and items are
// rewritten wholesale; a bill is small enough that diffing is not worth it.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", bill.ID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bill not found: %s", bill.ID)
	}

	if err := insertBill(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertBill writes the bill row plus its participants and line items.
func insertBill(ctx context.Context, tx *sql.Tx, bill *models.Bill) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO bills (id, venue, tax_rate, tip_rate, tip_on_tax, coupon_after_tax, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		bill.ID, bill.Venue, bill.TaxRate.String(), bill.TipRate.String(),
		boolToInt(bill.TipOnTax), boolToInt(bill.CouponAfterTax), bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for _, p := range bill.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO participants (bill_id, pid, name) VALUES (?, ?, ?)",
			bill.ID, p.ID, p.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO line_items (id, bill_id, position, description, amount, shares, comped) VALUES (?, ?, ?, ?, ?, ?, ?)",
			item.ID, bill.ID, i, item.Description, item.Amount.String(),
			item.Shares.String(), boolToInt(item.Comped),
		)
		if err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}
	}
	return nil
}

// GetBill retrieves a bill by ID, including participants and line items.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	var taxRate, tipRate string
	var tipOnTax, couponAfterTax int
	err := s.db.QueryRowContext(ctx,
		"SELECT id, venue, tax_rate, tip_rate, tip_on_tax, coupon_after_tax, created_at FROM bills WHERE id = ?",
		billID,
	).Scan(&bill.ID, &bill.Venue, &taxRate, &tipRate, &tipOnTax, &couponAfterTax, &bill.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bill not found: %s", billID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	if bill.TaxRate, err = decimal.NewFromString(taxRate); err != nil {
		return nil, fmt.Errorf("failed to parse stored tax rate: %w", err)
	}
	if bill.TipRate, err = decimal.NewFromString(tipRate); err != nil {
		return nil, fmt.Errorf("failed to parse stored tip rate: %w", err)
	}
	bill.TipOnTax = tipOnTax != 0
	bill.CouponAfterTax = couponAfterTax != 0

	rows, err := s.db.QueryContext(ctx,
		"SELECT pid, name FROM participants WHERE bill_id = ? ORDER BY pid",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		bill.Participants = append(bill.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, description, amount, shares, comped FROM line_items WHERE bill_id = ? ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.LineItem
		var amount, shares string
		var comped int
		if err := itemRows.Scan(&item.ID, &item.Description, &amount, &shares, &comped); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		if item.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse stored amount: %w", err)
		}
		if item.Shares, err = models.ParseShareSpec(shares); err != nil {
			return nil, fmt.Errorf("failed to parse stored share spec: %w", err)
		}
		item.Comped = comped != 0
		bill.Items = append(bill.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate line items: %w", err)
	}

	return bill, nil
}

// ListBills returns summaries of all stored bills, newest first.
func (s *SQLiteStore) ListBills(ctx context.Context) ([]storage.BillSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.venue, b.created_at,
		       (SELECT COUNT(*) FROM participants p WHERE p.bill_id = b.id),
		       (SELECT COUNT(*) FROM line_items i WHERE i.bill_id = b.id)
		FROM bills b
		ORDER BY b.created_at DESC, b.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var summaries []storage.BillSummary
	for rows.Next() {
		var summary storage.BillSummary
		if err := rows.Scan(&summary.ID, &summary.Venue, &summary.CreatedAt, &summary.Participants, &summary.Items); err != nil {
			return nil, fmt.Errorf("failed to scan bill summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return summaries, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
