// Command tally finalizes restaurant bills: it computes each participant's
// exact share of a bill including tax, tip and coupons, with totals that
// reconcile to the cent.
//
// A bill can come from a JSON file or from the local bill store:
//
//	tally -bill dinner.json           finalize a bill file
//	tally -bill dinner.json -save     ...and persist it to the store
//	tally -id <bill-id>               finalize a stored bill
//	tally -list                       list stored bills
//
// The bill file format mirrors the data model: venue, rates, policy flags,
// participant names, and items with an amount and a share spec like "201"
// (one weight per participant, leftmost = first participant).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/tallysplit/tally/internal/engine"
	"github.com/tallysplit/tally/internal/models"
	"github.com/tallysplit/tally/internal/money"
	"github.com/tallysplit/tally/internal/service"
	"github.com/tallysplit/tally/internal/storage/sqlite"
	"github.com/tallysplit/tally/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// billFile is the JSON shape accepted by -bill. Amounts and rates are
// decimal strings so nothing passes through float64 on the way in; share
// specs use the compact encoding and are parsed exactly once, here.
type billFile struct {
	Venue          string   `json:"venue"`
	TaxRate        string   `json:"tax_rate"`
	TipRate        string   `json:"tip_rate"`
	TipOnTax       bool     `json:"tip_on_tax"`
	CouponAfterTax bool     `json:"coupon_after_tax"`
	Participants   []string `json:"participants"`
	Items          []struct {
		Description string `json:"description"`
		Amount      string `json:"amount"`
		Shares      string `json:"shares"`
		Comped      bool   `json:"comped,omitempty"`
	} `json:"items"`
}

func loadBillFile(path string) (*models.Bill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bill file: %w", err)
	}
	var bf billFile
	if err := json.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("failed to parse bill file: %w", err)
	}

	bill := &models.Bill{
		Venue:          bf.Venue,
		TipOnTax:       bf.TipOnTax,
		CouponAfterTax: bf.CouponAfterTax,
	}
	if bill.TaxRate, err = decimal.NewFromString(bf.TaxRate); err != nil {
		return nil, fmt.Errorf("invalid tax_rate: %w", err)
	}
	if bill.TipRate, err = decimal.NewFromString(bf.TipRate); err != nil {
		return nil, fmt.Errorf("invalid tip_rate: %w", err)
	}
	for i, name := range bf.Participants {
		bill.Participants = append(bill.Participants, models.Participant{ID: i + 1, Name: name})
	}
	for i, it := range bf.Items {
		amount, err := money.Parse(it.Amount)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		shares, err := models.ParseShareSpec(it.Shares)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		bill.Items = append(bill.Items, models.LineItem{
			Description: it.Description,
			Amount:      amount,
			Shares:      shares,
			Comped:      it.Comped,
		})
	}
	return bill, nil
}

func printResult(bill *models.Bill, result *engine.Result) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	defer w.Flush()

	if bill.Venue != "" {
		fmt.Fprintf(w, "%s\n\n", bill.Venue)
	}
	for _, pc := range result.PersonCosts {
		fmt.Fprintf(w, "%s\t%s\n", pc.Participant.Name, money.Format(pc.Amount))
	}
	fmt.Fprintf(w, "\t\n")
	fmt.Fprintf(w, "Subtotal\t%s\n", money.Format(result.SubTotal))
	fmt.Fprintf(w, "Tax\t%s\n", money.Format(result.Tax))
	fmt.Fprintf(w, "Tip\t%s\n", money.Format(result.Tip))
	if !result.CouponAmount.IsZero() {
		fmt.Fprintf(w, "Coupon\t-%s\n", money.Format(result.CouponAmountAfterTax))
	}
	if !result.CompedTotal.IsZero() {
		fmt.Fprintf(w, "Comped (not charged)\t%s\n", money.Format(result.CompedTotal))
	}
	if !result.UnallocatedAmount.IsZero() {
		fmt.Fprintf(w, "Unallocated\t%s\n", money.Format(result.UnallocatedAmount))
	}
	fmt.Fprintf(w, "Total\t%s\n", money.Format(result.TotalAmount))
}

func main() {
	var (
		billPath = flag.String("bill", "", "path to a bill JSON file to finalize")
		billID   = flag.String("id", "", "id of a stored bill to finalize")
		list     = flag.Bool("list", false, "list stored bills")
		save     = flag.Bool("save", false, "persist the bill file to the store")
		dbPath   = flag.String("db", getEnv("DB_PATH", "./data/bills.db"), "path to the bill database")
	)
	flag.Parse()
	logging.Setup()

	ctx := context.Background()

	needStore := *save || *billID != "" || *list
	var svc *service.BillService
	if needStore {
		store, err := sqlite.New(*dbPath)
		if err != nil {
			slog.Error("Failed to initialize storage", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		svc = service.NewBillService(store)
	}

	switch {
	case *list:
		summaries, err := svc.ListBills(ctx)
		if err != nil {
			slog.Error("Failed to list bills", "error", err)
			os.Exit(1)
		}
		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintf(w, "ID\tVENUE\tPEOPLE\tITEMS\n")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", s.ID, s.Venue, s.Participants, s.Items)
		}
		w.Flush()

	case *billID != "":
		bill, result, err := svc.FinalizeBill(ctx, *billID)
		if err != nil {
			slog.Error("Failed to finalize bill", "bill_id", *billID, "error", err)
			os.Exit(1)
		}
		printResult(bill, result)

	case *billPath != "":
		bill, err := loadBillFile(*billPath)
		if err != nil {
			slog.Error("Failed to load bill file", "path", *billPath, "error", err)
			os.Exit(1)
		}
		if *save {
			if err := svc.CreateBill(ctx, bill); err != nil {
				slog.Error("Failed to save bill", "error", err)
				os.Exit(1)
			}
			fmt.Printf("saved bill %s\n", bill.ID)
		}
		result, err := engine.Finalize(bill)
		if err != nil {
			slog.Error("Failed to finalize bill", "error", err)
			os.Exit(1)
		}
		printResult(bill, result)

	default:
		flag.Usage()
		os.Exit(2)
	}
}
