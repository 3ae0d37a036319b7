package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tallysplit/tally/internal/models"
)

// ValidationError reports malformed finalize input: a share spec that does
// not match the participant list, a negative weight, or a negative rate.
// It is returned before any allocation work happens, so a failed finalize
// never exposes partial results.
type ValidationError struct {
	// Item is the 1-based position of the offending line item, or 0 when
	// the problem is bill-level (rates, participants).
	Item   int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Item > 0 {
		return fmt.Sprintf("invalid bill: item %d: %s", e.Item, e.Reason)
	}
	return fmt.Sprintf("invalid bill: %s", e.Reason)
}

// validateBill checks everything Finalize relies on, up front.
func validateBill(bill *models.Bill) error {
	if bill.TaxRate.IsNegative() {
		return &ValidationError{Reason: fmt.Sprintf("tax rate %s is negative", bill.TaxRate)}
	}
	if bill.TipRate.IsNegative() {
		return &ValidationError{Reason: fmt.Sprintf("tip rate %s is negative", bill.TipRate)}
	}

	seen := make(map[int]bool, len(bill.Participants))
	for _, p := range bill.Participants {
		if p.ID < 1 {
			return &ValidationError{Reason: fmt.Sprintf("participant %q has non-positive id %d", p.Name, p.ID)}
		}
		if seen[p.ID] {
			return &ValidationError{Reason: fmt.Sprintf("duplicate participant id %d", p.ID)}
		}
		seen[p.ID] = true
	}

	for i, item := range bill.Items {
		if err := item.Shares.Validate(len(bill.Participants)); err != nil {
			return &ValidationError{Item: i + 1, Reason: err.Error()}
		}
	}
	return nil
}

// pools holds the raw, full-precision per-participant entitlements produced
// by share resolution, before any rounding.
type pools struct {
	// subtotal[i] is participant i's raw entitlement across all positive,
	// non-comped items.
	subtotal []decimal.Decimal

	// coupon[i] is participant i's raw share of discount magnitude across
	// all negative items (stored positive).
	coupon []decimal.Decimal

	// unallocated accumulates the signed amounts of items whose share spec
	// sums to zero, value on the bill attributable to nobody.
	unallocated decimal.Decimal

	// comped accumulates the magnitude of comped items, which diners never
	// pay but the bill still displays.
	comped decimal.Decimal
}

// resolveShares walks the line items once and splits each amount between
// participants at full decimal precision: participant i's entitlement to an
// item is amount x weight[i] / totalWeight. Nothing is rounded here; the
// whole point is to accumulate first and round once.
func resolveShares(bill *models.Bill) pools {
	n := len(bill.Participants)
	p := pools{
		subtotal:    make([]decimal.Decimal, n),
		coupon:      make([]decimal.Decimal, n),
		unallocated: decimal.Zero,
		comped:      decimal.Zero,
	}

	for _, item := range bill.Items {
		if item.Comped {
			p.comped = p.comped.Add(item.Amount.Abs())
			continue
		}

		weight := item.Shares.Total()
		if weight == 0 {
			p.unallocated = p.unallocated.Add(item.Amount)
			continue
		}

		total := decimal.NewFromInt(int64(weight))
		for i, w := range item.Shares {
			if w == 0 {
				continue
			}
			share := item.Amount.Mul(decimal.NewFromInt(int64(w))).Div(total)
			if item.Amount.IsNegative() {
				p.coupon[i] = p.coupon[i].Add(share.Neg())
			} else {
				p.subtotal[i] = p.subtotal[i].Add(share)
			}
		}
	}
	return p
}
