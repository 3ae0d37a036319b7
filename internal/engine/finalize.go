// Package engine implements the bill cost-allocation algorithm: it turns a
// bill's line items, per-item share specs and tax/tip/discount policies into
// per-person amounts that sum to the bill total to the cent.
//
// The computation runs in three phases. Share resolution converts each line
// item's weights into raw fractional entitlements at full decimal precision.
// Aggregation sums those entitlements per participant, rounds once, and
// redistributes the rounding drift so the rounded shares sum exactly.
// Composition then applies tax, tip and coupon policy on top of the rounded
// subtotals, reconciling each pool independently against its bill-level
// figure.
//
// Finalize is a pure function of the bill snapshot: no I/O, no globals, no
// mutation of its input. Calling it twice on unchanged input yields
// identical output. Distinct bills may be finalized concurrently; a single
// bill must not be mutated while a finalize call is running on it.
package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tallysplit/tally/internal/models"
	"github.com/tallysplit/tally/internal/money"
)

// Result is the finalized view of a bill: headline figures plus one
// PersonCost per participant, ordered by participant id. All values are
// cent-exact.
type Result struct {
	// SubTotal is the sum of all participants' rounded subtotal shares:
	// non-comped, non-coupon items only.
	SubTotal decimal.Decimal

	// Tax is the bill-level tax, computed on the coupon-reduced subtotal
	// unless the bill applies its coupon after tax.
	Tax decimal.Decimal

	// Tip is the bill-level tip. The tip base is the subtotal (plus tax
	// when TipOnTax) and is never reduced by a discount.
	Tip decimal.Decimal

	// CouponAmount is the rounded magnitude of all coupon (negative) items,
	// before any overflow capping.
	CouponAmount decimal.Decimal

	// CouponAmountAfterTax is how much of the discount effectively lands
	// post-tax: the coupon grossed up by the tax rate when CouponAfterTax,
	// otherwise the coupon itself.
	CouponAmountAfterTax decimal.Decimal

	// TotalAmount is the bill grand total. PersonCost amounts sum to it
	// exactly.
	TotalAmount decimal.Decimal

	// UnallocatedAmount is signed bill value attributable to no participant:
	// items whose share spec sums to zero, minus any coupon value that could
	// not be applied because it exceeded the subtotal. Nonzero is legitimate
	// in those two cases and diagnostic otherwise.
	UnallocatedAmount decimal.Decimal

	// RoundingErrorAmount is residual drift left after redistribution. It is
	// zero in all normal cases; nonzero signals a defect and is reported
	// here rather than swallowed.
	RoundingErrorAmount decimal.Decimal

	// CompedTotal is the magnitude of comped items, tracked for display.
	// Comped amounts appear nowhere else in the result.
	CompedTotal decimal.Decimal

	// PersonCosts holds each participant's final amount, ordered by
	// participant id. Rebuilt from scratch on every finalize.
	PersonCosts []models.PersonCost
}

// Finalize computes every derived figure for the bill. It is the sole entry
// point of the engine.
//
// The per-person amount is the participant's rounded subtotal share, plus
// their pro-rata tax and tip shares, minus their coupon deduction. Each of
// those four pools is reconciled independently to its bill-level value, so
// the amounts sum to TotalAmount with zero tolerance.
//
// It returns a *ValidationError (share spec length mismatch, negative
// weight, duplicate participant id, negative rate) before doing any
// arithmetic; no partial result is ever produced.
func Finalize(bill *models.Bill) (*Result, error) {
	if err := validateBill(bill); err != nil {
		return nil, err
	}

	raw := resolveShares(bill)
	residual := decimal.Zero

	subShares, subTotal, res := reconcile(raw.subtotal)
	residual = residual.Add(res)

	couponShares, couponTotal, res := reconcile(raw.coupon)
	residual = residual.Add(res)

	// A coupon larger than the whole subtotal is not pushed into negative
	// territory across everyone: the applied discount is capped at the
	// subtotal and the excess is recorded as (negative) unallocated value.
	// Individual shares are only scaled here, never floored; one person's
	// amount may still go negative when the coupon's own share spec
	// concentrates the discount on them.
	unallocated := raw.unallocated
	appliedShares, applied := couponShares, couponTotal
	if couponTotal.GreaterThan(subTotal) {
		appliedShares, applied, res = reconcile(scale(raw.coupon, subTotal, couponTotal))
		residual = residual.Add(res)
		unallocated = unallocated.Sub(couponTotal.Sub(subTotal))
	}

	// Tax pool. When the coupon applies before tax it shrinks each
	// participant's taxable base; after tax, the full subtotal is taxed.
	n := len(bill.Participants)
	rawTax := make([]decimal.Decimal, n)
	for i := range rawTax {
		base := subShares[i]
		if !bill.CouponAfterTax {
			base = base.Sub(appliedShares[i])
		}
		rawTax[i] = base.Mul(bill.TaxRate)
	}
	taxShares, tax, res := reconcile(rawTax)
	residual = residual.Add(res)

	// Tip pool. Tip is computed before the discount is subtracted; a
	// coupon never shrinks the tip.
	rawTip := make([]decimal.Decimal, n)
	for i := range rawTip {
		base := subShares[i]
		if bill.TipOnTax {
			base = base.Add(taxShares[i])
		}
		rawTip[i] = base.Mul(bill.TipRate)
	}
	tipShares, tip, res := reconcile(rawTip)
	residual = residual.Add(res)

	// Coupon deduction pool. With CouponAfterTax the discount lands on the
	// post-tax amount, so each share is grossed up by the tax rate.
	couponAfterTax := couponTotal
	deductShares, deducted := appliedShares, applied
	if bill.CouponAfterTax {
		grossUp := decimal.New(1, 0).Add(bill.TaxRate)
		couponAfterTax = money.RoundCents(couponTotal.Mul(grossUp))
		rawDeduct := make([]decimal.Decimal, n)
		for i := range rawDeduct {
			rawDeduct[i] = appliedShares[i].Mul(grossUp)
		}
		deductShares, deducted, res = reconcile(rawDeduct)
		residual = residual.Add(res)
	}

	result := &Result{
		SubTotal:             subTotal,
		Tax:                  tax,
		Tip:                  tip,
		CouponAmount:         couponTotal,
		CouponAmountAfterTax: couponAfterTax,
		TotalAmount:          subTotal.Add(tax).Add(tip).Sub(deducted),
		UnallocatedAmount:    unallocated,
		RoundingErrorAmount:  residual,
		CompedTotal:          raw.comped,
		PersonCosts:          make([]models.PersonCost, n),
	}

	for i, p := range bill.Participants {
		result.PersonCosts[i] = models.PersonCost{
			Participant: p,
			Amount:      subShares[i].Add(taxShares[i]).Add(tipShares[i]).Sub(deductShares[i]),
		}
	}
	sort.Slice(result.PersonCosts, func(a, b int) bool {
		return result.PersonCosts[a].Participant.ID < result.PersonCosts[b].Participant.ID
	})
	return result, nil
}
