package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tallysplit/tally/internal/money"
)

// reconcile converts a pool of raw full-precision values into cent-exact
// amounts that sum exactly to the rounded pool total.
//
// Each value is rounded once (half away from zero). The drift between the
// rounded sum and the rounded total (at most half a cent per value) is
// cancelled by moving single cents, largest rounding remainder first, ties
// broken by smaller rounded amount and then by slot order. Only slots that
// actually lost or gained something in rounding are touched, so a
// participant with no share never picks up a stray cent.
//
// The returned residual is whatever drift could not be cancelled. It is zero
// for every input this engine produces; a nonzero residual is surfaced as a
// diagnostic by the caller rather than swallowed.
func reconcile(raw []decimal.Decimal) (rounded []decimal.Decimal, total decimal.Decimal, residual decimal.Decimal) {
	rounded = make([]decimal.Decimal, len(raw))
	rawSum := decimal.Zero
	roundedSum := decimal.Zero
	for i, r := range raw {
		rawSum = rawSum.Add(r)
		rounded[i] = money.RoundCents(r)
		roundedSum = roundedSum.Add(rounded[i])
	}
	total = money.RoundCents(rawSum)

	diff := total.Sub(roundedSum)
	if diff.IsZero() {
		return rounded, total, decimal.Zero
	}

	step := money.Cent
	if diff.IsNegative() {
		step = money.Cent.Neg()
	}

	// Slots whose rounding moved them off the raw value, i.e. the only
	// legitimate recipients of a correction cent.
	type candidate struct {
		idx       int
		remainder decimal.Decimal // raw - rounded
	}
	var candidates []candidate
	for i, r := range raw {
		rem := r.Sub(rounded[i])
		if !rem.IsZero() {
			candidates = append(candidates, candidate{idx: i, remainder: rem})
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if !ca.remainder.Equal(cb.remainder) {
			if step.IsPositive() {
				// Adding cents: the most under-rounded slot goes first.
				return ca.remainder.GreaterThan(cb.remainder)
			}
			// Removing cents: the most over-rounded slot goes first.
			return ca.remainder.LessThan(cb.remainder)
		}
		ra, rb := rounded[ca.idx], rounded[cb.idx]
		if !ra.Equal(rb) {
			return ra.LessThan(rb)
		}
		return ca.idx < cb.idx
	})

	cents := int(diff.Abs().Div(money.Cent).IntPart())
	for k := 0; k < cents && k < len(candidates); k++ {
		i := candidates[k].idx
		rounded[i] = rounded[i].Add(step)
	}

	adjustedSum := decimal.Zero
	for _, v := range rounded {
		adjustedSum = adjustedSum.Add(v)
	}
	return rounded, total, total.Sub(adjustedSum)
}

// scale multiplies every raw value by num/den at full precision. Used to
// shrink an overflowing coupon pool down to the subtotal before it is
// reconciled.
func scale(raw []decimal.Decimal, num, den decimal.Decimal) []decimal.Decimal {
	scaled := make([]decimal.Decimal, len(raw))
	for i, r := range raw {
		scaled[i] = r.Mul(num).Div(den)
	}
	return scaled
}
