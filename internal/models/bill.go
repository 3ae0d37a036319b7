package models

import "github.com/shopspring/decimal"

// Participant is a person taking part in a bill split.
//
// Participants are referenced by position: the first participant corresponds
// to the first weight of every ShareSpec on the bill, the second to the
// second weight, and so on.
type Participant struct {
	// ID is the 1-based identifier, unique within a bill. It doubles as the
	// participant's ShareSpec slot (ID 1 = leftmost weight).
	ID int

	// Name is the display name (e.g. "Alice").
	Name string
}

// LineItem is one charge on a bill.
type LineItem struct {
	// ID is the unique identifier for the item (UUID format). Assigned by
	// the store; the engine ignores it.
	ID string

	// Description is the printed name of the charge (e.g. "Pad Thai").
	Description string

	// Amount is the exact charge in currency units. Negative amounts are
	// coupons/discounts and reduce what diners owe.
	Amount decimal.Decimal

	// Shares divides the item between participants. Must have exactly one
	// weight per bill participant when the bill is finalized.
	Shares ShareSpec

	// Comped marks an item diners are not charged for. A comped amount is
	// excluded from every participant's entitlement and from the taxable
	// base, but its magnitude is still tracked for display.
	Comped bool
}

// Bill is a restaurant bill: who is splitting it, what is on it, and which
// tax/tip/discount policies apply.
//
// A Bill is pure input state. Totals and per-person amounts are derived by
// engine.Finalize and returned separately; nothing here is mutated by a
// finalize call.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// Venue is the restaurant name or other free-form origin note. It plays
	// no part in allocation.
	Venue string

	// TaxRate is the tax as a decimal fraction, e.g. 0.0775 for 7.75%.
	TaxRate decimal.Decimal

	// TipRate is the tip as a decimal fraction, e.g. 0.20 for 20%.
	TipRate decimal.Decimal

	// TipOnTax selects the tip base: false = tip on the pre-tax subtotal,
	// true = tip on the tax-inclusive amount. Tip is always computed before
	// any discount is subtracted.
	TipOnTax bool

	// CouponAfterTax selects the discount policy: false = the coupon reduces
	// the taxable base, true = the coupon is applied to the post-tax amount
	// (and is itself grossed up by the tax rate when deducted).
	CouponAfterTax bool

	// Participants is the ordered list of people splitting the bill.
	// Order defines ShareSpec slots; IDs must be unique.
	Participants []Participant

	// Items is the ordered list of charges.
	Items []LineItem

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64
}

// PersonCost is one participant's final share of a finalized bill.
// A fresh slice of these is produced on every finalize pass.
type PersonCost struct {
	// Participant identifies who owes the amount.
	Participant Participant

	// Amount is the final exact amount owed. It can be negative when a
	// coupon's share spec hands a participant more discount than their
	// subtotal; that participant is owed money.
	Amount decimal.Decimal
}
