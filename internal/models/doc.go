// Package models defines the core domain models for Tally.
//
// # Models
//
//   - Bill: a restaurant bill to be split; participants, line items,
//     tax/tip rates and the two allocation policy flags
//   - Participant: a person in the split, identified by a small 1-based
//     integer id that is stable for the lifetime of the bill
//   - LineItem: one charge on the bill; a negative amount is a
//     coupon/discount, a comped item is tracked but never charged
//   - ShareSpec: the ordered per-participant weight sequence that says how a
//     line item is divided
//   - PersonCost: one participant's final computed amount, produced by the
//     engine on every finalize pass
//
// # Design principles
//
//  1. Exact money: every amount is a shopspring decimal, exact to the cent.
//     float64 never touches bill arithmetic.
//  2. Plain data: models carry no behavior beyond encoding/validation of
//     their own representation. The allocation algorithm lives in
//     internal/engine and treats a Bill as an immutable snapshot.
//  3. Parse once: the compact share-string encoding ("201") is decoded into
//     a typed ShareSpec at the boundary and never re-parsed downstream.
//  4. Derived values are never stored on the Bill. SubTotal, Tax, Tip and
//     per-person amounts are recomputed from line items on every finalize,
//     so a finalize call is idempotent by construction.
package models
