package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ShareSpec is an ordered sequence of non-negative integer weights, one per
// participant slot, denoting relative shares of a line item. The leftmost
// weight belongs to participant 1; position carries meaning, magnitude does
// not: [2,0,1] gives participant 1 twice participant 3's share and
// participant 2 nothing.
//
// An all-zero spec means nobody was assigned the item; the engine tracks
// such an item's amount as unallocated rather than dropping it.
type ShareSpec []int

// ParseShareSpec decodes the compact string encoding used on the wire and in
// storage: one digit per participant, so "201" is [2,0,1]. Weights above 9
// use the comma-separated form produced by String ("12,0,1"). This is the
// only place the encoding is interpreted; downstream code works with the
// typed weights.
func ParseShareSpec(s string) (ShareSpec, error) {
	if strings.ContainsRune(s, ',') {
		parts := strings.Split(s, ",")
		spec := make(ShareSpec, 0, len(parts))
		for i, p := range parts {
			w, err := strconv.Atoi(p)
			if err != nil || w < 0 {
				return nil, fmt.Errorf("share spec %q: position %d is not a non-negative weight", s, i+1)
			}
			spec = append(spec, w)
		}
		return spec, nil
	}
	spec := make(ShareSpec, 0, len(s))
	for i, r := range s {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("share spec %q: position %d is not a digit", s, i+1)
		}
		spec = append(spec, int(r-'0'))
	}
	return spec, nil
}

// Total returns the sum of all weights.
func (s ShareSpec) Total() int {
	total := 0
	for _, w := range s {
		total += w
	}
	return total
}

// Validate checks the spec against the number of active participants.
func (s ShareSpec) Validate(participants int) error {
	if len(s) != participants {
		return fmt.Errorf("share spec has %d weights for %d participants", len(s), participants)
	}
	for i, w := range s {
		if w < 0 {
			return fmt.Errorf("share spec weight %d for participant %d is negative", w, i+1)
		}
	}
	return nil
}

// String renders the compact encoding. Weights above 9 only occur when a
// spec was built programmatically; they are separated by commas so the
// result stays unambiguous.
func (s ShareSpec) String() string {
	var b strings.Builder
	wide := false
	for _, w := range s {
		if w > 9 {
			wide = true
			break
		}
	}
	for i, w := range s {
		if wide && i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", w)
	}
	return b.String()
}
