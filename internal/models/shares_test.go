package models

import (
	"reflect"
	"testing"
)

func TestParseShareSpec(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    ShareSpec
		wantErr bool
	}{
		{"equal three-way", "111", ShareSpec{1, 1, 1}, false},
		{"order matters not magnitude", "201", ShareSpec{2, 0, 1}, false},
		{"all zero is valid input", "000", ShareSpec{0, 0, 0}, false},
		{"empty spec", "", ShareSpec{}, false},
		{"comma form for wide weights", "12,0,1", ShareSpec{12, 0, 1}, false},
		{"non-digit rejected", "1a1", nil, true},
		{"negative weight rejected in comma form", "1,-2,1", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseShareSpec(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseShareSpec(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseShareSpec(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestShareSpecString(t *testing.T) {
	if got := (ShareSpec{2, 0, 1}).String(); got != "201" {
		t.Errorf("String() = %q, want %q", got, "201")
	}
	if got := (ShareSpec{12, 0, 1}).String(); got != "12,0,1" {
		t.Errorf("String() = %q, want %q", got, "12,0,1")
	}

	// Round trip through the encoding.
	for _, spec := range []ShareSpec{{1, 1, 1}, {2, 0, 1}, {10, 3, 0, 7}} {
		parsed, err := ParseShareSpec(spec.String())
		if err != nil {
			t.Fatalf("ParseShareSpec(%q) failed: %v", spec.String(), err)
		}
		if !reflect.DeepEqual(parsed, spec) {
			t.Errorf("round trip of %v = %v", spec, parsed)
		}
	}
}

func TestShareSpecValidate(t *testing.T) {
	if err := (ShareSpec{1, 1, 1}).Validate(3); err != nil {
		t.Errorf("Validate(3) on 3 weights = %v, want nil", err)
	}
	if err := (ShareSpec{1, 1}).Validate(3); err == nil {
		t.Error("Validate(3) on 2 weights should fail")
	}
	if err := (ShareSpec{1, -1, 1}).Validate(3); err == nil {
		t.Error("Validate should reject a negative weight")
	}
}

func TestShareSpecTotal(t *testing.T) {
	if got := (ShareSpec{2, 0, 1}).Total(); got != 3 {
		t.Errorf("Total() = %d, want 3", got)
	}
	if got := (ShareSpec{0, 0}).Total(); got != 0 {
		t.Errorf("Total() = %d, want 0", got)
	}
}
