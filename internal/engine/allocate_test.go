package engine

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// divide mirrors how resolveShares produces raw entitlements.
func divide(amount string, num, den int64) decimal.Decimal {
	return dec(amount).Mul(decimal.NewFromInt(num)).Div(decimal.NewFromInt(den))
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name      string
		raw       []decimal.Decimal
		want      []string
		wantTotal string
	}{
		{
			name:      "already exact values untouched",
			raw:       []decimal.Decimal{dec("5.00"), dec("3.25")},
			want:      []string{"5.00", "3.25"},
			wantTotal: "8.25",
		},
		{
			// 1.00 split three ways plus 10.00 split between the outer two.
			// Naive rounding loses a cent; the cent goes to the slot with the
			// smallest rounded amount because all remainders tie.
			name: "one dollar three ways gives the cent to the smallest share",
			raw: []decimal.Decimal{
				divide("1", 1, 3).Add(divide("10", 1, 2)),
				divide("1", 1, 3),
				divide("1", 1, 3).Add(divide("10", 1, 2)),
			},
			want:      []string{"5.33", "0.34", "5.33"},
			wantTotal: "11.00",
		},
		{
			// Two thirds each round up; the surplus cent is taken back from
			// the most over-rounded slot, ties by slot order.
			name: "surplus cent removed deterministically",
			raw: []decimal.Decimal{
				divide("2", 1, 3),
				divide("2", 1, 3),
				divide("2", 1, 3),
			},
			want:      []string{"0.66", "0.67", "0.67"},
			wantTotal: "2.00",
		},
		{
			name: "zero-share slot never receives a correction cent",
			raw: []decimal.Decimal{
				divide("1", 1, 3),
				decimal.Zero,
				divide("1", 1, 3),
				divide("1", 1, 3),
			},
			want:      []string{"0.34", "0.00", "0.33", "0.33"},
			wantTotal: "1.00",
		},
		{
			name:      "empty pool",
			raw:       nil,
			want:      nil,
			wantTotal: "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rounded, total, residual := reconcile(tt.raw)
			if !residual.IsZero() {
				t.Errorf("residual = %s, want 0", residual)
			}
			if !total.Equal(dec(tt.wantTotal)) {
				t.Errorf("total = %s, want %s", total, tt.wantTotal)
			}
			if len(rounded) != len(tt.want) {
				t.Fatalf("got %d values, want %d", len(rounded), len(tt.want))
			}
			sum := decimal.Zero
			for i, v := range rounded {
				if !v.Equal(dec(tt.want[i])) {
					t.Errorf("slot %d = %s, want %s", i, v, tt.want[i])
				}
				sum = sum.Add(v)
			}
			if !sum.Equal(total) {
				t.Errorf("sum of slots = %s, total = %s", sum, total)
			}
		})
	}
}

func TestReconcileTieBreakBySlotOrder(t *testing.T) {
	// When remainders and rounded amounts all tie, the earliest slot takes
	// the cent.
	raw := []decimal.Decimal{
		divide("1", 1, 3),
		divide("1", 1, 3),
		divide("1", 1, 3),
	}
	rounded, _, _ := reconcile(raw)
	want := []string{"0.34", "0.33", "0.33"}
	for i, v := range rounded {
		if !v.Equal(dec(want[i])) {
			t.Errorf("slot %d = %s, want %s", i, v, want[i])
		}
	}
}

func TestReconcileDeterministic(t *testing.T) {
	raw := []decimal.Decimal{
		divide("45", 1, 3),
		divide("45", 1, 3).Add(divide("7.77", 2, 7)),
		divide("45", 1, 3).Add(divide("7.77", 5, 7)),
	}
	first, firstTotal, _ := reconcile(raw)
	for run := 0; run < 5; run++ {
		again, againTotal, _ := reconcile(raw)
		if !againTotal.Equal(firstTotal) {
			t.Fatalf("run %d: total %s != %s", run, againTotal, firstTotal)
		}
		for i := range first {
			if !again[i].Equal(first[i]) {
				t.Fatalf("run %d: slot %d %s != %s", run, i, again[i], first[i])
			}
		}
	}
}
