package documents

import (
	"testing"

	"autodf/internal/core/apperror"
	"autodf/internal/core/types"
)

func m(s string) types.Money {
	return types.MustMoney(s)
}

func TestComputeLineAmounts(t *testing.T) {
	tests := []struct {
		name      string
		in        LineInput
		wantNet   string
		wantTax   string
		wantGross string
	}{
		{
			name:      "plain line",
			in:        LineInput{Quantity: m("2"), UnitPrice: m("50.00"), TaxRate: m("20")},
			wantNet:   "100.00",
			wantTax:   "20.00",
			wantGross: "120.00",
		},
		{
			name:      "line discount",
			in:        LineInput{Quantity: m("1"), UnitPrice: m("200.00"), TaxRate: m("10"), Discount: m("25")},
			wantNet:   "150.00",
			wantTax:   "15.00",
			wantGross: "165.00",
		},
		{
			name:      "zero tax rate",
			in:        LineInput{Quantity: m("3"), UnitPrice: m("9.99"), TaxRate: m("0")},
			wantNet:   "29.97",
			wantTax:   "0.00",
			wantGross: "29.97",
		},
		{
			name:      "fractional quantity rounds",
			in:        LineInput{Quantity: m("1.5"), UnitPrice: m("33.33"), TaxRate: m("20")},
			wantNet:   "50.00",
			wantTax:   "10.00",
			wantGross: "60.00",
		},
		{
			name:      "zero price is allowed",
			in:        LineInput{Quantity: m("4"), UnitPrice: m("0"), TaxRate: m("20")},
			wantNet:   "0.00",
			wantTax:   "0.00",
			wantGross: "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeLineAmounts(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Net.StringFixed(2) != tt.wantNet {
				t.Errorf("net = %s, want %s", got.Net, tt.wantNet)
			}
			if got.Tax.StringFixed(2) != tt.wantTax {
				t.Errorf("tax = %s, want %s", got.Tax, tt.wantTax)
			}
			if got.Gross.StringFixed(2) != tt.wantGross {
				t.Errorf("gross = %s, want %s", got.Gross, tt.wantGross)
			}
		})
	}
}

func TestComputeLineAmounts_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   LineInput
	}{
		{"zero quantity", LineInput{Quantity: m("0"), UnitPrice: m("10"), TaxRate: m("20")}},
		{"negative quantity", LineInput{Quantity: m("-1"), UnitPrice: m("10"), TaxRate: m("20")}},
		{"negative price", LineInput{Quantity: m("1"), UnitPrice: m("-0.01"), TaxRate: m("20")}},
		{"tax rate above 100", LineInput{Quantity: m("1"), UnitPrice: m("10"), TaxRate: m("101")}},
		{"negative tax rate", LineInput{Quantity: m("1"), UnitPrice: m("10"), TaxRate: m("-1")}},
		{"discount above 100", LineInput{Quantity: m("1"), UnitPrice: m("10"), TaxRate: m("20"), Discount: m("100.01")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeLineAmounts(tt.in)
			if err == nil {
				t.Fatal("expected error")
			}
			appErr, ok := apperror.AsAppError(err)
			if !ok {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != apperror.CodeInvalidLineInput {
				t.Errorf("code = %s, want %s", appErr.Code, apperror.CodeInvalidLineInput)
			}
		})
	}
}

func TestComputeLineAmounts_Idempotent(t *testing.T) {
	in := LineInput{Quantity: m("7"), UnitPrice: m("13.37"), TaxRate: m("5.5"), Discount: m("12.5")}

	first, err := ComputeLineAmounts(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ComputeLineAmounts(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !first.Net.Equal(second.Net) || !first.Tax.Equal(second.Tax) || !first.Gross.Equal(second.Gross) {
		t.Errorf("recomputation changed amounts: %+v vs %+v", first, second)
	}
}

func TestAggregateTotals_WorkedExample(t *testing.T) {
	// One line: quantity 2 x 50.00 at 20% tax, header discount 10%.
	line, err := ComputeLineAmounts(LineInput{Quantity: m("2"), UnitPrice: m("50.00"), TaxRate: m("20")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	totals := AggregateTotals([]LineAmounts{line}, m("10"))

	if totals.Net.StringFixed(2) != "90.00" {
		t.Errorf("totalNet = %s, want 90.00", totals.Net)
	}
	if totals.Tax.StringFixed(2) != "20.00" {
		t.Errorf("totalTax = %s, want 20.00", totals.Tax)
	}
	if totals.Gross.StringFixed(2) != "110.00" {
		t.Errorf("totalGross = %s, want 110.00", totals.Gross)
	}
}

func TestAggregateTotals_NoLines(t *testing.T) {
	totals := AggregateTotals(nil, m("15"))

	if !totals.Net.IsZero() || !totals.Tax.IsZero() || !totals.Gross.IsZero() {
		t.Errorf("expected zero totals, got %+v", totals)
	}
}

func TestAggregateTotals_SumsLines(t *testing.T) {
	l1, _ := ComputeLineAmounts(LineInput{Quantity: m("1"), UnitPrice: m("100.00"), TaxRate: m("20")})
	l2, _ := ComputeLineAmounts(LineInput{Quantity: m("2"), UnitPrice: m("25.50"), TaxRate: m("10")})

	totals := AggregateTotals([]LineAmounts{l1, l2}, types.Zero())

	// 100.00 + 51.00 net, 20.00 + 5.10 tax
	if totals.Net.StringFixed(2) != "151.00" {
		t.Errorf("totalNet = %s, want 151.00", totals.Net)
	}
	if totals.Tax.StringFixed(2) != "25.10" {
		t.Errorf("totalTax = %s, want 25.10", totals.Tax)
	}
	if totals.Gross.StringFixed(2) != "176.10" {
		t.Errorf("totalGross = %s, want 176.10", totals.Gross)
	}
}

func TestAggregateTotals_Idempotent(t *testing.T) {
	l1, _ := ComputeLineAmounts(LineInput{Quantity: m("3"), UnitPrice: m("19.99"), TaxRate: m("20")})
	l2, _ := ComputeLineAmounts(LineInput{Quantity: m("1"), UnitPrice: m("5.01"), TaxRate: m("5.5"), Discount: m("50")})
	lines := []LineAmounts{l1, l2}
	disc := m("33.33")

	first := AggregateTotals(lines, disc)
	second := AggregateTotals(lines, disc)

	if !first.Net.Equal(second.Net) || !first.Tax.Equal(second.Tax) || !first.Gross.Equal(second.Gross) {
		t.Errorf("recomputation changed totals: %+v vs %+v", first, second)
	}
}
