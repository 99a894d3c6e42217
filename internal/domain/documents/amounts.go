// Package documents provides logic shared by all billing documents:
// line amount calculation, aggregate totals, and the status guard.
package documents

import (
	"autodf/internal/core/apperror"
	"autodf/internal/core/types"
)

// LineInput holds the values a line amount is derived from.
type LineInput struct {
	// Quantity must be strictly positive
	Quantity types.Money

	// UnitPrice must be non-negative
	UnitPrice types.Money

	// TaxRate is a percentage in [0,100]
	TaxRate types.Rate

	// Discount is an optional per-line percentage in [0,100], zero by default
	Discount types.Rate
}

// LineAmounts holds the computed amounts of a single line,
// each rounded to 2 fraction digits.
type LineAmounts struct {
	Net   types.Money
	Tax   types.Money
	Gross types.Money
}

// ComputeLineAmounts derives (net, tax, gross) from a line's input values.
//
//	net   = quantity * unitPrice * (1 - discount/100)
//	tax   = net * taxRate/100
//	gross = net + tax
//
// Each amount is rounded at the point of assignment, so recomputation
// from unchanged inputs is bit-for-bit stable. Pure function: persisting
// the result and triggering the parent recompute is the caller's job.
func ComputeLineAmounts(in LineInput) (LineAmounts, error) {
	if !in.Quantity.IsPositive() {
		return LineAmounts{}, apperror.NewInvalidLineInput("quantity must be positive").
			WithDetail("quantity", in.Quantity.String())
	}
	if in.UnitPrice.IsNegative() {
		return LineAmounts{}, apperror.NewInvalidLineInput("unit price must not be negative").
			WithDetail("unitPrice", in.UnitPrice.String())
	}
	if !types.ValidRate(in.TaxRate) {
		return LineAmounts{}, apperror.NewInvalidLineInput("tax rate must be between 0 and 100").
			WithDetail("taxRate", in.TaxRate.String())
	}
	if !types.ValidRate(in.Discount) {
		return LineAmounts{}, apperror.NewInvalidLineInput("discount must be between 0 and 100").
			WithDetail("discount", in.Discount.String())
	}

	factor := types.One.Sub(in.Discount.Div(types.Hundred))
	net := types.Round2(in.Quantity.Mul(in.UnitPrice).Mul(factor))
	tax := types.Round2(net.Mul(in.TaxRate.Div(types.Hundred)))
	gross := net.Add(tax)

	return LineAmounts{Net: net, Tax: tax, Gross: gross}, nil
}

// Totals holds the aggregate amounts of a document.
type Totals struct {
	Net   types.Money
	Tax   types.Money
	Gross types.Money
}

// AggregateTotals sums line amounts and applies the header discount.
//
// The header discount reduces the net sum only; the tax sum is kept as
// computed per line (pre-discount), matching the historical behavior of
// the system. With no lines all totals are zero.
//
//	totalNet   = round2(sum(net) - sum(net)*headerDiscount/100)
//	totalTax   = sum(tax)
//	totalGross = totalNet + totalTax
//
// Idempotent: same lines and discount always produce identical totals.
func AggregateTotals(lines []LineAmounts, headerDiscount types.Rate) Totals {
	netSum := types.Zero()
	taxSum := types.Zero()
	for _, l := range lines {
		netSum = netSum.Add(l.Net)
		taxSum = taxSum.Add(l.Tax)
	}

	discount := types.Round2(netSum.Mul(headerDiscount.Div(types.Hundred)))
	net := netSum.Sub(discount)

	return Totals{
		Net:   net,
		Tax:   taxSum,
		Gross: net.Add(taxSum),
	}
}
