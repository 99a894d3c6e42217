package invoice

import (
	"testing"
	"time"

	"autodf/internal/core/id"
	"autodf/internal/core/types"
)

func m(s string) types.Money {
	return types.MustMoney(s)
}

func testInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv := New("org-1", id.New())
	inv.Date = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	inv.DueDate = inv.Date.AddDate(0, 0, 30)

	line, err := NewLine(LineInput{
		Description: "installation",
		Quantity:    m("2"),
		UnitPrice:   m("50.00"),
		TaxRate:     m("0"),
	})
	if err != nil {
		t.Fatalf("new line: %v", err)
	}
	inv.AddLine(line)
	return inv
}

func payment(amount string, date time.Time) Payment {
	return Payment{
		PaymentID: id.New(),
		Amount:    types.MustMoney(amount),
		Date:      date,
		Method:    MethodTransfer,
		CreatedAt: date,
	}
}

func TestRecomputeSettlement_FullPayment(t *testing.T) {
	inv := testInvoice(t)
	now := inv.Date.AddDate(0, 0, 5)

	// totalGross = 100.00: pay 40 then 60
	inv.Payments = append(inv.Payments, payment("40.00", now))
	inv.RecomputeSettlement(now)

	if inv.PaymentStatus != PaymentPartial {
		t.Errorf("after 40.00: status = %s, want partial", inv.PaymentStatus)
	}
	if inv.RemainingAmount.StringFixed(2) != "60.00" {
		t.Errorf("after 40.00: remaining = %s, want 60.00", inv.RemainingAmount)
	}

	inv.Payments = append(inv.Payments, payment("60.00", now))
	inv.RecomputeSettlement(now)

	if inv.PaymentStatus != PaymentPaid {
		t.Errorf("after 100.00: status = %s, want paid", inv.PaymentStatus)
	}
	if inv.PaidAmount.StringFixed(2) != "100.00" {
		t.Errorf("paid = %s, want 100.00", inv.PaidAmount)
	}
	if inv.RemainingAmount.StringFixed(2) != "0.00" {
		t.Errorf("remaining = %s, want 0.00", inv.RemainingAmount)
	}
	if inv.Status != StatusPaid {
		t.Errorf("document status = %s, want paid", inv.Status)
	}
}

func TestRecomputeSettlement_Overdue(t *testing.T) {
	inv := testInvoice(t)

	// No payments, before due date
	inv.RecomputeSettlement(inv.DueDate.AddDate(0, 0, -1))
	if inv.PaymentStatus != PaymentPending {
		t.Errorf("before due date: status = %s, want pending", inv.PaymentStatus)
	}

	// No payments, past due date
	inv.RecomputeSettlement(inv.DueDate.AddDate(0, 0, 1))
	if inv.PaymentStatus != PaymentOverdue {
		t.Errorf("past due date: status = %s, want overdue", inv.PaymentStatus)
	}

	// Partial beats overdue
	inv.Payments = append(inv.Payments, payment("10.00", inv.DueDate))
	inv.RecomputeSettlement(inv.DueDate.AddDate(0, 0, 1))
	if inv.PaymentStatus != PaymentPartial {
		t.Errorf("partial past due date: status = %s, want partial", inv.PaymentStatus)
	}
}

func TestRecomputeSettlement_Overpayment(t *testing.T) {
	inv := testInvoice(t)
	now := inv.Date

	inv.Payments = append(inv.Payments, payment("150.00", now))
	inv.RecomputeSettlement(now)

	if inv.PaymentStatus != PaymentPaid {
		t.Errorf("status = %s, want paid", inv.PaymentStatus)
	}
	if inv.RemainingAmount.StringFixed(2) != "-50.00" {
		t.Errorf("remaining = %s, want -50.00", inv.RemainingAmount)
	}
}

func TestRecomputeSettlement_ZeroGrossNoPayments(t *testing.T) {
	inv := testInvoice(t)
	inv.SetTotals(types.Zero(), types.Zero(), types.Zero())

	inv.RecomputeSettlement(inv.Date)
	if inv.PaymentStatus != PaymentPending {
		t.Errorf("empty ledger: status = %s, want pending", inv.PaymentStatus)
	}

	inv.Payments = append(inv.Payments, payment("0.00", inv.Date))
	inv.RecomputeSettlement(inv.Date)
	if inv.PaymentStatus != PaymentPaid {
		t.Errorf("settled ledger: status = %s, want paid", inv.PaymentStatus)
	}
}

func TestRecalculateTotals_RederivesSettlement(t *testing.T) {
	inv := testInvoice(t)
	now := inv.Date

	inv.Payments = append(inv.Payments, payment("100.00", now))
	inv.RecomputeSettlement(now)
	if inv.PaymentStatus != PaymentPaid {
		t.Fatalf("status = %s, want paid", inv.PaymentStatus)
	}

	// A totals change must re-derive the settlement state too.
	line, err := NewLine(LineInput{
		Description: "extra work",
		Quantity:    m("1"),
		UnitPrice:   m("80.00"),
		TaxRate:     m("0"),
	})
	if err != nil {
		t.Fatalf("new line: %v", err)
	}
	inv.Lines = append(inv.Lines, line)
	inv.RecalculateTotals(now)

	if inv.TotalGross.StringFixed(2) != "180.00" {
		t.Errorf("totalGross = %s, want 180.00", inv.TotalGross)
	}
	if inv.PaymentStatus != PaymentPartial {
		t.Errorf("status = %s, want partial after totals grew", inv.PaymentStatus)
	}
	if inv.RemainingAmount.StringFixed(2) != "80.00" {
		t.Errorf("remaining = %s, want 80.00", inv.RemainingAmount)
	}
}

func TestLineMutations_KeepTotalsConsistent(t *testing.T) {
	inv := testInvoice(t)

	second, err := NewLine(LineInput{
		Description: "materials",
		Type:        LineTypeSupply,
		Quantity:    m("3"),
		UnitPrice:   m("10.00"),
		TaxRate:     m("20"),
	})
	if err != nil {
		t.Fatalf("new line: %v", err)
	}
	inv.AddLine(second)

	// 100.00 + 30.00 net, 0.00 + 6.00 tax
	if inv.TotalNet.StringFixed(2) != "130.00" || inv.TotalTax.StringFixed(2) != "6.00" {
		t.Fatalf("after add: net = %s tax = %s", inv.TotalNet, inv.TotalTax)
	}

	// Edit the second line
	edited, err := NewLine(LineInput{
		Description: "materials",
		Type:        LineTypeSupply,
		Quantity:    m("1"),
		UnitPrice:   m("10.00"),
		TaxRate:     m("20"),
	})
	if err != nil {
		t.Fatalf("new line: %v", err)
	}
	edited.LineID = second.LineID
	if !inv.ReplaceLine(edited) {
		t.Fatal("line not replaced")
	}
	if inv.TotalNet.StringFixed(2) != "110.00" {
		t.Errorf("after edit: net = %s, want 110.00", inv.TotalNet)
	}

	// Remove it again
	if !inv.RemoveLine(second.LineID) {
		t.Fatal("line not removed")
	}
	if inv.TotalNet.StringFixed(2) != "100.00" || inv.TotalGross.StringFixed(2) != "100.00" {
		t.Errorf("after remove: net = %s gross = %s", inv.TotalNet, inv.TotalGross)
	}
	if len(inv.Lines) != 1 || inv.Lines[0].LineNo != 1 {
		t.Errorf("lines not renumbered: %+v", inv.Lines)
	}
}
