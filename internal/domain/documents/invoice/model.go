// Package invoice provides the Invoice document and its payment ledger.
package invoice

import (
	"context"
	"time"

	"autodf/internal/core/apperror"
	"autodf/internal/core/entity"
	"autodf/internal/core/id"
	"autodf/internal/core/types"
	"autodf/internal/domain/documents"
)

// Status is the invoice lifecycle status.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid" // derived: set when the ledger covers the total
	StatusCancelled Status = "cancelled"
)

// Editable implements documents.Status. Only draft invoices may change
// line content and header fields.
func (s Status) Editable() bool {
	return s == StatusDraft
}

func (s Status) String() string {
	return string(s)
}

// Valid reports whether the value belongs to the invoice vocabulary.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus classifies the settlement state of an invoice.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
)

// PaymentMethod enumerates accepted payment instruments.
type PaymentMethod string

const (
	MethodCard     PaymentMethod = "cb"
	MethodTransfer PaymentMethod = "transfer"
	MethodCash     PaymentMethod = "cash"
	MethodCheque   PaymentMethod = "cheque"
)

func validPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodCard, MethodTransfer, MethodCash, MethodCheque:
		return true
	}
	return false
}

// LineType classifies what a line bills for.
type LineType string

const (
	LineTypeBenefit LineType = "benefit" // service / labor
	LineTypeSupply  LineType = "supply"  // material
)

func validLineType(t LineType) bool {
	switch t {
	case LineTypeBenefit, LineTypeSupply:
		return true
	}
	return false
}

// Line represents one billed position of an invoice.
type Line struct {
	// Line identification
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	Description string   `db:"description" json:"description"`
	Type        LineType `db:"line_type" json:"lineType"`

	// Input values
	Quantity  types.Money `db:"quantity" json:"quantity"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	TaxRate   types.Rate  `db:"tax_rate" json:"taxRate"`
	Discount  types.Rate  `db:"discount" json:"discount"`

	// Derived amounts, recomputed on every input change
	Net   types.Money `db:"net" json:"net"`
	Tax   types.Money `db:"tax" json:"tax"`
	Gross types.Money `db:"gross" json:"gross"`

	Note string `db:"note" json:"note,omitempty"`
}

// LineInput carries the editable values of a line.
type LineInput struct {
	Description string
	Type        LineType
	Quantity    types.Money
	UnitPrice   types.Money
	TaxRate     types.Rate
	Discount    types.Rate
	Note        string
}

// NewLine builds a line from its input values, computing the derived amounts.
func NewLine(in LineInput) (Line, error) {
	if in.Type == "" {
		in.Type = LineTypeBenefit
	}
	if !validLineType(in.Type) {
		return Line{}, apperror.NewValidation("invalid line type").
			WithDetail("field", "lineType").
			WithDetail("value", string(in.Type))
	}

	amounts, err := documents.ComputeLineAmounts(documents.LineInput{
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		TaxRate:   in.TaxRate,
		Discount:  in.Discount,
	})
	if err != nil {
		return Line{}, err
	}

	return Line{
		LineID:      id.New(),
		Description: in.Description,
		Type:        in.Type,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		TaxRate:     in.TaxRate,
		Discount:    in.Discount,
		Net:         amounts.Net,
		Tax:         amounts.Tax,
		Gross:       amounts.Gross,
		Note:        in.Note,
	}, nil
}

// Payment is one ledger entry. Entries are append-only.
type Payment struct {
	PaymentID id.ID         `db:"payment_id" json:"paymentId"`
	Amount    types.Money   `db:"amount" json:"amount"`
	Date      time.Time     `db:"date" json:"date"`
	Method    PaymentMethod `db:"method" json:"method"`
	Reference string        `db:"reference" json:"reference,omitempty"`

	RecordedBy string    `db:"recorded_by" json:"recordedBy,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Invoice represents a billing document with a payment ledger.
type Invoice struct {
	entity.Document

	Status Status `db:"status" json:"status"`

	// DueDate defaults to the issue date plus the configured term
	DueDate time.Time `db:"due_date" json:"dueDate"`

	// EstimateID links to the source estimate when created by conversion
	EstimateID *id.ID `db:"estimate_id" json:"estimateId,omitempty"`

	// Settlement state, derived from the ledger. Never hand-set.
	PaymentStatus   PaymentStatus `db:"payment_status" json:"paymentStatus"`
	PaidAmount      types.Money   `db:"paid_amount" json:"paidAmount"`
	RemainingAmount types.Money   `db:"remaining_amount" json:"remainingAmount"`

	// Table parts
	Lines    []Line    `db:"-" json:"lines"`
	Payments []Payment `db:"-" json:"payments"`
}

// New creates a draft invoice.
func New(organizationID string, clientID id.ID) *Invoice {
	return &Invoice{
		Document:        entity.NewDocument(organizationID, clientID),
		Status:          StatusDraft,
		PaymentStatus:   PaymentPending,
		PaidAmount:      types.Zero(),
		RemainingAmount: types.Zero(),
		Lines:           make([]Line, 0),
		Payments:        make([]Payment, 0),
	}
}

// AddLine appends a line and recalculates totals.
func (inv *Invoice) AddLine(line Line) {
	line.LineNo = len(inv.Lines) + 1
	inv.Lines = append(inv.Lines, line)
	inv.RecalculateTotals(time.Now())
}

// ReplaceLine swaps the line with the same LineID and recalculates totals.
func (inv *Invoice) ReplaceLine(line Line) bool {
	for i := range inv.Lines {
		if inv.Lines[i].LineID == line.LineID {
			line.LineNo = inv.Lines[i].LineNo
			inv.Lines[i] = line
			inv.RecalculateTotals(time.Now())
			return true
		}
	}
	return false
}

// RemoveLine deletes a line by ID, renumbers the rest, and recalculates totals.
func (inv *Invoice) RemoveLine(lineID id.ID) bool {
	for i := range inv.Lines {
		if inv.Lines[i].LineID == lineID {
			inv.Lines = append(inv.Lines[:i], inv.Lines[i+1:]...)
			for j := range inv.Lines {
				inv.Lines[j].LineNo = j + 1
			}
			inv.RecalculateTotals(time.Now())
			return true
		}
	}
	return false
}

// FindLine returns the line with the given ID.
func (inv *Invoice) FindLine(lineID id.ID) (Line, bool) {
	for _, l := range inv.Lines {
		if l.LineID == lineID {
			return l, true
		}
	}
	return Line{}, false
}

// RecalculateTotals rederives document totals from the lines, then the
// settlement state from the ledger. Any change to totalGross must flow
// into paid/remaining, so the two always move together.
func (inv *Invoice) RecalculateTotals(now time.Time) {
	amounts := make([]documents.LineAmounts, len(inv.Lines))
	for i, l := range inv.Lines {
		amounts[i] = documents.LineAmounts{Net: l.Net, Tax: l.Tax, Gross: l.Gross}
	}
	totals := documents.AggregateTotals(amounts, inv.HeaderDiscount)
	inv.SetTotals(totals.Net, totals.Tax, totals.Gross)
	inv.RecomputeSettlement(now)
}

// RecomputeSettlement rederives paidAmount, remainingAmount, and the
// payment status from the ledger:
//
//	remaining <= 0  -> paid
//	paid > 0        -> partial
//	past due date   -> overdue
//	otherwise       -> pending
//
// Paid additionally requires at least one recorded payment, so a
// zero-gross invoice with an empty ledger stays pending instead of
// being born settled.
//
// A fully settled invoice also flips the document status to paid
// (a pure status change, always admitted by the guard).
func (inv *Invoice) RecomputeSettlement(now time.Time) {
	paid := types.Zero()
	for _, p := range inv.Payments {
		paid = paid.Add(p.Amount)
	}

	inv.PaidAmount = paid
	inv.RemainingAmount = inv.TotalGross.Sub(paid)

	switch {
	case !inv.RemainingAmount.IsPositive() && len(inv.Payments) > 0:
		inv.PaymentStatus = PaymentPaid
	case paid.IsPositive():
		inv.PaymentStatus = PaymentPartial
	case !inv.DueDate.IsZero() && now.After(inv.DueDate):
		inv.PaymentStatus = PaymentOverdue
	default:
		inv.PaymentStatus = PaymentPending
	}

	if inv.PaymentStatus == PaymentPaid && inv.Status != StatusCancelled {
		inv.Status = StatusPaid
	}
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}

	if !inv.Status.Valid() {
		return apperror.NewValidation("invalid invoice status").
			WithDetail("field", "status").
			WithDetail("value", string(inv.Status))
	}

	if inv.DueDate.IsZero() {
		return apperror.NewValidation("due date is required").
			WithDetail("field", "dueDate")
	}

	for i, line := range inv.Lines {
		if !validLineType(line.Type) {
			return apperror.NewValidation("invalid line type").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
