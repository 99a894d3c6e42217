// Package estimate provides the Estimate document (quote issued to a client).
package estimate

import (
	"context"

	"autodf/internal/core/apperror"
	"autodf/internal/core/entity"
	"autodf/internal/core/id"
	"autodf/internal/core/types"
	"autodf/internal/domain/documents"
)

// Status is the estimate lifecycle status.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
	StatusExpired  Status = "expired"
)

// Editable implements documents.Status. Only draft estimates may change
// line content and header fields.
func (s Status) Editable() bool {
	return s == StatusDraft
}

func (s Status) String() string {
	return string(s)
}

// Valid reports whether the value belongs to the estimate vocabulary.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusRefused, StatusExpired:
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

// Line represents one billed position of an estimate.
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

// NewLine builds a line from its input values, computing the derived
// amounts. LineNo is assigned when the line joins a document.
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

// Estimate represents a quote document.
type Estimate struct {
	entity.Document

	Status Status `db:"status" json:"status"`

	// InvoiceID links to the invoice this estimate was converted into.
	InvoiceID *id.ID `db:"invoice_id" json:"invoiceId,omitempty"`

	// Table part: billed positions
	Lines []Line `db:"-" json:"lines"`
}

// New creates a draft estimate.
func New(organizationID string, clientID id.ID) *Estimate {
	return &Estimate{
		Document: entity.NewDocument(organizationID, clientID),
		Status:   StatusDraft,
		Lines:    make([]Line, 0),
	}
}

// AddLine appends a line and recalculates totals.
func (e *Estimate) AddLine(line Line) {
	line.LineNo = len(e.Lines) + 1
	e.Lines = append(e.Lines, line)
	e.RecalculateTotals()
}

// ReplaceLine swaps the line with the same LineID and recalculates totals.
func (e *Estimate) ReplaceLine(line Line) bool {
	for i := range e.Lines {
		if e.Lines[i].LineID == line.LineID {
			line.LineNo = e.Lines[i].LineNo
			e.Lines[i] = line
			e.RecalculateTotals()
			return true
		}
	}
	return false
}

// RemoveLine deletes a line by ID, renumbers the rest, and recalculates totals.
func (e *Estimate) RemoveLine(lineID id.ID) bool {
	for i := range e.Lines {
		if e.Lines[i].LineID == lineID {
			e.Lines = append(e.Lines[:i], e.Lines[i+1:]...)
			for j := range e.Lines {
				e.Lines[j].LineNo = j + 1
			}
			e.RecalculateTotals()
			return true
		}
	}
	return false
}

// FindLine returns the line with the given ID.
func (e *Estimate) FindLine(lineID id.ID) (Line, bool) {
	for _, l := range e.Lines {
		if l.LineID == lineID {
			return l, true
		}
	}
	return Line{}, false
}

// RecalculateTotals rederives the document totals from the lines.
func (e *Estimate) RecalculateTotals() {
	amounts := make([]documents.LineAmounts, len(e.Lines))
	for i, l := range e.Lines {
		amounts[i] = documents.LineAmounts{Net: l.Net, Tax: l.Tax, Gross: l.Gross}
	}
	totals := documents.AggregateTotals(amounts, e.HeaderDiscount)
	e.SetTotals(totals.Net, totals.Tax, totals.Gross)
}

// IsConverted reports whether an invoice was already created from this estimate.
func (e *Estimate) IsConverted() bool {
	return e.InvoiceID != nil
}

// Validate implements entity.Validatable.
func (e *Estimate) Validate(ctx context.Context) error {
	if err := e.Document.Validate(ctx); err != nil {
		return err
	}

	if !e.Status.Valid() {
		return apperror.NewValidation("invalid estimate status").
			WithDetail("field", "status").
			WithDetail("value", string(e.Status))
	}

	for i, line := range e.Lines {
		if !validLineType(line.Type) {
			return apperror.NewValidation("invalid line type").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
