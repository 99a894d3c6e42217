package entity

import (
	"context"
	"time"

	"autodf/internal/core/apperror"
	"autodf/internal/core/id"
	"autodf/internal/core/types"
)

// Document is the base type for billing documents (estimates, invoices).
type Document struct {
	BaseDocument

	// Number is the human-readable reference number.
	// Assigned exactly once at first save, immutable afterwards.
	Number string `db:"number" json:"number"`

	// Date is the issue date of the document
	Date time.Time `db:"date" json:"date"`

	// OrganizationID is the owning tenant scope (required, used for numbering)
	OrganizationID string `db:"organization_id" json:"organizationId"`

	// ClientID is the counterpart client
	ClientID id.ID `db:"client_id" json:"clientId"`

	// HeaderDiscount is a percentage applied to the net sum of all lines
	HeaderDiscount types.Rate `db:"header_discount" json:"headerDiscount"`

	// Aggregate totals, derived from lines. Never hand-set.
	TotalNet   types.Money `db:"total_net" json:"totalNet"`
	TotalTax   types.Money `db:"total_tax" json:"totalTax"`
	TotalGross types.Money `db:"total_gross" json:"totalGross"`

	// SentDate is set when the document leaves draft
	SentDate *time.Time `db:"sent_date" json:"sentDate,omitempty"`

	// Comment is an optional user note
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument(organizationID string, clientID id.ID) Document {
	return Document{
		BaseDocument:   NewBaseDocument(),
		Date:           time.Now().UTC(),
		OrganizationID: organizationID,
		ClientID:       clientID,
		HeaderDiscount: types.Zero(),
		TotalNet:       types.Zero(),
		TotalTax:       types.Zero(),
		TotalGross:     types.Zero(),
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.OrganizationID == "" {
		return apperror.NewValidation("organization is required").
			WithDetail("field", "organizationId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	if id.IsNil(d.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}

	if !types.ValidRate(d.HeaderDiscount) {
		return apperror.NewValidation("header discount must be between 0 and 100").
			WithDetail("field", "headerDiscount")
	}

	return nil
}

// SetTotals writes the three aggregate fields.
// Only the document aggregator may call this.
func (d *Document) SetTotals(net, tax, gross types.Money) {
	d.TotalNet = net
	d.TotalTax = tax
	d.TotalGross = gross
}

// HasNumber reports whether a reference number has been assigned.
func (d *Document) HasNumber() bool {
	return d.Number != ""
}
