package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"autodf/internal/core/apperror"
	"autodf/internal/core/id"
	"autodf/internal/core/types"
	"autodf/internal/domain/documents/estimate"
)

// --- Request DTOs ---

// EstimateLineRequest represents a line in create/update requests.
type EstimateLineRequest struct {
	Description string          `json:"description" binding:"required"`
	LineType    string          `json:"lineType,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	Discount    decimal.Decimal `json:"discount"`
	Note        string          `json:"note,omitempty"`
}

// ToInput converts the line request to domain input.
func (r *EstimateLineRequest) ToInput() estimate.LineInput {
	return estimate.LineInput{
		Description: r.Description,
		Type:        estimate.LineType(r.LineType),
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		TaxRate:     r.TaxRate,
		Discount:    r.Discount,
		Note:        r.Note,
	}
}

// CreateEstimateRequest represents a request to create an estimate.
type CreateEstimateRequest struct {
	ClientID       string                `json:"clientId" binding:"required"`
	Date           *time.Time            `json:"date,omitempty"`
	HeaderDiscount *decimal.Decimal      `json:"headerDiscount,omitempty"`
	Comment        string                `json:"comment,omitempty"`
	Lines          []EstimateLineRequest `json:"lines,omitempty"`
}

// ToEntity converts request to domain entity.
func (r *CreateEstimateRequest) ToEntity(organizationID string) (*estimate.Estimate, error) {
	clientID, err := id.Parse(r.ClientID)
	if err != nil {
		return nil, apperror.NewValidation("invalid client id").
			WithDetail("field", "clientId")
	}

	doc := estimate.New(organizationID, clientID)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.HeaderDiscount != nil {
		doc.HeaderDiscount = *r.HeaderDiscount
	}
	doc.Comment = r.Comment

	for _, lr := range r.Lines {
		line, err := estimate.NewLine(lr.ToInput())
		if err != nil {
			return nil, err
		}
		doc.AddLine(line)
	}

	return doc, nil
}

// UpdateEstimateRequest represents a partial header update.
// Nil fields are left untouched.
type UpdateEstimateRequest struct {
	ClientID       *string          `json:"clientId,omitempty"`
	Date           *time.Time       `json:"date,omitempty"`
	HeaderDiscount *decimal.Decimal `json:"headerDiscount,omitempty"`
	Comment        *string          `json:"comment,omitempty"`
	Status         *string          `json:"status,omitempty"`
}

// ToPatch converts the request to a domain patch.
func (r *UpdateEstimateRequest) ToPatch() (estimate.Patch, error) {
	var patch estimate.Patch

	if r.ClientID != nil {
		clientID, err := id.Parse(*r.ClientID)
		if err != nil {
			return patch, apperror.NewValidation("invalid client id").
				WithDetail("field", "clientId")
		}
		patch.ClientID = &clientID
	}
	patch.Date = r.Date
	if r.HeaderDiscount != nil {
		rate := types.Rate(*r.HeaderDiscount)
		patch.HeaderDiscount = &rate
	}
	patch.Comment = r.Comment
	if r.Status != nil {
		status := estimate.Status(*r.Status)
		patch.Status = &status
	}

	return patch, nil
}

// --- Response DTOs ---

// EstimateLineResponse represents a line in API responses.
type EstimateLineResponse struct {
	LineID      string          `json:"lineId"`
	LineNo      int             `json:"lineNo"`
	Description string          `json:"description"`
	LineType    string          `json:"lineType"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	Discount    decimal.Decimal `json:"discount"`
	Net         decimal.Decimal `json:"net"`
	Tax         decimal.Decimal `json:"tax"`
	Gross       decimal.Decimal `json:"gross"`
	Note        string          `json:"note,omitempty"`
}

// EstimateResponse represents an estimate in API responses.
type EstimateResponse struct {
	ID             string                 `json:"id"`
	Number         string                 `json:"number"`
	Date           time.Time              `json:"date"`
	Status         string                 `json:"status"`
	ClientID       string                 `json:"clientId"`
	HeaderDiscount decimal.Decimal        `json:"headerDiscount"`
	TotalNet       decimal.Decimal        `json:"totalNet"`
	TotalTax       decimal.Decimal        `json:"totalTax"`
	TotalGross     decimal.Decimal        `json:"totalGross"`
	SentDate       *time.Time             `json:"sentDate,omitempty"`
	InvoiceID      string                 `json:"invoiceId,omitempty"`
	Comment        string                 `json:"comment,omitempty"`
	Lines          []EstimateLineResponse `json:"lines"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
	Version        int                    `json:"version"`
}

// FromEstimate converts domain entity to response DTO.
func FromEstimate(doc *estimate.Estimate) *EstimateResponse {
	resp := &EstimateResponse{
		ID:             doc.ID.String(),
		Number:         doc.Number,
		Date:           doc.Date,
		Status:         doc.Status.String(),
		ClientID:       doc.ClientID.String(),
		HeaderDiscount: doc.HeaderDiscount,
		TotalNet:       doc.TotalNet,
		TotalTax:       doc.TotalTax,
		TotalGross:     doc.TotalGross,
		SentDate:       doc.SentDate,
		Comment:        doc.Comment,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
		Version:        doc.Version,
	}
	if doc.InvoiceID != nil {
		resp.InvoiceID = doc.InvoiceID.String()
	}

	resp.Lines = make([]EstimateLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		resp.Lines[i] = EstimateLineResponse{
			LineID:      line.LineID.String(),
			LineNo:      line.LineNo,
			Description: line.Description,
			LineType:    string(line.Type),
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TaxRate:     line.TaxRate,
			Discount:    line.Discount,
			Net:         line.Net,
			Tax:         line.Tax,
			Gross:       line.Gross,
			Note:        line.Note,
		}
	}

	return resp
}
