package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"autodf/internal/core/apperror"
	"autodf/internal/core/id"
	"autodf/internal/core/types"
	"autodf/internal/domain/documents/invoice"
)

// --- Request DTOs ---

// InvoiceLineRequest represents a line in create/update requests.
type InvoiceLineRequest struct {
	Description string          `json:"description" binding:"required"`
	LineType    string          `json:"lineType,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	Discount    decimal.Decimal `json:"discount"`
	Note        string          `json:"note,omitempty"`
}

// ToInput converts the line request to domain input.
func (r *InvoiceLineRequest) ToInput() invoice.LineInput {
	return invoice.LineInput{
		Description: r.Description,
		Type:        invoice.LineType(r.LineType),
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		TaxRate:     r.TaxRate,
		Discount:    r.Discount,
		Note:        r.Note,
	}
}

// CreateInvoiceRequest represents a request to create an invoice.
type CreateInvoiceRequest struct {
	ClientID       string               `json:"clientId" binding:"required"`
	Date           *time.Time           `json:"date,omitempty"`
	DueDate        *time.Time           `json:"dueDate,omitempty"`
	HeaderDiscount *decimal.Decimal     `json:"headerDiscount,omitempty"`
	Comment        string               `json:"comment,omitempty"`
	Lines          []InvoiceLineRequest `json:"lines,omitempty"`
}

// ToEntity converts request to domain entity.
func (r *CreateInvoiceRequest) ToEntity(organizationID string) (*invoice.Invoice, error) {
	clientID, err := id.Parse(r.ClientID)
	if err != nil {
		return nil, apperror.NewValidation("invalid client id").
			WithDetail("field", "clientId")
	}

	doc := invoice.New(organizationID, clientID)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.DueDate != nil {
		doc.DueDate = *r.DueDate
	}
	if r.HeaderDiscount != nil {
		doc.HeaderDiscount = *r.HeaderDiscount
	}
	doc.Comment = r.Comment

	for _, lr := range r.Lines {
		line, err := invoice.NewLine(lr.ToInput())
		if err != nil {
			return nil, err
		}
		doc.AddLine(line)
	}

	return doc, nil
}

// UpdateInvoiceRequest represents a partial header update.
// Nil fields are left untouched.
type UpdateInvoiceRequest struct {
	ClientID       *string          `json:"clientId,omitempty"`
	Date           *time.Time       `json:"date,omitempty"`
	DueDate        *time.Time       `json:"dueDate,omitempty"`
	HeaderDiscount *decimal.Decimal `json:"headerDiscount,omitempty"`
	Comment        *string          `json:"comment,omitempty"`
	Status         *string          `json:"status,omitempty"`
}

// ToPatch converts the request to a domain patch.
func (r *UpdateInvoiceRequest) ToPatch() (invoice.Patch, error) {
	var patch invoice.Patch

	if r.ClientID != nil {
		clientID, err := id.Parse(*r.ClientID)
		if err != nil {
			return patch, apperror.NewValidation("invalid client id").
				WithDetail("field", "clientId")
		}
		patch.ClientID = &clientID
	}
	patch.Date = r.Date
	patch.DueDate = r.DueDate
	if r.HeaderDiscount != nil {
		rate := types.Rate(*r.HeaderDiscount)
		patch.HeaderDiscount = &rate
	}
	patch.Comment = r.Comment
	if r.Status != nil {
		status := invoice.Status(*r.Status)
		patch.Status = &status
	}

	return patch, nil
}

// RecordPaymentRequest represents a payment to add to the ledger.
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Date      *time.Time      `json:"date,omitempty"`
	Method    string          `json:"method" binding:"required"`
	Reference string          `json:"reference,omitempty"`
}

// ToInput converts the request to domain input.
func (r *RecordPaymentRequest) ToInput() invoice.PaymentInput {
	in := invoice.PaymentInput{
		Amount:    r.Amount,
		Method:    invoice.PaymentMethod(r.Method),
		Reference: r.Reference,
	}
	if r.Date != nil {
		in.Date = *r.Date
	}
	return in
}

// ConvertEstimateRequest identifies the estimate to convert.
type ConvertEstimateRequest struct {
	EstimateID string `json:"estimateId" binding:"required"`
}

// --- Response DTOs ---

// InvoiceLineResponse represents a line in API responses.
type InvoiceLineResponse struct {
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

// PaymentResponse represents one ledger entry in API responses.
type PaymentResponse struct {
	PaymentID  string          `json:"paymentId"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	RecordedBy string          `json:"recordedBy,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// InvoiceResponse represents an invoice in API responses.
type InvoiceResponse struct {
	ID              string                `json:"id"`
	Number          string                `json:"number"`
	Date            time.Time             `json:"date"`
	DueDate         time.Time             `json:"dueDate"`
	Status          string                `json:"status"`
	PaymentStatus   string                `json:"paymentStatus"`
	ClientID        string                `json:"clientId"`
	EstimateID      string                `json:"estimateId,omitempty"`
	HeaderDiscount  decimal.Decimal       `json:"headerDiscount"`
	TotalNet        decimal.Decimal       `json:"totalNet"`
	TotalTax        decimal.Decimal       `json:"totalTax"`
	TotalGross      decimal.Decimal       `json:"totalGross"`
	PaidAmount      decimal.Decimal       `json:"paidAmount"`
	RemainingAmount decimal.Decimal       `json:"remainingAmount"`
	SentDate        *time.Time            `json:"sentDate,omitempty"`
	Comment         string                `json:"comment,omitempty"`
	Lines           []InvoiceLineResponse `json:"lines"`
	Payments        []PaymentResponse     `json:"payments"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
	Version         int                   `json:"version"`
}

// FromInvoice converts domain entity to response DTO.
func FromInvoice(doc *invoice.Invoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:              doc.ID.String(),
		Number:          doc.Number,
		Date:            doc.Date,
		DueDate:         doc.DueDate,
		Status:          doc.Status.String(),
		PaymentStatus:   string(doc.PaymentStatus),
		ClientID:        doc.ClientID.String(),
		HeaderDiscount:  doc.HeaderDiscount,
		TotalNet:        doc.TotalNet,
		TotalTax:        doc.TotalTax,
		TotalGross:      doc.TotalGross,
		PaidAmount:      doc.PaidAmount,
		RemainingAmount: doc.RemainingAmount,
		SentDate:        doc.SentDate,
		Comment:         doc.Comment,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
		Version:         doc.Version,
	}
	if doc.EstimateID != nil {
		resp.EstimateID = doc.EstimateID.String()
	}

	resp.Lines = make([]InvoiceLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		resp.Lines[i] = InvoiceLineResponse{
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

	resp.Payments = make([]PaymentResponse, len(doc.Payments))
	for i, p := range doc.Payments {
		resp.Payments[i] = PaymentResponse{
			PaymentID:  p.PaymentID.String(),
			Amount:     p.Amount,
			Date:       p.Date,
			Method:     string(p.Method),
			Reference:  p.Reference,
			RecordedBy: p.RecordedBy,
			CreatedAt:  p.CreatedAt,
		}
	}

	return resp
}
