// Package reports provides reporting over estimates, invoices, and payments.
package reports

import (
	"time"

	"autodf/internal/core/id"
	"autodf/internal/core/types"
)

// --- Revenue Report ---

// RevenueFilter defines the scope of a revenue report.
type RevenueFilter struct {
	OrganizationID string

	// Period; zero values default to the current year
	FromDate *time.Time
	ToDate   *time.Time
}

// RevenueItem is one aggregated year of invoicing.
type RevenueItem struct {
	Year         int         `json:"year"`
	InvoiceCount int         `json:"invoiceCount"`
	TotalNet     types.Money `json:"totalNet"`
	TotalGross   types.Money `json:"totalGross"`
	TotalPaid    types.Money `json:"totalPaid"`
}

// RevenueReport aggregates invoiced and collected amounts per year.
// Cancelled invoices are excluded.
type RevenueReport struct {
	Items []RevenueItem `json:"items"`

	// Summary over the whole period
	TotalGross types.Money `json:"totalGross"`
	TotalPaid  types.Money `json:"totalPaid"`
}

// --- Status Summary ---

// StatusSummaryFilter scopes the status breakdown.
type StatusSummaryFilter struct {
	OrganizationID string
}

// StatusCount is one (document kind, status) bucket.
type StatusCount struct {
	DocumentType string `json:"documentType"` // "estimate" | "invoice"
	Status       string `json:"status"`
	Count        int    `json:"count"`
}

// StatusSummary breaks document counts down by status.
type StatusSummary struct {
	Items []StatusCount `json:"items"`
}

// --- Outstanding Report ---

// OutstandingFilter scopes the outstanding report.
type OutstandingFilter struct {
	OrganizationID string

	// OverdueOnly keeps only invoices past their due date
	OverdueOnly bool

	// Pagination
	Limit  int
	Offset int
}

// OutstandingItem is one unpaid or partially paid invoice.
type OutstandingItem struct {
	InvoiceID       id.ID       `json:"invoiceId"`
	Number          string      `json:"number"`
	ClientName      string      `json:"clientName"`
	DueDate         time.Time   `json:"dueDate"`
	PaymentStatus   string      `json:"paymentStatus"`
	TotalGross      types.Money `json:"totalGross"`
	PaidAmount      types.Money `json:"paidAmount"`
	RemainingAmount types.Money `json:"remainingAmount"`
}

// OutstandingReport lists invoices still awaiting payment.
type OutstandingReport struct {
	Items      []OutstandingItem `json:"items"`
	TotalCount int               `json:"totalCount"`

	// Sum of remaining amounts over the whole scope, not just the page
	TotalOutstanding types.Money `json:"totalOutstanding"`
}
