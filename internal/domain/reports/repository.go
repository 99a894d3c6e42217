package reports

import (
	"context"
)

// Repository defines report data access interface.
type Repository interface {
	GetRevenueReport(ctx context.Context, filter RevenueFilter) (*RevenueReport, error)
	GetStatusSummary(ctx context.Context, filter StatusSummaryFilter) (*StatusSummary, error)
	GetOutstandingReport(ctx context.Context, filter OutstandingFilter) (*OutstandingReport, error)
}
