// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"autodf/internal/core/types"
	"autodf/internal/domain/reports"
	"autodf/internal/infrastructure/storage/postgres"
)

// Compile-time check.
var _ reports.Repository = (*ReportRepo)(nil)

// ReportRepo implements reports.Repository with SQL aggregation.
type ReportRepo struct {
	txManager *postgres.TxManager
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txManager: txManager}
}

// GetRevenueReport aggregates invoiced and collected amounts per year.
// Cancelled invoices are excluded from every aggregate.
func (r *ReportRepo) GetRevenueReport(ctx context.Context, filter reports.RevenueFilter) (*reports.RevenueReport, error) {
	fromDate, toDate := revenuePeriod(filter)

	query := `
		SELECT
			EXTRACT(YEAR FROM date)::int AS year,
			COUNT(*)::int AS invoice_count,
			COALESCE(SUM(total_net), 0) AS total_net,
			COALESCE(SUM(total_gross), 0) AS total_gross,
			COALESCE(SUM(paid_amount), 0) AS total_paid
		FROM doc_invoices
		WHERE organization_id = $1
		  AND status <> 'cancelled'
		  AND date >= $2 AND date <= $3
		GROUP BY EXTRACT(YEAR FROM date)
		ORDER BY year
	`

	querier := r.txManager.GetQuerier(ctx)

	var rows []struct {
		Year         int         `db:"year"`
		InvoiceCount int         `db:"invoice_count"`
		TotalNet     types.Money `db:"total_net"`
		TotalGross   types.Money `db:"total_gross"`
		TotalPaid    types.Money `db:"total_paid"`
	}
	if err := pgxscan.Select(ctx, querier, &rows, query, filter.OrganizationID, fromDate, toDate); err != nil {
		return nil, fmt.Errorf("revenue report: %w", err)
	}

	report := &reports.RevenueReport{
		Items:      make([]reports.RevenueItem, 0, len(rows)),
		TotalGross: types.Zero(),
		TotalPaid:  types.Zero(),
	}
	for _, row := range rows {
		report.Items = append(report.Items, reports.RevenueItem{
			Year:         row.Year,
			InvoiceCount: row.InvoiceCount,
			TotalNet:     row.TotalNet,
			TotalGross:   row.TotalGross,
			TotalPaid:    row.TotalPaid,
		})
		report.TotalGross = report.TotalGross.Add(row.TotalGross)
		report.TotalPaid = report.TotalPaid.Add(row.TotalPaid)
	}

	return report, nil
}

func revenuePeriod(filter reports.RevenueFilter) (time.Time, time.Time) {
	now := time.Now().UTC()
	fromDate := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	toDate := time.Date(now.Year(), 12, 31, 23, 59, 59, 0, time.UTC)
	if filter.FromDate != nil {
		fromDate = *filter.FromDate
	}
	if filter.ToDate != nil {
		toDate = *filter.ToDate
	}
	return fromDate, toDate
}

// GetStatusSummary breaks document counts down by status for both
// document kinds.
func (r *ReportRepo) GetStatusSummary(ctx context.Context, filter reports.StatusSummaryFilter) (*reports.StatusSummary, error) {
	query := `
		SELECT 'estimate' AS document_type, status, COUNT(*)::int AS count
		FROM doc_estimates
		WHERE organization_id = $1
		GROUP BY status
		UNION ALL
		SELECT 'invoice' AS document_type, status, COUNT(*)::int AS count
		FROM doc_invoices
		WHERE organization_id = $1
		GROUP BY status
		ORDER BY document_type, status
	`

	querier := r.txManager.GetQuerier(ctx)

	var items []reports.StatusCount
	if err := pgxscan.Select(ctx, querier, &items, query, filter.OrganizationID); err != nil {
		return nil, fmt.Errorf("status summary: %w", err)
	}

	return &reports.StatusSummary{Items: items}, nil
}

// GetOutstandingReport lists invoices still awaiting payment, most urgent
// due date first.
func (r *ReportRepo) GetOutstandingReport(ctx context.Context, filter reports.OutstandingFilter) (*reports.OutstandingReport, error) {
	conditions := `
		i.organization_id = $1
		AND i.status NOT IN ('draft', 'cancelled')
		AND i.remaining_amount > 0
	`
	if filter.OverdueOnly {
		conditions += ` AND i.due_date < NOW()`
	}

	querier := r.txManager.GetQuerier(ctx)

	summaryQuery := `
		SELECT COUNT(*)::int AS total_count,
		       COALESCE(SUM(i.remaining_amount), 0) AS total_outstanding
		FROM doc_invoices i
		WHERE ` + conditions

	var summary struct {
		TotalCount       int         `db:"total_count"`
		TotalOutstanding types.Money `db:"total_outstanding"`
	}
	if err := pgxscan.Get(ctx, querier, &summary, summaryQuery, filter.OrganizationID); err != nil {
		return nil, fmt.Errorf("outstanding summary: %w", err)
	}

	itemsQuery := `
		SELECT
			i.id AS invoice_id,
			i.number,
			c.name AS client_name,
			i.due_date,
			i.payment_status,
			i.total_gross,
			i.paid_amount,
			i.remaining_amount
		FROM doc_invoices i
		JOIN cat_clients c ON i.client_id = c.id
		WHERE ` + conditions + `
		ORDER BY i.due_date, i.number
		LIMIT $2 OFFSET $3
	`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var items []reports.OutstandingItem
	if err := pgxscan.Select(ctx, querier, &items, itemsQuery, filter.OrganizationID, limit, filter.Offset); err != nil {
		return nil, fmt.Errorf("outstanding report: %w", err)
	}

	return &reports.OutstandingReport{
		Items:            items,
		TotalCount:       summary.TotalCount,
		TotalOutstanding: summary.TotalOutstanding,
	}, nil
}
