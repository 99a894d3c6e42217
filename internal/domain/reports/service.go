package reports

import (
	"context"
	"fmt"

	"autodf/internal/core/apperror"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetRevenue aggregates invoiced and collected amounts per year.
func (s *Service) GetRevenue(ctx context.Context, filter RevenueFilter) (*RevenueReport, error) {
	if filter.OrganizationID == "" {
		return nil, apperror.NewValidation("organization is required").
			WithDetail("field", "organizationId")
	}

	if filter.FromDate != nil && filter.ToDate != nil && filter.FromDate.After(*filter.ToDate) {
		return nil, apperror.NewValidation("fromDate must be before toDate")
	}

	report, err := s.repo.GetRevenueReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get revenue report: %w", err)
	}
	return report, nil
}

// GetStatusSummary breaks document counts down by status.
func (s *Service) GetStatusSummary(ctx context.Context, filter StatusSummaryFilter) (*StatusSummary, error) {
	if filter.OrganizationID == "" {
		return nil, apperror.NewValidation("organization is required").
			WithDetail("field", "organizationId")
	}

	summary, err := s.repo.GetStatusSummary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get status summary: %w", err)
	}
	return summary, nil
}

// GetOutstanding lists invoices still awaiting payment.
func (s *Service) GetOutstanding(ctx context.Context, filter OutstandingFilter) (*OutstandingReport, error) {
	if filter.OrganizationID == "" {
		return nil, apperror.NewValidation("organization is required").
			WithDetail("field", "organizationId")
	}

	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetOutstandingReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get outstanding report: %w", err)
	}
	return report, nil
}
