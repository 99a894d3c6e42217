package dto

import (
	"time"
)

// --- Revenue Report ---

// RevenueReportRequest represents the revenue report query.
type RevenueReportRequest struct {
	FromDate *time.Time `form:"fromDate" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"toDate" time_format:"2006-01-02"`
}

// --- Outstanding Report ---

// OutstandingReportRequest represents the outstanding report query.
type OutstandingReportRequest struct {
	OverdueOnly bool `form:"overdueOnly"`
	Limit       int  `form:"limit"`
	Offset      int  `form:"offset"`
}
