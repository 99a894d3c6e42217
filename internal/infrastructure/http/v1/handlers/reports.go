package handlers

import (
	"github.com/gin-gonic/gin"

	"autodf/internal/domain/reports"
	"autodf/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles reporting endpoints.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Revenue handles GET /reports/revenue
func (h *ReportsHandler) Revenue(c *gin.Context) {
	var req dto.RevenueReportRequest
	if !h.BindQuery(c, &req) {
		return
	}

	report, err := h.service.GetRevenue(c.Request.Context(), reports.RevenueFilter{
		OrganizationID: h.GetOrganizationID(c),
		FromDate:       req.FromDate,
		ToDate:         req.ToDate,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// StatusSummary handles GET /reports/status-summary
func (h *ReportsHandler) StatusSummary(c *gin.Context) {
	report, err := h.service.GetStatusSummary(c.Request.Context(), reports.StatusSummaryFilter{
		OrganizationID: h.GetOrganizationID(c),
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// Outstanding handles GET /reports/outstanding
func (h *ReportsHandler) Outstanding(c *gin.Context) {
	var req dto.OutstandingReportRequest
	if !h.BindQuery(c, &req) {
		return
	}

	report, err := h.service.GetOutstanding(c.Request.Context(), reports.OutstandingFilter{
		OrganizationID: h.GetOrganizationID(c),
		OverdueOnly:    req.OverdueOnly,
		Limit:          req.Limit,
		Offset:         req.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}
