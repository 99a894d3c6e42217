package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"autodf/internal/core/apperror"
	"autodf/internal/core/id"
	"autodf/internal/domain"
	"autodf/internal/domain/documents/estimate"
	"autodf/internal/infrastructure/http/v1/dto"
)

// EstimateHandler handles estimate document endpoints.
type EstimateHandler struct {
	*BaseHandler
	service *estimate.Service
}

// NewEstimateHandler creates a new estimate handler.
func NewEstimateHandler(base *BaseHandler, service *estimate.Service) *EstimateHandler {
	return &EstimateHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /estimates
func (h *EstimateHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateEstimateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToEntity(h.GetOrganizationID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromEstimate(doc))
}

// Get handles GET /estimates/:id
func (h *EstimateHandler) Get(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromEstimate(doc))
}

// Update handles PATCH /estimates/:id
func (h *EstimateHandler) Update(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateEstimateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.Update(c.Request.Context(), docID, patch)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromEstimate(doc))
}

// SetStatus handles POST /estimates/:id/status
func (h *EstimateHandler) SetStatus(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.SetStatus(c.Request.Context(), docID, estimate.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromEstimate(doc))
}

// AddLine handles POST /estimates/:id/lines
func (h *EstimateHandler) AddLine(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.EstimateLineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.AddLine(c.Request.Context(), docID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromEstimate(doc))
}

// UpdateLine handles PUT /estimates/:id/lines/:lineId
func (h *EstimateHandler) UpdateLine(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.ParseID(c, "lineId")
	if !ok {
		return
	}

	var req dto.EstimateLineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.UpdateLine(c.Request.Context(), docID, lineID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromEstimate(doc))
}

// RemoveLine handles DELETE /estimates/:id/lines/:lineId
func (h *EstimateHandler) RemoveLine(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.ParseID(c, "lineId")
	if !ok {
		return
	}

	doc, err := h.service.RemoveLine(c.Request.Context(), docID, lineID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromEstimate(doc))
}

// Delete handles DELETE /estimates/:id
func (h *EstimateHandler) Delete(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// List handles GET /estimates
func (h *EstimateHandler) List(c *gin.Context) {
	filter, ok := h.parseListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.EstimateResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromEstimate(doc)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

func (h *EstimateHandler) parseListFilter(c *gin.Context) (estimate.ListFilter, bool) {
	filter := estimate.ListFilter{
		ListFilter: domain.ListFilter{
			Search:         c.Query("search"),
			Limit:          h.ParseIntQuery(c, "limit", 50),
			Offset:         h.ParseIntQuery(c, "offset", 0),
			OrderBy:        c.DefaultQuery("orderBy", "-date"),
			OrganizationID: h.GetOrganizationID(c),
		},
	}

	if clientID := c.Query("clientId"); clientID != "" {
		parsed, err := id.Parse(clientID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid clientId format"))
			return filter, false
		}
		filter.ClientID = &parsed
	}

	if status := c.Query("status"); status != "" {
		s := estimate.Status(status)
		filter.Status = &s
	}

	var ok bool
	if filter.DateFrom, ok = h.parseDateQuery(c, "dateFrom"); !ok {
		return filter, false
	}
	if filter.DateTo, ok = h.parseDateQuery(c, "dateTo"); !ok {
		return filter, false
	}

	return filter, true
}

// parseDateQuery parses an optional YYYY-MM-DD query parameter.
func (h *BaseHandler) parseDateQuery(c *gin.Context, key string) (*time.Time, bool) {
	val := c.Query(key)
	if val == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", val)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid date format, expected YYYY-MM-DD").
			WithDetail("param", key))
		return nil, false
	}
	return &parsed, true
}
