package handlers

import (
	"github.com/gin-gonic/gin"

	"autodf/internal/domain/catalogs/client"
	"autodf/internal/infrastructure/http/v1/dto"
)

// ClientCatalogHandler is a type alias to keep signatures readable.
type ClientCatalogHandler = CatalogHandler[
	*client.Client,
	dto.CreateClientRequest,
	dto.UpdateClientRequest,
]

// ClientHandler extends the generic catalog handler with client-specific
// lookups.
type ClientHandler struct {
	*ClientCatalogHandler
	service *client.Service
}

// NewClientHandler wires the generic catalog handler for the Client catalog.
func NewClientHandler(
	base *BaseHandler,
	service *client.Service,
) *ClientHandler {
	config := CatalogHandlerConfig[
		*client.Client,
		dto.CreateClientRequest,
		dto.UpdateClientRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "client",

		MapCreateDTO: func(req dto.CreateClientRequest, organizationID string) *client.Client {
			return req.ToEntity(organizationID)
		},

		MapUpdateDTO: func(req dto.UpdateClientRequest, existing *client.Client) *client.Client {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *client.Client) any {
			return dto.FromClient(entity)
		},
	}

	return &ClientHandler{
		ClientCatalogHandler: NewCatalogHandler(base, config),
		service:              service,
	}
}

// FindBySIRET handles GET /clients/by-siret/:siret
func (h *ClientHandler) FindBySIRET(c *gin.Context) {
	ctx := c.Request.Context()

	found, err := h.service.FindBySIRET(ctx, h.GetOrganizationID(c), c.Param("siret"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromClient(found))
}
