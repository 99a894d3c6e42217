package client

import (
	"context"

	"autodf/internal/core/id"
	"autodf/internal/domain"
)

// Repository defines the interface for Client persistence.
type Repository interface {
	domain.CatalogRepository[*Client]

	// FindBySIRET retrieves a client by SIRET (unique within tenant).
	FindBySIRET(ctx context.Context, organizationID, siret string) (*Client, error)

	// GetForUpdate retrieves a client with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Client, error)
}
