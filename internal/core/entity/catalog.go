package entity

import (
	"context"

	"autodf/internal/core/apperror"
)

// Catalog is the base type for reference data.
// Examples: Clients, Users.
type Catalog struct {
	BaseCatalog

	// OrganizationID scopes the record to one tenant
	OrganizationID string `db:"organization_id" json:"organizationId"`

	// Code is a human-readable identifier (unique within tenant scope)
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(organizationID, code, name string) Catalog {
	return Catalog{
		BaseCatalog:    NewBaseCatalog(),
		OrganizationID: organizationID,
		Code:           code,
		Name:           name,
	}
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.OrganizationID == "" {
		return apperror.NewValidation("organization is required").
			WithDetail("field", "organizationId")
	}
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	// Code can be auto-generated, so it's optional at creation

	return nil
}
