// Package client provides the Client catalog.
// Clients are the parties estimates and invoices are issued to: either
// private individuals or registered businesses.
package client

import (
	"context"
	"regexp"
	"strings"

	"autodf/internal/core/apperror"
	"autodf/internal/core/entity"
)

// Pre-compiled regex patterns for validation (performance optimization)
var (
	siretRE = regexp.MustCompile(`^\d{14}$`)
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Type defines the kind of client.
type Type string

const (
	TypeIndividual Type = "individual" // private person
	TypeBusiness   Type = "business"   // registered company
)

// Client represents a billing recipient.
type Client struct {
	entity.Catalog

	// Type defines whether this is an individual or a business
	Type Type `db:"type" json:"type"`

	// FirstName and LastName identify an individual client
	FirstName string `db:"first_name" json:"firstName,omitempty"`
	LastName  string `db:"last_name" json:"lastName,omitempty"`

	// CompanyName is the registered name (business clients)
	CompanyName string `db:"company_name" json:"companyName,omitempty"`

	// SIRET is the 14-digit French business registration number
	SIRET string `db:"siret" json:"siret,omitempty"`

	// Email is the primary contact email
	Email string `db:"email" json:"email"`

	// Mobile is the contact phone
	Mobile string `db:"mobile" json:"mobile,omitempty"`

	// Postal address
	Address    string `db:"address" json:"address"`
	City       string `db:"city" json:"city"`
	PostalCode string `db:"postal_code" json:"postalCode"`

	// Comment is a free-form note
	Comment string `db:"comment" json:"comment,omitempty"`
}

// New creates a new Client with required fields.
// The catalog Name is derived from the client identity.
func New(organizationID string, clientType Type) *Client {
	c := &Client{
		Catalog: entity.NewCatalog(organizationID, "", ""),
		Type:    clientType,
	}
	return c
}

// DisplayName returns the name used on documents:
// "First Last" for individuals, the company name for businesses.
func (c *Client) DisplayName() string {
	if c.Type == TypeBusiness {
		return c.CompanyName
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// SyncName refreshes the catalog Name from the client identity.
// Call before persisting so list views stay consistent.
func (c *Client) SyncName() {
	c.Name = c.DisplayName()
}

// Validate implements entity.Validatable interface.
func (c *Client) Validate(ctx context.Context) error {
	c.SyncName()

	// Base catalog validation
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidType(c.Type) {
		return apperror.NewValidation("invalid client type").
			WithDetail("field", "type").
			WithDetail("value", string(c.Type))
	}

	switch c.Type {
	case TypeIndividual:
		if c.FirstName == "" || c.LastName == "" {
			return apperror.NewValidation("first name and last name are required for an individual client").
				WithDetail("field", "firstName")
		}
		if c.SIRET != "" {
			return apperror.NewValidation("an individual client cannot have a SIRET").
				WithDetail("field", "siret")
		}
	case TypeBusiness:
		if c.CompanyName == "" {
			return apperror.NewValidation("company name is required for a business client").
				WithDetail("field", "companyName")
		}
		if c.SIRET == "" {
			return apperror.NewValidation("a business client must have a SIRET").
				WithDetail("field", "siret")
		}
	}

	// SIRET format (if present)
	if c.SIRET != "" && !siretRE.MatchString(c.SIRET) {
		return apperror.NewValidation("SIRET must be exactly 14 digits").
			WithDetail("field", "siret")
	}

	// Contact and address are mandatory for invoicing
	if c.Email == "" {
		return apperror.NewValidation("email is required").
			WithDetail("field", "email")
	}
	if !emailRE.MatchString(c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}
	if c.Address == "" {
		return apperror.NewValidation("address is required").
			WithDetail("field", "address")
	}
	if c.City == "" {
		return apperror.NewValidation("city is required").
			WithDetail("field", "city")
	}
	if c.PostalCode == "" {
		return apperror.NewValidation("postal code is required").
			WithDetail("field", "postalCode")
	}

	return nil
}

func isValidType(t Type) bool {
	switch t {
	case TypeIndividual, TypeBusiness:
		return true
	}
	return false
}
