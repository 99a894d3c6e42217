package dto

import (
	"autodf/internal/domain/catalogs/client"
)

// --- Request DTOs ---

// CreateClientRequest is the request body for creating a client.
type CreateClientRequest struct {
	Code        string      `json:"code"`
	Type        client.Type `json:"type" binding:"required"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	CompanyName string      `json:"companyName"`
	SIRET       string      `json:"siret"`
	Email       string      `json:"email" binding:"required"`
	Mobile      string      `json:"mobile"`
	Address     string      `json:"address" binding:"required"`
	City        string      `json:"city" binding:"required"`
	PostalCode  string      `json:"postalCode" binding:"required"`
	Comment     string      `json:"comment"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateClientRequest) ToEntity(organizationID string) *client.Client {
	c := client.New(organizationID, r.Type)
	c.Code = r.Code
	c.FirstName = r.FirstName
	c.LastName = r.LastName
	c.CompanyName = r.CompanyName
	c.SIRET = r.SIRET
	c.Email = r.Email
	c.Mobile = r.Mobile
	c.Address = r.Address
	c.City = r.City
	c.PostalCode = r.PostalCode
	c.Comment = r.Comment
	return c
}

// UpdateClientRequest is the request body for updating a client.
type UpdateClientRequest struct {
	Code        string      `json:"code"`
	Type        client.Type `json:"type" binding:"required"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	CompanyName string      `json:"companyName"`
	SIRET       string      `json:"siret"`
	Email       string      `json:"email" binding:"required"`
	Mobile      string      `json:"mobile"`
	Address     string      `json:"address" binding:"required"`
	City        string      `json:"city" binding:"required"`
	PostalCode  string      `json:"postalCode" binding:"required"`
	Comment     string      `json:"comment"`
	Version     int         `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateClientRequest) ApplyTo(c *client.Client) {
	c.Code = r.Code
	c.Type = r.Type
	c.FirstName = r.FirstName
	c.LastName = r.LastName
	c.CompanyName = r.CompanyName
	c.SIRET = r.SIRET
	c.Email = r.Email
	c.Mobile = r.Mobile
	c.Address = r.Address
	c.City = r.City
	c.PostalCode = r.PostalCode
	c.Comment = r.Comment
	c.Version = r.Version
}

// --- Response DTOs ---

// ClientResponse is the response body for a client.
type ClientResponse struct {
	ID           string      `json:"id"`
	Code         string      `json:"code"`
	Name         string      `json:"name"`
	Type         client.Type `json:"type"`
	FirstName    string      `json:"firstName,omitempty"`
	LastName     string      `json:"lastName,omitempty"`
	CompanyName  string      `json:"companyName,omitempty"`
	SIRET        string      `json:"siret,omitempty"`
	Email        string      `json:"email"`
	Mobile       string      `json:"mobile,omitempty"`
	Address      string      `json:"address"`
	City         string      `json:"city"`
	PostalCode   string      `json:"postalCode"`
	Comment      string      `json:"comment,omitempty"`
	DeletionMark bool        `json:"deletionMark"`
	Version      int         `json:"version"`
}

// FromClient creates response DTO from domain entity.
func FromClient(c *client.Client) *ClientResponse {
	return &ClientResponse{
		ID:           c.ID.String(),
		Code:         c.Code,
		Name:         c.Name,
		Type:         c.Type,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		CompanyName:  c.CompanyName,
		SIRET:        c.SIRET,
		Email:        c.Email,
		Mobile:       c.Mobile,
		Address:      c.Address,
		City:         c.City,
		PostalCode:   c.PostalCode,
		Comment:      c.Comment,
		DeletionMark: c.DeletionMark,
		Version:      c.Version,
	}
}
