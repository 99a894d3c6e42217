// Package estimate provides the Estimate document repository contract.
package estimate

import (
	"context"
	"time"

	"autodf/internal/core/id"
	"autodf/internal/domain"
)

// Repository defines operations for estimate documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *Estimate) error
	GetByID(ctx context.Context, docID id.ID) (*Estimate, error)
	GetByNumber(ctx context.Context, organizationID, number string) (*Estimate, error)
	Update(ctx context.Context, doc *Estimate) error
	Delete(ctx context.Context, docID id.ID) error

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Estimate], error)

	// Numbering
	LastReference(ctx context.Context, organizationID, prefix string, year int) (string, error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*Estimate, error)
}

// ListFilter for filtering estimates.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	ClientID *id.ID
	Status   *Status
	DateFrom *time.Time
	DateTo   *time.Time
}
