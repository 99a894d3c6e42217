package client

import (
	"context"
	"fmt"
	"time"

	"autodf/internal/core/apperror"
	"autodf/internal/core/id"
	corenum "autodf/internal/core/numerator"
	"autodf/internal/core/tx"
	"autodf/internal/domain"
)

// codePrefix is used for auto-generated client codes (e.g., CLI-2026-001).
const codePrefix = "CLI"

// Service provides business logic for the Client catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Client] // Embedded for delegation
	repo                            Repository
	numerator                       corenum.Generator
	now                             func() time.Time
}

// NewService creates a new Client service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	gen corenum.Generator,
) *Service {
	base := domain.NewCatalogService[*Client](repo, txManager, "client")

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      gen,
		now:            time.Now,
	}

	// Register hooks for entity-specific logic
	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks before create.
func (s *Service) prepareForCreate(ctx context.Context, c *Client) error {
	// Generate code if not provided
	if c.Code == "" {
		cfg := corenum.DefaultConfig(codePrefix)
		code, err := s.numerator.NextReference(ctx, cfg, c.OrganizationID, s.now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		c.Code = code
	}

	// Check SIRET uniqueness
	if c.SIRET != "" {
		exists, err := s.checkSIRETExists(ctx, c.OrganizationID, c.SIRET, c.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewConflict("client with this SIRET already exists").
				WithDetail("siret", c.SIRET)
		}
	}

	return nil
}

// prepareForUpdate handles uniqueness checks before update.
func (s *Service) prepareForUpdate(ctx context.Context, c *Client) error {
	// Check SIRET uniqueness (exclude current record)
	if c.SIRET != "" {
		exists, err := s.checkSIRETExists(ctx, c.OrganizationID, c.SIRET, c.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewConflict("client with this SIRET already exists").
				WithDetail("siret", c.SIRET)
		}
	}

	return nil
}

// --- Entity-specific methods (not in base CatalogService) ---

// FindBySIRET retrieves a client by SIRET.
func (s *Service) FindBySIRET(ctx context.Context, organizationID, siret string) (*Client, error) {
	return s.repo.FindBySIRET(ctx, organizationID, siret)
}

// checkSIRETExists checks if SIRET is already used by another client.
func (s *Service) checkSIRETExists(ctx context.Context, organizationID, siret string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindBySIRET(ctx, organizationID, siret)
	if err != nil {
		// Not found is OK; other errors must be propagated (DB errors, timeouts, etc.).
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	// If found and it's a different record
	return existing.ID != excludeID, nil
}
