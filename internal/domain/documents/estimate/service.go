// Package estimate provides the Estimate document service.
package estimate

import (
	"context"
	"fmt"
	"time"

	"autodf/internal/core/apperror"
	"autodf/internal/core/id"
	corenum "autodf/internal/core/numerator"
	"autodf/internal/core/tx"
	"autodf/internal/core/types"
	"autodf/internal/domain"
	"autodf/internal/domain/audit"
	"autodf/internal/domain/documents"
	"autodf/pkg/logger"
)

// numberAttempts caps regeneration retries when two requests race for the
// same reference number.
const numberAttempts = 3

// Patch carries a partial header update. Nil fields are untouched.
type Patch struct {
	ClientID       *id.ID
	Date           *time.Time
	HeaderDiscount *types.Rate
	Comment        *string
	Status         *Status
}

// Fields lists the names of the fields the patch changes.
func (p Patch) Fields() []string {
	var fields []string
	if p.ClientID != nil {
		fields = append(fields, "clientId")
	}
	if p.Date != nil {
		fields = append(fields, "date")
	}
	if p.HeaderDiscount != nil {
		fields = append(fields, "headerDiscount")
	}
	if p.Comment != nil {
		fields = append(fields, "comment")
	}
	if p.Status != nil {
		fields = append(fields, documents.FieldStatus)
	}
	return fields
}

// Service provides business operations for estimate documents.
type Service struct {
	repo      Repository
	txManager tx.Manager
	numerator corenum.Generator
	audit     audit.Recorder
	hooks     *domain.HookRegistry[*Estimate]
	now       func() time.Time
}

// NewService creates a new estimate service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	gen corenum.Generator,
	recorder audit.Recorder,
) *Service {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Service{
		repo:      repo,
		txManager: txManager,
		numerator: gen,
		audit:     recorder,
		hooks:     domain.NewHookRegistry[*Estimate](),
		now:       time.Now,
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Estimate] {
	return s.hooks
}

// SetClock replaces the time source. Tests only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create persists a new estimate with its lines, assigning the reference
// number on first save. A duplicate number (two requests racing for the
// same sequence) is retried with a freshly generated number.
func (s *Service) Create(ctx context.Context, doc *Estimate) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	audit.EnrichCreatedBy(ctx, &doc.CreatedBy, &doc.UpdatedBy)

	doc.RecalculateTotals()
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	autoNumbered := doc.Number == ""

	var lastErr error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		if doc.Number == "" {
			number, err := s.nextNumber(ctx, doc)
			if err != nil {
				return err
			}
			doc.Number = number
		}

		lastErr = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
			if err := s.repo.Create(txCtx, doc); err != nil {
				return err
			}
			if err := s.repo.SaveLines(txCtx, doc.ID, doc.Lines); err != nil {
				return fmt.Errorf("save lines: %w", err)
			}
			return s.audit.LogChange(txCtx, "estimate", doc.ID, audit.ActionCreate, map[string]any{
				"number": doc.Number,
				"client": doc.ClientID,
			})
		})

		if lastErr == nil {
			break
		}
		if autoNumbered && apperror.IsDuplicateReference(lastErr) {
			doc.Number = ""
			continue
		}
		return lastErr
	}
	if lastErr != nil {
		return lastErr
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "estimate created",
		"id", doc.ID,
		"number", doc.Number)

	return nil
}

func (s *Service) nextNumber(ctx context.Context, doc *Estimate) (string, error) {
	cfg := corenum.DefaultConfig(NumberPrefix)
	period := doc.Date
	if period.IsZero() {
		period = s.now()
	}
	number, err := s.numerator.NextReference(ctx, cfg, doc.OrganizationID, period)
	if err != nil {
		return "", fmt.Errorf("generate number: %w", err)
	}
	return number, nil
}

// GetByID retrieves an estimate with its lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Estimate, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// Update applies a header patch. Outside draft, only a status-only patch
// passes the guard. Header discount changes retrigger total aggregation.
func (s *Service) Update(ctx context.Context, docID id.ID, patch Patch) (*Estimate, error) {
	var doc *Estimate
	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(txCtx, docID)
		if err != nil {
			return err
		}

		if err := documents.EnsureMutable(doc.Status, patch.Fields()); err != nil {
			return err
		}

		lines, err := s.repo.GetLines(txCtx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		doc.Lines = lines

		if err := s.applyPatch(txCtx, doc, patch); err != nil {
			return err
		}

		if err := doc.Validate(txCtx); err != nil {
			return err
		}

		audit.EnrichUpdatedBy(txCtx, &doc.UpdatedBy)
		doc.Touch()
		return s.repo.Update(txCtx, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) applyPatch(ctx context.Context, doc *Estimate, patch Patch) error {
	if patch.ClientID != nil {
		doc.ClientID = *patch.ClientID
	}
	if patch.Date != nil {
		doc.Date = *patch.Date
	}
	if patch.Comment != nil {
		doc.Comment = *patch.Comment
	}
	if patch.HeaderDiscount != nil {
		doc.HeaderDiscount = *patch.HeaderDiscount
		doc.RecalculateTotals()
	}
	if patch.Status != nil {
		return s.applyStatus(ctx, doc, *patch.Status)
	}
	return nil
}

func (s *Service) applyStatus(ctx context.Context, doc *Estimate, next Status) error {
	if !next.Valid() {
		return apperror.NewValidation("invalid estimate status").
			WithDetail("field", "status").
			WithDetail("value", string(next))
	}
	if doc.Status == next {
		return nil
	}

	prev := doc.Status
	doc.Status = next
	if next == StatusSent && doc.SentDate == nil {
		sent := s.now().UTC()
		doc.SentDate = &sent
	}

	return s.audit.LogChange(ctx, "estimate", doc.ID, audit.ActionStatusChange, map[string]any{
		"from": string(prev),
		"to":   string(next),
	})
}

// SetStatus changes only the document status.
func (s *Service) SetStatus(ctx context.Context, docID id.ID, status Status) (*Estimate, error) {
	return s.Update(ctx, docID, Patch{Status: &status})
}

// AddLine appends a line to a draft estimate and rolls the totals forward.
func (s *Service) AddLine(ctx context.Context, docID id.ID, input LineInput) (*Estimate, error) {
	return s.mutateLines(ctx, docID, func(doc *Estimate) error {
		line, err := NewLine(input)
		if err != nil {
			return err
		}
		doc.AddLine(line)
		return nil
	})
}

// UpdateLine replaces the input values of an existing line.
func (s *Service) UpdateLine(ctx context.Context, docID, lineID id.ID, input LineInput) (*Estimate, error) {
	return s.mutateLines(ctx, docID, func(doc *Estimate) error {
		if _, ok := doc.FindLine(lineID); !ok {
			return apperror.NewNotFound("estimate line", lineID.String())
		}
		line, err := NewLine(input)
		if err != nil {
			return err
		}
		line.LineID = lineID
		doc.ReplaceLine(line)
		return nil
	})
}

// RemoveLine deletes a line and rolls the totals forward.
func (s *Service) RemoveLine(ctx context.Context, docID, lineID id.ID) (*Estimate, error) {
	return s.mutateLines(ctx, docID, func(doc *Estimate) error {
		if !doc.RemoveLine(lineID) {
			return apperror.NewNotFound("estimate line", lineID.String())
		}
		return nil
	})
}

// mutateLines runs a line mutation inside one transaction: guard check,
// mutation, total recomputation, and persistence of both document and lines.
func (s *Service) mutateLines(ctx context.Context, docID id.ID, mutate func(doc *Estimate) error) (*Estimate, error) {
	var doc *Estimate
	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(txCtx, docID)
		if err != nil {
			return err
		}

		if err := documents.EnsureLinesMutable(doc.Status); err != nil {
			return err
		}

		lines, err := s.repo.GetLines(txCtx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		doc.Lines = lines

		if err := mutate(doc); err != nil {
			return err
		}

		audit.EnrichUpdatedBy(txCtx, &doc.UpdatedBy)
		doc.Touch()
		if err := s.repo.Update(txCtx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return s.repo.SaveLines(txCtx, doc.ID, doc.Lines)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes an estimate with its lines. The conversion link is
// checked under the row lock, so a concurrent conversion blocks the delete.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		doc, err := s.repo.GetForUpdate(txCtx, docID)
		if err != nil {
			return err
		}
		if doc.IsConverted() {
			return apperror.NewConflict("estimate was converted to an invoice and cannot be deleted").
				WithDetail("invoiceId", doc.InvoiceID)
		}

		if err := s.repo.Delete(txCtx, docID); err != nil {
			return err
		}
		return s.audit.LogChange(txCtx, "estimate", docID, audit.ActionDelete, nil)
	})
}

// List retrieves estimates with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Estimate], error) {
	return s.repo.List(ctx, filter)
}
