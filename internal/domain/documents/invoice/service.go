// Package invoice provides the Invoice document service.
package invoice

import (
	"context"
	"fmt"
	"time"

	"autodf/internal/core/apperror"
	appctx "autodf/internal/core/context"
	"autodf/internal/core/id"
	corenum "autodf/internal/core/numerator"
	"autodf/internal/core/tx"
	"autodf/internal/core/types"
	"autodf/internal/domain"
	"autodf/internal/domain/audit"
	"autodf/internal/domain/documents"
	"autodf/internal/domain/documents/estimate"
	"autodf/pkg/logger"
)

// numberAttempts caps regeneration retries when two requests race for the
// same reference number.
const numberAttempts = 3

// Patch carries a partial header update. Nil fields are untouched.
type Patch struct {
	ClientID       *id.ID
	Date           *time.Time
	DueDate        *time.Time
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
	if p.DueDate != nil {
		fields = append(fields, "dueDate")
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

// PaymentInput carries a payment to record.
type PaymentInput struct {
	Amount    types.Money
	Date      time.Time
	Method    PaymentMethod
	Reference string
}

// Service provides business operations for invoice documents.
type Service struct {
	repo         Repository
	estimateRepo estimate.Repository
	txManager    tx.Manager
	numerator    corenum.Generator
	audit        audit.Recorder
	hooks        *domain.HookRegistry[*Invoice]
	cfg          Config
	now          func() time.Time
}

// NewService creates a new invoice service.
// estimateRepo backs estimate conversion and may not be nil.
func NewService(
	repo Repository,
	estimateRepo estimate.Repository,
	txManager tx.Manager,
	gen corenum.Generator,
	recorder audit.Recorder,
	cfg Config,
) *Service {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	if cfg.DueDays <= 0 {
		cfg.DueDays = DefaultDueDays
	}
	return &Service{
		repo:         repo,
		estimateRepo: estimateRepo,
		txManager:    txManager,
		numerator:    gen,
		audit:        recorder,
		hooks:        domain.NewHookRegistry[*Invoice](),
		cfg:          cfg,
		now:          time.Now,
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Invoice] {
	return s.hooks
}

// SetClock replaces the time source. Tests only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create persists a new invoice with its lines, assigning the reference
// number on first save. A duplicate number is retried with a freshly
// generated one.
func (s *Service) Create(ctx context.Context, doc *Invoice) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	audit.EnrichCreatedBy(ctx, &doc.CreatedBy, &doc.UpdatedBy)

	if doc.DueDate.IsZero() {
		doc.DueDate = doc.Date.AddDate(0, 0, s.cfg.DueDays)
	}

	doc.RecalculateTotals(s.now())
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
			return s.audit.LogChange(txCtx, "invoice", doc.ID, audit.ActionCreate, map[string]any{
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

	logger.Info(ctx, "invoice created",
		"id", doc.ID,
		"number", doc.Number)

	return nil
}

func (s *Service) nextNumber(ctx context.Context, doc *Invoice) (string, error) {
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

// GetByID retrieves an invoice with its lines and payments.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Invoice, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	if err := s.loadParts(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) loadParts(ctx context.Context, doc *Invoice) error {
	lines, err := s.repo.GetLines(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	payments, err := s.repo.GetPayments(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("get payments: %w", err)
	}
	doc.Payments = payments
	return nil
}

// Update applies a header patch. Outside draft, only a status-only patch
// passes the guard. Discount and due date changes rederive the dependent
// aggregates.
func (s *Service) Update(ctx context.Context, docID id.ID, patch Patch) (*Invoice, error) {
	var doc *Invoice
	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(txCtx, docID)
		if err != nil {
			return err
		}

		if err := documents.EnsureMutable(doc.Status, patch.Fields()); err != nil {
			return err
		}

		if err := s.loadParts(txCtx, doc); err != nil {
			return err
		}

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

func (s *Service) applyPatch(ctx context.Context, doc *Invoice, patch Patch) error {
	if patch.ClientID != nil {
		doc.ClientID = *patch.ClientID
	}
	if patch.Date != nil {
		doc.Date = *patch.Date
	}
	if patch.DueDate != nil {
		doc.DueDate = *patch.DueDate
		doc.RecomputeSettlement(s.now())
	}
	if patch.Comment != nil {
		doc.Comment = *patch.Comment
	}
	if patch.HeaderDiscount != nil {
		doc.HeaderDiscount = *patch.HeaderDiscount
		doc.RecalculateTotals(s.now())
	}
	if patch.Status != nil {
		return s.applyStatus(ctx, doc, *patch.Status)
	}
	return nil
}

func (s *Service) applyStatus(ctx context.Context, doc *Invoice, next Status) error {
	if !next.Valid() {
		return apperror.NewValidation("invalid invoice status").
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

	return s.audit.LogChange(ctx, "invoice", doc.ID, audit.ActionStatusChange, map[string]any{
		"from": string(prev),
		"to":   string(next),
	})
}

// SetStatus changes only the document status.
func (s *Service) SetStatus(ctx context.Context, docID id.ID, status Status) (*Invoice, error) {
	return s.Update(ctx, docID, Patch{Status: &status})
}

// AddLine appends a line to a draft invoice and rolls the totals forward.
func (s *Service) AddLine(ctx context.Context, docID id.ID, input LineInput) (*Invoice, error) {
	return s.mutateLines(ctx, docID, func(doc *Invoice) error {
		line, err := NewLine(input)
		if err != nil {
			return err
		}
		doc.AddLine(line)
		return nil
	})
}

// UpdateLine replaces the input values of an existing line.
func (s *Service) UpdateLine(ctx context.Context, docID, lineID id.ID, input LineInput) (*Invoice, error) {
	return s.mutateLines(ctx, docID, func(doc *Invoice) error {
		if _, ok := doc.FindLine(lineID); !ok {
			return apperror.NewNotFound("invoice line", lineID.String())
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
func (s *Service) RemoveLine(ctx context.Context, docID, lineID id.ID) (*Invoice, error) {
	return s.mutateLines(ctx, docID, func(doc *Invoice) error {
		if !doc.RemoveLine(lineID) {
			return apperror.NewNotFound("invoice line", lineID.String())
		}
		return nil
	})
}

// mutateLines runs a line mutation inside one transaction: guard check,
// mutation, total and settlement recomputation, persistence.
func (s *Service) mutateLines(ctx context.Context, docID id.ID, mutate func(doc *Invoice) error) (*Invoice, error) {
	var doc *Invoice
	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(txCtx, docID)
		if err != nil {
			return err
		}

		if err := documents.EnsureLinesMutable(doc.Status); err != nil {
			return err
		}

		if err := s.loadParts(txCtx, doc); err != nil {
			return err
		}

		if err := mutate(doc); err != nil {
			return err
		}
		doc.RecalculateTotals(s.now())

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

// RecordPayment appends a ledger entry and rederives the settlement state
// atomically with the insert. Payments are accepted in any status except
// cancelled; the amount must be strictly positive.
func (s *Service) RecordPayment(ctx context.Context, docID id.ID, input PaymentInput) (*Invoice, error) {
	if !input.Amount.IsPositive() {
		return nil, apperror.NewInvalidPaymentAmount(input.Amount.String())
	}
	if !validPaymentMethod(input.Method) {
		return nil, apperror.NewValidation("invalid payment method").
			WithDetail("field", "method").
			WithDetail("value", string(input.Method))
	}

	var doc *Invoice
	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(txCtx, docID)
		if err != nil {
			return err
		}
		if doc.Status == StatusCancelled {
			return apperror.NewConflict("cannot record a payment on a cancelled invoice").
				WithDetail("status", string(doc.Status))
		}

		if err := s.loadParts(txCtx, doc); err != nil {
			return err
		}

		if !s.cfg.AllowOverpayment {
			if doc.PaidAmount.Add(input.Amount).GreaterThan(doc.TotalGross) {
				return apperror.NewConflict("payment exceeds remaining amount").
					WithDetail("remaining", doc.RemainingAmount.String()).
					WithDetail("amount", input.Amount.String())
			}
		}

		date := input.Date
		if date.IsZero() {
			date = s.now().UTC()
		}

		payment := Payment{
			PaymentID:  id.New(),
			Amount:     input.Amount,
			Date:       date,
			Method:     input.Method,
			Reference:  input.Reference,
			RecordedBy: appctx.GetUserID(txCtx),
			CreatedAt:  s.now().UTC(),
		}

		if err := s.repo.AddPayment(txCtx, doc.ID, payment); err != nil {
			return fmt.Errorf("add payment: %w", err)
		}

		doc.Payments = append(doc.Payments, payment)
		doc.RecomputeSettlement(s.now())

		doc.Touch()
		if err := s.repo.Update(txCtx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		return s.audit.LogChange(txCtx, "invoice", doc.ID, audit.ActionPayment, map[string]any{
			"amount":        payment.Amount.String(),
			"method":        string(payment.Method),
			"paymentStatus": string(doc.PaymentStatus),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment recorded",
		"invoice", doc.Number,
		"amount", input.Amount.String(),
		"paymentStatus", string(doc.PaymentStatus))

	return doc, nil
}

// ConvertFromEstimate creates a draft invoice from an accepted estimate,
// copying its lines and header discount. Both sides record the linkage;
// a second conversion of the same estimate is rejected.
func (s *Service) ConvertFromEstimate(ctx context.Context, estimateID id.ID) (*Invoice, error) {
	var doc *Invoice

	var lastErr error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		lastErr = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
			est, err := s.estimateRepo.GetForUpdate(txCtx, estimateID)
			if err != nil {
				return err
			}
			if est.Status != estimate.StatusAccepted {
				return apperror.NewConflict("only an accepted estimate can be converted").
					WithDetail("status", string(est.Status))
			}
			if est.IsConverted() {
				return apperror.NewConflict("estimate was already converted").
					WithDetail("invoiceId", est.InvoiceID)
			}

			estLines, err := s.estimateRepo.GetLines(txCtx, est.ID)
			if err != nil {
				return fmt.Errorf("get estimate lines: %w", err)
			}

			doc = New(est.OrganizationID, est.ClientID)
			doc.Date = s.now().UTC()
			doc.DueDate = doc.Date.AddDate(0, 0, s.cfg.DueDays)
			doc.HeaderDiscount = est.HeaderDiscount
			doc.Comment = est.Comment
			doc.EstimateID = &est.ID
			audit.EnrichCreatedBy(txCtx, &doc.CreatedBy, &doc.UpdatedBy)

			for _, el := range estLines {
				line, err := NewLine(LineInput{
					Description: el.Description,
					Type:        LineType(el.Type),
					Quantity:    el.Quantity,
					UnitPrice:   el.UnitPrice,
					TaxRate:     el.TaxRate,
					Discount:    el.Discount,
					Note:        el.Note,
				})
				if err != nil {
					return err
				}
				doc.AddLine(line)
			}
			doc.RecalculateTotals(s.now())

			number, err := s.nextNumber(txCtx, doc)
			if err != nil {
				return err
			}
			doc.Number = number

			if err := s.repo.Create(txCtx, doc); err != nil {
				return err
			}
			if err := s.repo.SaveLines(txCtx, doc.ID, doc.Lines); err != nil {
				return fmt.Errorf("save lines: %w", err)
			}

			est.InvoiceID = &doc.ID
			est.Touch()
			if err := s.estimateRepo.Update(txCtx, est); err != nil {
				return fmt.Errorf("link estimate: %w", err)
			}

			return s.audit.LogChange(txCtx, "invoice", doc.ID, audit.ActionConvert, map[string]any{
				"estimateId": est.ID,
				"number":     doc.Number,
			})
		})

		if lastErr == nil {
			break
		}
		if !apperror.IsDuplicateReference(lastErr) {
			return nil, lastErr
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}

	logger.Info(ctx, "estimate converted to invoice",
		"estimate", estimateID,
		"invoice", doc.Number)

	return doc, nil
}

// Delete removes an invoice with its lines. The payment ledger is checked
// under the row lock, so a payment recorded concurrently blocks the delete.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetForUpdate(txCtx, docID); err != nil {
			return err
		}
		payments, err := s.repo.GetPayments(txCtx, docID)
		if err != nil {
			return fmt.Errorf("get payments: %w", err)
		}
		if len(payments) > 0 {
			return apperror.NewConflict("an invoice with recorded payments cannot be deleted")
		}

		if err := s.repo.Delete(txCtx, docID); err != nil {
			return err
		}
		return s.audit.LogChange(txCtx, "invoice", docID, audit.ActionDelete, nil)
	})
}

// List retrieves invoices with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	return s.repo.List(ctx, filter)
}
