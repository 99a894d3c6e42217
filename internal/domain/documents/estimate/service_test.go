package estimate

import (
	"context"
	"fmt"
	"testing"
	"time"

	"autodf/internal/core/apperror"
	"autodf/internal/core/id"
	corenum "autodf/internal/core/numerator"
	"autodf/internal/core/types"
	"autodf/internal/domain"
)

func m(s string) types.Money {
	return types.MustMoney(s)
}

// nopTx runs the callback without a real transaction.
type nopTx struct{}

func (nopTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memRepo is an in-memory estimate repository.
type memRepo struct {
	docs    map[id.ID]*Estimate
	lines   map[id.ID][]Line
	numbers map[string]bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		docs:    make(map[id.ID]*Estimate),
		lines:   make(map[id.ID][]Line),
		numbers: make(map[string]bool),
	}
}

func (r *memRepo) Create(ctx context.Context, doc *Estimate) error {
	if r.numbers[doc.Number] {
		return apperror.NewDuplicateReference(doc.Number)
	}
	r.numbers[doc.Number] = true
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, docID id.ID) (*Estimate, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("estimate", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *memRepo) GetByNumber(ctx context.Context, organizationID, number string) (*Estimate, error) {
	for _, doc := range r.docs {
		if doc.OrganizationID == organizationID && doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("estimate", number)
}

func (r *memRepo) Update(ctx context.Context, doc *Estimate) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("estimate", doc.ID.String())
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *memRepo) Delete(ctx context.Context, docID id.ID) error {
	if _, ok := r.docs[docID]; !ok {
		return apperror.NewNotFound("estimate", docID.String())
	}
	delete(r.docs, docID)
	delete(r.lines, docID)
	return nil
}

func (r *memRepo) GetLines(ctx context.Context, docID id.ID) ([]Line, error) {
	return append([]Line(nil), r.lines[docID]...), nil
}

func (r *memRepo) SaveLines(ctx context.Context, docID id.ID, lines []Line) error {
	r.lines[docID] = append([]Line(nil), lines...)
	return nil
}

func (r *memRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Estimate], error) {
	var items []*Estimate
	for _, doc := range r.docs {
		items = append(items, doc)
	}
	return domain.ListResult[*Estimate]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *memRepo) LastReference(ctx context.Context, organizationID, prefix string, year int) (string, error) {
	return "", nil
}

func (r *memRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Estimate, error) {
	return r.GetByID(ctx, docID)
}

func newTestService(repo *memRepo) *Service {
	seq := 0
	gen := &corenum.MockGenerator{
		NextReferenceFunc: func(ctx context.Context, cfg corenum.Config, orgID string, period time.Time) (string, error) {
			seq++
			return fmt.Sprintf("%s-%d-%03d", cfg.Prefix, period.Year(), seq), nil
		},
	}
	svc := NewService(repo, nopTx{}, gen, nil)
	svc.SetClock(func() time.Time {
		return time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	})
	return svc
}

func draftWithLine(t *testing.T, svc *Service) *Estimate {
	t.Helper()
	ctx := context.Background()

	doc := New("org-1", id.New())
	if err := svc.Create(ctx, doc); err != nil {
		t.Fatalf("create: %v", err)
	}

	doc, err := svc.AddLine(ctx, doc.ID, LineInput{
		Description: "plomberie",
		Quantity:    m("2"),
		UnitPrice:   m("50.00"),
		TaxRate:     m("20"),
	})
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	return doc
}

func TestCreate_AssignsNumberOnce(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	doc := New("org-1", id.New())
	if err := svc.Create(ctx, doc); err != nil {
		t.Fatalf("create: %v", err)
	}
	if doc.Number != "DEV-2026-001" {
		t.Errorf("number = %s, want DEV-2026-001", doc.Number)
	}

	second := New("org-1", id.New())
	if err := svc.Create(ctx, second); err != nil {
		t.Fatalf("create: %v", err)
	}
	if second.Number != "DEV-2026-002" {
		t.Errorf("number = %s, want DEV-2026-002", second.Number)
	}
}

func TestCreate_RetriesOnDuplicateNumber(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	// Another request already took the first number.
	repo.numbers["DEV-2026-001"] = true

	doc := New("org-1", id.New())
	if err := svc.Create(ctx, doc); err != nil {
		t.Fatalf("create: %v", err)
	}
	if doc.Number != "DEV-2026-002" {
		t.Errorf("number = %s, want regenerated DEV-2026-002", doc.Number)
	}
}

func TestAddLine_UpdatesTotals(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)

	doc := draftWithLine(t, svc)

	if doc.TotalNet.StringFixed(2) != "100.00" {
		t.Errorf("totalNet = %s, want 100.00", doc.TotalNet)
	}
	if doc.TotalTax.StringFixed(2) != "20.00" {
		t.Errorf("totalTax = %s, want 20.00", doc.TotalTax)
	}
	if doc.TotalGross.StringFixed(2) != "120.00" {
		t.Errorf("totalGross = %s, want 120.00", doc.TotalGross)
	}
}

func TestUpdate_HeaderDiscountRecalculates(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	doc := draftWithLine(t, svc)

	disc := m("10")
	doc, err := svc.Update(ctx, doc.ID, Patch{HeaderDiscount: &disc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if doc.TotalNet.StringFixed(2) != "90.00" {
		t.Errorf("totalNet = %s, want 90.00", doc.TotalNet)
	}
	if doc.TotalTax.StringFixed(2) != "20.00" {
		t.Errorf("totalTax = %s, want 20.00", doc.TotalTax)
	}
	if doc.TotalGross.StringFixed(2) != "110.00" {
		t.Errorf("totalGross = %s, want 110.00", doc.TotalGross)
	}
}

func TestUpdate_LockedAfterSent(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	doc := draftWithLine(t, svc)

	doc, err := svc.SetStatus(ctx, doc.ID, StatusSent)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if doc.SentDate == nil {
		t.Error("sent date not set")
	}

	// Non-status field change is rejected
	disc := m("5")
	_, err = svc.Update(ctx, doc.ID, Patch{HeaderDiscount: &disc})
	if !apperror.IsDocumentLocked(err) {
		t.Fatalf("expected DOCUMENT_LOCKED, got %v", err)
	}

	// Mixed patch is rejected too
	status := StatusAccepted
	comment := "new terms"
	_, err = svc.Update(ctx, doc.ID, Patch{Status: &status, Comment: &comment})
	if !apperror.IsDocumentLocked(err) {
		t.Fatalf("expected DOCUMENT_LOCKED, got %v", err)
	}

	// Pure status change still passes
	doc, err = svc.SetStatus(ctx, doc.ID, StatusAccepted)
	if err != nil {
		t.Fatalf("status-only update rejected: %v", err)
	}
	if doc.Status != StatusAccepted {
		t.Errorf("status = %s, want accepted", doc.Status)
	}
}

func TestLineMutations_LockedAfterSent(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	doc := draftWithLine(t, svc)
	lineID := doc.Lines[0].LineID

	if _, err := svc.SetStatus(ctx, doc.ID, StatusSent); err != nil {
		t.Fatalf("set status: %v", err)
	}

	_, err := svc.AddLine(ctx, doc.ID, LineInput{
		Quantity: m("1"), UnitPrice: m("10"), TaxRate: m("20"),
	})
	if !apperror.IsDocumentLocked(err) {
		t.Fatalf("add line: expected DOCUMENT_LOCKED, got %v", err)
	}

	_, err = svc.RemoveLine(ctx, doc.ID, lineID)
	if !apperror.IsDocumentLocked(err) {
		t.Fatalf("remove line: expected DOCUMENT_LOCKED, got %v", err)
	}
}

func TestRemoveLine_RecalculatesTotals(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	doc := draftWithLine(t, svc)
	doc, err := svc.AddLine(ctx, doc.ID, LineInput{
		Description: "fournitures",
		Type:        LineTypeSupply,
		Quantity:    m("1"),
		UnitPrice:   m("30.00"),
		TaxRate:     m("20"),
	})
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	if doc.TotalNet.StringFixed(2) != "130.00" {
		t.Fatalf("totalNet = %s, want 130.00", doc.TotalNet)
	}

	doc, err = svc.RemoveLine(ctx, doc.ID, doc.Lines[1].LineID)
	if err != nil {
		t.Fatalf("remove line: %v", err)
	}
	if doc.TotalNet.StringFixed(2) != "100.00" {
		t.Errorf("totalNet = %s, want 100.00", doc.TotalNet)
	}
}

func TestDelete_RejectsConverted(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	doc := draftWithLine(t, svc)
	invID := id.New()
	stored := repo.docs[doc.ID]
	stored.InvoiceID = &invID

	err := svc.Delete(ctx, doc.ID)
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if _, err := repo.GetByID(ctx, doc.ID); err != nil {
		t.Errorf("converted estimate was deleted: %v", err)
	}

	stored.InvoiceID = nil
	if err := svc.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, doc.ID); err == nil {
		t.Error("estimate still present after delete")
	}
}
