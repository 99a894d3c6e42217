package invoice

import (
	"context"
	"fmt"
	"testing"
	"time"

	"autodf/internal/core/apperror"
	"autodf/internal/core/id"
	corenum "autodf/internal/core/numerator"
	"autodf/internal/domain"
	"autodf/internal/domain/documents/estimate"
)

// nopTx runs the callback without a real transaction.
type nopTx struct{}

func (nopTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memRepo is an in-memory invoice repository.
type memRepo struct {
	docs     map[id.ID]*Invoice
	lines    map[id.ID][]Line
	payments map[id.ID][]Payment
	numbers  map[string]bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		docs:     make(map[id.ID]*Invoice),
		lines:    make(map[id.ID][]Line),
		payments: make(map[id.ID][]Payment),
		numbers:  make(map[string]bool),
	}
}

func (r *memRepo) Create(ctx context.Context, doc *Invoice) error {
	if r.numbers[doc.Number] {
		return apperror.NewDuplicateReference(doc.Number)
	}
	r.numbers[doc.Number] = true
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, docID id.ID) (*Invoice, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("invoice", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *memRepo) GetByNumber(ctx context.Context, organizationID, number string) (*Invoice, error) {
	for _, doc := range r.docs {
		if doc.OrganizationID == organizationID && doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("invoice", number)
}

func (r *memRepo) Update(ctx context.Context, doc *Invoice) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("invoice", doc.ID.String())
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *memRepo) Delete(ctx context.Context, docID id.ID) error {
	if _, ok := r.docs[docID]; !ok {
		return apperror.NewNotFound("invoice", docID.String())
	}
	delete(r.docs, docID)
	delete(r.lines, docID)
	delete(r.payments, docID)
	return nil
}

func (r *memRepo) GetLines(ctx context.Context, docID id.ID) ([]Line, error) {
	return append([]Line(nil), r.lines[docID]...), nil
}

func (r *memRepo) SaveLines(ctx context.Context, docID id.ID, lines []Line) error {
	r.lines[docID] = append([]Line(nil), lines...)
	return nil
}

func (r *memRepo) GetPayments(ctx context.Context, docID id.ID) ([]Payment, error) {
	return append([]Payment(nil), r.payments[docID]...), nil
}

func (r *memRepo) AddPayment(ctx context.Context, docID id.ID, payment Payment) error {
	r.payments[docID] = append(r.payments[docID], payment)
	return nil
}

func (r *memRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	var items []*Invoice
	for _, doc := range r.docs {
		items = append(items, doc)
	}
	return domain.ListResult[*Invoice]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *memRepo) LastReference(ctx context.Context, organizationID, prefix string, year int) (string, error) {
	return "", nil
}

func (r *memRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Invoice, error) {
	return r.GetByID(ctx, docID)
}

// memEstimateRepo backs conversion tests.
type memEstimateRepo struct {
	docs  map[id.ID]*estimate.Estimate
	lines map[id.ID][]estimate.Line
}

func newMemEstimateRepo() *memEstimateRepo {
	return &memEstimateRepo{
		docs:  make(map[id.ID]*estimate.Estimate),
		lines: make(map[id.ID][]estimate.Line),
	}
}

func (r *memEstimateRepo) Create(ctx context.Context, doc *estimate.Estimate) error {
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *memEstimateRepo) GetByID(ctx context.Context, docID id.ID) (*estimate.Estimate, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("estimate", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *memEstimateRepo) GetByNumber(ctx context.Context, organizationID, number string) (*estimate.Estimate, error) {
	return nil, apperror.NewNotFound("estimate", number)
}

func (r *memEstimateRepo) Update(ctx context.Context, doc *estimate.Estimate) error {
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *memEstimateRepo) Delete(ctx context.Context, docID id.ID) error {
	return nil
}

func (r *memEstimateRepo) GetLines(ctx context.Context, docID id.ID) ([]estimate.Line, error) {
	return append([]estimate.Line(nil), r.lines[docID]...), nil
}

func (r *memEstimateRepo) SaveLines(ctx context.Context, docID id.ID, lines []estimate.Line) error {
	r.lines[docID] = append([]estimate.Line(nil), lines...)
	return nil
}

func (r *memEstimateRepo) List(ctx context.Context, filter estimate.ListFilter) (domain.ListResult[*estimate.Estimate], error) {
	return domain.ListResult[*estimate.Estimate]{}, nil
}

func (r *memEstimateRepo) LastReference(ctx context.Context, organizationID, prefix string, year int) (string, error) {
	return "", nil
}

func (r *memEstimateRepo) GetForUpdate(ctx context.Context, docID id.ID) (*estimate.Estimate, error) {
	return r.GetByID(ctx, docID)
}

func newTestService(repo *memRepo, estRepo *memEstimateRepo, cfg Config) *Service {
	seq := 0
	gen := &corenum.MockGenerator{
		NextReferenceFunc: func(ctx context.Context, c corenum.Config, orgID string, period time.Time) (string, error) {
			seq++
			return fmt.Sprintf("%s-%d-%03d", c.Prefix, period.Year(), seq), nil
		},
	}
	svc := NewService(repo, estRepo, nopTx{}, gen, nil, cfg)
	svc.SetClock(func() time.Time {
		return time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	})
	return svc
}

func createInvoice(t *testing.T, svc *Service) *Invoice {
	t.Helper()
	ctx := context.Background()

	doc := New("org-1", id.New())
	doc.Date = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if err := svc.Create(ctx, doc); err != nil {
		t.Fatalf("create: %v", err)
	}

	doc, err := svc.AddLine(ctx, doc.ID, LineInput{
		Description: "travaux",
		Quantity:    m("2"),
		UnitPrice:   m("50.00"),
		TaxRate:     m("0"),
	})
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	return doc
}

func TestCreate_DefaultsDueDate(t *testing.T) {
	svc := newTestService(newMemRepo(), newMemEstimateRepo(), DefaultConfig())
	ctx := context.Background()

	doc := New("org-1", id.New())
	doc.Date = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if err := svc.Create(ctx, doc); err != nil {
		t.Fatalf("create: %v", err)
	}

	want := doc.Date.AddDate(0, 0, 30)
	if !doc.DueDate.Equal(want) {
		t.Errorf("dueDate = %v, want %v", doc.DueDate, want)
	}
	if doc.Number != "FACT-2026-001" {
		t.Errorf("number = %s, want FACT-2026-001", doc.Number)
	}
}

func TestRecordPayment_FullSettlement(t *testing.T) {
	svc := newTestService(newMemRepo(), newMemEstimateRepo(), DefaultConfig())
	ctx := context.Background()

	doc := createInvoice(t, svc)

	doc, err := svc.RecordPayment(ctx, doc.ID, PaymentInput{
		Amount: m("40.00"),
		Method: MethodTransfer,
	})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if doc.PaymentStatus != PaymentPartial {
		t.Errorf("status = %s, want partial", doc.PaymentStatus)
	}
	if doc.RemainingAmount.StringFixed(2) != "60.00" {
		t.Errorf("remaining = %s, want 60.00", doc.RemainingAmount)
	}

	doc, err = svc.RecordPayment(ctx, doc.ID, PaymentInput{
		Amount: m("60.00"),
		Method: MethodCard,
	})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if doc.PaymentStatus != PaymentPaid {
		t.Errorf("status = %s, want paid", doc.PaymentStatus)
	}
	if doc.PaidAmount.StringFixed(2) != "100.00" {
		t.Errorf("paid = %s, want 100.00", doc.PaidAmount)
	}
	if doc.Status != StatusPaid {
		t.Errorf("document status = %s, want paid", doc.Status)
	}
}

func TestRecordPayment_RejectsInvalidInput(t *testing.T) {
	svc := newTestService(newMemRepo(), newMemEstimateRepo(), DefaultConfig())
	ctx := context.Background()

	doc := createInvoice(t, svc)

	_, err := svc.RecordPayment(ctx, doc.ID, PaymentInput{Amount: m("0"), Method: MethodCash})
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeInvalidPaymentAmount {
		t.Fatalf("zero amount: expected INVALID_PAYMENT_AMOUNT, got %v", err)
	}

	_, err = svc.RecordPayment(ctx, doc.ID, PaymentInput{Amount: m("-5"), Method: MethodCash})
	appErr, ok = apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeInvalidPaymentAmount {
		t.Fatalf("negative amount: expected INVALID_PAYMENT_AMOUNT, got %v", err)
	}

	_, err = svc.RecordPayment(ctx, doc.ID, PaymentInput{Amount: m("10"), Method: "barter"})
	if err == nil {
		t.Fatal("invalid method accepted")
	}
}

func TestRecordPayment_OverpaymentConfig(t *testing.T) {
	// Default config admits overpayment
	svc := newTestService(newMemRepo(), newMemEstimateRepo(), DefaultConfig())
	ctx := context.Background()

	doc := createInvoice(t, svc)
	doc, err := svc.RecordPayment(ctx, doc.ID, PaymentInput{Amount: m("150.00"), Method: MethodCheque})
	if err != nil {
		t.Fatalf("overpayment rejected under default config: %v", err)
	}
	if doc.RemainingAmount.StringFixed(2) != "-50.00" {
		t.Errorf("remaining = %s, want -50.00", doc.RemainingAmount)
	}

	// Strict config rejects it
	strict := newTestService(newMemRepo(), newMemEstimateRepo(), Config{AllowOverpayment: false})
	doc2 := createInvoice(t, strict)
	_, err = strict.RecordPayment(ctx, doc2.ID, PaymentInput{Amount: m("150.00"), Method: MethodCheque})
	if err == nil {
		t.Fatal("overpayment accepted under strict config")
	}
}

func TestRecordPayment_CancelledInvoice(t *testing.T) {
	svc := newTestService(newMemRepo(), newMemEstimateRepo(), DefaultConfig())
	ctx := context.Background()

	doc := createInvoice(t, svc)
	if _, err := svc.SetStatus(ctx, doc.ID, StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err := svc.RecordPayment(ctx, doc.ID, PaymentInput{Amount: m("10"), Method: MethodCash})
	if err == nil {
		t.Fatal("payment accepted on cancelled invoice")
	}
}

func TestUpdate_LockedAfterSent(t *testing.T) {
	svc := newTestService(newMemRepo(), newMemEstimateRepo(), DefaultConfig())
	ctx := context.Background()

	doc := createInvoice(t, svc)
	if _, err := svc.SetStatus(ctx, doc.ID, StatusSent); err != nil {
		t.Fatalf("set status: %v", err)
	}

	disc := m("10")
	_, err := svc.Update(ctx, doc.ID, Patch{HeaderDiscount: &disc})
	if !apperror.IsDocumentLocked(err) {
		t.Fatalf("expected DOCUMENT_LOCKED, got %v", err)
	}

	_, err = svc.AddLine(ctx, doc.ID, LineInput{Quantity: m("1"), UnitPrice: m("10"), TaxRate: m("20")})
	if !apperror.IsDocumentLocked(err) {
		t.Fatalf("add line: expected DOCUMENT_LOCKED, got %v", err)
	}
}

func TestConvertFromEstimate(t *testing.T) {
	repo := newMemRepo()
	estRepo := newMemEstimateRepo()
	svc := newTestService(repo, estRepo, DefaultConfig())
	ctx := context.Background()

	est := estimate.New("org-1", id.New())
	est.Number = "DEV-2026-001"
	est.Status = estimate.StatusAccepted
	est.HeaderDiscount = m("10")
	line, err := estimate.NewLine(estimate.LineInput{
		Description: "travaux",
		Quantity:    m("2"),
		UnitPrice:   m("50.00"),
		TaxRate:     m("20"),
	})
	if err != nil {
		t.Fatalf("new line: %v", err)
	}
	est.AddLine(line)
	if err := estRepo.Create(ctx, est); err != nil {
		t.Fatalf("create estimate: %v", err)
	}
	if err := estRepo.SaveLines(ctx, est.ID, est.Lines); err != nil {
		t.Fatalf("save lines: %v", err)
	}

	inv, err := svc.ConvertFromEstimate(ctx, est.ID)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	if inv.Status != StatusDraft {
		t.Errorf("status = %s, want draft", inv.Status)
	}
	if inv.EstimateID == nil || *inv.EstimateID != est.ID {
		t.Error("invoice does not link to source estimate")
	}
	if len(inv.Lines) != 1 || inv.Lines[0].Description != "travaux" {
		t.Errorf("lines not copied: %+v", inv.Lines)
	}
	if inv.TotalNet.StringFixed(2) != "90.00" || inv.TotalGross.StringFixed(2) != "110.00" {
		t.Errorf("totals = %s / %s, want 90.00 / 110.00", inv.TotalNet, inv.TotalGross)
	}

	linked, err := estRepo.GetByID(ctx, est.ID)
	if err != nil {
		t.Fatalf("get estimate: %v", err)
	}
	if linked.InvoiceID == nil || *linked.InvoiceID != inv.ID {
		t.Error("estimate does not link to created invoice")
	}

	// Second conversion is rejected
	if _, err := svc.ConvertFromEstimate(ctx, est.ID); err == nil {
		t.Fatal("second conversion accepted")
	}
}

// hookTx runs a callback right before the transaction body, simulating
// writes that land between the caller and the transaction snapshot.
type hookTx struct {
	before func()
}

func (h *hookTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if h.before != nil {
		h.before()
	}
	return fn(ctx)
}

func TestDelete_RejectsInvoiceWithPayments(t *testing.T) {
	svc := newTestService(newMemRepo(), newMemEstimateRepo(), DefaultConfig())
	ctx := context.Background()

	doc := createInvoice(t, svc)
	if _, err := svc.RecordPayment(ctx, doc.ID, PaymentInput{Amount: m("10.00"), Method: MethodCash}); err != nil {
		t.Fatalf("record payment: %v", err)
	}

	err := svc.Delete(ctx, doc.ID)
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestDelete_ChecksLedgerInsideTransaction(t *testing.T) {
	repo := newMemRepo()
	tx := &hookTx{}
	seq := 0
	gen := &corenum.MockGenerator{
		NextReferenceFunc: func(ctx context.Context, c corenum.Config, orgID string, period time.Time) (string, error) {
			seq++
			return fmt.Sprintf("%s-%d-%03d", c.Prefix, period.Year(), seq), nil
		},
	}
	svc := NewService(repo, newMemEstimateRepo(), tx, gen, nil, DefaultConfig())
	svc.SetClock(func() time.Time {
		return time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	})
	ctx := context.Background()

	doc := createInvoice(t, svc)

	// A payment lands just before the delete transaction begins.
	tx.before = func() {
		repo.payments[doc.ID] = append(repo.payments[doc.ID], Payment{
			PaymentID: id.New(),
			Amount:    m("25.00"),
			Date:      time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
			Method:    MethodTransfer,
		})
	}

	err := svc.Delete(ctx, doc.ID)
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}

	if _, err := repo.GetByID(ctx, doc.ID); err != nil {
		t.Errorf("invoice with a recorded payment was deleted: %v", err)
	}
}

func TestConvertFromEstimate_RequiresAccepted(t *testing.T) {
	estRepo := newMemEstimateRepo()
	svc := newTestService(newMemRepo(), estRepo, DefaultConfig())
	ctx := context.Background()

	est := estimate.New("org-1", id.New())
	est.Status = estimate.StatusSent
	if err := estRepo.Create(ctx, est); err != nil {
		t.Fatalf("create estimate: %v", err)
	}

	if _, err := svc.ConvertFromEstimate(ctx, est.ID); err == nil {
		t.Fatal("conversion of non-accepted estimate accepted")
	}
}
