package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"autodf/internal/core/id"
	"autodf/internal/domain"
	"autodf/internal/domain/documents/estimate"
	"autodf/internal/infrastructure/storage/postgres"
)

const (
	estimatesTable     = "doc_estimates"
	estimateLinesTable = "doc_estimate_lines"
)

// Compile-time check.
var _ estimate.Repository = (*EstimateRepo)(nil)

// EstimateRepo implements estimate.Repository.
type EstimateRepo struct {
	*BaseDocumentRepo[*estimate.Estimate]
}

// NewEstimateRepo creates a new estimate repository.
func NewEstimateRepo(txManager *postgres.TxManager) *EstimateRepo {
	return &EstimateRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*estimate.Estimate](
			txManager,
			estimatesTable,
			postgres.ExtractDBColumns[estimate.Estimate](),
			func() *estimate.Estimate { return &estimate.Estimate{} },
		),
	}
}

// GetLines retrieves lines for an estimate.
func (r *EstimateRepo) GetLines(ctx context.Context, docID id.ID) ([]estimate.Line, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "description", "line_type",
			"quantity", "unit_price", "tax_rate", "discount",
			"net", "tax", "gross", "note",
		).
		From(estimateLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []estimate.Line
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves lines for an estimate (delete existing + insert new).
func (r *EstimateRepo) SaveLines(ctx context.Context, docID id.ID, lines []estimate.Line) error {
	querier := r.querier(ctx)

	deleteSQL := "DELETE FROM " + estimateLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(estimateLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "description", "line_type",
			"quantity", "unit_price", "tax_rate", "discount",
			"net", "tax", "gross", "note",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.Description, line.Type,
			line.Quantity, line.UnitPrice, line.TaxRate, line.Discount,
			line.Net, line.Tax, line.Gross, line.Note,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// List retrieves estimates with filtering.
func (r *EstimateRepo) List(ctx context.Context, filter estimate.ListFilter) (domain.ListResult[*estimate.Estimate], error) {
	result := domain.ListResult[*estimate.Estimate]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.scopedSelect(ctx, filter.OrganizationID)

	if filter.ClientID != nil {
		q = q.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"comment": pattern},
		})
	}

	items, totalCount, err := r.runList(ctx, q, filter.OrderBy, filter.Limit, filter.Offset)
	if err != nil {
		return result, err
	}

	result.Items = items
	result.TotalCount = totalCount
	return result, nil
}
