package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"autodf/internal/core/apperror"
	"autodf/internal/domain/catalogs/client"
	"autodf/internal/infrastructure/storage/postgres"
)

const clientTable = "cat_clients"

// Compile-time check.
var _ client.Repository = (*ClientRepo)(nil)

// ClientRepo implements client.Repository.
type ClientRepo struct {
	*BaseCatalogRepo[*client.Client]
}

// NewClientRepo creates a new client repository.
func NewClientRepo(txManager *postgres.TxManager) *ClientRepo {
	return &ClientRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*client.Client](
			txManager,
			clientTable,
			postgres.ExtractDBColumns[client.Client](),
			func() *client.Client { return &client.Client{} },
		),
	}
}

// LastReference returns the highest issued code for the given prefix and
// year within one organization, or "" when none exists yet. Backs client
// code generation.
func (r *ClientRepo) LastReference(ctx context.Context, organizationID, prefix string, year int) (string, error) {
	pattern := fmt.Sprintf("%s-%d-%%", prefix, year)

	q := r.Builder().
		Select("code").
		From(clientTable).
		Where(squirrel.Eq{"organization_id": organizationID}).
		Where(squirrel.Like{"code": pattern}).
		OrderBy("LENGTH(code) DESC", "code DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	var code string
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&code)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last reference: %w", err)
	}

	return code, nil
}

// FindBySIRET retrieves a client by SIRET within one organization.
func (r *ClientRepo) FindBySIRET(ctx context.Context, organizationID, siret string) (*client.Client, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"organization_id": organizationID}).
		Where(squirrel.Eq{"siret": siret}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	c, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("client", siret)
		}
		return nil, err
	}
	return c, nil
}
