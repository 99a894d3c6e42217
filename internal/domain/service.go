package domain

import (
	"context"
	"fmt"

	"autodf/internal/core/apperror"
	"autodf/internal/core/entity"
	"autodf/internal/core/id"
	"autodf/internal/core/tx"
)

// CatalogService provides generic CRUD operations for catalog entities.
type CatalogService[T entity.Validatable] struct {
	repo       CatalogRepository[T]
	txManager  tx.Manager
	hooks      *HookRegistry[T]
	entityName string
}

// NewCatalogService creates a new catalog service.
func NewCatalogService[T entity.Validatable](
	repo CatalogRepository[T],
	txManager tx.Manager,
	entityName string,
) *CatalogService[T] {
	return &CatalogService[T]{
		repo:       repo,
		txManager:  txManager,
		hooks:      NewHookRegistry[T](),
		entityName: entityName,
	}
}

// Hooks returns the hook registry for customization.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

func (s *CatalogService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	// If entity already returns structured AppError, keep it.
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *CatalogService[T]) normalizeGetErr(err error, idOrCode any) error {
	if err == nil {
		return nil
	}
	// Preserve existing AppError, but ensure not-found is mapped to the correct entity name.
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, idOrCode)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err)
}

// Create validates and persists a new entity.
func (s *CatalogService[T]) Create(ctx context.Context, ent T) error {
	if err := ent.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := s.hooks.RunBeforeCreate(txCtx, ent); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, ent); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return s.hooks.RunAfterCreate(txCtx, ent)
	})
}

// GetByID retrieves entity by ID.
func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	ent, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return ent, s.normalizeGetErr(err, entityID.String())
	}
	return ent, nil
}

// GetByCode retrieves entity by code.
func (s *CatalogService[T]) GetByCode(ctx context.Context, code string) (T, error) {
	ent, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return ent, s.normalizeGetErr(err, code)
	}
	return ent, nil
}

// Update validates and persists changes to an existing entity.
func (s *CatalogService[T]) Update(ctx context.Context, ent T) error {
	if err := ent.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := s.hooks.RunBeforeUpdate(txCtx, ent); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, ent); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return s.hooks.RunAfterUpdate(txCtx, ent)
	})
}

// SetDeletionMark sets or clears the soft-delete mark on an entity.
func (s *CatalogService[T]) SetDeletionMark(ctx context.Context, entityID id.ID, marked bool) error {
	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		ent, err := s.repo.GetByID(txCtx, entityID)
		if err != nil {
			return s.normalizeGetErr(err, entityID.String())
		}
		if marked {
			if err := s.hooks.RunBeforeDelete(txCtx, ent); err != nil {
				return err
			}
		}
		if err := s.repo.SetDeletionMark(txCtx, entityID, marked); err != nil {
			return fmt.Errorf("set deletion mark on %s: %w", s.entityName, err)
		}
		if marked {
			return s.hooks.RunAfterDelete(txCtx, ent)
		}
		return nil
	})
}

// List retrieves entities matching the filter.
func (s *CatalogService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListFilter().Limit
	}
	result, err := s.repo.List(ctx, filter)
	if err != nil {
		return ListResult[T]{}, fmt.Errorf("list %s: %w", s.entityName, err)
	}
	return result, nil
}

// Exists reports whether an entity with the given ID exists.
func (s *CatalogService[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	exists, err := s.repo.Exists(ctx, entityID)
	if err != nil {
		return false, fmt.Errorf("check %s existence: %w", s.entityName, err)
	}
	return exists, nil
}
