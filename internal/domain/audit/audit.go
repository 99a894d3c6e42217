// Package audit provides the audit trail contract and audit field enrichment.
package audit

import (
	"context"

	appctx "autodf/internal/core/context"
	"autodf/internal/core/id"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionStatusChange Action = "status_change"
	ActionPayment      Action = "payment"
	ActionConvert      Action = "convert"
)

// Recorder appends entries to the audit trail.
// Implementations live in the infrastructure layer.
type Recorder interface {
	// LogChange records what changed on an entity.
	// Runs inside the caller's transaction when one is active.
	LogChange(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
}

// NopRecorder discards all entries. Useful in tests.
type NopRecorder struct{}

func (NopRecorder) LogChange(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error {
	return nil
}

var _ Recorder = NopRecorder{}

// EnrichCreatedBy sets CreatedBy and UpdatedBy from the context user.
// Use in before-create paths. No-op when no user is attached.
func EnrichCreatedBy(ctx context.Context, createdBy, updatedBy *string) {
	userID := appctx.GetUserID(ctx)
	if userID != "" {
		*createdBy = userID
		*updatedBy = userID
	}
}

// EnrichUpdatedBy sets UpdatedBy from the context user.
// Use in before-update paths. No-op when no user is attached.
func EnrichUpdatedBy(ctx context.Context, updatedBy *string) {
	userID := appctx.GetUserID(ctx)
	if userID != "" {
		*updatedBy = userID
	}
}
