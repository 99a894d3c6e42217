package documents

import (
	"autodf/internal/core/apperror"
)

// FieldStatus is the only field a locked document may still change.
const FieldStatus = "status"

// Status is implemented by each document's status vocabulary.
type Status interface {
	// Editable reports whether line content and header fields may change.
	// Only the draft status is editable.
	Editable() bool

	String() string
}

// EnsureMutable decides whether an update with the given changed fields
// is allowed in the current status.
//
// From an editable status everything is allowed. From any other status
// the update is accepted only if the sole changed field is the status
// itself; any other changed field fails with DOCUMENT_LOCKED naming the
// current status. The guard deliberately does not validate which status
// may follow which: that is a caller-level concern.
//
// Pure decision, no side effects.
func EnsureMutable(current Status, changedFields []string) error {
	if current.Editable() {
		return nil
	}

	for _, f := range changedFields {
		if f != FieldStatus {
			return apperror.NewDocumentLocked(current.String()).
				WithDetail("field", f)
		}
	}

	return nil
}

// EnsureLinesMutable rejects any line create/update/delete on a document
// that is no longer editable, before the mutation is applied.
func EnsureLinesMutable(current Status) error {
	if current.Editable() {
		return nil
	}
	return apperror.NewDocumentLocked(current.String())
}
