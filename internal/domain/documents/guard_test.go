package documents

import (
	"testing"

	"autodf/internal/core/apperror"
)

// testStatus implements Status for the guard matrix.
type testStatus struct {
	name     string
	editable bool
}

func (s testStatus) Editable() bool { return s.editable }
func (s testStatus) String() string { return s.name }

func TestEnsureMutable(t *testing.T) {
	draft := testStatus{name: "draft", editable: true}
	sent := testStatus{name: "sent", editable: false}

	tests := []struct {
		name       string
		status     Status
		changed    []string
		wantLocked bool
	}{
		{"draft allows anything", draft, []string{"clientId", "headerDiscount", "status"}, false},
		{"draft allows empty change set", draft, nil, false},
		{"locked allows status only", sent, []string{"status"}, false},
		{"locked allows empty change set", sent, nil, false},
		{"locked rejects single field", sent, []string{"headerDiscount"}, true},
		{"locked rejects status plus field", sent, []string{"status", "clientId"}, true},
		{"locked rejects field plus status", sent, []string{"comment", "status"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := EnsureMutable(tt.status, tt.changed)
			if tt.wantLocked {
				if err == nil {
					t.Fatal("expected DOCUMENT_LOCKED")
				}
				if !apperror.IsDocumentLocked(err) {
					t.Fatalf("expected DOCUMENT_LOCKED, got %v", err)
				}
				appErr, _ := apperror.AsAppError(err)
				if appErr.Details["status"] != tt.status.String() {
					t.Errorf("error does not name current status: %v", appErr.Details)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestEnsureLinesMutable(t *testing.T) {
	if err := EnsureLinesMutable(testStatus{name: "draft", editable: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := EnsureLinesMutable(testStatus{name: "accepted", editable: false})
	if !apperror.IsDocumentLocked(err) {
		t.Fatalf("expected DOCUMENT_LOCKED, got %v", err)
	}
}
