// Package numerator provides domain contracts for document reference numbering.
package numerator

import (
	"context"
	"time"
)

// MockGenerator is a test implementation of Generator.
// Use in unit tests to avoid database dependencies.
type MockGenerator struct {
	NextReferenceFunc func(ctx context.Context, cfg Config, organizationID string, period time.Time) (string, error)
}

// NextReference implements Generator.
func (m *MockGenerator) NextReference(ctx context.Context, cfg Config, organizationID string, period time.Time) (string, error) {
	if m.NextReferenceFunc != nil {
		return m.NextReferenceFunc(ctx, cfg, organizationID, period)
	}
	// Default: return predictable mock number
	return "MOCK-2026-001", nil
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
