// Package numerator provides domain contracts for document reference numbering.
// Implementations live in infrastructure layer.
package numerator

import (
	"context"
	"time"
)

// Generator produces sequential document reference numbers.
// This is the domain contract - implementations live in pkg/numerator.
//
// Numbers are scoped per (organization, prefix, year): each organization
// owns an independent sequence for each document kind, restarting every
// calendar year.
type Generator interface {
	// NextReference generates the next reference number.
	// Pattern: PREFIX-YEAR-XXX (e.g., FACT-2026-001)
	NextReference(ctx context.Context, cfg Config, organizationID string, period time.Time) (string, error)
}
