// Package numerator provides document reference numbering.
// The next sequence is derived from the highest reference already stored,
// so numbering survives restarts and never depends on in-memory state.
package numerator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"autodf/internal/core/apperror"
	corenum "autodf/internal/core/numerator"
)

// Source exposes the highest reference already assigned within a scope.
type Source interface {
	// LastReference returns the reference with the highest sequence for
	// (organizationID, prefix, year), or "" when the scope has no documents yet.
	LastReference(ctx context.Context, organizationID, prefix string, year int) (string, error)
}

// Service generates reference numbers backed by a Source.
type Service struct {
	source Source
}

// New creates a numerator service.
func New(source Source) *Service {
	return &Service{source: source}
}

// NextReference generates the next reference number for the scope.
// Pattern: PREFIX-YEAR-XXX (e.g., FACT-2026-001).
//
// The sequence restarts at 1 for every (organization, prefix, year) scope.
// Gaps left by deleted documents are not reused: the next number is always
// max(existing) + 1.
func (s *Service) NextReference(ctx context.Context, cfg corenum.Config, organizationID string, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}
	if organizationID == "" {
		return "", apperror.NewInvalidScope("organization is required for reference numbering")
	}

	year := period.Year()
	last, err := s.source.LastReference(ctx, organizationID, cfg.Prefix, year)
	if err != nil {
		return "", fmt.Errorf("last reference: %w", err)
	}

	var next int64 = 1
	if last != "" {
		seq := ParseNumber(last)
		if seq < 0 {
			return "", fmt.Errorf("unparseable reference %q in scope %s/%s/%d", last, organizationID, cfg.Prefix, year)
		}
		next = seq + 1
	}

	return FormatNumber(cfg, period, next), nil
}

// FormatNumber creates the final number string.
func FormatNumber(cfg corenum.Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 3
	}

	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}

// ParseNumber extracts the sequence part from a formatted number.
// The sequence is whatever follows the last hyphen, so both PREFIX-SEQ
// and PREFIX-YEAR-SEQ layouts parse. Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	idx := strings.LastIndexByte(formatted, '-')
	if idx < 0 || idx == len(formatted)-1 {
		return -1
	}

	num, err := strconv.ParseInt(formatted[idx+1:], 10, 64)
	if err != nil || num < 0 {
		return -1
	}
	return num
}

// Ensure compile-time interface compliance.
var _ corenum.Generator = (*Service)(nil)
