package estimate

import "autodf/internal/core/types"

const (
	// NumberPrefix for estimate reference numbers (DEV-2026-001).
	NumberPrefix = "DEV"
)

// DefaultTaxRate applied when a line does not specify one (standard French VAT).
var DefaultTaxRate = types.MustMoney("20")
