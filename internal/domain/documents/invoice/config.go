package invoice

const (
	// NumberPrefix for invoice reference numbers (FACT-2026-001).
	NumberPrefix = "FACT"

	// DefaultDueDays is the payment term applied when no due date is given.
	DefaultDueDays = 30
)

// Config tunes invoice service behavior.
type Config struct {
	// AllowOverpayment admits payments that push paidAmount past totalGross.
	// Overpayments keep remainingAmount negative and the invoice paid.
	AllowOverpayment bool

	// DueDays is the default payment term in days.
	DueDays int
}

// DefaultConfig matches the historical behavior: overpayment accepted,
// 30-day payment term.
func DefaultConfig() Config {
	return Config{
		AllowOverpayment: true,
		DueDays:          DefaultDueDays,
	}
}
