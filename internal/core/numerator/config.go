// Package numerator provides domain contracts for document reference numbering.
package numerator

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "DEV", "FACT")
	Prefix string

	// IncludeYear adds the issue year to the number
	IncludeYear bool

	// PadWidth is the minimum sequence width (default 3)
	PadWidth int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    3,
	}
}
