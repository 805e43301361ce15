package invoice

import "saldo/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Invoices are primary accounting documents, so we use Strict strategy
	// (sequential, no gaps).
	NumeratorStrategy = numerator.StrategyStrict

	// NumeratorPrefix for invoice numbers (INV-2024-00001).
	NumeratorPrefix = "INV"
)
