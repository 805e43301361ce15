package payment

import "saldo/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Payment numbers may have gaps, Cached keeps receipt fast.
	NumeratorStrategy = numerator.StrategyCached

	// NumeratorPrefix for payment numbers (PAY-2024-00001).
	NumeratorPrefix = "PAY"
)
