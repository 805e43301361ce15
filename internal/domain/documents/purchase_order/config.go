package purchase_order

import "saldo/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Purchase orders are internal documents; gaps after restart are acceptable.
	NumeratorStrategy = numerator.StrategyCached

	// NumeratorPrefix for order numbers (PO-2024-00001).
	NumeratorPrefix = "PO"
)
