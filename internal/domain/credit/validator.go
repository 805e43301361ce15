// Package credit provides credit limit classification for receivable accounts.
//
// The validator only classifies, it never blocks the ledger itself. The
// document workflow calls it before posting a debit and decides what to do
// with the outcome (including recording an explicit override).
package credit

import (
	"saldo/internal/core/types"
)

// Severity classifies a candidate debit against the account credit limit.
type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityWarning Severity = "warning"
	SeverityBlocked Severity = "blocked"
)

// WarningThreshold is the share of the limit at which a warning is raised.
var WarningThreshold = types.MustMoney("0.8")

// Decision is the structured outcome of a credit check.
type Decision struct {
	Severity  Severity    `json:"severity"`
	Projected types.Money `json:"projected"`
	Limit     types.Money `json:"limit"`
	Available types.Money `json:"available"`
}

// Validate classifies a candidate debit. Pure function, no side effects.
//
// A limit <= 0 means unlimited credit and is always ok. Otherwise the
// projected balance (current + candidate) is blocked at or above the limit
// and a warning at or above WarningThreshold of it.
func Validate(balance, limit, candidate types.Money) Decision {
	if !limit.IsPositive() {
		return Decision{
			Severity:  SeverityOK,
			Projected: balance.Add(candidate),
			Limit:     limit,
			Available: types.Zero(),
		}
	}

	projected := balance.Add(candidate)
	d := Decision{
		Projected: projected,
		Limit:     limit,
		Available: limit.Sub(projected),
	}

	switch {
	case projected.GreaterThanOrEqual(limit):
		d.Severity = SeverityBlocked
	case projected.GreaterThanOrEqual(limit.Mul(WarningThreshold)):
		d.Severity = SeverityWarning
	default:
		d.Severity = SeverityOK
	}
	return d
}
