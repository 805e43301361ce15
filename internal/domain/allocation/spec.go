// Package allocation provides the payment allocation engine: it decides how
// much of a payment applies to each open document, either by explicit caller
// instruction or by the automatic FIFO policy, and applies the result
// atomically.
package allocation

import (
	"saldo/internal/core/id"
	"saldo/internal/core/types"
)

// Line is one explicit (document, amount) instruction in manual mode.
type Line struct {
	DocumentID id.ID       `json:"documentId"`
	Amount     types.Money `json:"amount"`
}

type mode int

const (
	modeManual mode = iota
	modeAuto
)

// TargetSpec is a tagged request: either an explicit list of lines or the
// automatic FIFO policy. Constructed only through Manual and Auto so the two
// paths cannot both apply.
type TargetSpec struct {
	mode  mode
	lines []Line
}

// Manual builds a spec with explicit (document, amount) pairs applied in
// caller order.
func Manual(lines []Line) TargetSpec {
	return TargetSpec{mode: modeManual, lines: lines}
}

// Auto builds a spec requesting FIFO allocation over the account's open
// documents.
func Auto() TargetSpec {
	return TargetSpec{mode: modeAuto}
}

// IsAuto reports whether the spec requests FIFO allocation.
func (t TargetSpec) IsAuto() bool {
	return t.mode == modeAuto
}

// Lines returns the manual instructions. Empty for auto specs.
func (t TargetSpec) Lines() []Line {
	return t.lines
}
