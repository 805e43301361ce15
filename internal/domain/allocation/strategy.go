package allocation

import (
	"sort"
	"time"

	"saldo/internal/core/id"
	"saldo/internal/core/types"
)

// OpenDocument is the slice of a document the FIFO planner needs: identity,
// ordering key and how much is still unpaid.
type OpenDocument struct {
	ID        id.ID
	Date      time.Time
	Remaining types.Money
}

// PlanLine is one planned allocation produced by the FIFO strategy.
type PlanLine struct {
	DocumentID id.ID
	Amount     types.Money
}

// Plan is the outcome of running the FIFO strategy over a set of open
// documents. Leftover is the part of the available amount no document could
// absorb; it stays on the account as standing credit.
type Plan struct {
	Lines          []PlanLine
	TotalAllocated types.Money
	Leftover       types.Money
}

// PlanFIFO distributes the available amount over open documents oldest first.
// Documents are ordered by (date, id) ascending so two documents dated the
// same day still allocate deterministically. Each document receives
// min(remaining, left); documents with nothing remaining are skipped.
//
// The function is pure: it never mutates its inputs and touches no storage.
func PlanFIFO(available types.Money, docs []OpenDocument) Plan {
	ordered := make([]OpenDocument, len(docs))
	copy(ordered, docs)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].ID.String() < ordered[j].ID.String()
	})

	plan := Plan{
		Lines:          make([]PlanLine, 0, len(ordered)),
		TotalAllocated: types.Zero(),
	}

	left := available
	for _, doc := range ordered {
		if !left.IsPositive() {
			break
		}
		if !doc.Remaining.IsPositive() {
			continue
		}

		amount := types.Min(doc.Remaining, left)
		plan.Lines = append(plan.Lines, PlanLine{DocumentID: doc.ID, Amount: amount})
		plan.TotalAllocated = plan.TotalAllocated.Add(amount)
		left = left.Sub(amount)
	}

	plan.Leftover = left
	return plan
}
