package allocation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core/id"
	"saldo/internal/core/types"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPlanFIFO_OldestFirst(t *testing.T) {
	older := OpenDocument{ID: id.New(), Date: day("2024-01-10"), Remaining: types.MustMoney("100")}
	newer := OpenDocument{ID: id.New(), Date: day("2024-02-01"), Remaining: types.MustMoney("200")}

	// Input deliberately out of order.
	plan := PlanFIFO(types.MustMoney("150"), []OpenDocument{newer, older})

	require.Len(t, plan.Lines, 2)
	assert.Equal(t, older.ID, plan.Lines[0].DocumentID)
	assert.True(t, plan.Lines[0].Amount.Equal(types.MustMoney("100")))
	assert.Equal(t, newer.ID, plan.Lines[1].DocumentID)
	assert.True(t, plan.Lines[1].Amount.Equal(types.MustMoney("50")))
	assert.True(t, plan.TotalAllocated.Equal(types.MustMoney("150")))
	assert.True(t, plan.Leftover.IsZero())
}

func TestPlanFIFO_SameDateBreaksTiesByID(t *testing.T) {
	date := day("2024-03-15")
	// id.New produces time-ordered values, so a is created before b.
	a := OpenDocument{ID: id.New(), Date: date, Remaining: types.MustMoney("80")}
	b := OpenDocument{ID: id.New(), Date: date, Remaining: types.MustMoney("80")}

	plan := PlanFIFO(types.MustMoney("100"), []OpenDocument{b, a})

	require.Len(t, plan.Lines, 2)
	assert.Equal(t, a.ID, plan.Lines[0].DocumentID)
	assert.True(t, plan.Lines[0].Amount.Equal(types.MustMoney("80")))
	assert.Equal(t, b.ID, plan.Lines[1].DocumentID)
	assert.True(t, plan.Lines[1].Amount.Equal(types.MustMoney("20")))
}

func TestPlanFIFO_LeftoverWhenDocumentsExhausted(t *testing.T) {
	doc := OpenDocument{ID: id.New(), Date: day("2024-01-05"), Remaining: types.MustMoney("40")}

	plan := PlanFIFO(types.MustMoney("100"), []OpenDocument{doc})

	require.Len(t, plan.Lines, 1)
	assert.True(t, plan.TotalAllocated.Equal(types.MustMoney("40")))
	assert.True(t, plan.Leftover.Equal(types.MustMoney("60")))
}

func TestPlanFIFO_NoOpenDocuments(t *testing.T) {
	plan := PlanFIFO(types.MustMoney("100"), nil)

	assert.Empty(t, plan.Lines)
	assert.True(t, plan.TotalAllocated.IsZero())
	assert.True(t, plan.Leftover.Equal(types.MustMoney("100")))
}

func TestPlanFIFO_SkipsSettledDocuments(t *testing.T) {
	settled := OpenDocument{ID: id.New(), Date: day("2024-01-01"), Remaining: types.Zero()}
	open := OpenDocument{ID: id.New(), Date: day("2024-01-02"), Remaining: types.MustMoney("30")}

	plan := PlanFIFO(types.MustMoney("50"), []OpenDocument{settled, open})

	require.Len(t, plan.Lines, 1)
	assert.Equal(t, open.ID, plan.Lines[0].DocumentID)
	assert.True(t, plan.Leftover.Equal(types.MustMoney("20")))
}

func TestPlanFIFO_StopsWhenNothingLeft(t *testing.T) {
	first := OpenDocument{ID: id.New(), Date: day("2024-01-01"), Remaining: types.MustMoney("25")}
	second := OpenDocument{ID: id.New(), Date: day("2024-01-02"), Remaining: types.MustMoney("25")}

	plan := PlanFIFO(types.MustMoney("25"), []OpenDocument{first, second})

	require.Len(t, plan.Lines, 1)
	assert.Equal(t, first.ID, plan.Lines[0].DocumentID)
	assert.True(t, plan.Leftover.IsZero())
}

func TestPlanFIFO_DoesNotMutateInput(t *testing.T) {
	docs := []OpenDocument{
		{ID: id.New(), Date: day("2024-02-01"), Remaining: types.MustMoney("10")},
		{ID: id.New(), Date: day("2024-01-01"), Remaining: types.MustMoney("10")},
	}
	before := make([]OpenDocument, len(docs))
	copy(before, docs)

	PlanFIFO(types.MustMoney("15"), docs)

	assert.Equal(t, before, docs)
}
