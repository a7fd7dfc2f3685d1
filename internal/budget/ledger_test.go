package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerTreasure(t *testing.T) {
	l := NewLedger(Limits{TreasureValue: 1000, ResourcePiles: 3})

	assert.True(t, l.CanSpend(1000))
	assert.False(t, l.CanSpend(1001))
	assert.False(t, l.CanSpend(-1))

	l.Record(ResourcePiles, 600)
	assert.Equal(t, 600, l.Spent(Treasure))
	assert.Equal(t, 1, l.Spent(ResourcePiles))
	assert.Equal(t, 400, l.RemainingValue())
	assert.True(t, l.CanPlace(ResourcePiles))

	l.Record(ResourcePiles, 400)
	assert.False(t, l.CanPlace(Treasure))
	assert.Zero(t, l.RemainingValue())
}

func TestLedgerCountsAreIndependentOfValue(t *testing.T) {
	l := NewLedger(Limits{TreasureValue: 100, Mines: 2})

	l.Record(Mines, 45000)
	l.Record(Mines, 45000)
	assert.False(t, l.CanPlace(Mines))
	assert.Equal(t, 100, l.RemainingValue(), "mines do not spend treasure value")

	s := l.Summary()
	assert.Equal(t, 90000, s.StrategicValue)
	mines, ok := s.Lookup(Mines)
	require.True(t, ok)
	assert.Equal(t, CategorySummary{Category: Mines.String(), Spent: 2, Limit: 2}, mines)
}

func TestLedgerRemainingNeverNegative(t *testing.T) {
	l := NewLedger(Limits{TreasureValue: 10})
	l.Record(Treasure, 50)
	assert.Zero(t, l.Remaining(Treasure))
	assert.Zero(t, l.Remaining(Dwellings))
	assert.False(t, l.CanPlace(Dwellings))
}

func TestLedgerUnknownCategoryPanics(t *testing.T) {
	l := NewLedger(Limits{})
	assert.Panics(t, func() { l.Limit(Category(99)) })
	assert.Panics(t, func() { l.Record(Category(99), 1) })
}
