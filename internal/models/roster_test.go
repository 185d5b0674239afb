package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotForPositionPrefersDirectSlot(t *testing.T) {
	rules := DefaultRosterRules()

	kind, ok := rules.SlotForPosition(PositionRB)
	assert.True(t, ok)
	assert.Equal(t, SlotRB, kind)

	kind, ok = rules.SlotForPosition(PositionQB)
	assert.True(t, ok)
	assert.Equal(t, SlotQB, kind)
}

func TestSlotForPositionFallsBackInConfigOrder(t *testing.T) {
	// No direct WR slot: the first flexible rule that accepts WR wins, and
	// that preference follows configuration order.
	rules := RosterRules{
		{Kind: SlotQB, Count: 1},
		{Kind: SlotSuperflex, Count: 1},
		{Kind: SlotFlex, Count: 1},
		{Kind: SlotBench, Count: 3},
	}

	kind, ok := rules.SlotForPosition(PositionWR)
	assert.True(t, ok)
	assert.Equal(t, SlotSuperflex, kind)

	// Reordering the same rules changes the resolved slot.
	reordered := RosterRules{
		{Kind: SlotQB, Count: 1},
		{Kind: SlotFlex, Count: 1},
		{Kind: SlotSuperflex, Count: 1},
		{Kind: SlotBench, Count: 3},
	}
	kind, ok = reordered.SlotForPosition(PositionWR)
	assert.True(t, ok)
	assert.Equal(t, SlotFlex, kind)
}

func TestSlotForPositionKickerSkipsFlex(t *testing.T) {
	// Flex does not accept kickers; bench does.
	rules := RosterRules{
		{Kind: SlotFlex, Count: 1},
		{Kind: SlotBench, Count: 2},
	}
	kind, ok := rules.SlotForPosition(PositionK)
	assert.True(t, ok)
	assert.Equal(t, SlotBench, kind)
}

func TestSlotForPositionNoEligibleSlot(t *testing.T) {
	rules := RosterRules{{Kind: SlotQB, Count: 1}}
	_, ok := rules.SlotForPosition(PositionDST)
	assert.False(t, ok)
}

func TestSlotKindAccepts(t *testing.T) {
	assert.True(t, SlotFlex.Accepts(PositionRB))
	assert.True(t, SlotFlex.Accepts(PositionTE))
	assert.False(t, SlotFlex.Accepts(PositionQB))
	assert.True(t, SlotSuperflex.Accepts(PositionQB))
	assert.True(t, SlotBench.Accepts(PositionDST))
	assert.True(t, SlotWR.Accepts(PositionWR))
	assert.False(t, SlotWR.Accepts(PositionRB))
}

func TestTotalSlotsAndCount(t *testing.T) {
	rules := DefaultRosterRules()
	assert.Equal(t, 12, rules.TotalSlots())
	assert.Equal(t, 3, rules.Count(SlotBench))
	assert.Equal(t, 0, rules.Count(SlotSuperflex))
	assert.True(t, rules.Has(SlotFlex))
	assert.False(t, rules.Has(SlotSuperflex))

	roster := rules.EmptyRoster()
	assert.Len(t, roster, 8)
	for _, n := range roster {
		assert.Zero(t, n)
	}
}
