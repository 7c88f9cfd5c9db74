package composition

import (
	"github.com/cory-johannsen/paperdoll/internal/game/color"
	"github.com/cory-johannsen/paperdoll/internal/game/part"
	"github.com/cory-johannsen/paperdoll/internal/game/rig"
)

// slotState is the mutable holder of one slot's assignment and colors.
type slotState struct {
	category part.Slot
	part     *part.Part
	colors   [3]color.Color
	material *rig.Material
}

// slotTable holds exactly one slotState per part.Slot for the lifetime of a
// composition. Slots are mutated in place, never created or destroyed.
type slotTable struct {
	slots [part.SlotCount]*slotState
}

func newSlotTable() *slotTable {
	t := &slotTable{}
	for i := range t.slots {
		t.slots[i] = &slotState{category: part.Slot(i)}
	}
	t.reset()
	return t
}

// get returns the state for slot, or nil when slot is invalid.
func (t *slotTable) get(slot part.Slot) *slotState {
	if !slot.Valid() {
		return nil
	}
	return t.slots[slot]
}

// reset clears every assignment and restores neutral colors.
// Material bindings are kept.
func (t *slotTable) reset() {
	for _, s := range t.slots {
		s.part = nil
		s.colors = [3]color.Color{color.White, color.White, color.White}
	}
}

// SlotView is a read-only copy of one slot's abstract state.
type SlotView struct {
	Slot   part.Slot
	Part   *part.Part
	Colors [3]color.Color
}
