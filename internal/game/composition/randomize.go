package composition

import (
	"github.com/cory-johannsen/paperdoll/internal/game/color"
	"github.com/cory-johannsen/paperdoll/internal/game/part"
)

// Randomize equips a random part compatible with the current body type in
// slot, then paints it from palette: layer 1 only for single-color slots,
// all three layers otherwise. A slot with no compatible part keeps its
// assignment and is only repainted.
//
// Precondition: src must be non-nil; palette must be valid.
func (e *Engine) Randomize(slot part.Slot, src Source, palette *color.Palette) Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	var r Report
	e.randomize(&r, slot, src, palette)
	return r
}

// RandomizeAll randomizes every slot in slot order. Later hand slots may
// clear earlier ones under the weapon exclusivity rules.
func (e *Engine) RandomizeAll(src Source, palette *color.Palette) Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	var r Report
	for _, slot := range part.AllSlots() {
		e.randomize(&r, slot, src, palette)
	}
	return r
}

func (e *Engine) randomize(r *Report, slot part.Slot, src Source, palette *color.Palette) {
	if !slot.Valid() {
		e.fault(r, Fault{Kind: FaultLookupFailure, Slot: slot, Body: e.body, Detail: "unknown slot"})
		return
	}
	var candidates []*part.Part
	for _, g := range e.catalog.Available(slot, e.body) {
		candidates = append(candidates, g.Parts...)
	}
	if len(candidates) > 0 {
		e.equip(r, slot, candidates[src.Intn(len(candidates))])
	}
	if palette == nil || len(palette.Colors) == 0 {
		return
	}
	n := len(palette.Colors)
	e.setColor(slot, 1, palette.Pick(src.Intn(n)))
	if slot == part.SlotSkinDetails || e.setup.IsDirectTint(slot) {
		return
	}
	e.setColor(slot, 2, palette.Pick(src.Intn(n)))
	e.setColor(slot, 3, palette.Pick(src.Intn(n)))
}
