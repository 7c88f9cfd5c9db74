package composition

import (
	"strconv"

	"github.com/cory-johannsen/paperdoll/internal/game/color"
	"github.com/cory-johannsen/paperdoll/internal/game/part"
	"github.com/cory-johannsen/paperdoll/internal/game/rig"
)

// SetColor sets color layer index (1..3) of slot.
//
// Hand slots also tint their weapon FX renderer on layer 1. SkinDetails and
// direct-tint slots have a single color: setting any layer sets all three.
// Other slots set only the requested layer's shader parameter. The stored
// color is kept even when the slot is unassigned.
func (e *Engine) SetColor(slot part.Slot, index int, c color.Color) Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	var r Report
	if !slot.Valid() || rig.ColorProp(index) == "" {
		e.fault(&r, Fault{Kind: FaultLookupFailure, Slot: slot, Body: e.body, Detail: "invalid color layer " + strconv.Itoa(index)})
		return r
	}
	e.setColor(slot, index, c)
	return r
}

// Color returns color layer index (1..3) of slot, or color.Clear when slot
// or index is invalid.
func (e *Engine) Color(slot part.Slot, index int) color.Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.slots.get(slot)
	if s == nil || index < 1 || index > 3 {
		return color.Clear
	}
	return s.colors[index-1]
}

func (e *Engine) setColor(slot part.Slot, index int, c color.Color) {
	s := e.slots.get(slot)
	if slot.IsWeapon() && index == 1 {
		if path, ok := e.setup.WeaponFX[slot]; ok {
			if rd, ok := e.skeleton.Renderer(path); ok {
				rd.Color = c
			}
		}
	}

	if slot == part.SlotSkinDetails {
		if s.material != nil {
			s.material.SetColor(rig.PropDetailsColor, c)
		}
		s.colors = [3]color.Color{c, c, c}
		return
	}

	if paths, ok := e.setup.DirectTint[slot]; ok {
		for _, path := range paths {
			if rd, ok := e.skeleton.Renderer(path); ok {
				rd.Color = c
			}
		}
		s.colors = [3]color.Color{c, c, c}
		return
	}

	if s.material != nil {
		s.material.SetColor(rig.ColorProp(index), c)
	}
	s.colors[index-1] = c
}
