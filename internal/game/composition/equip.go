package composition

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/paperdoll/internal/game/part"
	"github.com/cory-johannsen/paperdoll/internal/game/rig"
)

// Equip assigns p to slot, or clears slot when p is nil.
//
// A part not supporting the current body type is replaced by the nearest
// compatible part of its category (searching forward for Male, backward for
// Female, then the whole category); with none compatible the slot is
// cleared. A part whose category cannot occupy slot is rejected and the slot
// is left unchanged. Equipping a hand slot may clear the other hand:
//
//   - MainHand with a two-handed weapon clears OffHand.
//   - MainHand with any weapon while OffHand holds a bow clears OffHand.
//   - OffHand with a bow clears MainHand.
//   - OffHand with any weapon while MainHand holds a two-handed weapon
//     clears MainHand.
//
// Postcondition: the returned Report lists every recovered fault.
func (e *Engine) Equip(slot part.Slot, p *part.Part) Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	var r Report
	e.equip(&r, slot, p)
	return r
}

// EquipByName resolves name and pkg through the catalog and equips the
// result. An empty name clears the slot. An unknown part is reported and the
// slot is left unchanged.
func (e *Engine) EquipByName(slot part.Slot, name, pkg string) Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	var r Report
	if name == "" {
		e.equip(&r, slot, nil)
		return r
	}
	p, ok := e.catalog.FindPart(name, pkg, slot)
	if !ok {
		e.fault(&r, Fault{Kind: FaultLookupFailure, Slot: slot, Part: name, Package: pkg, Body: e.body, Detail: "part not found in catalog"})
		return r
	}
	e.equip(&r, slot, p)
	return r
}

func (e *Engine) equip(r *Report, slot part.Slot, p *part.Part) {
	if !slot.Valid() {
		e.fault(r, Fault{Kind: FaultLookupFailure, Slot: slot, Part: p.String(), Body: e.body, Detail: "unknown slot"})
		return
	}
	if p != nil && !e.fits(slot, p) {
		e.fault(r, Fault{Kind: FaultCategoryMismatch, Slot: slot, Part: p.Name, Package: p.Package, Body: e.body,
			Detail: "part category " + p.Category.String() + " cannot occupy slot"})
		return
	}

	if p != nil && !p.Supports(e.body) {
		alt := e.alternatePart(slot, p)
		f := Fault{Kind: FaultBodyIncompatible, Slot: slot, Part: p.Name, Package: p.Package, Body: e.body}
		if alt != nil {
			f.Substitute = alt.String()
		} else {
			f.Detail = "no compatible part in category; slot cleared"
		}
		e.fault(r, f)
		p = alt
	}

	switch {
	case slot == part.SlotMainHand:
		off := e.slots.get(part.SlotOffHand).part
		if p.Is(part.WeaponTwoHanded) || (p != nil && off.Is(part.WeaponBow)) {
			e.equipHand(part.SlotOffHand, nil)
		}
		e.equipHand(part.SlotMainHand, p)
	case slot == part.SlotOffHand:
		main := e.slots.get(part.SlotMainHand).part
		if p.Is(part.WeaponBow) || (p != nil && main.Is(part.WeaponTwoHanded)) {
			e.equipHand(part.SlotMainHand, nil)
		}
		e.equipHand(part.SlotOffHand, p)
	case slot == part.SlotSkinDetails:
		e.equipSkinDetails(p)
	default:
		e.equipGeneric(slot, p)
	}
}

// fits reports whether p's category (and, for hands, its weapon category)
// may occupy slot.
func (e *Engine) fits(slot part.Slot, p *part.Part) bool {
	if p.Category != slot.Category() {
		return false
	}
	if slot.IsWeapon() {
		return p.Kind.Weapon.FitsHand(slot)
	}
	return true
}

// alternatePart searches p's category for a part supporting the current
// body type and fitting slot: first from p's index stepping +1 for Male and
// -1 for Female until the list bounds, then over the whole list in order.
//
// Postcondition: returns nil iff no part in the category qualifies.
func (e *Engine) alternatePart(slot part.Slot, p *part.Part) *part.Part {
	parts := e.catalog.PartsOf(p.Category)
	ok := func(q *part.Part) bool {
		return q.Supports(e.body) && e.fits(slot, q)
	}
	step := 1
	if e.body == part.Female {
		step = -1
	}
	if start := e.catalog.IndexOf(p); start >= 0 {
		for i := start; i >= 0 && i < len(parts); i += step {
			if ok(parts[i]) {
				return parts[i]
			}
		}
	}
	for _, q := range parts {
		if ok(q) {
			return q
		}
	}
	return nil
}

// equipHand writes w into a hand slot without applying exclusivity rules.
func (e *Engine) equipHand(hand part.Slot, w *part.Part) {
	s := e.slots.get(hand)
	for _, links := range e.setup.HandLinks(hand) {
		e.clearLinks(links)
	}
	if w == nil {
		s.part = nil
		return
	}
	s.part = w
	if s.material != nil {
		s.material.SetTexture(rig.PropColorMask, w.ColorMask)
	}
	e.writeSprites(hand, e.setup.WeaponLinksFor(hand, w.Kind.Weapon), w)
	if e.setup.IsDirectTint(hand) {
		e.setColor(hand, 1, s.colors[0])
	}
}

// equipSkinDetails assigns the skin detail texture. Parts of any other
// category are ignored.
func (e *Engine) equipSkinDetails(p *part.Part) {
	if p != nil && p.Category != part.CategorySkinDetails {
		return
	}
	s := e.slots.get(part.SlotSkinDetails)
	s.part = p
	if s.material == nil {
		return
	}
	if p == nil {
		s.material.SetTexture(rig.PropDetails, "")
		return
	}
	s.material.SetTexture(rig.PropDetails, p.Texture)
}

// equipGeneric resets slot's linked renderers and writes p's sprites.
func (e *Engine) equipGeneric(slot part.Slot, p *part.Part) {
	s := e.slots.get(slot)
	links := e.setup.Links(slot)
	e.clearLinks(links)
	s.part = p
	if p != nil {
		if s.material != nil {
			s.material.SetTexture(rig.PropColorMask, p.ColorMask)
		}
		e.writeSprites(slot, links, p)
	}
	if e.setup.IsDirectTint(slot) {
		e.setColor(slot, 1, s.colors[0])
	}
}

func (e *Engine) clearLinks(links map[string]string) {
	for _, path := range links {
		if rd, ok := e.skeleton.Renderer(path); ok {
			rd.Sprite = ""
		}
	}
}

// writeSprites maps each of p's sprites through links onto the skeleton.
// Sprites without a link are skipped.
func (e *Engine) writeSprites(slot part.Slot, links map[string]string, p *part.Part) {
	for _, sp := range p.Sprites {
		path, ok := links[sp.Name]
		if !ok {
			e.logger.Debug("sprite has no link",
				zap.Stringer("slot", slot),
				zap.String("part", p.String()),
				zap.String("sprite", sp.Name),
			)
			continue
		}
		rd, ok := e.skeleton.Renderer(path)
		if !ok {
			continue
		}
		rd.Sprite = sp.Ref
	}
}
