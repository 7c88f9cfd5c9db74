package composition

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/cory-johannsen/paperdoll/internal/game/color"
	"github.com/cory-johannsen/paperdoll/internal/game/part"
)

// SlotData is one slot's entry in a Snapshot. An empty PartName denotes an
// unassigned slot.
type SlotData struct {
	Category    part.Slot   `json:"category"`
	PartName    string      `json:"partName"`
	PartPackage string      `json:"partPackage"`
	Color1      color.Color `json:"color1"`
	Color2      color.Color `json:"color2"`
	Color3      color.Color `json:"color3"`
}

// Snapshot is the durable, flat record of a composition.
// Invariant: SlotData holds one entry per part.Slot in slot order.
type Snapshot struct {
	BodyType  part.BodyType `json:"bodyType"`
	SkinColor color.Color   `json:"skinColor"`
	TintColor color.Color   `json:"tintColor"`
	SlotData  []SlotData    `json:"slotData"`
}

// Validate checks that the Snapshot satisfies its invariants.
//
// Postcondition: returns nil iff the body type is known, every color is in
// range, and SlotData has exactly one entry per slot in slot order.
func (s Snapshot) Validate() error {
	var errs []error
	if !s.BodyType.Valid() {
		errs = append(errs, fmt.Errorf("bodyType %d is not valid", int(s.BodyType)))
	}
	if !s.SkinColor.Valid() {
		errs = append(errs, errors.New("skinColor has a channel outside [0,1]"))
	}
	if !s.TintColor.Valid() {
		errs = append(errs, errors.New("tintColor has a channel outside [0,1]"))
	}
	if len(s.SlotData) != part.SlotCount {
		errs = append(errs, fmt.Errorf("slotData must have %d entries, got %d", part.SlotCount, len(s.SlotData)))
	}
	for i, sd := range s.SlotData {
		if sd.Category != part.Slot(i) {
			errs = append(errs, fmt.Errorf("slotData[%d] has category %d, want %d", i, int(sd.Category), i))
		}
		for j, c := range [3]color.Color{sd.Color1, sd.Color2, sd.Color3} {
			if !c.Valid() {
				errs = append(errs, fmt.Errorf("slotData[%d].color%d has a channel outside [0,1]", i, j+1))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("snapshot validation failed: %v", errs)
	}
	return nil
}

// Checksum returns the xxhash64 of the snapshot's JSON encoding. Equal
// snapshots have equal checksums.
func (s Snapshot) Checksum() uint64 {
	data, err := json.Marshal(s)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(data)
}

// Export reads body type, skin and tint colors, and every slot's
// assignment and colors verbatim from the slot table.
func (e *Engine) Export() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := Snapshot{
		BodyType:  e.body,
		SkinColor: e.skin,
		TintColor: e.tint,
		SlotData:  make([]SlotData, 0, part.SlotCount),
	}
	for _, s := range e.slots.slots {
		sd := SlotData{
			Category: s.category,
			Color1:   s.colors[0],
			Color2:   s.colors[1],
			Color3:   s.colors[2],
		}
		if s.part != nil {
			sd.PartName = s.part.Name
			sd.PartPackage = s.part.Package
		}
		snap.SlotData = append(snap.SlotData, sd)
	}
	return snap
}

// Import replaces the composition with snap: it sets body type, skin and
// tint, re-initializes against empty slots, then equips and colors every
// entry. Entries naming parts absent from the catalog leave their slot
// unassigned and are reported; their colors are still restored.
//
// Postcondition: given an unchanged catalog, Export returns a snapshot equal
// to the one that produced snap.
func (e *Engine) Import(snap Snapshot) Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	var r Report

	body := snap.BodyType
	if !body.Valid() {
		e.fault(&r, Fault{Kind: FaultLookupFailure, Slot: -1, Body: body, Detail: "unknown body type; keeping current"})
		body = e.body
	}
	e.skin = snap.SkinColor.Clamped()
	e.tint = snap.TintColor.Clamped()
	e.slots.reset()
	e.bindMaterials()
	e.initialize(&r, body)

	for _, sd := range snap.SlotData {
		if !sd.Category.Valid() {
			e.fault(&r, Fault{Kind: FaultLookupFailure, Slot: sd.Category, Part: sd.PartName, Package: sd.PartPackage, Body: e.body, Detail: "unknown slot in snapshot"})
			continue
		}
		switch {
		case sd.PartName == "":
			e.equip(&r, sd.Category, nil)
		default:
			p, ok := e.catalog.FindPart(sd.PartName, sd.PartPackage, sd.Category)
			if !ok {
				e.fault(&r, Fault{Kind: FaultSnapshotPartMissing, Slot: sd.Category, Part: sd.PartName, Package: sd.PartPackage, Body: e.body})
				e.equip(&r, sd.Category, nil)
			} else {
				e.equip(&r, sd.Category, p)
			}
		}
		e.setColor(sd.Category, 1, sd.Color1.Clamped())
		e.setColor(sd.Category, 2, sd.Color2.Clamped())
		e.setColor(sd.Category, 3, sd.Color3.Clamped())
	}
	return r
}
