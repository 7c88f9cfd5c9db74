// Package composition implements the part slot resolution and composition
// engine: equipping parts into anatomical slots with weapon exclusivity and
// body-type fallback, three-layer recoloring, bulk re-initialization on body
// change, and snapshot export/import.
package composition

import (
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/paperdoll/internal/game/color"
	"github.com/cory-johannsen/paperdoll/internal/game/part"
	"github.com/cory-johannsen/paperdoll/internal/game/rig"
)

// Option configures an Engine at construction.
type Option func(*Engine)

// WithInstanceMaterials controls whether the engine clones one material per
// distinct stock material (true, the default) or shares the setup's stock
// materials.
func WithInstanceMaterials(instance bool) Option {
	return func(e *Engine) { e.instanceMaterials = instance }
}

// WithBodyType sets the initial body type. The default is part.Male.
func WithBodyType(body part.BodyType) Option {
	return func(e *Engine) { e.body = body }
}

// WithSkinColor sets the initial skin color. The default is color.Gray.
func WithSkinColor(c color.Color) Option {
	return func(e *Engine) { e.skin = c }
}

// WithTintColor sets the initial tint color. The default is color.White.
func WithTintColor(c color.Color) Option {
	return func(e *Engine) { e.tint = c }
}

// Engine owns one character composition: its slot table, body type, skin
// and tint colors, and the skeleton of render targets they are applied to.
//
// All exported methods are safe for concurrent use; a single mutex guards
// every operation so the two-slot weapon rules read and write atomically.
type Engine struct {
	mu sync.Mutex

	catalog *part.Catalog
	setup   *rig.Setup
	logger  *zap.Logger

	instanceMaterials bool
	body              part.BodyType
	skin              color.Color
	tint              color.Color

	slots       *slotTable
	skeleton    *rig.Skeleton
	swapPending bool
}

// New creates an Engine over catalog and setup with every slot empty, and
// builds the initial skeleton.
//
// Precondition: catalog and setup must be non-nil; setup must be valid.
// Postcondition: every slot is unassigned with White colors; a skeleton swap
// is pending until CommitSkeletonSwap is called.
func New(catalog *part.Catalog, setup *rig.Setup, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		catalog:           catalog,
		setup:             setup,
		logger:            logger,
		instanceMaterials: true,
		body:              part.Male,
		skin:              color.Gray,
		tint:              color.White,
		slots:             newSlotTable(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.body.Valid() {
		e.body = part.Male
	}
	e.bindMaterials()
	var r Report
	e.initialize(&r, e.body)
	return e
}

// bindMaterials assigns each slot its material: a per-composition instance
// per distinct stock material name when instancing is enabled, otherwise the
// shared stock material.
func (e *Engine) bindMaterials() {
	instances := make(map[string]*rig.Material)
	for _, slot := range part.AllSlots() {
		s := e.slots.get(slot)
		stock := e.setup.StockMaterial(slot)
		if stock == nil {
			s.material = nil
			continue
		}
		if !e.instanceMaterials {
			s.material = stock
			continue
		}
		m, ok := instances[stock.Name()]
		if !ok {
			m = stock.Clone()
			instances[stock.Name()] = m
		}
		s.material = m
	}
}

// Catalog returns the part catalog the engine resolves against.
func (e *Engine) Catalog() *part.Catalog {
	return e.catalog
}

// BodyType returns the current body type.
func (e *Engine) BodyType() part.BodyType {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.body
}

// SetBodyType discards the skeleton, rebuilds it for body, and replays the
// slot table onto it. Parts not supporting body are substituted.
func (e *Engine) SetBodyType(body part.BodyType) Report {
	return e.Initialize(body)
}

// Initialize rebuilds the skeleton for body, repaints skin and tint, and
// re-applies every slot's assignment and colors in slot order. Calling it
// twice with unchanged slots yields the same state.
//
// Postcondition: a skeleton swap is pending until CommitSkeletonSwap.
func (e *Engine) Initialize(body part.BodyType) Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	var r Report
	if !body.Valid() {
		e.fault(&r, Fault{Kind: FaultLookupFailure, Slot: -1, Body: body, Detail: "unknown body type"})
		return r
	}
	e.initialize(&r, body)
	return r
}

func (e *Engine) initialize(r *Report, body part.BodyType) {
	e.body = body
	e.beginSkeletonSwap()
	e.relinkMaterials()
	e.repaintSkin()
	e.repaintTint()
	e.refreshSlots(r)
}

// beginSkeletonSwap replaces the skeleton with a fresh one for the current
// body and disables sorting until the render loop commits the swap.
func (e *Engine) beginSkeletonSwap() {
	e.skeleton = rig.NewSkeleton(e.setup, e.body)
	e.skeleton.SetSortingEnabled(false)
	e.swapPending = true
	e.logger.Debug("skeleton swap begun", zap.Stringer("body", e.body))
}

// CommitSkeletonSwap re-enables sorting after a skeleton swap. The render
// loop calls it on the tick following Initialize or SetBodyType.
//
// Postcondition: returns true iff a swap was pending.
func (e *Engine) CommitSkeletonSwap() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.swapPending {
		return false
	}
	e.skeleton.SetSortingEnabled(true)
	e.swapPending = false
	return true
}

// SkeletonSwapPending reports whether a swap awaits CommitSkeletonSwap.
func (e *Engine) SkeletonSwapPending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.swapPending
}

// relinkMaterials binds every skeleton renderer to its slot's material.
func (e *Engine) relinkMaterials() {
	for path, slot := range e.setup.MaterialSlots() {
		rd, ok := e.skeleton.Renderer(path)
		if !ok {
			continue
		}
		rd.Material = e.slots.get(slot).material
	}
}

// refreshSlots replays every slot's assignment and colors in slot order.
func (e *Engine) refreshSlots(r *Report) {
	for _, slot := range part.AllSlots() {
		s := e.slots.get(slot)
		colors := s.colors
		e.equip(r, slot, s.part)
		if !e.setup.IsDirectTint(slot) {
			for i, c := range colors {
				e.setColor(slot, i+1, c)
			}
		}
	}
}

// SkinColor returns the global skin color.
func (e *Engine) SkinColor() color.Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.skin
}

// SetSkinColor sets the skin color and repaints every skin renderer.
func (e *Engine) SetSkinColor(c color.Color) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.skin = c
	e.repaintSkin()
}

// TintColor returns the global tint color.
func (e *Engine) TintColor() color.Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tint
}

// SetTintColor sets the tint color and repaints every slot material that
// declares a tint parameter.
func (e *Engine) SetTintColor(c color.Color) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tint = c
	e.repaintTint()
}

// ResetTintColor restores the tint to White.
func (e *Engine) ResetTintColor() {
	e.SetTintColor(color.White)
}

func (e *Engine) repaintSkin() {
	for _, path := range e.setup.Skin {
		if rd, ok := e.skeleton.Renderer(path); ok {
			rd.Color = e.skin
		}
	}
}

func (e *Engine) repaintTint() {
	for _, slot := range part.AllSlots() {
		m := e.slots.get(slot).material
		if m != nil && m.HasProperty(rig.PropTint) {
			m.SetColor(rig.PropTint, e.tint)
		}
	}
}

// AssignedPart returns the part assigned to slot, or nil.
func (e *Engine) AssignedPart(slot part.Slot) *part.Part {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.slots.get(slot)
	if s == nil {
		return nil
	}
	return s.part
}

// Slots returns a copy of every slot's abstract state in slot order.
func (e *Engine) Slots() []SlotView {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]SlotView, 0, part.SlotCount)
	for _, s := range e.slots.slots {
		out = append(out, SlotView{Slot: s.category, Part: s.part, Colors: s.colors})
	}
	return out
}

// Renderer returns a copy of the renderer at path in the current skeleton.
func (e *Engine) Renderer(path string) (rig.Renderer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rd, ok := e.skeleton.Renderer(path)
	if !ok {
		return rig.Renderer{}, false
	}
	return *rd, true
}

// SortingEnabled reports whether the current skeleton's sorting group is on.
func (e *Engine) SortingEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.skeleton.SortingEnabled()
}

// MaterialName returns the name of slot's material, or "" when it has none.
func (e *Engine) MaterialName(slot part.Slot) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if m := e.material(slot); m != nil {
		return m.Name()
	}
	return ""
}

// MaterialColor returns a color parameter of slot's material, or color.Clear.
func (e *Engine) MaterialColor(slot part.Slot, prop string) color.Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	if m := e.material(slot); m != nil {
		return m.Color(prop)
	}
	return color.Clear
}

// MaterialTexture returns a texture parameter of slot's material, or "".
func (e *Engine) MaterialTexture(slot part.Slot, prop string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if m := e.material(slot); m != nil {
		return m.Texture(prop)
	}
	return ""
}

// SharesMaterial reports whether slots a and b write to the same material.
func (e *Engine) SharesMaterial(a, b part.Slot) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ma, mb := e.material(a), e.material(b)
	return ma != nil && ma == mb
}

// UsesStockMaterial reports whether slot writes to the setup's stock material.
func (e *Engine) UsesStockMaterial(slot part.Slot) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.material(slot)
	return m != nil && m == e.setup.StockMaterial(slot)
}

func (e *Engine) material(slot part.Slot) *rig.Material {
	s := e.slots.get(slot)
	if s == nil {
		return nil
	}
	return s.material
}

// fault records f in r and logs it.
func (e *Engine) fault(r *Report, f Fault) {
	r.Faults = append(r.Faults, f)
	e.logger.Warn("composition fault",
		zap.String("kind", string(f.Kind)),
		zap.Stringer("slot", f.Slot),
		zap.String("part", f.Part),
		zap.String("package", f.Package),
		zap.Stringer("body", f.Body),
		zap.String("substitute", f.Substitute),
		zap.String("detail", f.Detail),
	)
}
