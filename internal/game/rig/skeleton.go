package rig

import (
	"sort"

	"github.com/cory-johannsen/paperdoll/internal/game/color"
	"github.com/cory-johannsen/paperdoll/internal/game/part"
)

// Renderer is a single sprite render target in a skeleton.
type Renderer struct {
	// Path is the renderer's hierarchy path, e.g. "Root/Body/Chest".
	Path string
	// Sprite is the asset reference currently drawn, or "" when empty.
	Sprite string
	// Color is the direct sprite tint.
	Color color.Color
	// SortingOrder is the draw order; higher draws later.
	SortingOrder int
	// Material is the shader material bound to this renderer, or nil.
	Material *Material
}

// Skeleton is the set of renderers instantiated from one body template.
// Invariant: renderer paths are unique.
type Skeleton struct {
	body           part.BodyType
	renderers      map[string]*Renderer
	sortingEnabled bool
}

// NewSkeleton instantiates the renderers of body's template in setup.
//
// Precondition: setup is valid.
// Postcondition: every renderer has an empty sprite, White tint, and its
// sorting order taken from setup's order list; sorting is enabled.
func NewSkeleton(setup *Setup, body part.BodyType) *Skeleton {
	paths := setup.Template(body)
	s := &Skeleton{
		body:           body,
		renderers:      make(map[string]*Renderer, len(paths)),
		sortingEnabled: true,
	}
	order := make(map[string]int, len(setup.Order))
	for i, p := range setup.Order {
		order[p] = i
	}
	for i, p := range paths {
		so, ok := order[p]
		if !ok {
			so = len(setup.Order) + i
		}
		s.renderers[p] = &Renderer{Path: p, Color: color.White, SortingOrder: so}
	}
	return s
}

// Body returns the body type the skeleton was built from.
func (s *Skeleton) Body() part.BodyType {
	return s.body
}

// Renderer returns the renderer at path.
//
// Postcondition: ok is false iff no renderer exists at path.
func (s *Skeleton) Renderer(path string) (*Renderer, bool) {
	r, ok := s.renderers[path]
	return r, ok
}

// Renderers returns every renderer sorted by SortingOrder.
func (s *Skeleton) Renderers() []*Renderer {
	out := make([]*Renderer, 0, len(s.renderers))
	for _, r := range s.renderers {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortingOrder != out[j].SortingOrder {
			return out[i].SortingOrder < out[j].SortingOrder
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// SortingEnabled reports whether the sorting group is active.
func (s *Skeleton) SortingEnabled() bool {
	return s.sortingEnabled
}

// SetSortingEnabled toggles the sorting group.
func (s *Skeleton) SetSortingEnabled(enabled bool) {
	s.sortingEnabled = enabled
}
