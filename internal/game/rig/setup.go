package rig

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/paperdoll/internal/game/part"
)

// WeaponLinks holds the link tables used by the two hand slots. Which table
// applies depends on the hand and the weapon category.
type WeaponLinks struct {
	MainWeapon map[string]string `yaml:"main_weapon"`
	OffWeapon  map[string]string `yaml:"off_weapon"`
	Bow        map[string]string `yaml:"bow"`
	Shield     map[string]string `yaml:"shield"`
}

// MaterialDef declares a stock material. Slots naming the same material
// share one stock instance.
type MaterialDef struct {
	Name       string   `yaml:"name"`
	Properties []string `yaml:"properties"`
}

// setupFile is the on-disk shape of a Setup. Slot and body keys are names.
type setupFile struct {
	PartLinks   map[string]map[string]string `yaml:"part_links"`
	WeaponLinks WeaponLinks                  `yaml:"weapon_links"`
	DirectTint  map[string][]string          `yaml:"direct_tint"`
	WeaponFX    map[string]string            `yaml:"weapon_fx"`
	Skin        []string                     `yaml:"skin"`
	Order       []string                     `yaml:"order"`
	Materials   map[string]MaterialDef       `yaml:"materials"`
	Bodies      map[string][]string          `yaml:"bodies"`
}

// Setup is the static description of a character rig: the per-slot link
// tables from sprite fragment names to renderer paths, the direct-tint
// renderer lists, weapon FX renderers, skin renderers, sorting order, stock
// materials, and body templates. A Setup is read-only once built.
type Setup struct {
	PartLinks  map[part.Slot]map[string]string
	Weapons    WeaponLinks
	DirectTint map[part.Slot][]string
	WeaponFX   map[part.Slot]string
	Skin       []string
	Order      []string
	Bodies     map[part.BodyType][]string

	materials map[part.Slot]*Material
	allPaths  []string
}

// LoadSetup reads a YAML setup file.
//
// Precondition: path is a readable YAML file.
// Postcondition: returns a valid Setup or a non-nil error.
func LoadSetup(path string) (*Setup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadSetup: cannot read file %q: %w", path, err)
	}
	var f setupFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("LoadSetup: cannot parse file %q: %w", path, err)
	}
	s, err := buildSetup(f)
	if err != nil {
		return nil, fmt.Errorf("LoadSetup: invalid setup in %q: %w", path, err)
	}
	return s, nil
}

func buildSetup(f setupFile) (*Setup, error) {
	s := &Setup{
		PartLinks:  make(map[part.Slot]map[string]string),
		Weapons:    f.WeaponLinks,
		DirectTint: make(map[part.Slot][]string),
		WeaponFX:   make(map[part.Slot]string),
		Skin:       f.Skin,
		Order:      f.Order,
		Bodies:     make(map[part.BodyType][]string),
		materials:  make(map[part.Slot]*Material),
	}
	var errs []error
	for name, links := range f.PartLinks {
		slot, err := part.ParseSlot(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("part_links: %w", err))
			continue
		}
		s.PartLinks[slot] = links
	}
	for name, paths := range f.DirectTint {
		slot, err := part.ParseSlot(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("direct_tint: %w", err))
			continue
		}
		s.DirectTint[slot] = paths
	}
	for name, path := range f.WeaponFX {
		slot, err := part.ParseSlot(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("weapon_fx: %w", err))
			continue
		}
		s.WeaponFX[slot] = path
	}
	for name, paths := range f.Bodies {
		body, err := part.ParseBodyType(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("bodies: %w", err))
			continue
		}
		s.Bodies[body] = paths
	}
	stock := make(map[string]*Material)
	for name, def := range f.Materials {
		slot, err := part.ParseSlot(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("materials: %w", err))
			continue
		}
		if def.Name == "" {
			errs = append(errs, fmt.Errorf("materials: %s has an empty material name", slot))
			continue
		}
		m, ok := stock[def.Name]
		if !ok {
			m = NewMaterial(def.Name, def.Properties...)
			stock[def.Name] = m
		}
		s.materials[slot] = m
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("setup build failed: %v", errs)
	}
	s.allPaths = s.collectPaths()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// collectPaths returns the sorted union of every renderer path the setup
// refers to.
func (s *Setup) collectPaths() []string {
	set := make(map[string]bool)
	add := func(paths ...string) {
		for _, p := range paths {
			if p != "" {
				set[p] = true
			}
		}
	}
	for _, links := range s.PartLinks {
		for _, p := range links {
			add(p)
		}
	}
	for _, table := range s.weaponTables() {
		for _, p := range table {
			add(p)
		}
	}
	for _, paths := range s.DirectTint {
		add(paths...)
	}
	for _, p := range s.WeaponFX {
		add(p)
	}
	add(s.Skin...)
	add(s.Order...)
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (s *Setup) weaponTables() []map[string]string {
	return []map[string]string{s.Weapons.MainWeapon, s.Weapons.OffWeapon, s.Weapons.Bow, s.Weapons.Shield}
}

// Validate checks that the Setup satisfies its invariants.
//
// Postcondition: returns nil iff no link table targets a weapon or skin
// details slot, direct-tint lists are non-empty, and every referenced
// renderer exists in every body template.
func (s *Setup) Validate() error {
	var errs []error
	for slot := range s.PartLinks {
		if slot.IsWeapon() || slot == part.SlotSkinDetails {
			errs = append(errs, fmt.Errorf("part_links must not contain %s", slot))
		}
	}
	for slot, paths := range s.DirectTint {
		if len(paths) == 0 {
			errs = append(errs, fmt.Errorf("direct_tint %s must list at least one renderer", slot))
		}
		if slot == part.SlotSkinDetails {
			errs = append(errs, errors.New("direct_tint must not contain skin_details"))
		}
	}
	for slot := range s.WeaponFX {
		if !slot.IsWeapon() {
			errs = append(errs, fmt.Errorf("weapon_fx must only contain hand slots, got %s", slot))
		}
	}
	for _, body := range part.BodyTypes {
		tmpl, ok := s.Bodies[body]
		if !ok {
			continue
		}
		have := make(map[string]bool, len(tmpl))
		for _, p := range tmpl {
			have[p] = true
		}
		for _, p := range s.allPaths {
			if !have[p] {
				errs = append(errs, fmt.Errorf("body %s template lacks renderer %q", body, p))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("setup validation failed: %v", errs)
	}
	return nil
}

// Template returns the renderer paths instantiated for body. Without an
// explicit template the union of all referenced paths is used.
func (s *Setup) Template(body part.BodyType) []string {
	if tmpl, ok := s.Bodies[body]; ok {
		return tmpl
	}
	return s.allPaths
}

// Links returns the link table of a generic slot, or nil.
func (s *Setup) Links(slot part.Slot) map[string]string {
	return s.PartLinks[slot]
}

// WeaponLinksFor returns the link table used when a weapon of category w is
// held in hand, or nil when the pairing has no table.
func (s *Setup) WeaponLinksFor(hand part.Slot, w part.WeaponCategory) map[string]string {
	switch hand {
	case part.SlotMainHand:
		if w == part.WeaponOneHanded || w == part.WeaponTwoHanded {
			return s.Weapons.MainWeapon
		}
	case part.SlotOffHand:
		switch w {
		case part.WeaponBow:
			return s.Weapons.Bow
		case part.WeaponShield:
			return s.Weapons.Shield
		case part.WeaponOneHanded:
			return s.Weapons.OffWeapon
		}
	}
	return nil
}

// HandLinks returns every link table a hand may write to.
func (s *Setup) HandLinks(hand part.Slot) []map[string]string {
	switch hand {
	case part.SlotMainHand:
		return []map[string]string{s.Weapons.MainWeapon}
	case part.SlotOffHand:
		return []map[string]string{s.Weapons.Bow, s.Weapons.Shield, s.Weapons.OffWeapon}
	}
	return nil
}

// IsDirectTint reports whether slot is colored by tinting sprites directly.
func (s *Setup) IsDirectTint(slot part.Slot) bool {
	_, ok := s.DirectTint[slot]
	return ok
}

// StockMaterial returns the shared stock material for slot, or nil.
func (s *Setup) StockMaterial(slot part.Slot) *Material {
	return s.materials[slot]
}

// MaterialSlots returns, for each renderer path, the slot whose material
// the renderer is bound to. Skin renderers not linked to a part slot bind to
// the skin details slot.
func (s *Setup) MaterialSlots() map[string]part.Slot {
	out := make(map[string]part.Slot)
	for _, slot := range part.AllSlots() {
		if s.materials[slot] == nil {
			continue
		}
		switch {
		case slot == part.SlotSkinDetails:
			for _, p := range s.Skin {
				if _, bound := out[p]; !bound {
					out[p] = slot
				}
			}
		case slot.IsWeapon():
			for _, table := range s.HandLinks(slot) {
				for _, p := range table {
					out[p] = slot
				}
			}
		default:
			for _, p := range s.PartLinks[slot] {
				out[p] = slot
			}
		}
	}
	return out
}
