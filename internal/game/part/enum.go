// Package part defines character parts, their slot taxonomy, and the
// read-only Catalog they are loaded into.
package part

import (
	"fmt"
	"strings"
)

// BodyType identifies a body template. Values match the snapshot enum index.
type BodyType int

const (
	// Male is the default body template.
	Male BodyType = 0
	// Female is the alternate body template.
	Female BodyType = 1
)

// BodyTypes lists every BodyType in enumeration order.
var BodyTypes = []BodyType{Male, Female}

// Valid reports whether b is a known body type.
func (b BodyType) Valid() bool {
	return b == Male || b == Female
}

// String returns the lower-case YAML name of b.
func (b BodyType) String() string {
	switch b {
	case Male:
		return "male"
	case Female:
		return "female"
	}
	return fmt.Sprintf("BodyType(%d)", int(b))
}

// ParseBodyType parses a body type name, case-insensitively.
func ParseBodyType(s string) (BodyType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male":
		return Male, nil
	case "female":
		return Female, nil
	}
	return 0, fmt.Errorf("part: unknown body type %q", s)
}

// UnmarshalYAML accepts a body type name.
func (b *BodyType) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseBodyType(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Category is the kind of body part a Part represents.
type Category int

// Part categories in enumeration order.
const (
	CategoryArmor Category = iota
	CategoryBoots
	CategoryEar
	CategoryEyebrow
	CategoryEyes
	CategoryFacialHair
	CategoryGloves
	CategoryHair
	CategoryHelmet
	CategoryMouth
	CategoryNose
	CategoryPants
	CategorySkinDetails
	CategoryWeapon
)

var categoryNames = []string{
	"armor", "boots", "ear", "eyebrow", "eyes", "facial_hair", "gloves",
	"hair", "helmet", "mouth", "nose", "pants", "skin_details", "weapon",
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c >= CategoryArmor && c <= CategoryWeapon
}

// String returns the snake_case YAML name of c.
func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory parses a snake_case category name.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range categoryNames {
		if n == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("part: unknown category %q", s)
}

// UnmarshalYAML accepts a category name.
func (c *Category) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Slot identifies one of the fixed anatomical slots of a composition.
// For the generic categories the Slot value equals the Category value.
type Slot int

// Slots in enumeration order.
const (
	SlotArmor Slot = iota
	SlotBoots
	SlotEar
	SlotEyebrow
	SlotEyes
	SlotFacialHair
	SlotGloves
	SlotHair
	SlotHelmet
	SlotMouth
	SlotNose
	SlotPants
	SlotSkinDetails
	SlotMainHand
	SlotOffHand
)

// SlotCount is the number of slots in a composition.
const SlotCount = 15

var slotNames = []string{
	"armor", "boots", "ear", "eyebrow", "eyes", "facial_hair", "gloves",
	"hair", "helmet", "mouth", "nose", "pants", "skin_details", "main_hand", "off_hand",
}

// slotDisplayNames maps every slot to its human-readable label.
var slotDisplayNames = []string{
	"Armor", "Boots", "Ear", "Eyebrow", "Eyes", "Facial Hair", "Gloves",
	"Hair", "Helmet", "Mouth", "Nose", "Pants", "Skin Details", "Main Hand", "Off Hand",
}

// AllSlots returns every Slot in enumeration order.
func AllSlots() []Slot {
	out := make([]Slot, SlotCount)
	for i := range out {
		out[i] = Slot(i)
	}
	return out
}

// Valid reports whether s is a known slot.
func (s Slot) Valid() bool {
	return s >= SlotArmor && s <= SlotOffHand
}

// IsWeapon reports whether s is MainHand or OffHand.
func (s Slot) IsWeapon() bool {
	return s == SlotMainHand || s == SlotOffHand
}

// Category returns the part category that may be assigned to s.
//
// Precondition: s is Valid.
func (s Slot) Category() Category {
	if s.IsWeapon() {
		return CategoryWeapon
	}
	return Category(s)
}

// String returns the snake_case name of s.
func (s Slot) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Slot(%d)", int(s))
	}
	return slotNames[s]
}

// DisplayName returns the human-readable label for s.
func (s Slot) DisplayName() string {
	if !s.Valid() {
		return s.String()
	}
	return slotDisplayNames[s]
}

// ParseSlot parses a snake_case slot name.
func ParseSlot(str string) (Slot, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	for i, n := range slotNames {
		if n == str {
			return Slot(i), nil
		}
	}
	return 0, fmt.Errorf("part: unknown slot %q", str)
}

// UnmarshalYAML accepts a slot name.
func (s *Slot) UnmarshalYAML(unmarshal func(any) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	v, err := ParseSlot(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// WeaponCategory governs which hand a weapon may occupy and which
// exclusivity rules apply when it is equipped.
type WeaponCategory string

const (
	// WeaponOneHanded fits either hand.
	WeaponOneHanded WeaponCategory = "one_handed"
	// WeaponTwoHanded occupies the main hand and clears the off hand.
	WeaponTwoHanded WeaponCategory = "two_handed"
	// WeaponBow occupies the off hand and clears the main hand.
	WeaponBow WeaponCategory = "bow"
	// WeaponShield fits the off hand.
	WeaponShield WeaponCategory = "shield"
)

// Valid reports whether w is a known weapon category.
func (w WeaponCategory) Valid() bool {
	switch w {
	case WeaponOneHanded, WeaponTwoHanded, WeaponBow, WeaponShield:
		return true
	}
	return false
}

// Label returns the group heading shown when browsing weapons.
func (w WeaponCategory) Label() string {
	switch w {
	case WeaponOneHanded:
		return "One Handed"
	case WeaponTwoHanded:
		return "Two Handed"
	case WeaponBow:
		return "Bow"
	case WeaponShield:
		return "Shield"
	}
	return ""
}

// FitsHand reports whether a weapon of category w may be held in slot.
func (w WeaponCategory) FitsHand(slot Slot) bool {
	switch slot {
	case SlotMainHand:
		return w == WeaponOneHanded || w == WeaponTwoHanded
	case SlotOffHand:
		return w == WeaponOneHanded || w == WeaponBow || w == WeaponShield
	}
	return false
}
