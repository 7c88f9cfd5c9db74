package composition_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/paperdoll/internal/game/color"
	"github.com/cory-johannsen/paperdoll/internal/game/composition"
	"github.com/cory-johannsen/paperdoll/internal/game/part"
	"github.com/cory-johannsen/paperdoll/internal/game/rig"
)

const (
	mainWeaponPath = "Root/Arms/HandR/Weapon"
	mainFXPath     = "Root/Arms/HandR/WeaponFX"
	offWeaponPath  = "Root/Arms/HandL/Weapon"
	bowPath        = "Root/Arms/HandL/Bow"
	shieldPath     = "Root/Arms/HandL/Shield"
	chestPath      = "Root/Body/Armor/Chest"
	eyebrowPath    = "Root/Head/Eyebrow"
	torsoPath      = "Root/Body/Torso"
)

func sprite(t *testing.T, e *composition.Engine, path string) string {
	t.Helper()
	rd, ok := e.Renderer(path)
	require.True(t, ok, "renderer %q", path)
	return rd.Sprite
}

func TestNew_EmptyComposition(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)

	assert.Equal(t, part.Male, e.BodyType())
	assert.Equal(t, color.Gray, e.SkinColor())
	assert.Equal(t, color.White, e.TintColor())
	views := e.Slots()
	require.Len(t, views, part.SlotCount)
	for i, v := range views {
		assert.Equal(t, part.Slot(i), v.Slot)
		assert.Nil(t, v.Part)
		assert.Equal(t, [3]color.Color{color.White, color.White, color.White}, v.Colors)
	}
	assert.True(t, e.SkeletonSwapPending())
	assert.False(t, e.SortingEnabled())
}

func TestNew_NilLoggerAndOptions(t *testing.T) {
	f := newFixture(t)
	skin := color.MustParseHex("#c08060")
	e := composition.New(f.catalog, rig.DefaultSetup(), nil,
		composition.WithBodyType(part.Female),
		composition.WithSkinColor(skin),
		composition.WithTintColor(color.Red),
	)
	assert.Equal(t, part.Female, e.BodyType())
	rd, ok := e.Renderer(torsoPath)
	require.True(t, ok)
	assert.Equal(t, skin, rd.Color)
	assert.Equal(t, color.Red, e.MaterialColor(part.SlotArmor, rig.PropTint))
}

func TestCommitSkeletonSwap(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)

	assert.True(t, e.CommitSkeletonSwap())
	assert.True(t, e.SortingEnabled())
	assert.False(t, e.SkeletonSwapPending())
	assert.False(t, e.CommitSkeletonSwap())

	e.SetBodyType(part.Female)
	assert.True(t, e.SkeletonSwapPending())
	assert.False(t, e.SortingEnabled())
	assert.True(t, e.CommitSkeletonSwap())
}

func TestEquip_GenericWritesSpritesAndMask(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)

	r := e.Equip(part.SlotArmor, f.plate)
	require.True(t, r.OK(), r.Err())
	assert.Same(t, f.plate, e.AssignedPart(part.SlotArmor))
	assert.Equal(t, "plate/chest.png", sprite(t, e, chestPath))
	assert.Equal(t, "plate/pelvis.png", sprite(t, e, "Root/Body/Armor/Pelvis"))
	assert.Empty(t, sprite(t, e, "Root/Body/Armor/UpperArmL"))
	assert.Equal(t, "plate/mask.png", e.MaterialTexture(part.SlotArmor, rig.PropColorMask))

	r = e.Equip(part.SlotArmor, nil)
	require.True(t, r.OK())
	assert.Nil(t, e.AssignedPart(part.SlotArmor))
	assert.Empty(t, sprite(t, e, chestPath))
}

func TestEquip_ReplacingPartResetsLinkedRenderers(t *testing.T) {
	partial := &part.Part{
		Name: "vest", Package: "base", Category: part.CategoryArmor, SupportedBodies: both,
		Sprites: []part.Sprite{{Name: "chest", Ref: "vest/chest.png"}},
	}
	f := newFixture(t)
	c := catalogOf(t, f.plate, partial)
	e := newEngine(t, c)

	e.Equip(part.SlotArmor, f.plate)
	e.Equip(part.SlotArmor, partial)
	assert.Equal(t, "vest/chest.png", sprite(t, e, chestPath))
	assert.Empty(t, sprite(t, e, "Root/Body/Armor/Pelvis"))
	assert.Empty(t, e.MaterialTexture(part.SlotArmor, rig.PropColorMask))
}

func TestEquip_CategoryMismatchIsNoOp(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)
	e.Equip(part.SlotArmor, f.tunic)

	r := e.Equip(part.SlotArmor, f.sandals)
	assert.True(t, r.Has(composition.FaultCategoryMismatch))
	assert.Same(t, f.tunic, e.AssignedPart(part.SlotArmor))
	assert.Equal(t, "tunic/chest.png", sprite(t, e, chestPath))

	r = e.Equip(part.SlotSkinDetails, f.tunic)
	assert.True(t, r.Has(composition.FaultCategoryMismatch))
	assert.Nil(t, e.AssignedPart(part.SlotSkinDetails))
}

func TestEquip_WeaponHandRules(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)

	r := e.Equip(part.SlotMainHand, f.longbow)
	assert.True(t, r.Has(composition.FaultCategoryMismatch))
	assert.Nil(t, e.AssignedPart(part.SlotMainHand))

	r = e.Equip(part.SlotOffHand, f.greatsword)
	assert.True(t, r.Has(composition.FaultCategoryMismatch))
	assert.Nil(t, e.AssignedPart(part.SlotOffHand))

	r = e.Equip(part.SlotMainHand, f.sandals)
	assert.True(t, r.Has(composition.FaultCategoryMismatch))
}

func TestEquip_OneHandedAndShieldCoexist(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)

	require.True(t, e.Equip(part.SlotMainHand, f.sword).OK())
	require.True(t, e.Equip(part.SlotOffHand, f.buckler).OK())
	assert.Same(t, f.sword, e.AssignedPart(part.SlotMainHand))
	assert.Same(t, f.buckler, e.AssignedPart(part.SlotOffHand))
	assert.Equal(t, "sword/weapon.png", sprite(t, e, mainWeaponPath))
	assert.Equal(t, "buckler/shield.png", sprite(t, e, shieldPath))
	assert.Empty(t, sprite(t, e, offWeaponPath))

	require.True(t, e.Equip(part.SlotOffHand, f.dagger).OK())
	assert.Equal(t, "dagger/weapon.png", sprite(t, e, offWeaponPath))
	assert.Empty(t, sprite(t, e, shieldPath))
}

func TestEquip_TwoHandedClearsOffHand(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)
	e.Equip(part.SlotOffHand, f.buckler)

	e.Equip(part.SlotMainHand, f.greatsword)
	assert.Same(t, f.greatsword, e.AssignedPart(part.SlotMainHand))
	assert.Nil(t, e.AssignedPart(part.SlotOffHand))
	assert.Empty(t, sprite(t, e, shieldPath))

	e.Equip(part.SlotOffHand, f.dagger)
	assert.Nil(t, e.AssignedPart(part.SlotMainHand))
	assert.Same(t, f.dagger, e.AssignedPart(part.SlotOffHand))
	assert.Empty(t, sprite(t, e, mainWeaponPath))
}

func TestEquip_BowAndMainHandExclusive(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)

	e.Equip(part.SlotOffHand, f.longbow)
	assert.Equal(t, "longbow/bow.png", sprite(t, e, bowPath))
	assert.Equal(t, "longbow/string.png", sprite(t, e, "Root/Arms/HandL/BowString"))

	e.Equip(part.SlotMainHand, f.sword)
	assert.Same(t, f.sword, e.AssignedPart(part.SlotMainHand))
	assert.Nil(t, e.AssignedPart(part.SlotOffHand))
	assert.Empty(t, sprite(t, e, bowPath))
}

// Equip a two-handed sword, then a bow, then color the emptied main hand.
func TestScenario_TwoHandedThenBowThenColor(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)

	require.True(t, e.Equip(part.SlotMainHand, f.greatsword).OK())
	assert.Equal(t, "greatsword/weapon.png", sprite(t, e, mainWeaponPath))

	require.True(t, e.Equip(part.SlotOffHand, f.longbow).OK())
	assert.Nil(t, e.AssignedPart(part.SlotMainHand))
	assert.Same(t, f.longbow, e.AssignedPart(part.SlotOffHand))
	assert.Empty(t, sprite(t, e, mainWeaponPath))

	require.True(t, e.SetColor(part.SlotMainHand, 1, color.Red).OK())
	assert.Equal(t, color.Red, e.Color(part.SlotMainHand, 1))
	assert.Nil(t, e.AssignedPart(part.SlotMainHand))
	assert.Same(t, f.longbow, e.AssignedPart(part.SlotOffHand))
}

// Switching to Female with male-only armor and no female alternative
// leaves the slot empty and reports the fault.
func TestScenario_BodyChangeWithoutAlternative(t *testing.T) {
	f := newFixture(t)
	c := catalogOf(t, f.plate, armorPart("mail", part.Male), f.sandals)
	e := newEngine(t, c)
	require.True(t, e.Equip(part.SlotArmor, f.plate).OK())
	require.True(t, e.Equip(part.SlotBoots, f.sandals).OK())

	r := e.SetBodyType(part.Female)
	assert.Equal(t, part.Female, e.BodyType())
	assert.Nil(t, e.AssignedPart(part.SlotArmor))
	assert.Same(t, f.sandals, e.AssignedPart(part.SlotBoots))
	require.Equal(t, 1, r.Count(composition.FaultBodyIncompatible))
	fault := r.Faults[0]
	assert.Equal(t, part.SlotArmor, fault.Slot)
	assert.Equal(t, "plate", fault.Part)
	assert.Empty(t, fault.Substitute)
	assert.True(t, errors.Is(r.Err(), composition.ErrBodyIncompatible))
}

func TestEquip_FallbackSearchesForwardForMale(t *testing.T) {
	a, b := armorPart("a", part.Female), armorPart("b", part.Female)
	c, d := armorPart("c", part.Male), armorPart("d", part.Male)
	e := newEngine(t, catalogOf(t, a, b, c, d))

	r := e.Equip(part.SlotArmor, a)
	assert.Same(t, c, e.AssignedPart(part.SlotArmor))
	require.Len(t, r.Faults, 1)
	assert.Equal(t, composition.FaultBodyIncompatible, r.Faults[0].Kind)
	assert.Equal(t, "base/c", r.Faults[0].Substitute)
}

func TestEquip_FallbackSearchesBackwardForFemale(t *testing.T) {
	a := armorPart("a", part.Female)
	b, c := armorPart("b", part.Male), armorPart("c", part.Male)
	d := armorPart("d", part.Female)
	e := newEngine(t, catalogOf(t, a, b, c, d), composition.WithBodyType(part.Female))

	e.Equip(part.SlotArmor, c)
	assert.Same(t, a, e.AssignedPart(part.SlotArmor))
}

func TestEquip_FallbackWrapsToWholeCategory(t *testing.T) {
	a := armorPart("a", part.Male)
	b := armorPart("b", part.Female)
	e := newEngine(t, catalogOf(t, a, b), composition.WithBodyType(part.Female))

	e.Equip(part.SlotArmor, a)
	assert.Same(t, b, e.AssignedPart(part.SlotArmor))
}

func TestEquip_FallbackIsTotal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "n")
		parts := make([]*part.Part, n)
		for i := range parts {
			var bodies []part.BodyType
			if rapid.Bool().Draw(rt, "male") {
				bodies = append(bodies, part.Male)
			}
			if rapid.Bool().Draw(rt, "female") {
				bodies = append(bodies, part.Female)
			}
			parts[i] = armorPart(string(rune('a'+i)), bodies...)
		}
		c, err := part.NewCatalog(parts)
		require.NoError(rt, err)
		body := rapid.SampledFrom(part.BodyTypes).Draw(rt, "body")
		e := composition.New(c, rig.DefaultSetup(), zap.NewNop(), composition.WithBodyType(body))

		pick := rapid.SampledFrom(parts).Draw(rt, "pick")
		e.Equip(part.SlotArmor, pick)

		got := e.AssignedPart(part.SlotArmor)
		if got != nil {
			assert.True(rt, got.Supports(body))
			return
		}
		for _, p := range parts {
			assert.False(rt, p.Supports(body), "compatible part %s ignored", p)
		}
	})
}

func TestEquip_CategoryIntegrity(t *testing.T) {
	f := newFixture(t)
	var all []*part.Part
	for _, slot := range part.AllSlots()[:part.SlotMainHand+1] {
		all = append(all, f.catalog.FindParts(slot)...)
	}
	rapid.Check(t, func(rt *rapid.T) {
		e := composition.New(f.catalog, rig.DefaultSetup(), zap.NewNop())
		steps := rapid.IntRange(1, 20).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			slot := rapid.SampledFrom(part.AllSlots()).Draw(rt, "slot")
			p := rapid.SampledFrom(all).Draw(rt, "part")
			before := e.AssignedPart(slot)
			r := e.Equip(slot, p)
			if p.Category != slot.Category() || (slot.IsWeapon() && !p.Kind.Weapon.FitsHand(slot)) {
				assert.True(rt, r.Has(composition.FaultCategoryMismatch))
				assert.Same(rt, before, e.AssignedPart(slot))
			}
			for _, v := range e.Slots() {
				if v.Part != nil {
					assert.Equal(rt, v.Slot.Category(), v.Part.Category)
				}
			}
		}
	})
}

func TestEquip_WeaponExclusivity(t *testing.T) {
	f := newFixture(t)
	weapons := []*part.Part{nil, f.sword, f.dagger, f.greatsword, f.longbow, f.buckler}
	rapid.Check(t, func(rt *rapid.T) {
		e := composition.New(f.catalog, rig.DefaultSetup(), zap.NewNop())
		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			hand := rapid.SampledFrom([]part.Slot{part.SlotMainHand, part.SlotOffHand}).Draw(rt, "hand")
			w := rapid.SampledFrom(weapons).Draw(rt, "weapon")
			e.Equip(hand, w)

			main, off := e.AssignedPart(part.SlotMainHand), e.AssignedPart(part.SlotOffHand)
			assert.False(rt, main.Is(part.WeaponTwoHanded) && off != nil, "two-handed with off hand %s", off)
			assert.False(rt, off.Is(part.WeaponBow) && main != nil, "bow with main hand %s", main)
		}
	})
}

func TestEquipByName(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)

	require.True(t, e.EquipByName(part.SlotMainHand, "sword", "arms").OK())
	assert.Same(t, f.sword, e.AssignedPart(part.SlotMainHand))

	r := e.EquipByName(part.SlotMainHand, "excalibur", "arms")
	assert.True(t, r.Has(composition.FaultLookupFailure))
	assert.True(t, errors.Is(r.Err(), composition.ErrLookupFailure))
	assert.Same(t, f.sword, e.AssignedPart(part.SlotMainHand))

	require.True(t, e.EquipByName(part.SlotMainHand, "", "").OK())
	assert.Nil(t, e.AssignedPart(part.SlotMainHand))
}

func TestEquip_InvalidSlot(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)
	r := e.Equip(part.Slot(99), f.tunic)
	assert.True(t, r.Has(composition.FaultLookupFailure))
}

func TestEquip_SkinDetailsSetsTexture(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)

	require.True(t, e.Equip(part.SlotSkinDetails, f.freckles).OK())
	assert.Equal(t, "details/freckles.png", e.MaterialTexture(part.SlotSkinDetails, rig.PropDetails))

	e.Equip(part.SlotSkinDetails, nil)
	assert.Empty(t, e.MaterialTexture(part.SlotSkinDetails, rig.PropDetails))
}

func TestSetColor_LayersAreIndependent(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)
	e.Equip(part.SlotArmor, f.tunic)
	blue := color.MustParseHex("#0000ff")

	e.SetColor(part.SlotArmor, 2, color.Red)
	e.SetColor(part.SlotArmor, 3, blue)
	assert.Equal(t, color.White, e.Color(part.SlotArmor, 1))
	assert.Equal(t, color.Red, e.Color(part.SlotArmor, 2))
	assert.Equal(t, blue, e.Color(part.SlotArmor, 3))
	assert.Equal(t, color.Red, e.MaterialColor(part.SlotArmor, rig.PropColor2))
	assert.Equal(t, blue, e.MaterialColor(part.SlotArmor, rig.PropColor3))
}

func TestSetColor_DirectTintSetsEveryLayer(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)
	e.Equip(part.SlotEyebrow, f.brow)

	e.SetColor(part.SlotEyebrow, 2, color.Red)
	for i := 1; i <= 3; i++ {
		assert.Equal(t, color.Red, e.Color(part.SlotEyebrow, i))
	}
	rd, ok := e.Renderer(eyebrowPath)
	require.True(t, ok)
	assert.Equal(t, color.Red, rd.Color)
	assert.Empty(t, e.MaterialName(part.SlotEyebrow))
}

func TestSetColor_DirectTintSurvivesBodyChange(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)
	e.Equip(part.SlotEyebrow, f.brow)
	e.SetColor(part.SlotEyebrow, 1, color.Red)

	e.SetBodyType(part.Female)
	rd, ok := e.Renderer(eyebrowPath)
	require.True(t, ok)
	assert.Equal(t, color.Red, rd.Color)
	assert.Equal(t, "arched/eyebrow.png", rd.Sprite)
}

func TestSetColor_SkinDetailsSetsDetailsColor(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)

	e.SetColor(part.SlotSkinDetails, 3, color.Red)
	assert.Equal(t, color.Red, e.MaterialColor(part.SlotSkinDetails, rig.PropDetailsColor))
	for i := 1; i <= 3; i++ {
		assert.Equal(t, color.Red, e.Color(part.SlotSkinDetails, i))
	}
}

func TestSetColor_WeaponTintsFX(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)
	e.Equip(part.SlotMainHand, f.sword)

	e.SetColor(part.SlotMainHand, 1, color.Red)
	rd, ok := e.Renderer(mainFXPath)
	require.True(t, ok)
	assert.Equal(t, color.Red, rd.Color)
	assert.Equal(t, color.Red, e.MaterialColor(part.SlotMainHand, rig.PropColor1))

	e.SetColor(part.SlotMainHand, 2, color.Gray)
	rd, _ = e.Renderer(mainFXPath)
	assert.Equal(t, color.Red, rd.Color)
}

func TestSetColor_InvalidLayer(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)

	for _, idx := range []int{0, 4, -1} {
		r := e.SetColor(part.SlotArmor, idx, color.Red)
		assert.True(t, r.Has(composition.FaultLookupFailure), "index %d", idx)
		assert.Equal(t, color.Clear, e.Color(part.SlotArmor, idx))
	}
	r := e.SetColor(part.Slot(-3), 1, color.Red)
	assert.True(t, r.Has(composition.FaultLookupFailure))
	assert.Equal(t, color.Clear, e.Color(part.Slot(-3), 1))
}

func TestSetColor_StoredColorAppliesOnEquip(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)

	e.SetColor(part.SlotHelmet, 1, color.Red)
	helmet, ok := f.catalog.FindPart("cap", "base", part.SlotHelmet)
	require.True(t, ok)
	e.Equip(part.SlotHelmet, helmet)
	e.Initialize(e.BodyType())
	assert.Equal(t, color.Red, e.MaterialColor(part.SlotHelmet, rig.PropColor1))
}

func TestInitialize_Idempotent(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)
	e.Equip(part.SlotArmor, f.plate)
	e.Equip(part.SlotMainHand, f.greatsword)
	e.Equip(part.SlotEyebrow, f.brow)
	e.SetColor(part.SlotArmor, 2, color.Red)
	e.SetColor(part.SlotEyebrow, 1, color.Red)

	e.Initialize(part.Male)
	first := e.Export()
	renderers := map[string]rig.Renderer{}
	for _, p := range []string{chestPath, mainWeaponPath, eyebrowPath, torsoPath} {
		rd, ok := e.Renderer(p)
		require.True(t, ok)
		rd.Material = nil
		renderers[p] = rd
	}

	r := e.Initialize(part.Male)
	assert.True(t, r.OK())
	assert.Equal(t, first, e.Export())
	for p, want := range renderers {
		rd, _ := e.Renderer(p)
		rd.Material = nil
		assert.Equal(t, want, rd, p)
	}
}

func TestInitialize_InvalidBodyKeepsCurrent(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)
	r := e.Initialize(part.BodyType(7))
	assert.True(t, r.Has(composition.FaultLookupFailure))
	assert.Equal(t, part.Male, e.BodyType())
}

func TestSetBodyType_SubstitutesPerSlot(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)
	e.Equip(part.SlotArmor, f.plate)

	r := e.SetBodyType(part.Female)
	require.True(t, r.Has(composition.FaultBodyIncompatible))
	got := e.AssignedPart(part.SlotArmor)
	require.NotNil(t, got)
	assert.True(t, got.Supports(part.Female))
	assert.Equal(t, got.Name+"/chest.png", sprite(t, e, chestPath))
}

func TestSkinAndTint(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog)
	skin := color.MustParseHex("#8d5524")

	e.SetSkinColor(skin)
	assert.Equal(t, skin, e.SkinColor())
	for _, p := range []string{torsoPath, "Root/Head/Face", "Root/Legs/LegR"} {
		rd, ok := e.Renderer(p)
		require.True(t, ok)
		assert.Equal(t, skin, rd.Color, p)
	}

	e.SetTintColor(color.Red)
	assert.Equal(t, color.Red, e.TintColor())
	assert.Equal(t, color.Red, e.MaterialColor(part.SlotArmor, rig.PropTint))
	assert.Equal(t, color.Red, e.MaterialColor(part.SlotSkinDetails, rig.PropTint))

	e.ResetTintColor()
	assert.Equal(t, color.White, e.TintColor())
	assert.Equal(t, color.White, e.MaterialColor(part.SlotOffHand, rig.PropTint))
}

func TestMaterials_InstancedPerComposition(t *testing.T) {
	f := newFixture(t)
	setup := rig.DefaultSetup()
	a := composition.New(f.catalog, setup, zaptest.NewLogger(t))
	b := composition.New(f.catalog, setup, zaptest.NewLogger(t))

	assert.Equal(t, "CC2D_Armor", a.MaterialName(part.SlotArmor))
	assert.False(t, a.UsesStockMaterial(part.SlotArmor))
	assert.False(t, a.SharesMaterial(part.SlotArmor, part.SlotBoots))

	a.SetColor(part.SlotArmor, 1, color.Red)
	assert.Equal(t, color.White, b.MaterialColor(part.SlotArmor, rig.PropColor1))
	assert.NotEqual(t, color.Red, setup.StockMaterial(part.SlotArmor).Color(rig.PropColor1))
}

func TestMaterials_SharedWhenInstancingDisabled(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, f.catalog, composition.WithInstanceMaterials(false))
	assert.True(t, e.UsesStockMaterial(part.SlotArmor))
	assert.True(t, e.UsesStockMaterial(part.SlotMainHand))
}

func TestMaterials_OneInstancePerStockName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setup.yaml")
	src := `
part_links:
  armor: {chest: Root/Chest}
  pants: {thigh: Root/Thigh}
  boots: {boot: Root/Boot}
weapon_links:
  main_weapon: {weapon: Root/HandR}
materials:
  armor: {name: Cloth, properties: [_Color1]}
  pants: {name: Cloth, properties: [_Color1]}
  boots: {name: Leather, properties: [_Color1]}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	setup, err := rig.LoadSetup(path)
	require.NoError(t, err)
	f := newFixture(t)
	e := composition.New(f.catalog, setup, zaptest.NewLogger(t))

	assert.True(t, e.SharesMaterial(part.SlotArmor, part.SlotPants))
	assert.False(t, e.SharesMaterial(part.SlotArmor, part.SlotBoots))
	assert.False(t, e.UsesStockMaterial(part.SlotPants))
	rd, ok := e.Renderer("Root/Thigh")
	require.True(t, ok)
	require.NotNil(t, rd.Material)
	assert.Equal(t, "Cloth", rd.Material.Name())
}

func TestEngine_ConcurrentHandEquips(t *testing.T) {
	f := newFixture(t)
	e := composition.New(f.catalog, rig.DefaultSetup(), zap.NewNop())
	weapons := []*part.Part{f.sword, f.greatsword, f.longbow, f.buckler, f.dagger, nil}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				w := weapons[(g+i)%len(weapons)]
				if w != nil && w.Kind.Weapon.FitsHand(part.SlotOffHand) && (g+i)%2 == 0 {
					e.Equip(part.SlotOffHand, w)
				} else {
					e.Equip(part.SlotMainHand, w)
				}
				e.SetColor(part.SlotMainHand, 1, color.Red)
			}
		}(g)
	}
	wg.Wait()

	main, off := e.AssignedPart(part.SlotMainHand), e.AssignedPart(part.SlotOffHand)
	assert.False(t, main.Is(part.WeaponTwoHanded) && off != nil)
	assert.False(t, off.Is(part.WeaponBow) && main != nil)
}

func TestFault_ErrorAndUnwrap(t *testing.T) {
	f := composition.Fault{
		Kind: composition.FaultBodyIncompatible, Slot: part.SlotArmor,
		Part: "plate", Package: "base", Body: part.Female, Substitute: "base/robe",
	}
	assert.Contains(t, f.Error(), "body_incompatible on armor")
	assert.Contains(t, f.Error(), `substituted by "base/robe"`)
	assert.ErrorIs(t, f, composition.ErrBodyIncompatible)

	var r composition.Report
	assert.True(t, r.OK())
	assert.NoError(t, r.Err())
}
