package composition_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/paperdoll/internal/game/composition"
	"github.com/cory-johannsen/paperdoll/internal/game/part"
	"github.com/cory-johannsen/paperdoll/internal/game/rig"
)

var both = []part.BodyType{part.Male, part.Female}

func armorPart(name string, bodies ...part.BodyType) *part.Part {
	return &part.Part{
		Name:            name,
		Package:         "base",
		Category:        part.CategoryArmor,
		SupportedBodies: bodies,
		ColorMask:       name + "/mask.png",
		Sprites: []part.Sprite{
			{Name: "chest", Ref: name + "/chest.png"},
			{Name: "pelvis", Ref: name + "/pelvis.png"},
		},
	}
}

func genericPart(name string, cat part.Category, sprite string) *part.Part {
	return &part.Part{
		Name:            name,
		Package:         "base",
		Category:        cat,
		SupportedBodies: both,
		Sprites:         []part.Sprite{{Name: sprite, Ref: name + "/" + sprite + ".png"}},
	}
}

func weaponPart(name string, w part.WeaponCategory, sprites ...string) *part.Part {
	p := &part.Part{
		Name:            name,
		Package:         "arms",
		Category:        part.CategoryWeapon,
		SupportedBodies: both,
		ColorMask:       name + "/mask.png",
		Kind:            part.Kind{Weapon: w},
	}
	for _, s := range sprites {
		p.Sprites = append(p.Sprites, part.Sprite{Name: s, Ref: name + "/" + s + ".png"})
	}
	return p
}

// fixture is a catalog covering every slot plus the handles tests need.
type fixture struct {
	catalog    *part.Catalog
	plate      *part.Part // male only
	robe       *part.Part // female only
	tunic      *part.Part // both
	sandals    *part.Part
	brow       *part.Part
	beard      *part.Part
	freckles   *part.Part
	sword      *part.Part
	dagger     *part.Part
	greatsword *part.Part
	longbow    *part.Part
	buckler    *part.Part
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	f := &fixture{
		plate:      armorPart("plate", part.Male),
		robe:       armorPart("robe", part.Female),
		tunic:      armorPart("tunic", both...),
		sandals:    genericPart("sandals", part.CategoryBoots, "boot_l"),
		brow:       genericPart("arched", part.CategoryEyebrow, "eyebrow"),
		beard:      genericPart("goatee", part.CategoryFacialHair, "beard"),
		sword:      weaponPart("sword", part.WeaponOneHanded, "weapon"),
		dagger:     weaponPart("dagger", part.WeaponOneHanded, "weapon"),
		greatsword: weaponPart("greatsword", part.WeaponTwoHanded, "weapon"),
		longbow:    weaponPart("longbow", part.WeaponBow, "bow", "string"),
		buckler:    weaponPart("buckler", part.WeaponShield, "shield"),
	}
	f.freckles = &part.Part{
		Name: "freckles", Package: "base", Category: part.CategorySkinDetails,
		SupportedBodies: both, Texture: "details/freckles.png",
	}
	parts := []*part.Part{
		f.plate, f.robe, f.tunic, f.sandals, f.brow, f.beard, f.freckles,
		f.sword, f.dagger, f.greatsword, f.longbow, f.buckler,
		genericPart("pointed", part.CategoryEar, "ear"),
		genericPart("round", part.CategoryEyes, "eyes"),
		genericPart("leather", part.CategoryGloves, "hand_l"),
		genericPart("bob", part.CategoryHair, "hair"),
		genericPart("cap", part.CategoryHelmet, "helmet"),
		genericPart("smile", part.CategoryMouth, "mouth"),
		genericPart("button", part.CategoryNose, "nose"),
		genericPart("trousers", part.CategoryPants, "thigh_l"),
	}
	c, err := part.NewCatalog(parts)
	require.NoError(t, err)
	f.catalog = c
	return f
}

func newEngine(t testing.TB, c *part.Catalog, opts ...composition.Option) *composition.Engine {
	t.Helper()
	return composition.New(c, rig.DefaultSetup(), zaptest.NewLogger(t), opts...)
}

func catalogOf(t testing.TB, parts ...*part.Part) *part.Catalog {
	t.Helper()
	c, err := part.NewCatalog(parts)
	require.NoError(t, err)
	return c
}
