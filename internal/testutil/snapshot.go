package testutil

import (
	"github.com/cory-johannsen/paperdoll/internal/game/color"
	"github.com/cory-johannsen/paperdoll/internal/game/composition"
	"github.com/cory-johannsen/paperdoll/internal/game/part"
)

// SampleSnapshot returns a valid snapshot with armor and a main hand weapon
// assigned and a few non-default colors.
//
// Postcondition: the result passes Validate.
func SampleSnapshot(body part.BodyType) composition.Snapshot {
	snap := composition.Snapshot{
		BodyType:  body,
		SkinColor: color.MustParseHex("#c68642"),
		TintColor: color.White,
		SlotData:  make([]composition.SlotData, part.SlotCount),
	}
	for i := range snap.SlotData {
		snap.SlotData[i] = composition.SlotData{
			Category: part.Slot(i),
			Color1:   color.White,
			Color2:   color.White,
			Color3:   color.White,
		}
	}
	armor := &snap.SlotData[part.SlotArmor]
	armor.PartName, armor.PartPackage = "plate", "base"
	armor.Color2 = color.Red
	main := &snap.SlotData[part.SlotMainHand]
	main.PartName, main.PartPackage = "sword", "arms"
	main.Color1 = color.MustParseHex("#3366ccff")
	return snap
}
