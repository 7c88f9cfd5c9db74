package rig

import "fmt"

var equipmentProps = []string{PropTint, PropColor1, PropColor2, PropColor3, PropColorMask}

// defaultSetupFile is the built-in humanoid rig.
var defaultSetupFile = setupFile{
	PartLinks: map[string]map[string]string{
		"armor": {
			"chest":       "Root/Body/Armor/Chest",
			"pelvis":      "Root/Body/Armor/Pelvis",
			"upper_arm_l": "Root/Body/Armor/UpperArmL",
			"upper_arm_r": "Root/Body/Armor/UpperArmR",
			"forearm_l":   "Root/Body/Armor/ForearmL",
			"forearm_r":   "Root/Body/Armor/ForearmR",
		},
		"boots": {
			"boot_l": "Root/Legs/BootL",
			"boot_r": "Root/Legs/BootR",
		},
		"ear":         {"ear": "Root/Head/Ear"},
		"eyebrow":     {"eyebrow": "Root/Head/Eyebrow"},
		"eyes":        {"eyes": "Root/Head/Eyes"},
		"facial_hair": {"beard": "Root/Head/FacialHair"},
		"gloves": {
			"hand_l": "Root/Arms/GloveL",
			"hand_r": "Root/Arms/GloveR",
		},
		"hair": {
			"hair":      "Root/Head/Hair",
			"hair_back": "Root/Head/HairBack",
		},
		"helmet": {"helmet": "Root/Head/Helmet"},
		"mouth":  {"mouth": "Root/Head/Mouth"},
		"nose":   {"nose": "Root/Head/Nose"},
		"pants": {
			"thigh_l": "Root/Legs/ThighL",
			"thigh_r": "Root/Legs/ThighR",
			"shin_l":  "Root/Legs/ShinL",
			"shin_r":  "Root/Legs/ShinR",
		},
	},
	WeaponLinks: WeaponLinks{
		MainWeapon: map[string]string{"weapon": "Root/Arms/HandR/Weapon"},
		OffWeapon:  map[string]string{"weapon": "Root/Arms/HandL/Weapon"},
		Bow: map[string]string{
			"bow":    "Root/Arms/HandL/Bow",
			"string": "Root/Arms/HandL/BowString",
		},
		Shield: map[string]string{"shield": "Root/Arms/HandL/Shield"},
	},
	DirectTint: map[string][]string{
		"eyebrow":     {"Root/Head/Eyebrow"},
		"facial_hair": {"Root/Head/FacialHair"},
		"mouth":       {"Root/Head/Mouth"},
	},
	WeaponFX: map[string]string{
		"main_hand": "Root/Arms/HandR/WeaponFX",
		"off_hand":  "Root/Arms/HandL/WeaponFX",
	},
	Skin: []string{
		"Root/Body/Torso",
		"Root/Head/Face",
		"Root/Head/Ear",
		"Root/Head/Nose",
		"Root/Arms/ArmL",
		"Root/Arms/ArmR",
		"Root/Legs/LegL",
		"Root/Legs/LegR",
	},
	Order: []string{
		"Root/Arms/HandL/Bow",
		"Root/Arms/HandL/BowString",
		"Root/Arms/HandL/Shield",
		"Root/Arms/HandL/Weapon",
		"Root/Arms/HandL/WeaponFX",
		"Root/Head/HairBack",
		"Root/Arms/ArmL",
		"Root/Arms/GloveL",
		"Root/Body/Armor/UpperArmL",
		"Root/Body/Armor/ForearmL",
		"Root/Legs/LegL",
		"Root/Legs/LegR",
		"Root/Legs/ThighL",
		"Root/Legs/ThighR",
		"Root/Legs/ShinL",
		"Root/Legs/ShinR",
		"Root/Legs/BootL",
		"Root/Legs/BootR",
		"Root/Body/Torso",
		"Root/Body/Armor/Pelvis",
		"Root/Body/Armor/Chest",
		"Root/Head/Face",
		"Root/Head/Ear",
		"Root/Head/Nose",
		"Root/Head/Mouth",
		"Root/Head/Eyes",
		"Root/Head/Eyebrow",
		"Root/Head/FacialHair",
		"Root/Head/Hair",
		"Root/Head/Helmet",
		"Root/Arms/ArmR",
		"Root/Body/Armor/UpperArmR",
		"Root/Body/Armor/ForearmR",
		"Root/Arms/GloveR",
		"Root/Arms/HandR/Weapon",
		"Root/Arms/HandR/WeaponFX",
	},
	Materials: map[string]MaterialDef{
		"armor":        {Name: "CC2D_Armor", Properties: equipmentProps},
		"boots":        {Name: "CC2D_Boots", Properties: equipmentProps},
		"ear":          {Name: "CC2D_Ear", Properties: equipmentProps},
		"eyes":         {Name: "CC2D_Eyes", Properties: equipmentProps},
		"gloves":       {Name: "CC2D_Gloves", Properties: equipmentProps},
		"hair":         {Name: "CC2D_Hair", Properties: equipmentProps},
		"helmet":       {Name: "CC2D_Helmet", Properties: equipmentProps},
		"nose":         {Name: "CC2D_Nose", Properties: equipmentProps},
		"pants":        {Name: "CC2D_Pants", Properties: equipmentProps},
		"skin_details": {Name: "CC2D_Skin", Properties: []string{PropTint, PropDetails, PropDetailsColor}},
		"main_hand":    {Name: "CC2D_MainHand", Properties: equipmentProps},
		"off_hand":     {Name: "CC2D_OffHand", Properties: equipmentProps},
	},
}

// DefaultSetup returns the built-in humanoid rig. Every call returns an
// independent Setup with fresh stock materials.
func DefaultSetup() *Setup {
	s, err := buildSetup(defaultSetupFile)
	if err != nil {
		panic(fmt.Sprintf("rig: default setup is invalid: %v", err))
	}
	return s
}
