package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/paperdoll/internal/game/color"
	"github.com/cory-johannsen/paperdoll/internal/game/part"
)

// listFlag collects every occurrence of a repeatable flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// equipArg is one parsed -equip value: slot=name[@package]. An empty name
// clears the slot.
type equipArg struct {
	Slot    part.Slot
	Name    string
	Package string
}

func parseEquip(s string) (equipArg, error) {
	slotName, ref, ok := strings.Cut(s, "=")
	if !ok {
		return equipArg{}, fmt.Errorf("equip %q: want slot=name[@package]", s)
	}
	slot, err := part.ParseSlot(slotName)
	if err != nil {
		return equipArg{}, fmt.Errorf("equip %q: %w", s, err)
	}
	name, pkg, _ := strings.Cut(ref, "@")
	return equipArg{Slot: slot, Name: strings.TrimSpace(name), Package: strings.TrimSpace(pkg)}, nil
}

// colorArg is one parsed -color value: slot:index=#hex.
type colorArg struct {
	Slot  part.Slot
	Index int
	Color color.Color
}

func parseColor(s string) (colorArg, error) {
	target, hex, ok := strings.Cut(s, "=")
	if !ok {
		return colorArg{}, fmt.Errorf("color %q: want slot:index=#hex", s)
	}
	slotName, idx, ok := strings.Cut(target, ":")
	if !ok {
		return colorArg{}, fmt.Errorf("color %q: want slot:index=#hex", s)
	}
	slot, err := part.ParseSlot(slotName)
	if err != nil {
		return colorArg{}, fmt.Errorf("color %q: %w", s, err)
	}
	index, err := strconv.Atoi(idx)
	if err != nil || index < 1 || index > 3 {
		return colorArg{}, fmt.Errorf("color %q: layer must be 1, 2 or 3", s)
	}
	c, err := color.ParseHex(hex)
	if err != nil {
		return colorArg{}, fmt.Errorf("color %q: %w", s, err)
	}
	return colorArg{Slot: slot, Index: index, Color: c}, nil
}
