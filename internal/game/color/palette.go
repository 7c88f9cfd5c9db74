package color

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Palette is the bounded list of colors offered when randomizing a part.
type Palette struct {
	Name   string  `yaml:"name"`
	Colors []Color `yaml:"colors"`
}

// Validate checks that the Palette satisfies its invariants.
//
// Postcondition: returns nil iff Colors is non-empty and every color is Valid.
func (p *Palette) Validate() error {
	var errs []error
	if len(p.Colors) == 0 {
		errs = append(errs, errors.New("Colors must not be empty"))
	}
	for i, c := range p.Colors {
		if !c.Valid() {
			errs = append(errs, fmt.Errorf("Colors[%d] has a channel outside [0,1]", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("palette validation failed: %v", errs)
	}
	return nil
}

// Pick returns the color at index n modulo the palette size. Negative n
// counts back from the end.
//
// Precondition: p is valid.
func (p *Palette) Pick(n int) Color {
	l := len(p.Colors)
	return p.Colors[(n%l+l)%l]
}

// DefaultPalette returns the built-in palette used when none is configured.
func DefaultPalette() *Palette {
	hexes := []string{
		"#ffffff", "#1a1a1a", "#7f7f7f", "#8b4513", "#d2a679",
		"#b22222", "#ff8c00", "#ffd700", "#228b22", "#20b2aa",
		"#1e90ff", "#4b0082", "#c71585", "#f5deb3", "#708090",
	}
	p := &Palette{Name: "default", Colors: make([]Color, 0, len(hexes))}
	for _, h := range hexes {
		p.Colors = append(p.Colors, MustParseHex(h))
	}
	return p
}

// LoadPalette reads a YAML palette file.
//
// Precondition: path is a readable YAML file.
// Postcondition: returns a valid Palette or a non-nil error.
func LoadPalette(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadPalette: cannot read file %q: %w", path, err)
	}
	var p Palette
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("LoadPalette: cannot parse file %q: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("LoadPalette: invalid palette in %q: %w", path, err)
	}
	return &p, nil
}
