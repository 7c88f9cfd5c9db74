package part

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Sprite is one named fragment of a part's artwork. Name is the key looked
// up in the slot's link table; Ref is the opaque asset reference written to
// the render target.
type Sprite struct {
	Name string `yaml:"name"`
	Ref  string `yaml:"ref"`
}

// Kind is the tagged variant distinguishing weapons from generic parts.
// The zero value is a generic part.
type Kind struct {
	// Weapon is the weapon category, or "" for generic parts.
	Weapon WeaponCategory `yaml:"weapon"`
}

// IsWeapon reports whether the kind carries a weapon tag.
func (k Kind) IsWeapon() bool {
	return k.Weapon != ""
}

// Part is an immutable part definition. Parts are shared by reference and
// never mutated after loading.
type Part struct {
	Name            string     `yaml:"name"`
	Package         string     `yaml:"package"`
	Category        Category   `yaml:"category"`
	SupportedBodies []BodyType `yaml:"bodies"`
	Sprites         []Sprite   `yaml:"sprites"`
	// ColorMask is the optional mask texture driving the 3-layer shader.
	ColorMask string `yaml:"color_mask"`
	// Texture is the optional detail texture, used by SkinDetails parts.
	Texture string `yaml:"texture"`
	Kind    Kind   `yaml:"kind"`
}

// Supports reports whether p lists body as a supported body type.
func (p *Part) Supports(body BodyType) bool {
	for _, b := range p.SupportedBodies {
		if b == body {
			return true
		}
	}
	return false
}

// WeaponCategory returns the weapon tag, or "" for generic parts.
func (p *Part) WeaponCategory() WeaponCategory {
	if p == nil {
		return ""
	}
	return p.Kind.Weapon
}

// Is reports whether p is a weapon of category w. Safe on a nil receiver.
func (p *Part) Is(w WeaponCategory) bool {
	return p != nil && p.Kind.Weapon == w
}

// String returns "package/name".
func (p *Part) String() string {
	if p == nil {
		return "<none>"
	}
	if p.Package == "" {
		return p.Name
	}
	return p.Package + "/" + p.Name
}

// Validate checks that the Part satisfies its invariants.
//
// Precondition: p is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (p *Part) Validate() error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if !p.Category.Valid() {
		errs = append(errs, fmt.Errorf("Category %d is not valid", int(p.Category)))
	}
	if len(p.SupportedBodies) == 0 {
		errs = append(errs, errors.New("SupportedBodies must not be empty"))
	}
	for _, b := range p.SupportedBodies {
		if !b.Valid() {
			errs = append(errs, fmt.Errorf("body type %d is not valid", int(b)))
		}
	}
	seen := make(map[string]bool, len(p.Sprites))
	for i, s := range p.Sprites {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("Sprites[%d].Name must not be empty", i))
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Errorf("sprite name %q is duplicated", s.Name))
		}
		seen[s.Name] = true
	}
	if p.Category == CategoryWeapon && !p.Kind.Weapon.Valid() {
		errs = append(errs, fmt.Errorf("weapon parts require kind.weapon one of one_handed, two_handed, bow, shield; got %q", p.Kind.Weapon))
	}
	if p.Category != CategoryWeapon && p.Kind.IsWeapon() {
		errs = append(errs, errors.New("kind.weapon is only allowed on weapon parts"))
	}
	if p.Category == CategorySkinDetails && p.Texture == "" {
		errs = append(errs, errors.New("Texture is required for skin_details parts"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("part validation failed: %v", errs)
	}
	return nil
}

// partFile is the on-disk shape of a part definition file.
type partFile struct {
	// Package is applied to every part in the file that does not set its own.
	Package string  `yaml:"package"`
	Parts   []*Part `yaml:"parts"`
}

// LoadParts reads all *.yaml and *.yml files under dir (recursively, in
// lexical path order), parses each as a part list, validates every part, and
// returns them in load order.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid Parts or the first encountered error.
func LoadParts(dir string) ([]*Part, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		ext := filepath.Ext(d.Name())
		if d.IsDir() || (ext != ".yaml" && ext != ".yml") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("LoadParts: cannot read directory %q: %w", dir, err)
	}
	sort.Strings(paths)

	var parts []*Part
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadParts: cannot read file %q: %w", path, err)
		}
		var f partFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("LoadParts: cannot parse file %q: %w", path, err)
		}
		for _, p := range f.Parts {
			if p == nil {
				continue
			}
			if p.Package == "" {
				p.Package = f.Package
			}
			if err := p.Validate(); err != nil {
				return nil, fmt.Errorf("LoadParts: invalid part %q in %q: %w", p.Name, path, err)
			}
			parts = append(parts, p)
		}
	}
	return parts, nil
}
