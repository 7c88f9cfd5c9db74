package part

import "fmt"

// Catalog is an immutable, queryable collection of parts indexed by
// category. It is safe for concurrent reads.
type Catalog struct {
	all        []*Part
	byCategory map[Category][]*Part
	packages   []string
}

// NewCatalog builds a Catalog from parts, preserving their order.
//
// Precondition: every part satisfies Validate.
// Postcondition: returns an error if two parts share name, package and category.
func NewCatalog(parts []*Part) (*Catalog, error) {
	c := &Catalog{
		all:        make([]*Part, 0, len(parts)),
		byCategory: make(map[Category][]*Part),
	}
	type key struct {
		name, pkg string
		cat       Category
	}
	seen := make(map[key]bool, len(parts))
	seenPkg := make(map[string]bool)
	for _, p := range parts {
		if p == nil {
			return nil, fmt.Errorf("part: NewCatalog: nil part")
		}
		k := key{p.Name, p.Package, p.Category}
		if seen[k] {
			return nil, fmt.Errorf("part: NewCatalog: part %q in package %q already registered for %s", p.Name, p.Package, p.Category)
		}
		seen[k] = true
		c.all = append(c.all, p)
		c.byCategory[p.Category] = append(c.byCategory[p.Category], p)
		if !seenPkg[p.Package] {
			seenPkg[p.Package] = true
			c.packages = append(c.packages, p.Package)
		}
	}
	return c, nil
}

// LoadCatalog loads every part under dir and builds a Catalog.
//
// Postcondition: returns a Catalog or the first load/validation error.
func LoadCatalog(dir string) (*Catalog, error) {
	parts, err := LoadParts(dir)
	if err != nil {
		return nil, err
	}
	return NewCatalog(parts)
}

// Len returns the number of parts in the catalog.
func (c *Catalog) Len() int {
	return len(c.all)
}

// FindParts returns all parts assignable to slot in catalog load order,
// regardless of body type support. The returned slice must not be modified.
func (c *Catalog) FindParts(slot Slot) []*Part {
	if !slot.Valid() {
		return nil
	}
	return c.byCategory[slot.Category()]
}

// PartsOf returns all parts of category cat in catalog load order.
func (c *Catalog) PartsOf(cat Category) []*Part {
	return c.byCategory[cat]
}

// FindPart returns the part matching name and slot's category. When pkg is
// empty the first match in catalog order is returned.
//
// Postcondition: ok is false iff no part matches.
func (c *Catalog) FindPart(name, pkg string, slot Slot) (*Part, bool) {
	for _, p := range c.FindParts(slot) {
		if p.Name != name {
			continue
		}
		if pkg == "" || p.Package == pkg {
			return p, true
		}
	}
	return nil, false
}

// IndexOf returns the position of p within its category list, or -1.
func (c *Catalog) IndexOf(p *Part) int {
	if p == nil {
		return -1
	}
	for i, q := range c.byCategory[p.Category] {
		if q == p {
			return i
		}
	}
	return -1
}

// Packages returns package names in first-seen catalog order.
func (c *Catalog) Packages() []string {
	out := make([]string, len(c.packages))
	copy(out, c.packages)
	return out
}

// PackageGroup is one package's compatible parts for a slot.
type PackageGroup struct {
	Package string
	Parts   []*Part
}

// Available returns the parts assignable to slot that support body, grouped
// by package in first-seen order. Weapons of a package keep catalog order.
func (c *Catalog) Available(slot Slot, body BodyType) []PackageGroup {
	var groups []PackageGroup
	index := make(map[string]int)
	for _, p := range c.FindParts(slot) {
		if !p.Supports(body) {
			continue
		}
		if slot.IsWeapon() && !p.Kind.Weapon.FitsHand(slot) {
			continue
		}
		i, ok := index[p.Package]
		if !ok {
			i = len(groups)
			index[p.Package] = i
			groups = append(groups, PackageGroup{Package: p.Package})
		}
		groups[i].Parts = append(groups[i].Parts, p)
	}
	return groups
}
