// Package rig models the render targets a composition writes to: shader
// materials, sprite renderers, and the per-body skeleton that holds them,
// together with the Setup tables linking part sprites to renderers.
package rig

import "github.com/cory-johannsen/paperdoll/internal/game/color"

// Shader parameter names.
const (
	PropTint         = "_Color"
	PropColor1       = "_Color1"
	PropColor2       = "_Color2"
	PropColor3       = "_Color3"
	PropColorMask    = "_ColorMask"
	PropDetails      = "_Details"
	PropDetailsColor = "_DetailsColor"
)

// ColorProp returns the shader parameter for color layer index (1..3), or "".
func ColorProp(index int) string {
	switch index {
	case 1:
		return PropColor1
	case 2:
		return PropColor2
	case 3:
		return PropColor3
	}
	return ""
}

// Material is a named bag of shader parameters. It is not safe for
// concurrent use; the owning engine serializes access.
type Material struct {
	name       string
	properties map[string]bool
	colors     map[string]color.Color
	textures   map[string]string
}

// NewMaterial returns a Material declaring the given shader properties.
func NewMaterial(name string, properties ...string) *Material {
	m := &Material{
		name:       name,
		properties: make(map[string]bool, len(properties)),
		colors:     make(map[string]color.Color),
		textures:   make(map[string]string),
	}
	for _, p := range properties {
		m.properties[p] = true
	}
	return m
}

// Name returns the material name. Instances keep their stock name.
func (m *Material) Name() string {
	return m.name
}

// HasProperty reports whether the shader declares prop.
func (m *Material) HasProperty(prop string) bool {
	return m.properties[prop]
}

// SetColor sets a color parameter. Undeclared properties are ignored.
func (m *Material) SetColor(prop string, c color.Color) {
	if !m.properties[prop] {
		return
	}
	m.colors[prop] = c
}

// Color returns a color parameter, or color.Clear when unset.
func (m *Material) Color(prop string) color.Color {
	c, ok := m.colors[prop]
	if !ok {
		return color.Clear
	}
	return c
}

// SetTexture sets a texture parameter; ref "" clears it. Undeclared
// properties are ignored.
func (m *Material) SetTexture(prop, ref string) {
	if !m.properties[prop] {
		return
	}
	if ref == "" {
		delete(m.textures, prop)
		return
	}
	m.textures[prop] = ref
}

// Texture returns a texture parameter, or "" when unset.
func (m *Material) Texture(prop string) string {
	return m.textures[prop]
}

// Clone returns an independent instance with the same name and parameters.
func (m *Material) Clone() *Material {
	out := &Material{
		name:       m.name,
		properties: make(map[string]bool, len(m.properties)),
		colors:     make(map[string]color.Color, len(m.colors)),
		textures:   make(map[string]string, len(m.textures)),
	}
	for k, v := range m.properties {
		out.properties[k] = v
	}
	for k, v := range m.colors {
		out.colors[k] = v
	}
	for k, v := range m.textures {
		out.textures[k] = v
	}
	return out
}
