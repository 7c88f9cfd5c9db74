// Package color provides the floating point RGBA color value used by slots,
// skin and tint, plus palette loading for randomized compositions.
package color

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an RGBA color with channels in [0,1].
type Color struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
	A float64 `json:"a" yaml:"a"`
}

var (
	// Clear is the transparent sentinel returned for invalid color lookups.
	Clear = Color{}
	// White is the neutral slot color and the default tint.
	White = Color{R: 1, G: 1, B: 1, A: 1}
	// Gray is the default skin color.
	Gray = Color{R: 0.5, G: 0.5, B: 0.5, A: 1}
	// Red is fully saturated opaque red.
	Red = Color{R: 1, A: 1}
)

// RGBA builds a Color from four channels.
func RGBA(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Valid reports whether every channel is a finite value in [0,1].
func (c Color) Valid() bool {
	for _, v := range [4]float64{c.R, c.G, c.B, c.A} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// Clamped returns c with every channel clamped into [0,1].
func (c Color) Clamped() Color {
	clamp := func(v float64) float64 {
		if math.IsNaN(v) || v < 0 {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	}
	return Color{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}

// Hex renders c as "#rrggbb", or "#rrggbbaa" when alpha is not opaque.
func (c Color) Hex() string {
	cc := c.Clamped()
	s := colorful.Color{R: cc.R, G: cc.G, B: cc.B}.Hex()
	if cc.A < 1 {
		s += fmt.Sprintf("%02x", uint8(math.Round(cc.A*255)))
	}
	return s
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Hex()
}

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa".
//
// Postcondition: the returned Color is Valid, or err is non-nil.
func ParseHex(s string) (Color, error) {
	alpha := 1.0
	if len(s) == 9 && s[0] == '#' {
		var a uint8
		if _, err := fmt.Sscanf(s[7:], "%02x", &a); err != nil {
			return Clear, fmt.Errorf("color: invalid alpha in %q: %w", s, err)
		}
		alpha = float64(a) / 255
		s = s[:7]
	}
	cf, err := colorful.Hex(s)
	if err != nil {
		return Clear, fmt.Errorf("color: %w", err)
	}
	return Color{R: cf.R, G: cf.G, B: cf.B, A: alpha}.Clamped(), nil
}

// MustParseHex parses s and panics on error. Useful for package-level values.
func MustParseHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic("color: MustParseHex failed for " + s + ": " + err.Error())
	}
	return c
}

// UnmarshalYAML accepts either a hex string or an {r,g,b,a} mapping.
func (c *Color) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		parsed, err := ParseHex(s)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	type plain Color
	p := plain{A: 1}
	if err := unmarshal(&p); err != nil {
		return err
	}
	*c = Color(p)
	return nil
}
