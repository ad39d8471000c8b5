// Package colorspace provides the pure color math used by theme validation:
// strict hex parsing, RGB/HSL conversion, Euclidean RGB distance, and WCAG
// 2.1 relative luminance and contrast ratio. All functions are side-effect
// free; invalid input yields an ok=false return, never a panic.
package colorspace

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// MaxDistance is the largest possible Euclidean distance between two colors
// in 0-255 RGB space: sqrt(3 * 255^2).
const MaxDistance = 441.6729559300637

var hexPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// RGB is a color in 0-255 channel space.
type RGB struct {
	R, G, B int
}

// HSL is a color in hue/saturation/lightness space.
// H is in degrees [0,360), S and L are percentages [0,100].
type HSL struct {
	H, S, L float64
}

// Normalize returns the canonical "#rrggbb" lower-case form of hex, or
// ok=false if hex is not a 6-digit hex color.
func Normalize(hex string) (string, bool) {
	if !hexPattern.MatchString(hex) {
		return "", false
	}
	return "#" + strings.ToLower(strings.TrimPrefix(hex, "#")), true
}

// IsValidHex reports whether hex is a syntactically valid 6-digit hex color,
// with or without a leading '#'.
func IsValidHex(hex string) bool {
	return hexPattern.MatchString(hex)
}

// HexToRGB parses a strict 6-digit hex color. Non-matching input yields
// ok=false.
func HexToRGB(hex string) (RGB, bool) {
	norm, ok := Normalize(hex)
	if !ok {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(norm[1:], 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{
		R: int(v >> 16 & 0xFF),
		G: int(v >> 8 & 0xFF),
		B: int(v & 0xFF),
	}, true
}

// RGBDistance returns the Euclidean distance between two hex colors in
// 0-255 RGB space, in [0, MaxDistance]. If either color fails to parse the
// distance is 0, treating unparseable colors as identical; callers that need
// to reject malformed colors must validate syntax first.
func RGBDistance(hex1, hex2 string) float64 {
	c1, ok1 := HexToRGB(hex1)
	c2, ok2 := HexToRGB(hex2)
	if !ok1 || !ok2 {
		return 0
	}
	dr := float64(c1.R - c2.R)
	dg := float64(c1.G - c2.G)
	db := float64(c1.B - c2.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Similarity converts an average RGB distance to a similarity score in
// [0,1], where 1 means identical.
func Similarity(distance float64) float64 {
	s := 1 - distance/MaxDistance
	return math.Max(0, math.Min(1, s))
}

// HexToHSL converts a hex color to HSL. Non-matching input yields ok=false.
func HexToHSL(hex string) (HSL, bool) {
	c, ok := parse(hex)
	if !ok {
		return HSL{}, false
	}
	h, s, l := c.Hsl()
	return HSL{H: h, S: s * 100, L: l * 100}, true
}

// RelativeLuminance returns the WCAG 2.1 relative luminance of a hex color
// using gamma-corrected (linearized) channels. Non-matching input yields
// ok=false.
func RelativeLuminance(hex string) (float64, bool) {
	c, ok := parse(hex)
	if !ok {
		return 0, false
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b, true
}

// ContrastRatio returns the WCAG contrast ratio (lighter+0.05)/(darker+0.05)
// between two hex colors, in [1,21]. If either color fails to parse the
// ratio is 1 (no contrast).
func ContrastRatio(hex1, hex2 string) float64 {
	l1, ok1 := RelativeLuminance(hex1)
	l2, ok2 := RelativeLuminance(hex2)
	if !ok1 || !ok2 {
		return 1
	}
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// HueDistance returns the shortest angular distance between two hues in
// degrees, in [0,180].
func HueDistance(h1, h2 float64) float64 {
	d := math.Abs(h1 - h2)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// parse validates hex strictly before handing it to go-colorful, which is
// more permissive than the 6-digit contract allows.
func parse(hex string) (colorful.Color, bool) {
	norm, ok := Normalize(hex)
	if !ok {
		return colorful.Color{}, false
	}
	c, err := colorful.Hex(norm)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}
