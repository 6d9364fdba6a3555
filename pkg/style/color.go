// Package style parses raw computed-style strings into typed values.
//
// The parsers are total: every input, including garbage, maps to a value.
// Unparseable colors become [Transparent], missing gradients become nil and
// missing radii become zero. This keeps the extractor free of error paths
// for values that only affect decoration.
//
// # Colors
//
// [ParseColor] reads the first three or four numeric tokens of a color
// function, which covers the rgb()/rgba() forms browsers report for
// computed styles:
//
//	style.ParseColor("rgba(211, 47, 47, 0.05)") // {211 47 47 0.05}
//	style.ParseColor("transparent")             // {0 0 0 0}
//
// # Gradients
//
// [ParseLinearGradient] locates a linear-gradient(...) call with balanced
// parenthesis scanning, so nested rgb() arguments do not confuse the split.
// [TargetAngle] converts the CSS angle convention into the presentation one.
package style

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an RGBA color with 8-bit channels and alpha in [0, 1].
type Color struct {
	R, G, B uint8
	A       float64
}

// Transparent is fully transparent black, the result of every failed parse.
var Transparent = Color{}

// White is the assumed page background for alpha compositing.
var White = Color{R: 255, G: 255, B: 255, A: 1}

var numberRe = regexp.MustCompile(`[\d.]+`)

// ParseColor parses a CSS color function into a Color.
//
// The first three or four numeric tokens become r, g, b and alpha. A missing
// alpha defaults to 1. Channels are clamped and truncated toward zero.
// Keywords without numeric components (transparent, inherit, initial, unset)
// and any malformed input yield [Transparent].
func ParseColor(s string) Color {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "transparent", "inherit", "initial", "unset", "none":
		return Transparent
	}

	tokens := numberRe.FindAllString(s, 4)
	if len(tokens) < 3 {
		return Transparent
	}

	vals := [4]float64{0, 0, 0, 1}
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return Transparent
		}
		vals[i] = v
	}

	return Color{
		R: channel(vals[0]),
		G: channel(vals[1]),
		B: channel(vals[2]),
		A: clamp(vals[3], 0, 1),
	}
}

func channel(v float64) uint8 {
	return uint8(clamp(v, 0, 255))
}

func clamp(v, lo, hi float64) float64 {
	if v != v || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsTransparent reports whether the color has zero alpha.
func (c Color) IsTransparent() bool { return c.A == 0 }

// Over composites c onto an opaque background using straight alpha blending.
// Each channel is c*a + bg*(1-a), truncated. The result is opaque.
func (c Color) Over(bg Color) Color {
	if c.A >= 1 {
		c.A = 1
		return c
	}
	blend := func(fg, b uint8) uint8 {
		return uint8(float64(fg)*c.A + float64(b)*(1-c.A))
	}
	return Color{R: blend(c.R, bg.R), G: blend(c.G, bg.G), B: blend(c.B, bg.B), A: 1}
}

// Flatten composites c over [White].
func (c Color) Flatten() Color { return c.Over(White) }

// Hex returns the RGB channels as an uppercase hex triplet without a leading #.
func (c Color) Hex() string {
	cc := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	return strings.ToUpper(strings.TrimPrefix(cc.Hex(), "#"))
}

// String returns the color in rgba() notation.
func (c Color) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}
