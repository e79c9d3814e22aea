package kindle

import (
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when a color is handed to a canvas.
type Color struct {
	R, G, B, A float64
}

// ColorTransparent is fully transparent black.
var ColorTransparent = Color{}

// premultiplied returns the color with RGB scaled by alpha.
func (c Color) premultiplied() Color {
	return Color{c.R * c.A, c.G * c.A, c.B * c.A, c.A}
}

// toRGBA converts to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	p := c.premultiplied()
	return color.RGBA{
		R: unit8(p.R),
		G: unit8(p.G),
		B: unit8(p.B),
		A: unit8(p.A),
	}
}

// WithAlpha returns a copy of c with alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

func unit8(v float64) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

// Range is a general-purpose min/max range. Used by the spawn tables.
type Range struct {
	Min, Max float64
}

// Random returns a random float64 in [Min, Max] drawn from rng.
func (r Range) Random(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// centered returns a random value in [-Max, Max]. Min is ignored.
func (r Range) centered(rng *rand.Rand) float64 {
	return (rng.Float64() - 0.5) * 2 * r.Max
}

// BlendMode selects a compositing operation.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                     // additive / lighter
)

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendAdd:
		return ebiten.BlendLighter
	default:
		return ebiten.BlendSourceOver
	}
}

// clamp limits v to [lo, hi]. NaN maps to lo.
func clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
