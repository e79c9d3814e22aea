package kindle

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// glowShaderSrc fills a radial gradient with four stops. Colors arrive in
// straight alpha and leave premultiplied.
const glowShaderSrc = `//kage:unit pixels
package main

var Center vec2
var Radius float
var Offsets vec4
var Color0 vec4
var Color1 vec4
var Color2 vec4
var Color3 vec4

func segment(a, b vec4, from, to, d float) vec4 {
	span := max(to-from, 0.0001)
	return mix(a, b, clamp((d-from)/span, 0, 1))
}

func stopColor(d float) vec4 {
	if d <= Offsets.x {
		return Color0
	}
	if d <= Offsets.y {
		return segment(Color0, Color1, Offsets.x, Offsets.y, d)
	}
	if d <= Offsets.z {
		return segment(Color1, Color2, Offsets.y, Offsets.z, d)
	}
	if d <= Offsets.w {
		return segment(Color2, Color3, Offsets.z, Offsets.w, d)
	}
	return Color3
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	pos := dst.xy - imageDstOrigin()
	d := distance(pos, Center) / Radius
	if d >= 1 {
		return vec4(0)
	}
	c := stopColor(d)
	return vec4(c.rgb*c.a, c.a)
}
`

// Lazy shader compilation (single-threaded, no sync.Once).
var glowShader *ebiten.Shader

func ensureGlowShader() (*ebiten.Shader, error) {
	if glowShader == nil {
		s, err := ebiten.NewShader([]byte(glowShaderSrc))
		if err != nil {
			return nil, fmt.Errorf("compile glow shader: %w", err)
		}
		glowShader = s
	}
	return glowShader, nil
}

var whiteImage *ebiten.Image

// ensureWhiteImage returns a 1x1 opaque white region cut from the middle of
// a 3x3 image so sampling never bleeds past its edges.
func ensureWhiteImage() *ebiten.Image {
	if whiteImage == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whiteImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whiteImage
}

// EbitenCanvas draws Renderer commands onto an *ebiten.Image. Glows go
// through a Kage shader; trails are quads with per-vertex color.
type EbitenCanvas struct {
	target *ebiten.Image
	shader *ebiten.Shader

	uniforms map[string]any
	center   [2]float32
	offsets  [4]float32
	colors   [4][4]float32
	shaderOp ebiten.DrawRectShaderOptions

	verts [4]ebiten.Vertex
	inds  [6]uint16
	triOp ebiten.DrawTrianglesOptions
}

// NewEbitenCanvas creates a canvas drawing into target. It fails only when
// the glow shader cannot be compiled.
func NewEbitenCanvas(target *ebiten.Image) (*EbitenCanvas, error) {
	shader, err := ensureGlowShader()
	if err != nil {
		return nil, err
	}
	c := &EbitenCanvas{
		target:   target,
		shader:   shader,
		uniforms: make(map[string]any, 7),
		inds:     [6]uint16{0, 1, 2, 1, 3, 2},
	}
	c.triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	return c, nil
}

// SetTarget redirects subsequent draws, e.g. after a layer resize.
func (c *EbitenCanvas) SetTarget(target *ebiten.Image) {
	c.target = target
}

// FillGlow draws a radial gradient.
func (c *EbitenCanvas) FillGlow(g Glow) {
	if c.target == nil || g.Radius <= 0 {
		return
	}
	x0 := math.Floor(g.X - g.Radius)
	y0 := math.Floor(g.Y - g.Radius)
	w := int(math.Ceil(g.X+g.Radius) - x0)
	h := int(math.Ceil(g.Y+g.Radius) - y0)
	if w <= 0 || h <= 0 {
		return
	}

	c.center = [2]float32{float32(g.X), float32(g.Y)}
	for i, s := range g.Stops {
		c.offsets[i] = float32(s.Offset)
		c.colors[i] = [4]float32{
			float32(clamp01(s.Color.R)),
			float32(clamp01(s.Color.G)),
			float32(clamp01(s.Color.B)),
			float32(clamp01(s.Color.A)),
		}
	}
	c.uniforms["Center"] = c.center[:]
	c.uniforms["Radius"] = float32(g.Radius)
	c.uniforms["Offsets"] = c.offsets[:]
	c.uniforms["Color0"] = c.colors[0][:]
	c.uniforms["Color1"] = c.colors[1][:]
	c.uniforms["Color2"] = c.colors[2][:]
	c.uniforms["Color3"] = c.colors[3][:]

	c.shaderOp.GeoM.Reset()
	c.shaderOp.GeoM.Translate(x0, y0)
	c.shaderOp.Uniforms = c.uniforms
	c.shaderOp.Blend = g.Blend.EbitenBlend()
	c.target.DrawRectShader(w, h, c.shader, &c.shaderOp)
}

// StrokeTrail draws a line as a quad whose color fades from t.From at the
// start to t.To at the end.
func (c *EbitenCanvas) StrokeTrail(t Trail) {
	if c.target == nil || t.Width <= 0 {
		return
	}
	dx, dy := t.X1-t.X0, t.Y1-t.Y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	// Unit normal scaled to half the width.
	nx, ny := -dy/length*t.Width/2, dx/length*t.Width/2

	from, to := t.From.premultiplied(), t.To.premultiplied()
	c.verts[0] = trailVertex(t.X0+nx, t.Y0+ny, from)
	c.verts[1] = trailVertex(t.X0-nx, t.Y0-ny, from)
	c.verts[2] = trailVertex(t.X1+nx, t.Y1+ny, to)
	c.verts[3] = trailVertex(t.X1-nx, t.Y1-ny, to)

	c.triOp.Blend = t.Blend.EbitenBlend()
	c.target.DrawTriangles(c.verts[:], c.inds[:], ensureWhiteImage(), &c.triOp)
}

func trailVertex(x, y float64, pc Color) ebiten.Vertex {
	return ebiten.Vertex{
		DstX:   float32(x),
		DstY:   float32(y),
		SrcX:   1.5,
		SrcY:   1.5,
		ColorR: float32(clamp01(pc.R)),
		ColorG: float32(clamp01(pc.G)),
		ColorB: float32(clamp01(pc.B)),
		ColorA: float32(clamp01(pc.A)),
	}
}
