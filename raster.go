package kindle

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Raster is a software Canvas that draws into a premultiplied *image.RGBA.
// Output depends only on the commands issued, which makes it the reference
// backend for headless export and for pixel tests.
type Raster struct {
	img *image.RGBA
}

// NewRaster creates a transparent raster of the given size.
func NewRaster(w, h int) *Raster {
	return &Raster{img: image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))}
}

// Image returns the backing image.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

// Clear fills the raster with transparent black.
func (r *Raster) Clear() {
	clear(r.img.Pix)
}

// Fill fills the raster with c.
func (r *Raster) Fill(c Color) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(c.toRGBA()), image.Point{}, draw.Src)
}

// DrawOver composites src over the raster with source-over blending.
func (r *Raster) DrawOver(src image.Image) {
	draw.Draw(r.img, r.img.Bounds(), src, src.Bounds().Min, draw.Over)
}

// FillGlow rasterizes a radial gradient.
func (r *Raster) FillGlow(g Glow) {
	if g.Radius <= 0 {
		return
	}
	x0, y0, x1, y1 := r.clipBox(g.X-g.Radius, g.Y-g.Radius, g.X+g.Radius, g.Y+g.Radius)
	inv := 1 / g.Radius
	for py := y0; py < y1; py++ {
		dy := float64(py) + 0.5 - g.Y
		for px := x0; px < x1; px++ {
			dx := float64(px) + 0.5 - g.X
			d := math.Sqrt(dx*dx+dy*dy) * inv
			if d >= 1 {
				continue
			}
			r.blend(px, py, g.colorAt(d), g.Blend)
		}
	}
}

// StrokeTrail rasterizes a line with a linear color fade and a one-pixel
// antialiased edge.
func (r *Raster) StrokeTrail(t Trail) {
	half := t.Width / 2
	if half <= 0 {
		return
	}
	pad := half + 1
	x0, y0, x1, y1 := r.clipBox(
		math.Min(t.X0, t.X1)-pad, math.Min(t.Y0, t.Y1)-pad,
		math.Max(t.X0, t.X1)+pad, math.Max(t.Y0, t.Y1)+pad,
	)
	sx, sy := t.X1-t.X0, t.Y1-t.Y0
	lenSq := sx*sx + sy*sy
	for py := y0; py < y1; py++ {
		cy := float64(py) + 0.5
		for px := x0; px < x1; px++ {
			cx := float64(px) + 0.5
			u := 0.0
			if lenSq > 0 {
				u = clamp01(((cx-t.X0)*sx + (cy-t.Y0)*sy) / lenSq)
			}
			dist := math.Hypot(cx-(t.X0+sx*u), cy-(t.Y0+sy*u))
			cov := clamp01(half - dist + 0.5)
			if cov <= 0 {
				continue
			}
			c := Color{
				lerp(t.From.R, t.To.R, u),
				lerp(t.From.G, t.To.G, u),
				lerp(t.From.B, t.To.B, u),
				lerp(t.From.A, t.To.A, u) * cov,
			}
			r.blend(px, py, c, t.Blend)
		}
	}
}

// clipBox converts a float box to integer pixel bounds clipped to the image.
func (r *Raster) clipBox(minX, minY, maxX, maxY float64) (x0, y0, x1, y1 int) {
	b := r.img.Bounds()
	x0 = max(int(math.Floor(minX)), b.Min.X)
	y0 = max(int(math.Floor(minY)), b.Min.Y)
	x1 = min(int(math.Ceil(maxX)), b.Max.X)
	y1 = min(int(math.Ceil(maxY)), b.Max.Y)
	return
}

// blend composites a straight-alpha color onto the pixel at (x, y).
func (r *Raster) blend(x, y int, c Color, mode BlendMode) {
	if c.A <= 0 {
		return
	}
	i := r.img.PixOffset(x, y)
	pix := r.img.Pix[i : i+4 : i+4]
	src := c.premultiplied()
	sr, sg, sb, sa := src.R*255, src.G*255, src.B*255, src.A*255

	var out [4]float64
	switch mode {
	case BlendAdd:
		out = [4]float64{
			float64(pix[0]) + sr,
			float64(pix[1]) + sg,
			float64(pix[2]) + sb,
			float64(pix[3]) + sa,
		}
	default:
		k := 1 - src.A
		out = [4]float64{
			sr + float64(pix[0])*k,
			sg + float64(pix[1])*k,
			sb + float64(pix[2])*k,
			sa + float64(pix[3])*k,
		}
	}
	for j, v := range out {
		pix[j] = uint8(math.Min(255, v) + 0.5)
	}
	// Premultiplied invariant: no channel may exceed alpha.
	pix[0] = min(pix[0], pix[3])
	pix[1] = min(pix[1], pix[3])
	pix[2] = min(pix[2], pix[3])
}

// toNRGBA converts a premultiplied RGBA image to straight alpha.
func toNRGBA(src *image.RGBA) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x, y, color.NRGBAModel.Convert(src.RGBAAt(x, y)))
		}
	}
	return dst
}
