package kindle

import (
	"image"
	"image/color"
	"testing"
)

func TestRasterFillGlowCenterAndEdge(t *testing.T) {
	r := NewRaster(20, 20)
	r.FillGlow(Glow{
		X: 10, Y: 10, Radius: 8,
		Stops: [4]GradientStop{
			{0, Color{1, 1, 1, 1}},
			{0.5, Color{1, 1, 1, 1}},
			{0.9, Color{1, 1, 1, 0.5}},
			{1, Color{1, 1, 1, 0}},
		},
		Blend: BlendNormal,
	})
	if c := r.Image().RGBAAt(10, 10); c.A != 255 {
		t.Errorf("center alpha = %d, want 255", c.A)
	}
	if c := r.Image().RGBAAt(0, 0); c.A != 0 {
		t.Errorf("corner alpha = %d, want 0", c.A)
	}
	if c := r.Image().RGBAAt(10, 3); c.A == 0 || c.A == 255 {
		t.Errorf("edge alpha = %d, want partial", c.A)
	}
}

func TestRasterZeroRadiusNoop(t *testing.T) {
	r := NewRaster(4, 4)
	r.FillGlow(Glow{X: 2, Y: 2, Radius: 0, Stops: [4]GradientStop{{0, Color{1, 1, 1, 1}}}})
	r.StrokeTrail(Trail{X0: 0, Y0: 0, X1: 3, Y1: 3, Width: 0, From: Color{1, 1, 1, 1}})
	for _, v := range r.Image().Pix {
		if v != 0 {
			t.Fatal("zero-size commands drew pixels")
		}
	}
}

func TestRasterBlendModes(t *testing.T) {
	half := Color{1, 0, 0, 0.5}

	add := NewRaster(1, 1)
	add.blend(0, 0, half, BlendAdd)
	add.blend(0, 0, half, BlendAdd)
	if c := add.Image().RGBAAt(0, 0); c.R != 255 || c.A != 255 {
		t.Errorf("additive = %+v, want saturated red", c)
	}

	over := NewRaster(1, 1)
	over.blend(0, 0, half, BlendNormal)
	over.blend(0, 0, half, BlendNormal)
	if c := over.Image().RGBAAt(0, 0); c.A != 192 {
		t.Errorf("source-over alpha = %d, want 192", c.A)
	}
}

func TestRasterPremultipliedInvariant(t *testing.T) {
	r := NewRaster(8, 8)
	for range 10 {
		r.FillGlow(Glow{
			X: 4, Y: 4, Radius: 4,
			Stops: [4]GradientStop{
				{0, Color{1, 0.8, 0.2, 0.3}},
				{0.5, Color{1, 0.5, 0.1, 0.2}},
				{0.8, Color{0.5, 0.1, 0, 0.1}},
				{1, Color{}},
			},
			Blend: BlendAdd,
		})
	}
	pix := r.Image().Pix
	for i := 0; i < len(pix); i += 4 {
		a := pix[i+3]
		if pix[i] > a || pix[i+1] > a || pix[i+2] > a {
			t.Fatalf("pixel %d has a channel above alpha: %v", i/4, pix[i:i+4])
		}
	}
}

func TestRasterStrokeTrail(t *testing.T) {
	r := NewRaster(20, 5)
	r.StrokeTrail(Trail{
		X0: 2, Y0: 2.5, X1: 18, Y1: 2.5, Width: 2,
		From: Color{1, 1, 1, 1}, To: Color{1, 1, 1, 0},
		Blend: BlendNormal,
	})
	head := r.Image().RGBAAt(2, 2).A
	mid := r.Image().RGBAAt(10, 2).A
	tail := r.Image().RGBAAt(17, 2).A
	if !(head > mid && mid > tail) {
		t.Errorf("trail alpha should fade head→tail: %d, %d, %d", head, mid, tail)
	}
	if c := r.Image().RGBAAt(10, 0); c.A != 0 {
		t.Errorf("pixel off the line has alpha %d", c.A)
	}
}

func TestRasterFillAndDrawOver(t *testing.T) {
	r := NewRaster(2, 1)
	r.Fill(Color{0, 0, 1, 1})
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	r.DrawOver(src)
	if c := r.Image().RGBAAt(0, 0); c != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("covered pixel = %+v, want red", c)
	}
	if c := r.Image().RGBAAt(1, 0); c != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("uncovered pixel = %+v, want blue", c)
	}
	r.Clear()
	if c := r.Image().RGBAAt(0, 0); c.A != 0 {
		t.Error("Clear left pixels behind")
	}
}

func TestToNRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.SetRGBA(0, 0, color.RGBA{64, 0, 0, 128})
	got := toNRGBA(src).NRGBAAt(0, 0)
	if got.A != 128 || got.R < 126 || got.R > 128 {
		t.Errorf("toNRGBA = %+v, want straight red ~127 at alpha 128", got)
	}
}
