package kindle

import (
	"image"
	"math"

	perlin "github.com/aquilax/go-perlin"
)

// go-perlin's lattice repeats every 256 cells on each axis. Each rate below
// times TimeWrap is a multiple of 256, so the software flame wraps with the
// same period as the shader.
const (
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	perlinOctaves = 3

	swayRate  = 0.512
	riseRate  = 1.536
	churnRate = 0.768
)

// SoftwareFlame evaluates an approximation of the flame field on the CPU.
// It is used where no GPU is available, such as headless export. Output is
// a pure function of pixel, time, and parameters.
type SoftwareFlame struct {
	noise *perlin.Perlin
	style FlameStyle
}

// NewSoftwareFlame creates a software flame with a seeded noise table.
func NewSoftwareFlame(seed int64) *SoftwareFlame {
	return &SoftwareFlame{noise: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed)}
}

// Style returns the active style.
func (f *SoftwareFlame) Style() FlameStyle { return f.style }

// SetStyle selects the active style. Unknown styles are ignored.
func (f *SoftwareFlame) SetStyle(s FlameStyle) {
	if s < flameStyleCount {
		f.style = s
	}
}

// Render overwrites dst with the flame at time t.
func (f *SoftwareFlame) Render(dst *image.RGBA, t float64, p *Params) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	t = WrapTime(t)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := f.At(float64(x)+0.5, float64(y)+0.5, w, h, t, p)
			dst.SetRGBA(b.Min.X+x, b.Min.Y+y, c.toRGBA())
		}
	}
}

// At returns the straight-alpha flame color at pixel center (x, y) of a
// w by h canvas.
func (f *SoftwareFlame) At(x, y float64, w, h int, t float64, p *Params) Color {
	if w <= 0 || h <= 0 {
		return ColorTransparent
	}
	t = WrapTime(t)
	qx, qy := flameCoords(x/float64(w), y/float64(h), float64(w)/float64(h), p)
	if f.style == StyleAnime {
		return animeFlame(qx, qy, t, p)
	}
	return f.realisticFlame(qx, qy, t, p)
}

// flameCoords maps a normalized top-down position to flame-local
// coordinates: x is -1..1 across the base, y is 0 at the source and 1 at
// the nominal tip.
func flameCoords(px, py, aspect float64, p *Params) (qx, qy float64) {
	u, v := px, 1-py
	if p.FlipX > 0.5 {
		u = 1 - u
	}
	if p.FlipY > 0.5 {
		v = 1 - v
	}
	zoom := math.Max(p.Zoom, 0.01)
	u = (u-0.5-p.CameraX*0.5)/zoom + 0.5
	v = (v-0.5-p.CameraY*0.5)/zoom + 0.5

	halfW := math.Max(p.FlameSourceSize*aspect*0.5*(0.5+p.BaseWidth), 0.01)
	height := math.Max(p.Height*1.5, 0.05)
	qx = (u - p.FlameSourceX) * aspect / halfW
	qy = (v - p.FlameSourceY) / height

	windX := p.WindStrength * math.Cos(p.WindDirection*2*math.Pi)
	lift := math.Max(qy, 0)
	qx -= (windX*1.5 + p.DragVelocityX*0.08) * qy * lift
	qy -= p.DragVelocityY * 0.02 * lift
	return qx, qy
}

func (f *SoftwareFlame) realisticFlame(qx, qy, t float64, p *Params) Color {
	qx += f.noise.Noise3D(qx*1.5, qy*1.5, t*swayRate) * 0.3 * p.Turbulence * (0.5 + p.Vorticity)

	flame := (1 - qy) * smoothstep(-0.1, 0.15, qy)
	rise := riseRate * (TimeWrap - t)
	turb := f.noise.Noise3D(qx*2, qy*(2+p.Buoyancy)+rise, t*churnRate)
	turb += f.noise.Noise3D(qx*4, qy*(4+2*p.Buoyancy)+2*rise, 2*t*churnRate) * 0.5
	flame *= 0.6 + 0.6*turb*(1-0.5*p.Diffusion)

	width := 1 - math.Abs(qx)*(1+qy*(1+3*p.FlameTaper))
	flame *= smoothstep(0, 0.3, width)
	flame = clamp01(flame * (0.5 + p.OxygenLevel))

	core := p.CoreTemperature * 0.3 * smoothstep(0.5, 1, flame)
	temp := clamp01(flame + p.Temperature*0.3 - 0.15 + core)
	r, g, b := temperatureColor(temp * 1.2)
	r, g, b = desaturate(r, g, b, p.Saturation)
	glow := math.Sqrt(flame) * 0.15

	alpha := clamp01(math.Pow(flame*p.Intensity*1.4, 1.5))
	return Color{clamp01(r + glow), clamp01(g + glow), clamp01(b + glow), alpha}
}

func animeFlame(qx, qy, t float64, p *Params) Color {
	cyc := t / TimeWrap * 2 * math.Pi
	qx += math.Sin(qy*8-cyc*477) * 0.08 * p.Turbulence
	qx += math.Sin(qy*4-cyc*318) * 0.12 * p.Turbulence * (0.5 + p.Vorticity)

	flame := (1 - qy) * smoothstep(-0.05, 0.2, qy)
	width := 1 - math.Abs(qx)*(1.5+qy*(1+2*p.FlameTaper))
	flame *= smoothstep(0, 0.4, width)

	banded := step(0.3, flame)*0.3 + step(0.5, flame)*0.3 + step(0.7, flame)*0.4
	banded *= clamp(p.Height*1.8*(0.5+p.OxygenLevel), 0, 1.5)

	r, g, b := bandColor(banded)
	whiten := p.Temperature*0.3 + p.CoreTemperature*0.2*step(0.75, banded)
	r, g, b = lerp(r, 1, whiten), lerp(g, 1, whiten), lerp(b, 1, whiten)
	r, g, b = desaturate(r, g, b, p.Saturation)
	hi := step(0.75, banded) * 0.4
	outline := (smoothstep(0.08, 0.12, banded) - smoothstep(0.12, 0.16, banded)) * 0.5
	r = clamp01(lerp(r+hi, 0, outline))
	g = clamp01(lerp(g+hi, 0, outline))
	b = clamp01(lerp(b+hi, 0, outline))

	return Color{r, g, b, step(0.1, banded) * clamp01(p.Intensity)}
}

// temperatureColor is the blackbody-style ramp: dark red, red, orange,
// yellow, white.
func temperatureColor(t float64) (r, g, b float64) {
	switch {
	case t < 0.3:
		return lerp(0.2, 1, t/0.3), 0, 0
	case t < 0.6:
		return 1, lerp(0, 0.5, (t-0.3)/0.3), 0
	case t < 0.8:
		return 1, lerp(0.5, 1, (t-0.6)/0.2), 0
	default:
		return 1, 1, clamp01((t - 0.8) / 0.2)
	}
}

func bandColor(v float64) (r, g, b float64) {
	switch {
	case v < 0.25:
		return 0.4, 0, 0.1
	case v < 0.5:
		return 0.9, 0.1, 0
	case v < 0.75:
		return 1, 0.5, 0
	default:
		return 1, 1, 0.3
	}
}

func desaturate(r, g, b, s float64) (float64, float64, float64) {
	gray := 0.299*r + 0.587*g + 0.114*b
	return lerp(gray, r, s), lerp(gray, g, s), lerp(gray, b, s)
}

func smoothstep(e0, e1, x float64) float64 {
	t := clamp01((x - e0) / (e1 - e0))
	return t * t * (3 - 2*t)
}

func step(edge, x float64) float64 {
	if x < edge {
		return 0
	}
	return 1
}
