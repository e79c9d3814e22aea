package kindle

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// TimeWrap is the period of flame time in seconds. Every time-dependent term
// of the flame field repeats exactly after TimeWrap, so wrapping the clock
// keeps float precision without a visible seam.
const TimeWrap = 1000.0

// WrapTime maps t into [0, TimeWrap).
func WrapTime(t float64) float64 {
	t = math.Mod(t, TimeWrap)
	if t < 0 {
		t += TimeWrap
	}
	if t >= TimeWrap {
		t = 0
	}
	return t
}

// FlameStyle selects the flame shader.
type FlameStyle uint8

const (
	StyleRealistic FlameStyle = iota // noise-driven body with blackbody ramp
	StyleAnime                       // banded cel-shaded flame with outline
	flameStyleCount
)

var flameStyleNames = [flameStyleCount]string{"realistic", "anime"}

func (s FlameStyle) String() string {
	if s < flameStyleCount {
		return flameStyleNames[s]
	}
	return "unknown"
}

// Next returns the other style; used by the style toggle.
func (s FlameStyle) Next() FlameStyle {
	return (s + 1) % flameStyleCount
}

// ParseFlameStyle looks up a style by name.
func ParseFlameStyle(name string) (FlameStyle, bool) {
	for i, n := range flameStyleNames {
		if n == name {
			return FlameStyle(i), true
		}
	}
	return 0, false
}

// --- Kage sources ---
// Both programs share a header with every parameter uniform and a value
// noise whose lattice repeats every noisePeriod cells along y and z, the two
// axes time scrolls. All time rates used against the lattice are multiples
// of noisePeriod/TimeWrap, and every sine phase runs a whole number of
// cycles per TimeWrap.

const flameHeaderSrc = `//kage:unit pixels
package main

var Time float
var Intensity float
var Height float
var Turbulence float
var Speed float
var Temperature float
var Saturation float
var WindStrength float
var WindDirection float
var Zoom float
var CameraX float
var CameraY float
var FlipX float
var FlipY float
var FlameSourceX float
var FlameSourceY float
var FlameSourceSize float
var Buoyancy float
var Vorticity float
var Diffusion float
var BaseWidth float
var FlameTaper float
var CoreTemperature float
var OxygenLevel float
var DragVelocityX float
var DragVelocityY float

const noisePeriod = 50.0
const twoPi = 6.283185307

func hash3(p vec3) float {
	w := vec3(p.x, mod(p.yz, noisePeriod))
	return fract(sin(dot(w, vec3(127.1, 311.7, 74.7))) * 43758.5453)
}

func noise3(p vec3) float {
	i := floor(p)
	f := fract(p)
	f = f * f * (3 - 2*f)
	a := mix(hash3(i), hash3(i+vec3(1, 0, 0)), f.x)
	b := mix(hash3(i+vec3(0, 1, 0)), hash3(i+vec3(1, 1, 0)), f.x)
	c := mix(hash3(i+vec3(0, 0, 1)), hash3(i+vec3(1, 0, 1)), f.x)
	d := mix(hash3(i+vec3(0, 1, 1)), hash3(i+vec3(1, 1, 1)), f.x)
	return mix(mix(a, b, f.y), mix(c, d, f.y), f.z)*2 - 1
}

func fbm(p vec3) float {
	v := 0.0
	amp := 0.5
	x := p
	for k := 0; k < 5; k++ {
		v += amp * noise3(x)
		x *= 2
		amp *= 0.5
	}
	return v
}

// flameCoords maps a destination pixel to flame-local coordinates: x is -1..1
// across the base, y is 0 at the source and 1 at the nominal tip.
func flameCoords(dst vec4) vec2 {
	size := imageDstSize()
	pos := (dst.xy - imageDstOrigin()) / size
	uv := vec2(pos.x, 1-pos.y)
	if FlipX > 0.5 {
		uv.x = 1 - uv.x
	}
	if FlipY > 0.5 {
		uv.y = 1 - uv.y
	}
	uv = (uv-0.5-vec2(CameraX, CameraY)*0.5)/max(Zoom, 0.01) + 0.5

	aspect := size.x / size.y
	halfW := max(FlameSourceSize*aspect*0.5*(0.5+BaseWidth), 0.01)
	h := max(Height*1.5, 0.05)
	q := vec2((uv.x-FlameSourceX)*aspect/halfW, (uv.y-FlameSourceY)/h)

	windX := WindStrength * cos(WindDirection*twoPi)
	q.x -= (windX*1.5 + DragVelocityX*0.08) * q.y * max(q.y, 0)
	q.y -= DragVelocityY * 0.02 * max(q.y, 0)
	return q
}

func desaturate(c vec3, s float) vec3 {
	gray := dot(c, vec3(0.299, 0.587, 0.114))
	return mix(vec3(gray), c, s)
}
`

const realisticFlameSrc = flameHeaderSrc + `
func temperatureColor(t float) vec3 {
	if t < 0.3 {
		return mix(vec3(0.2, 0, 0), vec3(1, 0, 0), t/0.3)
	}
	if t < 0.6 {
		return mix(vec3(1, 0, 0), vec3(1, 0.5, 0), (t-0.3)/0.3)
	}
	if t < 0.8 {
		return mix(vec3(1, 0.5, 0), vec3(1, 1, 0), (t-0.6)/0.2)
	}
	return mix(vec3(1, 1, 0), vec3(1), clamp((t-0.8)/0.2, 0, 1))
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	q := flameCoords(dst)
	t := Time

	q.x += fbm(vec3(q*1.5, t*0.5)) * 0.3 * Turbulence * (0.5 + Vorticity)

	flame := 1 - q.y
	flame *= smoothstep(-0.1, 0.15, q.y)
	turb := fbm(vec3(q.x*2, q.y*(2+Buoyancy)-t*1.5, t*0.8))
	turb += fbm(vec3(q.x*4, q.y*(4+2*Buoyancy)-t*3, t*1.5)) * 0.5
	flame *= 0.6 + 0.6*turb*(1-0.5*Diffusion)

	width := 1 - abs(q.x)*(1+q.y*(1+3*FlameTaper))
	flame *= smoothstep(0, 0.3, width)
	flame = clamp(flame*(0.5+OxygenLevel), 0, 1)

	core := CoreTemperature * 0.3 * smoothstep(0.5, 1, flame)
	temp := clamp(flame+Temperature*0.3-0.15+core, 0, 1)
	c := desaturate(temperatureColor(temp*1.2), Saturation)
	c += vec3(sqrt(flame) * 0.15)
	c = clamp(c, 0, 1)

	alpha := clamp(pow(flame*Intensity*1.4, 1.5), 0, 1)
	return vec4(c*alpha, alpha)
}
`

const animeFlameSrc = flameHeaderSrc + `
func bandColor(v float) vec3 {
	if v < 0.25 {
		return vec3(0.4, 0, 0.1)
	}
	if v < 0.5 {
		return vec3(0.9, 0.1, 0)
	}
	if v < 0.75 {
		return vec3(1, 0.5, 0)
	}
	return vec3(1, 1, 0.3)
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	q := flameCoords(dst)
	cyc := Time / 1000 * twoPi

	q.x += sin(q.y*8-cyc*477) * 0.08 * Turbulence
	q.x += sin(q.y*4-cyc*318) * 0.12 * Turbulence * (0.5 + Vorticity)

	flame := 1 - q.y
	flame *= smoothstep(-0.05, 0.2, q.y)
	width := 1 - abs(q.x)*(1.5+q.y*(1+2*FlameTaper))
	flame *= smoothstep(0, 0.4, width)

	banded := step(0.3, flame)*0.3 + step(0.5, flame)*0.3 + step(0.7, flame)*0.4
	banded *= clamp(Height*1.8*(0.5+OxygenLevel), 0, 1.5)

	c := bandColor(banded)
	c = mix(c, vec3(1), Temperature*0.3+CoreTemperature*0.2*step(0.75, banded))
	c = desaturate(c, Saturation)
	c += vec3(step(0.75, banded) * 0.4)
	outline := smoothstep(0.08, 0.12, banded) - smoothstep(0.12, 0.16, banded)
	c = clamp(mix(c, vec3(0), outline*0.5), 0, 1)

	alpha := step(0.1, banded) * Intensity
	return vec4(c*alpha, alpha)
}
`

var flameShaderSrcs = [flameStyleCount]string{
	StyleRealistic: realisticFlameSrc,
	StyleAnime:     animeFlameSrc,
}

// FlameField draws the flame body with a Kage shader. It holds no state
// between frames other than the selected style: each Draw is a pure
// function of time and parameters.
type FlameField struct {
	shaders  [flameStyleCount]*ebiten.Shader
	style    FlameStyle
	uniforms map[string]any
	op       ebiten.DrawRectShaderOptions
}

// NewFlameField compiles both flame programs.
func NewFlameField() (*FlameField, error) {
	f := &FlameField{uniforms: make(map[string]any, len(paramDefs)+1)}
	for i, src := range flameShaderSrcs {
		s, err := ebiten.NewShader([]byte(src))
		if err != nil {
			for _, prev := range f.shaders[:i] {
				prev.Deallocate()
			}
			return nil, fmt.Errorf("compile %s flame shader: %w", FlameStyle(i), err)
		}
		f.shaders[i] = s
	}
	return f, nil
}

// Style returns the active style.
func (f *FlameField) Style() FlameStyle { return f.style }

// SetStyle selects the active style. Unknown styles are ignored.
func (f *FlameField) SetStyle(s FlameStyle) {
	if s < flameStyleCount {
		f.style = s
	}
}

// Draw fills dst with the flame at time t. t is wrapped into [0, TimeWrap).
func (f *FlameField) Draw(dst *ebiten.Image, t float64, p *Params) {
	p.Uniforms(f.uniforms)
	f.uniforms["Time"] = float32(WrapTime(t))
	b := dst.Bounds()
	f.op.GeoM.Reset()
	f.op.GeoM.Translate(float64(b.Min.X), float64(b.Min.Y))
	f.op.Uniforms = f.uniforms
	f.op.Blend = ebiten.BlendCopy
	dst.DrawRectShader(b.Dx(), b.Dy(), f.shaders[f.style], &f.op)
}

// Dispose releases the compiled shaders.
func (f *FlameField) Dispose() {
	for i, s := range f.shaders {
		if s != nil {
			s.Deallocate()
			f.shaders[i] = nil
		}
	}
}
