package kindle

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// GradientStop is one color stop of a radial gradient. Offset is the
// fraction of the radius in [0, 1].
type GradientStop struct {
	Offset float64
	Color  Color
}

// Glow is a filled radial gradient centered on (X, Y). The last stop is
// always fully transparent so glows fade into the background.
type Glow struct {
	X, Y, Radius float64
	Stops        [4]GradientStop
	Blend        BlendMode
}

// colorAt returns the gradient color at normalized distance d in [0, 1].
func (g *Glow) colorAt(d float64) Color {
	if d <= g.Stops[0].Offset {
		return g.Stops[0].Color
	}
	for i := 1; i < len(g.Stops); i++ {
		a, b := g.Stops[i-1], g.Stops[i]
		if d <= b.Offset {
			span := b.Offset - a.Offset
			if span <= 0 {
				return b.Color
			}
			t := (d - a.Offset) / span
			return Color{
				lerp(a.Color.R, b.Color.R, t),
				lerp(a.Color.G, b.Color.G, t),
				lerp(a.Color.B, b.Color.B, t),
				lerp(a.Color.A, b.Color.A, t),
			}
		}
	}
	return g.Stops[len(g.Stops)-1].Color
}

// Trail is a line from (X0, Y0) to (X1, Y1) whose color fades from From to To.
type Trail struct {
	X0, Y0, X1, Y1 float64
	Width          float64
	From, To       Color
	Blend          BlendMode
}

// Canvas receives draw commands from a Renderer.
type Canvas interface {
	FillGlow(g Glow)
	StrokeTrail(t Trail)
}

// Renderer turns a simulator's live population into draw commands. It keeps
// no per-frame state: rendering the same snapshot twice issues the same
// commands.
type Renderer struct {
	// Trails enables motion trails behind sparks.
	Trails bool
}

// NewRenderer creates a Renderer with spark trails enabled.
func NewRenderer() *Renderer {
	return &Renderer{Trails: true}
}

// renderContext is the simulator state shared by every particle in a frame.
type renderContext struct {
	sourceX, sourceY float64
	height           float64
	drag             float64
}

// Render draws every live particle of s onto c. A disabled simulator draws
// nothing.
func (r *Renderer) Render(c Canvas, s *Simulator) {
	if !s.Enabled() {
		return
	}
	sx, sy := s.SourceCenter()
	_, h := s.Bounds()
	ctx := renderContext{sourceX: sx, sourceY: sy, height: h, drag: s.DragMagnitude()}
	r.renderParticles(c, s.Particles(), &ctx)
}

func (r *Renderer) renderParticles(c Canvas, particles []Particle, ctx *renderContext) {
	for i := range particles {
		p := &particles[i]
		if p.Life <= 0 {
			continue
		}
		switch p.Kind {
		case KindSpark:
			r.drawSpark(c, p)
		case KindSmoke:
			drawSmoke(c, p)
		case KindShimmer:
			drawShimmer(c, p)
		case KindWisp:
			drawWisp(c, p, ctx)
		}
	}
}

// heat maps temperature to [0, 1] between ambient and flame temperature.
func heat(p *Particle) float64 {
	return clamp01((p.Temperature - AmbientTemperature) / (FlameTemperature - AmbientTemperature))
}

// coolHue shifts a base hue toward red as the particle cools.
func coolHue(p *Particle) float64 {
	return p.Hue * (0.35 + 0.65*heat(p))
}

// hsla builds a straight-alpha Color from HSL with h in degrees and s, l, a
// in [0, 1].
func hsla(h, s, l, a float64) Color {
	c := colorful.Hsl(h, clamp01(s), clamp01(l)).Clamped()
	return Color{c.R, c.G, c.B, clamp01(a)}
}

// fadeStops builds four stops at fixed offsets with the alpha ramp given.
func fadeStops(offsets, alphas [4]float64, colors [4]Color) [4]GradientStop {
	var stops [4]GradientStop
	for i := range stops {
		stops[i] = GradientStop{Offset: offsets[i], Color: colors[i].WithAlpha(alphas[i])}
	}
	return stops
}

func (r *Renderer) drawSpark(c Canvas, p *Particle) {
	alpha := p.Life
	radius := p.Size * p.Life
	h := heat(p)
	col := hsla(coolHue(p), 0.7+0.3*h, 0.45+0.5*h, alpha)

	if r.Trails && (p.VX != 0 || p.VY != 0) {
		c.StrokeTrail(Trail{
			X0: p.X, Y0: p.Y,
			X1: p.X - p.VX*0.5, Y1: p.Y - p.VY*0.5,
			Width: radius,
			From:  col,
			To:    col.WithAlpha(0),
			Blend: BlendAdd,
		})
	}

	c.FillGlow(Glow{
		X: p.X, Y: p.Y, Radius: radius * 1.2,
		Stops: fadeStops(
			[4]float64{0, 0.6, 0.85, 1},
			[4]float64{alpha, alpha * 0.9, alpha * 0.5, 0},
			[4]Color{col, col, col, col},
		),
		Blend: BlendAdd,
	})
}

func drawSmoke(c Canvas, p *Particle) {
	alpha := p.Life * p.Opacity
	radius := p.Size * p.Life * 2.5
	h := heat(p)
	inner := hsla(coolHue(p), 0.15, 0.22+0.2*h, 1)
	outer := hsla(coolHue(p), 0.05, 0.15, 1)
	c.FillGlow(Glow{
		X: p.X, Y: p.Y, Radius: radius,
		Stops: fadeStops(
			[4]float64{0, 0.4, 0.7, 1},
			[4]float64{alpha, alpha * 0.6, alpha * 0.3, 0},
			[4]Color{inner, inner, outer, outer},
		),
		Blend: BlendNormal,
	})
}

func drawShimmer(c Canvas, p *Particle) {
	alpha := p.Life * p.Opacity
	radius := p.Size * p.Life * 3
	col := hsla(coolHue(p), 0.5, 0.6, 1)
	c.FillGlow(Glow{
		X: p.X, Y: p.Y, Radius: radius,
		Stops: fadeStops(
			[4]float64{0, 0.5, 0.8, 1},
			[4]float64{alpha * 0.8, alpha * 0.5, alpha * 0.2, 0},
			[4]Color{col, col, col, col},
		),
		Blend: BlendAdd,
	})
}

const (
	// wispGlowFloor keeps the volumetric glow visible with no drag, so it
	// does not pop in and out as the pointer starts and stops.
	wispGlowFloor = 0.2
	wispReach     = 0.5 // fraction of canvas height
)

// wispBoost returns the volumetric light factor for a wisp from its distance
// to the flame source and the current drag magnitude.
func wispBoost(p *Particle, ctx *renderContext) float64 {
	reach := ctx.height * wispReach
	if reach <= 0 {
		return 0
	}
	dist := math.Hypot(p.X-ctx.sourceX, p.Y-ctx.sourceY)
	proximity := math.Max(0, 1-dist/reach)
	return proximity * (0.5 + ctx.drag*1.2)
}

func drawWisp(c Canvas, p *Particle, ctx *renderContext) {
	alpha := p.Life
	radius := p.Size * p.Life
	hue := coolHue(p)
	boost := wispBoost(p, ctx)
	lit := math.Min(1, 0.45+0.35*heat(p)+boost*0.6)

	body := [4]Color{
		hsla(hue, 0.9, lit, 1),
		hsla(hue, 0.9, lit*0.85, 1),
		hsla(hue, 0.8, lit*0.6, 1),
		hsla(hue, 0.65, lit*0.4, 1),
	}
	c.FillGlow(Glow{
		X: p.X, Y: p.Y, Radius: radius * 3.5,
		Stops: fadeStops(
			[4]float64{0, 0.3, 0.6, 1},
			[4]float64{alpha, alpha * 0.8, alpha * 0.5, 0},
			body,
		),
		Blend: BlendAdd,
	})

	glowAlpha := math.Max(wispGlowFloor, boost*0.6) * alpha
	glow := [4]Color{
		hsla(hue, 1, 0.75, 1),
		hsla(hue, 0.9, 0.65, 1),
		hsla(hue, 0.7, 0.55, 1),
		hsla(hue, 0.6, 0.5, 1),
	}
	c.FillGlow(Glow{
		X: p.X, Y: p.Y, Radius: radius * 6,
		Stops: fadeStops(
			[4]float64{0, 0.4, 0.7, 1},
			[4]float64{glowAlpha, glowAlpha * 0.5, glowAlpha * 0.2, 0},
			glow,
		),
		Blend: BlendAdd,
	})
}
