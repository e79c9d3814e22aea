package kindle

import "math"

// Kind is the discrete particle category. It fixes a particle's physics and
// render rules and never changes after spawn.
type Kind uint8

const (
	KindSpark   Kind = iota // hot, fast, short-lived
	KindSmoke               // slow, lingering, cools visibly
	KindShimmer             // faint atmospheric haze
	KindWisp                // detached flame tip with volumetric glow
	kindCount
)

var kindNames = [kindCount]string{"spark", "smoke", "shimmer", "wisp"}

// String returns the lowercase kind name.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind looks up a kind by name.
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Particle holds per-particle simulation state. The Simulator owns every
// particle; callers only ever see read-only snapshots.
type Particle struct {
	ID     uint32  // unique per simulator, assigned at spawn
	X, Y   float64 // screen pixels, origin top-left
	VX, VY float64 // pixels per reference frame

	Life      float64 // 1 at spawn, removed at <= 0
	DecayRate float64 // life lost per reference frame
	Kind      Kind

	Size        float64 // base radius in pixels
	Temperature float64 // Kelvin-like
	Mass        float64
	Hue         float64 // base hue in degrees

	// Kind-specific fields.
	Opacity float64 // smoke, shimmer
	Phase   float64 // shimmer, wisp: oscillation phase in radians
	Sway    float64 // shimmer, wisp: oscillation amplitude
}

// Speed returns the velocity magnitude in pixels per reference frame.
func (p *Particle) Speed() float64 {
	return math.Hypot(p.VX, p.VY)
}

// kindTraits is one row of the spawn and physics table.
type kindTraits struct {
	vx, vy      Range // vx is centered on zero
	lifetime    Range // seconds at AverageLifetime 1.0
	sizeMult    Range
	temperature Range
	hue         Range
	mass        float64
	dragCoeff   float64
	coolingRate float64 // K per second
	jitter      float64 // turbulence scale, px/frame per reference frame
	opacity     float64
	sway        Range
}

var kindTraitTable = [kindCount]kindTraits{
	KindSpark: {
		vx:          Range{0, 2},
		vy:          Range{-7, -4},
		lifetime:    Range{0.2, 0.5},
		sizeMult:    Range{0.3, 0.6},
		temperature: Range{1400, 1600},
		hue:         Range{40, 60},
		mass:        0.8,
		dragCoeff:   0.6,
		coolingRate: 150,
		jitter:      0.3,
		opacity:     1,
	},
	KindSmoke: {
		vx:          Range{0, 0.5},
		vy:          Range{-2, -1},
		lifetime:    Range{1.0, 2.5},
		sizeMult:    Range{0.8, 2.0},
		temperature: Range{900, 1100},
		hue:         Range{20, 35},
		mass:        1.4,
		dragCoeff:   1.2,
		coolingRate: 90,
		jitter:      0.2,
		opacity:     0.35,
	},
	KindShimmer: {
		vx:          Range{0, 1},
		vy:          Range{-3, -1.5},
		lifetime:    Range{0.4, 0.8},
		sizeMult:    Range{0.3, 1.6},
		temperature: Range{1100, 1300},
		hue:         Range{25, 50},
		mass:        0.6,
		dragCoeff:   0.9,
		coolingRate: 200,
		jitter:      0.4,
		opacity:     0.12,
		sway:        Range{0.2, 0.5},
	},
	KindWisp: {
		vx:          Range{0, 1.25},
		vy:          Range{-5, -3},
		lifetime:    Range{0.4, 0.8},
		sizeMult:    Range{0.8, 2.0},
		temperature: Range{1300, 1500},
		hue:         Range{15, 50},
		mass:        0.5,
		dragCoeff:   0.8,
		coolingRate: 180,
		jitter:      0.3,
		opacity:     1,
		sway:        Range{0.3, 0.8},
	},
}

// KindWeights are the relative spawn odds. Wisp odds are further raised by
// the current drag magnitude; shimmer takes whatever the others leave.
type KindWeights struct {
	Spark, Smoke, Wisp float64
}

// DefaultKindWeights is the tuned spawn mix.
var DefaultKindWeights = KindWeights{Spark: 0.15, Smoke: 0.40, Wisp: 0.10}

const (
	wispDragBoost = 4.0
	maxWispWeight = 0.45
)

// pick maps a uniform draw r in [0,1) to a kind.
func (w KindWeights) pick(r, drag float64) Kind {
	spark := clamp01(w.Spark)
	wisp := math.Min(clamp01(w.Wisp)*(1+drag*wispDragBoost), maxWispWeight)
	if w.Wisp <= 0 {
		wisp = 0
	}
	smoke := clamp01(w.Smoke)
	switch {
	case r < spark:
		return KindSpark
	case r < spark+wisp:
		return KindWisp
	case r < spark+wisp+smoke:
		return KindSmoke
	default:
		return KindShimmer
	}
}
