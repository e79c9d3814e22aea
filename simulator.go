package kindle

import (
	"math"
	"math/rand/v2"
)

// ReferenceFrameRate is the frame rate every velocity, acceleration, and
// decay constant is authored against. A simulation step of dt seconds
// advances positions and life by dt*ReferenceFrameRate reference frames.
const ReferenceFrameRate = 60.0

const (
	// MaxParticlesCeiling is the hard cap on any simulator's population.
	MaxParticlesCeiling = 500

	DefaultMaxParticles    = 80
	DefaultParticleSize    = 3.0
	DefaultAverageLifetime = 1.0

	MinAverageLifetime = 0.2
	MaxAverageLifetime = 3.0

	MinParticleSize = 0.5
	MaxParticleSize = 20.0

	// FlameTemperature is the nominal temperature of fresh flame gas.
	FlameTemperature = 1500.0
	// AmbientTemperature is the floor every particle cools toward.
	AmbientTemperature = 300.0

	// Gravity is the downward acceleration in px/frame per second.
	Gravity = 3.0
	// BuoyancyStrength is the upward acceleration in px/frame per second for
	// a unit-mass particle at FlameTemperature above ambient.
	BuoyancyStrength = 9.0
	// WindGain converts a unit wind vector to px/frame per second.
	WindGain = 3.0

	// CullMargin is how far past the top or bottom edge a particle may
	// travel before it is removed.
	CullMargin = 20.0

	// MaxDeltaTime caps a single Update so a stalled frame cannot teleport
	// the population.
	MaxDeltaTime = 0.25

	// DragVelocityLimit bounds each drag velocity component.
	DragVelocityLimit = 5.0

	defaultWidth  = 800
	defaultHeight = 450

	minSpawnLifetime = 0.05
	maxSpawnLifetime = 7.5
	lifeEpsilon      = 1e-9

	smokeGrowth     = 1.002
	wispThinning    = 0.995
	wispSpanRatio   = 0.3
	oscillationRate = 3.0 // rad/s
	swayGain        = 6.0 // px/frame per second at Sway 1
)

// SimulatorConfig controls a Simulator's initial state. Zero values select
// the defaults.
type SimulatorConfig struct {
	// MaxParticles is the population cap, clamped to MaxParticlesCeiling.
	MaxParticles int
	// ParticleSize is the base particle radius in pixels.
	ParticleSize float64
	// AverageLifetime is the mean lifetime in seconds, clamped to
	// [MinAverageLifetime, MaxAverageLifetime].
	AverageLifetime float64
	// Width and Height are the canvas size in pixels.
	Width, Height float64
	// Weights are the spawn odds per kind. The zero value selects
	// DefaultKindWeights.
	Weights KindWeights
	// Seed seeds the simulator's random source. Zero picks a random seed.
	Seed uint64
}

// Simulator owns a bounded particle population. It spawns particles from the
// flame source, advances per-kind physics, and culls dead or escaped
// particles. All methods must be called from the frame loop goroutine.
type Simulator struct {
	particles []Particle
	nextID    uint32
	emitAccum float64
	rng       *rand.Rand

	maxParticles    int
	particleSize    float64
	averageLifetime float64
	weights         KindWeights
	width, height   float64

	windStrength, windDirection   float64
	sourceX, sourceY, sourceSize  float64
	dragVX, dragVY, dragMagnitude float64
	turbulence, buoyancy          float64
	enabled                       bool
}

// NewSimulator creates an enabled Simulator with a preallocated pool.
func NewSimulator(cfg SimulatorConfig) *Simulator {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	s := &Simulator{
		particles:  make([]Particle, 0, MaxParticlesCeiling),
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		weights:    cfg.Weights,
		sourceX:    0.5,
		sourceY:    0.2,
		sourceSize: 0.3,
		turbulence: 0.5,
		buoyancy:   0.5,
		enabled:    true,
	}
	if s.weights == (KindWeights{}) {
		s.weights = DefaultKindWeights
	}

	if cfg.MaxParticles <= 0 {
		cfg.MaxParticles = DefaultMaxParticles
	}
	s.maxParticles = min(cfg.MaxParticles, MaxParticlesCeiling)

	if cfg.ParticleSize <= 0 {
		cfg.ParticleSize = DefaultParticleSize
	}
	s.SetParticleSize(cfg.ParticleSize)

	if cfg.AverageLifetime <= 0 {
		cfg.AverageLifetime = DefaultAverageLifetime
	}
	s.SetAverageLifetime(cfg.AverageLifetime)

	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = defaultWidth, defaultHeight
	}
	s.SetBounds(cfg.Width, cfg.Height)
	return s
}

// --- setters ---

// SetMaxParticles sets the population cap, clamped to [0, MaxParticlesCeiling].
// Shrinking the cap truncates the population immediately.
func (s *Simulator) SetMaxParticles(n int) {
	s.maxParticles = int(clamp(float64(n), 0, MaxParticlesCeiling))
	if len(s.particles) > s.maxParticles {
		s.particles = s.particles[:s.maxParticles]
	}
}

// SetParticleSize sets the base radius in pixels for future spawns.
func (s *Simulator) SetParticleSize(px float64) {
	s.particleSize = clamp(px, MinParticleSize, MaxParticleSize)
}

// SetAverageLifetime sets the mean lifetime in seconds for future spawns.
// Existing particles keep the decay rate they were born with.
func (s *Simulator) SetAverageLifetime(seconds float64) {
	s.averageLifetime = clamp(seconds, MinAverageLifetime, MaxAverageLifetime)
}

// SetWind sets wind strength in [0, 1] and direction as a fraction of a full
// turn (0 = +X, 0.25 = down the screen). Direction wraps; a non-finite
// direction keeps the current one.
func (s *Simulator) SetWind(strength, direction float64) {
	s.windStrength = clamp01(strength)
	if math.IsNaN(direction) || math.IsInf(direction, 0) {
		return
	}
	s.windDirection = direction - math.Floor(direction)
}

// SetFlameSource sets the emission region in texture space: x and y are
// normalized with the origin at the bottom-left, size is the span as a
// fraction of canvas width.
func (s *Simulator) SetFlameSource(x, y, size float64) {
	s.sourceX = clamp01(x)
	s.sourceY = clamp01(y)
	s.sourceSize = clamp01(size)
}

// SetDragVelocity records the pointer drag velocity. Only its magnitude is
// used, to bias wisp spawning and wisp glow. Existing particles are not moved.
// NaN components count as zero.
func (s *Simulator) SetDragVelocity(vx, vy float64) {
	if math.IsNaN(vx) {
		vx = 0
	}
	if math.IsNaN(vy) {
		vy = 0
	}
	s.dragVX = clamp(vx, -DragVelocityLimit, DragVelocityLimit)
	s.dragVY = clamp(vy, -DragVelocityLimit, DragVelocityLimit)
	s.dragMagnitude = math.Hypot(s.dragVX, s.dragVY)
}

// SetTurbulence scales the random jitter; 0.5 is neutral.
func (s *Simulator) SetTurbulence(t float64) {
	s.turbulence = clamp01(t)
}

// SetBuoyancy scales the thermal lift; 0.5 is neutral.
func (s *Simulator) SetBuoyancy(b float64) {
	s.buoyancy = clamp01(b)
}

// SetBounds sets the canvas size in pixels. Non-positive or non-finite sizes
// are ignored.
func (s *Simulator) SetBounds(width, height float64) {
	if !(width > 0 && height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return
	}
	s.width, s.height = width, height
}

// SetEnabled turns the simulator on or off. Disabling clears the population
// immediately.
func (s *Simulator) SetEnabled(enabled bool) {
	s.enabled = enabled
	if !enabled {
		s.Clear()
	}
}

// Clear removes every particle.
func (s *Simulator) Clear() {
	s.particles = s.particles[:0]
	s.emitAccum = 0
}

// --- getters ---

// Particles returns the live population. The slice is owned by the
// simulator: it must not be mutated and is only valid until the next Update.
func (s *Simulator) Particles() []Particle {
	return s.particles
}

// Snapshot copies the live population into dst, reusing its storage, and
// returns the result.
func (s *Simulator) Snapshot(dst []Particle) []Particle {
	return append(dst[:0], s.particles...)
}

// Len returns the number of live particles.
func (s *Simulator) Len() int { return len(s.particles) }

// Enabled reports whether the simulator is running.
func (s *Simulator) Enabled() bool { return s.enabled }

// MaxParticles returns the current population cap.
func (s *Simulator) MaxParticles() int { return s.maxParticles }

// ParticleSize returns the base particle radius in pixels.
func (s *Simulator) ParticleSize() float64 { return s.particleSize }

// AverageLifetime returns the effective mean lifetime in seconds.
func (s *Simulator) AverageLifetime() float64 { return s.averageLifetime }

// FlameSource returns the emission region in texture space.
func (s *Simulator) FlameSource() (x, y, size float64) {
	return s.sourceX, s.sourceY, s.sourceSize
}

// DragMagnitude returns the magnitude of the last drag velocity.
func (s *Simulator) DragMagnitude() float64 { return s.dragMagnitude }

// Bounds returns the canvas size in pixels.
func (s *Simulator) Bounds() (width, height float64) { return s.width, s.height }

// SourceCenter returns the flame source center in screen pixels.
func (s *Simulator) SourceCenter() (x, y float64) {
	return SourceToScreen(s.sourceX, s.sourceY, s.width, s.height)
}

// --- simulation ---

// Update advances the population by dt seconds: new particles are emitted
// first, then every particle (including the new ones) takes one physics
// step and dead or escaped particles are removed.
func (s *Simulator) Update(dt float64) {
	if !s.enabled || dt <= 0 {
		return
	}
	dt = math.Min(dt, MaxDeltaTime)
	step := dt * ReferenceFrameRate

	s.emit(step)

	env := s.environment()
	i := 0
	for i < len(s.particles) {
		p := &s.particles[i]
		simTick(p, dt, &env, s.rng)
		if s.expired(p) {
			last := len(s.particles) - 1
			s.particles[i] = s.particles[last]
			s.particles = s.particles[:last]
			continue
		}
		i++
	}
}

// emit spawns maxParticles/ReferenceFrameRate particles per reference
// frame on average. The fractional remainder carries over between updates,
// so a cap of 80 emits 4 particles every 3 frames rather than floor(80/60)
// = 1 per frame, and caps below 60 still emit. Anything past the cap is
// dropped.
func (s *Simulator) emit(step float64) {
	if s.maxParticles == 0 {
		s.emitAccum = 0
		return
	}
	s.emitAccum += float64(s.maxParticles) / ReferenceFrameRate * step
	n := int(s.emitAccum)
	s.emitAccum -= float64(n)
	n = min(n, s.maxParticles-len(s.particles))
	for range n {
		s.particles = append(s.particles, s.spawn())
	}
}

// spawn creates one particle at the flame source.
func (s *Simulator) spawn() Particle {
	kind := s.weights.pick(s.rng.Float64(), s.dragMagnitude)
	tr := &kindTraitTable[kind]

	cx, cy := s.SourceCenter()
	half := SourceHalfWidth(s.sourceSize, s.width)
	if kind == KindWisp {
		// Wisps break off near the flame tip.
		half *= wispSpanRatio
		cy -= s.height * Range{0.6, 0.9}.Random(s.rng) * 0.4
	}

	lifetime := tr.lifetime.Random(s.rng) * s.averageLifetime / DefaultAverageLifetime
	lifetime = clamp(lifetime, minSpawnLifetime, maxSpawnLifetime)

	s.nextID++
	return Particle{
		ID:          s.nextID,
		X:           cx + (s.rng.Float64()*2-1)*half,
		Y:           cy,
		VX:          tr.vx.centered(s.rng),
		VY:          tr.vy.Random(s.rng),
		Life:        1,
		DecayRate:   1 / (lifetime * ReferenceFrameRate),
		Kind:        kind,
		Size:        s.particleSize * tr.sizeMult.Random(s.rng),
		Temperature: tr.temperature.Random(s.rng),
		Mass:        tr.mass,
		Hue:         tr.hue.Random(s.rng),
		Opacity:     tr.opacity,
		Phase:       s.rng.Float64() * 2 * math.Pi,
		Sway:        tr.sway.Random(s.rng),
	}
}

// expired reports whether p must be culled.
func (s *Simulator) expired(p *Particle) bool {
	return p.Life <= lifeEpsilon || p.Y < -CullMargin || p.Y > s.height+CullMargin
}

// environment holds the per-step external forces shared by every particle.
type environment struct {
	windX, windY float64 // px/frame per second
	jitter       float64 // turbulence multiplier
	lift         float64 // buoyancy multiplier
}

func (s *Simulator) environment() environment {
	angle := s.windDirection * 2 * math.Pi
	return environment{
		windX:  math.Cos(angle) * s.windStrength * WindGain,
		windY:  math.Sin(angle) * s.windStrength * WindGain,
		jitter: 0.5 + s.turbulence,
		lift:   0.5 + s.buoyancy,
	}
}

// simTick advances one particle by dt seconds. Accelerations are applied to
// velocity scaled by dt; velocities and decay are applied scaled by
// dt*ReferenceFrameRate. The order of the stages matters: each reads the
// velocity the previous one produced.
func simTick(p *Particle, dt float64, env *environment, rng *rand.Rand) {
	tr := &kindTraitTable[p.Kind]
	step := dt * ReferenceFrameRate

	// Cool.
	p.Temperature = math.Max(AmbientTemperature, p.Temperature-tr.coolingRate*dt)

	// Buoyancy lifts hot gas; heavier kinds respond less.
	excess := (p.Temperature - AmbientTemperature) / FlameTemperature
	p.VY -= BuoyancyStrength * env.lift * excess / p.Mass * dt

	// Gravity.
	p.VY += Gravity * dt

	// Quadratic-ish air drag.
	f := clamp01(1 - tr.dragCoeff*p.Speed()*dt)
	p.VX *= f
	p.VY *= f

	// Turbulence, zero mean. Jitter is a random walk, so its amplitude grows
	// with the square root of the step to keep the spread per second fixed.
	j := tr.jitter * env.jitter * math.Sqrt(step)
	p.VX += (rng.Float64() - 0.5) * j
	p.VY += (rng.Float64() - 0.5) * j * 0.5

	// Wind.
	p.VX += env.windX / p.Mass * dt
	p.VY += env.windY / p.Mass * dt

	switch p.Kind {
	case KindSmoke:
		p.Size *= math.Pow(smokeGrowth, step)
		ratio := clamp01((p.Temperature - AmbientTemperature) / (FlameTemperature - AmbientTemperature))
		p.Opacity = tr.opacity * (0.3 + 0.7*ratio)
	case KindShimmer:
		p.Opacity = tr.opacity
		p.Phase += dt * oscillationRate
		p.VX += math.Sin(p.Phase) * p.Sway * swayGain * dt
	case KindWisp:
		p.Phase += dt * oscillationRate
		p.VX += math.Sin(p.Phase) * p.Sway * swayGain * dt
		p.Size *= math.Pow(wispThinning, step)
	}

	p.X += p.VX * step
	p.Y += p.VY * step

	p.Life -= p.DecayRate * step
}
