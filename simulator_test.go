package kindle

import (
	"math"
	"math/rand/v2"
	"testing"
)

const frame = 1 / ReferenceFrameRate

func TestSimulatorDefaults(t *testing.T) {
	s := NewSimulator(SimulatorConfig{})
	if s.MaxParticles() != DefaultMaxParticles {
		t.Errorf("MaxParticles = %d, want %d", s.MaxParticles(), DefaultMaxParticles)
	}
	assertNear(t, "ParticleSize", s.ParticleSize(), DefaultParticleSize)
	assertNear(t, "AverageLifetime", s.AverageLifetime(), DefaultAverageLifetime)
	if !s.Enabled() {
		t.Error("new simulator should be enabled")
	}
	x, y, size := s.FlameSource()
	assertNear(t, "sourceX", x, 0.5)
	assertNear(t, "sourceY", y, 0.2)
	assertNear(t, "sourceSize", size, 0.3)
	w, h := s.Bounds()
	assertNear(t, "width", w, defaultWidth)
	assertNear(t, "height", h, defaultHeight)
}

func TestSimulatorOneFrameAtReferenceRate(t *testing.T) {
	s := newTestSimulator(SimulatorConfig{MaxParticles: 60, Weights: KindWeights{Smoke: 1}, AverageLifetime: 3})
	s.Update(frame)
	if s.Len() != 1 {
		t.Fatalf("Len after one frame = %d, want 1", s.Len())
	}
	for range 59 {
		s.Update(frame)
	}
	if s.Len() != 60 {
		t.Fatalf("Len after 60 frames = %d, want 60", s.Len())
	}
}

func TestSimulatorEmitsBelowReferenceRate(t *testing.T) {
	s := newTestSimulator(SimulatorConfig{MaxParticles: 30, Weights: KindWeights{Smoke: 1}, AverageLifetime: 3})
	for range 60 {
		s.Update(frame)
	}
	if s.Len() < 29 || s.Len() > 30 {
		t.Errorf("Len = %d, want ~30 after one second at cap 30", s.Len())
	}
}

func TestSimulatorPopulationBound(t *testing.T) {
	tests := []int{0, 1, 10, 80, 500}
	for _, limit := range tests {
		s := newTestSimulator(SimulatorConfig{MaxParticles: limit, AverageLifetime: 3})
		if limit == 0 {
			s.SetMaxParticles(0)
		}
		for i := range 300 {
			s.Update(frame)
			if s.Len() > limit {
				t.Fatalf("cap %d: Len = %d after %d updates", limit, s.Len(), i+1)
			}
		}
	}
}

func TestSimulatorMaxParticlesClamped(t *testing.T) {
	s := newTestSimulator(SimulatorConfig{})
	s.SetMaxParticles(10_000)
	if s.MaxParticles() != MaxParticlesCeiling {
		t.Errorf("MaxParticles = %d, want %d", s.MaxParticles(), MaxParticlesCeiling)
	}
	s.SetMaxParticles(-5)
	if s.MaxParticles() != 0 {
		t.Errorf("MaxParticles = %d, want 0", s.MaxParticles())
	}
}

func TestSimulatorTruncatesOnShrink(t *testing.T) {
	s := newTestSimulator(SimulatorConfig{MaxParticles: 500, Weights: KindWeights{Smoke: 1}, AverageLifetime: 3})
	for range 120 {
		s.Update(frame)
	}
	if s.Len() < 400 {
		t.Fatalf("Len = %d, want a near-full population before shrinking", s.Len())
	}
	s.SetMaxParticles(10)
	if s.Len() != 10 {
		t.Fatalf("Len after SetMaxParticles(10) = %d, want 10", s.Len())
	}
	s.Update(frame)
	if s.Len() > 10 {
		t.Errorf("Len after update = %d, want <= 10", s.Len())
	}
}

func TestSimulatorMonotonicDecay(t *testing.T) {
	s := newTestSimulator(SimulatorConfig{MaxParticles: 200})
	prev := map[uint32]float64{}
	for range 240 {
		s.Update(frame)
		next := make(map[uint32]float64, s.Len())
		for _, p := range s.Particles() {
			if last, ok := prev[p.ID]; ok && p.Life >= last {
				t.Fatalf("particle %d life %v did not drop below %v", p.ID, p.Life, last)
			}
			if p.Life > 1 {
				t.Fatalf("particle %d life %v above 1", p.ID, p.Life)
			}
			next[p.ID] = p.Life
		}
		prev = next
	}
}

func TestSimulatorGuaranteedRemoval(t *testing.T) {
	s := newTestSimulator(SimulatorConfig{MaxParticles: 120, AverageLifetime: 0.5})
	deadline := map[uint32]int{}
	for i := range 300 {
		s.Update(frame)
		for _, p := range s.Particles() {
			if _, ok := deadline[p.ID]; !ok {
				// Spawned this update, which already counts as one step.
				deadline[p.ID] = i + int(math.Ceil(1/p.DecayRate))
			}
			if i >= deadline[p.ID] {
				t.Fatalf("particle %d still alive at update %d, deadline %d", p.ID, i, deadline[p.ID])
			}
		}
	}
}

func TestSimulatorDisableClears(t *testing.T) {
	s := newTestSimulator(SimulatorConfig{MaxParticles: 100})
	for range 30 {
		s.Update(frame)
	}
	if s.Len() == 0 {
		t.Fatal("expected particles before disabling")
	}
	s.SetEnabled(false)
	if s.Len() != 0 {
		t.Fatalf("Len after disable = %d, want 0", s.Len())
	}
	s.Update(frame)
	if s.Len() != 0 {
		t.Errorf("disabled simulator spawned %d particles", s.Len())
	}
	s.SetEnabled(true)
	s.Update(frame)
	if s.Len() == 0 {
		t.Error("re-enabled simulator should spawn again")
	}
}

func TestSimulatorLifetimeClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{10, MaxAverageLifetime},
		{0.01, MinAverageLifetime},
		{1.5, 1.5},
		{math.NaN(), MinAverageLifetime},
		{math.Inf(1), MaxAverageLifetime},
		{math.Inf(-1), MinAverageLifetime},
	}
	s := newTestSimulator(SimulatorConfig{})
	for _, tt := range tests {
		s.SetAverageLifetime(tt.in)
		assertNear(t, "AverageLifetime", s.AverageLifetime(), tt.want)
	}
}

func TestSimulatorLifetimeAffectsFutureSpawnsOnly(t *testing.T) {
	s := newTestSimulator(SimulatorConfig{MaxParticles: 60, Weights: KindWeights{Smoke: 1}})
	s.Update(frame)
	before := s.Particles()[0].DecayRate
	s.SetAverageLifetime(3)
	s.Update(frame)
	if got := s.Particles()[0].DecayRate; got != before {
		t.Errorf("existing DecayRate changed from %v to %v", before, got)
	}
	newest := s.Particles()[s.Len()-1]
	if newest.DecayRate >= before {
		t.Errorf("new DecayRate %v should be below %v with a longer lifetime", newest.DecayRate, before)
	}
}

func TestSimulatorSpawnContainment(t *testing.T) {
	s := newTestSimulator(SimulatorConfig{Weights: KindWeights{Spark: 0.3, Smoke: 0.3, Wisp: 0.2}})
	s.SetFlameSource(0.25, 0.4, 0.2)
	cx, _ := s.SourceCenter()
	half := SourceHalfWidth(0.2, 800)
	for range 1000 {
		p := s.spawn()
		if p.X < cx-half || p.X > cx+half {
			t.Fatalf("%s spawned at x=%v outside [%v, %v]", p.Kind, p.X, cx-half, cx+half)
		}
		if p.Life != 1 {
			t.Fatalf("spawn life = %v, want 1", p.Life)
		}
		if p.DecayRate <= 0 {
			t.Fatalf("spawn decay = %v, want > 0", p.DecayRate)
		}
	}
}

func TestSimulatorWispsSpawnNearCenter(t *testing.T) {
	s := newTestSimulator(SimulatorConfig{Weights: KindWeights{Wisp: 1}})
	cx, cy := s.SourceCenter()
	half := SourceHalfWidth(0.3, 800) * wispSpanRatio
	for range 200 {
		p := s.spawn()
		if p.Kind != KindWisp {
			t.Fatalf("kind = %s, want wisp", p.Kind)
		}
		if math.Abs(p.X-cx) > half+epsilon {
			t.Fatalf("wisp x offset %v beyond %v", p.X-cx, half)
		}
		if p.Y >= cy {
			t.Fatalf("wisp y %v not above source %v", p.Y, cy)
		}
	}
}

func TestSimTickSparkCooling(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	env := environment{}
	p := Particle{Kind: KindSpark, Life: 1, Temperature: 1500, Mass: 0.8, Size: 1}
	for range 480 {
		simTick(&p, frame, &env, rng)
	}
	assertNear(t, "temperature", p.Temperature, AmbientTemperature)

	for range 60 {
		simTick(&p, frame, &env, rng)
	}
	assertNear(t, "temperature floor", p.Temperature, AmbientTemperature)
}

func TestSimTickFrameRateIndependentDecay(t *testing.T) {
	env := environment{}
	a := Particle{Kind: KindSpark, Life: 1, DecayRate: 0.01, Temperature: 1500, Mass: 0.8}
	b := a
	rng := rand.New(rand.NewPCG(1, 2))
	for range 60 {
		simTick(&a, 1.0/60, &env, rng)
	}
	for range 30 {
		simTick(&b, 1.0/30, &env, rng)
	}
	assertWithin(t, "life at 60 vs 30 Hz", a.Life, b.Life, 1e-9)
	assertWithin(t, "life after one second", a.Life, 0.4, 1e-9)
}

func TestSimTickSmokeGrows(t *testing.T) {
	env := environment{}
	rng := rand.New(rand.NewPCG(3, 4))
	p := Particle{Kind: KindSmoke, Life: 1, Temperature: 1000, Mass: 1.4, Size: 4, Opacity: 0.35}
	simTick(&p, frame, &env, rng)
	assertWithin(t, "smoke size", p.Size, 4*smokeGrowth, 1e-12)
}

func TestSimulatorUpdateIgnoresNonPositiveDT(t *testing.T) {
	s := newTestSimulator(SimulatorConfig{})
	s.Update(0)
	s.Update(-1)
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0 after non-positive dt", s.Len())
	}
}

func TestSimulatorUpdateClampsLargeDT(t *testing.T) {
	s := newTestSimulator(SimulatorConfig{MaxParticles: 60, Weights: KindWeights{Smoke: 1}, AverageLifetime: 3})
	s.Update(10)
	want := int(60 * MaxDeltaTime)
	if s.Len() != want {
		t.Errorf("Len after a 10s stall = %d, want %d", s.Len(), want)
	}
}

func TestSimulatorSetters(t *testing.T) {
	s := newTestSimulator(SimulatorConfig{})

	s.SetParticleSize(100)
	assertNear(t, "size high", s.ParticleSize(), MaxParticleSize)
	s.SetParticleSize(0)
	assertNear(t, "size low", s.ParticleSize(), MinParticleSize)

	s.SetFlameSource(-1, 2, 0.5)
	x, y, size := s.FlameSource()
	assertNear(t, "source x", x, 0)
	assertNear(t, "source y", y, 1)
	assertNear(t, "source size", size, 0.5)

	s.SetWind(3, 1.25)
	assertNear(t, "wind strength", s.windStrength, 1)
	assertNear(t, "wind direction", s.windDirection, 0.25)
	s.SetWind(0.5, -0.25)
	assertNear(t, "wind direction wrapped", s.windDirection, 0.75)

	s.SetDragVelocity(3, 4)
	assertNear(t, "drag magnitude", s.DragMagnitude(), 5)
	s.SetDragVelocity(100, 0)
	assertNear(t, "drag clamp", s.DragMagnitude(), DragVelocityLimit)

	s.SetBounds(0, 100)
	w, h := s.Bounds()
	if w != 800 || h != 600 {
		t.Errorf("bounds = %vx%v, want unchanged 800x600", w, h)
	}
}

func TestSimulatorSettersNonFinite(t *testing.T) {
	s := newTestSimulator(SimulatorConfig{})
	nan, inf := math.NaN(), math.Inf(1)

	s.SetParticleSize(nan)
	assertNear(t, "size NaN", s.ParticleSize(), MinParticleSize)
	s.SetParticleSize(inf)
	assertNear(t, "size +Inf", s.ParticleSize(), MaxParticleSize)

	s.SetFlameSource(nan, -inf, inf)
	x, y, size := s.FlameSource()
	assertNear(t, "source x", x, 0)
	assertNear(t, "source y", y, 0)
	assertNear(t, "source size", size, 1)

	s.SetWind(0.5, 0.25)
	s.SetWind(nan, inf)
	assertNear(t, "wind strength", s.windStrength, 0)
	assertNear(t, "wind direction kept", s.windDirection, 0.25)
	s.SetWind(1, nan)
	assertNear(t, "wind direction kept after NaN", s.windDirection, 0.25)

	s.SetDragVelocity(nan, 3)
	assertNear(t, "drag magnitude", s.DragMagnitude(), 3)
	s.SetDragVelocity(-inf, 0)
	assertNear(t, "drag -Inf", s.DragMagnitude(), DragVelocityLimit)

	s.SetTurbulence(nan)
	assertNear(t, "turbulence", s.turbulence, 0)
	s.SetBuoyancy(inf)
	assertNear(t, "buoyancy", s.buoyancy, 1)

	s.SetBounds(nan, 100)
	s.SetBounds(inf, 100)
	w, h := s.Bounds()
	if w != 800 || h != 600 {
		t.Errorf("bounds = %vx%v, want unchanged 800x600", w, h)
	}
}

func TestSimulatorNonFiniteInputStillCulls(t *testing.T) {
	s := newTestSimulator(SimulatorConfig{MaxParticles: 120})
	s.SetAverageLifetime(math.NaN())
	s.SetParticleSize(math.NaN())
	s.SetFlameSource(math.NaN(), 0.2, 0.3)
	s.SetWind(math.NaN(), math.Inf(-1))

	for range 60 {
		s.Update(frame)
	}
	if s.Len() == 0 {
		t.Fatal("no particles spawned")
	}
	first := make(map[uint32]bool)
	for _, p := range s.Particles() {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Life) || math.IsNaN(p.DecayRate) || math.IsNaN(p.Size) {
			t.Fatalf("particle %d has non-finite state: %+v", p.ID, p)
		}
		first[p.ID] = true
	}

	for range 600 {
		s.Update(frame)
	}
	for _, p := range s.Particles() {
		if first[p.ID] {
			t.Fatalf("particle %d outlived its lifetime", p.ID)
		}
	}
}

func TestSimulatorDragDoesNotMoveParticles(t *testing.T) {
	a := newTestSimulator(SimulatorConfig{MaxParticles: 60, Seed: 9, Weights: KindWeights{Smoke: 1}})
	b := newTestSimulator(SimulatorConfig{MaxParticles: 60, Seed: 9, Weights: KindWeights{Smoke: 1}})
	for range 10 {
		a.Update(frame)
		b.Update(frame)
	}
	b.SetDragVelocity(5, 5)
	a.Update(frame)
	b.Update(frame)
	pa, pb := a.Particles(), b.Particles()
	if len(pa) != len(pb) {
		t.Fatalf("populations differ: %d vs %d", len(pa), len(pb))
	}
	for i := range pa {
		if pa[i].X != pb[i].X || pa[i].Y != pb[i].Y {
			t.Fatalf("particle %d moved by drag: %v,%v vs %v,%v", pa[i].ID, pa[i].X, pa[i].Y, pb[i].X, pb[i].Y)
		}
	}
}

func TestSimulatorCullsEscapedParticles(t *testing.T) {
	s := newTestSimulator(SimulatorConfig{})
	s.particles = append(s.particles,
		Particle{ID: 1, Life: 1, DecayRate: 0.001, Y: -CullMargin - 50, Mass: 1, Temperature: 300},
		Particle{ID: 2, Life: 1, DecayRate: 0.001, Y: 300, Mass: 1, Temperature: 300},
	)
	s.SetMaxParticles(2)
	s.Update(frame)
	for _, p := range s.Particles() {
		if p.ID == 1 {
			t.Fatal("particle above the cull margin was not removed")
		}
	}
}

func TestKindWeightsPick(t *testing.T) {
	w := DefaultKindWeights
	tests := []struct {
		r, drag float64
		want    Kind
	}{
		{0.0, 0, KindSpark},
		{0.14, 0, KindSpark},
		{0.16, 0, KindWisp},
		{0.26, 0, KindSmoke},
		{0.64, 0, KindSmoke},
		{0.66, 0, KindShimmer},
		{0.99, 0, KindShimmer},
		// Drag widens the wisp band from 0.10 to at most 0.45.
		{0.40, 5, KindWisp},
		{0.61, 5, KindSmoke},
	}
	for _, tt := range tests {
		if got := w.pick(tt.r, tt.drag); got != tt.want {
			t.Errorf("pick(%v, %v) = %s, want %s", tt.r, tt.drag, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	for k := range kindCount {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseKind("plasma"); ok {
		t.Error("ParseKind should reject unknown names")
	}
}

// turbulenceSpread returns the variance of VX across n sparks after one
// second of jitter-only ticks at the given frame rate.
func turbulenceSpread(rate float64, n int) float64 {
	rng := rand.New(rand.NewPCG(5, 6))
	env := environment{jitter: 1}
	dt := 1 / rate
	var sum, sumSq float64
	for range n {
		p := Particle{Kind: KindSpark, Mass: 1, Temperature: AmbientTemperature, Life: 1}
		for range int(rate) {
			simTick(&p, dt, &env, rng)
		}
		sum += p.VX
		sumSq += p.VX * p.VX
	}
	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}

func TestSimulatorTurbulenceFrameRateIndependent(t *testing.T) {
	slow := turbulenceSpread(30, 3000)
	fast := turbulenceSpread(120, 3000)
	if slow == 0 || fast == 0 {
		t.Fatal("turbulence produced no spread")
	}
	if ratio := slow / fast; ratio < 0.8 || ratio > 1.25 {
		t.Errorf("VX variance at 30 Hz / 120 Hz = %.3f, want about 1", ratio)
	}
}

func TestSimulatorEmitCarriesRemainder(t *testing.T) {
	// 90/60 = 1.5 per frame: one, then two, then one.
	s := newTestSimulator(SimulatorConfig{MaxParticles: 90, Weights: KindWeights{Smoke: 1}})
	want := []int{1, 3, 4, 6}
	for i, n := range want {
		s.Update(frame)
		if s.Len() != n {
			t.Fatalf("after frame %d: Len = %d, want %d", i+1, s.Len(), n)
		}
	}
}
