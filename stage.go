package kindle

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

// PresetTransition is how long ApplyPreset takes to blend into a preset.
const PresetTransition float32 = 0.6

// backgroundColor is the backdrop behind the flame, in export too.
var backgroundColor = Color{0.04, 0.03, 0.03, 1}

// StageConfig controls a Stage's initial state. Zero values select the
// defaults.
type StageConfig struct {
	// Width and Height are the initial canvas size in pixels. The canvas
	// follows the window after the first Layout.
	Width, Height int
	// Seed seeds the particle simulator. Zero picks a random seed.
	Seed uint64
	// Style is the initial flame style.
	Style FlameStyle
	// Params is the initial parameter vector. Nil selects DefaultParams.
	Params *Params
}

// Stage is the frame-loop orchestrator. It owns the parameter vector, the
// particle simulator, the flame field, and the layers both render into,
// and it implements ebiten.Game.
type Stage struct {
	params   Params
	presets  map[string]Preset
	sim      *Simulator
	renderer *Renderer
	momentum *Momentum
	tween    *ParamTween

	flame       *FlameField
	flameFailed bool
	style       FlameStyle

	flameLayer    *Layer
	particleLayer *Layer
	canvas        *EbitenCanvas

	width, height int
	time          float64
	resumeSpeed   float64
	dragWasActive bool

	// ScreenshotDir is where screenshots and recordings are written.
	ScreenshotDir string
	// ShowFPS draws the FPS and population overlay.
	ShowFPS bool

	debug bool
	fps   *fpsOverlay
	stats frameStats

	now       func() time.Time
	last      time.Time
	liveInput bool // poll the real keyboard and pointer; set by Run

	pointer         pointerState
	injectQueue     []syntheticPointerEvent
	testRunner      *TestRunner
	screenshotQueue []string
	recorder        *Recorder
	updateFunc      func() error
}

// NewStage creates a Stage. No GPU resources are allocated until the first
// Draw.
func NewStage(cfg StageConfig) *Stage {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = defaultWidth, defaultHeight
	}
	params := DefaultParams()
	if cfg.Params != nil {
		params = *cfg.Params
		params.Clamp()
	}
	s := &Stage{
		params:        params,
		presets:       make(map[string]Preset),
		renderer:      NewRenderer(),
		style:         cfg.Style,
		width:         cfg.Width,
		height:        cfg.Height,
		resumeSpeed:   1,
		ScreenshotDir: "screenshots",
		now:           time.Now,
		recorder:      NewRecorder(DefaultRecordFPS, DefaultRecordDuration),
	}
	s.sim = NewSimulator(SimulatorConfig{
		MaxParticles:    int(params.ParticleCount),
		ParticleSize:    params.ParticleSize,
		AverageLifetime: params.ParticleLifetime,
		Width:           float64(cfg.Width),
		Height:          float64(cfg.Height),
		Seed:            cfg.Seed,
	})
	s.params.ApplyTo(s.sim)
	s.momentum = NewMomentum(params.FlameSourceX, params.FlameSourceY)
	return s
}

// Params returns the live parameter vector. Changes take effect on the next
// Update.
func (s *Stage) Params() *Params { return &s.params }

// Simulator returns the particle simulator.
func (s *Stage) Simulator() *Simulator { return s.sim }

// Momentum returns the drag momentum controller.
func (s *Stage) Momentum() *Momentum { return s.momentum }

// Time returns the wrapped flame time in seconds.
func (s *Stage) Time() float64 { return s.time }

// Size returns the canvas size in pixels.
func (s *Stage) Size() (w, h int) { return s.width, s.height }

// Style returns the active flame style.
func (s *Stage) Style() FlameStyle { return s.style }

// SetStyle selects the flame style.
func (s *Stage) SetStyle(style FlameStyle) {
	if style >= flameStyleCount {
		logf("unknown flame style %d", style)
		return
	}
	s.style = style
	if s.flame != nil {
		s.flame.SetStyle(style)
	}
}

// ToggleStyle switches between the realistic and anime styles.
func (s *Stage) ToggleStyle() {
	s.SetStyle(s.style.Next())
}

// SetClock replaces the wall clock used to measure frame time.
func (s *Stage) SetClock(now func() time.Time) {
	s.now = now
	s.last = time.Time{}
}

// SetUpdateFunc registers a callback run at the end of every Update.
func (s *Stage) SetUpdateFunc(fn func() error) {
	s.updateFunc = fn
}

// AddPresets registers user presets. They shadow built-in presets with the
// same id.
func (s *Stage) AddPresets(presets map[string]Preset) {
	for id, pr := range presets {
		s.presets[id] = pr
	}
}

// lookupPresetIn finds id among user presets first, then the built-ins.
func lookupPresetIn(user map[string]Preset, id string) (Preset, bool) {
	if pr, ok := user[id]; ok {
		return pr, true
	}
	return LookupPreset(id)
}

// ApplyPreset clears the particles and blends the parameters into the named
// preset over PresetTransition. Unknown ids are logged and ignored.
func (s *Stage) ApplyPreset(id string) bool {
	pr, ok := lookupPresetIn(s.presets, id)
	if !ok {
		logf("unknown preset %q", id)
		return false
	}
	s.sim.Clear()
	target := pr.Target(s.params)
	s.tween = TweenParams(&s.params, target, PresetTransition, ease.InOutQuad)
	if s.debug {
		logf("preset: %s", pr.Name)
	}
	return true
}

// Reset returns every parameter to its default, clears the particles, and
// recenters the flame source.
func (s *Stage) Reset() {
	s.tween = nil
	s.params = DefaultParams()
	s.resumeSpeed = 1
	s.sim.Clear()
	s.momentum.Reset(s.params.FlameSourceX, s.params.FlameSourceY)
	s.params.ApplyTo(s.sim)
}

// Paused reports whether flame time is frozen.
func (s *Stage) Paused() bool { return s.params.Speed == 0 }

// TogglePause freezes or resumes flame time by zeroing the speed
// parameter. Particles keep running.
func (s *Stage) TogglePause() {
	if s.params.Speed > 0 {
		s.resumeSpeed = s.params.Speed
		s.params.Speed = 0
		return
	}
	s.params.Speed = s.resumeSpeed
}

// SetDebugMode enables per-frame timing and population logging.
func (s *Stage) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// frameDelta returns the wall-clock time since the previous Update. The
// first frame assumes the reference frame rate.
func (s *Stage) frameDelta() float64 {
	now := s.now()
	dt := 1 / ReferenceFrameRate
	if !s.last.IsZero() {
		dt = now.Sub(s.last).Seconds()
	}
	s.last = now
	return dt
}

// Update advances one frame: input, preset transitions, drag momentum,
// the particle simulation, and flame time.
func (s *Stage) Update() error {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	dt := s.frameDelta()
	s.step(dt)

	if s.debug {
		s.stats.updateTime = time.Since(t0)
	}
	if s.updateFunc != nil {
		return s.updateFunc()
	}
	return nil
}

// step is Update with an explicit frame time.
func (s *Stage) step(dt float64) {
	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.processInput(dt)

	if s.tween != nil {
		s.tween.Update(float32(dt))
		s.params.Clamp()
		if s.tween.Done {
			s.tween = nil
		}
	}

	s.updateMomentum(dt)
	s.params.ApplyTo(s.sim)
	s.sim.Update(dt)

	if dt > 0 {
		s.time = WrapTime(s.time + dt*s.params.Speed)
	}
	if s.fps != nil {
		s.fps.update(dt, s)
	}
}

// updateMomentum moves the flame source while it is dragged or coasting and
// publishes the drag velocity. An idle controller tracks the parameters so
// the next drag starts from wherever the source currently is.
func (s *Stage) updateMomentum(dt float64) {
	m := s.momentum
	if !m.Active() {
		if s.dragWasActive {
			s.params.DragVelocityX, s.params.DragVelocityY = 0, 0
			s.dragWasActive = false
		}
		m.Reset(s.params.FlameSourceX, s.params.FlameSourceY)
		return
	}
	x, y := m.Update(dt)
	vx, vy := m.Velocity()
	s.params.Set("flameSourceX", x)
	s.params.Set("flameSourceY", y)
	s.params.Set("dragVelocityX", vx)
	s.params.Set("dragVelocityY", vy)
	s.dragWasActive = true
}

// Layout follows the window size so the canvas, the layers, and the
// simulator bounds track resizes.
func (s *Stage) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		s.resize(outsideWidth, outsideHeight)
	}
	return s.width, s.height
}

func (s *Stage) resize(w, h int) {
	if w == s.width && h == s.height {
		return
	}
	s.width, s.height = w, h
	s.sim.SetBounds(float64(w), float64(h))
}

// ensureLayers allocates the layers and flame program on first use and
// reallocates the layers after a resize. A flame program that fails to
// compile is reported once; particles keep rendering without it.
func (s *Stage) ensureLayers() {
	if s.flameLayer == nil {
		s.flameLayer = NewLayer(s.width, s.height, BlendNormal)
		s.particleLayer = NewLayer(s.width, s.height, BlendNormal)
	} else {
		s.flameLayer.Resize(s.width, s.height)
		s.particleLayer.Resize(s.width, s.height)
	}

	if s.canvas == nil {
		c, err := NewEbitenCanvas(s.particleLayer.Image())
		if err != nil {
			logf("particle canvas: %v", err)
		} else {
			s.canvas = c
		}
	}
	if s.canvas != nil {
		s.canvas.SetTarget(s.particleLayer.Image())
	}

	if s.flame == nil && !s.flameFailed {
		f, err := NewFlameField()
		if err != nil {
			logf("flame field unavailable: %v", err)
			s.flameFailed = true
		} else {
			f.SetStyle(s.style)
			s.flame = f
		}
	}
}

// Draw renders both layers, composites them onto screen, services pending
// screenshots and recording, then draws overlays.
func (s *Stage) Draw(screen *ebiten.Image) {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	s.ensureLayers()

	if s.flame != nil {
		s.flame.Draw(s.flameLayer.Image(), s.time, &s.params)
	} else {
		s.flameLayer.Clear()
	}

	s.particleLayer.Clear()
	if s.canvas != nil {
		s.renderer.Render(s.canvas, s.sim)
	}

	screen.Fill(backgroundColor.toRGBA())
	s.flameLayer.DrawTo(screen)
	s.particleLayer.DrawTo(screen)

	s.flushScreenshots(screen)
	s.captureRecording(screen)

	if s.debug {
		s.drawDebugOverlay(screen)
	}
	if s.ShowFPS {
		if s.fps == nil {
			s.fps = newFPSOverlay()
		}
		s.fps.draw(screen)
	}

	if s.debug {
		s.stats.drawTime = time.Since(t0)
		s.stats.particles = s.sim.Len()
		s.stats.maxParticles = s.sim.MaxParticles()
		s.debugLog(s.stats)
	}
}

var _ ebiten.Game = (*Stage)(nil)
