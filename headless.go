package kindle

import (
	"fmt"
	"image"
	"image/gif"

	"github.com/tanema/gween/ease"
)

// HeadlessConfig controls a Headless pipeline. Zero values select the
// defaults.
type HeadlessConfig struct {
	Width, Height int
	// Seed seeds both the simulator and the flame noise. Zero picks a
	// random simulator seed and a fixed noise seed.
	Seed   uint64
	Style  FlameStyle
	Params *Params
}

// Headless runs the full fire pipeline on the CPU: the particle simulator,
// the software flame, and the software rasterizer. It needs no window or
// GPU, so it serves batch export and end-to-end tests. Frames are stepped
// with an explicit dt instead of the wall clock.
type Headless struct {
	params   Params
	presets  map[string]Preset
	sim      *Simulator
	renderer *Renderer
	flame    *SoftwareFlame
	tween    *ParamTween

	frame     *Raster
	flameImg  *image.RGBA
	particles *Raster

	time float64
}

// NewHeadless creates a CPU pipeline.
func NewHeadless(cfg HeadlessConfig) *Headless {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = defaultWidth, defaultHeight
	}
	params := DefaultParams()
	if cfg.Params != nil {
		params = *cfg.Params
		params.Clamp()
	}
	h := &Headless{
		params:    params,
		presets:   make(map[string]Preset),
		renderer:  NewRenderer(),
		flame:     NewSoftwareFlame(int64(cfg.Seed)),
		frame:     NewRaster(cfg.Width, cfg.Height),
		flameImg:  image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
		particles: NewRaster(cfg.Width, cfg.Height),
	}
	h.flame.SetStyle(cfg.Style)
	h.sim = NewSimulator(SimulatorConfig{
		MaxParticles:    int(params.ParticleCount),
		ParticleSize:    params.ParticleSize,
		AverageLifetime: params.ParticleLifetime,
		Width:           float64(cfg.Width),
		Height:          float64(cfg.Height),
		Seed:            cfg.Seed,
	})
	h.params.ApplyTo(h.sim)
	return h
}

// Params returns the live parameter vector.
func (h *Headless) Params() *Params { return &h.params }

// Simulator returns the particle simulator.
func (h *Headless) Simulator() *Simulator { return h.sim }

// Time returns the wrapped flame time in seconds.
func (h *Headless) Time() float64 { return h.time }

// SetStyle selects the flame style.
func (h *Headless) SetStyle(style FlameStyle) { h.flame.SetStyle(style) }

// AddPresets registers user presets. They shadow built-in presets with the
// same id.
func (h *Headless) AddPresets(presets map[string]Preset) {
	for id, pr := range presets {
		h.presets[id] = pr
	}
}

// ApplyPreset clears the particles and tweens to the preset, exactly as the
// Stage does. Unknown ids are logged and ignored.
func (h *Headless) ApplyPreset(id string) bool {
	pr, ok := lookupPresetIn(h.presets, id)
	if !ok {
		logf("unknown preset %q", id)
		return false
	}
	h.sim.Clear()
	h.tween = TweenParams(&h.params, pr.Target(h.params), PresetTransition, ease.InOutQuad)
	return true
}

// Step advances the pipeline by dt seconds.
func (h *Headless) Step(dt float64) {
	if h.tween != nil {
		h.tween.Update(float32(dt))
		h.params.Clamp()
		if h.tween.Done {
			h.tween = nil
		}
	}
	h.params.ApplyTo(h.sim)
	h.sim.Update(dt)
	if dt > 0 {
		h.time = WrapTime(h.time + dt*h.params.Speed)
	}
}

// Frame renders the current state and returns the composited image. The
// image is reused by the next call.
func (h *Headless) Frame() *image.RGBA {
	h.flame.Render(h.flameImg, h.time, &h.params)

	h.particles.Clear()
	h.renderer.Render(h.particles, h.sim)

	h.frame.Fill(backgroundColor)
	h.frame.DrawOver(h.flameImg)
	h.frame.DrawOver(h.particles.Image())
	return h.frame.Image()
}

// Warmup steps n frames at the reference rate without rendering, so the
// particle population can reach steady state before capture.
func (h *Headless) Warmup(n int) {
	for range n {
		h.Step(1 / ReferenceFrameRate)
	}
}

// RecordGIF steps and renders frames at the reference rate, capturing them
// at fps, and returns the animation.
func (h *Headless) RecordGIF(frames, fps int) (*gif.GIF, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("record gif: frame count %d", frames)
	}
	rec := NewRecorder(fps, 0)
	rec.maxFrames = frames
	rec.Start()
	for !rec.Full() {
		h.Step(1 / ReferenceFrameRate)
		if rec.Tick() {
			rec.Add(h.Frame())
		}
	}
	return rec.Stop(), nil
}

// WriteFramePNG renders the current state to a PNG file.
func (h *Headless) WriteFramePNG(path string) error {
	return WritePNG(path, toNRGBA(h.Frame()))
}
