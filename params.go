package kindle

import (
	"math"
	"sort"
)

// Params is the full parameter vector shared by the flame field and the
// particle simulator. Values are stored in their natural units (mostly 0-1);
// the UI's 0-100 slider units are converted by SetSlider.
type Params struct {
	Intensity       float64
	Height          float64
	Turbulence      float64
	Speed           float64 // time multiplier, 0-2
	Temperature     float64
	Saturation      float64
	WindStrength    float64
	WindDirection   float64 // fraction of a full turn
	Zoom            float64 // 0.25-3
	CameraX         float64 // -1..1
	CameraY         float64 // -1..1
	FlipX           float64 // 0 or 1
	FlipY           float64 // 0 or 1
	FlameSourceX    float64 // texture space, origin bottom-left
	FlameSourceY    float64
	FlameSourceSize float64 // fraction of canvas width
	Buoyancy        float64
	Vorticity       float64
	Diffusion       float64
	BaseWidth       float64
	FlameTaper      float64
	CoreTemperature float64
	OxygenLevel     float64
	DragVelocityX   float64 // -5..5
	DragVelocityY   float64 // -5..5

	// Particle-only parameters; not sent to the flame shader.
	ParticleCount    float64 // 0-500
	ParticleSize     float64 // px
	ParticleLifetime float64 // seconds
}

// paramDef describes one named parameter.
type paramDef struct {
	name    string
	uniform string // Kage uniform name; empty for particle-only params
	min     float64
	max     float64
	def     float64
	slider  float64 // slider units per natural unit
	flag    bool    // rounds to 0 or 1
	field   func(p *Params) *float64
}

var paramDefs = []paramDef{
	{name: "intensity", uniform: "Intensity", max: 1, def: 0.7, slider: 100, field: func(p *Params) *float64 { return &p.Intensity }},
	{name: "height", uniform: "Height", max: 1, def: 0.6, slider: 100, field: func(p *Params) *float64 { return &p.Height }},
	{name: "turbulence", uniform: "Turbulence", max: 1, def: 0.5, slider: 100, field: func(p *Params) *float64 { return &p.Turbulence }},
	{name: "speed", uniform: "Speed", max: 2, def: 1, slider: 100, field: func(p *Params) *float64 { return &p.Speed }},
	{name: "temperature", uniform: "Temperature", max: 1, def: 0.5, slider: 100, field: func(p *Params) *float64 { return &p.Temperature }},
	{name: "saturation", uniform: "Saturation", max: 1, def: 0.8, slider: 100, field: func(p *Params) *float64 { return &p.Saturation }},
	{name: "windStrength", uniform: "WindStrength", max: 1, slider: 100, field: func(p *Params) *float64 { return &p.WindStrength }},
	{name: "windDirection", uniform: "WindDirection", max: 1, slider: 100, field: func(p *Params) *float64 { return &p.WindDirection }},
	{name: "zoom", uniform: "Zoom", min: 0.25, max: 3, def: 1, slider: 100, field: func(p *Params) *float64 { return &p.Zoom }},
	{name: "cameraX", uniform: "CameraX", min: -1, max: 1, slider: 100, field: func(p *Params) *float64 { return &p.CameraX }},
	{name: "cameraY", uniform: "CameraY", min: -1, max: 1, slider: 100, field: func(p *Params) *float64 { return &p.CameraY }},
	{name: "flipX", uniform: "FlipX", max: 1, slider: 1, flag: true, field: func(p *Params) *float64 { return &p.FlipX }},
	{name: "flipY", uniform: "FlipY", max: 1, slider: 1, flag: true, field: func(p *Params) *float64 { return &p.FlipY }},
	{name: "flameSourceX", uniform: "FlameSourceX", max: 1, def: 0.5, slider: 100, field: func(p *Params) *float64 { return &p.FlameSourceX }},
	{name: "flameSourceY", uniform: "FlameSourceY", max: 1, def: 0.2, slider: 100, field: func(p *Params) *float64 { return &p.FlameSourceY }},
	{name: "flameSourceSize", uniform: "FlameSourceSize", max: 1, def: 0.3, slider: 100, field: func(p *Params) *float64 { return &p.FlameSourceSize }},
	{name: "buoyancy", uniform: "Buoyancy", max: 1, def: 0.5, slider: 100, field: func(p *Params) *float64 { return &p.Buoyancy }},
	{name: "vorticity", uniform: "Vorticity", max: 1, def: 0.5, slider: 100, field: func(p *Params) *float64 { return &p.Vorticity }},
	{name: "diffusion", uniform: "Diffusion", max: 1, def: 0.5, slider: 100, field: func(p *Params) *float64 { return &p.Diffusion }},
	{name: "baseWidth", uniform: "BaseWidth", max: 1, def: 0.5, slider: 100, field: func(p *Params) *float64 { return &p.BaseWidth }},
	{name: "flameTaper", uniform: "FlameTaper", max: 1, def: 0.5, slider: 100, field: func(p *Params) *float64 { return &p.FlameTaper }},
	{name: "coreTemperature", uniform: "CoreTemperature", max: 1, def: 0.5, slider: 100, field: func(p *Params) *float64 { return &p.CoreTemperature }},
	{name: "oxygenLevel", uniform: "OxygenLevel", max: 1, def: 0.5, slider: 100, field: func(p *Params) *float64 { return &p.OxygenLevel }},
	{name: "dragVelocityX", uniform: "DragVelocityX", min: -DragVelocityLimit, max: DragVelocityLimit, slider: 1, field: func(p *Params) *float64 { return &p.DragVelocityX }},
	{name: "dragVelocityY", uniform: "DragVelocityY", min: -DragVelocityLimit, max: DragVelocityLimit, slider: 1, field: func(p *Params) *float64 { return &p.DragVelocityY }},
	{name: "particleCount", max: MaxParticlesCeiling, def: DefaultMaxParticles, slider: 1, field: func(p *Params) *float64 { return &p.ParticleCount }},
	{name: "particleSize", min: MinParticleSize, max: MaxParticleSize, def: DefaultParticleSize, slider: 1, field: func(p *Params) *float64 { return &p.ParticleSize }},
	{name: "particleLifetime", min: MinAverageLifetime, max: MaxAverageLifetime, def: DefaultAverageLifetime, slider: 1, field: func(p *Params) *float64 { return &p.ParticleLifetime }},
}

// paramAliases maps legacy preset keys to current parameter names.
var paramAliases = map[string]string{
	"dissipation":     "diffusion",
	"fuelConsumption": "oxygenLevel",
}

var paramIndex = func() map[string]int {
	m := make(map[string]int, len(paramDefs)+len(paramAliases))
	for i := range paramDefs {
		m[paramDefs[i].name] = i
	}
	for alias, name := range paramAliases {
		m[alias] = m[name]
	}
	return m
}()

func lookupParam(name string) (*paramDef, bool) {
	i, ok := paramIndex[name]
	if !ok {
		return nil, false
	}
	return &paramDefs[i], true
}

// DefaultParams returns the parameter vector used at startup and on reset.
func DefaultParams() Params {
	var p Params
	for i := range paramDefs {
		*paramDefs[i].field(&p) = paramDefs[i].def
	}
	return p
}

// ParamNames returns every parameter name in sorted order.
func ParamNames() []string {
	names := make([]string, len(paramDefs))
	for i := range paramDefs {
		names[i] = paramDefs[i].name
	}
	sort.Strings(names)
	return names
}

func (d *paramDef) clamp(v float64) float64 {
	if math.IsNaN(v) {
		return d.def
	}
	v = clamp(v, d.min, d.max)
	if d.flag {
		v = math.Round(v)
	}
	return v
}

// Set assigns a parameter in natural units, clamping it to its domain.
// Unknown names are logged and ignored; Set then returns false.
func (p *Params) Set(name string, v float64) bool {
	d, ok := lookupParam(name)
	if !ok {
		logf("unknown parameter %q", name)
		return false
	}
	*d.field(p) = d.clamp(v)
	return true
}

// SetSlider assigns a parameter in UI slider units (0-100 for normalized
// parameters, raw values for particle parameters and flags).
func (p *Params) SetSlider(name string, v float64) bool {
	d, ok := lookupParam(name)
	if !ok {
		logf("unknown parameter %q", name)
		return false
	}
	*d.field(p) = d.clamp(v / d.slider)
	return true
}

// Get returns a parameter in natural units.
func (p *Params) Get(name string) (float64, bool) {
	d, ok := lookupParam(name)
	if !ok {
		return 0, false
	}
	return *d.field(p), true
}

// Slider returns a parameter in UI slider units.
func (p *Params) Slider(name string) (float64, bool) {
	d, ok := lookupParam(name)
	if !ok {
		return 0, false
	}
	return *d.field(p) * d.slider, true
}

// Clamp forces every field into its domain. Used after tweening or decoding.
func (p *Params) Clamp() {
	for i := range paramDefs {
		f := paramDefs[i].field(p)
		*f = paramDefs[i].clamp(*f)
	}
}

// Uniforms writes every shader-facing parameter into dst under its Kage
// uniform name. The map is reused across frames.
func (p *Params) Uniforms(dst map[string]any) {
	for i := range paramDefs {
		d := &paramDefs[i]
		if d.uniform == "" {
			continue
		}
		dst[d.uniform] = float32(*d.field(p))
	}
}

// ApplyTo pushes the particle-relevant subset into sim.
func (p *Params) ApplyTo(sim *Simulator) {
	sim.SetMaxParticles(int(math.Round(p.ParticleCount)))
	sim.SetParticleSize(p.ParticleSize)
	sim.SetAverageLifetime(p.ParticleLifetime)
	sim.SetWind(p.WindStrength, p.WindDirection)
	sim.SetFlameSource(p.FlameSourceX, p.FlameSourceY, p.FlameSourceSize)
	sim.SetDragVelocity(p.DragVelocityX, p.DragVelocityY)
	sim.SetTurbulence(p.Turbulence)
	sim.SetBuoyancy(p.Buoyancy)
}
