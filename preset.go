package kindle

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Preset is a named bundle of parameter values in slider units. Presets are
// templates: applying one copies its values into a live Params.
type Preset struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Params      map[string]float64 `json:"params"`
}

// Apply writes the preset's values into p on top of its current values.
// Unknown keys are logged and skipped.
func (pr *Preset) Apply(p *Params) {
	keys := make([]string, 0, len(pr.Params))
	for k := range pr.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.SetSlider(k, pr.Params[k])
	}
}

// Target returns the parameter vector reached by applying the preset to base.
func (pr *Preset) Target(base Params) Params {
	pr.Apply(&base)
	return base
}

var builtinPresets = map[string]Preset{
	"campfire": {
		Name:        "Campfire",
		Description: "Warm, gentle campfire",
		Params: map[string]float64{
			"intensity": 60, "height": 45, "turbulence": 35, "speed": 80,
			"temperature": 40, "saturation": 85, "particleCount": 150, "particleSize": 3,
			"buoyancy": 55, "vorticity": 45, "diffusion": 50, "oxygenLevel": 40,
			"windStrength": 5, "windDirection": 50,
		},
	},
	"torch": {
		Name:        "Torch",
		Description: "Bright, dancing torch flame",
		Params: map[string]float64{
			"intensity": 75, "height": 70, "turbulence": 60, "speed": 120,
			"temperature": 55, "saturation": 90, "particleCount": 200, "particleSize": 2,
			"buoyancy": 70, "vorticity": 65, "diffusion": 35, "oxygenLevel": 50,
			"windStrength": 10, "windDirection": 50,
		},
	},
	"bonfire": {
		Name:        "Bonfire",
		Description: "Large, intense bonfire",
		Params: map[string]float64{
			"intensity": 85, "height": 80, "turbulence": 70, "speed": 100,
			"temperature": 60, "saturation": 80, "particleCount": 300, "particleSize": 4,
			"buoyancy": 75, "vorticity": 70, "diffusion": 30, "oxygenLevel": 35,
			"windStrength": 15, "windDirection": 50, "baseWidth": 75,
		},
	},
	"candle": {
		Name:        "Candle",
		Description: "Small, stable candle flame",
		Params: map[string]float64{
			"intensity": 50, "height": 35, "turbulence": 20, "speed": 60,
			"temperature": 45, "saturation": 80, "particleCount": 60, "particleSize": 2,
			"buoyancy": 60, "vorticity": 30, "diffusion": 45, "oxygenLevel": 55,
			"windStrength": 0, "windDirection": 50, "baseWidth": 20, "flameSourceSize": 10,
		},
	},
	"explosion": {
		Name:        "Explosion",
		Description: "Violent, explosive fire",
		Params: map[string]float64{
			"intensity": 95, "height": 90, "turbulence": 90, "speed": 180,
			"temperature": 75, "saturation": 85, "particleCount": 500, "particleSize": 5,
			"buoyancy": 85, "vorticity": 85, "diffusion": 20, "oxygenLevel": 30,
			"windStrength": 25, "windDirection": 50,
		},
	},
	"furnace": {
		Name:        "Furnace",
		Description: "Hot, industrial furnace fire",
		Params: map[string]float64{
			"intensity": 90, "height": 70, "turbulence": 50, "speed": 90,
			"temperature": 80, "saturation": 75, "particleCount": 250, "particleSize": 3,
			"buoyancy": 70, "vorticity": 55, "diffusion": 25, "oxygenLevel": 30,
			"windStrength": 0, "windDirection": 50, "coreTemperature": 85,
		},
	},
	"magical": {
		Name:        "Magical Fire",
		Description: "Stylized, magical flame effect",
		Params: map[string]float64{
			"intensity": 80, "height": 65, "turbulence": 75, "speed": 140,
			"temperature": 65, "saturation": 100, "particleCount": 350, "particleSize": 3,
			"buoyancy": 80, "vorticity": 80, "diffusion": 40, "oxygenLevel": 45,
			"windStrength": 20, "windDirection": 50,
		},
	},
	"embers": {
		Name:        "Dying Embers",
		Description: "Fading embers and hot coals",
		Params: map[string]float64{
			"intensity": 40, "height": 25, "turbulence": 25, "speed": 50,
			"temperature": 25, "saturation": 90, "particleCount": 120, "particleSize": 4,
			"buoyancy": 40, "vorticity": 35, "diffusion": 60, "oxygenLevel": 70,
			"windStrength": 5, "windDirection": 50, "particleLifetime": 2,
		},
	},
}

// LookupPreset returns a copy of the built-in preset with the given id.
func LookupPreset(id string) (Preset, bool) {
	pr, ok := builtinPresets[id]
	if !ok {
		return Preset{}, false
	}
	params := make(map[string]float64, len(pr.Params))
	for k, v := range pr.Params {
		params[k] = v
	}
	pr.Params = params
	return pr, true
}

// PresetIDs returns the ids of the built-in presets in sorted order.
func PresetIDs() []string {
	ids := make([]string, 0, len(builtinPresets))
	for id := range builtinPresets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// presetFile is the JSON layout for user preset collections.
type presetFile struct {
	Presets map[string]Preset `json:"presets"`
}

// LoadPresets parses a JSON preset collection keyed by id. Unknown
// parameter names are logged and dropped; the rest of the preset is kept.
func LoadPresets(jsonData []byte) (map[string]Preset, error) {
	var f presetFile
	if err := json.Unmarshal(jsonData, &f); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	if len(f.Presets) == 0 {
		return nil, fmt.Errorf("parse presets: no presets")
	}
	for id, pr := range f.Presets {
		for k := range pr.Params {
			if _, ok := lookupParam(k); !ok {
				logf("preset %s: unknown parameter %q", id, k)
				delete(pr.Params, k)
			}
		}
		if pr.Name == "" {
			pr.Name = id
			f.Presets[id] = pr
		}
	}
	return f.Presets, nil
}

// ExportPreset captures every parameter of p, in slider units, as a preset.
func ExportPreset(name string, p *Params) Preset {
	pr := Preset{
		Name:        name,
		Description: "User-created preset",
		Params:      make(map[string]float64, len(paramDefs)),
	}
	for i := range paramDefs {
		d := &paramDefs[i]
		pr.Params[d.name] = *d.field(p) * d.slider
	}
	return pr
}

// MarshalPresets encodes presets in the layout LoadPresets reads.
func MarshalPresets(presets map[string]Preset) ([]byte, error) {
	data, err := json.MarshalIndent(presetFile{Presets: presets}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode presets: %w", err)
	}
	return data, nil
}
