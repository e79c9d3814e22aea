package kindle

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ParamTween animates every parameter that differs between a live Params
// and a target. Call Update(dt) each frame; values are written straight
// into the live vector. Done is set once every field has arrived.
//
// There is no global animation manager; the Stage owns at most one tween.
type ParamTween struct {
	tweens []*gween.Tween
	fields []*float64
	ends   []float64
	Done   bool
}

// TweenParams creates a ParamTween moving p toward to over duration seconds
// with the easing function. Fields already at their target are left alone.
func TweenParams(p *Params, to Params, duration float32, fn ease.TweenFunc) *ParamTween {
	g := &ParamTween{}
	for i := range paramDefs {
		d := &paramDefs[i]
		from, end := *d.field(p), *d.field(&to)
		if from == end {
			continue
		}
		g.tweens = append(g.tweens, gween.New(float32(from), float32(end), duration, fn))
		g.fields = append(g.fields, d.field(p))
		g.ends = append(g.ends, end)
	}
	g.Done = len(g.tweens) == 0
	return g
}

// Len returns the number of fields being animated.
func (g *ParamTween) Len() int { return len(g.tweens) }

// Update advances all tweens by dt seconds and writes the values. Finished
// fields are snapped to their exact float64 target.
func (g *ParamTween) Update(dt float32) {
	if g.Done {
		return
	}
	allDone := true
	for i, tw := range g.tweens {
		val, finished := tw.Update(dt)
		if finished {
			*g.fields[i] = g.ends[i]
			continue
		}
		*g.fields[i] = float64(val)
		allDone = false
	}
	g.Done = allDone
}

// TweenValue creates a single-field ParamTween for an arbitrary float64,
// such as a UI slider position.
func TweenValue(field *float64, to float64, duration float32, fn ease.TweenFunc) *ParamTween {
	g := &ParamTween{Done: *field == to}
	if g.Done {
		return g
	}
	g.tweens = []*gween.Tween{gween.New(float32(*field), float32(to), duration, fn)}
	g.fields = []*float64{field}
	g.ends = []float64{to}
	return g
}
