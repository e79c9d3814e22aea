package kindle

import (
	"encoding/json"
	"fmt"
)

// scriptStep is one entry of a JSON test script. Which fields matter
// depends on Action.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Name   string  `json:"name,omitempty"`
	Value  float64 `json:"value,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// scriptAction runs one step against the stage.
type scriptAction func(r *TestRunner, s *Stage, st scriptStep)

// scriptActions is the script vocabulary. LoadTestScript rejects anything
// else.
var scriptActions = map[string]scriptAction{
	"screenshot": func(_ *TestRunner, s *Stage, st scriptStep) { s.Screenshot(st.Label) },
	"click":      func(_ *TestRunner, s *Stage, st scriptStep) { s.InjectClick(st.X, st.Y) },
	"drag": func(_ *TestRunner, s *Stage, st scriptStep) {
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	},
	"wait": func(r *TestRunner, _ *Stage, st scriptStep) {
		// The frame that runs the wait counts toward it.
		r.waitCount = max(st.Frames-1, 0)
	},
	"preset": func(_ *TestRunner, s *Stage, st scriptStep) { s.ApplyPreset(st.Name) },
	"set":    func(_ *TestRunner, s *Stage, st scriptStep) { s.params.Set(st.Name, st.Value) },
	"key": func(_ *TestRunner, s *Stage, st scriptStep) {
		a, ok := ParseAction(st.Name)
		if !ok {
			logf("test script: unknown key action %q", st.Name)
			return
		}
		s.Do(a)
	},
	"style": func(_ *TestRunner, s *Stage, st scriptStep) {
		style, ok := ParseFlameStyle(st.Name)
		if !ok {
			logf("test script: unknown style %q", st.Name)
			return
		}
		s.SetStyle(style)
	},
}

// TestRunner plays a JSON script against a Stage one step per frame:
// injected pointer input, parameter and preset changes, style switches and
// screenshots. Steps that inject input hold the script until the stage has
// consumed every queued event.
//
// A script looks like:
//
//	{"steps": [
//	  {"action": "preset", "name": "torch"},
//	  {"action": "wait", "frames": 60},
//	  {"action": "drag", "fromX": 400, "fromY": 380, "toX": 560, "toY": 300, "frames": 20},
//	  {"action": "screenshot", "label": "torch-dragged"}
//	]}
type TestRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses and validates a JSON test script.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script struct {
		Steps []scriptStep `json:"steps"`
	}
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if _, ok := scriptActions[st.Action]; !ok {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a script to the stage. It runs at the start of
// every Update, ahead of input processing.
func (s *Stage) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether every step has run and its input has drained.
func (r *TestRunner) Done() bool { return r.done }

func (r *TestRunner) idle(s *Stage) bool {
	return r.waitCount == 0 && len(s.injectQueue) == 0
}

// step runs at most one script step.
func (r *TestRunner) step(s *Stage) {
	switch {
	case r.done, len(s.injectQueue) > 0:
		return
	case r.waitCount > 0:
		r.waitCount--
		return
	case r.cursor >= len(r.steps):
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++
	scriptActions[st.Action](r, s, st)

	r.done = r.cursor >= len(r.steps) && r.idle(s)
}
