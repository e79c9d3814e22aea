package kindle

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Action is a keyboard-triggerable Stage operation.
type Action uint8

const (
	ActionNone Action = iota
	ActionReset
	ActionPresetCampfire
	ActionPresetTorch
	ActionPresetBonfire
	ActionPresetCandle
	ActionToggleStyle
	ActionScreenshot
	ActionTogglePause
	ActionToggleRecording
)

// shortcuts maps keys to actions. Digits pick the first four presets.
var shortcuts = map[ebiten.Key]Action{
	ebiten.KeyR:     ActionReset,
	ebiten.Key1:     ActionPresetCampfire,
	ebiten.Key2:     ActionPresetTorch,
	ebiten.Key3:     ActionPresetBonfire,
	ebiten.Key4:     ActionPresetCandle,
	ebiten.KeyS:     ActionToggleStyle,
	ebiten.KeyP:     ActionScreenshot,
	ebiten.KeySpace: ActionTogglePause,
	ebiten.KeyG:     ActionToggleRecording,
}

var actionNames = map[string]Action{
	"reset":      ActionReset,
	"campfire":   ActionPresetCampfire,
	"torch":      ActionPresetTorch,
	"bonfire":    ActionPresetBonfire,
	"candle":     ActionPresetCandle,
	"style":      ActionToggleStyle,
	"screenshot": ActionScreenshot,
	"pause":      ActionTogglePause,
	"record":     ActionToggleRecording,
}

// ParseAction looks up an action by its script name ("reset", "torch",
// "style", ...).
func ParseAction(name string) (Action, bool) {
	a, ok := actionNames[name]
	return a, ok
}

// Do performs a keyboard action.
func (s *Stage) Do(a Action) {
	switch a {
	case ActionReset:
		s.Reset()
	case ActionPresetCampfire:
		s.ApplyPreset("campfire")
	case ActionPresetTorch:
		s.ApplyPreset("torch")
	case ActionPresetBonfire:
		s.ApplyPreset("bonfire")
	case ActionPresetCandle:
		s.ApplyPreset("candle")
	case ActionToggleStyle:
		s.ToggleStyle()
	case ActionScreenshot:
		s.Screenshot("fire")
	case ActionTogglePause:
		s.TogglePause()
	case ActionToggleRecording:
		s.ToggleRecording()
	}
}

// pointerState tracks the single drag pointer (mouse or first touch).
type pointerState struct {
	down         bool
	lastX, lastY float64 // screen pixels
}

// processInput is called from Stage.Update to handle keyboard and pointer
// input. Injected events take priority over the real pointer for the frame
// they are consumed in.
func (s *Stage) processInput(dt float64) {
	if s.liveInput {
		for k, a := range shortcuts {
			if inpututil.IsKeyJustPressed(k) {
				s.Do(a)
			}
		}
	}
	if s.processInjectedInput(dt) {
		return
	}
	if s.liveInput {
		x, y, pressed := readPointer()
		s.processPointer(x, y, pressed, dt)
	}
}

// readPointer returns the mouse position and left button state, falling
// back to the first touch when the mouse is idle.
func readPointer() (x, y float64, pressed bool) {
	mx, my := ebiten.CursorPosition()
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return float64(mx), float64(my), true
	}
	if ids := ebiten.AppendTouchIDs(nil); len(ids) > 0 {
		tx, ty := ebiten.TouchPosition(ids[0])
		return float64(tx), float64(ty), true
	}
	return float64(mx), float64(my), false
}

// processPointer runs the drag state machine. Screen coordinates are
// converted to texture space before reaching the momentum controller.
func (s *Stage) processPointer(x, y float64, pressed bool, dt float64) {
	ps := &s.pointer
	w, h := float64(s.width), float64(s.height)
	nx, ny := ScreenToSource(x, y, w, h)

	switch {
	case pressed && !ps.down:
		ps.down = true
		s.momentum.Press(nx, ny)
	case pressed && ps.down:
		// A held, stationary pointer still feeds a sample so the drag
		// velocity decays toward zero.
		s.momentum.Move(nx, ny, dt)
	case !pressed && ps.down:
		ps.down = false
		s.momentum.Release()
	}
	ps.lastX, ps.lastY = x, y
}
