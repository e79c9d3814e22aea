package kindle

// syntheticPointerEvent represents a single injected pointer event in
// screen pixels, the same space real mouse input arrives in.
type syntheticPointerEvent struct {
	screenX, screenY float64
	pressed          bool
}

// InjectPress queues a pointer press at the given screen coordinates. The
// event is consumed on the next frame's processInput call.
func (s *Stage) InjectPress(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{screenX: x, screenY: y, pressed: true})
}

// InjectMove queues a pointer move with the button held down. Use this
// between InjectPress and InjectRelease to drag the flame source.
func (s *Stage) InjectMove(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{screenX: x, screenY: y, pressed: true})
}

// InjectRelease queues a pointer release at the given screen coordinates.
func (s *Stage) InjectRelease(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{screenX: x, screenY: y, pressed: false})
}

// InjectClick queues a press followed by a release at the same point.
// Consumes two frames.
func (s *Stage) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDrag queues a full drag: press at (fromX, fromY), frames-2 linearly
// interpolated moves, and release at (toX, toY). The sequence consumes
// frames frames; the minimum is 2.
func (s *Stage) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	s.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		s.InjectMove(lerp(fromX, toX, t), lerp(fromY, toY, t))
	}
	s.InjectRelease(toX, toY)
}

// processInjectedInput pops one event from the inject queue and feeds it
// through processPointer. It reports whether an event was consumed, in
// which case real pointer input is skipped this frame.
func (s *Stage) processInjectedInput(dt float64) bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	s.processPointer(evt.screenX, evt.screenY, evt.pressed, dt)
	return true
}
