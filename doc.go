// Package kindle is a real-time procedural fire effect for [Ebitengine].
//
// A fire is two layers composited over a dark backdrop: a flame body drawn
// by a Kage fragment shader ([FlameField]) and a CPU particle overlay of
// sparks, smoke, shimmer, and wisps ([Simulator] + [Renderer]). Both are
// driven by one parameter vector ([Params]) so sliders, presets, and drag
// gestures move the flame and the particles together.
//
// # Quick start
//
// [Run] opens a resizable window with keyboard shortcuts and drag support:
//
//	stage := kindle.NewStage(kindle.StageConfig{Width: 800, Height: 450})
//	stage.ApplyPreset("campfire")
//	kindle.Run(stage, kindle.RunConfig{Title: "Fire", ShowFPS: true})
//
// [Stage] implements [ebiten.Game], so it can also be passed to
// ebiten.RunGame directly or embedded in a larger game.
//
// # Coordinates
//
// The flame source lives in texture space: normalized 0-1 with the origin
// at the bottom-left. Particles live in screen pixels with the origin at
// the top-left. [SourceToScreen] and [ScreenToSource] are the only
// conversions between the two.
//
// # Time
//
// Particle physics is authored per reference frame ([ReferenceFrameRate])
// and scaled by the real frame time, so behavior is identical at 30, 60, or
// 144 Hz. Flame time advances by dt times the speed parameter and wraps at
// [TimeWrap] seconds without a visible seam.
//
// # Presets
//
// Built-in presets (campfire, torch, bonfire, candle, explosion, furnace,
// magical, embers) are stored in slider units. [Stage.ApplyPreset] blends
// into a preset with a [gween] tween; [LoadPresets] and [ExportPreset] read
// and write user presets as JSON.
//
// # Shortcuts
//
//	R        reset parameters
//	1-4      campfire, torch, bonfire, candle
//	S        toggle realistic / anime style
//	P        screenshot (PNG)
//	G        start / stop GIF recording
//	Space    pause flame time
//
// # Headless export
//
// [Headless] runs the same pipeline on the CPU with [SoftwareFlame] and the
// [Raster] canvas. It needs no GPU and produces PNG frames or GIFs.
//
// # Automation
//
// [Stage.InjectClick] and [Stage.InjectDrag] feed synthetic pointer input
// through the normal input path. [LoadTestScript] sequences presets,
// parameter changes, drags, and screenshots from JSON for visual checks.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package kindle
