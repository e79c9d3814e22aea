// fire opens the procedural fire effect in a resizable window. Drag to move
// the flame source; number keys switch presets. With -headless it renders
// on the CPU instead and writes a GIF (or a PNG with -frames 1).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/phanxgames/kindle"
)

const (
	windowTitle = "Kindle - Fire"
	screenW     = 800
	screenH     = 450
)

var (
	presetFlag   = flag.String("preset", "campfire", "initial preset: "+strings.Join(kindle.PresetIDs(), ", "))
	styleFlag    = flag.String("style", "realistic", "flame style: realistic or anime")
	seedFlag     = flag.Uint64("seed", 0, "random seed; 0 picks one")
	debugFlag    = flag.Bool("debug", false, "log per-frame timing and draw the parameter overlay")
	fpsFlag      = flag.Bool("fps", true, "show the FPS and particle overlay")
	presetsFlag  = flag.String("presets", "", "JSON file with extra presets")
	scriptFlag   = flag.String("script", "", "JSON test script to run")
	shotsFlag    = flag.String("screenshots", "screenshots", "directory for screenshots and recordings")
	headlessFlag = flag.Bool("headless", false, "render on the CPU without a window and exit")
	framesFlag   = flag.Int("frames", 90, "headless: frames to capture (1 writes a PNG)")
	warmupFlag   = flag.Int("warmup", 60, "headless: frames to simulate before capturing")
	outFlag      = flag.String("out", "", "headless: output file (default fire.gif, or fire.png with -frames 1)")
	widthFlag    = flag.Int("width", screenW, "canvas width in pixels")
	heightFlag   = flag.Int("height", screenH, "canvas height in pixels")
)

func main() {
	flag.Parse()

	style, ok := kindle.ParseFlameStyle(*styleFlag)
	if !ok {
		log.Fatalf("unknown style %q", *styleFlag)
	}

	presets, err := loadPresets(*presetsFlag)
	if err != nil {
		log.Fatal(err)
	}

	if *headlessFlag {
		if err := runHeadless(style, presets); err != nil {
			log.Fatal(err)
		}
		return
	}

	stage := kindle.NewStage(kindle.StageConfig{
		Width:  *widthFlag,
		Height: *heightFlag,
		Seed:   *seedFlag,
		Style:  style,
	})

	stage.AddPresets(presets)

	if *scriptFlag != "" {
		data, err := os.ReadFile(*scriptFlag)
		if err != nil {
			log.Fatalf("read script: %v", err)
		}
		runner, err := kindle.LoadTestScript(data)
		if err != nil {
			log.Fatalf("%s: %v", *scriptFlag, err)
		}
		stage.SetTestRunner(runner)
	}

	if *presetFlag != "" {
		stage.ApplyPreset(*presetFlag)
	}

	err = kindle.Run(stage, kindle.RunConfig{
		Title:         windowTitle,
		Width:         *widthFlag,
		Height:        *heightFlag,
		ShowFPS:       *fpsFlag,
		ScreenshotDir: *shotsFlag,
		Debug:         *debugFlag,
	})
	if err != nil {
		log.Fatal(err)
	}
}

// loadPresets reads a user preset file; an empty path yields none.
func loadPresets(path string) (map[string]kindle.Preset, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	presets, err := kindle.LoadPresets(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return presets, nil
}

// outputFile returns the headless output path, defaulting the name to match
// the format: a PNG for a single frame, a GIF otherwise.
func outputFile(out string, frames int) string {
	if out != "" {
		return out
	}
	if frames == 1 {
		return "fire.png"
	}
	return "fire.gif"
}

func runHeadless(style kindle.FlameStyle, presets map[string]kindle.Preset) error {
	h := kindle.NewHeadless(kindle.HeadlessConfig{
		Width:  *widthFlag,
		Height: *heightFlag,
		Seed:   *seedFlag,
		Style:  style,
	})
	h.AddPresets(presets)
	out := outputFile(*outFlag, *framesFlag)
	if *presetFlag != "" && !h.ApplyPreset(*presetFlag) {
		return fmt.Errorf("unknown preset %q", *presetFlag)
	}
	h.Warmup(*warmupFlag)

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	if *framesFlag == 1 {
		if err := h.WriteFramePNG(out); err != nil {
			return err
		}
		log.Printf("wrote %s", out)
		return nil
	}

	g, err := h.RecordGIF(*framesFlag, kindle.DefaultRecordFPS)
	if err != nil {
		return err
	}
	if err := kindle.WriteGIF(out, g); err != nil {
		return err
	}
	log.Printf("wrote %d frames to %s", len(g.Image), out)
	return nil
}
