// Package main is the preview host for particle effect projects.
//
// Usage:
//
//	go run . [flags]
//
// Flags:
//
//	--config <path>    Editor config file (default: embedded data/editor.yaml)
//	--project <path>   Project file to open (default: last session, then the first project in project_dir)
//	--verbose          Enable verbose logging
//
// Controls:
//
//	R          - Recompile and respawn the document
//	S          - Save the document
//	E          - Export the compiled effects next to the project file
//	N          - Start a new document with one default effect
//	L          - Reload the document from disk
//	Tab        - Open the next project file in project_dir
//	Space      - Restart the particle preview
//	P          - Pause or resume the particle preview
//	F11        - Toggle fullscreen
//	Q/Escape   - Quit
package main

import (
	"errors"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/omagari/pkg/app"
	"github.com/decker502/omagari/pkg/config"
	"github.com/decker502/omagari/pkg/embedded"
)

var (
	configFlag  = flag.String("config", "", "Editor config file (default: embedded)")
	projectFlag = flag.String("project", "", "Project file to open")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging (default off)")
)

func main() {
	flag.Parse()
	embedded.Init(assetsFS, dataFS)

	cfg, err := config.LoadEditorConfig(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *verboseFlag {
		cfg.Verbose = true
	}

	host, err := app.NewApp(app.Config{Editor: cfg, Project: *projectFlag})
	if err != nil {
		log.Fatalf("Failed to start preview host: %v", err)
	}

	window := host.WindowConfig()
	ebiten.SetWindowSize(window.Width, window.Height)
	ebiten.SetWindowTitle(window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(host); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
