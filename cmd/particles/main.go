// Package main runs the particle preview simulation without a window and
// prints how many particles each effect of a project keeps alive over time.
//
// Usage:
//
//	go run ./cmd/particles [flags] <file.omagari.yaml>
//
// Flags:
//
//	--seconds <n>       Simulated duration (default 3)
//	--fps <n>           Simulation steps per second (default 60)
//	--every <n>         Report interval in seconds (default 0.5)
//	--seed <n>          Random seed (default 1)
//	--filter <keyword>  Only report effects whose name contains keyword
//	--textures <dir>    Texture directory (default assets/particles)
//	--verbose           Enable verbose logging (default off)
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"

	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/components"
	"github.com/decker502/omagari/pkg/diag"
	"github.com/decker502/omagari/pkg/ecs"
	"github.com/decker502/omagari/pkg/editor"
	"github.com/decker502/omagari/pkg/project"
	"github.com/decker502/omagari/pkg/systems"
)

var (
	secondsFlag  = flag.Float64("seconds", 3, "Simulated duration in seconds")
	fpsFlag      = flag.Int("fps", 60, "Simulation steps per second")
	everyFlag    = flag.Float64("every", 0.5, "Report interval in seconds")
	seedFlag     = flag.Int64("seed", 1, "Random seed")
	filterFlag   = flag.String("filter", "", "Only report effects whose name contains keyword")
	texturesFlag = flag.String("textures", "assets/particles", "Texture directory")
	verboseFlag  = flag.Bool("verbose", false, "Enable verbose logging (default off)")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: particles [flags] <file.omagari.yaml>")
		os.Exit(2)
	}
	if !*verboseFlag {
		log.SetOutput(io.Discard)
	}
	systems.SetVerbose(*verboseFlag)

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	doc, err := project.Load(path)
	if err != nil {
		return err
	}
	textures, err := editor.LoadTextures(*texturesFlag)
	if err != nil {
		return err
	}

	em := ecs.NewEntityManager()
	assets := particle.NewAssets()
	hazards := &diag.Collector{}
	spawner := systems.NewEffectSpawnSystem(em, assets, textures.Images)
	spawner.Sink = hazards
	if err := spawner.Spawn(doc); err != nil {
		return err
	}
	for _, h := range hazards.Hazards {
		fmt.Printf("⚠️  %s\n", h)
	}

	var reported []systems.SpawnedEffect
	for _, sp := range spawner.Spawned() {
		if strings.Contains(sp.Name, *filterFlag) {
			reported = append(reported, sp)
		}
	}

	fmt.Printf("%8s", "t")
	for _, sp := range reported {
		fmt.Printf(" %12s", sp.Name)
	}
	fmt.Println()

	sim := systems.NewParticleSystem(em, assets, *seedFlag)
	dt := 1.0 / float64(*fpsFlag)
	steps := int(math.Round(*secondsFlag * float64(*fpsFlag)))
	every := max(1, int(math.Round(*everyFlag*float64(*fpsFlag))))
	for step := 1; step <= steps; step++ {
		sim.Update(dt)
		if step%every != 0 && step != steps {
			continue
		}
		fmt.Printf("%8.2f", float64(step)*dt)
		for _, sp := range reported {
			alive := 0
			if state, ok := ecs.GetComponent[*components.EmitterStateComponent](em, sp.Entity); ok {
				alive = state.Alive()
			}
			fmt.Printf(" %12d", alive)
		}
		fmt.Println()
	}
	return nil
}
