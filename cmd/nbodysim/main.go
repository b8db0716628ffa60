// Command nbodysim drives a Simulation from the command line: flags for
// every config option, optional checkpoint resume/persist, and either a
// windowed renderer or a headless fixed-step loop.
//
// Grounded on the teacher's main.go: flag-based CLI, runtime.LockOSThread
// before touching GLFW/GL, and the banner-plus-progress fmt.Printf style.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"nbodysim/checkpoint"
	"nbodysim/engine/config"
	"nbodysim/engine/simulation"
	"nbodysim/rendering/opengl"
)

// Exit codes per spec §6: 0 on normal completion, 1 on flag/config
// error, 2 on checkpoint I/O error.
const (
	exitOK          = 0
	exitConfigError = 1
	exitCheckpointError = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	runtime.LockOSThread() // required before any GLFW/GL call

	cfg := config.Default()
	var (
		nBodies               = flag.Int("n-bodies", cfg.NBodies, "number of orbiting bodies")
		mass                  = flag.Float64("mass", cfg.Mass, "mass of each orbiting body")
		massZero              = flag.Float64("mzero", cfg.MassZero, "mass of the central body")
		g                     = flag.Float64("g", cfg.G, "gravitational constant")
		timestep              = flag.Float64("timestep", cfg.Timestep, "integration step size")
		softening             = flag.Float64("softening", cfg.Softening, "Plummer softening length")
		spin                  = flag.Float64("spin", cfg.Spin, "initial angular velocity coefficient")
		treeRatio             = flag.Float64("tree-ratio", cfg.TreeRatio, "Barnes-Hut acceptance threshold theta")
		mode3D                = flag.Bool("3d", cfg.Mode3D, "distribute bodies in 3D instead of a 2D disk")
		seed                  = flag.Int64("seed", cfg.Seed, "seed for the initial distribution's PRNG")
		rMin                  = flag.Float64("r-min", cfg.RMin, "minimum initial orbital radius")
		deterministicParallel = flag.Bool("deterministic-parallel", cfg.DeterministicParallel, "force bit-identical output regardless of worker count")

		configFile = flag.String("config", "", "optional JSON config file overlay")

		input    = flag.String("input", "", "checkpoint file to resume from")
		output   = flag.String("output", "", "checkpoint file to periodically save to")
		nSteps   = flag.Int("nsteps", 0, "checkpoint save interval in steps (with --output)")
		maxSteps = flag.Int("max-steps", 0, "stop after this many steps (0 = run until window closes, headless default 1000)")

		noGraphics = flag.Bool("no-graphics", false, "run headless, with no window")
		width      = flag.Int("width", 1280, "window width")
		height     = flag.Int("height", 720, "window height")
	)
	flag.CommandLine.Init(os.Args[0], flag.ContinueOnError)
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitConfigError
	}

	cfg.NBodies = *nBodies
	cfg.Mass = *mass
	cfg.MassZero = *massZero
	cfg.G = *g
	cfg.Timestep = *timestep
	cfg.Softening = *softening
	cfg.Spin = *spin
	cfg.TreeRatio = *treeRatio
	cfg.Mode3D = *mode3D
	cfg.Seed = *seed
	cfg.RMin = *rMin
	cfg.DeterministicParallel = *deterministicParallel

	if *configFile != "" {
		if err := config.LoadJSONFile(&cfg, *configFile); err != nil {
			log.Printf("config error: %v", err)
			return exitConfigError
		}
	}

	sim, err := simulation.NewSimulation(cfg)
	if err != nil {
		log.Printf("config error: %v", err)
		return exitConfigError
	}

	if *input != "" {
		if err := resumeFromCheckpoint(sim, cfg, *input); err != nil {
			log.Printf("checkpoint error: %v", err)
			return exitCheckpointError
		}
	}

	fmt.Println("=== N-Body Barnes-Hut Simulator ===")
	fmt.Printf("Bodies: %d | dim: %dD | theta: %.2f | dt: %g\n", cfg.NBodies, cfg.Dim(), cfg.TreeRatio, cfg.Timestep)

	if *noGraphics {
		return runHeadless(sim, cfg, *output, *nSteps, *maxSteps)
	}
	return runWindowed(sim, cfg, *output, *nSteps, *maxSteps, *width, *height)
}

func resumeFromCheckpoint(sim *simulation.Simulation, cfg config.Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	store, err := checkpoint.Read(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	cfg.NBodies = store.Len()
	cfg.Mode3D = store.Dim == 3
	sim.LoadStore(store, cfg)
	return nil
}

func saveCheckpoint(sim *simulation.Simulation, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := checkpoint.Write(f, sim.Store()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func runHeadless(sim *simulation.Simulation, cfg config.Config, output string, nSteps, maxSteps int) int {
	if maxSteps <= 0 {
		maxSteps = 1000
	}

	start := time.Now()
	for step := 1; step <= maxSteps; step++ {
		sim.Step()

		if sim.HasDiverged() {
			fmt.Printf("simulation diverged at step %d\n", step)
		}

		if output != "" && nSteps > 0 && step%nSteps == 0 {
			if err := saveCheckpoint(sim, output); err != nil {
				log.Printf("checkpoint error: %v", err)
				return exitCheckpointError
			}
		}
	}

	elapsed := time.Since(start)
	fmt.Printf("ran %d steps in %v (%.1f steps/s)\n", maxSteps, elapsed, float64(maxSteps)/elapsed.Seconds())

	if output != "" && nSteps <= 0 {
		if err := saveCheckpoint(sim, output); err != nil {
			log.Printf("checkpoint error: %v", err)
			return exitCheckpointError
		}
	}
	return exitOK
}

func runWindowed(sim *simulation.Simulation, cfg config.Config, output string, nSteps, maxSteps, width, height int) int {
	renderer, err := opengl.NewRenderer(width, height)
	if err != nil {
		log.Printf("failed to create renderer: %v", err)
		return exitConfigError
	}
	defer renderer.Terminate()

	fmt.Println("Controls:")
	fmt.Println("  T: toggle tree wireframe overlay")
	fmt.Println("  Mouse drag: orbit camera, scroll: zoom")
	fmt.Println("  ESC: quit")

	step := 0
	lastFPS := time.Now()
	frames := 0

	for !renderer.ShouldClose() {
		if maxSteps > 0 && step >= maxSteps {
			break
		}
		renderer.PollEvents()

		sim.Step()
		step++

		renderer.Draw(sim)

		if output != "" && nSteps > 0 && step%nSteps == 0 {
			if err := saveCheckpoint(sim, output); err != nil {
				log.Printf("checkpoint error: %v", err)
				return exitCheckpointError
			}
		}

		frames++
		if time.Since(lastFPS) >= time.Second {
			fps := float64(frames) / time.Since(lastFPS).Seconds()
			fmt.Printf("\rFPS: %.1f | step %d", fps, step)
			frames = 0
			lastFPS = time.Now()
		}
	}

	fmt.Println("\nShutting down...")
	return exitOK
}
