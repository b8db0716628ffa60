// Package simulation is the per-step driver spec §4.4 describes: build
// tree, evaluate forces for all bodies in parallel, integrate. It exposes
// the programmatic API spec §6 lists for embeddings (renderers, CLIs,
// web front ends).
package simulation

import (
	"fmt"
	"log"
	"runtime"
	"sync"

	"nbodysim/engine/body"
	"nbodysim/engine/config"
	"nbodysim/engine/force"
	"nbodysim/engine/octree"
	"nbodysim/engine/vecmath"
)

// Simulation owns one body population, the config it was built or reset
// with, and a reusable tree arena. It is not safe for concurrent use by
// multiple callers; internally, Step fans force evaluation out across
// workers and joins before returning, per spec §5's ordering guarantees.
type Simulation struct {
	cfg   config.Config
	store *body.Store
	tree  *octree.Tree

	diverged bool
}

// NewSimulation constructs a Simulation with an initial distribution, per
// spec §6 new_simulation(config) -> Simulation. Returns a configuration
// error rather than panicking, per spec §7.
func NewSimulation(cfg config.Config) (*Simulation, error) {
	s := &Simulation{tree: octree.NewTree()}
	if err := s.Reset(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset re-initializes the body store and all parameters from cfg, per
// spec §4.4 and §6. Parameter changes never take effect mid-step (spec
// §5 "Cancellation") — only through Reset.
func (s *Simulation) Reset(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("simulation: reset: %w", err)
	}

	s.cfg = cfg
	s.store = body.NewRandomDistribution(body.DistributionParams{
		N:                cfg.NBodies,
		CentralMass:      cfg.MassZero,
		BodyMass:         cfg.Mass,
		Spin:             cfg.Spin,
		Seed:             cfg.Seed,
		RMin:             cfg.RMin,
		Dim:              cfg.Dim(),
		DiskScatterSigma: cfg.DiskScatterSigma,
	})
	s.diverged = false
	return nil
}

// Step advances the simulation by one Δt, per spec §4.4's five steps.
// It is synchronous: it runs to completion, honoring the tree-build-then-
// evaluate-then-integrate barriers of spec §5, before returning.
func (s *Simulation) Step() {
	s.store.ResetAccelerations()
	s.tree.Build(s.store) // barrier: tree complete before any evaluation

	s.evaluateForces() // barrier: all evaluations complete before integration

	dt := s.cfg.Timestep
	for i := 0; i < s.store.Len(); i++ {
		s.store.IntegrateKickDrift(i, dt)
	}

	s.checkDivergence()
	// tree is discarded by being rebuilt (truncated) at the start of the
	// next Step, per spec §3's step-scoped tree lifetime.
}

// evaluateForces runs force evaluation for every body, fanned out across
// a worker pool when there's more than a trivial amount of work. Each
// worker writes only to the bodies in its own contiguous chunk's
// acceleration slots — disjoint writes, no locks needed, per spec §5's
// shared-resource policy. Grounded on
// other_examples/sandeepkv93-concurrency-in-golang__parallelnbody.go's
// WaitGroup-based force-calculation worker pool.
//
// DeterministicParallel (spec §8) forces this onto a single goroutine:
// since each body's acceleration is written independently with no
// cross-body reduction, a worker-pool run already produces the same
// bits a single-threaded run would (there is no reduction order left to
// fix) — but callers that need a run to be reproducible even under
// goroutine-scheduling nondeterminism (golden-output tests, replaying a
// recorded run bit-for-bit against a trace taken on different hardware)
// can pin evaluation to one goroutine explicitly rather than trust that
// equivalence.
func (s *Simulation) evaluateForces() {
	n := s.store.Len()
	params := force.Params{G: s.cfg.G, Softening: s.cfg.Softening, ThetaT: s.cfg.TreeRatio}

	if s.cfg.DeterministicParallel {
		s.evaluateRange(0, n, params)
		return
	}

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers <= 1 || n < 256 {
		s.evaluateRange(0, n, params)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			s.evaluateRange(start, end, params)
		}(start, end)
	}
	wg.Wait()
}

func (s *Simulation) evaluateRange(start, end int, params force.Params) {
	for i := start; i < end; i++ {
		s.store.Acceleration[i] = force.Accelerate(s.tree, s.store, i, params)
	}
}

func (s *Simulation) checkDivergence() {
	for i := 0; i < s.store.Len(); i++ {
		if !s.store.IsFinite(i) {
			if !s.diverged {
				log.Printf("simulation: body %d has non-finite position or velocity, marking diverged", i)
			}
			s.diverged = true
			return
		}
	}
}

// BodyCount returns N, conserved between Reset calls per spec §8.
func (s *Simulation) BodyCount() int {
	return s.store.Len()
}

// BodyAt returns body i's position, velocity, and mass, per spec §6.
func (s *Simulation) BodyAt(i int) (position, velocity vecmath.Vector, mass float64) {
	return s.store.Position[i], s.store.Velocity[i], s.store.Mass[i]
}

// BoundingBox returns the axis-aligned bounding box of all current
// positions, per spec §6, for adaptive camera framing.
func (s *Simulation) BoundingBox() (min, max vecmath.Vector) {
	return s.store.BoundingBox()
}

// TreeSnapshot returns (region, depth) for every occupied node of the
// tree built during the most recent Step, per spec §6's optional
// accessor for wireframe overlays.
func (s *Simulation) TreeSnapshot() []octree.RegionDepth {
	return s.tree.Snapshot()
}

// HasDiverged reports whether any body's position or velocity has gone
// non-finite, per spec §7's "Numerical anomaly" policy: the core never
// raises on this, callers poll.
func (s *Simulation) HasDiverged() bool {
	return s.diverged
}

// Config returns the configuration the simulation is currently running
// with.
func (s *Simulation) Config() config.Config {
	return s.cfg
}

// Store exposes the underlying body store for collaborators (checkpoint
// I/O, the websocket server) that need direct byte-level or bulk access
// rather than the one-body-at-a-time BodyAt accessor.
func (s *Simulation) Store() *body.Store {
	return s.store
}

// LoadStore replaces the entire population, per spec §6's checkpoint
// "load replaces the entire population". The caller (cmd/nbodysim, with a
// store from checkpoint.Read) is responsible for producing a store consistent with cfg's Dim.
func (s *Simulation) LoadStore(store *body.Store, cfg config.Config) {
	s.store = store
	s.cfg = cfg
	s.diverged = false
}
