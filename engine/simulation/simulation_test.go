package simulation

import (
	"math"
	"testing"

	"nbodysim/engine/config"
)

func baseConfig() config.Config {
	cfg := config.Default()
	cfg.NBodies = 32
	cfg.Seed = 42
	return cfg
}

// TestTwoBodyStaysBound runs a circular two-body configuration (a light
// body orbiting a much heavier one) for many steps and checks the orbit
// stays bound: the orbiter never drifts far from its initial radius.
func TestTwoBodyStaysBound(t *testing.T) {
	cfg := baseConfig()
	cfg.NBodies = 2
	cfg.MassZero = 1000
	cfg.Mass = 1
	cfg.G = 1
	cfg.Timestep = 1e-4
	cfg.Softening = 1e-3

	sim, err := NewSimulation(cfg)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}

	pos0, _, _ := sim.BodyAt(1)
	r0 := pos0.Len()

	// The orbiter's tangential speed is Spin*r0; the circular speed around
	// the central mass is sqrt(G*MassZero/r0). Pick Spin so the two match
	// and rebuild: the same seed gives the same radius and angle.
	cfg.Spin = math.Sqrt(cfg.G * cfg.MassZero / (r0 * r0 * r0))
	if err := sim.Reset(cfg); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	for step := 0; step < 2000; step++ {
		sim.Step()
	}

	pos, _, _ := sim.BodyAt(1)
	r := pos.Len()

	if r < 0.2*r0 || r > 5*r0 {
		t.Errorf("orbiter radius drifted from %g to %g, not bound", r0, r)
	}
	if sim.HasDiverged() {
		t.Error("simulation reported divergence for a bound two-body system")
	}
}

// TestColdClusterConservesMass checks that a collapsing cluster of mutually
// attracting bodies with zero initial velocity keeps a constant total mass
// and constant body count as it falls inward, per the core invariant that
// Step never creates or destroys bodies.
func TestColdClusterConservesMass(t *testing.T) {
	cfg := baseConfig()
	cfg.Spin = 0
	cfg.MassZero = 0 // no dominant central body; let the swarm self-gravitate
	cfg.Mass = 1

	sim, err := NewSimulation(cfg)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}

	totalBefore := 0.0
	for i := 0; i < sim.BodyCount(); i++ {
		_, _, m := sim.BodyAt(i)
		totalBefore += m
	}

	for step := 0; step < 50; step++ {
		sim.Step()
	}

	if sim.BodyCount() != cfg.NBodies {
		t.Errorf("body count changed: got %d, want %d", sim.BodyCount(), cfg.NBodies)
	}

	totalAfter := 0.0
	for i := 0; i < sim.BodyCount(); i++ {
		_, _, m := sim.BodyAt(i)
		totalAfter += m
	}
	if math.Abs(totalAfter-totalBefore) > 1e-9 {
		t.Errorf("total mass changed: got %g, want %g", totalAfter, totalBefore)
	}
}

// TestDeterministicSingleThreaded checks that two simulations built from
// identical configs (same seed) and advanced the same number of steps
// produce bit-identical trajectories, per the core's determinism law.
func TestDeterministicSingleThreaded(t *testing.T) {
	cfg := baseConfig()

	simA, err := NewSimulation(cfg)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	simB, err := NewSimulation(cfg)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}

	for step := 0; step < 20; step++ {
		simA.Step()
		simB.Step()
	}

	for i := 0; i < simA.BodyCount(); i++ {
		posA, velA, _ := simA.BodyAt(i)
		posB, velB, _ := simB.BodyAt(i)
		if posA != posB || velA != velB {
			t.Fatalf("body %d diverged between identical runs: (%v,%v) vs (%v,%v)", i, posA, velA, posB, velB)
		}
	}
}

// TestResetRestoresInitialDistribution checks that Reset with the same
// config reproduces the same initial positions Step would have started
// from, so callers can restart a run without reconstructing a Simulation.
func TestResetRestoresInitialDistribution(t *testing.T) {
	cfg := baseConfig()
	sim, err := NewSimulation(cfg)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}

	var before [][2]float64
	for i := 0; i < sim.BodyCount(); i++ {
		pos, _, _ := sim.BodyAt(i)
		before = append(before, [2]float64{pos.X(), pos.Y()})
	}

	for step := 0; step < 10; step++ {
		sim.Step()
	}
	if err := sim.Reset(cfg); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	for i := 0; i < sim.BodyCount(); i++ {
		pos, _, _ := sim.BodyAt(i)
		if pos.X() != before[i][0] || pos.Y() != before[i][1] {
			t.Fatalf("body %d position after reset = (%g,%g), want (%g,%g)", i, pos.X(), pos.Y(), before[i][0], before[i][1])
		}
	}
}

func TestNewSimulationRejectsInvalidConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.NBodies = 0

	if _, err := NewSimulation(cfg); err == nil {
		t.Fatal("expected an error for n_bodies = 0, got nil")
	}
}
