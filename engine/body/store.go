// Package body holds the dense, index-addressable particle store spec §4.1
// describes: structure-of-arrays so force evaluation (reads) and
// integration (writes) never alias across bodies.
package body

import (
	"nbodysim/engine/vecmath"
)

// Store is a structure-of-arrays population of point masses, addressed by
// stable integer indices 0..Len()-1 for the lifetime of a simulation run.
type Store struct {
	Mass         []float64
	Position     []vecmath.Vector
	Velocity     []vecmath.Vector
	Acceleration []vecmath.Vector

	Dim int // 2 or 3, controls which vector components are meaningful
}

// NewStore allocates a store of n bodies, all zeroed.
func NewStore(n, dim int) *Store {
	return &Store{
		Mass:         make([]float64, n),
		Position:     make([]vecmath.Vector, n),
		Velocity:     make([]vecmath.Vector, n),
		Acceleration: make([]vecmath.Vector, n),
		Dim:          dim,
	}
}

// Len is the body count, conserved between Reset calls per spec §8.
func (s *Store) Len() int {
	return len(s.Mass)
}

// ResetAccelerations zeroes every body's acceleration slot, per spec §4.4
// step 1. Not strictly required since the evaluator overwrites rather than
// accumulates, but it keeps the contract that acceleration holds only this
// step's result even if a future evaluator accumulates across passes.
func (s *Store) ResetAccelerations() {
	for i := range s.Acceleration {
		s.Acceleration[i] = vecmath.Zero()
	}
}

// BoundingBox computes the axis-aligned bounding box of all current
// positions, per spec §4.1.
func (s *Store) BoundingBox() (min, max vecmath.Vector) {
	return vecmath.BoundingBox(s.Position, s.Dim)
}

// IntegrateKickDrift advances body i by dt using the kick-then-drift
// (semi-implicit Euler / Euler-Cromer) scheme spec §4.4 step 4 requires:
// velocity is updated from this step's acceleration before position is
// updated from the new velocity.
func (s *Store) IntegrateKickDrift(i int, dt float64) {
	s.Velocity[i] = s.Velocity[i].Add(s.Acceleration[i].Mul(dt))
	s.Position[i] = s.Position[i].Add(s.Velocity[i].Mul(dt))
}

// IsFinite reports whether body i's position and velocity are both finite,
// used by Simulation.HasDiverged (spec §7 "Numerical anomaly").
func (s *Store) IsFinite(i int) bool {
	return vecmath.IsFinite(s.Position[i]) && vecmath.IsFinite(s.Velocity[i])
}
