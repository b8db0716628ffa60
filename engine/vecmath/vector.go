// Package vecmath holds the position/velocity/acceleration vector type
// shared by the body store, the tree, and the force evaluator, plus the
// bounding-region math the tree build needs.
package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector is a 3-component vector. 2D mode simulations simply leave Z at 0
// for every body and region for the lifetime of the run.
type Vector = mgl64.Vec3

// Zero is the zero vector.
func Zero() Vector { return Vector{0, 0, 0} }

// New builds a Vector, ignoring z in 2D callers that never set it.
func New(x, y, z float64) Vector { return Vector{x, y, z} }

// Dist is the Euclidean distance between two vectors.
func Dist(a, b Vector) float64 {
	return a.Sub(b).Len()
}

// IsFinite reports whether every component is a finite float (not NaN,
// not +/-Inf). Used by Simulation.HasDiverged.
func IsFinite(v Vector) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
