package body

import (
	"math"
	"math/rand"

	"nbodysim/engine/vecmath"
)

// DistributionParams collects the inputs spec §4.1 names for the initial
// distribution: particle count, central mass, per-body mass, spin factor,
// and the seed for the deterministic pseudorandom stream.
type DistributionParams struct {
	N                int
	CentralMass      float64
	BodyMass         float64
	Spin             float64
	Seed             int64
	RMin             float64 // small positive constant, avoids central singularities
	Dim              int     // 2 or 3
	DiskScatterSigma float64 // 3D only: vertical scatter standard deviation, as a fraction of r
}

// NewRandomDistribution builds a Store following spec §4.1 exactly: body 0
// is the central mass at the origin with zero velocity; every other body
// gets a radius drawn uniformly from [RMin, 1] and an angle uniformly from
// [0, 2pi), a position on that circle (or, in 3D, on a disk with a small
// vertical scatter), and a tangential circular-orbit velocity of magnitude
// Spin*r perpendicular to the radial direction.
//
// Mirrors core/voxel_planet.go's CreateVoxelPlanet shape: a plain
// constructor that fills a freshly allocated store from a deterministic
// PRNG, no corpus example happens to distribute point masses this way so
// the formula itself is taken straight from the spec.
func NewRandomDistribution(p DistributionParams) *Store {
	store := NewStore(p.N, p.Dim)
	rng := rand.New(rand.NewSource(p.Seed))

	if p.N == 0 {
		return store
	}

	store.Mass[0] = p.CentralMass
	store.Position[0] = vecmath.Zero()
	store.Velocity[0] = vecmath.Zero()

	for i := 1; i < p.N; i++ {
		r := p.RMin + rng.Float64()*(1-p.RMin)
		theta := rng.Float64() * 2 * math.Pi

		x := r * math.Cos(theta)
		y := r * math.Sin(theta)

		var z float64
		if p.Dim == 3 {
			z = rng.NormFloat64() * p.DiskScatterSigma * r
		}

		store.Position[i] = vecmath.New(x, y, z)
		store.Mass[i] = p.BodyMass

		// Tangential direction (-sin theta, cos theta), confined to the
		// xy-plane in both 2D and 3D per spec §4.1.
		speed := p.Spin * r
		store.Velocity[i] = vecmath.New(-speed*math.Sin(theta), speed*math.Cos(theta), 0)
	}

	return store
}
