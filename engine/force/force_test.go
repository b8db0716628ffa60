package force

import (
	"math"
	"testing"

	"nbodysim/engine/body"
	"nbodysim/engine/octree"
	"nbodysim/engine/vecmath"
)

func directSum(store *body.Store, i int, p Params) vecmath.Vector {
	total := vecmath.Zero()
	for j := 0; j < store.Len(); j++ {
		if j == i {
			continue
		}
		total = total.Add(pointContribution(store.Mass[j], store.Position[j], store.Position[i], p))
	}
	return total
}

func TestThetaZeroMatchesDirectSum(t *testing.T) {
	store := body.NewStore(6, 2)
	positions := []vecmath.Vector{
		{0, 0, 0}, {2, 0, 0}, {0, 3, 0}, {-2, -1, 0}, {4, 4, 0}, {-3, 2, 0},
	}
	masses := []float64{10, 2, 3, 1, 5, 4}
	copy(store.Position, positions)
	copy(store.Mass, masses)

	p := Params{G: 1, Softening: 0.01, ThetaT: 0}
	tree := octree.NewTree()
	tree.Build(store)

	for i := 0; i < store.Len(); i++ {
		got := Accelerate(tree, store, i, p)
		want := directSum(store, i, p)
		if vecmath.Dist(got, want) > 1e-9 {
			t.Errorf("body %d: accel = %v, want %v (direct sum)", i, got, want)
		}
	}
}

func TestApproximationAgreesWithinOnePercent(t *testing.T) {
	rng := deterministicRNG(7)
	store := body.NewStore(50, 2)
	for i := 0; i < store.Len(); i++ {
		store.Position[i] = vecmath.New(rng()*20-10, rng()*20-10, 0)
		store.Mass[i] = 1 + rng()*5
	}

	exact := Params{G: 1, Softening: 0.05, ThetaT: 0}
	approx := Params{G: 1, Softening: 0.05, ThetaT: 0.5}

	tree := octree.NewTree()
	tree.Build(store)

	var sumErr, sumMag float64
	for i := 0; i < store.Len(); i++ {
		want := Accelerate(tree, store, i, exact)
		got := Accelerate(tree, store, i, approx)
		sumErr += vecmath.Dist(got, want) * vecmath.Dist(got, want)
		sumMag += want.Len() * want.Len()
	}
	rmsErr := math.Sqrt(sumErr / float64(store.Len()))
	meanMag := math.Sqrt(sumMag / float64(store.Len()))

	if rmsErr > 0.01*meanMag {
		t.Errorf("RMS error %g exceeds 1%% of mean magnitude %g", rmsErr, meanMag)
	}
}

func TestSymmetricTwoBodyAccelerationsAntisymmetric(t *testing.T) {
	store := body.NewStore(2, 2)
	store.Position[0] = vecmath.New(1, 0, 0)
	store.Position[1] = vecmath.New(-1, 0, 0)
	store.Mass[0] = 5
	store.Mass[1] = 5

	p := Params{G: 1, Softening: 0.01, ThetaT: 0}
	tree := octree.NewTree()
	tree.Build(store)

	a0 := Accelerate(tree, store, 0, p)
	a1 := Accelerate(tree, store, 1, p)

	if vecmath.Dist(a0, a1.Mul(-1)) > 1e-9 {
		t.Errorf("accelerations not antisymmetric: a0=%v a1=%v", a0, a1)
	}
}

// deterministicRNG is a tiny linear congruential generator so this test
// file doesn't need math/rand wired in just for a handful of scattered
// positions.
func deterministicRNG(seed uint64) func() float64 {
	state := seed
	return func() float64 {
		state = state*6364136223846793005 + 1442695040888963407
		return float64(state>>40) / float64(1<<24)
	}
}
