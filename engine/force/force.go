// Package force implements the Barnes-Hut multipole-acceptance traversal
// and the Plummer-softened gravity law, spec §4.3.
//
// Grounded on other_examples/quillaja-nbody__tree.go's node.gravity for
// the accept-vs-recurse traversal shape, and on
// other_examples/NERVsystems-infernode__nbody.go /
// other_examples/wetherbeei-gopar__nbody.go for the softened-denominator
// force-law idiom.
package force

import (
	"math"

	"nbodysim/engine/body"
	"nbodysim/engine/octree"
	"nbodysim/engine/vecmath"
)

// Params bundles the inputs spec §4.3 names beyond the body and the tree:
// gravitational constant, softening, and the acceptance threshold.
type Params struct {
	G         float64
	Softening float64
	ThetaT    float64
}

// Accelerate returns the acceleration on body i given the tree root,
// per spec §4.3. It reads only the tree and body i's position — never
// any other body's state — so that evaluations for different i may run
// concurrently (spec §4.3 "Ordering").
func Accelerate(tree *octree.Tree, store *body.Store, i int, p Params) vecmath.Vector {
	if tree.Empty() {
		return vecmath.Zero()
	}
	pos := store.Position[i]
	return visit(tree, tree.RootIndex(), i, pos, p)
}

func visit(tree *octree.Tree, idx int32, i int, pos vecmath.Vector, p Params) vecmath.Vector {
	bounds, mass, com, bodyIndex, children := tree.NodeInfo(idx)
	if mass == 0 {
		return vecmath.Zero() // empty leaf
	}

	isLeaf := tree.NodeIsLeaf(idx)
	if isLeaf && bodyIndex == i {
		return vecmath.Zero() // no self-interaction, spec §4.3
	}

	if isLeaf || accept(bounds.Side(), com, pos, p.ThetaT) {
		return pointContribution(mass, com, pos, p)
	}

	total := vecmath.Zero()
	for _, c := range children {
		if c >= 0 {
			total = total.Add(visit(tree, c, i, pos, p))
		}
	}
	return total
}

// accept implements the multipole acceptance criterion s/d < theta_t,
// rearranged to s < theta_t*d so a zero separation (d == 0, which only
// an internal node with a degenerate center of mass could produce) falls
// through to "recurse" rather than dividing by zero, per spec §4.3's
// requirement that the evaluator "never special-case d = 0 other than
// through softening" in the force law itself.
func accept(side float64, com, pos vecmath.Vector, thetaT float64) bool {
	d := vecmath.Dist(com, pos)
	return side < thetaT*d
}

// pointContribution is the Plummer-softened acceleration from a point
// mass m at com acting on a body at pos: G*m*(com-pos) / (d^2+eps^2)^1.5,
// pointing from pos toward com.
func pointContribution(mass float64, com, pos vecmath.Vector, p Params) vecmath.Vector {
	r := com.Sub(pos)
	d2 := r.Dot(r)
	denom := math.Pow(d2+p.Softening*p.Softening, 1.5)
	return r.Mul(p.G * mass / denom)
}
