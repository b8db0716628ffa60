// Package octree builds the Barnes-Hut spatial tree (quadtree in 2D,
// octree in 3D) fresh each step over the current body positions. Tree
// nodes live in an arena and are addressed by index rather than pointer,
// per spec §9's design note, so the whole tree is released en masse at
// step end by simply truncating the arena slice.
//
// The push/subdivide/collapse logic is grounded on
// other_examples/quillaja-nbody__tree.go's node.push.
package octree

import (
	"nbodysim/engine/body"
	"nbodysim/engine/vecmath"
)

// MaxDepth caps subdivision so coincident (or extremely close) bodies
// cannot recurse forever, per spec §4.2.
const MaxDepth = 64

const maxChildren = 8 // octree; quadtree uses the low 4 of these 8 slots

// node is one arena slot: either an empty leaf (BodyIndex == -1, no
// children), a single-body leaf (BodyIndex >= 0, no children), or an
// internal node (BodyIndex == -1, at least one child present).
type node struct {
	bounds       vecmath.Bounds
	totalMass    float64
	centerOfMass vecmath.Vector
	children     [maxChildren]int32 // -1 means absent
	bodyIndex    int                // -1 for internal/empty nodes
	depth        int
}

func (n *node) isLeaf() bool {
	for _, c := range n.children {
		if c >= 0 {
			return false
		}
	}
	return true
}

func (n *node) isEmpty() bool {
	return n.isLeaf() && n.bodyIndex < 0
}

// Tree is an arena-backed Barnes-Hut tree built over one Store snapshot.
// It has step-scoped lifetime: rebuild it with Build every step rather
// than keeping it across steps (spec §3 "Lifecycles").
type Tree struct {
	arena []node
	root  int32
	store *body.Store
}

// NewTree allocates an empty Tree. Reuse one Tree across steps via Build
// to amortize the arena's backing-array allocation, matching spec §5's
// "implementations should use an arena or pooled allocator" note.
func NewTree() *Tree {
	return &Tree{}
}

// Build constructs the tree over store's current positions, per spec §4.2.
func (t *Tree) Build(store *body.Store) {
	t.arena = t.arena[:0]
	t.store = store

	if store.Len() == 0 {
		t.root = -1
		return
	}

	rootBounds := vecmath.RootBounds(store.Position, store.Dim)
	t.root = t.newNode(rootBounds, 0)

	for i := 0; i < store.Len(); i++ {
		t.insert(t.root, i, 0)
	}
}

func (t *Tree) newNode(b vecmath.Bounds, depth int) int32 {
	t.arena = append(t.arena, node{
		bounds:    b,
		bodyIndex: -1,
		depth:     depth,
	})
	for i := range t.arena[len(t.arena)-1].children {
		t.arena[len(t.arena)-1].children[i] = -1
	}
	return int32(len(t.arena) - 1)
}

// insert places body bi into the subtree rooted at node idx, per spec
// §4.2's insertion procedure.
//
// idx is never cached as a pointer across a call that can append to
// t.arena (ensureChild, t.insert itself): any such append may grow the
// arena into a freshly allocated backing array, stranding a previously
// taken &t.arena[idx] on the old, discarded one. Every read/write here
// instead re-indexes t.arena[idx] fresh, which is always valid because
// idx itself (unlike a pointer) survives a reallocation unchanged.
func (t *Tree) insert(idx int32, bi int, depth int) {
	pos := t.store.Position[bi]
	mass := t.store.Mass[bi]

	if t.arena[idx].isEmpty() {
		t.arena[idx].bodyIndex = bi
		t.arena[idx].totalMass = mass
		t.arena[idx].centerOfMass = pos
		return
	}

	if t.arena[idx].isLeaf() {
		// Single-body leaf: either subdivide, or collapse at the depth
		// cap (spec §4.2's coincidence handling).
		if depth >= MaxDepth {
			t.collapse(idx, mass, pos)
			return
		}

		existing := t.arena[idx].bodyIndex
		existingPos := t.store.Position[existing]
		t.arena[idx].bodyIndex = -1

		oct := t.arena[idx].bounds.Octant(existingPos)
		t.ensureChild(idx, oct)
		t.insert(t.arena[idx].children[oct], existing, depth+1)

		// fall through: insert the incoming body the same way an
		// internal node would.
	}

	oct := t.arena[idx].bounds.Octant(pos)
	t.ensureChild(idx, oct)
	t.insert(t.arena[idx].children[oct], bi, depth+1)

	// Update this node's aggregate incrementally on the way back up, per
	// spec §4.2 "may be interleaved with insertion". Taking the pointer
	// here is safe: nothing below this line can append to t.arena.
	n := &t.arena[idx]
	newTotal := n.totalMass + mass
	n.centerOfMass = n.centerOfMass.Mul(n.totalMass / newTotal).Add(pos.Mul(mass / newTotal))
	n.totalMass = newTotal
}

// collapse merges an incoming body into a leaf that has hit the
// subdivision depth cap: masses sum, position becomes the mass-weighted
// mean, and the incoming body is not given its own leaf (spec §4.2).
// The leaf keeps its original BodyIndex as the self-interaction
// "resident" per §9's documented self-interaction rule.
func (t *Tree) collapse(idx int32, mass float64, pos vecmath.Vector) {
	n := &t.arena[idx]
	newTotal := n.totalMass + mass
	n.centerOfMass = n.centerOfMass.Mul(n.totalMass / newTotal).Add(pos.Mul(mass / newTotal))
	n.totalMass = newTotal
}

// ensureChild makes sure parent has a child at octant oct, creating one
// via t.newNode if absent. The parent's bounds/depth are read into locals
// before newNode's append runs, and the new child index is written back
// through a fresh t.arena[parent] afterward — never through a pointer
// taken before the append.
func (t *Tree) ensureChild(parent int32, oct int) {
	if t.arena[parent].children[oct] >= 0 {
		return
	}
	bounds := t.arena[parent].bounds
	depth := t.arena[parent].depth
	child := t.newNode(bounds.ChildBounds(oct), depth+1)
	t.arena[parent].children[oct] = child
}

// Empty reports whether the tree has no bodies.
func (t *Tree) Empty() bool {
	return t.root < 0
}

// RootBounds returns the root region, for bounding_box()-style queries
// and for the Snapshot wireframe overlay.
func (t *Tree) RootBounds() vecmath.Bounds {
	if t.Empty() {
		return vecmath.Bounds{}
	}
	return t.arena[t.root].bounds
}

// RegionDepth is one entry of a Snapshot: a node's region and its depth
// in the tree, for wireframe overlays (spec §6 tree_snapshot()).
type RegionDepth struct {
	Bounds vecmath.Bounds
	Depth  int
}

// RootIndex is the arena index of the root node, or -1 if Empty.
func (t *Tree) RootIndex() int32 {
	return t.root
}

// NodeInfo returns everything the force evaluator (package force) needs
// to decide whether to accept or recurse into a node: its region, its
// aggregate mass and center of mass, the index of the single body it
// holds if it is a leaf (-1 otherwise), and its children (-1 where
// absent).
func (t *Tree) NodeInfo(idx int32) (bounds vecmath.Bounds, mass float64, centerOfMass vecmath.Vector, bodyIndex int, children [maxChildren]int32) {
	n := &t.arena[idx]
	return n.bounds, n.totalMass, n.centerOfMass, n.bodyIndex, n.children
}

// NodeIsLeaf reports whether the node at idx is a leaf (as opposed to an
// internal aggregate node).
func (t *Tree) NodeIsLeaf(idx int32) bool {
	return t.arena[idx].isLeaf()
}

// Snapshot walks the arena and returns (region, depth) for every occupied
// node, per spec §6's optional tree_snapshot() accessor.
func (t *Tree) Snapshot() []RegionDepth {
	if t.Empty() {
		return nil
	}
	var out []RegionDepth
	var walk func(idx int32)
	walk = func(idx int32) {
		n := &t.arena[idx]
		if n.isEmpty() {
			return
		}
		out = append(out, RegionDepth{Bounds: n.bounds, Depth: n.depth})
		for _, c := range n.children {
			if c >= 0 {
				walk(c)
			}
		}
	}
	walk(t.root)
	return out
}
