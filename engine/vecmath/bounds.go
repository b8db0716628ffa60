package vecmath

import "math"

// Bounds is an axis-aligned square (Dim==2, Z ignored) or cube (Dim==3)
// described by a center and a half-width, per spec §3 "Bounding region".
type Bounds struct {
	Center Vector
	Half   float64
	Dim    int // 2 or 3
}

// Contains reports whether pos lies within this region: each coordinate
// in [center-half, center+half), the half-open convention spec §3 requires
// so that a point on a shared face belongs to exactly one child.
func (b Bounds) Contains(pos Vector) bool {
	for i := 0; i < b.Dim; i++ {
		d := pos[i] - b.Center[i]
		if d < -b.Half || d >= b.Half {
			return false
		}
	}
	return true
}

// Side is the side length of the region (2*half-width), used as the "s"
// term in the multipole acceptance ratio s/d.
func (b Bounds) Side() float64 {
	return 2 * b.Half
}

// Octant determines which child (0..2^Dim-1) of this region contains pos,
// by the sign of each coordinate relative to the center. A coordinate
// exactly on the plane is assigned to the non-negative child, per spec
// §4.2's tie-break rule. Bit i of the result is set when pos[i] >= center[i].
//
// The sign-bit trick mirrors other_examples/quillaja-nbody's octantBits:
// the sign bit of (pos[i]-center[i]) is 1 only for strictly negative
// deltas, so inverting and shifting it down yields 1 for delta >= 0.
func (b Bounds) Octant(pos Vector) int {
	oct := 0
	for i := 0; i < b.Dim; i++ {
		delta := pos[i] - b.Center[i]
		bit := int(^math.Float64bits(delta)>>63) & 1
		oct |= bit << i
	}
	return oct
}

// ChildBounds returns the bounds of child octant oct within this region:
// half the width, centered a quarter-width away from the parent center in
// the direction the octant bit indicates.
func (b Bounds) ChildBounds(oct int) Bounds {
	child := Bounds{Half: b.Half / 2, Dim: b.Dim, Center: b.Center}
	quarter := b.Half / 2
	for i := 0; i < b.Dim; i++ {
		if oct&(1<<i) != 0 {
			child.Center[i] += quarter
		} else {
			child.Center[i] -= quarter
		}
	}
	return child
}

// ChildCount is 4 for a quadtree, 8 for an octree.
func (b Bounds) ChildCount() int {
	return 1 << b.Dim
}

// BoundingBox computes the axis-aligned min/max corner over a set of
// positions, per spec §4.1 "computes the axis-aligned bounding box of all
// current positions".
func BoundingBox(positions []Vector, dim int) (min, max Vector) {
	if len(positions) == 0 {
		return Zero(), Zero()
	}
	min, max = positions[0], positions[0]
	for _, p := range positions[1:] {
		for i := 0; i < dim; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}
	return min, max
}

// RootBounds computes the root region per spec §4.2: centered on the
// bounding box's center, sized to the largest half-extent across
// dimensions, expanded by a small epsilon so every body strictly
// satisfies Contains.
func RootBounds(positions []Vector, dim int) Bounds {
	min, max := BoundingBox(positions, dim)
	center := min.Add(max).Mul(0.5)

	half := 0.0
	for i := 0; i < dim; i++ {
		extent := (max[i] - min[i]) / 2
		if extent > half {
			half = extent
		}
	}
	if half == 0 {
		half = 1 // all bodies coincident; still need a non-degenerate root
	}
	const epsilon = 1e-9
	return Bounds{Center: center, Half: half * (1 + epsilon), Dim: dim}
}
