package octree

import (
	"math"
	"testing"

	"nbodysim/engine/body"
	"nbodysim/engine/vecmath"
)

func storeFrom(positions []vecmath.Vector, masses []float64, dim int) *body.Store {
	s := body.NewStore(len(positions), dim)
	copy(s.Position, positions)
	copy(s.Mass, masses)
	return s
}

func TestBuildAggregatesMassAndCenterOfMass(t *testing.T) {
	tests := []struct {
		name      string
		positions []vecmath.Vector
		masses    []float64
		dim       int
	}{
		{
			name:      "two bodies quadtree",
			positions: []vecmath.Vector{{0, 0, 0}, {1, 1, 0}},
			masses:    []float64{1, 3},
			dim:       2,
		},
		{
			name:      "four bodies octree",
			positions: []vecmath.Vector{{0, 0, 0}, {1, 1, 1}, {-1, -1, -1}, {0.5, -0.5, 0.5}},
			masses:    []float64{2, 1, 1, 4},
			dim:       3,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := storeFrom(tc.positions, tc.masses, tc.dim)
			tree := NewTree()
			tree.Build(store)

			_, mass, com, _, _ := tree.NodeInfo(tree.RootIndex())

			wantMass := 0.0
			wantCom := vecmath.Zero()
			for i, m := range tc.masses {
				wantMass += m
				wantCom = wantCom.Add(tc.positions[i].Mul(m))
			}
			wantCom = wantCom.Mul(1 / wantMass)

			if math.Abs(mass-wantMass) > 1e-9 {
				t.Errorf("root mass = %g, want %g", mass, wantMass)
			}
			if vecmath.Dist(com, wantCom) > 1e-9 {
				t.Errorf("root center of mass = %v, want %v", com, wantCom)
			}
		})
	}
}

func TestBuildContainment(t *testing.T) {
	positions := make([]vecmath.Vector, 50)
	masses := make([]float64, 50)
	for i := range positions {
		positions[i] = vecmath.New(float64(i%7)-3, float64(i%5)-2, 0)
		masses[i] = 1
	}
	store := storeFrom(positions, masses, 2)
	tree := NewTree()
	tree.Build(store)

	bounds := tree.RootBounds()
	for i, p := range positions {
		if !bounds.Contains(p) {
			t.Errorf("body %d at %v not contained in root bounds %+v", i, p, bounds)
		}
	}
}

func TestCoincidentBodiesDoNotRecurseForever(t *testing.T) {
	positions := []vecmath.Vector{{1, 1, 0}, {1, 1, 0}}
	masses := []float64{1, 1}
	store := storeFrom(positions, masses, 2)
	tree := NewTree()
	tree.Build(store) // must return, not hang or stack overflow

	_, mass, _, _, _ := tree.NodeInfo(tree.RootIndex())
	if math.Abs(mass-2) > 1e-9 {
		t.Errorf("root mass = %g, want 2", mass)
	}
}

func TestSnapshotCoversOccupiedNodes(t *testing.T) {
	positions := []vecmath.Vector{{0, 0, 0}, {5, 5, 0}, {-5, -5, 0}}
	masses := []float64{1, 1, 1}
	store := storeFrom(positions, masses, 2)
	tree := NewTree()
	tree.Build(store)

	snap := tree.Snapshot()
	if len(snap) == 0 {
		t.Fatal("expected a non-empty snapshot")
	}
	for _, entry := range snap {
		if entry.Bounds.Half <= 0 {
			t.Errorf("snapshot entry has non-positive half-width: %+v", entry)
		}
	}
}
