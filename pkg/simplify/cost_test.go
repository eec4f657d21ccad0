package simplify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-lod/pkg/math"
	"github.com/Faultbox/midgard-lod/pkg/mesh"
)

func TestBoundaryEdgesCostMoreThanInteriorEdges(t *testing.T) {
	quad := Build(mesh.Quad(1), false)
	closed := Build(octahedron(1), false)

	interior := closed.edgeCost(0, 2)
	assert.Less(t, interior, float32(0.5))

	boundary := [][2]VertexID{{0, 1}, {0, 2}, {1, 3}, {2, 3}}
	for _, e := range boundary {
		c := quad.edgeCost(e[0], e[1])
		assert.InDelta(t, 1.0, c, 1e-5, "edge %v should use curvature 1", e)
		assert.Greater(t, c, interior, "edge %v", e)
	}
}

func TestFlatInteriorEdgeCost(t *testing.T) {
	g := Build(mesh.Quad(2), false)

	// The diagonal is shared by both coplanar triangles.
	diagonal := g.vertices[1].pos.Distance(g.vertices[2].pos)
	want := diagonal * (flatBias - 1) / 2
	assert.InDelta(t, want, g.edgeCost(1, 2), 1e-6)
}

func TestVertexCostIsMeanOfEdges(t *testing.T) {
	g := Build(mesh.Quad(1), false)

	var sum float32
	least := float32(1e9)
	var target VertexID
	for _, n := range g.vertices[1].neighbors {
		c := g.edgeCost(1, n)
		sum += c
		if c < least {
			least, target = c, n
		}
	}

	cost, got := g.Cost(1)
	assert.InDelta(t, sum/float32(len(g.vertices[1].neighbors)), cost, 1e-6)
	assert.Equal(t, target, got)
	assert.Equal(t, VertexID(2), got, "diagonal is the cheapest edge")
}

func TestIsolatedVertexCost(t *testing.T) {
	m := mesh.Quad(1)
	m.Positions = append(m.Positions, math.Vec3{X: 10})

	g := Build(m, false)
	cost, target := g.Cost(4)
	assert.Equal(t, IsolatedCost, cost)
	assert.Equal(t, NoVertex, target)

	id, ok := g.cheapest()
	require.True(t, ok)
	assert.Equal(t, VertexID(4), id)
}

func TestSeamCost(t *testing.T) {
	// Two triangles sharing edge 1-2. Vertex 1 carries a different UV
	// in each triangle.
	m := &mesh.Mesh{
		Positions: []math.Vec3{{}, {X: 1}, {Z: 1}, {X: 1, Z: 1}},
		Faces: []mesh.Face{
			{Indices: [3]uint32{0, 2, 1}},
			{Indices: [3]uint32{1, 2, 3}},
		},
		UVs: [][3]math.Vec2{
			{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0.5, Y: 0}},
			{{X: 0.7, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}},
		},
	}

	tracked := Build(m, true)
	assert.Equal(t, float32(1), tracked.uvCost(1, 2))
	assert.Equal(t, float32(1), tracked.uvCost(2, 1))

	untracked := Build(m, false)
	assert.Equal(t, float32(0), untracked.uvCost(1, 2))
	assert.InDelta(t, 1.0, tracked.edgeCost(1, 2)-untracked.edgeCost(1, 2), 1e-6)
}
