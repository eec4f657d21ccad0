package simplify

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Faultbox/midgard-lod/pkg/math"
	"github.com/Faultbox/midgard-lod/pkg/mesh"
)

// ErrBrokenInvariant is returned by Graph.Validate when the adjacency
// bookkeeping no longer matches the triangles.
var ErrBrokenInvariant = errors.New("broken graph invariant")

// VertexID addresses a vertex record in a Graph arena.
type VertexID int32

// TriangleID addresses a triangle record in a Graph arena.
type TriangleID int32

// NoVertex marks an absent collapse target.
const NoVertex VertexID = -1

// uvMode records once, at build time, whether corner UVs are tracked.
type uvMode uint8

const (
	noUV uvMode = iota
	withUV
)

type vertex struct {
	pos       math.Vec3
	faces     []TriangleID
	neighbors []VertexID
	cost      float32
	target    VertexID
	live      bool
	skipped   bool
}

type triangle struct {
	v        [3]VertexID
	normal   math.Vec3
	uv       [3]math.Vec2
	material int
	live     bool
}

// Graph is the mutable working set of one simplification pass.
// Records live in arenas and are never moved; deleted records are only
// flagged dead. A Graph is not safe for concurrent use.
type Graph struct {
	vertices  []vertex
	triangles []triangle
	alive     []VertexID // live vertices in scan order
	uv        uvMode

	liveTriangles  int
	mergedVertices int
	droppedFaces   int
}

// Build converts an indexed mesh into an adjacency graph. Coincident
// positions are merged first, on a copy, so m is never modified.
// Corner UVs are tracked when preserveUVs is set and m has them.
func Build(m *mesh.Mesh, preserveUVs bool) *Graph {
	work := m.Clone()
	merged, dropped := work.MergeVertices()

	g := &Graph{
		vertices:       make([]vertex, len(work.Positions)),
		triangles:      make([]triangle, 0, len(work.Faces)),
		alive:          make([]VertexID, len(work.Positions)),
		mergedVertices: merged,
		droppedFaces:   dropped,
	}
	if preserveUVs && work.HasUVs() {
		g.uv = withUV
	}

	for i, p := range work.Positions {
		g.vertices[i] = vertex{pos: p, target: NoVertex, live: true}
		g.alive[i] = VertexID(i)
	}

	for i, f := range work.Faces {
		var uv [3]math.Vec2
		if g.uv == withUV {
			uv = work.UVs[i]
		}
		g.addTriangle(
			[3]VertexID{VertexID(f.Indices[0]), VertexID(f.Indices[1]), VertexID(f.Indices[2])},
			uv, f.Material,
		)
	}

	for _, id := range g.alive {
		g.computeVertexCost(id)
	}
	return g
}

// VertexCount returns the number of live vertices.
func (g *Graph) VertexCount() int {
	return len(g.alive)
}

// TriangleCount returns the number of live triangles.
func (g *Graph) TriangleCount() int {
	return g.liveTriangles
}

// TracksUVs reports whether corner UVs are carried through collapses.
func (g *Graph) TracksUVs() bool {
	return g.uv == withUV
}

// Cost returns the cached collapse cost and target of a vertex.
func (g *Graph) Cost(id VertexID) (float32, VertexID) {
	v := &g.vertices[id]
	return v.cost, v.target
}

func (g *Graph) addTriangle(vs [3]VertexID, uv [3]math.Vec2, material int) TriangleID {
	id := TriangleID(len(g.triangles))
	g.triangles = append(g.triangles, triangle{
		v:        vs,
		uv:       uv,
		material: material,
		live:     true,
	})
	g.liveTriangles++
	g.computeNormal(id)

	for k := 0; k < 3; k++ {
		a := &g.vertices[vs[k]]
		a.faces = append(a.faces, id)
		g.addNeighbor(vs[k], vs[(k+1)%3])
		g.addNeighbor(vs[k], vs[(k+2)%3])
	}
	return id
}

func (g *Graph) computeNormal(id TriangleID) {
	t := &g.triangles[id]
	t.normal = mesh.TriangleNormal(
		g.vertices[t.v[0]].pos,
		g.vertices[t.v[1]].pos,
		g.vertices[t.v[2]].pos,
	)
}

func (t *triangle) has(v VertexID) bool {
	return t.v[0] == v || t.v[1] == v || t.v[2] == v
}

// corner returns the slot holding v, or -1.
func (t *triangle) corner(v VertexID) int {
	for k, id := range t.v {
		if id == v {
			return k
		}
	}
	return -1
}

func (g *Graph) addNeighbor(a, n VertexID) {
	v := &g.vertices[a]
	if !slices.Contains(v.neighbors, n) {
		v.neighbors = append(v.neighbors, n)
	}
}

// dropIfNonNeighbor removes n from a's neighbors unless a triangle of a
// still contains n.
func (g *Graph) dropIfNonNeighbor(a, n VertexID) {
	v := &g.vertices[a]
	idx := slices.Index(v.neighbors, n)
	if idx < 0 {
		return
	}
	for _, f := range v.faces {
		if g.triangles[f].has(n) {
			return
		}
	}
	v.neighbors = slices.Delete(v.neighbors, idx, idx+1)
}

func (g *Graph) detachFace(a VertexID, f TriangleID) {
	v := &g.vertices[a]
	if idx := slices.Index(v.faces, f); idx >= 0 {
		v.faces = slices.Delete(v.faces, idx, idx+1)
	}
}

// removeTriangle unlinks a triangle from its corners and drops neighbor
// relations no other triangle supports.
func (g *Graph) removeTriangle(id TriangleID) {
	t := &g.triangles[id]
	if !t.live {
		return
	}
	t.live = false
	g.liveTriangles--

	for _, v := range t.v {
		g.detachFace(v, id)
	}
	for k := 0; k < 3; k++ {
		a, b := t.v[k], t.v[(k+1)%3]
		g.dropIfNonNeighbor(a, b)
		g.dropIfNonNeighbor(b, a)
	}
}

// removeVertex deletes a vertex that no triangle references anymore.
func (g *Graph) removeVertex(id VertexID) {
	v := &g.vertices[id]
	for len(v.neighbors) > 0 {
		n := v.neighbors[len(v.neighbors)-1]
		v.neighbors = v.neighbors[:len(v.neighbors)-1]
		nv := &g.vertices[n]
		if idx := slices.Index(nv.neighbors, id); idx >= 0 {
			nv.neighbors = slices.Delete(nv.neighbors, idx, idx+1)
		}
	}
	v.live = false
	v.target = NoVertex
	if idx := slices.Index(g.alive, id); idx >= 0 {
		g.alive = slices.Delete(g.alive, idx, idx+1)
	}
}

// Validate checks that incidence and neighbor lists agree with the live
// triangles. It walks the whole graph and is meant for tests and debug
// builds, not the collapse loop.
func (g *Graph) Validate() error {
	for _, id := range g.alive {
		v := &g.vertices[id]
		if !v.live {
			return fmt.Errorf("vertex %d listed alive but dead: %w", id, ErrBrokenInvariant)
		}

		want := make(map[VertexID]bool)
		for _, f := range v.faces {
			t := &g.triangles[f]
			if !t.live {
				return fmt.Errorf("vertex %d references dead triangle %d: %w", id, f, ErrBrokenInvariant)
			}
			if !t.has(id) {
				return fmt.Errorf("vertex %d lists triangle %d without being a corner: %w", id, f, ErrBrokenInvariant)
			}
			for _, c := range t.v {
				if c != id {
					want[c] = true
				}
			}
		}

		if len(want) != len(v.neighbors) {
			return fmt.Errorf("vertex %d has %d neighbors, triangles imply %d: %w",
				id, len(v.neighbors), len(want), ErrBrokenInvariant)
		}
		for _, n := range v.neighbors {
			if !want[n] {
				return fmt.Errorf("vertex %d has stray neighbor %d: %w", id, n, ErrBrokenInvariant)
			}
		}
	}

	live := 0
	for i := range g.triangles {
		t := &g.triangles[i]
		if !t.live {
			continue
		}
		live++
		if t.v[0] == t.v[1] || t.v[1] == t.v[2] || t.v[0] == t.v[2] {
			return fmt.Errorf("triangle %d has repeated corners %v: %w", i, t.v, ErrBrokenInvariant)
		}
		for _, c := range t.v {
			cv := &g.vertices[c]
			if !cv.live {
				return fmt.Errorf("triangle %d references dead vertex %d: %w", i, c, ErrBrokenInvariant)
			}
			if !slices.Contains(cv.faces, TriangleID(i)) {
				return fmt.Errorf("vertex %d misses incident triangle %d: %w", c, i, ErrBrokenInvariant)
			}
		}
	}
	if live != g.liveTriangles {
		return fmt.Errorf("counted %d live triangles, tracking %d: %w", live, g.liveTriangles, ErrBrokenInvariant)
	}
	return nil
}
