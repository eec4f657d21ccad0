package simplify

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-lod/pkg/math"
)

// IsolatedCost is the collapse cost of a vertex without neighbors. It is
// below any real edge cost so isolated vertices are removed first.
const IsolatedCost float32 = -0.01

// flatBias keeps the curvature of coplanar faces slightly above zero so
// that edge length still orders flat regions.
const flatBias = 1.001

// computeVertexCost caches the mean cost of all edges leaving v and the
// neighbor with the cheapest edge. Ties keep the first neighbor found.
func (g *Graph) computeVertexCost(id VertexID) {
	v := &g.vertices[id]
	if len(v.neighbors) == 0 {
		v.target = NoVertex
		v.cost = IsolatedCost
		return
	}

	var total, least float32
	v.target = NoVertex
	for _, n := range v.neighbors {
		c := g.edgeCost(id, n)
		if v.target == NoVertex || c < least {
			v.target = n
			least = c
		}
		total += c
	}
	v.cost = total / float32(len(v.neighbors))
}

// edgeCost estimates how much the surface changes when u is moved onto v.
func (g *Graph) edgeCost(uid, vid VertexID) float32 {
	u := &g.vertices[uid]
	length := u.pos.Distance(g.vertices[vid].pos)

	var sides []TriangleID
	for _, f := range u.faces {
		if g.triangles[f].has(vid) {
			sides = append(sides, f)
		}
	}

	// The face turned furthest away from the sides of the edge
	// determines the curvature.
	var curvature float32
	for _, f := range u.faces {
		n := g.triangles[f].normal
		minCurvature := float32(1)
		for _, s := range sides {
			dev := (flatBias - n.Dot(g.triangles[s].normal)) / 2
			minCurvature = math32.Min(minCurvature, dev)
		}
		curvature = math32.Max(curvature, minCurvature)
	}

	// Boundary edge.
	if len(sides) < 2 {
		curvature = 1
	}

	return length*curvature + g.uvCost(uid, vid)
}

// uvCost counts texture coordinate changes at v, and then at u, across
// the triangles shared by u and v. Each change marks a seam.
func (g *Graph) uvCost(uid, vid VertexID) float32 {
	if g.uv != withUV {
		return 0
	}
	return float32(g.seamChanges(vid, uid) + g.seamChanges(uid, vid))
}

// seamChanges walks at's triangles that also contain other and counts
// how often the UV at at's corner differs from the previous one.
func (g *Graph) seamChanges(at, other VertexID) int {
	changes := 0
	var prev math.Vec2
	seen := false

	faces := g.vertices[at].faces
	for i := len(faces) - 1; i >= 0; i-- {
		t := &g.triangles[faces[i]]
		if !t.has(other) {
			continue
		}
		uv := t.uv[t.corner(at)]
		if seen && uv != prev {
			changes++
		}
		prev = uv
		seen = true
	}
	return changes
}
