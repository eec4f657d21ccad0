package simplify

import (
	"slices"

	"github.com/Faultbox/midgard-lod/pkg/math"
)

// collapse moves u onto its neighbor v. Triangles on edge u-v are
// deleted, the remaining triangles of u are rewired to v and u is
// removed. It reports false, changing nothing, when v is no longer a
// live neighbor of u.
func (g *Graph) collapse(uid, vid VertexID) bool {
	u := &g.vertices[uid]
	if !g.vertices[vid].live || !slices.Contains(u.neighbors, vid) {
		return false
	}

	before := slices.Clone(u.neighbors)

	var surviving math.Vec2
	haveSurviving := false
	for i := len(u.faces) - 1; i >= 0; i-- {
		f := u.faces[i]
		t := &g.triangles[f]
		if !t.has(vid) {
			continue
		}
		if g.uv == withUV {
			surviving = t.uv[t.corner(vid)]
			haveSurviving = true
		}
		g.removeTriangle(f)
	}

	// Pin u's remaining corners to the UV that survives at v so the
	// kept side stays continuous. This stretches the texture locally.
	if g.uv == withUV && haveSurviving {
		for _, f := range u.faces {
			t := &g.triangles[f]
			t.uv[t.corner(uid)] = surviving
		}
	}

	for i := len(u.faces) - 1; i >= 0; i-- {
		g.replaceVertex(u.faces[i], uid, vid)
	}

	g.removeVertex(uid)

	for _, n := range before {
		if g.vertices[n].live {
			g.computeVertexCost(n)
		}
	}
	return true
}

// replaceVertex swaps corner from for to in triangle f and repairs the
// adjacency of every vertex involved.
func (g *Graph) replaceVertex(f TriangleID, from, to VertexID) {
	t := &g.triangles[f]
	k := t.corner(from)
	if k < 0 {
		return
	}
	t.v[k] = to

	g.detachFace(from, f)
	g.vertices[to].faces = append(g.vertices[to].faces, f)

	for _, c := range t.v {
		g.dropIfNonNeighbor(from, c)
		g.dropIfNonNeighbor(c, from)
	}
	for k := 0; k < 3; k++ {
		g.addNeighbor(t.v[k], t.v[(k+1)%3])
		g.addNeighbor(t.v[k], t.v[(k+2)%3])
	}

	g.computeNormal(f)
}
