package simplify

import "github.com/Faultbox/midgard-lod/pkg/math"

// Collapse describes one step of the decimation loop.
type Collapse struct {
	From, To     VertexID // To is NoVertex when an isolated vertex was deleted
	FromPos      math.Vec3
	ToPos        math.Vec3
	Cost         float32
	Boundary     bool // the collapsed edge had fewer than two triangles
	TrianglesCut int  // triangles removed along the edge
}

// Isolated reports whether the step deleted a vertex without neighbors.
func (c Collapse) Isolated() bool {
	return c.To == NoVertex
}

// DecimateResult summarizes a Decimate call.
type DecimateResult struct {
	Attempts  int
	Collapsed int
	Isolated  int
	Skipped   int
	Exhausted bool
}

// cheapest returns the live, non-skipped vertex with the lowest cached
// cost, scanning in order and keeping the first of equal costs.
// The scan is linear, so a full pass is quadratic in vertex count.
func (g *Graph) cheapest() (VertexID, bool) {
	best := NoVertex
	var least float32
	for _, id := range g.alive {
		v := &g.vertices[id]
		if v.skipped {
			continue
		}
		if best == NoVertex || v.cost < least {
			best = id
			least = v.cost
		}
	}
	return best, best != NoVertex
}

// Decimate removes up to k vertices, cheapest first. Every attempt
// counts toward k whether or not it succeeds, and a vertex that cannot
// be collapsed is not selected again during this call. When no
// candidate is left the loop stops early and Exhausted is set.
func (g *Graph) Decimate(k int, onCollapse func(Collapse)) DecimateResult {
	var res DecimateResult
	defer g.clearSkipped()

	for ; k > 0; k-- {
		id, ok := g.cheapest()
		if !ok {
			res.Exhausted = true
			break
		}
		res.Attempts++

		v := &g.vertices[id]
		step := Collapse{From: id, To: v.target, FromPos: v.pos, Cost: v.cost}

		if v.target == NoVertex {
			g.removeVertex(id)
			res.Isolated++
			if onCollapse != nil {
				onCollapse(step)
			}
			continue
		}

		step.ToPos = g.vertices[v.target].pos
		for _, f := range v.faces {
			if g.triangles[f].has(v.target) {
				step.TrianglesCut++
			}
		}
		step.Boundary = step.TrianglesCut < 2

		if !g.collapse(id, v.target) {
			v.skipped = true
			res.Skipped++
			continue
		}
		res.Collapsed++
		if onCollapse != nil {
			onCollapse(step)
		}
	}
	return res
}

func (g *Graph) clearSkipped() {
	for _, id := range g.alive {
		g.vertices[id].skipped = false
	}
}
