package simplify

import (
	"github.com/Faultbox/midgard-lod/pkg/math"
	"github.com/Faultbox/midgard-lod/pkg/mesh"
)

// Mesh flattens the live part of the graph back into an indexed mesh.
// Positions follow scan order and faces follow arena order, so repeated
// calls on the same graph give the same result. Vertex normals are
// recomputed from the faces.
func (g *Graph) Mesh() *mesh.Mesh {
	out := &mesh.Mesh{
		Positions: make([]math.Vec3, 0, len(g.alive)),
		Faces:     make([]mesh.Face, 0, g.liveTriangles),
	}

	index := make(map[VertexID]uint32, len(g.alive))
	for _, id := range g.alive {
		index[id] = uint32(len(out.Positions))
		out.Positions = append(out.Positions, g.vertices[id].pos)
	}

	if g.uv == withUV {
		out.UVs = make([][3]math.Vec2, 0, g.liveTriangles)
	}

	for i := range g.triangles {
		t := &g.triangles[i]
		if !t.live {
			continue
		}
		out.Faces = append(out.Faces, mesh.Face{
			Indices:  [3]uint32{index[t.v[0]], index[t.v[1]], index[t.v[2]]},
			Material: t.material,
		})
		if g.uv == withUV {
			out.UVs = append(out.UVs, t.uv)
		}
	}

	out.ComputeVertexNormals()
	return out
}
