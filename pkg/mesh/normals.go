package mesh

import "github.com/Faultbox/midgard-lod/pkg/math"

// TriangleNormal returns the unit normal of triangle (a, b, c).
// Degenerate triangles yield the zero vector.
func TriangleNormal(a, b, c math.Vec3) math.Vec3 {
	cb := c.Sub(b)
	ab := a.Sub(b)
	return cb.Cross(ab).Normalize()
}

// FaceNormal returns the unit normal of face i.
func (m *Mesh) FaceNormal(i int) math.Vec3 {
	idx := m.Faces[i].Indices
	return TriangleNormal(m.Positions[idx[0]], m.Positions[idx[1]], m.Positions[idx[2]])
}

// ComputeVertexNormals sets Normals to the normalized average of the
// adjacent face normals. Vertices without faces, or whose faces are all
// degenerate, get a zero normal.
func (m *Mesh) ComputeVertexNormals() {
	normals := make([]math.Vec3, len(m.Positions))
	for i, f := range m.Faces {
		n := m.FaceNormal(i)
		for _, idx := range f.Indices {
			normals[idx] = normals[idx].Add(n)
		}
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	m.Normals = normals
}
