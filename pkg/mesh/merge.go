package mesh

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-lod/pkg/math"
)

// mergeScale quantizes positions to four decimal places when merging.
const mergeScale = 1e4

// MergeVertices collapses positions that are equal to four decimal
// places into one, keeping the first occurrence, and remaps the
// faces. Faces that end up referencing the same position twice are
// removed together with their UVs. Normals are dropped since they no
// longer line up with the positions.
//
// It returns the number of positions and faces removed.
func (m *Mesh) MergeVertices() (removedVertices, removedFaces int) {
	unique := make(map[[3]int64]uint32, len(m.Positions))
	remap := make([]uint32, len(m.Positions))
	positions := make([]math.Vec3, 0, len(m.Positions))

	for i, p := range m.Positions {
		key := [3]int64{
			int64(math32.Round(p.X * mergeScale)),
			int64(math32.Round(p.Y * mergeScale)),
			int64(math32.Round(p.Z * mergeScale)),
		}
		if idx, ok := unique[key]; ok {
			remap[i] = idx
			continue
		}
		idx := uint32(len(positions))
		unique[key] = idx
		remap[i] = idx
		positions = append(positions, p)
	}

	hasUVs := m.HasUVs()
	faces := m.Faces[:0]
	var uvs [][3]math.Vec2
	if hasUVs {
		uvs = m.UVs[:0]
	}

	for i, f := range m.Faces {
		a, b, c := remap[f.Indices[0]], remap[f.Indices[1]], remap[f.Indices[2]]
		if a == b || b == c || a == c {
			removedFaces++
			continue
		}
		f.Indices = [3]uint32{a, b, c}
		faces = append(faces, f)
		if hasUVs {
			uvs = append(uvs, m.UVs[i])
		}
	}

	removedVertices = len(m.Positions) - len(positions)
	m.Positions = positions
	m.Faces = faces
	if hasUVs {
		m.UVs = uvs
	}
	m.Normals = nil
	return removedVertices, removedFaces
}
