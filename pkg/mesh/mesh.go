// Package mesh provides the indexed triangle mesh shared by the simplifier,
// the LOD builder and the file format readers.
package mesh

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"

	"github.com/Faultbox/midgard-lod/pkg/math"
)

// Mesh validation errors.
var (
	ErrIndexOutOfRange     = errors.New("face index out of range")
	ErrUVCountMismatch     = errors.New("uv count does not match face count")
	ErrNormalCountMismatch = errors.New("normal count does not match vertex count")
)

// Face is a triangle referencing three positions.
type Face struct {
	Indices  [3]uint32
	Material int // Index into Mesh.Materials, passed through untouched
}

// Mesh is an indexed triangle mesh.
//
// UVs is either nil or holds one entry per face with the texture
// coordinate of each corner. Keeping UVs per corner lets a single
// position carry different coordinates on either side of a seam.
type Mesh struct {
	Name      string
	Positions []math.Vec3
	Faces     []Face
	UVs       [][3]math.Vec2
	Normals   []math.Vec3 // Per-vertex, may be nil
	Materials []string    // Material names, may be nil
}

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Positions)
}

// TriangleCount returns the number of faces.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Faces)
}

// HasUVs reports whether per-corner texture coordinates are present.
func (m *Mesh) HasUVs() bool {
	return m != nil && len(m.UVs) > 0 && len(m.UVs) == len(m.Faces)
}

// Validate checks index ranges and attribute lengths.
func (m *Mesh) Validate() error {
	n := uint32(len(m.Positions))
	for i, f := range m.Faces {
		for _, idx := range f.Indices {
			if idx >= n {
				return fmt.Errorf("face %d: index %d >= %d: %w", i, idx, n, ErrIndexOutOfRange)
			}
		}
	}
	if m.UVs != nil && len(m.UVs) != len(m.Faces) {
		return fmt.Errorf("%d uvs for %d faces: %w", len(m.UVs), len(m.Faces), ErrUVCountMismatch)
	}
	if m.Normals != nil && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%d normals for %d vertices: %w", len(m.Normals), len(m.Positions), ErrNormalCountMismatch)
	}
	return nil
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	if m == nil {
		return nil
	}
	out := &Mesh{}
	if err := copier.CopyWithOption(out, m, copier.Option{DeepCopy: true}); err != nil {
		// Mesh only holds plain values, copier cannot fail on it.
		panic(fmt.Sprintf("mesh: clone: %v", err))
	}

	// Keep nil attributes nil so callers can compare clones directly.
	if m.Positions == nil {
		out.Positions = nil
	}
	if m.Faces == nil {
		out.Faces = nil
	}
	if m.UVs == nil {
		out.UVs = nil
	}
	if m.Normals == nil {
		out.Normals = nil
	}
	if m.Materials == nil {
		out.Materials = nil
	}
	return out
}

// Corner returns the position index and, if present, the texture
// coordinate of one corner of a face.
func (m *Mesh) Corner(face, corner int) (uint32, math.Vec2) {
	var uv math.Vec2
	if m.HasUVs() {
		uv = m.UVs[face][corner]
	}
	return m.Faces[face].Indices[corner], uv
}
