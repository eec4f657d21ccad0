package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-lod/pkg/math"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mesh    *Mesh
		wantErr error
	}{
		{
			name:    "quad",
			mesh:    Quad(1),
			wantErr: nil,
		},
		{
			name: "index out of range",
			mesh: &Mesh{
				Positions: []math.Vec3{{}, {X: 1}, {Y: 1}},
				Faces:     []Face{{Indices: [3]uint32{0, 1, 3}}},
			},
			wantErr: ErrIndexOutOfRange,
		},
		{
			name: "uv mismatch",
			mesh: &Mesh{
				Positions: []math.Vec3{{}, {X: 1}, {Y: 1}},
				Faces:     []Face{{Indices: [3]uint32{0, 1, 2}}},
				UVs:       make([][3]math.Vec2, 2),
			},
			wantErr: ErrUVCountMismatch,
		},
		{
			name: "normal mismatch",
			mesh: &Mesh{
				Positions: []math.Vec3{{}, {X: 1}, {Y: 1}},
				Faces:     []Face{{Indices: [3]uint32{0, 1, 2}}},
				Normals:   make([]math.Vec3, 1),
			},
			wantErr: ErrNormalCountMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCorner(t *testing.T) {
	q := Quad(2)
	for f := range q.Faces {
		for k := 0; k < 3; k++ {
			idx, uv := q.Corner(f, k)
			assert.Equal(t, q.Faces[f].Indices[k], idx)
			assert.Equal(t, q.UVs[f][k], uv)
		}
	}

	// Without UVs only the index is meaningful.
	q.UVs = nil
	idx, uv := q.Corner(1, 2)
	assert.Equal(t, q.Faces[1].Indices[2], idx)
	assert.Equal(t, math.Vec2{}, uv)
}

func TestClone(t *testing.T) {
	src := Grid(2, 2, 1)
	dup := src.Clone()
	require.Equal(t, src, dup)

	dup.Positions[0] = math.Vec3{X: 42}
	dup.UVs[0][0] = math.Vec2{X: 9}
	dup.Faces[0].Material = 7
	assert.NotEqual(t, src.Positions[0], dup.Positions[0])
	assert.NotEqual(t, src.UVs[0][0], dup.UVs[0][0])
	assert.Equal(t, 0, src.Faces[0].Material)

	noUV := Icosphere(1, 0)
	assert.Nil(t, noUV.Clone().UVs)
}

func TestIcosphereCounts(t *testing.T) {
	tests := []struct {
		subdivisions int
		vertices     int
		faces        int
	}{
		{0, 12, 20},
		{1, 42, 80},
		{2, 162, 320},
		{3, 642, 1280},
	}

	for _, tt := range tests {
		m := Icosphere(1, tt.subdivisions)
		assert.Equal(t, tt.vertices, m.VertexCount(), "subdivision %d", tt.subdivisions)
		assert.Equal(t, tt.faces, m.TriangleCount(), "subdivision %d", tt.subdivisions)
		assert.NoError(t, m.Validate())
	}
}

func TestIcosphereFacesOutward(t *testing.T) {
	m := Icosphere(2, 1)
	for i, f := range m.Faces {
		centroid := m.Positions[f.Indices[0]].
			Add(m.Positions[f.Indices[1]]).
			Add(m.Positions[f.Indices[2]]).
			Scale(1.0 / 3)
		assert.Greater(t, m.FaceNormal(i).Dot(centroid), float32(0), "face %d points inward", i)
	}
}

func TestGrid(t *testing.T) {
	m := Grid(3, 2, 6)
	assert.Equal(t, 12, m.VertexCount())
	assert.Equal(t, 12, m.TriangleCount())
	assert.True(t, m.HasUVs())
	require.NoError(t, m.Validate())

	for i := range m.Faces {
		assert.InDelta(t, 1, m.FaceNormal(i).Y, 1e-5)
	}

	b := m.Bounds()
	assert.Equal(t, math.Vec3{X: -3, Z: -3}, b.Min)
	assert.Equal(t, math.Vec3{X: 3, Z: 3}, b.Max)
	assert.Equal(t, math.Vec3{}, b.Center())
}

func TestMergeVertices(t *testing.T) {
	// Two triangles sharing an edge, stored as a triangle soup, plus a
	// face that degenerates once merged.
	m := &Mesh{
		Positions: []math.Vec3{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0},
			{X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1.00001, Z: 0},
			{X: 0, Y: 0, Z: 0}, {X: 0.000001, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0},
		},
		Faces: []Face{
			{Indices: [3]uint32{0, 1, 2}},
			{Indices: [3]uint32{3, 4, 5}, Material: 2},
			{Indices: [3]uint32{6, 7, 8}},
		},
		UVs: [][3]math.Vec2{
			{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}},
			{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
			{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 1}},
		},
		Normals: make([]math.Vec3, 9),
	}

	removedVerts, removedFaces := m.MergeVertices()
	assert.Equal(t, 5, removedVerts)
	assert.Equal(t, 1, removedFaces)
	assert.Len(t, m.Positions, 4)
	require.Len(t, m.Faces, 2)
	require.Len(t, m.UVs, 2)
	assert.Nil(t, m.Normals)

	assert.Equal(t, [3]uint32{0, 1, 2}, m.Faces[0].Indices)
	assert.Equal(t, [3]uint32{1, 3, 2}, m.Faces[1].Indices)
	assert.Equal(t, 2, m.Faces[1].Material)
	assert.Equal(t, math.Vec2{X: 1, Y: 1}, m.UVs[1][1])
}

func TestComputeVertexNormals(t *testing.T) {
	m := &Mesh{
		Positions: []math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 0}, {X: 5, Y: 5, Z: 5}, {X: 2, Y: 0, Z: 0}, {X: 3, Y: 0, Z: 0}},
		Faces: []Face{
			{Indices: [3]uint32{0, 1, 2}},
			{Indices: [3]uint32{2, 4, 5}}, // collinear
		},
	}
	m.ComputeVertexNormals()
	require.Len(t, m.Normals, 6)
	assert.Equal(t, math.Vec3{Y: 1}, m.Normals[0])
	assert.True(t, m.Normals[3].IsZero(), "unreferenced vertex should have zero normal")
	assert.True(t, m.Normals[5].IsZero(), "degenerate face should contribute zero normal")
	assert.True(t, m.FaceNormal(1).IsZero())
}
