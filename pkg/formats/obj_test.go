package formats

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Faultbox/midgard-lod/pkg/math"
	"github.com/Faultbox/midgard-lod/pkg/mesh"
)

const quadOBJ = `# unit quad
o floor
v 0 0 0
v 1 0 0
v 1 0 1
v 0 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 1 0
usemtl stone
f 1/1/1 4/4/1 3/3/1 2/2/1
`

func TestParseOBJ_Quad(t *testing.T) {
	m, err := ParseOBJ([]byte(quadOBJ))
	if err != nil {
		t.Fatalf("ParseOBJ() error = %v", err)
	}

	if m.Name != "floor" {
		t.Errorf("expected name 'floor', got %q", m.Name)
	}
	if len(m.Positions) != 4 {
		t.Errorf("expected 4 positions, got %d", len(m.Positions))
	}
	if len(m.Faces) != 2 {
		t.Fatalf("expected quad to fan into 2 triangles, got %d", len(m.Faces))
	}
	if got, want := m.Faces[1].Indices, [3]uint32{0, 2, 1}; got != want {
		t.Errorf("second triangle = %v, want %v", got, want)
	}
	if !m.HasUVs() {
		t.Fatal("expected UVs")
	}
	if got, want := m.UVs[0][1], (math.Vec2{X: 0, Y: 1}); got != want {
		t.Errorf("uv = %v, want %v", got, want)
	}
	if len(m.Materials) != 1 || m.Materials[0] != "stone" {
		t.Errorf("expected materials [stone], got %v", m.Materials)
	}
	if len(m.Normals) != 4 {
		t.Errorf("expected recomputed normals, got %d", len(m.Normals))
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestParseOBJ_IndexForms(t *testing.T) {
	tests := []struct {
		name   string
		face   string
		want   [3]uint32
		hasUVs bool
	}{
		{"positions only", "f 1 2 3", [3]uint32{0, 1, 2}, false},
		{"with uvs", "f 1/1 2/2 3/3", [3]uint32{0, 1, 2}, true},
		{"normals only", "f 1//1 2//1 3//1", [3]uint32{0, 1, 2}, false},
		{"negative", "f -3/-3 -2/-2 -1/-1", [3]uint32{0, 1, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 0\nvt 0 1\nvn 0 0 1\n" + tt.face + "\n"
			m, err := ParseOBJ([]byte(data))
			if err != nil {
				t.Fatalf("ParseOBJ() error = %v", err)
			}
			if m.Faces[0].Indices != tt.want {
				t.Errorf("indices = %v, want %v", m.Faces[0].Indices, tt.want)
			}
			if m.HasUVs() != tt.hasUVs {
				t.Errorf("HasUVs() = %v, want %v", m.HasUVs(), tt.hasUVs)
			}
		})
	}
}

func TestParseOBJ_PartialUVsDropped(t *testing.T) {
	data := "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nvt 0 0\nf 1/1 2/1 3/1\nf 2 4 3\n"
	m, err := ParseOBJ([]byte(data))
	if err != nil {
		t.Fatalf("ParseOBJ() error = %v", err)
	}
	if m.UVs != nil {
		t.Errorf("expected UVs dropped when a corner lacks one, got %d", len(m.UVs))
	}
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"empty", "", ErrNoFaces},
		{"no faces", "v 0 0 0\n", ErrNoFaces},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n", ErrBadIndex},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", ErrBadIndex},
		{"bad uv index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n", ErrBadIndex},
		{"short vertex", "v 0 0\n", ErrMalformedLine},
		{"bad float", "v 0 x 0\n", ErrMalformedLine},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n", ErrMalformedLine},
		{"bad index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf a b c\n", ErrMalformedLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ([]byte(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestWriteOBJ_RoundTrip(t *testing.T) {
	src := mesh.Grid(3, 3, 2)
	src.Materials = []string{"grass"}

	var buf bytes.Buffer
	if err := WriteOBJ(&buf, src); err != nil {
		t.Fatalf("WriteOBJ() error = %v", err)
	}

	got, err := ParseOBJ(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseOBJ() error = %v", err)
	}

	if got.Name != src.Name {
		t.Errorf("name = %q, want %q", got.Name, src.Name)
	}
	if len(got.Positions) != len(src.Positions) || len(got.Faces) != len(src.Faces) {
		t.Fatalf("counts = %d/%d, want %d/%d",
			len(got.Positions), len(got.Faces), len(src.Positions), len(src.Faces))
	}
	for i := range src.Positions {
		if got.Positions[i] != src.Positions[i] {
			t.Errorf("position %d = %v, want %v", i, got.Positions[i], src.Positions[i])
		}
	}
	for i := range src.Faces {
		if got.Faces[i] != src.Faces[i] {
			t.Errorf("face %d = %v, want %v", i, got.Faces[i], src.Faces[i])
		}
		if got.UVs[i] != src.UVs[i] {
			t.Errorf("uvs %d = %v, want %v", i, got.UVs[i], src.UVs[i])
		}
	}
	if len(got.Materials) != 1 || got.Materials[0] != "grass" {
		t.Errorf("materials = %v, want [grass]", got.Materials)
	}
}

func TestOBJFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sphere.obj")
	src := mesh.Icosphere(1, 1)
	src.Name = ""

	if err := WriteOBJFile(path, src); err != nil {
		t.Fatalf("WriteOBJFile() error = %v", err)
	}
	got, err := ParseOBJFile(path)
	if err != nil {
		t.Fatalf("ParseOBJFile() error = %v", err)
	}
	if got.Name != "sphere" {
		t.Errorf("expected name from file 'sphere', got %q", got.Name)
	}
	if got.VertexCount() != src.VertexCount() {
		t.Errorf("vertex count = %d, want %d", got.VertexCount(), src.VertexCount())
	}

	if _, err := ParseOBJFile(filepath.Join(t.TempDir(), "missing.obj")); err == nil {
		t.Error("expected error for missing file")
	}
}
