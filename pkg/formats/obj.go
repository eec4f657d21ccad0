// Wavefront OBJ format support for triangle meshes.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/midgard-lod/pkg/math"
	"github.com/Faultbox/midgard-lod/pkg/mesh"
)

// OBJ format errors.
var (
	ErrNoFaces       = errors.New("OBJ contains no faces")
	ErrBadIndex      = errors.New("OBJ index out of range")
	ErrMalformedLine = errors.New("malformed OBJ line")
)

// objCorner is one parsed face corner; uv is -1 when absent.
type objCorner struct {
	pos int
	uv  int
}

// ParseOBJ parses Wavefront OBJ data into a triangle mesh.
// Polygons are fan-triangulated. Normals in the file are ignored and
// recomputed. UVs are kept only if every face corner has one.
func ParseOBJ(data []byte) (*mesh.Mesh, error) {
	return ReadOBJ(bytes.NewReader(data))
}

// ReadOBJ parses Wavefront OBJ data from a reader.
func ReadOBJ(r io.Reader) (*mesh.Mesh, error) {
	m := &mesh.Mesh{}
	var texCoords []math.Vec2
	var uvs [][3]math.Vec2
	allUVs := true
	material := 0
	materials := make(map[string]int)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "o":
			if m.Name == "" && len(fields) > 1 {
				m.Name = strings.Join(fields[1:], " ")
			}

		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			m.Positions = append(m.Positions, math.Vec3{X: v[0], Y: v[1], Z: v[2]})

		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			texCoords = append(texCoords, math.Vec2{X: v[0], Y: v[1]})

		case "usemtl":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: usemtl without name: %w", lineNo, ErrMalformedLine)
			}
			name := strings.Join(fields[1:], " ")
			idx, ok := materials[name]
			if !ok {
				idx = len(m.Materials)
				materials[name] = idx
				m.Materials = append(m.Materials, name)
			}
			material = idx

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face with %d corners: %w", lineNo, len(fields)-1, ErrMalformedLine)
			}
			corners := make([]objCorner, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				c, err := parseCorner(tok, len(m.Positions), len(texCoords))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				corners = append(corners, c)
			}

			for i := 1; i+1 < len(corners); i++ {
				tri := [3]objCorner{corners[0], corners[i], corners[i+1]}
				m.Faces = append(m.Faces, mesh.Face{
					Indices:  [3]uint32{uint32(tri[0].pos), uint32(tri[1].pos), uint32(tri[2].pos)},
					Material: material,
				})
				var uv [3]math.Vec2
				for k, c := range tri {
					if c.uv < 0 {
						allUVs = false
						continue
					}
					uv[k] = texCoords[c.uv]
				}
				uvs = append(uvs, uv)
			}

		default:
			// vn, s, g, mtllib and friends carry nothing the mesh keeps.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	if len(m.Faces) == 0 {
		return nil, ErrNoFaces
	}
	if allUVs {
		m.UVs = uvs
	}
	m.ComputeVertexNormals()
	return m, nil
}

// ParseOBJFile reads and parses an OBJ file. The mesh is named after the
// file when the file declares no object name.
func ParseOBJFile(path string) (*mesh.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	m, err := ParseOBJ(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// parseCorner parses "v", "v/vt", "v//vn" or "v/vt/vn". Indices are
// 1-based; negative values count back from the latest element.
func parseCorner(tok string, nPos, nUV int) (objCorner, error) {
	parts := strings.Split(tok, "/")
	pos, err := resolveIndex(parts[0], nPos)
	if err != nil {
		return objCorner{}, err
	}
	c := objCorner{pos: pos, uv: -1}
	if len(parts) > 1 && parts[1] != "" {
		uv, err := resolveIndex(parts[1], nUV)
		if err != nil {
			return objCorner{}, err
		}
		c.uv = uv
	}
	return c, nil
}

func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("index %q: %w", s, ErrMalformedLine)
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	default:
		return 0, fmt.Errorf("index %d with %d elements: %w", i, n, ErrBadIndex)
	}
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d values, got %d: %w", n, len(fields), ErrMalformedLine)
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", fields[i], ErrMalformedLine)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// WriteOBJ writes a mesh as Wavefront OBJ. Texture coordinates are
// deduplicated; normals are written per vertex when present.
func WriteOBJ(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	if m.Name != "" {
		fmt.Fprintf(bw, "o %s\n", m.Name)
	}
	for _, p := range m.Positions {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z))
	}

	hasUVs := m.HasUVs()
	var uvIndex map[math.Vec2]int
	if hasUVs {
		uvIndex = make(map[math.Vec2]int)
		for _, face := range m.UVs {
			for _, uv := range face {
				if _, ok := uvIndex[uv]; ok {
					continue
				}
				uvIndex[uv] = len(uvIndex) + 1
				fmt.Fprintf(bw, "vt %s %s\n", formatFloat(uv.X), formatFloat(uv.Y))
			}
		}
	}

	hasNormals := len(m.Normals) == len(m.Positions) && len(m.Normals) > 0
	if hasNormals {
		for _, n := range m.Normals {
			fmt.Fprintf(bw, "vn %s %s %s\n", formatFloat(n.X), formatFloat(n.Y), formatFloat(n.Z))
		}
	}

	current := -1
	for i, f := range m.Faces {
		if f.Material != current && f.Material >= 0 && f.Material < len(m.Materials) {
			fmt.Fprintf(bw, "usemtl %s\n", m.Materials[f.Material])
			current = f.Material
		}

		bw.WriteString("f")
		for k := range f.Indices {
			idx, uv := m.Corner(i, k)
			v := idx + 1
			switch {
			case hasUVs && hasNormals:
				fmt.Fprintf(bw, " %d/%d/%d", v, uvIndex[uv], v)
			case hasUVs:
				fmt.Fprintf(bw, " %d/%d", v, uvIndex[uv])
			case hasNormals:
				fmt.Fprintf(bw, " %d//%d", v, v)
			default:
				fmt.Fprintf(bw, " %d", v)
			}
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// WriteOBJFile writes a mesh to an OBJ file, creating parent directories.
func WriteOBJFile(path string, m *mesh.Mesh) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteOBJ(f, m); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
