package mesh

import "github.com/Faultbox/midgard-lod/pkg/math"

// Icosphere builds a closed sphere by subdividing an icosahedron.
// Subdivision n yields 10*4^n+2 vertices (3 => 642).
func Icosphere(radius float32, subdivisions int) *Mesh {
	const t = 1.618034 // golden ratio

	positions := []math.Vec3{
		{X: -1, Y: t, Z: 0}, {X: 1, Y: t, Z: 0}, {X: -1, Y: -t, Z: 0}, {X: 1, Y: -t, Z: 0},
		{X: 0, Y: -1, Z: t}, {X: 0, Y: 1, Z: t}, {X: 0, Y: -1, Z: -t}, {X: 0, Y: 1, Z: -t},
		{X: t, Y: 0, Z: -1}, {X: t, Y: 0, Z: 1}, {X: -t, Y: 0, Z: -1}, {X: -t, Y: 0, Z: 1},
	}
	for i := range positions {
		positions[i] = positions[i].Normalize()
	}

	tris := [][3]uint32{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}

	for s := 0; s < subdivisions; s++ {
		midpoints := make(map[[2]uint32]uint32)
		midpoint := func(a, b uint32) uint32 {
			key := [2]uint32{a, b}
			if a > b {
				key = [2]uint32{b, a}
			}
			if idx, ok := midpoints[key]; ok {
				return idx
			}
			idx := uint32(len(positions))
			positions = append(positions, positions[a].Add(positions[b]).Normalize())
			midpoints[key] = idx
			return idx
		}

		next := make([][3]uint32, 0, len(tris)*4)
		for _, tri := range tris {
			a, b, c := tri[0], tri[1], tri[2]
			ab, bc, ca := midpoint(a, b), midpoint(b, c), midpoint(c, a)
			next = append(next,
				[3]uint32{a, ab, ca},
				[3]uint32{b, bc, ab},
				[3]uint32{c, ca, bc},
				[3]uint32{ab, bc, ca},
			)
		}
		tris = next
	}

	m := &Mesh{Name: "icosphere"}
	m.Positions = make([]math.Vec3, len(positions))
	for i, p := range positions {
		m.Positions[i] = p.Scale(radius)
	}
	m.Faces = make([]Face, len(tris))
	for i, tri := range tris {
		m.Faces[i] = Face{Indices: tri}
	}
	m.ComputeVertexNormals()
	return m
}

// Grid builds an open, flat grid of cols x rows cells in the XZ plane,
// centred on the origin and facing +Y, with UVs spanning [0,1].
func Grid(cols, rows int, size float32) *Mesh {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	m := &Mesh{Name: "grid"}
	stride := uint32(cols + 1)
	for j := 0; j <= rows; j++ {
		for i := 0; i <= cols; i++ {
			m.Positions = append(m.Positions, math.Vec3{
				X: float32(i)*size/float32(cols) - size/2,
				Z: float32(j)*size/float32(rows) - size/2,
			})
		}
	}

	uv := func(i, j int) math.Vec2 {
		return math.Vec2{X: float32(i) / float32(cols), Y: float32(j) / float32(rows)}
	}

	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			a := uint32(j)*stride + uint32(i)
			b := a + stride
			c := a + 1
			d := b + 1
			m.Faces = append(m.Faces, Face{Indices: [3]uint32{a, b, c}}, Face{Indices: [3]uint32{c, b, d}})
			m.UVs = append(m.UVs,
				[3]math.Vec2{uv(i, j), uv(i, j+1), uv(i+1, j)},
				[3]math.Vec2{uv(i+1, j), uv(i, j+1), uv(i+1, j+1)},
			)
		}
	}
	m.ComputeVertexNormals()
	return m
}

// Quad builds a single square split into two triangles.
func Quad(size float32) *Mesh {
	m := Grid(1, 1, size)
	m.Name = "quad"
	return m
}
