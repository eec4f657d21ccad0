// Package simplify reduces the vertex count of triangle meshes by greedy
// edge collapse.
//
// A pass builds an adjacency Graph from the input, repeatedly collapses
// the vertex with the lowest cached cost onto its cheapest neighbor and
// flattens the result back into a mesh. Costs combine edge length, local
// curvature, a boundary penalty and a texture seam penalty.
package simplify

import (
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-lod/pkg/mesh"
)

// MinVertices is the smallest input that gets simplified. Smaller meshes
// are returned unchanged since low-poly shapes fall apart quickly.
const MinVertices = 153

// Stats describes the outcome of one Simplify call.
type Stats struct {
	InputVertices   int
	MergedVertices  int // vertex count after merging coincident positions
	OutputVertices  int
	InputTriangles  int
	OutputTriangles int
	Requested       int // vertices asked to be removed
	Collapsed       int
	Isolated        int
	Skipped         int
	Exhausted       bool // ran out of candidates before Requested was met
	TooSmall        bool // input below MinVertices, returned as is
	Invalid         bool // input failed mesh.Validate, returned as is
	Duration        time.Duration
}

// Removed returns how many vertices the pass removed, merging included.
func (s Stats) Removed() int {
	return s.InputVertices - s.OutputVertices
}

type options struct {
	preserveUVs bool
	log         *zap.Logger
	onCollapse  func(Collapse)
}

// Option configures Simplify.
type Option func(*options)

// WithPreserveUVs enables or disables texture seam tracking. Enabled by default.
func WithPreserveUVs(preserve bool) Option {
	return func(o *options) { o.preserveUVs = preserve }
}

// WithLogger sets the logger used for pass summaries.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithCollapseHook registers a callback invoked after every removal.
func WithCollapseHook(fn func(Collapse)) Option {
	return func(o *options) { o.onCollapse = fn }
}

// TargetRemoval returns how many vertices a ratio asks to remove from a
// mesh with n vertices. The ratio is clamped to [0, 1].
func TargetRemoval(n int, ratio float64) int {
	ratio = gomath.Max(0, gomath.Min(1, ratio))
	return int(gomath.Round(float64(n) * ratio))
}

// Simplify removes roughly ratio of the vertices of m and returns the
// reduced mesh. m itself is never modified. Meshes with fewer than
// MinVertices vertices come back as an identical copy, and so do meshes
// that fail mesh.Validate, with Stats.Invalid set.
func Simplify(m *mesh.Mesh, ratio float64, opts ...Option) (*mesh.Mesh, Stats) {
	o := options{preserveUVs: true, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	if m == nil {
		return nil, Stats{}
	}

	start := time.Now()
	stats := Stats{
		InputVertices:  m.VertexCount(),
		InputTriangles: m.TriangleCount(),
	}

	if err := m.Validate(); err != nil {
		stats.Invalid = true
		stats.MergedVertices = stats.InputVertices
		stats.OutputVertices = stats.InputVertices
		stats.OutputTriangles = stats.InputTriangles
		o.log.Warn("invalid mesh left unsimplified",
			zap.String("mesh", m.Name),
			zap.Error(err))
		return m.Clone(), stats
	}

	if m.VertexCount() < MinVertices {
		stats.TooSmall = true
		stats.MergedVertices = stats.InputVertices
		stats.OutputVertices = stats.InputVertices
		stats.OutputTriangles = stats.InputTriangles
		o.log.Debug("mesh below simplification threshold",
			zap.String("mesh", m.Name),
			zap.Int("vertices", stats.InputVertices),
			zap.Int("threshold", MinVertices))
		return m.Clone(), stats
	}

	g := Build(m, o.preserveUVs)
	stats.MergedVertices = g.VertexCount()
	stats.Requested = TargetRemoval(g.VertexCount(), ratio)

	res := g.Decimate(stats.Requested, o.onCollapse)
	stats.Collapsed = res.Collapsed
	stats.Isolated = res.Isolated
	stats.Skipped = res.Skipped
	stats.Exhausted = res.Exhausted

	out := g.Mesh()
	out.Name = m.Name
	stats.OutputVertices = out.VertexCount()
	stats.OutputTriangles = out.TriangleCount()
	stats.Duration = time.Since(start)

	if res.Exhausted {
		o.log.Debug("ran out of collapsible vertices",
			zap.String("mesh", m.Name),
			zap.Int("requested", stats.Requested),
			zap.Int("removed", res.Collapsed+res.Isolated))
	}
	o.log.Debug("simplified mesh",
		zap.String("mesh", m.Name),
		zap.Int("verticesIn", stats.InputVertices),
		zap.Int("verticesOut", stats.OutputVertices),
		zap.Int("trianglesIn", stats.InputTriangles),
		zap.Int("trianglesOut", stats.OutputTriangles),
		zap.Bool("uvs", g.TracksUVs()),
		zap.Duration("took", stats.Duration))

	return out, stats
}
