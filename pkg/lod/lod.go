// Package lod builds distance-keyed level-of-detail chains out of
// repeated simplification passes.
package lod

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-lod/pkg/mesh"
	"github.com/Faultbox/midgard-lod/pkg/simplify"
)

// ErrMissingSource is returned when a chain is requested for a mesh that
// has not been loaded. It indicates a sequencing bug in the caller.
var ErrMissingSource = errors.New("lod source mesh not loaded")

// ErrInvalidOptions is returned for out-of-range build options.
var ErrInvalidOptions = errors.New("invalid lod options")

// Defaults used by DefaultOptions.
const (
	DefaultLevels         = 3
	DefaultRatio          = 0.875
	DefaultDistanceFactor = 75.0
)

// Options controls chain construction.
type Options struct {
	Material       string  // Opaque material name copied onto the chain
	DistanceFactor float32 // Level i becomes visible at i * DistanceFactor
	Levels         int
	Ratio          float64 // Fraction of vertices removed per level
	// Chained simplifies each level from the previous one. When false
	// every level is simplified from the base mesh at a cumulative ratio.
	Chained     bool
	PreserveUVs bool
	Logger      *zap.Logger
}

// DefaultOptions returns the options used by the scene viewer.
func DefaultOptions() Options {
	return Options{
		DistanceFactor: DefaultDistanceFactor,
		Levels:         DefaultLevels,
		Ratio:          DefaultRatio,
		Chained:        true,
		PreserveUVs:    true,
	}
}

// Level is one mesh of a chain with the distance from which it is shown.
type Level struct {
	Mesh     *mesh.Mesh
	Distance float32
	Stats    simplify.Stats
}

// Chain is an ordered set of levels, nearest first.
type Chain struct {
	Name     string
	Material string
	Levels   []Level
	Bounds   mesh.Bounds // of the base mesh
}

// Validate checks that options are usable.
func (o Options) Validate() error {
	if o.Levels < 1 {
		return fmt.Errorf("levels %d < 1: %w", o.Levels, ErrInvalidOptions)
	}
	if o.Ratio < 0 || o.Ratio > 1 {
		return fmt.Errorf("ratio %v outside [0,1]: %w", o.Ratio, ErrInvalidOptions)
	}
	if o.DistanceFactor < 0 {
		return fmt.Errorf("distance factor %v < 0: %w", o.DistanceFactor, ErrInvalidOptions)
	}
	return nil
}

// Build runs opts.Levels simplification passes over base and pairs each
// result with its visibility distance.
func Build(base *mesh.Mesh, opts Options) (*Chain, error) {
	if base == nil || base.VertexCount() == 0 {
		return nil, ErrMissingSource
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("lod source %q: %w", base.Name, err)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	chain := &Chain{
		Name:     base.Name,
		Material: opts.Material,
		Levels:   make([]Level, 0, opts.Levels),
		Bounds:   base.Bounds(),
	}

	simplifyOpts := []simplify.Option{
		simplify.WithPreserveUVs(opts.PreserveUVs),
		simplify.WithLogger(log),
	}

	current := base
	for i := 0; i < opts.Levels; i++ {
		src, ratio := current, opts.Ratio
		if !opts.Chained {
			src, ratio = base, CumulativeRatio(opts.Ratio, i+1)
		}

		out, stats := simplify.Simplify(src, ratio, simplifyOpts...)
		chain.Levels = append(chain.Levels, Level{
			Mesh:     out,
			Distance: float32(i) * opts.DistanceFactor,
			Stats:    stats,
		})

		log.Debug("built lod level",
			zap.String("mesh", base.Name),
			zap.Int("level", i),
			zap.Float32("distance", float32(i)*opts.DistanceFactor),
			zap.Int("verticesIn", stats.InputVertices),
			zap.Int("verticesOut", stats.OutputVertices))
		current = out
	}

	return chain, nil
}

// CumulativeRatio returns the fraction removed after n chained passes
// that each remove ratio of what is left.
func CumulativeRatio(ratio float64, n int) float64 {
	keep := 1.0
	for i := 0; i < n; i++ {
		keep *= 1 - ratio
	}
	return 1 - keep
}

// Select returns the level to draw at the given camera distance: the
// farthest level whose distance threshold has been reached.
func (c *Chain) Select(distance float32) *Level {
	if c == nil || len(c.Levels) == 0 {
		return nil
	}
	// Levels are sorted by Distance; find the first one beyond reach.
	i := sort.Search(len(c.Levels), func(i int) bool {
		return c.Levels[i].Distance > distance
	})
	if i == 0 {
		return &c.Levels[0]
	}
	return &c.Levels[i-1]
}

// SelectFor picks a level for a camera position, measuring the distance
// to the centre of the base mesh placed by the model matrix.
func (c *Chain) SelectFor(camera mgl32.Vec3, model mgl32.Mat4) *Level {
	if c == nil {
		return nil
	}
	center := c.Bounds.Center()
	world := mgl32.TransformCoordinate(mgl32.Vec3{center.X, center.Y, center.Z}, model)
	return c.Select(world.Sub(camera).Len())
}

// VertexCounts returns the vertex count of each level, nearest first.
func (c *Chain) VertexCounts() []int {
	counts := make([]int, len(c.Levels))
	for i, l := range c.Levels {
		counts[i] = l.Mesh.VertexCount()
	}
	return counts
}
