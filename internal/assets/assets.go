// Package assets loads source meshes and turns them into LOD chains.
package assets

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/midgard-lod/internal/logger"
	"github.com/Faultbox/midgard-lod/pkg/formats"
	"github.com/Faultbox/midgard-lod/pkg/lod"
	"github.com/Faultbox/midgard-lod/pkg/mesh"
)

// ErrNotLoaded is returned when a chain is requested for an asset whose
// source mesh was never loaded. It wraps lod.ErrMissingSource.
var ErrNotLoaded = fmt.Errorf("asset not loaded: %w", lod.ErrMissingSource)

// Manager owns source meshes and the LOD chains built from them.
// Each chain build works on its own graphs, so builds for different
// assets run concurrently.
type Manager struct {
	opts    lod.Options
	workers int
	log     *zap.Logger

	mu      sync.RWMutex
	sources map[string]*mesh.Mesh
	chains  *Cache[*lod.Chain]
}

// NewManager creates a new asset manager. workers bounds concurrent
// chain builds.
func NewManager(opts lod.Options, workers int) *Manager {
	if workers < 1 {
		workers = 1
	}
	log := logger.Named("assets")
	if opts.Logger == nil {
		opts.Logger = log.Named("lod")
	}
	return &Manager{
		opts:    opts,
		workers: workers,
		log:     log,
		sources: make(map[string]*mesh.Mesh),
		chains:  NewCache[*lod.Chain](),
	}
}

// NameFor returns the asset name for a source file path.
func NameFor(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// Add registers a source mesh under a name, replacing any previous
// source and dropping its cached chain.
func (m *Manager) Add(name string, src *mesh.Mesh) {
	m.mu.Lock()
	m.sources[name] = src
	m.mu.Unlock()
	m.chains.Delete(name)
}

// Remove forgets a source and its chain.
func (m *Manager) Remove(name string) {
	m.mu.Lock()
	delete(m.sources, name)
	m.mu.Unlock()
	m.chains.Delete(name)
}

// LoadFile parses a mesh file and registers it under its file name.
func (m *Manager) LoadFile(path string) (string, error) {
	src, err := formats.ParseFile(path)
	if err != nil {
		return "", fmt.Errorf("loading asset %s: %w", path, err)
	}
	name := NameFor(path)
	m.Add(name, src)
	m.log.Debug("loaded source mesh",
		zap.String("asset", name),
		zap.Int("vertices", src.VertexCount()),
		zap.Int("triangles", src.TriangleCount()))
	return name, nil
}

// LoadDir loads every file in dir matching pattern, except generated
// level files. Files are parsed concurrently; all failures are reported
// together.
func (m *Manager) LoadDir(ctx context.Context, dir, pattern string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	paths = slices.DeleteFunc(paths, IsLevelFile)
	sort.Strings(paths)

	var (
		errMu  sync.Mutex
		errs   error
		names  = make([]string, len(paths))
		loaded = make([]bool, len(paths))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			name, err := m.LoadFile(path)
			if err != nil {
				errMu.Lock()
				errs = multierr.Append(errs, err)
				errMu.Unlock()
				return nil
			}
			names[i], loaded[i] = name, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(paths))
	for i, ok := range loaded {
		if ok {
			out = append(out, names[i])
		}
	}
	return out, errs
}

// Names returns the registered asset names in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.sources))
	for name := range m.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source returns the registered source mesh for name.
func (m *Manager) Source(name string) (*mesh.Mesh, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src, ok := m.sources[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNotLoaded)
	}
	return src, nil
}

// Chain returns the LOD chain for name, building it on first use.
func (m *Manager) Chain(name string) (*lod.Chain, error) {
	if chain, ok := m.chains.Get(name); ok {
		return chain, nil
	}
	return m.Rebuild(name)
}

// Rebuild builds the chain for name from its current source, replacing
// any cached chain.
func (m *Manager) Rebuild(name string) (*lod.Chain, error) {
	src, err := m.Source(name)
	if err != nil {
		return nil, err
	}

	opts := m.opts
	if opts.Material == "" && len(src.Materials) > 0 {
		opts.Material = src.Materials[0]
	}

	chain, err := lod.Build(src, opts)
	if err != nil {
		return nil, fmt.Errorf("building lod chain for %q: %w", name, err)
	}
	m.chains.Set(name, chain)

	m.log.Info("built lod chain",
		zap.String("asset", name),
		zap.Ints("vertices", chain.VertexCounts()))
	return chain, nil
}

// BuildAll builds chains for every registered asset, at most workers at
// a time. A failing asset does not stop the others; all failures are
// returned together. Cancelling ctx stops scheduling new builds.
func (m *Manager) BuildAll(ctx context.Context) (map[string]*lod.Chain, error) {
	names := m.Names()

	var (
		mu     sync.Mutex
		errs   error
		chains = make(map[string]*lod.Chain, len(names))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for _, name := range names {
		name := name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			chain, err := m.Rebuild(name)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierr.Append(errs, err)
				return nil
			}
			chains[name] = chain
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return chains, err
	}
	return chains, errs
}

// CacheStats returns chain cache hits and misses.
func (m *Manager) CacheStats() (hits, misses int) {
	return m.chains.Stats()
}

// IsNotLoaded reports whether err means a source was missing.
func IsNotLoaded(err error) bool {
	return errors.Is(err, lod.ErrMissingSource)
}
