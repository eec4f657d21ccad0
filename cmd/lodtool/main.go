// lodtool builds simplified meshes and LOD chains from OBJ sources.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-lod/internal/assets"
	"github.com/Faultbox/midgard-lod/internal/config"
	"github.com/Faultbox/midgard-lod/internal/logger"
	"github.com/Faultbox/midgard-lod/pkg/formats"
	"github.com/Faultbox/midgard-lod/pkg/lod"
	"github.com/Faultbox/midgard-lod/pkg/mesh"
	"github.com/Faultbox/midgard-lod/pkg/simplify"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command, rest := args[0], args[1:]
	switch command {
	case "info":
		err = cmdInfo(rest)
	case "simplify":
		err = cmdSimplify(cfg, rest)
	case "lod":
		err = cmdLOD(cfg, rest)
	case "build":
		err = cmdBuild(cfg)
	case "watch":
		err = cmdWatch(cfg)
	case "demo":
		err = cmdDemo(cfg)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		if errors.Is(err, lod.ErrMissingSource) {
			logger.Fatal("lod source missing", zap.Error(err))
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`lodtool - mesh simplification and LOD chain builder

Usage:
  lodtool [flags] <command> [args]

Commands:
  info <file.obj>              Show mesh information
  simplify <in.obj> <out.obj>  Remove a fraction of vertices from a mesh
  lod <file.obj>               Build an LOD chain and write its levels
  build                        Build chains for every source in the assets dir
  watch                        Rebuild chains when sources change
  demo                         Build a chain from a generated sphere

Flags:
  -config <path>   Config file (yaml or toml)
  -ratio <f>       Fraction of vertices removed per pass
  -levels <n>      Number of LOD levels
  -distance <f>    Distance between LOD levels
  -independent     Simplify every level from the source mesh
  -workers <n>     Concurrent chain builds
  -assets <dir>    Source directory
  -out <dir>       Output directory
  -debug           Debug logging

Examples:
  lodtool info rock.obj
  lodtool -ratio 0.5 simplify rock.obj rock_half.obj
  lodtool -levels 4 -out ./lod lod rock.obj
  lodtool -assets ./models build`)
}

func lodOptions(cfg *config.Config) lod.Options {
	return lod.Options{
		DistanceFactor: cfg.LOD.DistanceFactor,
		Levels:         cfg.LOD.Levels,
		Ratio:          cfg.LOD.Ratio,
		Chained:        cfg.LOD.Chained,
		PreserveUVs:    cfg.Simplify.PreserveUVs,
		Logger:         logger.Named("lod"),
	}
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: lodtool info <file.obj>")
	}

	m, err := formats.ParseOBJFile(args[0])
	if err != nil {
		return err
	}

	b := m.Bounds()
	size := b.Size()
	fmt.Printf("File:      %s\n", args[0])
	fmt.Printf("Name:      %s\n", m.Name)
	fmt.Printf("Vertices:  %d\n", m.VertexCount())
	fmt.Printf("Triangles: %d\n", m.TriangleCount())
	fmt.Printf("UVs:       %v\n", m.HasUVs())
	fmt.Printf("Materials: %v\n", m.Materials)
	fmt.Printf("Size:      %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
	if m.VertexCount() < simplify.MinVertices {
		fmt.Printf("Note:      below %d vertices, simplification leaves it unchanged\n", simplify.MinVertices)
	}
	return nil
}

func cmdSimplify(cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: lodtool simplify <in.obj> <out.obj>")
	}

	src, err := formats.ParseOBJFile(args[0])
	if err != nil {
		return err
	}

	out, stats := simplify.Simplify(src, cfg.Simplify.Ratio,
		simplify.WithPreserveUVs(cfg.Simplify.PreserveUVs),
		simplify.WithLogger(logger.Named("simplify")))
	if err := formats.WriteOBJFile(args[1], out); err != nil {
		return err
	}

	fmt.Printf("Vertices:  %d -> %d (merged %d)\n", stats.InputVertices, stats.OutputVertices, stats.MergedVertices)
	fmt.Printf("Triangles: %d -> %d\n", stats.InputTriangles, stats.OutputTriangles)
	fmt.Printf("Collapses: %d of %d requested (%d isolated, %d skipped)\n",
		stats.Collapsed, stats.Requested, stats.Isolated, stats.Skipped)
	if stats.TooSmall {
		fmt.Printf("Mesh has fewer than %d vertices and was only cleaned\n", simplify.MinVertices)
	}
	return nil
}

func cmdLOD(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: lodtool lod <file.obj>")
	}

	mgr := assets.NewManager(lodOptions(cfg), cfg.Assets.Workers)
	name, err := mgr.LoadFile(args[0])
	if err != nil {
		return err
	}
	chain, err := mgr.Chain(name)
	if err != nil {
		return err
	}
	paths, err := mgr.WriteChain(cfg.Assets.OutputDir, name, chain)
	if err != nil {
		return err
	}

	printChain(chain)
	for _, p := range paths {
		fmt.Printf("  wrote %s\n", p)
	}
	return nil
}

func cmdBuild(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr := assets.NewManager(lodOptions(cfg), cfg.Assets.Workers)
	names, loadErr := mgr.LoadDir(ctx, cfg.Assets.Dir, cfg.Assets.Pattern)
	if len(names) == 0 {
		if loadErr != nil {
			return loadErr
		}
		return fmt.Errorf("no sources matching %q in %s", cfg.Assets.Pattern, cfg.Assets.Dir)
	}

	start := time.Now()
	chains, buildErr := mgr.BuildAll(ctx)
	for _, name := range names {
		chain, ok := chains[name]
		if !ok {
			continue
		}
		if _, err := mgr.WriteChain(cfg.Assets.OutputDir, name, chain); err != nil {
			return err
		}
		printChain(chain)
	}
	logger.Info("build finished",
		zap.Int("sources", len(names)),
		zap.Int("chains", len(chains)),
		zap.Duration("elapsed", time.Since(start)))

	if loadErr != nil {
		logger.Warn("some sources failed to load", zap.Error(loadErr))
	}
	return buildErr
}

func cmdWatch(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr := assets.NewManager(lodOptions(cfg), cfg.Assets.Workers)
	if _, err := mgr.LoadDir(ctx, cfg.Assets.Dir, cfg.Assets.Pattern); err != nil {
		logger.Warn("initial load incomplete", zap.Error(err))
	}
	chains, err := mgr.BuildAll(ctx)
	if err != nil {
		logger.Warn("initial build incomplete", zap.Error(err))
	}
	for name, chain := range chains {
		if _, err := mgr.WriteChain(cfg.Assets.OutputDir, name, chain); err != nil {
			return err
		}
	}

	debounce := time.Duration(cfg.Assets.DebounceMs) * time.Millisecond
	return mgr.Watch(ctx, cfg.Assets.Dir, cfg.Assets.Pattern, debounce,
		func(name string, chain *lod.Chain, err error) {
			if err != nil {
				return
			}
			if _, err := mgr.WriteChain(cfg.Assets.OutputDir, name, chain); err != nil {
				logger.Error("write failed", zap.String("asset", name), zap.Error(err))
				return
			}
			printChain(chain)
		})
}

func cmdDemo(cfg *config.Config) error {
	sphere := mesh.Icosphere(1, 3)
	sphere.Name = "demo-sphere"

	chain, err := lod.Build(sphere, lodOptions(cfg))
	if err != nil {
		return err
	}
	printChain(chain)

	fmt.Println()
	fmt.Println("Selection by distance:")
	step := cfg.LOD.DistanceFactor
	if step <= 0 {
		step = 1
	}
	for d := float32(0); d <= step*float32(len(chain.Levels)); d += step / 2 {
		level := chain.Select(d)
		fmt.Printf("  %8.1f  %d vertices\n", d, level.Mesh.VertexCount())
	}
	return nil
}

func printChain(chain *lod.Chain) {
	fmt.Printf("%s:\n", chain.Name)
	for i, level := range chain.Levels {
		fmt.Printf("  lod%d  from %-8.1f %6d vertices %6d triangles\n",
			i, level.Distance, level.Mesh.VertexCount(), level.Mesh.TriangleCount())
	}
}
