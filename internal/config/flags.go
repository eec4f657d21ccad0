package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagRatio       = flag.Float64("ratio", -1, "Fraction of vertices to remove per pass")
	flagLevels      = flag.Int("levels", 0, "Number of LOD levels")
	flagDistance    = flag.Float64("distance", -1, "Distance between LOD levels")
	flagIndependent = flag.Bool("independent", false, "Simplify every LOD level from the source mesh")
	flagWorkers     = flag.Int("workers", 0, "Concurrent LOD builds")
	flagAssets      = flag.String("assets", "", "Source mesh directory")
	flagOut         = flag.String("out", "", "Output directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments left after ParseFlags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagRatio >= 0 {
		cfg.Simplify.Ratio = *flagRatio
		cfg.LOD.Ratio = *flagRatio
	}
	if *flagLevels > 0 {
		cfg.LOD.Levels = *flagLevels
	}
	if *flagDistance >= 0 {
		cfg.LOD.DistanceFactor = float32(*flagDistance)
	}
	if *flagIndependent {
		cfg.LOD.Chained = false
	}
	if *flagWorkers > 0 {
		cfg.Assets.Workers = *flagWorkers
	}
	if *flagAssets != "" {
		cfg.Assets.Dir = *flagAssets
	}
	if *flagOut != "" {
		cfg.Assets.OutputDir = *flagOut
	}
}
