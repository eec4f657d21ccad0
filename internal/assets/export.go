package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-lod/pkg/formats"
	"github.com/Faultbox/midgard-lod/pkg/lod"
)

var levelSuffix = regexp.MustCompile(`_lod[0-9]+$`)

// LevelFileName returns the output file name for level i of an asset.
func LevelFileName(name string, i int) string {
	return fmt.Sprintf("%s_lod%d.obj", name, i)
}

// IsLevelFile reports whether path looks like a level written by
// WriteChain. Such files are never loaded as sources.
func IsLevelFile(path string) bool {
	return levelSuffix.MatchString(NameFor(path))
}

// WriteChain writes every level of chain into dir as OBJ files and
// returns the written paths.
func (m *Manager) WriteChain(dir, name string, chain *lod.Chain) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	paths := make([]string, 0, len(chain.Levels))
	for i, level := range chain.Levels {
		path := filepath.Join(dir, LevelFileName(name, i))
		if err := formats.WriteOBJFile(path, level.Mesh); err != nil {
			return paths, fmt.Errorf("writing level %d of %q: %w", i, name, err)
		}
		paths = append(paths, path)
	}

	m.log.Debug("wrote lod chain",
		zap.String("asset", name),
		zap.String("dir", dir),
		zap.Int("levels", len(paths)))
	return paths, nil
}
