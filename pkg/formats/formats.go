// Package formats provides readers and writers for mesh file formats.
package formats

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/midgard-lod/pkg/mesh"
)

// ErrUnsupportedFormat is returned for files no reader handles.
var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// Supported reports whether a reader exists for path's extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return true
	}
	return false
}

// ParseFile reads a mesh file, picking the reader by extension.
func ParseFile(path string) (*mesh.Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return ParseOBJFile(path)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}
