package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/reglet-dev/reglet-idb/domain/ports"
)

// ForPath picks a manifest parser from the file extension: .yaml, .yml or .hcl.
func ForPath(path string) (ports.ManifestParser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYamlManifestParser(), nil
	case ".hcl":
		return NewHclManifestParser(filepath.Base(path)), nil
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", filepath.Ext(path))
	}
}
