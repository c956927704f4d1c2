package ports

import "github.com/reglet-dev/reglet-idb/domain/entities"

// ManifestParser parses raw manifest bytes into a Manifest.
type ManifestParser interface {
	// Parse unmarshals the manifest document.
	Parse(data []byte) (*entities.Manifest, error)
}
