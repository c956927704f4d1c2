package ports

import "github.com/reglet-dev/reglet-idb/domain/entities"

// ManifestValidator checks a parsed manifest for structural errors.
type ManifestValidator interface {
	Validate(manifest *entities.Manifest) (*entities.ValidationResult, error)
}
