// Package validation checks manifests and host configuration with
// go-playground/validator struct tags plus a few cross-field rules.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/reglet-dev/reglet-idb/domain/entities"
	"github.com/reglet-dev/reglet-idb/domain/ports"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return v
}

// ValidateStruct checks v against its validate tags. Field names in the
// result follow the yaml tags, without the root type name.
func ValidateStruct(v any) (*entities.ValidationResult, error) {
	result := &entities.ValidationResult{Valid: true}

	err := validate.Struct(v)
	if err == nil {
		return result, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("validate %T: %w", v, err)
	}
	for _, fe := range verrs {
		result.Add(fieldPath(fe.Namespace()), describe(fe))
	}
	return result, nil
}

// ManifestValidator implements ports.ManifestValidator.
type ManifestValidator struct{}

// NewManifestValidator creates a manifest validator.
func NewManifestValidator() ports.ManifestValidator {
	return &ManifestValidator{}
}

// Validate checks field constraints, then rejects duplicate publications,
// duplicate subscriptions and subscriptions to the module's own publications.
func (v *ManifestValidator) Validate(manifest *entities.Manifest) (*entities.ValidationResult, error) {
	if manifest == nil {
		return nil, errors.New("manifest is nil")
	}

	result, err := ValidateStruct(manifest)
	if err != nil {
		return nil, err
	}

	published := make(map[entities.InterfaceKey]int, len(manifest.Publishes))
	for i, p := range manifest.Publishes {
		if first, dup := published[p.Key()]; dup {
			result.Add(fmt.Sprintf("publishes[%d]", i),
				fmt.Sprintf("%s already published by publishes[%d]", p.Key(), first))
			continue
		}
		published[p.Key()] = i
	}

	subscribed := make(map[entities.InterfaceKey]int, len(manifest.Subscribes))
	for i, k := range manifest.Subscribes {
		field := fmt.Sprintf("subscribes[%d]", i)
		if first, dup := subscribed[k]; dup {
			result.Add(field, fmt.Sprintf("%s already subscribed by subscribes[%d]", k, first))
			continue
		}
		subscribed[k] = i
		if _, own := published[k]; own {
			result.Add(field, fmt.Sprintf("%s is published by the same module", k))
		}
	}

	return result, nil
}

func fieldPath(namespace string) string {
	// Drop the root struct name: "Manifest.publishes[0].export" -> "publishes[0].export".
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "excludes":
		return fmt.Sprintf("must not contain %q", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "semver":
		return "must be a semantic version"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
