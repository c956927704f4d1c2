package validation

import (
	"fmt"
	"strings"

	"github.com/reglet-dev/reglet-idb/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-idb/domain/errors"
)

// Err converts an invalid result to a *errors.ConfigError naming the first
// failing field; a valid result yields nil.
func Err(res *entities.ValidationResult) error {
	if res == nil || res.Valid {
		return nil
	}
	lines := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		lines = append(lines, fmt.Sprintf("%s %s", e.Field, e.Message))
	}
	return &domainerrors.ConfigError{
		Field: res.Errors[0].Field,
		Err:   fmt.Errorf("%s", strings.Join(lines, "; ")),
	}
}
