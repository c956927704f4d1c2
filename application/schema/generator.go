// Package schema generates JSON schemas for the documents the host reads:
// module manifests and the host configuration file.
package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	domainerrors "github.com/reglet-dev/reglet-idb/domain/errors"
)

// GenerateSchema reflects v into an indented JSON Schema (Draft 2020-12).
// Field names follow the yaml tags, which is how both documents are written.
func GenerateSchema(v any) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
		FieldNameTag:   "yaml",
	}
	schema := reflector.Reflect(v)

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, &domainerrors.SchemaError{Type: typeName(v), Err: err}
	}
	return data, nil
}
