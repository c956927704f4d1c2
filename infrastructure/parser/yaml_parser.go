// Package parser decodes module manifests from YAML or HCL.
package parser

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/reglet-idb/domain/entities"
	"github.com/reglet-dev/reglet-idb/domain/ports"
)

// YamlManifestParser implements ManifestParser for YAML.
type YamlManifestParser struct{}

// NewYamlManifestParser creates a new YamlManifestParser.
func NewYamlManifestParser() ports.ManifestParser {
	return &YamlManifestParser{}
}

// Parse unmarshals YAML bytes into a Manifest. Unknown fields are rejected.
func (p *YamlManifestParser) Parse(data []byte) (*entities.Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var manifest entities.Manifest
	if err := dec.Decode(&manifest); err != nil {
		return nil, fmt.Errorf("decode yaml manifest: %w", err)
	}
	return &manifest, nil
}
