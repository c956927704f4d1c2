package parser

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/reglet-dev/reglet-idb/domain/entities"
	"github.com/reglet-dev/reglet-idb/domain/ports"
)

// HclManifestParser implements ManifestParser for HCL:
//
//	name    = "greeter"
//	version = "1.0.0"
//
//	publish "IGreeter" "default" {
//	  export = "greet"
//	}
//
//	subscribe "sim::ITime" "default" {}
type HclManifestParser struct {
	filename string
}

// NewHclManifestParser creates a parser; filename only appears in diagnostics.
func NewHclManifestParser(filename string) ports.ManifestParser {
	if filename == "" {
		filename = "manifest.hcl"
	}
	return &HclManifestParser{filename: filename}
}

// Parse decodes HCL bytes into a Manifest.
func (p *HclManifestParser) Parse(data []byte) (*entities.Manifest, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, p.filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL manifest %s: %w", p.filename, diags)
	}

	var manifest entities.Manifest
	if diags := gohcl.DecodeBody(file.Body, nil, &manifest); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL manifest %s: %w", p.filename, diags)
	}
	return &manifest, nil
}
