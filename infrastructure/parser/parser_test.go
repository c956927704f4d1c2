package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-idb/domain/entities"
)

func expectedManifest() *entities.Manifest {
	return &entities.Manifest{
		Name:        "greeter",
		Version:     "1.0.0",
		Description: "says hello",
		Publishes: []entities.Publication{
			{Interface: "IGreeter", Instance: "default", Class: "WasmGreeter", Export: "greet"},
			{Interface: "IGreeter", Instance: "loud", Export: "shout"},
		},
		Subscribes: []entities.InterfaceKey{entities.Key("sim::ITime", "default")},
	}
}

func TestYamlManifestParser(t *testing.T) {
	src := `
name: greeter
version: 1.0.0
description: says hello
publishes:
  - interface: IGreeter
    instance: default
    class: WasmGreeter
    export: greet
  - interface: IGreeter
    instance: loud
    export: shout
subscribes:
  - interface: "sim::ITime"
    instance: default
`
	got, err := NewYamlManifestParser().Parse([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, expectedManifest(), got)
}

func TestYamlManifestParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", "name: [unterminated"},
		{"unknown field", "name: greeter\ncapabilities: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewYamlManifestParser().Parse([]byte(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestHclManifestParser(t *testing.T) {
	src := `
name        = "greeter"
version     = "1.0.0"
description = "says hello"

publish "IGreeter" "default" {
  class  = "WasmGreeter"
  export = "greet"
}

publish "IGreeter" "loud" {
  export = "shout"
}

subscribe "sim::ITime" "default" {}
`
	got, err := NewHclManifestParser("greeter.hcl").Parse([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, expectedManifest(), got)
}

func TestHclManifestParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"syntax", `name = "x`, "failed to parse"},
		{"missing version", `name = "x"`, "failed to decode"},
		{"missing export", "name = \"x\"\nversion = \"1.0.0\"\npublish \"I\" \"d\" {}\n", "failed to decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHclManifestParser("").Parse([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    any
		wantErr bool
	}{
		{"mods/greeter.yaml", &YamlManifestParser{}, false},
		{"greeter.YML", &YamlManifestParser{}, false},
		{"/etc/idb/greeter.hcl", &HclManifestParser{filename: "greeter.hcl"}, false},
		{"greeter.json", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ForPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
