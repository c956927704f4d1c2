package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-idb/domain/entities"
)

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestGenerateSchema_Manifest(t *testing.T) {
	data, err := GenerateSchema(entities.Manifest{})
	require.NoError(t, err)

	doc := decode(t, data)
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	for _, field := range []string{"name", "version", "description", "publishes", "subscribes"} {
		assert.Contains(t, props, field)
	}
	assert.ElementsMatch(t, []any{"name", "version"}, doc["required"])
	assert.Contains(t, string(data), `"maxLength": 127`)
}

func TestGenerateSchema_YamlFieldNames(t *testing.T) {
	type sample struct {
		MaxFrames int `yaml:"max_frames" json:"maxFrames"`
	}

	data, err := GenerateSchema(sample{})
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_frames")
	assert.NotContains(t, string(data), "maxFrames")
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register("manifest", entities.Manifest{}))
	require.NoError(t, reg.Register("key", entities.InterfaceKey{}))

	err := reg.Register("manifest", entities.Manifest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	assert.Equal(t, []string{"key", "manifest"}, reg.List())

	s, ok := reg.GetSchema("key")
	require.True(t, ok)
	assert.Contains(t, s, "instance")

	_, ok = reg.GetSchema("missing")
	assert.False(t, ok)
}

func TestRegistry_Lenient(t *testing.T) {
	reg := NewRegistry(WithStrictMode(false))

	require.NoError(t, reg.Register("manifest", entities.Manifest{}))
	require.NoError(t, reg.Register("manifest", entities.Manifest{}))
	assert.Len(t, reg.List(), 1)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "Manifest", typeName(&entities.Manifest{}))
	assert.Equal(t, "nil", typeName(nil))
}
