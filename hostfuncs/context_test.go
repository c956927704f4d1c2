package hostfuncs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-idb/domain/entities"
)

func TestNewHostContext(t *testing.T) {
	hc := NewHostContext(context.Background(), InvokeFunction)

	require.NotNil(t, hc)
	assert.Equal(t, InvokeFunction, hc.FunctionName())

	_, ok := hc.Caller()
	assert.False(t, ok)
}

func TestHostContext_SetGetValue(t *testing.T) {
	hc := NewHostContext(context.Background(), "test_func")

	_, ok := hc.GetValue("key1")
	assert.False(t, ok)

	hc.SetValue("key1", "value1")
	hc.SetValue("key2", 42)

	val, ok := hc.GetValue("key1")
	assert.True(t, ok)
	assert.Equal(t, "value1", val)

	val, ok = hc.GetValue("key2")
	assert.True(t, ok)
	assert.Equal(t, 42, val)
}

func TestHostContext_ImplementsContext(t *testing.T) {
	var ctx context.Context = NewHostContext(context.Background(), InvokeFunction)

	assert.Nil(t, ctx.Done())
	assert.Nil(t, ctx.Err())
	assert.Nil(t, ctx.Value("nonexistent"))
}

func TestHostContextFrom(t *testing.T) {
	t.Run("wraps plain context", func(t *testing.T) {
		hc := HostContextFrom(context.Background(), InvokeFunction)
		assert.Equal(t, InvokeFunction, hc.FunctionName())
	})

	t.Run("returns existing HostContext unchanged", func(t *testing.T) {
		original := NewHostContext(context.Background(), "original")
		original.SetValue("marker", true)

		returned := HostContextFrom(original, "different")

		assert.Equal(t, "original", returned.FunctionName())
		val, ok := returned.GetValue("marker")
		assert.True(t, ok)
		assert.Equal(t, true, val)
	})
}

func TestCaller(t *testing.T) {
	tests := []struct {
		name   string
		ctx    context.Context
		want   entities.ModuleID
		wantOK bool
	}{
		{"absent", context.Background(), "", false},
		{"empty", WithCaller(context.Background(), ""), "", false},
		{"set", WithCaller(context.Background(), "greeter"), "greeter", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CallerFrom(tt.ctx)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)

			got, ok = NewHostContext(tt.ctx, InvokeFunction).Caller()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
