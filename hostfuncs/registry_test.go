package hostfuncs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopHandler(context.Context, []byte) ([]byte, error) { return nil, nil }

func TestNewRegistry_Empty(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	assert.Empty(t, reg.Names())
}

func TestNewRegistry_Errors(t *testing.T) {
	tests := []struct {
		name    string
		opts    []RegistryOption
		wantErr string
	}{
		{
			name:    "duplicate",
			opts:    []RegistryOption{WithByteHandler("x", nopHandler), WithByteHandler("x", nopHandler)},
			wantErr: "duplicate handler name",
		},
		{
			name:    "empty name",
			opts:    []RegistryOption{WithByteHandler("", nopHandler)},
			wantErr: "cannot be empty",
		},
		{
			name:    "nil handler",
			opts:    []RegistryOption{WithByteHandler("x", nil)},
			wantErr: "is nil",
		},
		{
			name: "bundle collides with handler",
			opts: []RegistryOption{
				WithByteHandler(InvokeFunction, nopHandler),
				WithBundle(DirectoryBundle(&fakeResolver{})),
			},
			wantErr: "duplicate handler name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistry(tt.opts...)
			require.Error(t, err)
			assert.Nil(t, reg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHandlerRegistry_Invoke(t *testing.T) {
	reg, err := NewRegistry(
		WithByteHandler("echo", func(ctx context.Context, payload []byte) ([]byte, error) {
			return append([]byte("echo:"), payload...), nil
		}),
	)
	require.NoError(t, err)

	t.Run("found handler", func(t *testing.T) {
		resp, err := reg.Invoke(context.Background(), "echo", []byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, "echo:hello", string(resp))
	})

	t.Run("not found handler", func(t *testing.T) {
		resp, err := reg.Invoke(context.Background(), "unknown", nil)
		require.NoError(t, err)

		errResp, ok := IsErrorResponse(resp)
		require.True(t, ok)
		assert.Equal(t, "NOT_FOUND", errResp.Error)
		assert.Equal(t, 404, errResp.Code)
	})
}

func TestHandlerRegistry_Names(t *testing.T) {
	reg, err := NewRegistry(
		WithByteHandler("zebra", nopHandler),
		WithByteHandler("alpha", nopHandler),
		WithByteHandler("middle", nopHandler),
	)
	require.NoError(t, err)

	names := reg.Names()
	assert.Equal(t, []string{"alpha", "middle", "zebra"}, names)
	assert.True(t, reg.Has("alpha"))
	assert.False(t, reg.Has("beta"))

	names[0] = "mutated"
	assert.Equal(t, "alpha", reg.Names()[0])
}

func TestHandlerRegistry_Invoke_SetsHostContext(t *testing.T) {
	var captured string
	reg, err := NewRegistry(
		WithByteHandler("test_func", func(ctx context.Context, payload []byte) ([]byte, error) {
			if hc, ok := ctx.(HostContext); ok {
				captured = hc.FunctionName()
			}
			return nil, nil
		}),
	)
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), "test_func", nil)
	require.NoError(t, err)
	assert.Equal(t, "test_func", captured)
}

func TestWithHandler_Typed(t *testing.T) {
	type doubleReq struct {
		Value int `json:"value"`
	}
	type doubleResp struct {
		Doubled int `json:"doubled"`
	}

	reg, err := NewRegistry(
		WithHandler("double", func(ctx context.Context, req doubleReq) doubleResp {
			return doubleResp{Doubled: req.Value * 2}
		}),
	)
	require.NoError(t, err)

	resp, err := reg.Invoke(context.Background(), "double", []byte(`{"value":21}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"doubled":42}`, string(resp))
}
