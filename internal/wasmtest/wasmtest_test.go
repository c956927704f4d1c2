package wasmtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
)

func TestLEB128(t *testing.T) {
	assert.Equal(t, []byte{0x00}, uleb(0))
	assert.Equal(t, []byte{0xe5, 0x8e, 0x26}, uleb(624485))
	assert.Equal(t, []byte{0x80, 0x08}, sleb(1024))
	assert.Equal(t, []byte{0x40}, sleb(-64))
	assert.Equal(t, []byte{0xc0, 0x00}, sleb(64))
}

func TestModule_Compiles(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, Module(
		Export{Name: "echo"},
		Export{Name: "relay", Behavior: Invoke},
		Export{Name: "say", Behavior: Log},
		Export{Name: "crash", Behavior: Trap},
	))
	require.NoError(t, err)

	exports := compiled.ExportedFunctions()
	for _, name := range []string{"allocate", "echo", "relay", "say", "crash"} {
		assert.Contains(t, exports, name)
	}
	assert.Len(t, compiled.ImportedFunctions(), 2)
}
