package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-idb/directory"
	"github.com/reglet-dev/reglet-idb/host"
)

func newRuntime(t *testing.T) *host.Runtime {
	t.Helper()
	ctx := context.Background()
	kind := directory.NewKind()
	rt, err := host.NewRuntime(ctx, host.WithKind(kind))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, rt.Close(ctx))
		require.Zero(t, kind.Stats().Live)
	})
	return rt
}
