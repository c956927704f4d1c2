// Command idbhost runs a host process around one interface directory: it
// installs the simulation modules, loads the WASM modules named in its
// configuration file and drives the simulation loop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	domainerrors "github.com/reglet-dev/reglet-idb/domain/errors"
)

func main() {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if ie, ok := domainerrors.AsInvariant(r); ok {
			fmt.Fprintf(os.Stderr, "idbhost: fatal: %v\n", ie)
			os.Exit(2)
		}
		panic(r)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1) //nolint:gocritic // stop already ran
	}
}
