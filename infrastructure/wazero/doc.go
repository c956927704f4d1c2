// Package wazero registers the host functions of a hostfuncs.HandlerRegistry
// as a wazero host module.
//
// Every registry handler is exported with the packed i64 ABI: the argument
// carries ptr<<32|len of a JSON request in guest memory, the result carries
// the same for a response the adapter wrote into memory obtained from the
// guest's allocate export. The calling module's instance name is recorded on
// the context with hostfuncs.WithCaller before the handler runs.
//
//	registry, err := hostfuncs.NewRegistry(
//	    hostfuncs.WithBundle(hostfuncs.DirectoryBundle(resolver)),
//	)
//	if err != nil {
//	    return err
//	}
//	err = wazero.RegisterWithRuntime(ctx, runtime, registry,
//	    wazero.WithCustomHandler(wazero.LogMessageHandler(logger)),
//	)
package wazero
