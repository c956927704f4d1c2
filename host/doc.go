// Package host runs a process that loads extension modules into a shared
// interface directory.
//
// A Runtime owns the host module's scope and a wazero Executor. Static Go
// modules are installed with Install; WASM modules are loaded from a manifest
// with LoadWasm or LoadFile. Either way the module's publications and
// subscriptions are registered first, then merged into the host's directory.
// Unload closes the module's scope, releases its registrar and only then
// closes the WASM instance.
//
// Guests reach implementations they subscribed to through the idb_invoke host
// function; the Runtime is the resolver behind it.
package host
