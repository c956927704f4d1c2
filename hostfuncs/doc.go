// Package hostfuncs implements the host side of the guest ABI as plain Go
// handlers. Nothing here depends on a WASM runtime; infrastructure/wazero
// adapts a HandlerRegistry into a wazero host module.
//
// The built-in DirectoryBundle exposes idb_invoke, which lets a guest module
// call an implementation it subscribed to through the interface directory.
package hostfuncs
