// Package entities provides the core domain entities shared by the directory,
// the manager registry and the host runtime: interface keys, module identifiers,
// module manifests and the diagnostic snapshot types.
package entities
