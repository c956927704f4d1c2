// Package manager keeps exactly one live record per kind of process-wide
// registry, even when the items in it come from several independently built
// modules.
//
// Every module owns one Registrar per Kind. The registrar counts the items
// its module has added and lazily attaches to a Record the first time one is
// added. Records keep a list of the registrars referencing them; when the last
// registrar detaches, the record is destroyed. When the host loads a module it
// calls Kind.Merge, which moves the module's items into the host's record and
// re-points every registrar of the module's record at the host's.
//
// All multi-step sequences run under the Kind's mutex.
package manager
