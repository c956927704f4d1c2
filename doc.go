// Package idb is the consumer API of the interface directory.
//
// A module obtains a Scope bound to its module id, publishes implementations
// through it and subscribes to the interfaces it needs:
//
//	scope := idb.NewScope("greeter", idb.WithContext(ctx))
//	defer scope.Close()
//
//	scope.Publish(entities.Key("IGreeter", "default"), "", &greeter{})
//	clock := idb.Subscribe[sim.Time](scope, sim.TimeKey)
//
//	if t, ok := clock.Get(); ok {
//		elapsed := t.AppTime()
//		...
//	}
//
// A subscription always resolves to the implementation currently active for
// its key, including after the publishing module is merged into the host or
// unloaded. Closing a scope withdraws everything it published and drops every
// subscription, in reverse creation order.
package idb
