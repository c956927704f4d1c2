package manager

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/reglet-dev/reglet-idb/domain/entities"
	"github.com/reglet-dev/reglet-idb/domain/errors"
)

// kindConfig holds configuration for a Kind.
type kindConfig struct {
	logger *slog.Logger
}

func defaultKindConfig() kindConfig {
	return kindConfig{
		logger: slog.Default(),
	}
}

// KindOption configures a Kind.
type KindOption func(*kindConfig)

// WithLogger sets the logger used for record lifecycle events.
func WithLogger(l *slog.Logger) KindOption {
	return func(c *kindConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Kind is the process-wide registry of one kind of record. It owns the
// registrar of every module that has touched the kind and the factory used
// to create records on demand.
type Kind[I any] struct {
	name    string
	factory func() Record[I]
	config  kindConfig

	mu         sync.RWMutex
	registrars map[entities.ModuleID]*Registrar[I]
	created    int
	destroyed  int
}

// NewKind creates a Kind whose records are built by factory.
func NewKind[I any](name string, factory func() Record[I], opts ...KindOption) *Kind[I] {
	errors.Check(factory == nil, "manager.kind", "nil factory for kind %q", name)
	cfg := defaultKindConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Kind[I]{
		name:       name,
		factory:    factory,
		config:     cfg,
		registrars: make(map[entities.ModuleID]*Registrar[I]),
	}
}

// Name returns the kind's name.
func (k *Kind[I]) Name() string {
	return k.name
}

// Add stores item on behalf of module, creating the module's record on first use.
// Adding after the module has been merged into another is a violation.
func (k *Kind[I]) Add(ctx context.Context, module entities.ModuleID, item I) {
	k.mu.Lock()
	defer k.mu.Unlock()

	r := k.registrar(module)
	errors.Check(r.transferred, "manager.add", "kind %s: module %s already merged", k.name, module)

	rec := k.attach(ctx, r)
	rec.Add(item)
	r.count++
}

// Remove drops item on behalf of module. It reports whether this was the
// module's last item, in which case the registrar detached from its record
// and the record was destroyed if nothing else referenced it.
func (k *Kind[I]) Remove(ctx context.Context, module entities.ModuleID, item I) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	r, ok := k.registrars[module]
	errors.Check(!ok || r.count == 0, "manager.remove", "kind %s: module %s has no items", k.name, module)

	rec := r.live()
	errors.Check(rec == nil, "manager.remove", "kind %s: module %s has no record", k.name, module)

	rec.Remove(item)
	r.count--
	if r.count > 0 {
		return false
	}

	k.detach(ctx, r)
	return true
}

// Merge moves everything loaded has stored into host's record and makes
// loaded reference host's record from then on. It runs once per loaded module.
func (k *Kind[I]) Merge(ctx context.Context, host, loaded entities.ModuleID) {
	k.mu.Lock()
	defer k.mu.Unlock()

	errors.Check(host == loaded, "manager.merge", "kind %s: module %s merged into itself", k.name, host)

	hr := k.registrar(host)
	errors.Check(hr.transferred, "manager.merge", "kind %s: host %s was itself merged", k.name, host)
	lr := k.registrar(loaded)
	errors.Check(lr.transferred, "manager.merge", "kind %s: module %s already merged", k.name, loaded)

	target := k.attach(ctx, hr)
	lr.transferred = true

	source := lr.live()
	switch source {
	case nil:
		// Nothing to move; remember where the module's items would live.
		lr.record = target
		k.config.logger.DebugContext(ctx, "module merged without items",
			"kind", k.name, "host", host, "module", loaded)
		return
	case target:
		return
	}

	source.TransferAll(target)

	// Splice every registrar of the source list into the target list.
	for r := source.links().head; r != nil; {
		next := r.next
		r.record = target
		target.links().push(r)
		r = next
	}
	source.links().head = nil

	// Registrars that had detached from the source keep pointing at it.
	for _, r := range k.registrars {
		if r.record == source {
			r.record = target
		}
	}

	k.destroy(ctx, source)
	k.config.logger.DebugContext(ctx, "module merged",
		"kind", k.name, "host", host, "module", loaded)
}

// Release forgets module. It is the teardown hook for a module that is about
// to unload: releasing a module that still has items is a violation.
func (k *Kind[I]) Release(ctx context.Context, module entities.ModuleID) {
	k.mu.Lock()
	defer k.mu.Unlock()

	r, ok := k.registrars[module]
	if !ok {
		return
	}
	errors.Check(r.count > 0, "manager.release", "kind %s: module %s still has %d items", k.name, module, r.count)

	if r.live() != nil && r.linked {
		k.detach(ctx, r)
	}
	r.record = nil
	delete(k.registrars, module)
	k.config.logger.DebugContext(ctx, "module released", "kind", k.name, "module", module)
}

// Record returns the record module's items currently live in, creating and
// attaching one if the module has none yet.
func (k *Kind[I]) Record(ctx context.Context, module entities.ModuleID) Record[I] {
	k.mu.Lock()
	defer k.mu.Unlock()

	r := k.registrar(module)
	if r.transferred {
		return r.live()
	}
	return k.attach(ctx, r)
}

// View calls fn with module's live record under the read lock. It reports
// false without calling fn when the module has no live record.
func (k *Kind[I]) View(module entities.ModuleID, fn func(Record[I])) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()

	r, ok := k.registrars[module]
	if !ok || r.record == nil || r.record.links().destroyed {
		return false
	}
	fn(r.record)
	return true
}

// Registrar returns a copy of module's registrar state, if any.
func (k *Kind[I]) Registrar(module entities.ModuleID) (Registrar[I], bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	r, ok := k.registrars[module]
	if !ok {
		return Registrar[I]{}, false
	}
	return *r, true
}

// Stats returns the kind's lifecycle counters.
func (k *Kind[I]) Stats() entities.KindStats {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return entities.KindStats{
		Kind:       k.name,
		Created:    k.created,
		Destroyed:  k.destroyed,
		Live:       k.created - k.destroyed,
		Registrars: len(k.registrars),
	}
}

// Modules returns the ids of every module with a registrar, sorted.
func (k *Kind[I]) Modules() []entities.ModuleID {
	k.mu.RLock()
	defer k.mu.RUnlock()

	out := make([]entities.ModuleID, 0, len(k.registrars))
	for id := range k.registrars {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (k *Kind[I]) registrar(module entities.ModuleID) *Registrar[I] {
	errors.Check(module == "", "manager.registrar", "kind %s: empty module id", k.name)
	r, ok := k.registrars[module]
	if !ok {
		r = &Registrar[I]{module: module}
		k.registrars[module] = r
	}
	return r
}

// attach returns r's record, creating one if needed, and links r into it.
func (k *Kind[I]) attach(ctx context.Context, r *Registrar[I]) Record[I] {
	rec := r.live()
	if rec == nil {
		rec = k.factory()
		errors.Check(rec == nil, "manager.attach", "kind %s: factory returned nil", k.name)
		k.created++
		r.record = rec
		k.config.logger.DebugContext(ctx, "record created", "kind", k.name, "module", r.module)
	}
	if !r.linked {
		rec.links().push(r)
	}
	return rec
}

// detach unlinks r and destroys the record once nothing references it.
func (k *Kind[I]) detach(ctx context.Context, r *Registrar[I]) {
	rec := r.record
	ok := rec.links().unlink(r)
	errors.Check(!ok, "manager.detach", "kind %s: module %s not linked to its record", k.name, r.module)

	if rec.links().empty() {
		k.destroy(ctx, rec)
		r.record = nil
	}
}

func (k *Kind[I]) destroy(ctx context.Context, rec Record[I]) {
	l := rec.links()
	errors.Check(l.destroyed, "manager.destroy", "kind %s: record destroyed twice", k.name)
	l.destroyed = true
	if d, ok := rec.(Destroyer); ok {
		d.Destroy()
	}
	k.destroyed++
	k.config.logger.DebugContext(ctx, "record destroyed", "kind", k.name)
}
