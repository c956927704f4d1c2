package idb_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	idb "github.com/reglet-dev/reglet-idb"
	"github.com/reglet-dev/reglet-idb/directory"
	"github.com/reglet-dev/reglet-idb/domain/entities"
	"github.com/reglet-dev/reglet-idb/internal/testutil"
	"github.com/reglet-dev/reglet-idb/manager"
)

type Thing interface {
	Name() string
}

type thing struct{ name string }

func (t *thing) Name() string { return t.name }

type namedThing struct{ thing }

func (namedThing) ImplementationName() string { return "CustomName" }

type notAThing struct{}

var thingKey = entities.Key("IThing", "default")

type ScopeSuite struct {
	suite.Suite
	ctx  context.Context
	kind *manager.Kind[directory.Item]
}

func (s *ScopeSuite) SetupTest() {
	s.ctx = context.Background()
	s.kind = directory.NewKind()
}

func (s *ScopeSuite) scope(module entities.ModuleID) *idb.Scope {
	return idb.NewScope(module, idb.WithKind(s.kind), idb.WithContext(s.ctx))
}

func (s *ScopeSuite) TestFooBarScenario() {
	t := s.T()
	sc := s.scope(entities.HostModule)
	foo, bar := &thing{"Foo"}, &thing{"Bar"}

	fooPub := sc.Publish(thingKey, "Foo", foo)
	sub := idb.Subscribe[Thing](sc, thingKey)
	testutil.AssertBound[Thing](t, sub, foo)

	barPub := sc.Publish(thingKey, "Bar", bar)
	testutil.AssertBound[Thing](t, sub, foo, "first registrant wins")

	fooPub.Close()
	testutil.AssertBound[Thing](t, sub, bar)
	s.Equal("Bar", sub.Class())

	barPub.Close()
	testutil.AssertUnbound[Thing](t, sub)
	s.Empty(sub.Class())
}

func (s *ScopeSuite) TestCloseIsIdempotent() {
	sc := s.scope(entities.HostModule)
	pub := sc.Publish(thingKey, "", &thing{"Foo"})
	sub := idb.Subscribe[Thing](sc, thingKey)

	pub.Close()
	pub.Close()
	sub.Close()
	sub.Close()
	sc.Close()

	stats := s.kind.Stats()
	s.Equal(0, stats.Live)
	s.Equal(1, stats.Destroyed)
}

func (s *ScopeSuite) TestScopeCloseReclaims() {
	sc := s.scope(entities.HostModule)
	for i := 0; i < 5; i++ {
		sc.Publish(entities.Key("IThing", string(rune('a'+i))), "", &thing{})
		idb.Subscribe[Thing](sc, thingKey)
	}
	s.Equal(1, s.kind.Stats().Live)

	sc.Close()

	stats := s.kind.Stats()
	s.Equal(0, stats.Live, "all N removals detach the registrar and destroy the record")
	s.Equal(1, stats.Destroyed)
}

func (s *ScopeSuite) TestCloseOrderIsReverse() {
	sc := s.scope(entities.HostModule)
	first := &thing{"First"}
	sc.Publish(thingKey, "", first)
	sub := idb.Subscribe[Thing](sc, thingKey)

	sc.Close()
	testutil.AssertUnbound[Thing](s.T(), sub)
	s.Equal(0, s.kind.Stats().Live)
}

func (s *ScopeSuite) TestUseAfterClose() {
	sc := s.scope(entities.HostModule)
	sc.Close()

	testutil.RequireViolation(s.T(), "idb.publish", func() { sc.Publish(thingKey, "", &thing{}) })
	testutil.RequireViolation(s.T(), "idb.subscribe", func() { idb.Subscribe[Thing](sc, thingKey) })
}

func (s *ScopeSuite) TestTypeMismatchIsViolation() {
	sc := s.scope(entities.HostModule)
	defer sc.Close()

	sc.Publish(thingKey, "", &notAThing{})
	sub := idb.Subscribe[Thing](sc, thingKey)

	testutil.RequireViolation(s.T(), "idb.get", func() { sub.Get() })
}

func (s *ScopeSuite) TestMustGet() {
	sc := s.scope(entities.HostModule)
	defer sc.Close()

	sub := idb.Subscribe[Thing](sc, thingKey)
	testutil.RequireViolation(s.T(), "idb.get", func() { sub.MustGet() })

	sc.Publish(thingKey, "", &thing{"Foo"})
	s.Equal("Foo", sub.MustGet().Name())
}

func (s *ScopeSuite) TestMergeAcrossModules() {
	t := s.T()
	host := s.scope(entities.HostModule)
	plugin := s.scope("plugin")

	hostSub := idb.Subscribe[Thing](host, thingKey)
	pluginImpl := &thing{"Plugin"}
	plugin.Publish(thingKey, "", pluginImpl)
	pluginSub := idb.Subscribe[Thing](plugin, entities.Key("IClock", "default"))

	testutil.AssertUnbound[Thing](t, hostSub, "module directories are separate until merged")
	s.Equal(2, s.kind.Stats().Live)

	s.kind.Merge(s.ctx, entities.HostModule, "plugin")
	testutil.AssertBound[Thing](t, hostSub, pluginImpl)
	s.Equal(1, s.kind.Stats().Live)

	clock := &thing{"Clock"}
	host.Publish(entities.Key("IClock", "default"), "", clock)
	testutil.AssertBound[Thing](t, pluginSub, clock, "merged module sees host publications")

	plugin.Close()
	s.kind.Release(s.ctx, "plugin")
	testutil.AssertUnbound[Thing](t, hostSub, "unload withdraws the plugin's implementation")
	s.Equal(1, s.kind.Stats().Live)

	host.Close()
	s.kind.Release(s.ctx, entities.HostModule)
	s.Equal(0, s.kind.Stats().Live)
}

func (s *ScopeSuite) TestPublishAfterMergeIsViolation() {
	plugin := s.scope("plugin")
	plugin.Publish(thingKey, "", &thing{})
	s.kind.Merge(s.ctx, entities.HostModule, "plugin")

	testutil.RequireViolation(s.T(), "manager.add", func() { plugin.Publish(entities.Key("IOther", "default"), "", &thing{}) })
}

func TestScopeSuite(t *testing.T) {
	suite.Run(t, new(ScopeSuite))
}

func TestNewScope_Defaults(t *testing.T) {
	sc := idb.NewScope("defaults")
	assert.Same(t, directory.Default, sc.Kind())
	assert.Equal(t, entities.ModuleID("defaults"), sc.Module())
	assert.NotNil(t, sc.Logger())

	testutil.RequireViolation(t, "idb.scope", func() { idb.NewScope("") })
}

func TestScope_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sc := idb.NewScope("logged", idb.WithKind(directory.NewKind()), idb.WithLogger(logger))

	sc.Publish(thingKey, "", &thing{})
	sc.Close()

	out := buf.String()
	assert.Contains(t, out, "implementation published")
	assert.Contains(t, out, "key=IThing.default")
	assert.Contains(t, out, "class=thing")
	assert.Contains(t, out, "scope closed")
}

type loadKey struct{}

// loadTracker records the load id carried by every context it handles.
type loadTracker struct {
	slog.Handler
	loads *[]any
}

func (h loadTracker) Handle(ctx context.Context, r slog.Record) error {
	*h.loads = append(*h.loads, ctx.Value(loadKey{}))
	return h.Handler.Handle(ctx, r)
}

func TestScope_WithContext(t *testing.T) {
	var loads []any
	var buf bytes.Buffer
	logger := slog.New(loadTracker{Handler: slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}), loads: &loads})

	ctx := context.WithValue(context.Background(), loadKey{}, "plugin-load")
	kind := directory.NewKind(manager.WithLogger(logger))
	sc := idb.NewScope("plugin", idb.WithKind(kind), idb.WithLogger(logger), idb.WithContext(ctx))

	sc.Publish(thingKey, "", &thing{})
	idb.Subscribe[Thing](sc, entities.Key("IClock", "default"))
	sc.Close()

	out := buf.String()
	assert.Contains(t, out, "record created")
	assert.Contains(t, out, "record destroyed")
	assert.Contains(t, out, "scope closed")
	require.NotEmpty(t, loads)
	for _, v := range loads {
		assert.Equal(t, "plugin-load", v)
	}
}

func TestImplementationName(t *testing.T) {
	tests := []struct {
		name     string
		instance any
		want     string
	}{
		{"pointer", &thing{}, "thing"},
		{"value", thing{}, "thing"},
		{"named", &namedThing{}, "CustomName"},
		{"unnamed type", []int{}, "[]int"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, idb.ImplementationName(tt.instance))
		})
	}
}

func TestPublication_Accessors(t *testing.T) {
	sc := idb.NewScope("accessors", idb.WithKind(directory.NewKind()))
	defer sc.Close()

	inst := &thing{"Foo"}
	pub := sc.Publish(thingKey, "", inst)
	require.Equal(t, thingKey, pub.Key())
	assert.Same(t, inst, pub.Instance())

	sub := idb.Subscribe[Thing](sc, thingKey)
	assert.Equal(t, thingKey, sub.Key())
	assert.Equal(t, "thing", sub.Class())
}
