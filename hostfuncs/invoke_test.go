package hostfuncs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/reglet-dev/reglet-idb/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-idb/domain/errors"
	"github.com/reglet-dev/reglet-idb/domain/ports"
)

type invokerFunc func(ctx context.Context, payload []byte) ([]byte, error)

func (f invokerFunc) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	return f(ctx, payload)
}

type fakeResolver struct {
	invokers map[entities.InterfaceKey]ports.Invoker
	err      error
	caller   entities.ModuleID
}

func (r *fakeResolver) Resolve(caller entities.ModuleID, key entities.InterfaceKey) (ports.Invoker, error) {
	r.caller = caller
	if r.err != nil {
		return nil, r.err
	}
	inv, ok := r.invokers[key]
	if !ok {
		return nil, domainerrors.ErrNotSubscribed
	}
	return inv, nil
}

type InvokeSuite struct {
	suite.Suite
	resolver *fakeResolver
	reg      *HandlerRegistry
	ctx      context.Context
}

func TestInvokeSuite(t *testing.T) {
	suite.Run(t, new(InvokeSuite))
}

func (s *InvokeSuite) SetupTest() {
	s.resolver = &fakeResolver{
		invokers: map[entities.InterfaceKey]ports.Invoker{
			entities.Key("sim::ITime", "default"): invokerFunc(func(ctx context.Context, payload []byte) ([]byte, error) {
				return []byte(`{"seconds":1.5}`), nil
			}),
			entities.Key("IEcho", "default"): invokerFunc(func(ctx context.Context, payload []byte) ([]byte, error) {
				return payload, nil
			}),
			entities.Key("IBroken", "default"): invokerFunc(func(ctx context.Context, payload []byte) ([]byte, error) {
				return nil, errors.New("wasm trap")
			}),
			entities.Key("IGarbage", "default"): invokerFunc(func(ctx context.Context, payload []byte) ([]byte, error) {
				return []byte("not json"), nil
			}),
		},
	}

	var err error
	s.reg, err = NewRegistry(WithBundle(DirectoryBundle(s.resolver)))
	s.Require().NoError(err)
	s.ctx = WithCaller(context.Background(), "relay")
}

func (s *InvokeSuite) invoke(ctx context.Context, req any) []byte {
	payload, ok := req.([]byte)
	if !ok {
		var err error
		payload, err = json.Marshal(req)
		s.Require().NoError(err)
	}
	resp, err := s.reg.Invoke(ctx, InvokeFunction, payload)
	s.Require().NoError(err)
	return resp
}

func (s *InvokeSuite) TestSuccess() {
	resp := s.invoke(s.ctx, InvokeRequest{Interface: "sim::ITime", Instance: "default"})

	var out InvokeResponse
	s.Require().NoError(json.Unmarshal(resp, &out))
	s.JSONEq(`{"seconds":1.5}`, string(out.Payload))
	s.Equal(entities.ModuleID("relay"), s.resolver.caller)
}

func (s *InvokeSuite) TestPayloadPassthrough() {
	resp := s.invoke(s.ctx, InvokeRequest{
		Interface: "IEcho",
		Instance:  "default",
		Payload:   json.RawMessage(`{"msg":"hi"}`),
	})
	s.JSONEq(`{"payload":{"msg":"hi"}}`, string(resp))
}

func (s *InvokeSuite) TestErrors() {
	tests := []struct {
		name     string
		ctx      context.Context
		req      any
		wantCode int
		wantMsg  string
	}{
		{"malformed", s.ctx, []byte("{"), 400, "unmarshal"},
		{"missing instance", s.ctx, InvokeRequest{Interface: "IEcho"}, 400, "required"},
		{"unknown caller", context.Background(), InvokeRequest{Interface: "IEcho", Instance: "default"}, 403, "unknown"},
		{"not subscribed", s.ctx, InvokeRequest{Interface: "IOther", Instance: "default"}, 403, "IOther.default"},
		{"invoker fails", s.ctx, InvokeRequest{Interface: "IBroken", Instance: "default"}, 500, "wasm trap"},
		{"invalid reply", s.ctx, InvokeRequest{Interface: "IGarbage", Instance: "default"}, 500, "invalid JSON"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			errResp, ok := IsErrorResponse(s.invoke(tt.ctx, tt.req))
			s.Require().True(ok)
			s.Equal(tt.wantCode, errResp.Code)
			s.Contains(errResp.Message, tt.wantMsg)
		})
	}
}

func (s *InvokeSuite) TestUnbound() {
	s.resolver.err = domainerrors.ErrUnbound

	errResp, ok := IsErrorResponse(s.invoke(s.ctx, InvokeRequest{Interface: "IEcho", Instance: "default"}))
	s.Require().True(ok)
	s.Equal("UNBOUND", errResp.Error)
}

func TestInvokeRequest_Key(t *testing.T) {
	var req InvokeRequest
	require.NoError(t, json.Unmarshal([]byte(`{"interface":"sim::IFrameRate","instance":"default"}`), &req))
	assert.Equal(t, "sim::IFrameRate.default", req.Key().String())
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(caller entities.ModuleID, key entities.InterfaceKey) (ports.Invoker, error) {
	args := m.Called(caller, key)
	inv, _ := args.Get(0).(ports.Invoker)
	return inv, args.Error(1)
}

func TestInvokeHandler_ResolvesEveryCall(t *testing.T) {
	clock := entities.Key("sim::ITime", "default")
	self := entities.Key("IRelay", "default")

	r := new(mockResolver)
	r.On("Resolve", entities.ModuleID("relay"), clock).Return(invokerFunc(func(context.Context, []byte) ([]byte, error) {
		return []byte(`1`), nil
	}), nil).Twice()
	r.On("Resolve", entities.ModuleID("relay"), self).Return(nil, domainerrors.ErrSelfInvoke).Once()

	reg, err := NewRegistry(WithBundle(DirectoryBundle(r)))
	require.NoError(t, err)
	ctx := WithCaller(context.Background(), "relay")

	for range 2 {
		resp, err := reg.Invoke(ctx, InvokeFunction, []byte(`{"interface":"sim::ITime","instance":"default"}`))
		require.NoError(t, err)
		assert.JSONEq(t, `{"payload":1}`, string(resp))
	}

	resp, err := reg.Invoke(ctx, InvokeFunction, []byte(`{"interface":"IRelay","instance":"default"}`))
	require.NoError(t, err)
	errResp, ok := IsErrorResponse(resp)
	require.True(t, ok)
	assert.Equal(t, 403, errResp.Code)

	r.AssertExpectations(t)
}
