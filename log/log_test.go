package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/reglet-dev/reglet-idb/domain/errors"
)

func TestToLogAttrWire(t *testing.T) {
	tests := []struct {
		name     string
		attr     slog.Attr
		wantType string
		wantVal  string
	}{
		{"string", slog.String("key", "value"), "string", "value"},
		{"int64", slog.Int64("key", 123), "int64", "123"},
		{"uint64", slog.Uint64("key", 7), "uint64", "7"},
		{"bool", slog.Bool("key", true), "bool", "true"},
		{"float64", slog.Float64("key", 1.23), "float64", "1.23"},
		{"time", slog.Time("key", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), "time", "2024-01-01T00:00:00Z"},
		{"duration", slog.Duration("key", time.Hour), "duration", "1h0m0s"},
		{"error", slog.Any("key", errors.New("test error")), "error", "test error"},
		{"nil", slog.Any("key", nil), "any", "<nil>"},
		{"json", slog.Any("key", map[string]int{"fps": 60}), "json", `{"fps":60}`},
		{"log valuer", slog.Any("key", logValuer{val: "resolved"}), "string", "resolved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire := toLogAttrWire(tt.attr)
			assert.Equal(t, tt.attr.Key, wire.Key)
			assert.Equal(t, tt.wantType, wire.Type)
			assert.Equal(t, tt.wantVal, wire.Value)
		})
	}
}

type logValuer struct {
	val string
}

func (l logValuer) LogValue() slog.Value {
	return slog.StringValue(l.val)
}

func TestLogAttrWire_Attr(t *testing.T) {
	tests := []struct {
		name string
		wire LogAttrWire
		want slog.Value
	}{
		{"int64", LogAttrWire{Key: "k", Type: "int64", Value: "-4"}, slog.Int64Value(-4)},
		{"bool", LogAttrWire{Key: "k", Type: "bool", Value: "false"}, slog.BoolValue(false)},
		{"float", LogAttrWire{Key: "k", Type: "float64", Value: "59.5"}, slog.Float64Value(59.5)},
		{"duration", LogAttrWire{Key: "k", Type: "duration", Value: "250ms"}, slog.DurationValue(250 * time.Millisecond)},
		{"bad int falls back", LogAttrWire{Key: "k", Type: "int64", Value: "many"}, slog.StringValue("many")},
		{"unknown type", LogAttrWire{Key: "k", Type: "group", Value: "[a=1]"}, slog.StringValue("[a=1]")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := tt.wire.Attr()
			assert.Equal(t, "k", attr.Key)
			assert.True(t, tt.want.Equal(attr.Value), "got %v", attr.Value)
		})
	}
}

func TestEmit(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf), WithFormat(FormatJSON), WithLevel(slog.LevelDebug))

	record := slog.NewRecord(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), slog.LevelWarn, "frame dropped", 0)
	record.AddAttrs(slog.Int("frame", 42), slog.String("reason", "slow"))
	data, err := json.Marshal(NewLogMessageWire(record))
	require.NoError(t, err)

	require.NoError(t, Emit(context.Background(), logger, "greeter", data))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "WARN", out["level"])
	assert.Equal(t, "frame dropped", out["msg"])
	assert.Equal(t, "greeter", out["module"])
	assert.EqualValues(t, 42, out["frame"])
	assert.Equal(t, "slow", out["reason"])
}

func TestEmit_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf), WithLevel(slog.LevelWarn))

	require.NoError(t, Emit(context.Background(), logger, "greeter", []byte(`{"level":"DEBUG","message":"noise"}`)))
	assert.Empty(t, buf.String())
}

func TestEmit_InvalidPayload(t *testing.T) {
	err := Emit(context.Background(), New(WithWriter(&bytes.Buffer{})), "greeter", []byte("{"))

	var wfe *domainerrors.WireFormatError
	require.ErrorAs(t, err, &wfe)
	assert.Equal(t, "LogMessageWire", wfe.Type)
}

func TestRecord_Defaults(t *testing.T) {
	rec := LogMessageWire{Level: "verbose", Message: "hi"}.Record()
	assert.Equal(t, slog.LevelInfo, rec.Level)
	assert.False(t, rec.Time.IsZero())
}

func TestNew_Options(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf), WithSource(true))

	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))

	logger.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "source=")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
