package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/reglet-dev/reglet-idb/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-idb/domain/errors"
)

// LogMessageWire is the JSON wire format for a log message from guest to host.
type LogMessageWire struct {
	Timestamp time.Time     `json:"timestamp"`
	Attrs     []LogAttrWire `json:"attrs,omitempty"`
	Level     string        `json:"level"`
	Message   string        `json:"message"`
}

// LogAttrWire represents a single slog attribute for wire transfer.
type LogAttrWire struct {
	Key   string `json:"key"`
	Type  string `json:"type"` // "string", "int64", "uint64", "bool", "float64", "time", "duration", "error", "json", "any"
	Value string `json:"value"`
}

// NewLogMessageWire encodes a slog record into its wire form.
func NewLogMessageWire(record slog.Record) LogMessageWire {
	wire := LogMessageWire{
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}
	record.Attrs(func(attr slog.Attr) bool {
		wire.Attrs = append(wire.Attrs, toLogAttrWire(attr))
		return true
	})
	return wire
}

func toLogAttrWire(attr slog.Attr) LogAttrWire {
	wire := LogAttrWire{Key: attr.Key}
	v := attr.Value.Resolve()

	switch v.Kind() {
	case slog.KindString:
		wire.Type, wire.Value = "string", v.String()
	case slog.KindInt64:
		wire.Type, wire.Value = "int64", strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		wire.Type, wire.Value = "uint64", strconv.FormatUint(v.Uint64(), 10)
	case slog.KindBool:
		wire.Type, wire.Value = "bool", strconv.FormatBool(v.Bool())
	case slog.KindFloat64:
		wire.Type, wire.Value = "float64", strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindTime:
		wire.Type, wire.Value = "time", v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		wire.Type, wire.Value = "duration", v.Duration().String()
	default:
		switch x := v.Any().(type) {
		case nil:
			wire.Type, wire.Value = "any", "<nil>"
		case error:
			wire.Type, wire.Value = "error", x.Error()
		default:
			if data, err := json.Marshal(x); err == nil {
				wire.Type, wire.Value = "json", string(data)
			} else {
				wire.Type, wire.Value = "any", fmt.Sprintf("%v", x)
			}
		}
	}
	return wire
}

// Attr converts the wire attribute back to a slog.Attr. Values that fail to
// parse as their declared type are kept as strings.
func (w LogAttrWire) Attr() slog.Attr {
	switch w.Type {
	case "int64":
		if n, err := strconv.ParseInt(w.Value, 10, 64); err == nil {
			return slog.Int64(w.Key, n)
		}
	case "uint64":
		if n, err := strconv.ParseUint(w.Value, 10, 64); err == nil {
			return slog.Uint64(w.Key, n)
		}
	case "bool":
		if b, err := strconv.ParseBool(w.Value); err == nil {
			return slog.Bool(w.Key, b)
		}
	case "float64":
		if f, err := strconv.ParseFloat(w.Value, 64); err == nil {
			return slog.Float64(w.Key, f)
		}
	case "time":
		if ts, err := time.Parse(time.RFC3339Nano, w.Value); err == nil {
			return slog.Time(w.Key, ts)
		}
	case "duration":
		if d, err := time.ParseDuration(w.Value); err == nil {
			return slog.Duration(w.Key, d)
		}
	case "json":
		return slog.Any(w.Key, json.RawMessage(w.Value))
	}
	return slog.String(w.Key, w.Value)
}

// DecodeLogMessage parses a guest log record.
func DecodeLogMessage(data []byte) (LogMessageWire, error) {
	var wire LogMessageWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return LogMessageWire{}, &domainerrors.WireFormatError{Operation: "decode", Type: "LogMessageWire", Err: err}
	}
	return wire, nil
}

// Record converts the wire message to a slog.Record. Unknown levels map to info.
func (w LogMessageWire) Record() slog.Record {
	var level slog.Level
	if err := level.UnmarshalText([]byte(w.Level)); err != nil {
		level = slog.LevelInfo
	}
	ts := w.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	record := slog.NewRecord(ts, level, w.Message, 0)
	for _, a := range w.Attrs {
		record.AddAttrs(a.Attr())
	}
	return record
}

// Emit decodes a guest log record and writes it to logger tagged with the
// originating module.
func Emit(ctx context.Context, logger *slog.Logger, module entities.ModuleID, data []byte) error {
	wire, err := DecodeLogMessage(data)
	if err != nil {
		return err
	}
	record := wire.Record()
	if !logger.Enabled(ctx, record.Level) {
		return nil
	}
	return logger.With("module", string(module)).Handler().Handle(ctx, record)
}
