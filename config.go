package idb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/reglet-dev/reglet-idb/domain/errors"
)

// validate is a package-level singleton; building a validator is expensive.
var validate = validator.New()

// Config is the free-form configuration a host hands to a module, usually
// decoded from YAML or JSON.
type Config map[string]any

// String returns the string stored under key.
func (c Config) String(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}

// Int returns the number stored under key as an int. Decoders produce int,
// int64 or float64 depending on the source format; all are accepted.
func (c Config) Int(key string) (int, bool) {
	switch n := c[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// Float returns the number stored under key as a float64.
func (c Config) Float(key string) (float64, bool) {
	switch n := c[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Bool returns the bool stored under key.
func (c Config) Bool(key string) (bool, bool) {
	b, ok := c[key].(bool)
	return b, ok
}

// Duration returns the duration stored under key, either as a
// time.ParseDuration string ("250ms") or as a number of seconds.
func (c Config) Duration(key string) (time.Duration, bool) {
	if s, ok := c.String(key); ok {
		d, err := time.ParseDuration(s)
		return d, err == nil
	}
	if f, ok := c.Float(key); ok {
		return time.Duration(f * float64(time.Second)), true
	}
	return 0, false
}

// Strings returns the string list stored under key.
func (c Config) Strings(key string) ([]string, bool) {
	switch v := c[key].(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// StringOr returns the string under key, or def.
func (c Config) StringOr(key, def string) string {
	if s, ok := c.String(key); ok {
		return s
	}
	return def
}

// IntOr returns the int under key, or def.
func (c Config) IntOr(key string, def int) int {
	if i, ok := c.Int(key); ok {
		return i
	}
	return def
}

// DurationOr returns the duration under key, or def.
func (c Config) DurationOr(key string, def time.Duration) time.Duration {
	if d, ok := c.Duration(key); ok {
		return d
	}
	return def
}

// RequireString returns the string under key or a ConfigError naming it.
func (c Config) RequireString(key string) (string, error) {
	s, ok := c.String(key)
	if !ok {
		return "", &errors.ConfigError{
			Field: key,
			Err:   fmt.Errorf("required string field '%s' is missing or not a string", key),
		}
	}
	return s, nil
}

// RequireInt returns the int under key or a ConfigError naming it.
func (c Config) RequireInt(key string) (int, error) {
	i, ok := c.Int(key)
	if !ok {
		return 0, &errors.ConfigError{
			Field: key,
			Err:   fmt.Errorf("required int field '%s' is missing or not a number", key),
		}
	}
	return i, nil
}

// Decode copies the configuration into target through JSON and validates the
// result against its `validate` tags.
func (c Config) Decode(target any) error {
	data, err := json.Marshal(c)
	if err != nil {
		return &errors.ConfigError{Err: fmt.Errorf("failed to marshal config: %w", err)}
	}
	if err := json.Unmarshal(data, target); err != nil {
		return &errors.ConfigError{Err: fmt.Errorf("failed to decode config: %w", err)}
	}
	if err := validate.Struct(target); err != nil {
		return &errors.ConfigError{Err: err}
	}
	return nil
}
