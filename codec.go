// codec.go
package prefhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Encode converts a preference value to the string form a host persists.
// Serialized preferences are JSON encoded; all others must be scalars.
func Encode(def Definition, value any) (string, error) {
	if def.Serialize {
		data, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("%w: failed to serialize: %v", ErrInvalidValue, err)
		}
		return string(data), nil
	}
	if !isScalar(value) {
		return "", fmt.Errorf("%w: composite value %T requires serialize", ErrInvalidValue, value)
	}
	return formatScalar(value), nil
}

// Decode is the inverse of Encode. Non-serialized values are parsed to the
// type of the definition's default value (bool, integer, float) and are
// returned as strings otherwise. JSON integers decode as int.
func Decode(def Definition, raw string) (any, error) {
	if def.Serialize {
		v, err := decodeJSON([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to unserialize: %v", ErrInvalidValue, err)
		}
		return v, nil
	}

	switch d := def.DefaultValue.(type) {
	case bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: expected boolean, got %q", ErrInvalidValue, raw)
		}
		return b, nil
	case int:
		n, err := parseInt(raw, strconv.IntSize)
		return int(n), err
	case int8:
		n, err := parseInt(raw, 8)
		return int8(n), err
	case int16:
		n, err := parseInt(raw, 16)
		return int16(n), err
	case int32:
		n, err := parseInt(raw, 32)
		return int32(n), err
	case int64:
		return parseInt(raw, 64)
	case uint:
		n, err := parseUint(raw, strconv.IntSize)
		return uint(n), err
	case uint8:
		n, err := parseUint(raw, 8)
		return uint8(n), err
	case uint16:
		n, err := parseUint(raw, 16)
		return uint16(n), err
	case uint32:
		n, err := parseUint(raw, 32)
		return uint32(n), err
	case uint64:
		return parseUint(raw, 64)
	case float32:
		f, err := parseFloat(raw, 32)
		return float32(f), err
	case float64:
		return parseFloat(raw, 64)
	case json.Number:
		if _, err := d.Int64(); err == nil {
			n, err := parseInt(raw, strconv.IntSize)
			return int(n), err
		}
		return parseFloat(raw, 64)
	default:
		return raw, nil
	}
}

// Resolve returns the effective value of a preference: the decoded raw value
// when the user has one stored, the definition's default otherwise.
func Resolve(def Definition, raw *string) (any, error) {
	if raw == nil {
		return def.DefaultValue, nil
	}
	return Decode(def, *raw)
}

func parseInt(raw string, bitSize int) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, bitSize)
	if err != nil {
		return 0, fmt.Errorf("%w: expected %d-bit integer, got %q", ErrInvalidValue, bitSize, raw)
	}
	return n, nil
}

func parseUint(raw string, bitSize int) (uint64, error) {
	n, err := strconv.ParseUint(raw, 10, bitSize)
	if err != nil {
		return 0, fmt.Errorf("%w: expected unsigned %d-bit integer, got %q", ErrInvalidValue, bitSize, raw)
	}
	return n, nil
}

func parseFloat(raw string, bitSize int) (float64, error) {
	f, err := strconv.ParseFloat(raw, bitSize)
	if err != nil {
		return 0, fmt.Errorf("%w: expected number, got %q", ErrInvalidValue, raw)
	}
	return f, nil
}

func formatScalar(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float32:
		return strconv.FormatFloat(float64(s), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	default:
		return fmt.Sprint(s)
	}
}

// decodeJSON unmarshals a single JSON value. Integers decode as int and
// other numbers as float64.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return copyValue(v), nil
}

// copyValue deep copies the lists and maps of a decoded JSON value and
// converts json.Number to int or float64.
func copyValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = copyValue(e)
		}
		return out
	case json.Number:
		if n, err := strconv.ParseInt(string(t), 10, strconv.IntSize); err == nil {
			return int(n)
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return string(t)
	default:
		return v
	}
}

// canonicalDefault returns the default value of d in the shape a JSON round
// trip produces, so catalogs read from a cache or a store hold the same
// types as freshly collected ones.
func canonicalDefault(d Definition) any {
	if d.DefaultValue == nil {
		return nil
	}
	data, err := json.Marshal(d.DefaultValue)
	if err != nil {
		return copyValue(d.DefaultValue)
	}
	v, err := decodeJSON(data)
	if err != nil {
		return copyValue(d.DefaultValue)
	}
	return v
}
