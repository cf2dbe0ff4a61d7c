// Package cast converts loosely typed values decoded from YAML or JSON (map[string]any and
// friends) into the concrete numeric and slice types model configs use.
package cast

import (
	"encoding/json"
	"math"
)

// ToFloat64 converts a decoded number to float64. Supports Go int/uint/float types and json.Number.
func ToFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	if i, ok := toInt64Exact(v); ok {
		return float64(i), true
	}
	return 0, false
}

// ToInt64 converts a decoded number to int64. Floats must be integral and finite; uint values
// above math.MaxInt64 are clamped.
func ToInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case float64:
		return integral(x)
	case float32:
		return integral(float64(x))
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, true
		}
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return integral(f)
	}
	return toInt64Exact(v)
}

func toInt64Exact(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return clampUint(uint64(x)), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return clampUint(x), true
	default:
		return 0, false
	}
}

func clampUint(x uint64) int64 {
	if x > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(x)
}

func integral(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64, true
	}
	if f <= math.MinInt64 {
		return math.MinInt64, true
	}
	return int64(f), true
}

// ToStringSlice converts v to []string. Accepts []string or []any where each element is a string.
func ToStringSlice(v any) ([]string, bool) {
	if ss, ok := v.([]string); ok {
		return ss, true
	}
	slice, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(slice))
	for _, e := range slice {
		s, ok := e.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
