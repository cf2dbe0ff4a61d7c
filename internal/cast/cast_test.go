package cast

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestToFloat64(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		v    any
		want float64
		ok   bool
	}{
		{"float64", float64(1.5), 1.5, true},
		{"float32", float32(2.5), 2.5, true},
		{"int", 3, 3, true},
		{"int64", int64(4), 4, true},
		{"uint8", uint8(9), 9, true},
		{"uint64", uint64(12), 12, true},
		{"json number", json.Number("0.75"), 0.75, true},
		{"json number invalid", json.Number("abc"), 0, false},
		{"string", "1.0", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ToFloat64(tt.v)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestToInt64(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		v    any
		want int64
		ok   bool
	}{
		{"int", 42, 42, true},
		{"int8", int8(-3), -3, true},
		{"uint32", uint32(7), 7, true},
		{"uint64 clamped", uint64(math.MaxUint64), math.MaxInt64, true},
		{"integral float", float64(2048), 2048, true},
		{"fractional float", 1.5, 0, false},
		{"float32 integral", float32(16), 16, true},
		{"NaN", math.NaN(), 0, false},
		{"Inf", math.Inf(1), 0, false},
		{"huge float clamped", 1e30, math.MaxInt64, true},
		{"json int", json.Number("1024"), 1024, true},
		{"json integral float", json.Number("64.0"), 64, true},
		{"json fractional", json.Number("64.5"), 0, false},
		{"string", "10", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ToInt64(tt.v)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestToStringSlice(t *testing.T) {
	t.Parallel()
	got, ok := ToStringSlice([]string{"a", "b"})
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)

	got, ok = ToStringSlice([]any{"x", "y"})
	assert.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, got)

	_, ok = ToStringSlice([]any{"x", 1})
	assert.False(t, ok)
	_, ok = ToStringSlice("x")
	assert.False(t, ok)
}
