package xttl

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromMap_InvalidFallsBackToDefaults(t *testing.T) {
	rec := &recorder{}
	raw := map[string]any{
		"lastUsage":       true,
		"ttl":             "FACED",
		"checkPeriode":    "x9k2q",
		"refreshFunction": "qwert",
	}
	c := New[string](append(OptionsFromMap(raw), WithListener[string](rec))...)
	defer c.Close()

	cfg := c.Options()
	assert.True(t, cfg.LastUsage)
	assert.Zero(t, cfg.TTL)
	assert.Zero(t, cfg.SweepPeriod)
	assert.Nil(t, cfg.Refresh)

	errs := rec.Errors()
	require.Len(t, errs, 3)
	for _, target := range []error{ErrInvalidTTL, ErrInvalidSweepPeriod, ErrInvalidRefreshFunc} {
		assert.True(t, slices.ContainsFunc(errs, func(err error) bool {
			return errors.Is(err, target)
		}), "missing %v", target)
	}
}

func TestOptionsFromMap(t *testing.T) {
	refresh := func(*Entry[string]) {}
	tests := []struct {
		name    string
		raw     map[string]any
		want    Config[string]
		wantErr error
	}{
		{"empty", nil, Config[string]{}, nil},
		{"ttl seconds int", map[string]any{"ttl": 200}, Config[string]{TTL: 200 * time.Second}, nil},
		{"ttl integral float", map[string]any{"ttl": float64(3)}, Config[string]{TTL: 3 * time.Second}, nil},
		{"ttl numeric string", map[string]any{"ttl": " 42 "}, Config[string]{TTL: 42 * time.Second}, nil},
		{"ttl duration string", map[string]any{"TTL": "1m30s"}, Config[string]{TTL: 90 * time.Second}, nil},
		{"ttl duration value", map[string]any{"ttl": 2 * time.Minute}, Config[string]{TTL: 2 * time.Minute}, nil},
		{"ttl uint", map[string]any{"ttl": uint16(7)}, Config[string]{TTL: 7 * time.Second}, nil},
		{"ttl fractional", map[string]any{"ttl": 2.5}, Config[string]{}, ErrInvalidTTL},
		{"ttl negative", map[string]any{"ttl": -1}, Config[string]{}, ErrInvalidTTL},
		{"ttl negative duration", map[string]any{"ttl": "-1s"}, Config[string]{}, ErrInvalidTTL},
		{"ttl bool", map[string]any{"ttl": true}, Config[string]{}, ErrInvalidTTL},
		{"ttl overflow", map[string]any{"ttl": uint64(1 << 63)}, Config[string]{}, ErrInvalidTTL},
		{"sweep millis", map[string]any{"sweepPeriod": 1500}, Config[string]{SweepPeriod: 1500 * time.Millisecond}, nil},
		{"sweep alias", map[string]any{"checkPeriod": "250ms"}, Config[string]{SweepPeriod: 250 * time.Millisecond}, nil},
		{"sweep legacy alias", map[string]any{"checkperiode": 10}, Config[string]{SweepPeriod: 10 * time.Millisecond}, nil},
		{"sweep invalid", map[string]any{"sweepPeriod": []int{1}}, Config[string]{}, ErrInvalidSweepPeriod},
		{"last usage bool", map[string]any{"lastUsage": true}, Config[string]{LastUsage: true}, nil},
		{"last usage string", map[string]any{"lastusage": "true"}, Config[string]{LastUsage: true}, nil},
		{"last usage invalid", map[string]any{"lastUsage": "sometimes"}, Config[string]{}, ErrInvalidLastUsage},
		{"refresh func", map[string]any{"refreshFunction": refresh}, Config[string]{}, nil},
		{"refresh wrong type", map[string]any{"refreshFunction": func(*Entry[int]) {}}, Config[string]{}, ErrInvalidRefreshFunc},
		{"unknown key ignored", map[string]any{"size": 10}, Config[string]{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			opts := append(OptionsFromMap(tt.raw), WithListener[string](rec))
			c := New[string](opts...)
			defer c.Close()

			cfg := c.Options()
			assert.Equal(t, tt.want.TTL, cfg.TTL)
			assert.Equal(t, tt.want.SweepPeriod, cfg.SweepPeriod)
			assert.Equal(t, tt.want.LastUsage, cfg.LastUsage)
			if _, ok := tt.raw["refreshFunction"]; ok && tt.wantErr == nil {
				assert.NotNil(t, cfg.Refresh)
			}

			errs := rec.Errors()
			if tt.wantErr == nil {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.ErrorIs(t, errs[0], tt.wantErr)
		})
	}
}

func TestOptionsFromMap_KeyPriority(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want Config[string]
	}{
		{"canonical over alias", map[string]any{"sweepPeriod": 100, "checkPeriode": 5, "checkPeriod": 7},
			Config[string]{SweepPeriod: 100 * time.Millisecond}},
		{"alias order", map[string]any{"checkPeriode": 5, "checkPeriod": 7},
			Config[string]{SweepPeriod: 7 * time.Millisecond}},
		{"exact over folded", map[string]any{"ttl": 1, "TTL": 2, "Ttl": 3},
			Config[string]{TTL: time.Second}},
		{"folded picks smallest key", map[string]any{"Ttl": 3, "TTL": 2},
			Config[string]{TTL: 2 * time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// map 遍历顺序随机，多次构造结果必须一致。
			for range 20 {
				rec := &recorder{}
				c := New[string](append(OptionsFromMap(tt.raw), WithListener[string](rec))...)
				cfg := c.Options()
				c.Close()

				require.Equal(t, tt.want.TTL, cfg.TTL)
				require.Equal(t, tt.want.SweepPeriod, cfg.SweepPeriod)
				require.Empty(t, rec.Errors())

				d, ok, err := SweepPeriodFromMap(tt.raw)
				require.NoError(t, err)
				require.Equal(t, tt.want.SweepPeriod != 0, ok)
				require.Equal(t, tt.want.SweepPeriod, d)
			}
		})
	}
}

func TestSweepPeriodFromMap(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]any
		want    time.Duration
		wantOK  bool
		wantErr error
	}{
		{"missing", map[string]any{"ttl": 1}, 0, false, nil},
		{"millis", map[string]any{"sweepPeriod": 250}, 250 * time.Millisecond, true, nil},
		{"alias duration", map[string]any{"CheckPeriod": "2s"}, 2 * time.Second, true, nil},
		{"invalid", map[string]any{"sweepPeriod": "soon"}, 0, true, ErrInvalidSweepPeriod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := SweepPeriodFromMap(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
