package xttl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValue(t *testing.T) {
	calls := 0
	tests := []struct {
		name   string
		v      Value[int]
		kind   Kind
		absent bool
		want   int
	}{
		{"zero value", Value[int]{}, KindNone, true, 0},
		{"none", None[int](), KindNone, true, 0},
		{"raw", Raw(7), KindRaw, false, 7},
		{"raw zero", Raw(0), KindRaw, false, 0},
		{"nil producer", Producer[int](nil), KindNone, true, 0},
		{"producer", Producer(func() int { calls++; return 9 }), KindProducer, false, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.v.Kind())
			assert.Equal(t, tt.absent, tt.v.IsAbsent())
			assert.Equal(t, tt.want, tt.v.Resolve())
		})
	}
	assert.Equal(t, 1, calls)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "none", KindNone.String())
	assert.Equal(t, "raw", KindRaw.String())
	assert.Equal(t, "producer", KindProducer.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestEntry_Expired(t *testing.T) {
	tests := []struct {
		name      string
		entry     Entry[int]
		now       time.Duration
		lastUsage bool
		want      bool
	}{
		{"zero ttl", Entry[int]{TTL: 0}, time.Hour, false, false},
		{"negative ttl", Entry[int]{TTL: -time.Second}, time.Hour, false, false},
		{"within ttl", Entry[int]{TTL: time.Second}, time.Second, false, false},
		{"past ttl", Entry[int]{TTL: time.Second}, time.Second + 1, false, true},
		{"last usage keeps alive", Entry[int]{TTL: time.Second, LastUsage: 5 * time.Second}, 6 * time.Second, true, false},
		{"create time ignores usage", Entry[int]{TTL: time.Second, LastUsage: 5 * time.Second}, 6 * time.Second, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.expired(tt.now, tt.lastUsage))
		})
	}
}

func TestEntry_Renew(t *testing.T) {
	e := &Entry[string]{Value: Raw("old"), now: 3 * time.Second}
	e.Renew(Raw("new"))

	assert.Equal(t, "new", e.Value.Resolve())
	assert.Equal(t, 3*time.Second, e.CreateTime)
	assert.Equal(t, 3*time.Second, e.LastUsage)
	assert.Equal(t, 3*time.Second, e.Now())
}
