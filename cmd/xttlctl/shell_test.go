package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xttl/pkg/config/xconf"
	"github.com/omeyang/xttl/pkg/observability/xlog"
	"github.com/omeyang/xttl/pkg/storage/xttl"
)

func newTestShell(t *testing.T, opts ...xttl.Option) *shell {
	t.Helper()
	c := xttl.New[string](opts...)
	t.Cleanup(c.Close)
	return newShell(c, nil, &bytes.Buffer{})
}

func TestShell_Execute(t *testing.T) {
	ctx := context.Background()
	sh := newTestShell(t)

	steps := []struct {
		cmd  string
		args []string
		want string
	}{
		{"push", []string{"a", "1"}, "OK"},
		{"SET", []string{"b", "2", "30s"}, "OK"},
		{"get", []string{"a"}, `"1"`},
		{"get", []string{"zzz"}, "(nil)"},
		{"get", []string{"a", "zzz"}, "a => \"1\"\nzzz => (nil)"},
		{"keys", nil, "a\nb"},
		{"size", nil, "(integer) 2"},
		{"sweep", nil, "checked=2 refreshed=0 evicted=0"},
		{"del", []string{"a", "zzz"}, "(integer) 1"},
		{"clear", nil, "OK"},
		{"keys", nil, "(empty)"},
		{"config", nil, "ttl=0s sweepPeriod=0s lastUsage=false refresh=false"},
	}
	for _, st := range steps {
		got, err := sh.Execute(ctx, st.cmd, st.args)
		require.NoError(t, err, "%s %v", st.cmd, st.args)
		assert.Equal(t, st.want, got, "%s %v", st.cmd, st.args)
	}

	help, err := sh.Execute(ctx, "help", nil)
	require.NoError(t, err)
	assert.Contains(t, help, "push <key> <value> [ttl]")
}

func TestShell_Stats(t *testing.T) {
	ctx := context.Background()

	m, err := newSessionMetrics()
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	c := xttl.New[string](xttl.WithObserver(m.observer))
	t.Cleanup(c.Close)
	sh := newShell(c, m, &bytes.Buffer{})

	out, err := sh.Execute(ctx, "stats", nil)
	require.NoError(t, err)
	assert.Equal(t, "(empty)", out)

	for _, step := range [][]string{{"push", "a", "1"}, {"get", "a", "b"}, {"sweep"}, {"sweep"}} {
		_, err := sh.Execute(ctx, step[0], step[1:])
		require.NoError(t, err)
	}
	out, err = sh.Execute(ctx, "stats", nil)
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "get_multi/ok count=1 avg="), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "sweep/ok count=2 avg="), lines[1])

	out, err = newTestShell(t).Execute(ctx, "stats", nil)
	require.NoError(t, err)
	assert.Equal(t, "metrics disabled", out)
}

func TestShell_UsageErrors(t *testing.T) {
	ctx := context.Background()
	sh := newTestShell(t)

	tests := []struct {
		cmd  string
		args []string
	}{
		{"push", []string{"a"}},
		{"push", []string{"a", "1", "2", "3"}},
		{"push", []string{"a", "1", "-5"}},
		{"push", []string{"a", "1", "later"}},
		{"get", nil},
		{"del", nil},
		{"frobnicate", nil},
	}
	for _, tt := range tests {
		t.Run(tt.cmd+" "+strings.Join(tt.args, " "), func(t *testing.T) {
			_, err := sh.Execute(ctx, tt.cmd, tt.args)
			var usageErr *usageError
			assert.ErrorAs(t, err, &usageErr)
		})
	}
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"0", 0, false},
		{"90", 90 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{"250ms", 250 * time.Millisecond, false},
		{"-1", 0, true},
		{"-1s", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTTL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReloadSweepPeriod(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xttl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  sweepPeriod: 50\n"), 0o600))
	cfg, err := xconf.New(path)
	require.NoError(t, err)

	c := xttl.New[string]()
	defer c.Close()
	reload := reloadSweepPeriod(c, xlog.Discard())

	reload(cfg, nil)
	assert.Equal(t, 50*time.Millisecond, c.Options().SweepPeriod)

	require.NoError(t, os.WriteFile(path, []byte("cache:\n  sweepPeriod: never\n"), 0o600))
	require.NoError(t, cfg.Reload())
	reload(cfg, nil)
	assert.Equal(t, 50*time.Millisecond, c.Options().SweepPeriod, "invalid value keeps the running period")

	require.NoError(t, os.WriteFile(path, []byte("cache:\n  ttl: 1\n"), 0o600))
	require.NoError(t, cfg.Reload())
	reload(cfg, nil)
	assert.Zero(t, c.Options().SweepPeriod)

	reload(nil, assert.AnError)
	assert.Zero(t, c.Options().SweepPeriod)
}
