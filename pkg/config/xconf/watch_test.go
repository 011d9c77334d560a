package xconf

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatch_ReloadOnWrite(t *testing.T) {
	path := writeFile(t, "config.yaml", "sweepPeriod: 100\n")
	cfg, err := New(path)
	require.NoError(t, err)

	reloaded := make(chan int, 4)
	w, err := Watch(cfg, func(c Config, err error) {
		if err == nil {
			reloaded <- c.Client().Int("sweepPeriod")
		}
	}, WithDebounce(10*time.Millisecond), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.yaml"), []byte("x: 1"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("sweepPeriod: 250\n"), 0o600))

	select {
	case v := <-reloaded:
		assert.Equal(t, 250, v)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload callback")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatch_Errors(t *testing.T) {
	cfg, err := NewFromBytes([]byte("a: 1"), FormatYAML)
	require.NoError(t, err)
	_, err = Watch(cfg, nil)
	assert.ErrorIs(t, err, ErrNotReloadable)

	_, err = Watch(nil, nil)
	assert.Error(t, err)
}
