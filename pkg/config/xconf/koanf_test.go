package xconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
cache:
  ttl: 30
  sweepPeriod: 1000
  lastUsage: true
log:
  level: debug
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNew_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", yamlConfig)

	cfg, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, cfg.Format())
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, 30, cfg.Client().Int("cache.ttl"))

	raw := cfg.Raw("cache")
	assert.EqualValues(t, 30, raw["ttl"])
	assert.Equal(t, true, raw["lastUsage"])
	assert.Empty(t, cfg.Raw("missing"))
	assert.Contains(t, cfg.Raw(""), "log")
}

func TestNew_Errors(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = New("config.toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = New(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, ErrLoadFailed)

	_, err = New(writeFile(t, "bad.json", "{not json"))
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestNewFromBytes(t *testing.T) {
	cfg, err := NewFromBytes([]byte(`{"cache":{"ttl":"1m"}}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "1m", cfg.Raw("cache")["ttl"])
	assert.ErrorIs(t, cfg.Reload(), ErrNotReloadable)
	assert.Empty(t, cfg.Path())

	empty, err := NewFromBytes(nil, FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, empty.Raw(""))

	_, err = NewFromBytes([]byte("a: 1"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestUnmarshal(t *testing.T) {
	type logConfig struct {
		Level string `koanf:"level"`
	}
	cfg, err := NewFromBytes([]byte(yamlConfig), FormatYAML, WithDelim(""), WithTag(""))
	require.NoError(t, err)

	var lc logConfig
	require.NoError(t, cfg.Unmarshal("log", &lc))
	assert.Equal(t, "debug", lc.Level)

	var bad struct {
		TTL map[string]int `koanf:"ttl"`
	}
	assert.ErrorIs(t, cfg.Unmarshal("cache", &bad), ErrUnmarshalFailed)
}

func TestReload(t *testing.T) {
	path := writeFile(t, "config.yml", "ttl: 1\n")
	cfg, err := New(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("ttl: 2\n"), 0o600))
	require.NoError(t, cfg.Reload())
	assert.Equal(t, 2, cfg.Client().Int("ttl"))

	require.NoError(t, os.WriteFile(path, []byte("ttl: [\n"), 0o600))
	assert.ErrorIs(t, cfg.Reload(), ErrParseFailed)
	assert.Equal(t, 2, cfg.Client().Int("ttl"), "解析失败时保留旧配置")
}
