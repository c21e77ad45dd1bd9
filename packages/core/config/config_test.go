package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.IsDefault())
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 2000.0, cfg.PollRate)
	assert.False(t, cfg.GetVerbose())
}

func TestFindAndLoadConfig_NoFile(t *testing.T) {
	cfg, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.True(t, cfg.IsDefault())
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	content := `headers:
  User-Agent: asynchttp/1.0
  Authorization: Bearer abc
pollRate: 500
port: 8080
verbose: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".asynchttp.yaml"), []byte(content), 0644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "asynchttp/1.0", cfg.Headers["User-Agent"])
	assert.Equal(t, 500.0, cfg.PollRate)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.GetVerbose())
	assert.Equal(t, 30000, cfg.Timeout)
	assert.Equal(t, []string{"Authorization", "User-Agent"}, cfg.HeaderNames())
}

func TestLoadConfig_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"timeout": 1500, "output": "json", "noColor": true}`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1500, cfg.Timeout)
	assert.Equal(t, "json", cfg.Output)
	assert.True(t, cfg.GetNoColor())
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("port: 70000\n"), 0644))
	_, err := LoadConfig(bad)
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0644))
	_, err = LoadConfig(broken)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"A": "1", "B": "2"}

	merged := base.Merge(&Config{
		Headers: map[string]string{"B": "override"},
		Port:    9000,
		Verbose: BoolPtr(true),
	})

	assert.Equal(t, map[string]string{"A": "1", "B": "override"}, merged.Headers)
	assert.Equal(t, 9000, merged.Port)
	assert.True(t, merged.GetVerbose())
	assert.Equal(t, base.PollRate, merged.PollRate)
	assert.Equal(t, "2", base.Headers["B"], "merge must not mutate the receiver")
	assert.Same(t, base, base.Merge(nil))
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Headers = map[string]string{"X-Trace": "on"}
	cfg.History = "history.db"

	for _, name := range []string{"out.yaml", "out.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, cfg.SaveConfig(path))

		loaded, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "on", loaded.Headers["X-Trace"])
		assert.Equal(t, "history.db", loaded.History)
	}
}
