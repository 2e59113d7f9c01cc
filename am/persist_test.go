package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "am.toml")
	cfg := Defaults()
	cfg.Match.Workers = 5
	cfg.Output.Formats = []string{"csv", "json"}

	require.NoError(t, WriteConfig(path, cfg))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.Match.Workers)
	assert.Equal(t, []string{"csv", "json"}, loaded.Output.Formats)
	assert.Equal(t, cfg.Semantic, loaded.Semantic)
}

func TestWriteConfig_RotatesBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	for i := 1; i <= 5; i++ {
		cfg := Defaults()
		cfg.Match.Workers = i
		require.NoError(t, WriteConfig(path, cfg))
	}

	for _, suffix := range []string{".back1", ".back2", ".back3"} {
		_, err := os.Stat(path + suffix)
		assert.NoError(t, err, suffix)
	}
	_, err := os.Stat(path + ".back4")
	assert.True(t, os.IsNotExist(err))

	back1, err := LoadFromFile(path + ".back1")
	require.NoError(t, err)
	assert.Equal(t, 4, back1.Match.Workers)
}

func TestSetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")

	require.NoError(t, SetValue(path, "semantic.enabled", "true"))
	require.NoError(t, SetValue(path, "semantic.threshold", "0.75"))
	require.NoError(t, SetValue(path, "match.workers", "4"))
	require.NoError(t, SetValue(path, "output.formats", "csv, json"))
	require.NoError(t, SetValue(path, "input.datasets", "data/ds.csv"))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Semantic.Enabled)
	assert.Equal(t, 0.75, cfg.Semantic.Threshold)
	assert.Equal(t, 4, cfg.Match.Workers)
	assert.Equal(t, []string{"csv", "json"}, cfg.Output.Formats)
	assert.Equal(t, "data/ds.csv", cfg.Input.Datasets)
}

func TestSetValue_InvalidKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	assert.Error(t, SetValue(path, "semantic..enabled", "true"))
	assert.Error(t, SetValue(path, "", "x"))
}
