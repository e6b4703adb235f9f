package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, env := range os.Environ() {
		if name, _, ok := strings.Cut(env, "="); ok && strings.HasPrefix(name, "BOOKBOT_") {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
	return dir
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	want := Default()
	want.Secrets.Dir = filepath.Join(dir, "bookbot", "secrets")
	assert.Equal(t, want, cfg)
	assert.Empty(t, cfg.Path)
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.toml")

	require.NoError(t, WriteDefault(path, false))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(configFileMode), info.Mode().Perm())

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, Default().Dialogue, cfg.Dialogue)
	assert.Equal(t, Default().Search, cfg.Search)
	assert.Equal(t, filepath.Join(dir, "nested", "secrets"), cfg.Secrets.Dir)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriteDefaultKeepsExistingFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[commands]\nprefix = \"?\"\n"), 0o600))

	err := WriteDefault(path, false)
	require.ErrorIs(t, err, ErrConfigExists)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `prefix = "?"`)

	require.NoError(t, WriteDefault(path, true))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "selection_timeout")
	assert.Contains(t, string(data), "1m0s")
	assert.NotContains(t, string(data), `prefix = "?"`)
}

func TestLoadAppliesFileThenEnvironment(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"[search]",
		"limit = 8",
		"",
		"[dialogue]",
		"rating_timeout = \"30s\"",
		"cancel_token = \"stop\"",
		"",
		"[commands]",
		"prefix = \"?\"",
		"",
		"[log]",
		"format = \"json\"",
	}, "\n")), 0o600))

	t.Setenv("BOOKBOT_DIALOGUE_RATING_TIMEOUT", "2m")
	t.Setenv("BOOKBOT_HEALTH_LISTEN", "127.0.0.1:9000")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Search.Limit)
	assert.Equal(t, 2*time.Minute, cfg.Dialogue.RatingTimeout)
	assert.Equal(t, "stop", cfg.Dialogue.CancelToken)
	assert.Equal(t, "?", cfg.Commands.Prefix)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:9000", cfg.Health.Listen)

	engine := cfg.EngineConfig()
	assert.Equal(t, 8, engine.SearchLimit)
	assert.Equal(t, "stop", engine.CancelToken)
	assert.Equal(t, "?", cfg.DispatcherConfig().Prefix)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	dir := isolate(t)

	_, err := Load(viper.New(), filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "read config file")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"[dialogue]",
		"comment_timeout = \"0s\"",
		"skip_token = \"CANCEL\"",
		"",
		"[commands]",
		"prefix = \" \"",
		"",
		"[search]",
		"limit = 99",
	}, "\n")), 0o600))

	_, err := Load(viper.New(), path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "dialogue.comment_timeout must be positive")
	assert.ErrorContains(t, err, "tokens must differ")
	assert.ErrorContains(t, err, "commands.prefix is empty")
	assert.ErrorContains(t, err, "search.limit must be between 1 and 40")
}

func TestLoadRejectsNewerSchema(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 2\n"), 0o600))

	_, err := Load(viper.New(), path)
	require.ErrorContains(t, err, "unsupported config schema version 2")
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[search\nlimit = "), 0o600))

	_, err := Load(viper.New(), path)
	require.ErrorContains(t, err, "read config file")
}
