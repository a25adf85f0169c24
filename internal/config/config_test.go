package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolateHome(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Thread.MaxTopLevel)
	assert.Equal(t, 10, cfg.Feed.PageSize)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, filepath.Join(home, ".feedview", "cache.sqlite"), cfg.Cache.SQLitePath)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(t.TempDir(), "feedview.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[api]
base_url = "https://feed.example.com/api/v1"
token = "from-file"

[thread]
max_top_level = 5

[cache]
backend = "sqlite"
sqlite_path = "~/snap.sqlite"
`), 0o600))

	t.Setenv("FEEDVIEW_API_TOKEN", "from-env")
	t.Setenv("FEEDVIEW_CACHE_TTL", "1m")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://feed.example.com/api/v1", cfg.API.BaseURL)
	assert.Equal(t, "from-env", cfg.API.Token)
	assert.Equal(t, 5, cfg.Thread.MaxTopLevel)
	assert.Equal(t, "sqlite", cfg.Cache.Backend)
	assert.Equal(t, filepath.Join(home, "snap.sqlite"), cfg.Cache.SQLitePath)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
}

func TestLoad_HomeConfigIsPickedUp(t *testing.T) {
	home := isolateHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".feedview.toml"), []byte("[feed]\npage_size = 25\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Feed.PageSize)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolateHome(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolateHome(t)
	base, err := Load("")
	require.NoError(t, err)

	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "empty base url", mutate: func(c *Config) { c.API.BaseURL = " " }},
		{name: "unknown backend", mutate: func(c *Config) { c.Cache.Backend = "memcached" }},
		{name: "redis without url", mutate: func(c *Config) { c.Cache.Backend = "redis"; c.Cache.RedisURL = "" }},
		{name: "negative max", mutate: func(c *Config) { c.Thread.MaxTopLevel = -1 }},
		{name: "zero page size", mutate: func(c *Config) { c.Feed.PageSize = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := *base
			tc.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "feedview.toml")
	require.NoError(t, Init(path))
	assert.Error(t, Init(path), "second init must not overwrite")

	isolateHome(t)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Cache.Backend)
	require.NoError(t, cfg.Validate())
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "api.base_url", envKey("FEEDVIEW_API_BASE_URL"))
	assert.Equal(t, "thread.max_top_level", envKey("FEEDVIEW_THREAD_MAX_TOP_LEVEL"))
	assert.Equal(t, "debug", envKey("FEEDVIEW_DEBUG"))
}
