package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "FEEDVIEW_"

type Config struct {
	API struct {
		BaseURL       string        `koanf:"base_url"`
		Token         string        `koanf:"token"`
		Timeout       time.Duration `koanf:"timeout"`
		RatePerSecond float64       `koanf:"rate_per_second"`
	} `koanf:"api"`

	Thread struct {
		MaxTopLevel int `koanf:"max_top_level"`
	} `koanf:"thread"`

	Feed struct {
		PageSize int `koanf:"page_size"`
	} `koanf:"feed"`

	Cache struct {
		Backend    string        `koanf:"backend"`
		RedisURL   string        `koanf:"redis_url"`
		SQLitePath string        `koanf:"sqlite_path"`
		TTL        time.Duration `koanf:"ttl"`
	} `koanf:"cache"`

	Log struct {
		Level string `koanf:"level"`
		File  string `koanf:"file"`
	} `koanf:"log"`
}

func defaults() map[string]any {
	return map[string]any{
		"api.base_url":         "http://localhost:5000/api/v1",
		"api.timeout":          "15s",
		"api.rate_per_second":  5.0,
		"thread.max_top_level": 2,
		"feed.page_size":       10,
		"cache.backend":        "memory",
		"cache.redis_url":      "redis://localhost:6379/0",
		"cache.sqlite_path":    filepath.Join(dataDir(), "cache.sqlite"),
		"cache.ttl":            "30s",
		"log.level":            "info",
		"log.file":             filepath.Join(dataDir(), "feedview.log"),
	}
}

// DefaultPaths are searched, in order, when no config path is given.
func DefaultPaths() []string {
	return []string{"./feedview.toml", "$HOME/.feedview.toml"}
}

// Load layers defaults, the TOML file at path (or the first existing default
// path) and FEEDVIEW_* environment variables, in that order.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	} else {
		for _, p := range DefaultPaths() {
			p = os.ExpandEnv(p)
			if _, err := os.Stat(p); err != nil {
				continue
			}
			if err := k.Load(file.Provider(p), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load config %s: %w", p, err)
			}
			break
		}
	}

	// FEEDVIEW_API_BASE_URL -> api.base_url
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Cache.SQLitePath = expandHome(cfg.Cache.SQLitePath)
	cfg.Log.File = expandHome(cfg.Log.File)
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, rest, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	return section + "." + rest
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url is required")
	}
	switch c.Cache.Backend {
	case "memory", "redis", "sqlite":
	default:
		return fmt.Errorf("unknown cache.backend: %q (want memory|redis|sqlite)", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisURL == "" {
		return errors.New("cache.redis_url is required for the redis backend")
	}
	if c.Cache.Backend == "sqlite" && c.Cache.SQLitePath == "" {
		return errors.New("cache.sqlite_path is required for the sqlite backend")
	}
	if c.Thread.MaxTopLevel < 0 {
		return errors.New("thread.max_top_level must be >= 0")
	}
	if c.Feed.PageSize <= 0 {
		return errors.New("feed.page_size must be > 0")
	}
	return nil
}

const sampleConfig = `# feedview configuration

[api]
base_url = "https://feed.example.com/api/v1"
token = "your-access-token"
timeout = "15s"
rate_per_second = 5

[thread]
max_top_level = 2

[feed]
page_size = 10

[cache]
# memory | redis | sqlite
backend = "sqlite"
redis_url = "redis://localhost:6379/0"
sqlite_path = "~/.feedview/cache.sqlite"
ttl = "30s"

[log]
level = "info"
file = "~/.feedview/feedview.log"
`

// Init writes a sample config file; it refuses to overwrite an existing one.
func Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists at %s", path)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o600)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".feedview"
	}
	return filepath.Join(home, ".feedview")
}
