package cli

import (
	"os"
	"path/filepath"

	"feedview/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}
	cmd.AddCommand(newConfigInitCmd(app))
	cmd.AddCommand(newConfigShowCmd(app))
	return cmd
}

func newConfigInitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a sample config file (--config, default ~/.feedview.toml)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.ConfigPath
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return writeErr(cmd, err)
				}
				path = filepath.Join(home, ".feedview.toml")
			}
			if err := config.Init(path); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": path}})
		},
	}
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (token redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(app.ConfigPath)
			if err != nil {
				return writeErr(cmd, err)
			}
			token := ""
			if cfg.API.Token != "" {
				token = "***"
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"api": map[string]any{
					"base_url":        cfg.API.BaseURL,
					"token":           token,
					"timeout":         cfg.API.Timeout.String(),
					"rate_per_second": cfg.API.RatePerSecond,
				},
				"thread": map[string]any{"max_top_level": cfg.Thread.MaxTopLevel},
				"feed":   map[string]any{"page_size": cfg.Feed.PageSize},
				"cache": map[string]any{
					"backend":     cfg.Cache.Backend,
					"redis_url":   cfg.Cache.RedisURL,
					"sqlite_path": cfg.Cache.SQLitePath,
					"ttl":         cfg.Cache.TTL.String(),
				},
				"log": map[string]any{"level": cfg.Log.Level, "file": cfg.Log.File},
			}})
		},
	}
}
