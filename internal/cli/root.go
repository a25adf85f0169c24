package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"feedview/internal/config"
	"feedview/internal/feed"
	"feedview/internal/format"
	"feedview/internal/logging"
	"feedview/internal/tui"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type App struct {
	ConfigPath string
	Format     string
	Pretty     bool
	LogLevel   string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "feedview",
		Short:        "Browse your posts and their comment threads",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Profile tabs (My Posts, My Premium Posts, My Subscribed Posts)
  feedview

  # One post's thread
  feedview thread 665f1c2e9b1d

  # Scriptable commands
  feedview comments list 665f1c2e9b1d --max 5
  feedview comments reply 665f1c2e9b1d 665f1d01aa02 --text "thanks!"
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			return runProfileTUI(cmd, app)
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("FEEDVIEW_CONFIG", ""), "Path to config file (default: ./feedview.toml, then ~/.feedview.toml)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("FEEDVIEW_FORMAT", "json"), "Output format (json|yaml)")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Override log.level (trace|debug|info|warn|error)")

	cmd.AddCommand(newThreadCmd(app))
	cmd.AddCommand(newCommentsCmd(app))
	cmd.AddCommand(newPostsCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

// session is everything a command needs to talk to the backend.
type session struct {
	cfg     *config.Config
	log     zerolog.Logger
	repo    feed.Repository
	closers []io.Closer
}

func (s *session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openSession loads config, builds the logger and the cached repository. The TUI
// logs to log.file; one-shot commands log to stderr.
func openSession(ctx context.Context, cmd *cobra.Command, app *App, interactive bool) (*session, error) {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return nil, err
	}
	if app.LogLevel != "" {
		cfg.Log.Level = app.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logPath := ""
	if interactive {
		logPath = cfg.Log.File
	}
	log, logCloser, err := logging.New(cfg.Log.Level, logPath, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, log: log, closers: []io.Closer{logCloser}}

	cache, err := feed.OpenCache(ctx, cfg.Cache.Backend, cfg.Cache.RedisURL, cfg.Cache.SQLitePath)
	if err != nil {
		// The backend still works without a cache.
		log.Warn().Err(err).Str("backend", cfg.Cache.Backend).Msg("cache unavailable, using memory")
		cache = feed.NewMemoryCache()
	}
	s.closers = append(s.closers, cache)

	upstream := feed.NewHTTPClient(cfg.API.BaseURL, feed.HTTPOptions{
		Token:         cfg.API.Token,
		Timeout:       cfg.API.Timeout,
		RatePerSecond: cfg.API.RatePerSecond,
		Logger:        log,
	})
	s.repo = feed.NewCachedRepository(upstream, cache, cfg.Cache.TTL, log)
	return s, nil
}

func (s *session) tuiDeps() tui.Deps {
	return tui.Deps{
		Repo:        s.repo,
		Log:         s.log,
		MaxTopLevel: s.cfg.Thread.MaxTopLevel,
		PageSize:    s.cfg.Feed.PageSize,
	}
}

func runProfileTUI(cmd *cobra.Command, app *App) error {
	s, err := openSession(cmd.Context(), cmd, app, true)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.Close()
	return tui.RunProfile(s.tuiDeps())
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.Pretty)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
