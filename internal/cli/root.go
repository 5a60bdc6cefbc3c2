// Package cli implements the shuowen CLI commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/gatzby-git/shuowenjiezi/internal/cache"
	"github.com/gatzby-git/shuowenjiezi/internal/config"
	"github.com/gatzby-git/shuowenjiezi/internal/deepseek"
	"github.com/gatzby-git/shuowenjiezi/internal/knowledge"
	"github.com/gatzby-git/shuowenjiezi/internal/profile"
	"github.com/gatzby-git/shuowenjiezi/internal/store"
	"github.com/gatzby-git/shuowenjiezi/internal/telemetry"
)

var (
	configPath string
	dbPath     string
	formatFlag string
	verbose    bool

	cfg      *config.Config
	shutdown = func(context.Context) error { return nil }
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "shuowen",
	Short: "Chinese character explanations for young learners",
	Long: "Look up how Chinese characters are built and how they evolved, get grade-level " +
		"recommendations and track what a learner has studied. Answers come from a " +
		"DeepSeek-compatible chat API and are cached in a local SQLite database.",
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	SilenceUsage:       true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.shuowen/config.toml)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $SHUOWEN_DB or ~/.shuowen/shuowen.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")
}

func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if formatFlag != "json" && formatFlag != "text" {
		return fmt.Errorf("unknown format %q", formatFlag)
	}

	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	c, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dbPath != "" {
		c.Data.DBPath = dbPath
	}
	cfg = c

	shutdown, err = telemetry.Setup(cmd.Context(), cfg.Telemetry.Endpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		slog.Warn("tracing disabled", "err", err)
	}
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	return shutdown(context.Background())
}

func getDBPath() string {
	return cfg.Data.DBPath
}

func openStore() (*store.SQLiteStore, error) {
	s, err := store.NewSQLiteStore(getDBPath())
	if err != nil {
		return nil, err
	}
	s.SetQuota(cfg.Cache.QuotaBytes)
	return s, nil
}

func newCache(kv store.KV) *cache.Cache {
	return cache.New(kv, cache.Options{
		Ceiling:           cfg.Cache.CeilingBytes,
		RecommendationTTL: cfg.Cache.RecommendationTTL,
		Logger:            slog.Default().With("component", "cache"),
	})
}

func newClient() *deepseek.Client {
	up := cfg.Upstream
	if up.APIKey == "" {
		slog.Warn("DEEPSEEK_API_KEY is not set; upstream calls will be rejected")
	}

	var limiter *rate.Limiter
	if up.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(up.RateLimit), 1)
	}

	return deepseek.New(deepseek.Config{
		BaseURL:     up.BaseURL,
		APIKey:      up.APIKey,
		Model:       up.Model,
		MaxTokens:   up.MaxTokens,
		Temperature: &up.Temperature,
		TopP:        &up.TopP,
		MaxRetries:  up.MaxRetries,
		BackoffBase: up.BackoffBase,
		HTTPClient:  &http.Client{Timeout: up.Timeout},
		Limiter:     limiter,
		Logger:      slog.Default().With("component", "deepseek"),
	})
}

// app is the wired set of services one command works with.
type app struct {
	store     *store.SQLiteStore
	knowledge *knowledge.Service
	profiles  *profile.Manager
}

func openApp() (*app, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}

	svc := knowledge.New(newClient(), newCache(s), knowledge.Options{
		Model:          cfg.Upstream.Model,
		ReasoningModel: cfg.Upstream.ReasoningModel,
		Documents:      s,
		Logger:         slog.Default().With("component", "knowledge"),
	})

	return &app{
		store:     s,
		knowledge: svc,
		profiles:  profile.NewManager(s, profile.WithLogger(slog.Default().With("component", "profile"))),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func mustOpenApp() *app {
	a, err := openApp()
	if err != nil {
		exitErr("open store", err)
	}
	return a
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
