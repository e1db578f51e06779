package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/lexiq/internal/catalog"
	"github.com/abhisek/lexiq/internal/config"
	"github.com/abhisek/lexiq/internal/logger"
	"github.com/abhisek/lexiq/internal/mastery"
	"github.com/abhisek/lexiq/internal/relcache"
	"github.com/abhisek/lexiq/internal/relgraph"
	"github.com/abhisek/lexiq/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "lexiq",
	Short: "Adaptive vocabulary scheduler",
	Long: "lexiq tracks per-word mastery and builds study sessions that mix review,\n" +
		"struggling words and new material.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides LEXIQ_DB env var)")
	pf.String("config", "", "Config file (yaml, toml or json)")
	pf.String("log", "", "Log format: dev or prod")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("redis", "", "Redis address for the shared relation cache")

	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
}

// app bundles what a command needs after flags are parsed.
type app struct {
	cfg   config.Config
	log   *logger.Logger
	store *store.Store
	cache *relcache.Cache
}

// openApp resolves configuration, creates the logger and opens the
// store. Callers must Close the result.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(config.Options{Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Debug("store opened", "path", dbPath)

	return &app{cfg: cfg, log: log, store: st}, nil
}

func (a *app) Close() {
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("close store", "error", err)
	}
	a.log.Sync()
}

// relationCache returns Redis when configured and reachable, otherwise the
// SQLite relation table.
func (a *app) relationCache(ctx context.Context) relgraph.RelationCache {
	if a.cfg.RedisAddr == "" {
		return a.store.RelationRepo()
	}
	if a.cache == nil {
		c, err := relcache.Dial(ctx, a.cfg.RedisAddr, a.cfg.RedisTTL, a.log)
		if err != nil {
			a.log.Warn("redis unavailable, using local relation cache", "addr", a.cfg.RedisAddr, "error", err)
			return a.store.RelationRepo()
		}
		a.cache = c
	}
	return a.cache
}

// progress loads the service backed by the store.
func (a *app) progress(ctx context.Context) (*mastery.Service, error) {
	svc := mastery.NewService(a.store.ProgressRepo(), a.store.EventRepo())
	if err := svc.Load(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// loadCatalog reads the --catalog flag.
func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	path, _ := cmd.Flags().GetString("catalog")
	if path == "" {
		return nil, fmt.Errorf("--catalog is required")
	}
	c, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}
