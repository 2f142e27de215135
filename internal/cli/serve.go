package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/internal/server"
	"github.com/matzehuels/lineage/pkg/cache"
	"github.com/matzehuels/lineage/pkg/config"
	"github.com/matzehuels/lineage/pkg/observability"
	"github.com/matzehuels/lineage/pkg/pipeline"
	"github.com/matzehuels/lineage/pkg/session"
	"github.com/matzehuels/lineage/pkg/store"
)

// sessionCleanupInterval is how often expired sessions are purged from
// backends without native expiry.
const sessionCleanupInterval = 10 * time.Minute

// serveCommand starts the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		dirPath string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lineage HTTP API",
		Long: `Serve the lineage HTTP API.

Backends come from the config file: the layout cache ([cache]), where records
and layouts are kept ([store]) and where selection sessions live
([server] sessions). Prometheus metrics are exposed on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, dirPath, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&dirPath, "directory", "", "user and team directory (TOML)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, dirPath string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			c.Logger.Warn("close store", "err", err)
		}
	}()

	sessions, closeSessions, err := c.newSessionStore(ctx, runner)
	if err != nil {
		return err
	}
	defer closeSessions()

	dir, err := c.loadDirectory(dirPath)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	go purgeSessions(ctx, c, sessions)

	srv := server.New(server.Config{
		Runner:     runner,
		Store:      st,
		Sessions:   sessions,
		SessionTTL: c.cfg.Server.SessionTTL,
		Directory:  dir,
		Layout: pipeline.Options{
			UnitX: c.cfg.Layout.UnitX,
			UnitY: c.cfg.Layout.UnitY,
		},
		Gatherer: reg,
		Logger:   c.Logger,
	})

	printSuccess("Serving lineage API")
	printKeyValue("Address", addr)
	printKeyValue("Cache", c.cfg.Cache.Backend)
	printKeyValue("Store", c.cfg.Store.Backend)
	printKeyValue("Sessions", c.cfg.Server.Sessions)
	printNewline()

	return srv.Serve(ctx, addr)
}

func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	if c.cfg.Store.Backend != config.BackendMongo {
		return store.NewMemoryStore(), nil
	}
	st, err := store.NewMongoStore(ctx, store.MongoConfig{
		URI:      c.cfg.Mongo.URI,
		Database: c.cfg.Mongo.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// newSessionStore builds the session backend. A Redis session store shares
// the cache's client when the cache is Redis too, and the returned close
// function leaves a shared client to the runner.
func (c *CLI) newSessionStore(ctx context.Context, runner *pipeline.Runner) (session.Store, func(), error) {
	if c.cfg.Server.Sessions != config.BackendRedis {
		s := session.NewMemoryStore()
		return s, func() { _ = s.Close() }, nil
	}
	if rc, ok := runner.Cache.(*cache.RedisCache); ok {
		return session.NewRedisStore(rc.Client(), ""), func() {}, nil
	}
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     c.cfg.Redis.Addr,
		Password: c.cfg.Redis.Password,
		DB:       c.cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}
	s := session.NewRedisStore(rc.Client(), "")
	return s, func() { _ = s.Close() }, nil
}

func purgeSessions(ctx context.Context, c *CLI, sessions session.Store) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sessions.Cleanup(ctx); err != nil {
				c.Logger.Warn("session cleanup failed", "err", err)
			}
		}
	}
}
