package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/domon/internal/config"
	"github.com/MrSnakeDoc/domon/internal/dashboard"
	"github.com/MrSnakeDoc/domon/internal/gateway"
	"github.com/MrSnakeDoc/domon/internal/httpserver"
	"github.com/MrSnakeDoc/domon/internal/httpserver/deps"
	"github.com/MrSnakeDoc/domon/internal/logger"
	"github.com/MrSnakeDoc/domon/internal/metrics"
	"github.com/MrSnakeDoc/domon/internal/redis"
	"github.com/MrSnakeDoc/domon/internal/render"
	"github.com/MrSnakeDoc/domon/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/domon/internal/store/redis"
	"github.com/MrSnakeDoc/domon/internal/utils"
	"github.com/MrSnakeDoc/domon/internal/version"
)

// App is the long-running dashboard server.
type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	dash        *dashboard.Dashboard
	redisClient *goredis.Client
	snapshots   *redisstore.Store
	reloader    *scheduler.Reloader
	gc          *scheduler.GarbageCollector
	watcher     *scheduler.FileWatcher
}

// NewGateway builds the data source selected by cfg.Source.
func NewGateway(cfg *config.Config, log logger.Logger, m *metrics.Metrics) (gateway.Gateway, error) {
	switch cfg.Source {
	case config.SourceAPI:
		return gateway.NewAPI(gateway.APIConfig{
			BaseURL:       cfg.APIURL,
			Timeout:       cfg.APITimeout,
			SessionCookie: cfg.SessionCookie,
		}, log, m)
	case config.SourceFixture:
		if cfg.FixtureFile == "" {
			return gateway.NewFixture(), nil
		}
		return gateway.LoadFixture(cfg.FixtureFile)
	case config.SourcePayload:
		return gateway.LoadPayload(cfg.PayloadFile)
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}

// NewDashboard builds the application state on top of gw. opts carries
// the optional collaborators (metrics, caches, snapshots); gw, log and the
// config-driven settings override whatever it sets for them.
func NewDashboard(gw gateway.Gateway, cfg *config.Config, log logger.Logger, opts dashboard.Options) (*dashboard.Dashboard, error) {
	opts.Gateway = gw
	opts.Logger = log
	opts.AllowedTLDs = cfg.AllowedTLDs
	return dashboard.New(opts)
}

// New wires the server. Redis is optional: when it cannot be reached the
// dashboard runs without snapshots.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	m := metrics.New()
	a := &App{cfg: cfg, logger: log}

	var checks dashboard.CheckCache
	if cfg.SnapshotsEnabled() {
		client, err := redis.New(ctx, redis.OptionsFromConfig(cfg), log)
		if err != nil {
			log.Warn("redis unavailable, running without snapshots", logger.Error(err))
		} else {
			a.redisClient = client
			a.snapshots = redisstore.NewStore(client, cfg.SnapshotTTL)
			checks = redisstore.NewCheckCache(a.snapshots, 0)
		}
	}

	gw, err := NewGateway(cfg, log, m)
	if err != nil {
		a.closeRedis()
		return nil, fmt.Errorf("failed to build %s source: %w", cfg.Source, err)
	}
	opts := dashboard.Options{
		Metrics: m,
		Checks:  checks,
		// a visitor's mutation refreshes the shared store in the background
		OnMutation: func() {
			if a.reloader != nil {
				a.reloader.Trigger()
			}
		},
	}
	if a.snapshots != nil {
		opts.Snapshots = a.snapshots
	}
	dash, err := NewDashboard(gw, cfg, log, opts)
	if err != nil {
		a.closeRedis()
		return nil, err
	}
	a.dash = dash

	pages, err := render.NewHTML()
	if err != nil {
		a.closeRedis()
		return nil, err
	}

	if a.snapshots != nil {
		a.gc = scheduler.NewGarbageCollector(a.snapshots, dash.Store(), log, scheduler.DefaultGCInterval)
	}
	a.reloader = scheduler.NewReloader(dash, log, cfg.ReloadInterval)

	if fx, ok := gw.(*gateway.Fixture); ok && cfg.FixtureFile != "" {
		path := cfg.FixtureFile
		a.watcher = scheduler.NewFileWatcher(path, func(context.Context) error {
			if err := fx.ReloadFile(path); err != nil {
				return err
			}
			a.reloader.Trigger()
			return nil
		}, log, 0)
	}

	d := deps.Deps{
		Logger:               log,
		StartTime:            time.Now(),
		Version:              version.Version,
		Commit:               version.Commit,
		BuildDate:            version.BuildDate,
		GoVersion:            version.GoVersion,
		TimeNow:              time.Now,
		AllowedHosts:         cfg.AllowedHosts,
		AllowedCIDRS:         cfg.AllowedCIDRS,
		TrustProxy:           cfg.TrustProxy,
		Dashboard:            dash,
		Pages:                pages,
		Metrics:              m,
		TriggerReload:        a.reloader.Trigger,
		BulkMaxBytes:         cfg.BulkMaxBytes,
		MutationBurst:        cfg.MutationBurst,
		MutationRefillPerMin: cfg.MutationRefillPerMin,
		ReadBurst:            cfg.ReadBurst,
		ReadRefillPerMin:     cfg.ReadRefillPerMin,
	}
	if a.snapshots != nil {
		d.Snapshots = a.snapshots
	}

	a.server = httpserver.New(cfg, log, d)
	return a, nil
}

// Run serves until SIGINT/SIGTERM, then shuts down within ShutdownTimeout.
func (a *App) Run() error {
	a.logger.Info("starting domon",
		logger.String("version", version.String()),
		logger.String("addr", a.cfg.ListenPort),
		logger.String("source", a.cfg.Source))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.snapshots != nil {
		syncer := scheduler.NewSnapshotSyncer(a.snapshots, a.dash, a.logger)
		if _, err := syncer.Sync(ctx); err != nil {
			a.logger.Warn("failed to restore snapshot, waiting for the backend", logger.Error(err))
		}
	}

	a.reloader.Start(ctx)
	a.logger.Info("reloader started", logger.Duration("interval", a.cfg.ReloadInterval))

	if a.gc != nil {
		a.gc.Start(ctx)
	}
	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			a.logger.Warn("fixture file will not be reloaded on change", logger.Error(err))
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down gracefully")
	case runErr = <-errCh:
	}

	a.reloader.Stop()
	if a.gc != nil {
		a.gc.Stop()
	}
	if a.watcher != nil {
		a.watcher.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	a.closeRedis()
	if runErr == nil {
		a.logger.Info("domon stopped cleanly")
	}
	return runErr
}

func (a *App) closeRedis() {
	if a.redisClient != nil {
		utils.CloseLogged(a.redisClient, a.logger, "redis")
	}
}
