package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/chamber-panel/internal/actions"
	"github.com/rickgao/chamber-panel/internal/config"
	"github.com/rickgao/chamber-panel/internal/connection"
	"github.com/rickgao/chamber-panel/internal/dashboard"
	"github.com/rickgao/chamber-panel/internal/database"
	"github.com/rickgao/chamber-panel/internal/journal"
	"github.com/rickgao/chamber-panel/internal/metrics"
	"github.com/rickgao/chamber-panel/internal/panel"
	"github.com/rickgao/chamber-panel/internal/router"
	"github.com/rickgao/chamber-panel/internal/version"
	"github.com/rickgao/chamber-panel/internal/webui"
)

func main() {
	configPath := flag.String("config", "configs/panel.yaml", "path to config file")
	flag.Parse()

	// Bootstrap logger until the config says otherwise
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "config", *configPath, "error", err)
		os.Exit(1)
	}

	configured, err := newLogger(cfg.Logging, os.Stdout)
	if err != nil {
		logger.Error("failed to configure logging", "error", err)
		os.Exit(1)
	}
	logger = configured

	session := uuid.New()
	logger = logger.With("session_id", session.String())
	slog.SetDefault(logger)

	logger.Info("starting chamber panel",
		version.Attr(),
		"config", *configPath,
		"controller", cfg.Controller.URL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, session, logger); err != nil {
		logger.Error("panel exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("chamber panel stopped")
}

// newLogger builds the process logger from the logging section.
func newLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch cfg.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

func run(ctx context.Context, cfg *config.PanelConfig, session uuid.UUID, logger *slog.Logger) error {
	// Metrics
	reg := prometheus.NewRegistry()
	var collector metrics.Collector = metrics.Noop()
	if cfg.Metrics.IsEnabled() {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		pc, err := metrics.NewPrometheusCollector(reg)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		collector = pc
	}

	var (
		routerOpts = []router.Option{router.WithLogger(logger), router.WithMetrics(collector)}
		senderOpts = []actions.Option{actions.WithLogger(logger), actions.WithMetrics(collector)}
		webOpts    = []webui.Option{webui.WithLogger(logger)}
	)

	// Journal
	var j *journal.Journal
	if cfg.Journal.Enabled {
		pool, err := connectJournal(ctx, cfg.Journal.Database, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		j = journal.New(journal.Config{
			BatchSize:     cfg.Journal.BatchSize,
			FlushInterval: cfg.Journal.FlushInterval,
			BufferSize:    cfg.Journal.BufferSize,
		}, pool, session, journal.WithLogger(logger), journal.WithMetrics(collector))

		if err := j.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("create journal schema: %w", err)
		}

		routerOpts = append(routerOpts, router.WithObserver(j.ObserveInbound))
		senderOpts = append(senderOpts, actions.WithSendHook(j.ObserveOutbound))
		webOpts = append(webOpts, webui.WithComponent("journal", func() any { return j.Stats() }))
	}

	// Controller connection, dashboard and event loop
	mgr := connection.NewManager(connection.ClientConfig{
		URL:              cfg.Controller.URL,
		HandshakeTimeout: cfg.Controller.HandshakeTimeout,
		WriteTimeout:     cfg.Controller.WriteTimeout,
		BufferSize:       cfg.Controller.BufferSize,
	}, logger, connection.WithMetrics(collector))

	sender := actions.NewSender(mgr, senderOpts...)
	dash := dashboard.Build(dashboard.Topology{
		TempSensors:     cfg.Topology.TempSensors,
		HumiditySensors: cfg.Topology.HumiditySensors,
		Humidifiers:     cfg.Topology.Humidifiers,
		Pumps:           cfg.Topology.Pumps,
	}, sender)
	p := panel.New(dash, router.New(dash, routerOpts...), mgr, panel.WithLogger(logger))

	if cfg.Metrics.IsEnabled() {
		webOpts = append(webOpts, webui.WithMetricsHandler(cfg.Metrics.Path,
			promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	}
	handler := webui.NewHandler(p, mgr, webOpts...)

	ln, err := net.Listen("tcp", cfg.HTTP.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HTTP.Listen, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.Run(gctx) })
	g.Go(func() error { return webui.ServeListener(gctx, ln, handler, logger) })
	if j != nil {
		if err := j.Start(gctx); err != nil {
			return fmt.Errorf("start journal: %w", err)
		}
	}

	if err := mgr.Start(gctx); err != nil {
		logger.Warn("serving dashboard without a controller connection, restart the panel to retry")
	}

	logger.Info("chamber panel running", "url", "http://"+ln.Addr().String())

	err = g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if stopErr := mgr.Stop(shutdownCtx); stopErr != nil {
		logger.Warn("controller close", "error", stopErr)
	}
	if j != nil {
		if stopErr := j.Stop(shutdownCtx); stopErr != nil {
			logger.Error("journal stop", "error", stopErr)
		}
	}
	return err
}

func connectJournal(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("connecting to journal database",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Name,
	)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := database.Connect(connectCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect journal database: %w", err)
	}
	logger.Info("journal database connected")
	return pool, nil
}
