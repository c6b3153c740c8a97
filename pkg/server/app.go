package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "FinBoard/internal/domain/repository"
	"FinBoard/internal/usecase"
	pkgch "FinBoard/pkg/clickhouse"
	"FinBoard/pkg/config"
	xhttp "FinBoard/pkg/http"
	pkgkafka "FinBoard/pkg/kafka"
	applogger "FinBoard/pkg/logger"
	"FinBoard/pkg/queue"
)

// App encapsulates the entire application lifecycle: live tick collection,
// the Kafka ingest consumer, the job queue, the refresh scheduler and the
// HTTP API server.
type App struct {
	cfg        *config.Config
	collector  *usecase.TickCollector
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	chClient   *pkgch.Client
	jobs       *queue.RedisQueue
	refresh    *usecase.BarRefreshUseCase
	handler    xhttp.Handler
	httpServer *xhttp.Server
	logger     *applogger.Logger
	TickProc   *usecase.TickProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	jobs *queue.RedisQueue,
	refresh *usecase.BarRefreshUseCase,
	handler xhttp.Handler,
	lgr *applogger.Logger,
) *App {
	return &App{
		cfg:       cfg,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
		jobs:      jobs,
		refresh:   refresh,
		handler:   handler,
		logger:    lgr,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger
	if l == nil {
		l, _ = applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
	)

	// Start live tick collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.Strings("symbols", a.cfg.Binance.Symbols))

	// Start ingest consumer when the kafka backend is active
	if a.consumer != nil && a.kh != nil && a.cfg.Backend.Type == "kafka" {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start job queue workers
	if a.jobs != nil {
		if err := a.jobs.Start(); err != nil {
			l.Error("job queue start error", applogger.Error(err))
		} else {
			a.jobs.StartRetryProcessor()
			l.Info("job queue started")
		}
	}

	// Periodic historical bar refresh
	go a.refreshLoop(ctx, l)

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx, l)
}

// refreshLoop refreshes all configured symbols on startup and then on the
// configured interval. When a job queue is available targets are enqueued;
// otherwise the refresh runs inline.
func (a *App) refreshLoop(ctx context.Context, l *applogger.Logger) {
	interval := a.cfg.MarketData.RefreshInterval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	run := func() {
		targets := a.refreshTargets()
		if len(targets) == 0 {
			return
		}
		if a.jobs != nil {
			for _, t := range targets {
				if err := a.jobs.Enqueue(ctx, usecase.RefreshJobType, t); err != nil {
					l.Warn("refresh enqueue error",
						applogger.String("symbol", t.Symbol),
						applogger.Error(err))
				}
			}
			l.Info("refresh jobs enqueued", applogger.Int("targets", len(targets)))
			return
		}
		n := a.refresh.RefreshAll(ctx, targets)
		l.Info("refresh complete",
			applogger.Int("targets", len(targets)),
			applogger.Int("updated", n))
	}

	run()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

// refreshTargets collects every configured symbol plus its benchmark,
// deduplicated.
func (a *App) refreshTargets() []usecase.RefreshTarget {
	seen := make(map[string]bool)
	var targets []usecase.RefreshTarget
	add := func(asset, symbol string) {
		if symbol == "" {
			return
		}
		at := domrepo.NormalizeAssetType(asset)
		key := string(at) + ":" + symbol
		if seen[key] {
			return
		}
		seen[key] = true
		targets = append(targets, usecase.RefreshTarget{Asset: at, Symbol: symbol})
	}
	for _, ac := range a.cfg.Analytics.Assets {
		add(ac.Asset, ac.Symbol)
		add(ac.BenchmarkAsset, ac.Benchmark)
	}
	return targets
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context, l *applogger.Logger) error {
	l.Info("shutting down...")

	// Stop collector (pipeline + stream)
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop job queue workers
	if a.jobs != nil {
		if err := a.jobs.Stop(shutdownCtx); err != nil {
			l.Warn("job queue stop error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	// Close tick processor resources (publisher/sink)
	if a.TickProc != nil {
		a.TickProc.Close()
	}

	l.Info("shutdown complete")
	return nil
}
