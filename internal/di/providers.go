package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"FinBoard/internal/domain/repository"
	domsvc "FinBoard/internal/domain/service"
	"FinBoard/internal/handler/api"
	mid "FinBoard/internal/middleware"
	internalrepo "FinBoard/internal/repository"
	icache "FinBoard/internal/service/cache"
	"FinBoard/internal/service/marketdata"
	"FinBoard/internal/services/analytics"
	"FinBoard/internal/usecase"
	pkgcache "FinBoard/pkg/cache"
	pkgch "FinBoard/pkg/clickhouse"
	"FinBoard/pkg/config"
	pkghttp "FinBoard/pkg/http"
	pkgkafka "FinBoard/pkg/kafka"
	"FinBoard/pkg/logger"
	"FinBoard/pkg/metrics"
	"FinBoard/pkg/queue"
	"FinBoard/pkg/server"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return logger.New(&logger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		// Daily bars: last write wins per (asset, symbol, date).
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.bars (
			asset LowCardinality(String),
			symbol LowCardinality(String),
			date Date,
			open Float64,
			high Float64,
			low Float64,
			close Float64,
			volume Float64
		) ENGINE = ReplacingMergeTree ORDER BY (asset, symbol, date)`, db),
		// Confirmed market cycles: append-only.
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.market_cycles (
			asset LowCardinality(String),
			symbol LowCardinality(String),
			cycle_id UInt32,
			name String,
			start_date Date,
			end_date Date,
			start_price Float64,
			end_price Float64,
			roi Float64,
			duration_days UInt32,
			created_at DateTime DEFAULT now()
		) ENGINE = MergeTree ORDER BY (asset, symbol, cycle_id)`, db),
		// Raw live ticks.
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.ticks_raw (
			ts DateTime,
			symbol LowCardinality(String),
			price Float64,
			volume Float64,
			source LowCardinality(String),
			event_id String
		) ENGINE = MergeTree ORDER BY (symbol, ts)`, db),
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideBarStore creates the ClickHouse daily bar store.
func ProvideBarStore(chClient *pkgch.Client, cfg *config.Config, lgr *logger.Logger) repository.BarStore {
	store := internalrepo.NewCHBarStore(chClient, cfg.ClickHouse.Database+".bars")
	store.SetLogger(lgr)
	return store
}

// ProvideCycleStore creates the ClickHouse market cycle store.
func ProvideCycleStore(chClient *pkgch.Client, cfg *config.Config, lgr *logger.Logger) repository.CycleStore {
	store := internalrepo.NewCHCycleStore(chClient, cfg.ClickHouse.Database+".market_cycles")
	store.SetLogger(lgr)
	return store
}

// ProvideTickSink creates the ClickHouse raw tick sink.
func ProvideTickSink(chClient *pkgch.Client, cfg *config.Config) repository.TickSink {
	return internalrepo.NewClickHouseTickSink(chClient.DB(), cfg.ClickHouse.Database+".ticks_raw")
}

// ProvideTickPublisher creates the Kafka tick publisher.
func ProvideTickPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaTickPublisher(producer, cfg.Kafka.Topic)
}

// ProvideTickStream creates the Binance miniTicker WebSocket stream.
func ProvideTickStream(cfg *config.Config) repository.TickStream {
	return marketdata.NewStream(
		cfg.Binance.WebSocketURL,
		cfg.Binance.Symbols,
		cfg.Binance.ReconnectDelay,
		cfg.Binance.PingInterval,
	)
}

// ProvideBarSources maps each asset type to its historical data provider.
func ProvideBarSources(cfg *config.Config) map[repository.AssetType]repository.BarSource {
	client := pkghttp.NewClient(pkghttp.WithTimeout(cfg.MarketData.Timeout))
	investing := marketdata.NewInvestingSource(cfg.MarketData.InvestingBase, cfg.MarketData.Instruments, client)
	return map[repository.AssetType]repository.BarSource{
		repository.AssetCrypto: marketdata.NewBinanceSource(cfg.Binance.APIBase, client),
		repository.AssetEquity: marketdata.NewStockAnalysisSource(cfg.MarketData.StockAnalysisBase, client),
		repository.AssetIndex:  investing,
		repository.AssetMetal:  investing,
	}
}

// ProvideEngine creates the analytics engine.
func ProvideEngine() *analytics.Engine {
	return analytics.NewEngine()
}

// ProvideCycleAnalyzer exposes the engine as a cycle analyzer.
func ProvideCycleAnalyzer(e *analytics.Engine) domsvc.CycleAnalyzer { return e }

// ProvideRiskAnalyzer exposes the engine as a risk analyzer.
func ProvideRiskAnalyzer(e *analytics.Engine) domsvc.RiskAnalyzer { return e }

// ProvideTickProcessor creates the tick processor use case.
func ProvideTickProcessor(
	pub repository.Publisher,
	sink repository.TickSink,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.TickProcessor {
	return usecase.NewTickProcessor(
		pub,
		sink,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvidePriceBoard creates the in-memory live price board.
func ProvidePriceBoard() *usecase.PriceBoard {
	return usecase.NewPriceBoard()
}

// ProvideLogCollector aggregates high-frequency pipeline events and ships
// them through the job queue. Nil when the queue is disabled.
func ProvideLogCollector(jobs *queue.RedisQueue) *logger.LogCollector {
	if jobs == nil {
		return nil
	}
	return logger.NewLogCollector(&logger.CollectionConfig{
		TimeInterval:   30 * time.Second,
		CountThreshold: 100,
		Topic:          "pipeline.events",
		Publisher:      jobs,
	})
}

// ProvideTickCollector creates the tick collector use case.
func ProvideTickCollector(
	stream repository.TickStream,
	processor *usecase.TickProcessor,
	metrics repository.Metrics,
	board *usecase.PriceBoard,
	events *logger.LogCollector,
) *usecase.TickCollector {
	// Build middleware pipeline between WebSocket and backend
	pipe := mid.NewRealtimePipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
		mid.WithEventCollector(events),
	)
	return usecase.NewTickCollector(stream, processor, metrics, pipe, board)
}

// ProvideKafkaTicksHandler registers handler for the ticks topic.
func ProvideKafkaTicksHandler(sink repository.TickSink, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaTicksHandler {
	return usecase.NewKafkaTicksHandler(cfg.Kafka.Topic, sink, metrics)
}

// ProvideCycleSyncUseCase creates the cycle detection use case.
func ProvideCycleSyncUseCase(
	bars repository.BarStore,
	cycles repository.CycleStore,
	analyzer domsvc.CycleAnalyzer,
	metrics repository.Metrics,
) *usecase.CycleSyncUseCase {
	return usecase.NewCycleSyncUseCase(bars, cycles, analyzer, metrics)
}

// ProvideRiskMetricsUseCase creates the risk metrics use case.
func ProvideRiskMetricsUseCase(
	bars repository.BarStore,
	analyzer domsvc.RiskAnalyzer,
	metrics repository.Metrics,
) *usecase.RiskMetricsUseCase {
	return usecase.NewRiskMetricsUseCase(bars, analyzer, metrics)
}

// ProvideLatestPriceUseCase creates the latest price use case.
func ProvideLatestPriceUseCase(bars repository.BarStore, board *usecase.PriceBoard) *usecase.LatestPriceUseCase {
	return usecase.NewLatestPriceUseCase(bars, board)
}

// ProvideDashboardUseCase creates the combined dashboard use case.
func ProvideDashboardUseCase(
	cycles *usecase.CycleSyncUseCase,
	risk *usecase.RiskMetricsUseCase,
	latest *usecase.LatestPriceUseCase,
) *usecase.DashboardUseCase {
	return usecase.NewDashboardUseCase(cycles, risk, latest)
}

// ProvideBarRefreshUseCase creates the historical bar refresh use case.
func ProvideBarRefreshUseCase(
	bars repository.BarStore,
	sources map[repository.AssetType]repository.BarSource,
	metrics repository.Metrics,
	lgr *logger.Logger,
) *usecase.BarRefreshUseCase {
	return usecase.NewBarRefreshUseCase(bars, sources, metrics, lgr)
}

// ProvideJobQueue creates the Redis-backed job queue with the bar refresh job
// registered. Returns nil when Redis is disabled; callers fall back to inline
// refreshes.
func ProvideJobQueue(cfg *config.Config, lgr *logger.Logger, refresh *usecase.BarRefreshUseCase) *queue.RedisQueue {
	if !cfg.Analytics.Redis.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Analytics.Redis.Addr,
		Password: cfg.Analytics.Redis.Password,
		DB:       cfg.Analytics.Redis.DB,
	})
	q := queue.NewRedisQueue(lgr, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		QueueSize:  1024,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, client, queue.ModeProducerConsumer)
	q.RegisterJob(usecase.NewRefreshJob(refresh))
	return q
}

// ProvideCache picks the response cache backend: a layered memory+Redis
// cache when Redis is enabled, otherwise an in-process TTL cache.
func ProvideCache(cfg *config.Config, lgr *logger.Logger) icache.BytesCache {
	if !cfg.Analytics.Redis.Enabled {
		return icache.NewTTLCache()
	}
	host, port := splitHostPort(cfg.Analytics.Redis.Addr)
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Analytics.Redis.Password),
		pkgcache.WithRedisDB(cfg.Analytics.Redis.DB),
	)
	if err != nil {
		lgr.Warn("redis cache unavailable, using in-process cache", logger.Error(err))
		return icache.NewTTLCache()
	}
	return icache.NewLayeredBytesCache(pkgcache.NewLayeredCache(rc))
}

func splitHostPort(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6379
	}
	return host, port
}

// ProvideDashboardHandler creates the HTTP API handler.
func ProvideDashboardHandler(
	cfg *config.Config,
	cycles *usecase.CycleSyncUseCase,
	risk *usecase.RiskMetricsUseCase,
	latest *usecase.LatestPriceUseCase,
	board *usecase.DashboardUseCase,
	refresh *usecase.BarRefreshUseCase,
	bars repository.BarStore,
	stream repository.TickStream,
	jobs *queue.RedisQueue,
	cache icache.BytesCache,
	lgr *logger.Logger,
) *api.DashboardHandler {
	h := api.NewDashboardHandler(cfg, cycles, risk, latest, board, refresh, bars)
	h.SetCache(cache)
	h.SetLogger(lgr)
	h.SetStream(stream)
	if jobs != nil {
		h.SetQueue(jobs)
	}
	return h
}

// consumerHooks builds the consumer lifecycle chain: start-time and trace-id
// propagation plus error logging with handling duration.
func consumerHooks(lgr *logger.Logger) pkgkafka.ConsumerHook {
	tracing := pkgkafka.HookFuncs{
		Before: func(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
			ctx = pkgkafka.WithStartTime(ctx, time.Now())
			ctx = pkgkafka.WithTraceID(ctx, pkgkafka.ExtractTraceID(km))
			return ctx, km, data, nil
		},
	}
	errlog := pkgkafka.HookFuncs{
		Err: func(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
			if lgr == nil {
				return
			}
			fields := []logger.Field{
				logger.String("topic", topic),
				logger.Error(err),
			}
			if started, ok := ctx.Value(pkgkafka.CtxStartTime).(time.Time); ok {
				fields = append(fields, logger.Duration("elapsed", time.Since(started)))
			}
			if trace, ok := ctx.Value(pkgkafka.CtxTraceID).(string); ok && trace != "" {
				fields = append(fields, logger.String("trace_id", trace))
			}
			lgr.Error("kafka message handling failed", fields...)
		},
	}
	return pkgkafka.NewHookChain(tracing, errlog)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaTicksHandler,
	chClient *pkgch.Client,
	jobs *queue.RedisQueue,
	refresh *usecase.BarRefreshUseCase,
	handler *api.DashboardHandler,
	lgr *logger.Logger,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(consumerHooks(lgr))
	}
	app := server.New(cfg, collector, consumer, kh, chClient, jobs, refresh, handler, lgr)
	if collector != nil {
		app.TickProc = collector.Processor()
	}
	return app
}
