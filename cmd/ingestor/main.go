package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TemirB/invoice-processor/internal/application/handler"
	"github.com/TemirB/invoice-processor/internal/application/service"
	"github.com/TemirB/invoice-processor/internal/blob"
	"github.com/TemirB/invoice-processor/internal/cache"
	"github.com/TemirB/invoice-processor/internal/config"
	"github.com/TemirB/invoice-processor/internal/database"
	"github.com/TemirB/invoice-processor/internal/domain"
	"github.com/TemirB/invoice-processor/internal/httpapi"
	"github.com/TemirB/invoice-processor/internal/invoice"
	"github.com/TemirB/invoice-processor/internal/kafka"
	"github.com/TemirB/invoice-processor/internal/observability"
	"github.com/TemirB/invoice-processor/internal/pkg/breaker"
	"github.com/TemirB/invoice-processor/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("invoice ingestor stopped", zap.Error(err))
	}
	logger.Info("invoice ingestor stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zcfg.Level = lvl
	return zcfg.Build()
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	metrics := observability.NewPrometheus()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	lru, err := cache.New(cfg.CacheCap)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	warmCtx, cancelWarm := context.WithTimeout(ctx, 10*time.Second)
	if n, err := lru.Warm(warmCtx, store); err != nil {
		logger.Warn("cache warm-up failed", zap.Error(err))
	} else {
		logger.Info("cache warmed", zap.Int("records", n))
	}
	cancelWarm()

	opener, err := openBlob(cfg.Blob, logger)
	if err != nil {
		return err
	}

	parser := invoice.NewParser(cfg.Delimiter)
	logger.Info("invoice parser ready", zap.String("delimiter", parser.Delimiter()))

	records := service.NewRecordService(lru, store, logger, metrics)
	ingestor := service.NewIngestor(
		parser,
		opener,
		records,
		cfg.Retry,
		logger,
		metrics,
	)
	h := handler.NewHandler(ingestor, breaker.New(cfg.Breaker), logger)

	if err := kafka.EnsureTopic(ctx, cfg.Kafka, 1, logger); err != nil {
		logger.Warn("kafka topic bootstrap failed", zap.Error(err))
	}
	reader := kafka.NewReader(cfg.Kafka)
	defer reader.Close()

	consumer := kafka.NewConsumer(h, reader, cfg.Kafka, logger)
	api := httpapi.New(records, metrics.Handler(), logger, metrics)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Start(gctx)
	})
	g.Go(func() error {
		logger.Info("http api listening", zap.String("addr", cfg.HTTPAddr))
		return api.ListenAndServe(gctx, cfg.HTTPAddr)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (domain.RecordRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePebble:
		st, err := storage.NewPebbleStore(cfg.Pebble.Dir)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("record store: pebble", zap.String("dir", cfg.Pebble.Dir))
		return st, func() { _ = st.Close() }, nil
	default:
		pool, err := database.Connect(ctx, cfg.DSN(), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		repo := database.New(pool, cfg.Pg)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("record store: postgres",
			zap.String("host", cfg.Pg.Host),
			zap.String("table", cfg.Pg.Table),
		)
		return repo, pool.Close, nil
	}
}

func openBlob(cfg config.Blob, logger *zap.Logger) (service.DocumentOpener, error) {
	switch cfg.Driver {
	case config.BlobLocal:
		return blob.NewLocalOpener(cfg.LocalRoot), nil
	default:
		return blob.NewAzureOpener(cfg.ConnectionString, logger)
	}
}
