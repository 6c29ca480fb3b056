package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/TemirB/invoice-processor/internal/domain"
	"github.com/TemirB/invoice-processor/internal/observability"
)

//go:generate mockgen -source records.go -destination=records_mock_test.go -package=service

type Cache interface {
	Set(domain.OrderRecord)
	Get(partition, row string) (domain.OrderRecord, bool)
}

type RecordStore interface {
	Upsert(ctx context.Context, rec domain.OrderRecord) error
	Get(ctx context.Context, partition, row string) (domain.OrderRecord, error)
	ListPartition(ctx context.Context, partition string) ([]domain.OrderRecord, error)
}

// RecordService is the record table as seen by the ingest path and the
// HTTP API: writes go to the store, then the cache.
type RecordService struct {
	cache   Cache
	store   RecordStore
	logger  *zap.Logger
	metrics observability.Metrics
}

func NewRecordService(cache Cache, store RecordStore, logger *zap.Logger, metrics observability.Metrics) *RecordService {
	return &RecordService{
		cache:   cache,
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *RecordService) AppendWithStats(ctx context.Context, rec domain.OrderRecord) (AppendStats, error) {
	var st AppendStats

	t0 := time.Now()
	if err := s.store.Upsert(ctx, rec); err != nil {
		s.logger.Error("Error while upserting record",
			zap.String("partition_key", rec.PartitionKey),
			zap.String("row_key", rec.RowKey),
			zap.Error(err),
		)
		return st, err
	}
	st.StoreWriteMs = observability.SinceMs(t0)

	s.cache.Set(rec)

	s.metrics.ObserveUpsert(st.StoreWriteMs)
	s.logger.Debug("Record upserted",
		zap.String("partition_key", rec.PartitionKey),
		zap.String("row_key", rec.RowKey),
		zap.Float64("store_write_ms", st.StoreWriteMs),
	)
	return st, nil
}

func (s *RecordService) Append(ctx context.Context, rec domain.OrderRecord) error {
	_, err := s.AppendWithStats(ctx, rec)
	return err
}

func (s *RecordService) Get(ctx context.Context, partition, row string) (domain.OrderRecord, error) {
	rec, _, err := s.GetWithStats(ctx, partition, row)
	return rec, err
}

func (s *RecordService) GetWithStats(ctx context.Context, partition, row string) (domain.OrderRecord, LookupStats, error) {
	var st LookupStats

	tCache := time.Now()
	if rec, ok := s.cache.Get(partition, row); ok {
		st.Source = SourceCache
		st.CacheMs = observability.SinceMs(tCache)
		s.metrics.IncCacheHit()
		s.metrics.ObserveLookup(string(st.Source), st.CacheMs, 0)
		return rec, st, nil
	}

	s.metrics.IncCacheMiss()
	st.CacheMs = observability.SinceMs(tCache)

	tStore := time.Now()
	rec, err := s.store.Get(ctx, partition, row)
	if err != nil {
		s.logger.Warn("Can't find record",
			zap.String("partition_key", partition),
			zap.String("row_key", row),
			zap.Error(err),
		)
		return domain.OrderRecord{}, st, err
	}
	st.Source = SourceStore
	st.StoreMs = observability.SinceMs(tStore)

	s.cache.Set(rec)

	s.metrics.ObserveLookup(string(st.Source), st.CacheMs, st.StoreMs)
	s.logger.Debug("Record fetched from store",
		zap.String("partition_key", partition),
		zap.String("row_key", row),
		zap.Float64("store_ms", st.StoreMs),
	)
	return rec, st, nil
}

// List returns every record of a partition straight from the store.
func (s *RecordService) List(ctx context.Context, partition string) ([]domain.OrderRecord, error) {
	recs, err := s.store.ListPartition(ctx, partition)
	if err != nil {
		s.logger.Error("Can't list records", zap.String("partition_key", partition), zap.Error(err))
		return nil, err
	}
	return recs, nil
}
