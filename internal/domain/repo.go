package domain

import (
	"context"
)

type RecordRepository interface {
	Upsert(ctx context.Context, rec OrderRecord) error
	Get(ctx context.Context, partition, row string) (OrderRecord, error)
	ListPartition(ctx context.Context, partition string) ([]OrderRecord, error)
	Recent(ctx context.Context, limit int) ([]OrderRecord, error)
}
