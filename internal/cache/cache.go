package cache

import (
	"context"

	"github.com/TemirB/invoice-processor/internal/domain"

	lru "github.com/hashicorp/golang-lru/v2"
)

//go:generate mockgen -source cache.go -destination=cache_mock_test.go -package=cache

type repo interface {
	Recent(ctx context.Context, limit int) ([]domain.OrderRecord, error)
}

// recordID is the cache key. Keeping the parts apart means an order number
// containing "/" cannot alias a record of another partition.
type recordID struct {
	partition string
	row       string
}

// Cache keeps the most recently touched order records, keyed by
// partition and row.
type Cache struct {
	size int
	lru  *lru.Cache[recordID, domain.OrderRecord]
}

func New(size int) (*Cache, error) {
	c, err := lru.New[recordID, domain.OrderRecord](size)
	if err != nil {
		return nil, err
	}
	return &Cache{
		size: size,
		lru:  c,
	}, nil
}

// Warm loads the newest records. Errors leave the cache cold and are
// returned for logging only.
func (c *Cache) Warm(ctx context.Context, repo repo) (int, error) {
	recs, err := repo.Recent(ctx, c.size)
	if err != nil {
		return 0, err
	}
	// oldest first so the newest end up most recently used
	for i := len(recs) - 1; i >= 0; i-- {
		c.Set(recs[i])
	}
	return len(recs), nil
}

func (c *Cache) Get(partition, row string) (domain.OrderRecord, bool) {
	return c.lru.Get(recordID{partition: partition, row: row})
}

func (c *Cache) Set(rec domain.OrderRecord) {
	c.lru.Add(recordID{partition: rec.PartitionKey, row: rec.RowKey}, rec)
}

func (c *Cache) Len() int {
	return c.lru.Len()
}
