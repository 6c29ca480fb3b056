// Package storage keeps order records in an embedded Pebble database, for
// single-node deployments without Postgres.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/TemirB/invoice-processor/internal/domain"
)

// Keys are "o\x00<partition>\x00<row>"; the NUL separators keep partition
// scans from matching a longer partition with the same prefix.
const (
	keyPrefix = "o\x00"
	sep       = "\x00"
)

type storedRecord struct {
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type PebbleStore struct {
	db  *pebble.DB
	now func() time.Time
}

func NewPebbleStore(dir string) (*PebbleStore, error) {
	d, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStore{db: d, now: time.Now}, nil
}

func (p *PebbleStore) Close() error { return p.db.Close() }

func recordKey(partition, row string) []byte {
	return []byte(keyPrefix + partition + sep + row)
}

func partitionBounds(partition string) (lower, upper []byte) {
	lower = []byte(keyPrefix + partition + sep)
	upper = append([]byte(keyPrefix+partition), sep[0]+1)
	return lower, upper
}

func (p *PebbleStore) Upsert(ctx context.Context, rec domain.OrderRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.PartitionKey == "" {
		return domain.ErrEmptyPartition
	}
	if rec.RowKey == "" {
		return domain.ErrEmptyRowKey
	}

	// the payload goes back out byte for byte, so no HTML escaping
	var val bytes.Buffer
	enc := json.NewEncoder(&val)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(storedRecord{Payload: rec.Payload, UpdatedAt: p.now().UTC()}); err != nil {
		return err
	}
	return p.db.Set(recordKey(rec.PartitionKey, rec.RowKey), val.Bytes(), pebble.Sync)
}

func (p *PebbleStore) Get(ctx context.Context, partition, row string) (domain.OrderRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.OrderRecord{}, err
	}
	v, closer, err := p.db.Get(recordKey(partition, row))
	if errors.Is(err, pebble.ErrNotFound) {
		return domain.OrderRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.OrderRecord{}, err
	}
	defer closer.Close()

	rec, _, err := decode(partition, row, v)
	return rec, err
}

func (p *PebbleStore) ListPartition(ctx context.Context, partition string) ([]domain.OrderRecord, error) {
	lower, upper := partitionBounds(partition)
	var recs []domain.OrderRecord
	err := p.scan(ctx, lower, upper, func(rec domain.OrderRecord, _ time.Time) {
		recs = append(recs, rec)
	})
	return recs, err
}

// Recent scans the whole table; the embedded store is meant for small
// single-node data sets.
func (p *PebbleStore) Recent(ctx context.Context, limit int) ([]domain.OrderRecord, error) {
	type stamped struct {
		rec domain.OrderRecord
		at  time.Time
	}
	var all []stamped
	err := p.scan(ctx, []byte(keyPrefix), []byte{keyPrefix[0], sep[0] + 1}, func(rec domain.OrderRecord, at time.Time) {
		all = append(all, stamped{rec: rec, at: at})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].at.After(all[j].at) })
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	recs := make([]domain.OrderRecord, len(all))
	for i := range all {
		recs[i] = all[i].rec
	}
	return recs, nil
}

func (p *PebbleStore) scan(ctx context.Context, lower, upper []byte, fn func(domain.OrderRecord, time.Time)) error {
	it, err := p.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return err
	}
	defer it.Close()

	for it.First(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		partition, row, ok := splitKey(it.Key())
		if !ok {
			continue
		}
		rec, at, err := decode(partition, row, it.Value())
		if err != nil {
			return err
		}
		fn(rec, at)
	}
	return it.Error()
}

func splitKey(k []byte) (partition, row string, ok bool) {
	s := string(k)
	if len(s) <= len(keyPrefix) {
		return "", "", false
	}
	s = s[len(keyPrefix):]
	for i := 0; i < len(s); i++ {
		if s[i] == sep[0] {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

// decode copies v; Pebble owns the slice.
func decode(partition, row string, v []byte) (domain.OrderRecord, time.Time, error) {
	var st storedRecord
	if err := json.Unmarshal(v, &st); err != nil {
		return domain.OrderRecord{}, time.Time{}, fmt.Errorf("decode %s: %w", domain.RecordKey(partition, row), err)
	}
	rec := domain.OrderRecord{
		PartitionKey: partition,
		RowKey:       row,
		Payload:      append([]byte(nil), st.Payload...),
	}
	o, err := rec.DecodePayload()
	if err != nil {
		return domain.OrderRecord{}, time.Time{}, fmt.Errorf("decode %s: %w", rec.Key(), err)
	}
	rec.Order = o
	return rec, st.UpdatedAt, nil
}
