package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TemirB/invoice-processor/internal/config"
	"github.com/TemirB/invoice-processor/internal/domain"
)

// RecordRepo is the order record table on Postgres. The payload is stored
// verbatim in a json column (jsonb would reorder keys and drop
// duplicates) next to typed copies of the order fields.
type RecordRepo struct {
	pool  *pgxpool.Pool
	table string
}

func New(pool *pgxpool.Pool, pg config.Postgres) *RecordRepo {
	return &RecordRepo{
		pool:  pool,
		table: pgx.Identifier{pg.Schema, pg.Table}.Sanitize(),
	}
}

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS %[1]s (
	  partition_key    text NOT NULL,
	  row_key          text NOT NULL,
	  order_date       text NOT NULL DEFAULT '',
	  customer_name    text NOT NULL DEFAULT '',
	  delivery_address text NOT NULL DEFAULT '',
	  order_total      double precision NOT NULL DEFAULT 0,
	  payload          json NOT NULL,
	  updated_at       timestamptz NOT NULL DEFAULT now(),
	  PRIMARY KEY (partition_key, row_key)
	);
	ALTER TABLE %[1]s ALTER COLUMN payload TYPE json USING payload::json;
`

func (r *RecordRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, fmt.Sprintf(createTableSQL, r.table)); err != nil {
		return fmt.Errorf("create %s: %w", r.table, err)
	}
	return nil
}

func (r *RecordRepo) Upsert(ctx context.Context, rec domain.OrderRecord) error {
	if rec.PartitionKey == "" {
		return domain.ErrEmptyPartition
	}
	if rec.RowKey == "" {
		return domain.ErrEmptyRowKey
	}

	o := rec.Order
	_, err := r.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (partition_key, row_key, order_date, customer_name,
		  delivery_address, order_total, payload, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (partition_key, row_key) DO UPDATE SET
		  order_date=EXCLUDED.order_date,
		  customer_name=EXCLUDED.customer_name,
		  delivery_address=EXCLUDED.delivery_address,
		  order_total=EXCLUDED.order_total,
		  payload=EXCLUDED.payload,
		  updated_at=EXCLUDED.updated_at
	`, r.table),
		rec.PartitionKey, rec.RowKey, o.OrderDate, o.CustomerName,
		o.DeliveryAddress, o.OrderTotal, string(rec.Payload), time.Now().UTC(),
	)
	return err
}

const selectColumns = `partition_key, row_key, payload::text`

func (r *RecordRepo) Get(ctx context.Context, partition, row string) (domain.OrderRecord, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM %s WHERE partition_key=$1 AND row_key=$2
	`, selectColumns, r.table), partition, row))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OrderRecord{}, domain.ErrNotFound
	}
	return rec, err
}

func (r *RecordRepo) ListPartition(ctx context.Context, partition string) ([]domain.OrderRecord, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM %s WHERE partition_key=$1 ORDER BY row_key
	`, selectColumns, r.table), partition)
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

func (r *RecordRepo) Recent(ctx context.Context, limit int) ([]domain.OrderRecord, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM %s ORDER BY updated_at DESC LIMIT $1
	`, selectColumns, r.table), limit)
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

func collectRecords(rows pgx.Rows) ([]domain.OrderRecord, error) {
	defer rows.Close()

	var recs []domain.OrderRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func scanRecord(row pgx.Row) (domain.OrderRecord, error) {
	var (
		rec     domain.OrderRecord
		payload string
	)
	if err := row.Scan(&rec.PartitionKey, &rec.RowKey, &payload); err != nil {
		return domain.OrderRecord{}, err
	}
	rec.Payload = []byte(payload)

	o, err := rec.DecodePayload()
	if err != nil {
		return domain.OrderRecord{}, fmt.Errorf("decode %s: %w", rec.Key(), err)
	}
	rec.Order = o
	return rec, nil
}
