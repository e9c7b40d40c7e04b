package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect membuka pool kecil: journal keputusan cuma ditulis sesekali.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 4
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS order_decisions (
	id          uuid PRIMARY KEY,
	order_id    text NOT NULL,
	merchant_id text NOT NULL,
	action      text NOT NULL,
	reason      text NOT NULL DEFAULT '',
	otp         text NOT NULL DEFAULT '',
	ok          boolean NOT NULL,
	error       text NOT NULL DEFAULT '',
	decided_at  timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS order_decisions_merchant_idx ON order_decisions (merchant_id, decided_at DESC);
`

// Migrate creates the decision journal table when missing.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
