package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/pricetrack/internal/model"
)

// Schema is the DDL for the price history table. The composite primary
// key doubles as the (pair, ts) index that range reads depend on.
const Schema = `
CREATE TABLE IF NOT EXISTS price_history (
	pair  TEXT             NOT NULL,
	ts    TIMESTAMPTZ      NOT NULL,
	price DOUBLE PRECISION NOT NULL CHECK (price > 0),
	PRIMARY KEY (pair, ts)
)`

// Postgres is the production Store backed by a pgx connection pool.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres creates a Postgres store on an existing pool.
func NewPostgres(pool *pgxpool.Pool, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{pool: pool, logger: logger}
}

// Init creates the schema if it does not exist.
func (s *Postgres) Init(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Append implements Store. The insert is conditional: a row only lands
// if no newer observation exists for the pair, so an out-of-order write
// is rejected without a separate read round-trip. The poller is the
// sole writer per pair, so the check cannot race with itself.
func (s *Postgres) Append(ctx context.Context, obs model.PriceObservation) error {
	if err := validate(obs); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO price_history (pair, ts, price)
		SELECT $1, $2, $3
		WHERE NOT EXISTS (
			SELECT 1 FROM price_history WHERE pair = $1 AND ts > $2
		)
		ON CONFLICT (pair, ts) DO NOTHING`,
		obs.Pair.String(), obs.Timestamp.UTC(), obs.Price,
	)
	if err != nil {
		return fmt.Errorf("append %s: %w: %w", obs.Pair, ErrUnavailable, err)
	}

	if tag.RowsAffected() == 0 {
		return &ValidationError{
			Pair:   obs.Pair,
			Reason: "timestamp not newer than latest stored observation",
		}
	}
	return nil
}

// ReadSeries implements Store.
func (s *Postgres) ReadSeries(ctx context.Context, pair model.TradingPair, since time.Time) ([]model.PriceObservation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ts, price FROM price_history
		WHERE pair = $1 AND ts >= $2
		ORDER BY ts ASC`,
		pair.String(), since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("read series %s: %w: %w", pair, ErrUnavailable, err)
	}
	defer rows.Close()

	out := make([]model.PriceObservation, 0, 64)
	for rows.Next() {
		obs := model.PriceObservation{Pair: pair}
		if err := rows.Scan(&obs.Timestamp, &obs.Price); err != nil {
			return nil, fmt.Errorf("scan observation: %w: %w", ErrUnavailable, err)
		}
		obs.Timestamp = obs.Timestamp.UTC()
		out = append(out, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read series %s: %w: %w", pair, ErrUnavailable, err)
	}
	return out, nil
}

// Latest implements Store.
func (s *Postgres) Latest(ctx context.Context, pair model.TradingPair) (model.PriceObservation, error) {
	obs := model.PriceObservation{Pair: pair}
	err := s.pool.QueryRow(ctx, `
		SELECT ts, price FROM price_history
		WHERE pair = $1
		ORDER BY ts DESC LIMIT 1`,
		pair.String(),
	).Scan(&obs.Timestamp, &obs.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PriceObservation{}, ErrNotFound
		}
		return model.PriceObservation{}, fmt.Errorf("latest %s: %w: %w", pair, ErrUnavailable, err)
	}
	obs.Timestamp = obs.Timestamp.UTC()
	return obs, nil
}

// Prune implements Store. Retention is a scheduled delete, never
// triggered synchronously by reads.
func (s *Postgres) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM price_history WHERE ts < $1`, olderThan.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("prune: %w: %w", ErrUnavailable, err)
	}
	return tag.RowsAffected(), nil
}
