package geocode

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/streetsignal/streetsignal/internal/model"
)

// PgPool is the subset of pgxpool.Pool the cache uses; it lets tests
// substitute pgxmock.
type PgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresCache implements Cache on a shared Postgres database, for
// deployments where several processes share one geocode cache.
type PostgresCache struct {
	pool PgPool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	district  TEXT PRIMARY KEY,
	latitude  DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	cached_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// NewPostgresCache connects to connString and applies the schema.
func NewPostgresCache(ctx context.Context, connString string) (*PostgresCache, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: connect postgres cache")
	}
	c := &PostgresCache{pool: pool}
	if _, err := pool.Exec(ctx, postgresMigration); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "geocode: migrate postgres cache")
	}
	return c, nil
}

func (c *PostgresCache) Get(ctx context.Context, district string) (model.Coordinate, bool, error) {
	var coord model.Coordinate
	err := c.pool.QueryRow(ctx,
		`SELECT latitude, longitude FROM geocode_cache WHERE district = $1`, district,
	).Scan(&coord.Lat, &coord.Lon)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Coordinate{}, false, nil
	}
	if err != nil {
		return model.Coordinate{}, false, eris.Wrap(err, "geocode: cache lookup")
	}
	return coord, true, nil
}

func (c *PostgresCache) Put(ctx context.Context, district string, coord model.Coordinate) error {
	// ON CONFLICT DO NOTHING preserves the first written coordinate.
	_, err := c.pool.Exec(ctx,
		`INSERT INTO geocode_cache (district, latitude, longitude) VALUES ($1, $2, $3)
		 ON CONFLICT (district) DO NOTHING`,
		district, coord.Lat, coord.Lon,
	)
	return eris.Wrap(err, "geocode: cache store")
}

func (c *PostgresCache) Close() error {
	c.pool.Close()
	return nil
}
