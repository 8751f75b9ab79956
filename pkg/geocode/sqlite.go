package geocode

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/streetsignal/streetsignal/internal/model"
)

// SQLiteCache implements Cache on a single-file SQLite database. It is the
// default backend: durable, zero-setup, synchronous on every write.
type SQLiteCache struct {
	db *sql.DB
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	district  TEXT PRIMARY KEY,
	latitude  REAL NOT NULL,
	longitude REAL NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// NewSQLiteCache opens (or creates) the cache database at path and applies
// the schema.
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: open sqlite cache")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=FULL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "geocode: exec %s", pragma)
		}
	}
	if _, err := db.Exec(sqliteMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "geocode: migrate sqlite cache")
	}
	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Get(ctx context.Context, district string) (model.Coordinate, bool, error) {
	var coord model.Coordinate
	err := c.db.QueryRowContext(ctx,
		`SELECT latitude, longitude FROM geocode_cache WHERE district = ?`, district,
	).Scan(&coord.Lat, &coord.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Coordinate{}, false, nil
	}
	if err != nil {
		return model.Coordinate{}, false, eris.Wrap(err, "geocode: cache lookup")
	}
	return coord, true, nil
}

func (c *SQLiteCache) Put(ctx context.Context, district string, coord model.Coordinate) error {
	// INSERT OR IGNORE keeps the first written coordinate forever.
	_, err := c.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO geocode_cache (district, latitude, longitude) VALUES (?, ?, ?)`,
		district, coord.Lat, coord.Lon,
	)
	return eris.Wrap(err, "geocode: cache store")
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
