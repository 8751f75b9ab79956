package geocode

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetsignal/streetsignal/internal/model"
)

func TestPostgresCache_GetHit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT latitude, longitude FROM geocode_cache").
		WithArgs("E1").
		WillReturnRows(pgxmock.NewRows([]string{"latitude", "longitude"}).AddRow(51.5175, -0.0662))

	cache := &PostgresCache{pool: mock}
	got, ok, err := cache.Get(context.Background(), "E1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.Coordinate{Lat: 51.5175, Lon: -0.0662}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCache_GetMiss(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT latitude, longitude FROM geocode_cache").
		WithArgs("SW1").
		WillReturnError(pgx.ErrNoRows)

	cache := &PostgresCache{pool: mock}
	_, ok, err := cache.Get(context.Background(), "SW1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCache_Put(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO geocode_cache").
		WithArgs("E1", 51.5175, -0.0662).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	cache := &PostgresCache{pool: mock}
	err = cache.Put(context.Background(), "E1", model.Coordinate{Lat: 51.5175, Lon: -0.0662})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCache_PutConflictIsSilent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// ON CONFLICT DO NOTHING reports zero rows affected; that is not an error.
	mock.ExpectExec("INSERT INTO geocode_cache").
		WithArgs("E1", 99.0, 99.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	cache := &PostgresCache{pool: mock}
	err = cache.Put(context.Background(), "E1", model.Coordinate{Lat: 99, Lon: 99})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
