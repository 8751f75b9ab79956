package geocode

import (
	"context"

	"github.com/streetsignal/streetsignal/internal/model"
)

// Cache is a durable district -> centroid store. Entries are write-once:
// a Put for an existing district is a no-op, since district geocoding is
// treated as time-invariant. Implementations must be safe for concurrent
// reads with serialized writes.
type Cache interface {
	// Get returns the cached coordinate and true on a hit.
	Get(ctx context.Context, district string) (model.Coordinate, bool, error)

	// Put stores the coordinate for a district, synchronously. Existing
	// entries are preserved, not overwritten.
	Put(ctx context.Context, district string, coord model.Coordinate) error

	Close() error
}
