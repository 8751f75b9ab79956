package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWait_UnknownServiceNotThrottled(t *testing.T) {
	r := New(map[string]time.Duration{Overpass: time.Second})

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, r.Wait(context.Background(), "unknown"))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestWait_EnforcesInterval(t *testing.T) {
	r := New(map[string]time.Duration{Nominatim: 50 * time.Millisecond})

	start := time.Now()
	require.NoError(t, r.Wait(context.Background(), Nominatim))
	require.NoError(t, r.Wait(context.Background(), Nominatim))
	require.NoError(t, r.Wait(context.Background(), Nominatim))

	// The first token is free; the next two each wait one interval.
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestWait_ServicesAreIndependent(t *testing.T) {
	r := New(map[string]time.Duration{
		Nominatim: 500 * time.Millisecond,
		Overpass:  time.Millisecond,
	})

	require.NoError(t, r.Wait(context.Background(), Nominatim))

	// Overpass should not be blocked by Nominatim's interval.
	start := time.Now()
	require.NoError(t, r.Wait(context.Background(), Overpass))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestWait_ZeroIntervalUnlimited(t *testing.T) {
	r := New(map[string]time.Duration{PostcodesIO: 0})

	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, r.Wait(context.Background(), PostcodesIO))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestWait_ContextCancelled(t *testing.T) {
	r := New(map[string]time.Duration{Overpass: time.Hour})

	require.NoError(t, r.Wait(context.Background(), Overpass))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := r.Wait(ctx, Overpass)
	require.Error(t, err)
}

func TestFromMillis(t *testing.T) {
	r := FromMillis(map[string]int{Overpass: 50})

	start := time.Now()
	require.NoError(t, r.Wait(context.Background(), Overpass))
	require.NoError(t, r.Wait(context.Background(), Overpass))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}
