package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/cafe-venue/protocol"
)

type countingLoader struct {
	calls int
	seats protocol.SeatMap
	err   error
}

func (l *countingLoader) load(context.Context) (protocol.SeatMap, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	out := protocol.SeatMap{}
	for k, v := range l.seats {
		out[k] = v
	}
	return out, nil
}

func TestMemorySnapshotLoadsOnce(t *testing.T) {
	loader := &countingLoader{seats: protocol.SeatMap{"A1": {ID: "A1"}}}
	c := NewMemory(loader.load)

	_, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	seats, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, loader.calls)
	assert.Contains(t, seats, "A1")
}

func TestMemoryRebuildReloads(t *testing.T) {
	loader := &countingLoader{seats: protocol.SeatMap{"A1": {ID: "A1"}}}
	c := NewMemory(loader.load)

	_, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	loader.seats = protocol.SeatMap{"A1": {ID: "A1", Occupied: true}}
	seats, err := c.Rebuild(context.Background())
	require.NoError(t, err)
	assert.True(t, seats["A1"].Occupied)
	assert.Equal(t, 2, loader.calls)
}

func TestMemorySnapshotIsACopy(t *testing.T) {
	loader := &countingLoader{seats: protocol.SeatMap{"A1": {ID: "A1"}}}
	c := NewMemory(loader.load)

	seats, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	delete(seats, "A1")

	again, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Contains(t, again, "A1")
}

func TestMemoryFailedRebuildInvalidates(t *testing.T) {
	loader := &countingLoader{seats: protocol.SeatMap{"A1": {ID: "A1"}}}
	c := NewMemory(loader.load)
	_, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	loader.err = errors.New("store down")
	_, err = c.Rebuild(context.Background())
	assert.Error(t, err)

	loader.err = nil
	_, err = c.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, loader.calls)
}

func TestRedisUnavailableFallsBackToStore(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	loader := &countingLoader{seats: protocol.SeatMap{"B2": {ID: "B2"}}}
	c := NewRedis(client, "", time.Minute, loader.load)

	seats, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Contains(t, seats, "B2")
}
