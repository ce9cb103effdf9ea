package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yeremiapane/cafe-venue/protocol"
	"github.com/yeremiapane/cafe-venue/utils"
)

const DefaultSeatKey = "venue:seats"

// Redis mirrors the seat map into a redis key. Redis failures degrade to
// loading straight from the store.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	load   Loader
}

func NewRedis(client *redis.Client, key string, ttl time.Duration, load Loader) *Redis {
	if key == "" {
		key = DefaultSeatKey
	}
	return &Redis{client: client, key: key, ttl: ttl, load: load}
}

func (r *Redis) Snapshot(ctx context.Context) (protocol.SeatMap, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	switch {
	case err == redis.Nil:
	case err != nil:
		utils.ErrorLogger.Printf("redis: get %s: %v", r.key, err)
	default:
		var seats protocol.SeatMap
		if jsonErr := json.Unmarshal([]byte(val), &seats); jsonErr == nil {
			return seats, nil
		}
	}
	return r.Rebuild(ctx)
}

func (r *Redis) Rebuild(ctx context.Context) (protocol.SeatMap, error) {
	seats, err := r.load(ctx)
	if err != nil {
		if delErr := r.client.Del(ctx, r.key).Err(); delErr != nil {
			utils.ErrorLogger.Printf("redis: del %s: %v", r.key, delErr)
		}
		return nil, err
	}

	b, err := json.Marshal(seats)
	if err != nil {
		return nil, err
	}
	if err := r.client.Set(ctx, r.key, b, r.ttl).Err(); err != nil {
		utils.ErrorLogger.Printf("redis: set %s: %v", r.key, err)
	}
	return seats, nil
}
