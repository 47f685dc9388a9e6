package redis

import (
	redis_models "Howler/models/redis"
	redis_utils "Howler/services/redis/utils"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient handles Redis operations
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(Addr string, DB int) *RedisClient {
	var client *redis.Client
	if Addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(Addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: Addr,
			DB:   DB,
		})
	}
	return &RedisClient{
		client: client,
		ctx:    context.Background(),
	}
}

// SaveRoomSnapshot stores a room's public read model in Redis
// Key format: "room:{code}"
// TTL: 24 hours
func (rc *RedisClient) SaveRoomSnapshot(snapshot *redis_models.RoomSnapshot) error {
	key := redis_utils.FormatRoomSnapshotKey(snapshot.Code)
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("error marshaling room snapshot: %v", err)
	}
	return rc.client.Set(rc.ctx, key, data, 24*time.Hour).Err()
}

// GetRoomSnapshot retrieves a room's public read model from Redis
// Key format: "room:{code}"
// Returns: RoomSnapshot struct, nil when the room is unknown
func (rc *RedisClient) GetRoomSnapshot(roomCode string) (*redis_models.RoomSnapshot, error) {
	key := redis_utils.FormatRoomSnapshotKey(roomCode)
	data, err := rc.client.Get(rc.ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting room snapshot: %v", err)
	}

	var snapshot redis_models.RoomSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("error unmarshaling room snapshot: %v", err)
	}
	return &snapshot, nil
}

// DeleteRoomSnapshot removes a room's read model and audit trail
// Key formats: "room:{code}", "room:{code}:actions"
func (rc *RedisClient) DeleteRoomSnapshot(roomCode string) error {
	pipe := rc.client.Pipeline()
	pipe.Del(rc.ctx, redis_utils.FormatRoomSnapshotKey(roomCode))
	pipe.Del(rc.ctx, redis_utils.FormatRoomActionsKey(roomCode))

	if _, err := pipe.Exec(rc.ctx); err != nil {
		return fmt.Errorf("error deleting room snapshot: %v", err)
	}
	return nil
}

// AppendRoomAction pushes one audit entry onto a room's action list
// Key format: "room:{code}:actions"
// TTL: 24 hours, refreshed on every append
func (rc *RedisClient) AppendRoomAction(roomCode string, entry *redis_models.RoomActionEntry) error {
	key := redis_utils.FormatRoomActionsKey(roomCode)
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("error marshaling room action: %v", err)
	}

	pipe := rc.client.Pipeline()
	pipe.RPush(rc.ctx, key, data)
	pipe.Expire(rc.ctx, key, 24*time.Hour)
	if _, err := pipe.Exec(rc.ctx); err != nil {
		return fmt.Errorf("error appending room action: %v", err)
	}
	return nil
}

// GetRoomActions retrieves a room's full audit trail in append order
// Key format: "room:{code}:actions"
func (rc *RedisClient) GetRoomActions(roomCode string) ([]redis_models.RoomActionEntry, error) {
	key := redis_utils.FormatRoomActionsKey(roomCode)
	raw, err := rc.client.LRange(rc.ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("error getting room actions: %v", err)
	}

	entries := make([]redis_models.RoomActionEntry, 0, len(raw))
	for _, item := range raw {
		var entry redis_models.RoomActionEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("error unmarshaling room action: %v", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
