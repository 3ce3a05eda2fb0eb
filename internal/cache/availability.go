// Package cache holds the Redis-backed read-through caches used by services.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/himanshu123g/fitlife-plus-sub001/internal/models"
	"github.com/redis/go-redis/v9"
)

const availabilityKeyPrefix = "availability:trainer:"

type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl}
}

func availabilityKey(trainerID int64) string {
	return availabilityKeyPrefix + strconv.FormatInt(trainerID, 10)
}

func (c *AvailabilityCache) Get(ctx context.Context, trainerID int64) ([]models.AvailabilitySlot, bool, error) {
	payload, err := c.client.Get(ctx, availabilityKey(trainerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read availability for trainer %d: %w", trainerID, err)
	}

	var slots []models.AvailabilitySlot
	if err := json.Unmarshal(payload, &slots); err != nil {
		return nil, false, fmt.Errorf("decode cached availability for trainer %d: %w", trainerID, err)
	}
	if slots == nil {
		slots = make([]models.AvailabilitySlot, 0)
	}
	return slots, true, nil
}

func (c *AvailabilityCache) Set(ctx context.Context, trainerID int64, slots []models.AvailabilitySlot) error {
	if slots == nil {
		slots = make([]models.AvailabilitySlot, 0)
	}
	payload, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encode availability for trainer %d: %w", trainerID, err)
	}
	return c.client.Set(ctx, availabilityKey(trainerID), payload, c.ttl).Err()
}

func (c *AvailabilityCache) Invalidate(ctx context.Context, trainerID int64) error {
	return c.client.Del(ctx, availabilityKey(trainerID)).Err()
}
