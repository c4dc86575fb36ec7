package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const latestLocationKey = "location:latest"

// LocationFix is the cached form of the most recent GPS reading.
type LocationFix struct {
	ID         int64     `json:"id"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recorded_at"`
}

type LocationCache struct {
	client *redis.Client
}

func NewLocationCache(client *redis.Client) *LocationCache {
	return &LocationCache{client: client}
}

func (c *LocationCache) Latest(ctx context.Context) (*LocationFix, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	raw, err := c.client.Get(ctx, latestLocationKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest location: %w", err)
	}

	var fix LocationFix
	if err := json.Unmarshal(raw, &fix); err != nil {
		return nil, fmt.Errorf("decode latest location: %w", err)
	}
	return &fix, nil
}

// Store keeps the fix only if it is newer than the cached one, so two
// concurrent ingests cannot leave an older reading behind.
func (c *LocationCache) Store(ctx context.Context, fix LocationFix) error {
	if c == nil || c.client == nil {
		return nil
	}

	current, err := c.Latest(ctx)
	if err == nil && current != nil && current.ID > fix.ID {
		return nil
	}

	raw, err := json.Marshal(fix)
	if err != nil {
		return fmt.Errorf("encode latest location: %w", err)
	}
	return c.client.Set(ctx, latestLocationKey, raw, 0).Err()
}
