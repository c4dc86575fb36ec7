package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const bookedSeatsPrefix = "booked:"

// SeatSnapshot caches the booked-seat list of each trip. A nil client turns
// every method into a no-op miss so callers read straight from Postgres.
type SeatSnapshot struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSeatSnapshot(client *redis.Client, ttl time.Duration) *SeatSnapshot {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &SeatSnapshot{client: client, ttl: ttl}
}

func bookedSeatsKey(tripID string) string {
	return bookedSeatsPrefix + tripID
}

// Get returns the cached seats and whether the key was present.
func (s *SeatSnapshot) Get(ctx context.Context, tripID string) ([]string, bool, error) {
	if s == nil || s.client == nil {
		return nil, false, nil
	}

	raw, err := s.client.Get(ctx, bookedSeatsKey(tripID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get booked seats snapshot: %w", err)
	}

	var seats []string
	if err := json.Unmarshal(raw, &seats); err != nil {
		return nil, false, fmt.Errorf("decode booked seats snapshot: %w", err)
	}
	return seats, true, nil
}

func (s *SeatSnapshot) Set(ctx context.Context, tripID string, seats []string) error {
	if s == nil || s.client == nil {
		return nil
	}

	raw, err := json.Marshal(seats)
	if err != nil {
		return fmt.Errorf("encode booked seats snapshot: %w", err)
	}
	return s.client.Set(ctx, bookedSeatsKey(tripID), raw, s.ttl).Err()
}

func (s *SeatSnapshot) Invalidate(ctx context.Context, tripID string) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Del(ctx, bookedSeatsKey(tripID)).Err()
}

// InvalidateAll drops every trip snapshot.
func (s *SeatSnapshot) InvalidateAll(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}

	iter := s.client.Scan(ctx, 0, bookedSeatsPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan booked seats snapshots: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
