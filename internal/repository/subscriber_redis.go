package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"MarketClose/internal/domain/repository"
)

// RedisSubscribers stores chat ids in a sorted set scored by first contact.
type RedisSubscribers struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

func NewRedisSubscribers(client *redis.Client, key string) repository.SubscriberRepository {
	return &RedisSubscribers{client: client, key: key, now: time.Now}
}

func (s *RedisSubscribers) Add(ctx context.Context, id string) (bool, error) {
	n, err := s.client.ZAddNX(ctx, s.key, redis.Z{
		Score:  float64(s.now().UnixNano()),
		Member: id,
	}).Result()
	if err != nil {
		return false, fmt.Errorf("add subscriber: %w", err)
	}
	return n == 1, nil
}

func (s *RedisSubscribers) ListAll(ctx context.Context) ([]string, error) {
	ids, err := s.client.ZRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return ids, nil
}
