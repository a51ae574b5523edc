package redis

import (
	"context"
	"fmt"
	"net"

	"github.com/redis/go-redis/v9"

	"myGreenMenu/pkg/config"
)

// NewRedisClient connects with the pool settings from cfg.Redis and fails if
// the server does not answer a PING within the dial timeout.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	rc := cfg.Redis

	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(rc.RedisHost, rc.RedisPort),
		Password:     rc.RedisPassword,
		DB:           rc.RedisDB,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), rc.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", client.Options().Addr, err)
	}

	return client, nil
}

func CloseRedisClient(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
