package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"go.uber.org/zap"
)

const (
	// OnlineSetKey holds the identities currently online across processes.
	OnlineSetKey = "presence:online"
	// LastSeenKey is a hash of identity -> unix seconds of the last disconnect.
	LastSeenKey = "presence:last_seen"
)

// RedisClient wraps redis.Client for the presence mirror and health checks.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient dials Redis and verifies the connection.
func NewRedisClient(host string, port string, password string) (*RedisClient, error) {
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}
	addr := fmt.Sprintf("%s:%s", host, port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 2,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logger.ErrorWithFields("Failed to connect to Redis", err, zap.String("address", addr))
		return nil, err
	}

	logger.Log.Info("Redis client connected", zap.String("address", addr))
	return &RedisClient{client: client}, nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

// Close closes the Redis connection
func (rc *RedisClient) Close() error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Close()
}

// Ping checks connectivity
func (rc *RedisClient) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// MarkOnline adds identity to the shared online set.
func (rc *RedisClient) MarkOnline(ctx context.Context, identity string) error {
	return rc.client.SAdd(ctx, OnlineSetKey, identity).Err()
}

// MarkOffline removes identity from the online set and records when it left.
func (rc *RedisClient) MarkOffline(ctx context.Context, identity string, at time.Time) error {
	_, err := rc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, OnlineSetKey, identity)
		pipe.HSet(ctx, LastSeenKey, identity, at.Unix())
		return nil
	})
	return err
}

// OnlineIdentities lists every identity in the online set.
func (rc *RedisClient) OnlineIdentities(ctx context.Context) ([]string, error) {
	return rc.client.SMembers(ctx, OnlineSetKey).Result()
}

// IsOnline reports whether identity is in the online set.
func (rc *RedisClient) IsOnline(ctx context.Context, identity string) (bool, error) {
	return rc.client.SIsMember(ctx, OnlineSetKey, identity).Result()
}

// LastSeen returns the recorded disconnect time, or zero when unknown.
func (rc *RedisClient) LastSeen(ctx context.Context, identity string) (time.Time, error) {
	raw, err := rc.client.HGet(ctx, LastSeenKey, identity).Result()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, 0).UTC(), nil
}

// ClearOnline empties the online set. Called at startup since a fresh
// process has no live connections.
func (rc *RedisClient) ClearOnline(ctx context.Context) error {
	return rc.client.Del(ctx, OnlineSetKey).Err()
}
