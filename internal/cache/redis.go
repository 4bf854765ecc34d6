package cache

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis"
)

// Redis 是基于 Redis 的缓存实现，多实例部署时共享缓存用。
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedis 连接 Redis 并返回缓存实例，连接不可用时报错。
func NewRedis(addr, password string, db int, logger *slog.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   2,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	if _, err := client.Ping().Result(); err != nil {
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	logger.Info("redis cache connected", slog.String("addr", addr), slog.Int("db", db))
	return &Redis{client: client, logger: logger}, nil
}

// Get 返回键对应的值。键不存在属于正常未命中，不记日志。
func (r *Redis) Get(key string) (string, bool) {
	value, err := r.client.Get(key).Result()
	if err != nil {
		if err != redis.Nil {
			r.logger.Error("redis get failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return "", false
	}
	return value, true
}

// Set 写入键值并设置存活时长。写失败降级为未缓存，只记日志。
func (r *Redis) Set(key, value string, ttl time.Duration) {
	if err := r.client.Set(key, value, ttl).Err(); err != nil {
		r.logger.Error("redis set failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
