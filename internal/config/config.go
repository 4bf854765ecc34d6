// Package config 提供应用配置。
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 保存应用的全部配置。
// 启动时从环境变量读取一次，之后视为不可变。
type Config struct {
	// Server
	ServerPort string

	// 上游接口
	DoubanAPIBase      string
	FetchTimeout       time.Duration
	FetchMaxSize       int64
	FetchMaxConcurrent int
	UpstreamRPS        float64

	// 缓存
	CacheExpire    time.Duration
	FullTextExpire time.Duration
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	// 缓存预热 worker
	WarmUserIDs  []string
	WarmInterval time.Duration

	// 日志
	LogFormat string
}

// Load 从环境变量读取 Config。
// 所有键都有默认值；DOUBAN_API_BASE 配置非法 URL 时返回错误。
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:         getEnvString("SERVER_PORT", "8080"),
		DoubanAPIBase:      getEnvString("DOUBAN_API_BASE", "https://m.douban.com/rexxar/api/v2"),
		FetchTimeout:       getEnvDuration("FETCH_TIMEOUT", 10*time.Second),
		FetchMaxSize:       getEnvInt64("FETCH_MAX_SIZE", 5242880),
		FetchMaxConcurrent: getEnvInt("FETCH_MAX_CONCURRENT", 10),
		UpstreamRPS:        getEnvFloat("UPSTREAM_RPS", 5),
		CacheExpire:        getEnvDuration("CACHE_EXPIRE", 10*time.Minute),
		FullTextExpire:     getEnvDuration("FULLTEXT_EXPIRE", 24*time.Hour),
		RedisAddr:          getEnvString("REDIS_ADDR", ""),
		RedisPassword:      getEnvString("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		WarmUserIDs:        getEnvList("WARM_USER_IDS"),
		WarmInterval:       getEnvDuration("WARM_INTERVAL", 10*time.Minute),
		LogFormat:          getEnvString("LOG_FORMAT", "json"),
	}

	if _, err := url.Parse(cfg.DoubanAPIBase); err != nil {
		return nil, fmt.Errorf("DOUBAN_API_BASE 配置非法: %w", err)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// getEnvList 读取逗号分隔的列表，空项被忽略。
func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
