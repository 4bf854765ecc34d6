// Package cache 提供按 TTL 失效的响应缓存。
// 用于记忆化上游时间线列表与广播全文查询。
package cache

import "time"

// Cache 是响应缓存的接口。实现要求线程安全。
type Cache interface {
	// Get 返回键对应的值；键不存在或已过期时第二个返回值为 false。
	Get(key string) (string, bool)
	// Set 写入键值并设置存活时长。ttl 不为正时立即失效。
	Set(key, value string, ttl time.Duration)
}

// TryGet 先查缓存，未命中时执行 fetch 并把结果写回缓存。
// fetch 失败时不写缓存，错误原样返回。
func TryGet(c Cache, key string, ttl time.Duration, fetch func() (string, error)) (string, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}
	value, err := fetch()
	if err != nil {
		return "", err
	}
	c.Set(key, value, ttl)
	return value, nil
}
