package cache

import (
	"sync"
	"time"
)

// memoryEntry 是内存缓存中的一个条目。
type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// Memory 是进程内 TTL 缓存，未配置 Redis 时的默认实现。
// 过期条目在读取时惰性清除。
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemory 生成空的内存缓存。
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

// Get 返回键对应的未过期值。
func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		// 二次检查：期间可能已被并发写入新值
		if current, ok := m.entries[key]; ok && time.Now().After(current.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return "", false
	}
	return entry.value, true
}

// Set 写入键值并设置存活时长。
func (m *Memory) Set(key, value string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}
