package cache

import (
	"errors"
	"testing"
	"time"
)

func TestMemory_SetAndGet(t *testing.T) {
	m := NewMemory()
	m.Set("k", "v", time.Minute)

	value, ok := m.Get("k")
	if !ok {
		t.Fatal("刚写入的键应能读到")
	}
	if value != "v" {
		t.Errorf("value = %q, want %q", value, "v")
	}
}

func TestMemory_GetMissing(t *testing.T) {
	m := NewMemory()
	if _, ok := m.Get("missing"); ok {
		t.Fatal("不存在的键不应命中")
	}
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory()
	m.Set("k", "v", -time.Second)

	if _, ok := m.Get("k"); ok {
		t.Fatal("已过期的键不应命中")
	}
}

func TestMemory_OverwriteResetsTTL(t *testing.T) {
	m := NewMemory()
	m.Set("k", "old", -time.Second)
	m.Set("k", "new", time.Minute)

	value, ok := m.Get("k")
	if !ok || value != "new" {
		t.Errorf("Get = %q/%v, 覆盖写入应重置值与 TTL", value, ok)
	}
}

func TestTryGet_HitSkipsFetch(t *testing.T) {
	m := NewMemory()
	m.Set("k", "cached", time.Minute)

	called := false
	value, err := TryGet(m, "k", time.Minute, func() (string, error) {
		called = true
		return "fetched", nil
	})
	if err != nil {
		t.Fatalf("TryGet 返回了错误: %v", err)
	}
	if value != "cached" {
		t.Errorf("value = %q, 命中时应返回缓存值", value)
	}
	if called {
		t.Error("命中时不应执行 fetch")
	}
}

func TestTryGet_MissFetchesAndStores(t *testing.T) {
	m := NewMemory()

	value, err := TryGet(m, "k", time.Minute, func() (string, error) {
		return "fetched", nil
	})
	if err != nil {
		t.Fatalf("TryGet 返回了错误: %v", err)
	}
	if value != "fetched" {
		t.Errorf("value = %q", value)
	}
	if stored, ok := m.Get("k"); !ok || stored != "fetched" {
		t.Errorf("缓存内容 = %q/%v, fetch 结果应写回缓存", stored, ok)
	}
}

func TestTryGet_FetchErrorNotCached(t *testing.T) {
	m := NewMemory()

	_, err := TryGet(m, "k", time.Minute, func() (string, error) {
		return "", errors.New("boom")
	})
	if err == nil {
		t.Fatal("fetch 失败应返回错误")
	}
	if _, ok := m.Get("k"); ok {
		t.Error("fetch 失败时不应写缓存")
	}
}
