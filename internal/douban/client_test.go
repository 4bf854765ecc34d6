package douban

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/time/rate"

	"github.com/xandery-geek/RSSHub/internal/metrics"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func newTestClient(server *httptest.Server) *Client {
	var buf bytes.Buffer
	return NewClient(server.Client(), nil, metrics.Nop{}, newTestLogger(&buf), server.URL, 1<<20)
}

func TestClient_Timeline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status/user_timeline/123456" {
			t.Errorf("请求路径 = %s", r.URL.Path)
		}
		if got := r.Header.Get("Referer"); got != "https://m.douban.com/" {
			t.Errorf("Referer = %q, 上游接口要求固定 Referer", got)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("请求应携带 User-Agent")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"status":{"id":"100","text":"hello","uri":"douban://x"}}]}`))
	}))
	defer server.Close()

	c := newTestClient(server)
	items, err := c.Timeline(context.Background(), "123456")
	if err != nil {
		t.Fatalf("Timeline 返回了错误: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("条目数 = %d, want 1", len(items))
	}
	if items[0].Status == nil || items[0].Status.ID != "100" {
		t.Errorf("解析出的条目不完整: %+v", items[0])
	}
	if items[0].Status.Text == nil || *items[0].Status.Text != "hello" {
		t.Error("text 字段应解析为非 nil 指针")
	}
}

func TestClient_TimelineTextNullStaysNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"items":[{"status":{"id":"100","text":null}}]}`))
	}))
	defer server.Close()

	c := newTestClient(server)
	items, err := c.Timeline(context.Background(), "u")
	if err != nil {
		t.Fatalf("Timeline 返回了错误: %v", err)
	}
	if items[0].Status.Text != nil {
		t.Error("JSON null 的 text 应保持为 nil, 以区分空字符串")
	}
}

func TestClient_FullText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status/100" {
			t.Errorf("请求路径 = %s", r.URL.Path)
		}
		w.Write([]byte(`{"text":"完整正文"}`))
	}))
	defer server.Close()

	c := newTestClient(server)
	text, err := c.FullText(context.Background(), "100")
	if err != nil {
		t.Fatalf("FullText 返回了错误: %v", err)
	}
	if text != "完整正文" {
		t.Errorf("text = %q", text)
	}
}

func TestClient_UpstreamErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := newTestClient(server)
	if _, err := c.Timeline(context.Background(), "u"); err == nil {
		t.Fatal("非 200 响应应返回错误")
	} else if !strings.Contains(err.Error(), "403") {
		t.Errorf("错误信息应包含状态码: %v", err)
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	c := newTestClient(server)
	if _, err := c.FullText(context.Background(), "100"); err == nil {
		t.Fatal("非法 JSON 应返回错误")
	}
}

func TestClient_LimiterCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	// 容量耗尽的限速器, 只能靠等待放行
	limiter := rate.NewLimiter(rate.Limit(0.001), 1)
	limiter.Allow()

	c := NewClient(server.Client(), limiter, metrics.Nop{}, newTestLogger(&buf), server.URL, 1<<20)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Timeline(ctx, "u"); err == nil {
		t.Fatal("上下文已取消时限速等待应立即失败")
	}
}
