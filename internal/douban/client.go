package douban

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/xandery-geek/RSSHub/internal/metrics"
	"github.com/xandery-geek/RSSHub/internal/model"
)

// DefaultAPIBase 是豆瓣移动端 JSON API 的默认地址。
const DefaultAPIBase = "https://m.douban.com/rexxar/api/v2"

// refererHeader 是上游接口要求携带的 Referer。
const refererHeader = "https://m.douban.com/"

// userAgent 是出站请求的 User-Agent。
const userAgent = "RSSHub/1.0 Feed Generator"

// Client 是豆瓣 JSON API 的客户端。
// 通过限速器对上游做速率约束，所有请求带固定 Referer。
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
	metrics     metrics.Recorder
	base        string // 测试时可替换
	maxBodySize int64
}

// NewClient 生成 Client 实例。base 为空时使用 DefaultAPIBase。
func NewClient(httpClient *http.Client, limiter *rate.Limiter, recorder metrics.Recorder, logger *slog.Logger, base string, maxBodySize int64) *Client {
	if base == "" {
		base = DefaultAPIBase
	}
	return &Client{
		httpClient:  httpClient,
		limiter:     limiter,
		logger:      logger,
		metrics:     recorder,
		base:        base,
		maxBodySize: maxBodySize,
	}
}

// timelineResponse 是时间线接口的响应信封。
type timelineResponse struct {
	Items []model.TimelineItem `json:"items"`
}

// fullTextResponse 是广播详情接口的响应信封，只取全文字段。
type fullTextResponse struct {
	Text string `json:"text"`
}

// Timeline 拉取用户时间线的顶层信封列表。
func (c *Client) Timeline(ctx context.Context, userID string) ([]model.TimelineItem, error) {
	var resp timelineResponse
	url := fmt.Sprintf("%s/status/user_timeline/%s", c.base, userID)
	if err := c.getJSON(ctx, "user_timeline", url, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// FullText 拉取单条广播的完整正文。
// 时间线接口返回的正文是截断的，顶层与被转发广播都需要这一步补全。
func (c *Client) FullText(ctx context.Context, statusID string) (string, error) {
	var resp fullTextResponse
	url := fmt.Sprintf("%s/status/%s", c.base, statusID)
	if err := c.getJSON(ctx, "status_fulltext", url, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// getJSON 执行一次带限速的 GET 请求并解码 JSON 响应。
func (c *Client) getJSON(ctx context.Context, endpoint, url string, v any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("等待限速器失败: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("Referer", refererHeader)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("upstream request failed",
			slog.String("endpoint", endpoint),
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		c.metrics.RecordUpstreamRequest(endpoint, 0)
		return fmt.Errorf("请求上游接口失败: %w", err)
	}
	defer resp.Body.Close()

	c.metrics.RecordUpstreamRequest(endpoint, resp.StatusCode)
	c.metrics.RecordUpstreamLatency(time.Since(start))

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("upstream returned error status",
			slog.String("endpoint", endpoint),
			slog.String("url", url),
			slog.Int("http_status", resp.StatusCode),
		)
		return fmt.Errorf("上游接口返回状态码 %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("解析响应 JSON 失败: %w", err)
	}
	return nil
}
