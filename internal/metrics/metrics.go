// Package metrics 提供 Prometheus 指标的收集与暴露。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder 是指标收集接口，客户端、服务层与处理器通过它上报。
type Recorder interface {
	RecordUpstreamRequest(endpoint string, statusCode int)
	RecordUpstreamLatency(duration time.Duration)
	RecordCacheHit()
	RecordCacheMiss()
	RecordItemsRendered(count int)
	RecordItemDropped()
}

// Collector 是基于 Prometheus 的 Recorder 实现。
type Collector struct {
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  prometheus.Histogram
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	itemsRendered    prometheus.Counter
	itemsDropped     prometheus.Counter
}

// NewCollector 生成 Collector 并把指标注册到指定注册表。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rsshub_upstream_requests_total",
			Help: "按接口与状态码统计的上游请求数",
		}, []string{"endpoint", "status_code"}),
		upstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rsshub_upstream_latency_seconds",
			Help:    "上游请求耗时（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rsshub_cache_hit_total",
			Help: "响应缓存命中数",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rsshub_cache_miss_total",
			Help: "响应缓存未命中数",
		}),
		itemsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rsshub_items_rendered_total",
			Help: "渲染产出的条目总数",
		}),
		itemsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rsshub_items_dropped_total",
			Help: "因全文获取失败而丢弃的条目总数",
		}),
	}

	reg.MustRegister(
		c.upstreamRequests,
		c.upstreamLatency,
		c.cacheHits,
		c.cacheMisses,
		c.itemsRendered,
		c.itemsDropped,
	)

	return c
}

// RecordUpstreamRequest 记录一次上游请求的结果。
func (c *Collector) RecordUpstreamRequest(endpoint string, statusCode int) {
	c.upstreamRequests.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
}

// RecordUpstreamLatency 记录一次上游请求的耗时。
func (c *Collector) RecordUpstreamLatency(duration time.Duration) {
	c.upstreamLatency.Observe(duration.Seconds())
}

// RecordCacheHit 记录一次缓存命中。
func (c *Collector) RecordCacheHit() { c.cacheHits.Inc() }

// RecordCacheMiss 记录一次缓存未命中。
func (c *Collector) RecordCacheMiss() { c.cacheMisses.Inc() }

// RecordItemsRendered 记录渲染产出的条目数。
func (c *Collector) RecordItemsRendered(count int) {
	c.itemsRendered.Add(float64(count))
}

// RecordItemDropped 记录一条因全文获取失败被丢弃的条目。
func (c *Collector) RecordItemDropped() { c.itemsDropped.Inc() }

// Nop 是空实现，测试与未启用指标时使用。
type Nop struct{}

func (Nop) RecordUpstreamRequest(string, int)   {}
func (Nop) RecordUpstreamLatency(time.Duration) {}
func (Nop) RecordCacheHit()                     {}
func (Nop) RecordCacheMiss()                    {}
func (Nop) RecordItemsRendered(int)             {}
func (Nop) RecordItemDropped()                  {}

// Handler 返回 Prometheus 抓取端点的 HTTP 处理器。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
