package douban

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xandery-geek/RSSHub/internal/cache"
	"github.com/xandery-geek/RSSHub/internal/metrics"
	"github.com/xandery-geek/RSSHub/internal/model"
)

// 缓存键前缀。时间线按用户缓存，全文按广播缓存。
const (
	timelineKeyPrefix = "douban:timeline:"
	fullTextKeyPrefix = "douban:status:"
)

// apiClient 是服务层依赖的上游接口能力。
type apiClient interface {
	Timeline(ctx context.Context, userID string) ([]model.TimelineItem, error)
	FullText(ctx context.Context, statusID string) (string, error)
}

// StatusService 编排一次时间线请求：
// 读缓存或拉取时间线列表，再并行补全每条广播（及其被转发广播）的全文。
type StatusService struct {
	client        apiClient
	cache         cache.Cache
	logger        *slog.Logger
	metrics       metrics.Recorder
	timelineTTL   time.Duration
	fullTextTTL   time.Duration
	maxConcurrent int
}

// NewStatusService 生成 StatusService。maxConcurrent 不为正时取默认值 10。
func NewStatusService(
	client apiClient,
	c cache.Cache,
	recorder metrics.Recorder,
	logger *slog.Logger,
	timelineTTL, fullTextTTL time.Duration,
	maxConcurrent int,
) *StatusService {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &StatusService{
		client:        client,
		cache:         c,
		logger:        logger,
		metrics:       recorder,
		timelineTTL:   timelineTTL,
		fullTextTTL:   fullTextTTL,
		maxConcurrent: maxConcurrent,
	}
}

// UserTimeline 返回补全了全文、可直接渲染的时间线信封列表。
// 顶层全文获取失败的条目被剔除（只影响该条，不影响整条时间线）；
// 被转发广播的全文获取失败降级为正文内联标记。
func (s *StatusService) UserTimeline(ctx context.Context, userID string) ([]model.TimelineItem, error) {
	items, err := s.timeline(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.hydrateFullText(ctx, items), nil
}

// timeline 读缓存或拉取时间线列表。缓存的是补全全文之前的原始信封，
// 全文有独立的缓存层。
func (s *StatusService) timeline(ctx context.Context, userID string) ([]model.TimelineItem, error) {
	key := timelineKeyPrefix + userID

	if payload, ok := s.cache.Get(key); ok {
		s.metrics.RecordCacheHit()
		var items []model.TimelineItem
		if err := json.Unmarshal([]byte(payload), &items); err == nil {
			return items, nil
		}
		// 缓存损坏按未命中处理，重新拉取覆盖
		s.logger.Warn("corrupted timeline cache entry, refetching",
			slog.String("user_id", userID),
		)
	}
	s.metrics.RecordCacheMiss()

	items, err := s.client.Timeline(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("拉取用户 %s 的时间线失败: %w", userID, err)
	}

	if payload, err := json.Marshal(items); err == nil {
		s.cache.Set(key, string(payload), s.timelineTTL)
	}
	return items, nil
}

// hydrateFullText 并行补全各条目的全文，信号量控制最大并发。
// 每个条目独立处理，互不影响；返回保留下来的条目（保持输入顺序）。
func (s *StatusService) hydrateFullText(ctx context.Context, items []model.TimelineItem) []model.TimelineItem {
	dropped := make([]bool, len(items))

	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for i := range items {
		status := items[i].Status
		if status == nil || status.ID == "" {
			// 没有可查询的 id，留给渲染层给出不可用结论
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, status *model.Status) {
			defer wg.Done()
			defer func() { <-sem }()

			text, err := s.statusText(ctx, status.ID)
			if err != nil {
				s.logger.Error("fetching full text failed, dropping item",
					slog.String("status_id", status.ID),
					slog.String("error", err.Error()),
				)
				s.metrics.RecordItemDropped()
				dropped[i] = true
				return
			}
			status.Text = &text

			s.hydrateReshared(ctx, status.ResharedStatus)
		}(i, status)
	}
	wg.Wait()

	kept := make([]model.TimelineItem, 0, len(items))
	for i := range items {
		if !dropped[i] {
			kept = append(kept, items[i])
		}
	}
	return kept
}

// hydrateReshared 补全被转发广播的全文。
// 只对消毒通过的记录发起请求：被删除/被隐藏的原动态查询必然失败。
// 获取失败不向上传播，在正文末尾附加内联失败标记（原 po 被注销等
// 场景下 reshared_status 字段正常但详情接口返回 403）。
func (s *StatusService) hydrateReshared(ctx context.Context, reshared *model.Status) {
	if reshared == nil || reshared.ID == "" {
		return
	}

	key := fullTextKeyPrefix + reshared.ID
	if text, ok := s.cache.Get(key); ok {
		s.metrics.RecordCacheHit()
		reshared.Text = &text
		return
	}

	if !Sanitize(reshared).OK {
		return
	}

	s.metrics.RecordCacheMiss()
	text, err := s.client.FullText(ctx, reshared.ID)
	if err != nil {
		s.logger.Warn("fetching reshared full text failed",
			slog.String("status_id", reshared.ID),
			slog.String("error", err.Error()),
		)
		*reshared.Text += fullTextFailedMarker
		return
	}
	s.cache.Set(key, text, s.fullTextTTL)
	reshared.Text = &text
}

// statusText 读缓存或拉取单条广播的全文。
func (s *StatusService) statusText(ctx context.Context, statusID string) (string, error) {
	key := fullTextKeyPrefix + statusID
	fetched := false
	text, err := cache.TryGet(s.cache, key, s.fullTextTTL, func() (string, error) {
		fetched = true
		s.metrics.RecordCacheMiss()
		return s.client.FullText(ctx, statusID)
	})
	if err != nil {
		return "", err
	}
	if !fetched {
		s.metrics.RecordCacheHit()
	}
	return text, nil
}
