// Package warm 实现时间线缓存的后台预热。
// 按固定间隔刷新配置的用户列表，并以 semaphore 控制并发数。
package warm

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xandery-geek/RSSHub/internal/model"
)

// TimelineWarmer 是预热器依赖的时间线获取能力。
type TimelineWarmer interface {
	// UserTimeline 获取并缓存指定用户的时间线。
	UserTimeline(ctx context.Context, userID string) ([]model.TimelineItem, error)
}

// Warmer 定期刷新一批用户的时间线缓存，
// 使后续请求命中缓存而不是直接打到上游。
type Warmer struct {
	service        TimelineWarmer
	logger         *slog.Logger
	userIDs        []string
	maxConcurrency int
}

// NewWarmer 生成 Warmer。maxConcurrency 不大于 0 时使用默认值 4。
func NewWarmer(service TimelineWarmer, logger *slog.Logger, userIDs []string, maxConcurrency int) *Warmer {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &Warmer{
		service:        service,
		logger:         logger,
		userIDs:        userIDs,
		maxConcurrency: maxConcurrency,
	}
}

// Start 以固定间隔运行预热循环，直到 ctx 被取消。
func (w *Warmer) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("cache warmer started",
		slog.Duration("interval", interval),
		slog.Int("user_count", len(w.userIDs)),
		slog.Int("max_concurrency", w.maxConcurrency),
	)

	// 启动后立即执行一次
	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cache warmer stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce 对全部配置用户执行一轮预热，semaphore 控制并发。
func (w *Warmer) RunOnce(ctx context.Context) {
	if len(w.userIDs) == 0 {
		w.logger.Info("no users configured for warming")
		return
	}

	start := time.Now()

	sem := make(chan struct{}, w.maxConcurrency)
	var wg sync.WaitGroup

	for _, userID := range w.userIDs {
		wg.Add(1)
		sem <- struct{}{}

		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()

			if _, err := w.service.UserTimeline(ctx, id); err != nil {
				w.logger.Error("timeline warm failed",
					slog.String("user_id", id),
					slog.String("error", err.Error()),
				)
			}
		}(userID)
	}

	wg.Wait()

	w.logger.Info("warm cycle completed",
		slog.Int("user_count", len(w.userIDs)),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
}
