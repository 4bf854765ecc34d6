package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/xandery-geek/RSSHub/internal/metrics"
	"github.com/xandery-geek/RSSHub/internal/middleware"
)

// RouterDeps 汇总 NewRouter 需要的依赖。
type RouterDeps struct {
	TimelineService TimelineService
	Metrics         metrics.Recorder
	Gatherer        prometheus.Gatherer
	Logger          *slog.Logger
}

// NewRouter 构建全部路由与中间件链。
//
// 中间件执行顺序: Recovery → Logging。
// /health 与 /metrics 不经过业务处理器。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	statusHandler := NewStatusHandler(deps.TimelineService, deps.Metrics, deps.Logger)

	r.Route("/douban/people/{userid}", func(r chi.Router) {
		r.Get("/status", statusHandler.GetUserStatuses)
		r.Get("/status/{routeParams}", statusHandler.GetUserStatuses)
	})

	return r
}
