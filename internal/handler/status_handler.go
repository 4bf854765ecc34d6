package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/xandery-geek/RSSHub/internal/douban"
	"github.com/xandery-geek/RSSHub/internal/metrics"
	"github.com/xandery-geek/RSSHub/internal/model"
)

// TimelineService 是状态路由依赖的时间线编排能力。
type TimelineService interface {
	UserTimeline(ctx context.Context, userID string) ([]model.TimelineItem, error)
}

// StatusHandler 处理用户广播路由。
type StatusHandler struct {
	service TimelineService
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewStatusHandler 生成 StatusHandler。
func NewStatusHandler(service TimelineService, recorder metrics.Recorder, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{service: service, metrics: recorder, logger: logger}
}

// GetUserStatuses 处理 GET /douban/people/{userid}/status[/{routeParams}]。
// routeParams 是 query string 格式的路径段，控制输出样式；
// 解析失败按全默认配置处理，绝不报错。
func (h *StatusHandler) GetUserStatuses(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userid")
	if !isNumericUserID(userID) {
		writeError(w, http.StatusBadRequest, model.NewInvalidUserIDError(userID))
		return
	}

	routeParams, err := url.ParseQuery(chi.URLParam(r, "routeParams"))
	if err != nil {
		h.logger.Warn("unparseable route params, using defaults",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		routeParams = url.Values{}
	}

	items, err := h.service.UserTimeline(r.Context(), userID)
	if err != nil {
		h.logger.Error("timeline request failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, model.NewUpstreamFetchError(err.Error()))
		return
	}

	renderer := douban.NewRenderer(routeParams)
	feed := douban.BuildFeed(userID, items, renderer)
	h.metrics.RecordItemsRendered(len(feed.Items))

	writeJSON(w, http.StatusOK, feed)
}

// isNumericUserID 校验用户 id 是否为纯数字。
// 上游时间线接口只接受整数型用户 id, 个性域名形式无法查询。
func isNumericUserID(userID string) bool {
	if userID == "" {
		return false
	}
	for i := 0; i < len(userID); i++ {
		if userID[i] < '0' || userID[i] > '9' {
			return false
		}
	}
	return true
}
