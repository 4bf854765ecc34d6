package douban

import (
	"fmt"
	"regexp"
	"time"

	"github.com/samber/lo"

	"github.com/xandery-geek/RSSHub/internal/model"
)

// trackingParamPattern 匹配分享链接尾部的跟踪参数。
var trackingParamPattern = regexp.MustCompile(`\?_i=.*$`)

// doubanLocation 是上游时间戳所在的时区（东八区本地时间）。
var doubanLocation = time.FixedZone("UTC+8", 8*60*60)

// BuildFeed 把补全后的时间线条目组装为输出文档。
// 标题取第一条广播的作者名（取不到时退回请求的 userID）；
// 信封级 deleted 的条目被过滤；每个条目各自独立渲染。
func BuildFeed(userID string, items []model.TimelineItem, renderer *Renderer) *model.Feed {
	authorName := userID
	if len(items) > 0 && items[0].Status != nil && items[0].Status.Author != nil && items[0].Status.Author.Name != "" {
		authorName = items[0].Status.Author.Name
	}

	kept := lo.Filter(items, func(item model.TimelineItem, _ int) bool {
		return !item.Deleted
	})

	feedItems := lo.Map(kept, func(item model.TimelineItem, _ int) model.FeedItem {
		// 渲染前先消毒：即使不可用的记录也会有稳定的链接与时间戳，
		// 组装环节无须对"无链接"做特判。
		Sanitize(item.Status)
		result := renderer.Render(item)

		link := fallbackDomain
		var createTime string
		if item.Status != nil {
			link = trackingParamPattern.ReplaceAllString(item.Status.SharingURL, "")
			createTime = item.Status.CreateTime
		}

		return model.FeedItem{
			Title:       result.Title,
			Link:        link,
			Description: result.Description,
			PublishedAt: parseCreateTime(createTime),
		}
	})

	return &model.Feed{
		Title: "Douban broadcasts - " + authorName,
		Link:  fmt.Sprintf("https://m.douban.com/people/%s/statuses", userID),
		Items: feedItems,
	}
}

// parseCreateTime 把东八区本地时间戳解析为 UTC 时刻。
// 解析失败时退回当前时间，保证输出总有合法时间戳。
func parseCreateTime(value string) time.Time {
	t, err := time.ParseInLocation(createTimeLayout, value, doubanLocation)
	if err != nil {
		return time.Now().UTC()
	}
	return t.UTC()
}
