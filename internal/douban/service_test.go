package douban

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/xandery-geek/RSSHub/internal/cache"
	"github.com/xandery-geek/RSSHub/internal/metrics"
	"github.com/xandery-geek/RSSHub/internal/model"
)

// fakeAPIClient 是 apiClient 的测试替身。
// fullTexts 按广播 id 返回全文, fullTextErrs 按 id 返回错误。
type fakeAPIClient struct {
	mu            sync.Mutex
	items         []model.TimelineItem
	timelineErr   error
	fullTexts     map[string]string
	fullTextErrs  map[string]error
	timelineCalls int
	fullTextCalls int
}

func (f *fakeAPIClient) Timeline(_ context.Context, _ string) ([]model.TimelineItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timelineCalls++
	if f.timelineErr != nil {
		return nil, f.timelineErr
	}
	return f.items, nil
}

func (f *fakeAPIClient) FullText(_ context.Context, statusID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fullTextCalls++
	if err := f.fullTextErrs[statusID]; err != nil {
		return "", err
	}
	return f.fullTexts[statusID], nil
}

func newTestService(client *fakeAPIClient) *StatusService {
	var buf bytes.Buffer
	return NewStatusService(
		client, cache.NewMemory(), metrics.Nop{}, newTestLogger(&buf),
		time.Minute, time.Minute, 4,
	)
}

func timelineWith(statuses ...*model.Status) []model.TimelineItem {
	items := make([]model.TimelineItem, 0, len(statuses))
	for _, s := range statuses {
		items = append(items, model.TimelineItem{Status: s})
	}
	return items
}

func TestStatusService_HydratesFullText(t *testing.T) {
	s := validStatus()
	s.Text = strPtr("截断的正…")

	client := &fakeAPIClient{
		items:     timelineWith(s),
		fullTexts: map[string]string{"100": "截断的正文已补全"},
	}
	svc := newTestService(client)

	items, err := svc.UserTimeline(context.Background(), "u")
	if err != nil {
		t.Fatalf("UserTimeline 返回了错误: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("条目数 = %d, want 1", len(items))
	}
	if got := *items[0].Status.Text; got != "截断的正文已补全" {
		t.Errorf("text = %q, 应被全文接口的结果替换", got)
	}
}

func TestStatusService_TimelineErrorPropagates(t *testing.T) {
	client := &fakeAPIClient{timelineErr: errors.New("upstream down")}
	svc := newTestService(client)

	if _, err := svc.UserTimeline(context.Background(), "u"); err == nil {
		t.Fatal("时间线拉取失败应向上传播")
	}
}

func TestStatusService_DropsItemOnFullTextFailure(t *testing.T) {
	ok := validStatus()
	bad := validStatus()
	bad.ID = "101"

	client := &fakeAPIClient{
		items:        timelineWith(ok, bad),
		fullTexts:    map[string]string{"100": "full"},
		fullTextErrs: map[string]error{"101": errors.New("403")},
	}
	svc := newTestService(client)

	items, err := svc.UserTimeline(context.Background(), "u")
	if err != nil {
		t.Fatalf("单条失败不应令整次请求失败: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("条目数 = %d, 全文获取失败的条目应被剔除", len(items))
	}
	if items[0].Status.ID != "100" {
		t.Errorf("保留的条目 = %s, want 100", items[0].Status.ID)
	}
}

func TestStatusService_KeepsItemWithoutStatusID(t *testing.T) {
	client := &fakeAPIClient{
		items: []model.TimelineItem{{Status: &model.Status{Deleted: true}}},
	}
	svc := newTestService(client)

	items, err := svc.UserTimeline(context.Background(), "u")
	if err != nil {
		t.Fatalf("UserTimeline 返回了错误: %v", err)
	}
	if len(items) != 1 {
		t.Fatal("没有 id 的条目应保留, 由渲染层给出不可用结论")
	}
	if client.fullTextCalls != 0 {
		t.Errorf("全文调用次数 = %d, 没有 id 时不应发起请求", client.fullTextCalls)
	}
}

func TestStatusService_CachesTimeline(t *testing.T) {
	client := &fakeAPIClient{
		items:     timelineWith(validStatus()),
		fullTexts: map[string]string{"100": "full"},
	}
	svc := newTestService(client)

	ctx := context.Background()
	if _, err := svc.UserTimeline(ctx, "u"); err != nil {
		t.Fatalf("第一次请求失败: %v", err)
	}
	if _, err := svc.UserTimeline(ctx, "u"); err != nil {
		t.Fatalf("第二次请求失败: %v", err)
	}

	if client.timelineCalls != 1 {
		t.Errorf("时间线拉取次数 = %d, 第二次请求应命中缓存", client.timelineCalls)
	}
	if client.fullTextCalls != 1 {
		t.Errorf("全文拉取次数 = %d, 第二次请求应命中全文缓存", client.fullTextCalls)
	}
}

func TestStatusService_HydratesResharedFullText(t *testing.T) {
	reshared := validStatus()
	reshared.ID = "200"
	reshared.Text = strPtr("原文截断…")

	s := validStatus()
	s.Activity = "转发"
	s.ResharedStatus = reshared

	client := &fakeAPIClient{
		items:     timelineWith(s),
		fullTexts: map[string]string{"100": "comment", "200": "原文完整"},
	}
	svc := newTestService(client)

	items, err := svc.UserTimeline(context.Background(), "u")
	if err != nil {
		t.Fatalf("UserTimeline 返回了错误: %v", err)
	}
	if got := *items[0].Status.ResharedStatus.Text; got != "原文完整" {
		t.Errorf("被转发广播的 text = %q, 应被补全", got)
	}
}

func TestStatusService_ResharedFailureAppendsMarker(t *testing.T) {
	reshared := validStatus()
	reshared.ID = "200"
	reshared.Text = strPtr("原文截断")

	s := validStatus()
	s.ResharedStatus = reshared

	client := &fakeAPIClient{
		items:        timelineWith(s),
		fullTexts:    map[string]string{"100": "comment"},
		fullTextErrs: map[string]error{"200": errors.New("403")},
	}
	svc := newTestService(client)

	items, err := svc.UserTimeline(context.Background(), "u")
	if err != nil {
		t.Fatalf("被转发广播全文失败不应令请求失败: %v", err)
	}
	if len(items) != 1 {
		t.Fatal("顶层条目应保留")
	}
	got := *items[0].Status.ResharedStatus.Text
	if got != "原文截断\n[failed to fetch original status]" {
		t.Errorf("text = %q, 失败时应在正文末尾附加内联标记", got)
	}
}

func TestStatusService_SkipsFullTextForUnavailableReshared(t *testing.T) {
	s := validStatus()
	s.ResharedStatus = &model.Status{ID: "200", Deleted: true}

	client := &fakeAPIClient{
		items:     timelineWith(s),
		fullTexts: map[string]string{"100": "comment"},
	}
	svc := newTestService(client)

	if _, err := svc.UserTimeline(context.Background(), "u"); err != nil {
		t.Fatalf("UserTimeline 返回了错误: %v", err)
	}
	if client.fullTextCalls != 1 {
		t.Errorf("全文调用次数 = %d, 已删除的原动态不应发起详情请求", client.fullTextCalls)
	}
}
