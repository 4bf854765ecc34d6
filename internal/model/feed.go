// Package model 定义领域模型。
package model

import "time"

// FeedItem 表示组装完成的单条输出记录。
// Title / Description 由渲染引擎产出，Description 可能包含原始标记。
type FeedItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description string    `json:"description"`
	PublishedAt time.Time `json:"published_at"`
}

// Feed 表示一个用户时间线组装出的输出文档。
// 具体的 RSS/Atom 序列化不在本服务职责内，由下游按需转换。
type Feed struct {
	Title string     `json:"title"`
	Link  string     `json:"link"`
	Items []FeedItem `json:"items"`
}
