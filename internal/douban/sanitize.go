// Package douban 实现豆瓣广播的内容规范化与递归渲染引擎。
//
// 包含三部分：Status Sanitizer（把残缺的广播记录修复为字段齐全的记录，
// 或给出明确的不可用结论）、Recursive Content Renderer（把消毒后的
// 广播递归渲染为标题/正文对）、以及上游 API 客户端与时间线编排。
package douban

import (
	"strconv"
	"strings"
	"time"

	"github.com/xandery-geek/RSSHub/internal/model"
)

// 不可用结论的默认文案。记录自带 msg 时优先使用 msg。
const (
	reasonNoContent    = "[no content]"
	reasonDeleted      = "[content deleted]"
	reasonHidden       = "[content hidden]"
	reasonInaccessible = "[content inaccessible]"
)

// 作者缺失时的兜底身份。
const (
	fallbackAuthorURL    = "https://www.douban.com/people/1/"
	fallbackAuthorName   = "[author unavailable]"
	fallbackAuthorAvatar = "https://img1.doubanio.com/icon/user_normal.jpg"
)

// fallbackDomain 是各类兜底链接的域名。
const fallbackDomain = "https://www.douban.com"

// createTimeLayout 是上游 create_time 字段的时间格式（东八区本地时间）。
const createTimeLayout = "2006-01-02 15:04:05"

// Verdict 表示消毒结论：记录可用，或不可用并附带可读原因。
type Verdict struct {
	OK     bool
	Reason string
}

// Sanitize 对一条广播做原地消毒，返回可用性结论。
//
// 不可用的情形（优先级从高到低）：记录为 nil；deleted 置位；hidden 置位；
// text 缺失（JSON null）或 uri 为空。原因取记录自带的 msg，否则用固定文案。
//
// 可用时原地补全：作者身份（url/name/avatar 逐字段兜底）、create_time
// （缺失时取当前时间）、entities（保证非 nil），并把 sharing_url 截断到
// 第一个 & 之前。不可用时也会写入一个带失败标记的合成 sharing_url 并
// 回填 create_time，调用方无须对"无链接"做特判。
//
// 纯数据变换，不做任何 I/O，对任意残缺输入都不会 panic；幂等，
// "当前时间"在一次调用内只取一次。
func Sanitize(s *model.Status) Verdict {
	verdict := Verdict{OK: true}
	now := time.Now()

	switch {
	case s == nil:
		return Verdict{OK: false, Reason: reasonNoContent}
	case s.Deleted:
		verdict = Verdict{OK: false, Reason: reasonOrMsg(s, reasonDeleted)}
	case s.Hidden:
		verdict = Verdict{OK: false, Reason: reasonOrMsg(s, reasonHidden)}
	case s.Text == nil || s.URI == "":
		verdict = Verdict{OK: false, Reason: reasonOrMsg(s, reasonInaccessible)}
	default:
		if s.Author == nil {
			s.Author = &model.Author{}
		}
		if s.Author.URL == "" {
			s.Author.URL = fallbackAuthorURL
		}
		if s.Author.Name == "" {
			s.Author.Name = fallbackAuthorName
		}
		if s.Author.Avatar == "" {
			s.Author.Avatar = fallbackAuthorAvatar
		}
		if s.CreateTime == "" {
			s.CreateTime = now.Format(createTimeLayout)
		}
		if s.Entities == nil {
			s.Entities = []model.Entity{}
		}
	}

	if s.SharingURL != "" {
		s.SharingURL, _, _ = strings.Cut(s.SharingURL, "&")
	}

	if !verdict.OK {
		s.SharingURL = fallbackDomain + "?rsshub_failed=" + strconv.FormatInt(now.UnixMilli(), 10)
		if s.CreateTime == "" {
			s.CreateTime = now.Format(createTimeLayout)
		}
	}
	return verdict
}

// reasonOrMsg 优先返回记录自带的 msg，否则返回默认文案。
func reasonOrMsg(s *model.Status, fallback string) string {
	if s.Msg != "" {
		return s.Msg
	}
	return fallback
}
