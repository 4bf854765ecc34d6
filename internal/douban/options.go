package douban

import (
	"net/url"
	"strconv"
)

// Options 是一次渲染调用的完整配置，三层默认值合并后的结果。
// Renderer 只读消费，不再做任何回填。
type Options struct {
	Readable                   bool // 是否开启细节排版可读性优化
	AuthorNameBold             bool // 是否加粗作者名字
	ShowAuthorInTitle          bool // 是否在标题处显示作者
	ShowAuthorInDesc           bool // 是否在正文处显示作者
	ShowAuthorAvatarInDesc     bool // 是否在正文处显示作者头像
	ShowEmojiForRetweet        bool // 转发标记用 🔁 取代 Fw:
	ShowRetweetTextInTitle     bool // 在标题处显示转发评论
	AddLinkForPics             bool // 为图片添加可点击的链接
	ShowTimestampInDescription bool // 在正文处显示广播时间戳
	ShowComments               bool // 在正文处显示评论
	ShowColonInDesc            bool // 正文作者名后是否跟冒号（仅递归调用显式指定）

	WidthOfPics        int // 配图宽，负数表示不指定
	HeightOfPics       int // 配图高，负数表示不指定
	SizeOfAuthorAvatar int // 作者头像边长
}

// Overrides 是最高优先级的显式配置层，nil 字段表示不覆盖。
// 只有渲染被转发广播的递归调用会用到它。
type Overrides struct {
	Readable                   *bool
	AuthorNameBold             *bool
	ShowAuthorInTitle          *bool
	ShowAuthorInDesc           *bool
	ShowAuthorAvatarInDesc     *bool
	ShowEmojiForRetweet        *bool
	ShowRetweetTextInTitle     *bool
	AddLinkForPics             *bool
	ShowTimestampInDescription *bool
	ShowComments               *bool
	ShowColonInDesc            *bool

	WidthOfPics        *int
	HeightOfPics       *int
	SizeOfAuthorAvatar *int
}

// ResolveOptions 按 显式覆盖 > 路由参数 > 硬默认值 的优先级合并出一份
// 完整配置。布尔项接受 0/1/true/false，整数项接受十进制数字；
// 无法解析的值落到下一层，绝不报错。
// ShowColonInDesc 没有路由参数绑定，与原始行为一致。
func ResolveOptions(o *Overrides, query url.Values) Options {
	if o == nil {
		o = &Overrides{}
	}
	return Options{
		Readable:                   boolOption(o.Readable, queryBool(query, "readable"), false),
		AuthorNameBold:             boolOption(o.AuthorNameBold, queryBool(query, "authorNameBold"), false),
		ShowAuthorInTitle:          boolOption(o.ShowAuthorInTitle, queryBool(query, "showAuthorInTitle"), true),
		ShowAuthorInDesc:           boolOption(o.ShowAuthorInDesc, queryBool(query, "showAuthorInDesc"), false),
		ShowAuthorAvatarInDesc:     boolOption(o.ShowAuthorAvatarInDesc, queryBool(query, "showAuthorAvatarInDesc"), false),
		ShowEmojiForRetweet:        boolOption(o.ShowEmojiForRetweet, queryBool(query, "showEmojiForRetweet"), false),
		ShowRetweetTextInTitle:     boolOption(o.ShowRetweetTextInTitle, queryBool(query, "showRetweetTextInTitle"), false),
		AddLinkForPics:             boolOption(o.AddLinkForPics, queryBool(query, "addLinkForPics"), false),
		ShowTimestampInDescription: boolOption(o.ShowTimestampInDescription, queryBool(query, "showTimestampInDescription"), false),
		ShowComments:               boolOption(o.ShowComments, queryBool(query, "showComments"), false),
		ShowColonInDesc:            boolOption(o.ShowColonInDesc, nil, false),

		WidthOfPics:        intOption(o.WidthOfPics, queryInt(query, "widthOfPics"), -1),
		HeightOfPics:       intOption(o.HeightOfPics, queryInt(query, "heightOfPics"), -1),
		SizeOfAuthorAvatar: intOption(o.SizeOfAuthorAvatar, queryInt(query, "sizeOfAuthorAvatar"), 48),
	}
}

// boolOption 取第一个非 nil 的布尔层。
func boolOption(explicit, query *bool, fallback bool) bool {
	if explicit != nil {
		return *explicit
	}
	if query != nil {
		return *query
	}
	return fallback
}

// intOption 取第一个非 nil 的整数层。
func intOption(explicit, query *int, fallback int) int {
	if explicit != nil {
		return *explicit
	}
	if query != nil {
		return *query
	}
	return fallback
}

// queryBool 解析路由参数中的布尔值，无法识别时返回 nil。
func queryBool(query url.Values, key string) *bool {
	if !query.Has(key) {
		return nil
	}
	var v bool
	switch query.Get(key) {
	case "1", "true":
		v = true
	case "0", "false":
		v = false
	default:
		return nil
	}
	return &v
}

// queryInt 解析路由参数中的整数值，无法解析时返回 nil。
func queryInt(query url.Values, key string) *int {
	if !query.Has(key) {
		return nil
	}
	v, err := strconv.Atoi(query.Get(key))
	if err != nil {
		return nil
	}
	return &v
}
