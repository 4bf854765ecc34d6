package douban

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/xandery-geek/RSSHub/internal/model"
	"github.com/xandery-geek/RSSHub/internal/security"
)

// activityReshare 是上游表示"转发"的活动标签原值。
const activityReshare = "转发"

// appURIScheme 与 dispatchPrefix 把豆瓣 App 内部链接改写为可公开访问的网页链接。
const (
	appURIScheme   = "douban://douban.com"
	dispatchPrefix = "https://www.douban.com/doubanapp/dispatch?uri="
)

// fullTextFailedMarker 附加在获取原动态全文失败的转发广播正文末尾。
const fullTextFailedMarker = "\n[failed to fetch original status]"

// RenderResult 是渲染引擎的输出：标题与正文（正文可含原始标记）。
type RenderResult struct {
	Title       string
	Description string
}

// Renderer 把消毒后的广播递归渲染为 RenderResult。
// 持有一次请求的路由参数；每层递归用各自的显式覆盖层与同一份
// 路由参数重新合并配置。无内部可变状态，可并发使用。
type Renderer struct {
	query    url.Values
	comments *security.CommentSanitizer
}

// NewRenderer 以一次请求的路由参数构造渲染器。
func NewRenderer(routeParams url.Values) *Renderer {
	return &Renderer{
		query:    routeParams,
		comments: security.NewCommentSanitizer(),
	}
}

// Render 渲染一个时间线条目。
// 隐藏图片前缀累加器在这里创建，作用域严格限定在一棵渲染调用树内。
func (r *Renderer) Render(item model.TimelineItem) RenderResult {
	var picsPrefixes []string
	return r.renderStatus(item, nil, &picsPrefixes)
}

// renderStatus 按固定顺序把一条广播累加成标题与正文。
// 被转发广播通过递归调用本函数复用全部逻辑；picsPrefixes 在整棵
// 调用树间共享，收集各层的零尺寸隐藏图片标记。
func (r *Renderer) renderStatus(item model.TimelineItem, overrides *Overrides, picsPrefixes *[]string) RenderResult {
	opts := ResolveOptions(overrides, r.query)
	status := item.Status

	verdict := Sanitize(status)
	if !verdict.OK {
		return RenderResult{Title: verdict.Reason, Description: verdict.Reason}
	}

	var title, description string

	// 活动标签：转发且被转发广播可用时带上原作者名，否则退化为通用文案。
	resharedVerdict := Sanitize(status.ResharedStatus)
	var activityInDesc, activityInTitle string
	if status.Activity == activityReshare {
		if resharedVerdict.OK {
			reshared := status.ResharedStatus
			activityInDesc = "reshared "
			if opts.Readable {
				activityInDesc += `<a href="` + reshared.Author.URL + `" target="_blank" rel="noopener noreferrer">`
			}
			if opts.AuthorNameBold {
				activityInDesc += "<strong>"
			}
			activityInDesc += reshared.Author.Name
			if opts.AuthorNameBold {
				activityInDesc += "</strong>"
			}
			if opts.Readable {
				activityInDesc += "</a>"
			}
			activityInDesc += "'s post"
			activityInTitle = "reshared " + reshared.Author.Name + "'s post"
		} else {
			activityInDesc = "reshared a post"
			activityInTitle = "reshared a post"
		}
	} else {
		activityInDesc = status.Activity
		activityInTitle = status.Activity
	}

	if opts.ShowAuthorInDesc {
		var author string
		if opts.Readable {
			author += `<a href="` + status.Author.URL + `" target="_blank" rel="noopener noreferrer">`
		}
		if opts.ShowAuthorAvatarInDesc {
			author += fmt.Sprintf(`<img width="%d" height="%d" src="%s" `, opts.SizeOfAuthorAvatar, opts.SizeOfAuthorAvatar, status.Author.Avatar)
			if opts.Readable {
				author += `hspace="8" vspace="8" align="left"`
			}
			author += ` />`
		}
		if opts.AuthorNameBold {
			author += "<strong>"
		}
		author += status.Author.Name
		if opts.AuthorNameBold {
			author += "</strong>"
		}
		if opts.Readable {
			author += "</a>"
		}
		author += "&ensp;"
		description += author + activityInDesc
		if opts.ShowColonInDesc {
			description += ": "
		}
	}

	if opts.ShowAuthorInTitle {
		title += status.Author.Name + " "
	}
	title += activityInTitle + ": "

	if opts.ShowTimestampInDescription {
		description += "<br><small>" + status.CreateTime + "</small><br>"
	}

	description += substituteEntities(*status.Text, status.Entities)

	// 卡片标题进标题行：带评分的条目用书名号，其余用引号。
	if status.Card != nil {
		if status.Card.Rating != nil {
			title += "《" + status.Card.Title + "》"
		} else {
			title += "「" + status.Card.Title + "」"
		}
	}

	if status.Activity != activityReshare || opts.ShowRetweetTextInTitle {
		title += strings.Replace(*status.Text, "\n", "", 1)
	}

	if len(status.Images) > 0 {
		description += lineBreak(opts.Readable)

		// 部分阅读器会提取正文中所有 <img> 作为内含图片。把配图以零尺寸
		// 隐藏标记收集起来，最终统一置于顶层正文最前，避免头像被当作配图、
		// 也避免全尺寸重复嵌入。
		var picsPrefix string
		for _, image := range status.Images {
			if image.Large == nil || image.Large.URL == "" {
				continue
			}
			picsPrefix += `<img width="0" height="0" hidden="true" src="` + image.Large.URL + `">`
		}
		*picsPrefixes = append(*picsPrefixes, picsPrefix)

		for _, image := range status.Images {
			if image.Large == nil || image.Large.URL == "" {
				description += "[image unavailable]"
				continue
			}
			if opts.AddLinkForPics {
				description += `<a href="` + image.Large.URL + `" target="_blank" rel="noopener noreferrer">`
			}
			if !opts.Readable {
				description += "<br>"
			}
			var style string
			description += "<img "
			if opts.WidthOfPics >= 0 {
				description += fmt.Sprintf(` width="%d"`, opts.WidthOfPics)
				style += fmt.Sprintf("width: %dpx;", opts.WidthOfPics)
			}
			if opts.HeightOfPics >= 0 {
				description += fmt.Sprintf(`height="%d" `, opts.HeightOfPics)
				style += fmt.Sprintf("height: %dpx;", opts.HeightOfPics)
			}
			description += ` style="` + style + `" `
			if opts.Readable {
				description += `vspace="8" hspace="4" `
			}
			description += ` src="` + image.Large.URL + `">`
			if opts.AddLinkForPics {
				description += "</a>"
			}
		}
	}

	if status.VideoInfo != nil {
		description += lineBreak(opts.Readable)
		if status.VideoInfo.VideoURL != "" {
			description += `<video src="` + status.VideoInfo.VideoURL + `"`
			if status.VideoInfo.CoverURL != "" {
				description += ` poster="` + status.VideoInfo.CoverURL + `"`
			}
			description += "></video>"
		}
	}

	// 父广播（被回复/引用的那条），与转发是两种独立关系。
	if status.ParentStatus != nil {
		marker := " Fw: "
		if opts.ShowEmojiForRetweet {
			marker = " 🔁 "
		}
		description += marker
		if opts.ShowRetweetTextInTitle {
			title += marker
		}

		parentVerdict := Sanitize(status.ParentStatus)
		if parentVerdict.OK {
			parent := status.ParentStatus
			var author string
			if opts.Readable {
				author += `<a href="` + parent.Author.URL + `">`
			}
			if opts.AuthorNameBold {
				author += "<strong>"
			}
			author += parent.Author.Name
			if opts.AuthorNameBold {
				author += "</strong>"
			}
			if opts.Readable {
				author += "</a>"
			}
			author += ":&ensp;"
			description += author + *parent.Text
			if opts.ShowRetweetTextInTitle {
				title += parent.Author.Name + ": " + *parent.Text
			}
		} else {
			description += parentVerdict.Reason
			if opts.ShowRetweetTextInTitle {
				title += parentVerdict.Reason
			}
		}
	}

	if status.Card != nil {
		card := status.Card
		var imageURL string
		if card.Image != nil {
			switch {
			case card.Image.Large != nil && card.Image.Large.URL != "":
				imageURL = card.Image.Large.URL
			case card.Image.Normal != nil:
				imageURL = card.Image.Normal.URL
			}
		}

		description += blockQuote(opts.Readable)
		if imageURL != "" {
			if opts.Readable {
				description += `<img src="` + imageURL + `" vspace="0" hspace="12" align="left" height="75" style="height: 75px;" />`
			} else {
				description += `<img src="` + imageURL + `" />`
			}
		}

		// 残缺卡片逐字段兜底，整块永不静默丢弃。
		if card.Title == "" {
			card.Title = "[empty]"
		}
		if card.Subtitle == "" {
			card.Subtitle = "[empty]"
		}
		if card.URL == "" {
			card.URL = fallbackDomain
		}

		description += `<a href="` + card.URL + `" target="_blank" rel="noopener noreferrer"><strong>` + card.Title + `</strong><br><small>` + card.Subtitle + `</small>`
		if card.Rating != nil {
			description += `<br><small>rating: ` + strconv.FormatFloat(card.Rating.Value, 'f', -1, 64) + `</small>`
		}
		description += "</a>"
		if opts.Readable {
			description += lineBreak(true) + "</blockquote>"
		}
	}

	if status.VideoCard != nil {
		videoCard := status.VideoCard
		description += blockQuote(opts.Readable)

		var cover, src string
		if videoCard.VideoInfo != nil {
			cover = videoCard.VideoInfo.CoverURL
			src = videoCard.VideoInfo.VideoURL
		}
		if videoCard.URL == "" {
			videoCard.URL = fallbackDomain
		}

		if src != "" {
			description += `<video src="` + src + `"`
			if cover != "" {
				description += ` poster="` + cover + `"`
			}
			description += "></video>"
		}
		description += "<br>"
		if videoCard.Title != "" {
			description += `<a href="` + videoCard.URL + `">` + videoCard.Title + `</a>`
		}
		if opts.Readable {
			description += "</blockquote>"
		}
	}

	// 被转发广播：递归复用本算法，固定覆盖层显示作者并带冒号、
	// 不显示头像与评论；累加器原样下传。
	if status.ResharedStatus != nil {
		description += blockQuote(opts.Readable)
		if opts.ShowRetweetTextInTitle {
			title += " | "
		}

		if resharedVerdict.OK {
			reshared := status.ResharedStatus
			nested := r.renderStatus(
				model.TimelineItem{Status: reshared},
				&Overrides{
					ShowAuthorInDesc:       boolPtr(true),
					ShowAuthorAvatarInDesc: boolPtr(false),
					ShowComments:           boolPtr(false),
					ShowColonInDesc:        boolPtr(true),
				},
				picsPrefixes,
			)
			description += nested.Description
			title += *reshared.Text

			if opts.Readable {
				resharedURL := rewriteAppURI(reshared.URI)
				description += `<br><small>original post: <a href="` + resharedURL + `" target="_blank" rel="noopener noreferrer">` + resharedURL + `</a></small>` + lineBreak(true) + "</blockquote>"
			}
		} else {
			description += resharedVerdict.Reason
			title += resharedVerdict.Reason
		}
	}

	if opts.ShowComments {
		if len(item.Comments) > 0 {
			description += "<hr>"
		}
		for _, comment := range item.Comments {
			author := comment.Author
			if author == nil {
				author = &model.Author{URL: fallbackAuthorURL, Name: fallbackAuthorName}
			}
			description += "<br>" + r.comments.Sanitize(comment.Text) + ` - <a href="` + author.URL + `" target="_blank" rel="noopener noreferrer">` + author.Name + `</a>`
		}
	}

	// 隐藏图片前缀只在顶层拼接一次：递归调用的覆盖层固定关闭了头像显示。
	if opts.ShowAuthorInDesc && opts.ShowAuthorAvatarInDesc {
		description = strings.Join(*picsPrefixes, "") + description
	}
	description = strings.ReplaceAll(strings.TrimSpace(description), "\n", "<br>")

	return RenderResult{Title: title, Description: description}
}

// substituteEntities 按字节偏移把标记区间替换为超链接。
// 前置条件：区间已按 start 排序且互不重叠。越界或回退的区间直接跳过,
// 不做补救（区间重叠时的输出不做保证）。entities 为空时原样返回。
func substituteEntities(text string, entities []model.Entity) string {
	if len(entities) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, entity := range entities {
		if entity.Start < last || entity.Start > entity.End || entity.End > len(text) {
			continue
		}
		b.WriteString(text[last:entity.Start])
		b.WriteString(`<a href="` + rewriteAppURI(entity.URI) + `" target="_blank" rel="noopener noreferrer">` + entity.Title + `</a>`)
		last = entity.End
	}
	b.WriteString(text[last:])
	return b.String()
}

// rewriteAppURI 把豆瓣 App 内部链接改写为网页跳转链接。
func rewriteAppURI(uri string) string {
	return strings.Replace(uri, appURIScheme, dispatchPrefix, 1)
}

// lineBreak 返回一个换行分隔；可读模式下附带浮动清除。
func lineBreak(readable bool) string {
	if readable {
		return `<br clear="both" /><div style="clear: both"></div>`
	}
	return "<br>"
}

// blockQuote 返回嵌入块的起始分隔；可读模式下是带样式的引用块。
// 对应的 </blockquote> 由各嵌入块自行补齐。
func blockQuote(readable bool) string {
	if readable {
		return lineBreak(true) + `<blockquote style="background: #80808010;border-top:1px solid #80808030;border-bottom:1px solid #80808030;margin:0;padding:5px 20px;">`
	}
	return "<br>"
}

func boolPtr(v bool) *bool { return &v }
