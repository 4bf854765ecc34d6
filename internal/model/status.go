// Package model 定义领域模型。
package model

// Author 表示广播的作者身份。
// 上游 API 中该对象整体或任意字段都可能缺失，
// 由 Sanitizer 负责补全默认值。
type Author struct {
	URL    string `json:"url"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Entity 表示正文中被标记为超链接的一段文本。
// Start / End 是指向 Text 的字节偏移量，约定已排序且互不重叠。
type Entity struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// ImageVariant 表示某一尺寸规格的图片。
type ImageVariant struct {
	URL string `json:"url"`
}

// Image 表示广播配图。只有 large 规格可用时才会被嵌入。
type Image struct {
	Large *ImageVariant `json:"large"`
}

// VideoInfo 表示内嵌视频的封面与播放地址。
type VideoInfo struct {
	CoverURL string `json:"cover_url"`
	VideoURL string `json:"video_url"`
}

// Rating 表示卡片附带的评分（书影音条目）。
type Rating struct {
	Value float64 `json:"value"`
}

// CardImage 表示卡片配图的两种规格，优先使用 large。
type CardImage struct {
	Large  *ImageVariant `json:"large"`
	Normal *ImageVariant `json:"normal"`
}

// Card 表示富链接预览卡片（书、影、音等条目的元信息）。
type Card struct {
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle"`
	URL      string     `json:"url"`
	Rating   *Rating    `json:"rating"`
	Image    *CardImage `json:"image"`
}

// VideoCard 表示视频卡片附件。
type VideoCard struct {
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	VideoInfo *VideoInfo `json:"video_info"`
}

// Status 表示一条广播（时间线条目）。
// 这是不可信的外部输入：任何字段都可能缺失、被删除或不可见。
// Text 使用指针以区分 JSON null / 字段缺失（内容不可访问）与空字符串（合法的空正文）。
// ResharedStatus 与 ParentStatus 是同构的自引用关系，渲染时逐层独立消毒。
type Status struct {
	ID             string     `json:"id"`
	Deleted        bool       `json:"deleted"`
	Hidden         bool       `json:"hidden"`
	Msg            string     `json:"msg"`
	Text           *string    `json:"text"`
	URI            string     `json:"uri"`
	SharingURL     string     `json:"sharing_url"`
	CreateTime     string     `json:"create_time"`
	Author         *Author    `json:"author"`
	Entities       []Entity   `json:"entities"`
	Images         []Image    `json:"images"`
	VideoInfo      *VideoInfo `json:"video_info"`
	Card           *Card      `json:"card"`
	VideoCard      *VideoCard `json:"video_card"`
	ResharedStatus *Status    `json:"reshared_status"`
	ParentStatus   *Status    `json:"parent_status"`
	Activity       string     `json:"activity"`
}

// Comment 表示广播下的一条评论。
type Comment struct {
	Text   string  `json:"text"`
	Author *Author `json:"author"`
}

// TimelineItem 表示时间线接口返回的一个信封：广播本体加评论列表。
// Deleted 是信封级别的删除标记，与 Status.Deleted 相互独立。
type TimelineItem struct {
	Status   *Status   `json:"status"`
	Comments []Comment `json:"comments"`
	Deleted  bool      `json:"deleted"`
}
