// Package security 提供出站请求防护与不可信内容的消毒能力。
package security

import "github.com/microcosm-cc/bluemonday"

// CommentSanitizer 清洗广播评论中的不可信文本。
// 评论正文以纯文本形式嵌入输出标记，因此采用剥离全部标签的策略：
// 普通文本原样通过，任何内嵌 HTML（script、img、事件属性等）被移除。
// 线程安全，幂等。
type CommentSanitizer struct {
	policy *bluemonday.Policy
}

// NewCommentSanitizer 生成 CommentSanitizer 实例。
func NewCommentSanitizer() *CommentSanitizer {
	return &CommentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize 返回剥离标签后的安全文本。
func (s *CommentSanitizer) Sanitize(text string) string {
	return s.policy.Sanitize(text)
}
