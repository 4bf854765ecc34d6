// Package model 定义领域模型。
package model

import "fmt"

// APIError 表示统一的错误响应格式。
// 包含面向调用方的原因分类与处理建议。
type APIError struct {
	Code     string // 错误码
	Message  string // 错误信息
	Category string // 分类: validation, upstream, system
	Action   string // 调用方的处理建议
}

// Error 实现 error 接口。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 预定义错误码
const (
	ErrCodeInvalidUserID = "INVALID_USER_ID"
	ErrCodeUpstreamFetch = "UPSTREAM_FETCH_FAILED"
)

// NewInvalidUserIDError 生成用户 id 非法错误。
// 路由只接受整数型用户 id。
func NewInvalidUserIDError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidUserID,
		Message:  fmt.Sprintf("非法的用户 id: %s", userID),
		Category: "validation",
		Action:   "请使用整数型用户 id，可从头像图片文件名中获取。",
	}
}

// NewUpstreamFetchError 生成上游接口获取失败错误。
func NewUpstreamFetchError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamFetch,
		Message:  fmt.Sprintf("获取用户时间线失败: %s", reason),
		Category: "upstream",
		Action:   "请稍后重试；若持续失败请检查上游接口是否可达。",
	}
}
