// Package handler 实现 HTTP 路由与各端点处理器。
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/xandery-geek/RSSHub/internal/model"
)

// writeJSON 以统一方式写出 JSON 响应。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponseBody 是 API 错误响应的统一格式。
type errorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeError 以统一错误格式写出 HTTP 错误响应。
func writeError(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, errorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}
