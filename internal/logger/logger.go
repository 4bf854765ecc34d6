// Package logger 提供 slog 日志的初始化。
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Setup 生成日志器。format 为 "text" 时输出带颜色的文本日志
// （本地开发用），其余情况输出 JSON 结构化日志。
func Setup(w io.Writer, format string) *slog.Logger {
	if format == "text" {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: time.DateTime,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// SetupDefault 把 Setup 的结果设为全局日志器。
// w 为 nil 时输出到标准输出。
func SetupDefault(w io.Writer, format string) {
	if w == nil {
		w = os.Stdout
	}
	slog.SetDefault(Setup(w, format))
}
