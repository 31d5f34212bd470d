// Package log 提供 smartnode 统一日志接口
//
// 基于 Go 标准库 log/slog 封装。组件通过 Logger("core/node") 获取懒加载 logger，
// 每条记录都带 component 属性，级别按组件从环境变量解析：
//
//   - SMARTNODE_LOG_LEVEL: 组件=级别,组件=级别,默认级别
//     示例: core/simulator=debug,core/node=warn,info
//   - SMARTNODE_LOG_FORMAT: text（默认）或 json
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

// 日志级别常量（从 slog 导出，方便使用）
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	outputMu sync.RWMutex
	output   io.Writer = os.Stderr
	base     *slog.Logger
)

// dynamicWriter 每次写入时查找当前输出目标
type dynamicWriter struct{}

func (dynamicWriter) Write(p []byte) (int, error) {
	outputMu.RLock()
	w := output
	outputMu.RUnlock()
	return w.Write(p)
}

// SetOutput 设置日志输出目标
//
// 已创建的 LazyLogger 立即生效。
func SetOutput(w io.Writer) {
	outputMu.Lock()
	output = w
	outputMu.Unlock()
}

// Discard 丢弃所有日志输出（测试用）
func Discard() {
	SetOutput(io.Discard)
}

// SetLevel 覆盖默认级别（组件级配置仍然优先）
func SetLevel(level slog.Level) {
	cfg := currentConfig()
	cfg.setDefault(level)
}

// newBase 创建底层 slog.Logger
func newBase(format Format) *slog.Logger {
	opts := &slog.HandlerOptions{
		// 级别过滤在 LazyLogger 中完成
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(dynamicWriter{}, opts))
	}
	return slog.New(slog.NewTextHandler(dynamicWriter{}, opts))
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 每次日志调用时才检查组件级别并绑定输出，
// 支持在运行时切换输出目标与级别。
//
// 使用方式：
//
//	var logger = log.Logger("core/node")
//	logger.Info("节点已启动", "node", id)
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

// Component 返回组件名
func (l *LazyLogger) Component() string {
	return l.component
}

// Enabled 检查该组件是否启用指定级别
func (l *LazyLogger) Enabled(level slog.Level) bool {
	return level >= currentConfig().levelFor(l.component)
}

func (l *LazyLogger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	baseLogger().With("component", l.component).Log(ctx, level, msg, args...)
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	l.log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) {
	l.log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	l.log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) {
	l.log(context.Background(), slog.LevelError, msg, args...)
}

// DebugContext 带 context 的 Debug 日志
func (l *LazyLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelDebug, msg, args...)
}

// WarnContext 带 context 的 Warn 日志
func (l *LazyLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, msg, args...)
}

// ============================================================================
//                              工具函数
// ============================================================================

// TruncateID 安全截取 ID 用于日志显示
func TruncateID(id string, maxLen int) string {
	if len(id) <= maxLen {
		return id
	}
	return id[:maxLen]
}

var baseOnce sync.Once

func baseLogger() *slog.Logger {
	baseOnce.Do(func() {
		base = newBase(currentConfig().format)
	})
	return base
}
