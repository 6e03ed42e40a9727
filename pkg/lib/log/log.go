// Package log 提供 go-reachability 统一日志接口
//
// 基于 Go 标准库 log/slog 封装，按组件输出结构化日志。
//
// 环境变量:
//
//	# 所有组件 info，core/netmon 组件 debug
//	REACH_LOG_LEVEL=core/netmon=debug,info
//
//	# JSON 格式输出
//	REACH_LOG_FORMAT=json
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// 日志级别常量（从 slog 导出，方便使用）
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format 日志输出格式
type Format int

const (
	// FormatText 文本格式（默认）
	FormatText Format = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// levelConfig 级别配置
type levelConfig struct {
	def        slog.Level
	components map[string]slog.Level
}

func (c *levelConfig) levelFor(component string) slog.Level {
	if l, ok := c.components[component]; ok {
		return l
	}
	return c.def
}

var levels atomic.Pointer[levelConfig]

// ============================================================================
//                              配置
// ============================================================================

// Options 日志配置
type Options struct {
	// Output 输出目标，默认 os.Stderr
	Output io.Writer

	// Level 默认级别
	Level slog.Level

	// ComponentLevels 按组件覆盖的级别
	ComponentLevels map[string]slog.Level

	// Format 输出格式
	Format Format
}

// Setup 按配置重建默认 logger
func Setup(opts Options) {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	cfg := &levelConfig{def: opts.Level, components: opts.ComponentLevels}
	if cfg.components == nil {
		cfg.components = map[string]slog.Level{}
	}

	// handler 放行最低级别，由 LazyLogger 按组件过滤
	lowest := cfg.def
	for _, l := range cfg.components {
		if l < lowest {
			lowest = l
		}
	}
	hopts := &slog.HandlerOptions{Level: lowest}

	var handler slog.Handler
	if opts.Format == FormatJSON {
		handler = slog.NewJSONHandler(opts.Output, hopts)
	} else {
		handler = slog.NewTextHandler(opts.Output, hopts)
	}

	levels.Store(cfg)
	slog.SetDefault(slog.New(handler))
}

// SetOutput 设置日志输出目标，保留当前级别配置
func SetOutput(w io.Writer) {
	cfg := levels.Load()
	Setup(Options{Output: w, Level: cfg.def, ComponentLevels: cfg.components})
}

// SetLevel 设置默认日志级别
func SetLevel(level slog.Level) {
	Setup(Options{Level: level})
}

// OptionsFromEnv 从 REACH_LOG_LEVEL / REACH_LOG_FORMAT 解析配置
func OptionsFromEnv() Options {
	return ParseOptions(os.Getenv("REACH_LOG_LEVEL"), os.Getenv("REACH_LOG_FORMAT"))
}

// ParseOptions 解析级别描述与格式名
//
// 级别描述形如 "core/netmon=debug,info"：带组件名的项覆盖该组件，
// 不带组件名的项设置默认级别。无法识别的项被忽略。
func ParseOptions(level, format string) Options {
	opts := Options{
		Level:           slog.LevelInfo,
		ComponentLevels: map[string]slog.Level{},
	}

	for _, part := range strings.Split(level, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if comp, name, ok := strings.Cut(part, "="); ok {
			if l, ok := ParseLevel(name); ok {
				opts.ComponentLevels[strings.TrimSpace(comp)] = l
			}
			continue
		}
		if l, ok := ParseLevel(part); ok {
			opts.Level = l
		}
	}

	if strings.EqualFold(strings.TrimSpace(format), "json") {
		opts.Format = FormatJSON
	}
	return opts
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 每次日志调用时都从 slog.Default() 获取最新的 handler，
// 支持在运行时切换日志输出目标。
//
//	var logger = log.Logger("core/netmon")
//	logger.Info("网络变化", "type", ev.Type)
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func (l *LazyLogger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if level < levels.Load().levelFor(l.component) {
		return
	}
	slog.Default().With("component", l.component).Log(ctx, level, msg, args...)
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

// InfoContext 带 context 的 Info 日志
func (l *LazyLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelInfo, msg, args...)
}

// Enabled 组件是否输出该级别
func (l *LazyLogger) Enabled(level slog.Level) bool {
	return level >= levels.Load().levelFor(l.component)
}

func init() {
	levels.Store(&levelConfig{def: slog.LevelInfo, components: map[string]slog.Level{}})
}
