package config

import (
	"fmt"
	"net"
	"strings"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，格式同 REACH_LOG_LEVEL，例如 "core/netmon=debug,info"
	// 默认值: "info"
	Level string `json:"level"`

	// Format 输出格式: "text" 或 "json"
	// 默认值: "text"
	Format string `json:"format"`
}

// DefaultLogConfig 返回默认的日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// Validate 验证日志配置的有效性
func (c *LogConfig) Validate() error {
	switch strings.ToLower(c.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log: unknown format %q", c.Format)
	}
	return nil
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否注册 Prometheus 指标
	// 默认值: true
	Enabled bool `json:"enabled"`

	// ListenAddr /metrics 监听地址，空表示不对外暴露
	// 默认值: ""
	ListenAddr string `json:"listen_addr"`
}

// DefaultMetricsConfig 返回默认的指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled: true,
	}
}

// Validate 验证指标配置的有效性
func (c *MetricsConfig) Validate() error {
	if c.ListenAddr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return fmt.Errorf("metrics: invalid listen_addr %q: %w", c.ListenAddr, err)
	}
	return nil
}
