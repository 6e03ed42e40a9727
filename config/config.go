// Package config 提供统一的配置管理
//
// Config 是 go-reachability 的统一配置入口，可从 JSON 文件加载，
// 再由 REACH_* 环境变量覆盖。各内部模块通过 ConfigFromUnified
// 从这里取得自己的配置。
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Config 统一配置
type Config struct {
	// Reachability 可达性检测配置
	Reachability ReachabilityConfig `json:"reachability"`

	// Watcher 系统网络变化监听配置
	Watcher WatcherConfig `json:"watcher"`

	// Log 日志配置
	Log LogConfig `json:"log"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 返回默认配置
func NewConfig() *Config {
	return &Config{
		Reachability: DefaultReachabilityConfig(),
		Watcher:      DefaultWatcherConfig(),
		Log:          DefaultLogConfig(),
		Metrics:      DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil config")
	}
	if err := c.Reachability.Validate(); err != nil {
		return err
	}
	if err := c.Watcher.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return c.Metrics.Validate()
}

// ============================================================================
//                              加载
// ============================================================================

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保留默认值。
//
// 示例 JSON:
//
//	{
//	  "reachability": {"connect_timeout": "5s", "use_proxy": false},
//	  "watcher": {"poll_interval": "10s"}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从文件加载配置并验证
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
