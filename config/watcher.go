package config

import (
	"fmt"
	"time"
)

// WatcherConfig 系统网络变化监听配置
type WatcherConfig struct {
	// Enabled 是否监听系统网络变化
	// 默认值: true
	Enabled bool `json:"enabled"`

	// PreferNative 优先使用 netlink / routing socket，否则轮询网络接口
	// 默认值: true
	PreferNative bool `json:"prefer_native"`

	// PollInterval 轮询间隔
	// 默认值: 5s
	PollInterval Duration `json:"poll_interval"`

	// EventBufferSize 事件缓冲区大小
	// 默认值: 16
	EventBufferSize int `json:"event_buffer_size"`
}

// DefaultWatcherConfig 返回默认的监听配置
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		Enabled:         true,
		PreferNative:    true,
		PollInterval:    Duration(5 * time.Second),
		EventBufferSize: 16,
	}
}

// Validate 验证监听配置的有效性
func (c *WatcherConfig) Validate() error {
	if c.PollInterval < Duration(100*time.Millisecond) {
		return fmt.Errorf("watcher: poll_interval must be >= 100ms")
	}
	if c.EventBufferSize < 1 {
		return fmt.Errorf("watcher: event_buffer_size must be >= 1")
	}
	return nil
}
