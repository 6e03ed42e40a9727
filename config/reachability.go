package config

import (
	"fmt"
	"time"
)

// ReachabilityConfig 可达性检测配置
type ReachabilityConfig struct {
	// Enabled 是否启用检测
	// 关闭时所有主机视为可达，监控器不订阅系统事件
	// 默认值: true
	Enabled bool `json:"enabled"`

	// ConnectTimeout TCP 连接超时
	// 默认值: 10s
	ConnectTimeout Duration `json:"connect_timeout"`

	// HTTPTimeout HTTP 探测整体超时
	// 默认值: 30s
	HTTPTimeout Duration `json:"http_timeout"`

	// UseProxy 是否使用环境变量中的代理（HTTP_PROXY / ALL_PROXY 等）
	// 默认值: true
	UseProxy bool `json:"use_proxy"`

	// UserAgent HTTP 探测使用的 User-Agent
	// 默认值: "go-reachability"
	UserAgent string `json:"user_agent"`

	// ResultCacheTTL 结果缓存时间，0 表示不缓存
	// 默认值: 0
	ResultCacheTTL Duration `json:"result_cache_ttl"`

	// ResultCacheSize 结果缓存条目上限
	// 默认值: 256
	ResultCacheSize int `json:"result_cache_size"`

	// ChangeDebounce 合并网络变化回调的时间窗口，0 表示每个事件都回调
	// 默认值: 500ms
	ChangeDebounce Duration `json:"change_debounce"`

	// DiagnoseConcurrency 诊断时并发拨号数
	// 默认值: 4
	DiagnoseConcurrency int `json:"diagnose_concurrency"`
}

// DefaultReachabilityConfig 返回默认的可达性检测配置
func DefaultReachabilityConfig() ReachabilityConfig {
	return ReachabilityConfig{
		Enabled:             true,
		ConnectTimeout:      Duration(10 * time.Second),
		HTTPTimeout:         Duration(30 * time.Second),
		UseProxy:            true,
		UserAgent:           "go-reachability",
		ResultCacheSize:     256,
		ChangeDebounce:      Duration(500 * time.Millisecond),
		DiagnoseConcurrency: 4,
	}
}

// Validate 验证可达性检测配置的有效性
func (c *ReachabilityConfig) Validate() error {
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("reachability: connect_timeout must be > 0")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("reachability: http_timeout must be > 0")
	}
	if c.ResultCacheTTL < 0 {
		return fmt.Errorf("reachability: result_cache_ttl must be >= 0")
	}
	if c.ResultCacheTTL > 0 && c.ResultCacheSize < 1 {
		return fmt.Errorf("reachability: result_cache_size must be >= 1 when cache is enabled")
	}
	if c.ChangeDebounce < 0 {
		return fmt.Errorf("reachability: change_debounce must be >= 0")
	}
	if c.DiagnoseConcurrency < 1 {
		return fmt.Errorf("reachability: diagnose_concurrency must be >= 1")
	}
	return nil
}
