package reachability

import (
	"fmt"
	"time"

	"github.com/dep2p/go-reachability/config"
	"github.com/dep2p/go-reachability/internal/core/netmon"
)

// ============================================================================
//                              检测配置
// ============================================================================

// Config 可达性检测配置
type Config struct {
	// Enabled 关闭时使用 Disabled 实现
	// 默认值: true
	Enabled bool

	// ConnectTimeout TCP 连接超时
	// 默认值: 10s
	ConnectTimeout time.Duration

	// HTTPTimeout HTTP 探测整体超时
	// 默认值: 30s
	HTTPTimeout time.Duration

	// UseProxy 使用环境变量中的代理
	// 默认值: true
	UseProxy bool

	// UserAgent HTTP 探测的 User-Agent
	// 默认值: "go-reachability"
	UserAgent string

	// ResultCacheTTL 结果缓存时间，0 不缓存
	// 默认值: 0
	ResultCacheTTL time.Duration

	// ResultCacheSize 结果缓存条目上限
	// 默认值: 256
	ResultCacheSize int

	// ChangeDebounce 网络变化回调合并窗口，0 每个事件都回调
	// 默认值: 500ms
	ChangeDebounce time.Duration

	// DiagnoseConcurrency 诊断并发拨号数
	// 默认值: 4
	DiagnoseConcurrency int

	// Watcher 系统网络监听配置
	Watcher *netmon.WatcherConfig
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Enabled:             true,
		ConnectTimeout:      10 * time.Second,
		HTTPTimeout:         30 * time.Second,
		UseProxy:            true,
		UserAgent:           "go-reachability",
		ResultCacheSize:     256,
		ChangeDebounce:      500 * time.Millisecond,
		DiagnoseConcurrency: 4,
		Watcher:             netmon.DefaultWatcherConfig(),
	}
}

// Validate 验证配置，修正可以修正的值
func (c *Config) Validate() error {
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("reachability: connect timeout must be > 0")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("reachability: http timeout must be > 0")
	}
	if c.ResultCacheTTL < 0 || c.ChangeDebounce < 0 {
		return fmt.Errorf("reachability: negative duration")
	}
	if c.ResultCacheSize <= 0 {
		c.ResultCacheSize = 256
	}
	if c.DiagnoseConcurrency <= 0 {
		c.DiagnoseConcurrency = 4
	}
	if c.Watcher == nil {
		c.Watcher = netmon.DefaultWatcherConfig()
	}
	return c.Watcher.Validate()
}

// ConfigFromUnified 从统一配置创建模块配置
func ConfigFromUnified(cfg *config.Config) *Config {
	if cfg == nil {
		return DefaultConfig()
	}
	r := cfg.Reachability
	return &Config{
		Enabled:             r.Enabled,
		ConnectTimeout:      r.ConnectTimeout.Duration(),
		HTTPTimeout:         r.HTTPTimeout.Duration(),
		UseProxy:            r.UseProxy,
		UserAgent:           r.UserAgent,
		ResultCacheTTL:      r.ResultCacheTTL.Duration(),
		ResultCacheSize:     r.ResultCacheSize,
		ChangeDebounce:      r.ChangeDebounce.Duration(),
		DiagnoseConcurrency: r.DiagnoseConcurrency,
		Watcher: &netmon.WatcherConfig{
			Enabled:         cfg.Watcher.Enabled,
			PreferNative:    cfg.Watcher.PreferNative,
			PollInterval:    cfg.Watcher.PollInterval.Duration(),
			EventBufferSize: cfg.Watcher.EventBufferSize,
		},
	}
}
