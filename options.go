package reachability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-reachability/config"
	internal "github.com/dep2p/go-reachability/internal/core/reachability"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 基础配置，nil 时使用默认配置
	config *config.Config

	// 配置文件
	configFile string

	// 是否读取 REACH_* 环境变量
	env bool

	// 是否按 Log 配置重建全局日志
	logging bool

	// 逐项覆盖，在文件与环境变量之后应用
	overrides []func(*config.Config)

	// 外部指标注册器
	registerer prometheus.Registerer

	// 传给内部检测器的选项
	checkerOpts []internal.Option
}

// buildConfig 按 默认 → 文件 → 环境变量 → 选项 的顺序生成配置
func (o *options) buildConfig() (*config.Config, error) {
	cfg := o.config
	if cfg == nil {
		cfg = config.NewConfig()
	}

	if o.configFile != "" {
		loaded, err := config.LoadFile(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if o.env {
		if err := config.ApplyEnv(cfg); err != nil {
			return nil, fmt.Errorf("apply env: %w", err)
		}
	}

	for _, fn := range o.overrides {
		fn(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func override(fn func(*config.Config)) Option {
	return func(o *options) error {
		o.overrides = append(o.overrides, fn)
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              配置来源
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用完整配置作为基础
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("nil config")
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		o.configFile = path
		return nil
	}
}

// WithEnv 读取 REACH_* 环境变量
func WithEnv() Option {
	return func(o *options) error {
		o.env = true
		return nil
	}
}

// WithLogging 启动时按 Log 配置重建全局日志
func WithLogging() Option {
	return func(o *options) error {
		o.logging = true
		return nil
	}
}

// WithLogLevel 设置日志级别描述，例如 "core/netmon=debug,info"
//
// 同时启用 WithLogging。
func WithLogLevel(level string) Option {
	return func(o *options) error {
		o.logging = true
		return override(func(c *config.Config) {
			c.Log.Level = level
		})(o)
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              探测
// ════════════════════════════════════════════════════════════════════════════

// WithEnabled 开关检测，关闭后所有主机视为可达
func WithEnabled(enable bool) Option {
	return override(func(c *config.Config) {
		c.Reachability.Enabled = enable
	})
}

// WithConnectTimeout 设置 TCP 连接超时
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("connect timeout must be positive")
		}
		return override(func(c *config.Config) {
			c.Reachability.ConnectTimeout = config.Duration(d)
		})(o)
	}
}

// WithHTTPTimeout 设置 HTTP 探测超时
func WithHTTPTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be positive")
		}
		return override(func(c *config.Config) {
			c.Reachability.HTTPTimeout = config.Duration(d)
		})(o)
	}
}

// WithProxy 是否使用环境变量中的代理
func WithProxy(enable bool) Option {
	return override(func(c *config.Config) {
		c.Reachability.UseProxy = enable
	})
}

// WithUserAgent 设置 HTTP 探测的 User-Agent
func WithUserAgent(ua string) Option {
	return override(func(c *config.Config) {
		c.Reachability.UserAgent = ua
	})
}

// WithResultCache 缓存探测结果，ttl 为 0 关闭缓存
func WithResultCache(ttl time.Duration, size int) Option {
	return override(func(c *config.Config) {
		c.Reachability.ResultCacheTTL = config.Duration(ttl)
		c.Reachability.ResultCacheSize = size
	})
}

// WithDialer 使用自定义拨号器
func WithDialer(d internal.ContextDialer) Option {
	return func(o *options) error {
		o.checkerOpts = append(o.checkerOpts, internal.WithDialer(d))
		return nil
	}
}

// WithResolver 使用自定义 DNS 解析器（用于诊断）
func WithResolver(r internal.Resolver) Option {
	return func(o *options) error {
		o.checkerOpts = append(o.checkerOpts, internal.WithResolver(r))
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              网络变化监听
// ════════════════════════════════════════════════════════════════════════════

// WithChangeDebounce 设置网络变化回调的合并窗口
func WithChangeDebounce(d time.Duration) Option {
	return override(func(c *config.Config) {
		c.Reachability.ChangeDebounce = config.Duration(d)
	})
}

// WithWatcher 开关系统网络变化监听
func WithWatcher(enable bool) Option {
	return override(func(c *config.Config) {
		c.Watcher.Enabled = enable
	})
}

// WithPollInterval 强制使用轮询监听并设置间隔
func WithPollInterval(d time.Duration) Option {
	return override(func(c *config.Config) {
		c.Watcher.PreferNative = false
		c.Watcher.PollInterval = config.Duration(d)
	})
}

// ════════════════════════════════════════════════════════════════════════════
//                              指标
// ════════════════════════════════════════════════════════════════════════════

// WithMetrics 开关 Prometheus 指标
func WithMetrics(enable bool) Option {
	return override(func(c *config.Config) {
		c.Metrics.Enabled = enable
	})
}

// WithRegisterer 把指标注册到外部 Registerer，而不是服务私有的 Registry
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}
