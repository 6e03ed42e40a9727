package reachability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-reachability/config"
	"github.com/dep2p/go-reachability/internal/core/netmon"
	"github.com/dep2p/go-reachability/pkg/interfaces"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// Params 模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config       `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 是 reachability 的 Fx 模块
var Module = fx.Module("reachability",
	fx.Provide(
		ProvideConfig,
		ProvideMetrics,
		ProvideNotifier,
		ProvideReachability,
	),
)

// ProvideConfig 从统一配置提供模块配置
func ProvideConfig(p Params) *Config {
	return ConfigFromUnified(p.UnifiedCfg)
}

// ProvideMetrics 提供指标，统一配置关闭指标时返回 nil
func ProvideMetrics(p Params) (*Metrics, error) {
	if p.UnifiedCfg != nil && !p.UnifiedCfg.Metrics.Enabled {
		return nil, nil
	}
	return NewMetrics(p.Registerer)
}

// ProvideNotifier 提供共享的 Notifier，应用停止时关闭
func ProvideNotifier(lc fx.Lifecycle, cfg *Config) *netmon.Notifier {
	n := netmon.NewNotifier(cfg.Watcher)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return n.Close()
		},
	})
	return n
}

// reachabilityInput ProvideReachability 依赖
type reachabilityInput struct {
	fx.In

	LC       fx.Lifecycle
	Config   *Config
	Notifier *netmon.Notifier
	Metrics  *Metrics `optional:"true"`
	Options  []Option `group:"reachability_options"`
}

// ProvideReachability 提供可达性检测，配置关闭时提供 Disabled
func ProvideReachability(in reachabilityInput) (interfaces.Reachability, error) {
	if !in.Config.Enabled {
		logger.Info("可达性检测已关闭")
		return NewDisabled(), nil
	}

	opts := append([]Option{WithMetrics(in.Metrics)}, in.Options...)
	c, err := NewChecker(in.Config, in.Notifier, opts...)
	if err != nil {
		return nil, err
	}

	in.LC.Append(fx.Hook{
		OnStart: c.Start,
		OnStop: func(_ context.Context) error {
			return c.Stop()
		},
	})
	return c, nil
}
