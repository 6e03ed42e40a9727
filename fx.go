package reachability

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-reachability/config"
	internal "github.com/dep2p/go-reachability/internal/core/reachability"
	"github.com/dep2p/go-reachability/pkg/lib/log"
)

var fxLogger = log.Logger("reachability/fx")

// buildFxApp 构建 Fx 应用
//
// 组装顺序：
//  1. 配置注入（统一配置、指标注册器、检测器选项）
//  2. reachability 模块（配置、指标、Notifier、检测器）
//  3. 把检测器回填到 Service
func buildFxApp(cfg *config.Config, o *options, svc *Service) *fx.App {
	modules := []fx.Option{
		fx.Supply(cfg),
		internal.Module,
		fx.Populate(&svc.reach),
	}

	if svc.registerer != nil {
		modules = append(modules,
			fx.Supply(fx.Annotate(svc.registerer, fx.As(new(prometheus.Registerer)))),
		)
	}

	for _, opt := range o.checkerOpts {
		modules = append(modules,
			fx.Provide(fx.Annotate(
				func() internal.Option { return opt },
				fx.ResultTags(`group:"reachability_options"`),
			)),
		)
	}

	modules = append(modules, fx.WithLogger(newFxEventLogger))

	return fx.New(modules...)
}

// newFxEventLogger 调试级别下输出 Fx 事件，否则静默
func newFxEventLogger() fxevent.Logger {
	if fxLogger.Enabled(log.LevelDebug) {
		if z, err := zap.NewDevelopment(); err == nil {
			return &fxevent.ZapLogger{Logger: z}
		}
	}
	return &fxevent.ZapLogger{Logger: zap.NewNop()}
}

// ConfigureLogging 按日志配置重建全局日志
func ConfigureLogging(cfg config.LogConfig) {
	opts := log.ParseOptions(cfg.Level, cfg.Format)
	opts.Output = os.Stderr
	log.Setup(opts)
}
