package reachability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-reachability/config"
	"github.com/dep2p/go-reachability/pkg/interfaces"
)

// ============================================================================
// Fx 模块测试
// ============================================================================

func quietConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Watcher.Enabled = false
	cfg.Reachability.UseProxy = false
	return cfg
}

// TestModule_Provides 测试模块提供检测器
func TestModule_Provides(t *testing.T) {
	var r interfaces.Reachability

	app := fxtest.New(t,
		fx.Supply(quietConfig()),
		Module,
		fx.Populate(&r),
	)
	defer app.RequireStart().RequireStop()

	require.NotNil(t, r)
	assert.IsType(t, &Checker{}, r)
	assert.True(t, r.IsReachable(context.Background(), mustHost(t, "tcp://"+listenTCP(t))))
}

// TestModule_Disabled 测试关闭检测时提供 Disabled
func TestModule_Disabled(t *testing.T) {
	cfg := quietConfig()
	cfg.Reachability.Enabled = false

	var r interfaces.Reachability
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module,
		fx.Populate(&r),
	)
	defer app.RequireStart().RequireStop()

	assert.IsType(t, Disabled{}, r)
	assert.True(t, r.IsReachable(context.Background(), mustHost(t, "tcp://"+closedAddr(t))))
}

// TestModule_Registerer 测试指标注册到外部 Registerer
func TestModule_Registerer(t *testing.T) {
	reg := prometheus.NewRegistry()

	var m *Metrics
	app := fxtest.New(t,
		fx.Supply(quietConfig()),
		fx.Supply(fx.Annotate(reg, fx.As(new(prometheus.Registerer)))),
		Module,
		fx.Populate(&m),
	)
	defer app.RequireStart().RequireStop()

	require.NotNil(t, m)
	m.ObserveProbe(methodTCP, true, 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["reachability_probes_total"])
}

// TestModule_DefaultConfig 测试无统一配置时使用默认配置
func TestModule_DefaultConfig(t *testing.T) {
	var cfg *Config
	app := fxtest.New(t,
		Module,
		fx.Populate(&cfg),
	)
	defer app.RequireStart().RequireStop()

	assert.Equal(t, DefaultConfig().ConnectTimeout, cfg.ConnectTimeout)
}

// TestDisabled 测试 Disabled 实现
func TestDisabled(t *testing.T) {
	d := NewDisabled()
	host := mustHost(t, "https://example.com")

	assert.True(t, d.IsReachable(context.Background(), host))
	assert.NoError(t, d.Check(context.Background(), host))

	diag, err := d.Diagnose(context.Background(), host)
	require.NoError(t, err)
	assert.True(t, diag.Reachable)
	assert.Equal(t, host, diag.Host)

	m := d.Monitor(host, interfaces.CallbackFunc(func() {}))
	assert.NoError(t, m.Start(context.Background()))
	assert.NoError(t, m.Stop())
}
