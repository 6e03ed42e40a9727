package reachability

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-reachability/config"
	"github.com/dep2p/go-reachability/pkg/interfaces"
	"github.com/dep2p/go-reachability/pkg/lib/log"
)

var logger = log.Logger("reachability")

// ════════════════════════════════════════════════════════════════════════════
//                              Service
// ════════════════════════════════════════════════════════════════════════════

// Service 可达性检测服务
//
// 通过 New 创建、Start 启动，Close 停止所有监控器并释放系统监听。
type Service struct {
	app    *fx.App
	config *config.Config

	reach interfaces.Reachability

	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer

	mu       sync.Mutex
	started  bool
	closed   bool
	monitors map[*trackedMonitor]struct{}
}

var _ interfaces.Reachability = (*Service)(nil)

// New 创建服务（不启动）
func New(opts ...Option) (*Service, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	cfg, err := o.buildConfig()
	if err != nil {
		return nil, err
	}

	if o.logging {
		ConfigureLogging(cfg.Log)
	}

	svc := &Service{
		config:   cfg,
		monitors: make(map[*trackedMonitor]struct{}),
	}

	if cfg.Metrics.Enabled {
		if o.registerer != nil {
			svc.registerer = o.registerer
			svc.gatherer, _ = o.registerer.(prometheus.Gatherer)
		} else {
			reg := prometheus.NewRegistry()
			svc.registerer = reg
			svc.gatherer = reg
		}
	}

	svc.app = buildFxApp(cfg, o, svc)
	if err := svc.app.Err(); err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	return svc, nil
}

// Start 快捷启动函数
//
// 等价于 New 之后调用 Service.Start。
func Start(ctx context.Context, opts ...Option) (*Service, error) {
	svc, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("start service: %w", err)
	}
	return svc, nil
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrServiceClosed
	}
	if s.started {
		return nil
	}
	if err := s.app.Start(ctx); err != nil {
		return err
	}
	s.started = true

	logger.Info("可达性服务已启动",
		"enabled", s.config.Reachability.Enabled,
		"watcher", s.config.Watcher.Enabled)
	return nil
}

// Close 停止所有监控器并关闭服务
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	started := s.started
	monitors := make([]*trackedMonitor, 0, len(s.monitors))
	for m := range s.monitors {
		monitors = append(monitors, m)
	}
	s.monitors = nil
	s.mu.Unlock()

	var err error
	for _, m := range monitors {
		err = multierr.Append(err, m.Monitor.Stop())
	}
	if started {
		err = multierr.Append(err, s.app.Stop(context.Background()))
	}

	logger.Info("可达性服务已关闭", "monitors", len(monitors))
	return err
}

// Config 返回生效的配置
func (s *Service) Config() *config.Config {
	return s.config
}

// ════════════════════════════════════════════════════════════════════════════
//                              检测
// ════════════════════════════════════════════════════════════════════════════

// IsReachable 检测主机是否可达
func (s *Service) IsReachable(ctx context.Context, host Host) bool {
	if s.ready() != nil {
		return false
	}
	return s.reach.IsReachable(ctx, host)
}

// Check 检测主机，返回不可达原因
func (s *Service) Check(ctx context.Context, host Host) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.reach.Check(ctx, host)
}

// Diagnose 诊断到主机的网络路径
func (s *Service) Diagnose(ctx context.Context, host Host) (*Diagnosis, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.reach.Diagnose(ctx, host)
}

// Monitor 创建网络变化监控器
//
// 服务关闭时自动停止所有仍在运行的监控器。
func (s *Service) Monitor(host Host, callback Callback) Monitor {
	return &trackedMonitor{
		Monitor: s.reach.Monitor(host, callback),
		svc:     s,
	}
}

func (s *Service) ready() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return ErrServiceClosed
	case !s.started:
		return ErrNotStarted
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              指标
// ════════════════════════════════════════════════════════════════════════════

// MetricsHandler 返回 /metrics 处理器，指标关闭或注册器不可采集时返回 nil
func (s *Service) MetricsHandler() http.Handler {
	if s.gatherer == nil {
		return nil
	}
	return promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// ════════════════════════════════════════════════════════════════════════════
//                              trackedMonitor
// ════════════════════════════════════════════════════════════════════════════

// trackedMonitor 在服务中登记运行中的监控器
type trackedMonitor struct {
	interfaces.Monitor
	svc *Service
}

// Start 启动监控
func (m *trackedMonitor) Start(ctx context.Context) error {
	if err := m.svc.ready(); err != nil {
		return err
	}
	if err := m.Monitor.Start(ctx); err != nil {
		return err
	}

	m.svc.mu.Lock()
	defer m.svc.mu.Unlock()
	if m.svc.closed {
		return multierr.Append(ErrServiceClosed, m.Monitor.Stop())
	}
	m.svc.monitors[m] = struct{}{}
	return nil
}

// Stop 停止监控
func (m *trackedMonitor) Stop() error {
	m.svc.mu.Lock()
	if m.svc.monitors != nil {
		delete(m.svc.monitors, m)
	}
	m.svc.mu.Unlock()

	return m.Monitor.Stop()
}
