package reachability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-reachability/internal/core/netmon"
)

// 探测方式标签
const (
	methodTCP  = "tcp"
	methodHTTP = "http"
)

// Metrics 可达性检测指标
//
// nil *Metrics 的所有方法都是空操作。
type Metrics struct {
	probes         *prometheus.CounterVec
	probeDuration  *prometheus.HistogramVec
	networkChanges *prometheus.CounterVec
}

// NewMetrics 创建并注册指标
//
// 同一 Registerer 上重复注册时复用已注册的收集器。
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reachability_probes_total",
			Help: "Number of reachability probes by method and result.",
		}, []string{"method", "result"}),
		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reachability_probe_duration_seconds",
			Help:    "Duration of reachability probes.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		}, []string{"method"}),
		networkChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reachability_network_changes_total",
			Help: "Number of OS network change events by type.",
		}, []string{"type"}),
	}

	if reg == nil {
		return m, nil
	}

	var err error
	if m.probes, err = register(reg, m.probes); err != nil {
		return nil, err
	}
	if m.probeDuration, err = register(reg, m.probeDuration); err != nil {
		return nil, err
	}
	if m.networkChanges, err = register(reg, m.networkChanges); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveProbe 记录一次探测
func (m *Metrics) ObserveProbe(method string, reachable bool, d time.Duration) {
	if m == nil {
		return
	}
	result := "reachable"
	if !reachable {
		result = "unreachable"
	}
	m.probes.WithLabelValues(method, result).Inc()
	m.probeDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveNetworkChange 记录一次系统网络变化
func (m *Metrics) ObserveNetworkChange(ev netmon.NetworkEvent) {
	if m == nil {
		return
	}
	m.networkChanges.WithLabelValues(ev.Type.String()).Inc()
}
