package netmon

import (
	"context"
	"strings"
	"time"
)

// ============================================================================
//                              SystemWatcher 接口
// ============================================================================

// SystemWatcher 系统网络变化监听器
//
// 实现必须在 Stop 后关闭 Events 通道以外的全部资源，
// Events 通道在 Start 之前即可读取。
type SystemWatcher interface {
	Start(ctx context.Context) error
	Stop() error

	// Events 事件通道，发送方不阻塞，缓冲区满时丢弃
	Events() <-chan NetworkEvent

	IsRunning() bool
}

// ============================================================================
//                              网络事件
// ============================================================================

// NetworkEventType 网络事件类型
type NetworkEventType int

const (
	// EventNetworkChanged 无法归类的变化（轮询首轮、netlink 溢出等）
	EventNetworkChanged NetworkEventType = iota
	EventInterfaceUp
	EventInterfaceDown
	EventAddressAdded
	EventAddressRemoved
	EventRouteChanged

	// EventGatewayChanged 默认路由变化
	EventGatewayChanged
)

var eventTypeNames = [...]string{
	EventNetworkChanged: "network_changed",
	EventInterfaceUp:    "interface_up",
	EventInterfaceDown:  "interface_down",
	EventAddressAdded:   "address_added",
	EventAddressRemoved: "address_removed",
	EventRouteChanged:   "route_changed",
	EventGatewayChanged: "gateway_changed",
}

// String 返回事件类型名，同时用作指标标签
func (t NetworkEventType) String() string {
	if t < 0 || int(t) >= len(eventTypeNames) {
		return "unknown"
	}
	return eventTypeNames[t]
}

// IsMajorChange 是否可能改变主机可达性
//
// 接口下线、默认路由变化以及无法归类的变化视为重大变化；
// 新增地址或普通路由更新通常不影响已有连通性。
func (t NetworkEventType) IsMajorChange() bool {
	return t == EventInterfaceDown || t == EventGatewayChanged || t == EventNetworkChanged
}

// NetworkEvent 网络变化事件
type NetworkEvent struct {
	Type NetworkEventType

	// Interface 接口名（如 "eth0"），未知时为空
	Interface string

	// Address CIDR 形式的地址，仅地址事件携带
	Address string

	Timestamp time.Time
}

// String 返回便于日志阅读的事件描述，例如 "address_added eth0 10.0.0.5/8"
func (e NetworkEvent) String() string {
	var b strings.Builder
	b.WriteString(e.Type.String())
	for _, s := range []string{e.Interface, e.Address} {
		if s != "" {
			b.WriteByte(' ')
			b.WriteString(s)
		}
	}
	return b.String()
}

// ============================================================================
//                              NoOpWatcher
// ============================================================================

// NoOpWatcher 禁用监听时使用，永远不产生事件
type NoOpWatcher struct{}

// NewNoOpWatcher 创建空操作监听器
func NewNoOpWatcher() *NoOpWatcher { return &NoOpWatcher{} }

func (*NoOpWatcher) Start(context.Context) error { return nil }
func (*NoOpWatcher) Stop() error                 { return nil }
func (*NoOpWatcher) IsRunning() bool             { return false }

// Events 返回 nil 通道，读取方在 select 中永远不会被选中
func (*NoOpWatcher) Events() <-chan NetworkEvent { return nil }

// ============================================================================
//                              WatcherConfig
// ============================================================================

const (
	defaultPollInterval    = 5 * time.Second
	defaultEventBufferSize = 16
)

// WatcherConfig 监听器配置
type WatcherConfig struct {
	// Enabled 关闭时使用 NoOpWatcher
	Enabled bool

	// PreferNative 优先使用 netlink / routing socket，不可用时回退到轮询
	PreferNative bool

	// PollInterval 轮询实现的采样间隔
	PollInterval time.Duration

	// EventBufferSize 事件通道容量
	EventBufferSize int
}

// DefaultWatcherConfig 返回默认配置
func DefaultWatcherConfig() *WatcherConfig {
	return &WatcherConfig{
		Enabled:         true,
		PreferNative:    true,
		PollInterval:    defaultPollInterval,
		EventBufferSize: defaultEventBufferSize,
	}
}

// Validate 把非正值替换为默认值，不返回错误
func (c *WatcherConfig) Validate() error {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.EventBufferSize <= 0 {
		c.EventBufferSize = defaultEventBufferSize
	}
	return nil
}

// ============================================================================
//                              工厂函数
// ============================================================================

// NewSystemWatcher 按配置选择监听实现
func NewSystemWatcher(config *WatcherConfig) SystemWatcher {
	if config == nil {
		config = DefaultWatcherConfig()
	}
	_ = config.Validate()

	switch {
	case !config.Enabled:
		return NewNoOpWatcher()
	case config.PreferNative:
		if native := newNativeSystemWatcher(config); native != nil {
			return native
		}
		logger.Debug("平台不支持原生网络监听，使用轮询", "interval", config.PollInterval)
	}
	return NewPollingWatcher(config)
}

// emit 非阻塞发送事件
func emit(events chan NetworkEvent, ev NetworkEvent) {
	select {
	case events <- ev:
		logger.Debug("发送网络事件", "event", ev.String())
	default:
		logger.Warn("网络事件缓冲区已满，丢弃事件", "event", ev.String())
	}
}
