package netmon

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// ============================================================================
//                              PollingWatcher
// ============================================================================

// PollingWatcher 基于轮询的网络变化监听器
//
// 跨平台实现，定期比较接口快照指纹，指纹变化时推导具体事件。
type PollingWatcher struct {
	mu sync.Mutex

	config *WatcherConfig
	clock  clock.Clock
	list   InterfaceLister

	events chan NetworkEvent

	lastFingerprint string
	lastInterfaces  map[string]InterfaceInfo

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// PollingOption 轮询监听器选项
type PollingOption func(*PollingWatcher)

// WithClock 替换时钟（测试使用 clock.NewMock()）
func WithClock(c clock.Clock) PollingOption {
	return func(w *PollingWatcher) {
		w.clock = c
	}
}

// WithInterfaceLister 替换接口枚举函数
func WithInterfaceLister(list InterfaceLister) PollingOption {
	return func(w *PollingWatcher) {
		w.list = list
	}
}

// NewPollingWatcher 创建轮询监听器
func NewPollingWatcher(config *WatcherConfig, opts ...PollingOption) *PollingWatcher {
	if config == nil {
		config = DefaultWatcherConfig()
	}
	_ = config.Validate()
	return newPollingWatcher(config, make(chan NetworkEvent, config.EventBufferSize), opts...)
}

// newPollingWatcher 使用外部事件通道创建，供原生监听器回退使用
func newPollingWatcher(config *WatcherConfig, events chan NetworkEvent, opts ...PollingOption) *PollingWatcher {
	w := &PollingWatcher{
		config:         config,
		clock:          clock.New(),
		list:           ListInterfaces,
		events:         events,
		lastInterfaces: make(map[string]InterfaceInfo),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start 启动监听
func (w *PollingWatcher) Start(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return nil
	}

	ctx, w.cancel = context.WithCancel(ctx)

	w.mu.Lock()
	w.lastInterfaces = w.snapshot()
	w.lastFingerprint = fingerprint(w.lastInterfaces)
	w.mu.Unlock()

	// ticker 在启动 goroutine 之前创建，保证 mock 时钟推进时已注册
	ticker := w.clock.Ticker(w.config.PollInterval)

	w.wg.Add(1)
	go w.pollLoop(ctx, ticker)

	logger.Info("网络变化轮询监听已启动", "poll_interval", w.config.PollInterval)
	return nil
}

// Stop 停止监听
func (w *PollingWatcher) Stop() error {
	if !w.running.CompareAndSwap(true, false) {
		return nil
	}

	w.cancel()
	w.wg.Wait()

	logger.Info("网络变化轮询监听已停止")
	return nil
}

// Events 返回事件通道
func (w *PollingWatcher) Events() <-chan NetworkEvent {
	return w.events
}

// IsRunning 检查是否运行
func (w *PollingWatcher) IsRunning() bool {
	return w.running.Load()
}

// ============================================================================
//                              轮询逻辑
// ============================================================================

func (w *PollingWatcher) pollLoop(ctx context.Context, ticker *clock.Ticker) {
	defer w.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.checkNetworkChange()
		}
	}
}

func (w *PollingWatcher) snapshot() map[string]InterfaceInfo {
	snap, err := w.list()
	if err != nil {
		logger.Warn("枚举网络接口失败", "error", err)
		return map[string]InterfaceInfo{}
	}
	return snap
}

// checkNetworkChange 检查网络变化
func (w *PollingWatcher) checkNetworkChange() {
	current := w.snapshot()
	currentFP := fingerprint(current)

	w.mu.Lock()
	last := w.lastInterfaces
	lastFP := w.lastFingerprint
	w.lastInterfaces = current
	w.lastFingerprint = currentFP
	w.mu.Unlock()

	if currentFP == lastFP {
		return
	}

	logger.Debug("检测到网络变化",
		"old_fingerprint", lastFP[:8],
		"new_fingerprint", currentFP[:8])

	events := detectChanges(last, current, w.clock.Now())
	if len(events) == 0 {
		// 仅 MAC 或标志位等变化
		events = append(events, NetworkEvent{Type: EventNetworkChanged, Timestamp: w.clock.Now()})
	}
	for _, ev := range events {
		emit(w.events, ev)
	}
}

// detectChanges 对比两个快照推导具体事件
func detectChanges(old, cur map[string]InterfaceInfo, now time.Time) []NetworkEvent {
	var events []NetworkEvent

	for name, curInfo := range cur {
		oldInfo, existed := old[name]

		if !existed {
			if curInfo.IsUp() {
				events = append(events, NetworkEvent{Type: EventInterfaceUp, Interface: name, Timestamp: now})
			}
			for _, addr := range curInfo.Addresses {
				events = append(events, NetworkEvent{Type: EventAddressAdded, Interface: name, Address: addr, Timestamp: now})
			}
			continue
		}

		wasUp, isUp := oldInfo.IsUp(), curInfo.IsUp()
		if !wasUp && isUp {
			events = append(events, NetworkEvent{Type: EventInterfaceUp, Interface: name, Timestamp: now})
		} else if wasUp && !isUp {
			events = append(events, NetworkEvent{Type: EventInterfaceDown, Interface: name, Timestamp: now})
		}

		oldAddrs := toSet(oldInfo.Addresses)
		curAddrs := toSet(curInfo.Addresses)
		for _, addr := range curInfo.Addresses {
			if !oldAddrs[addr] {
				events = append(events, NetworkEvent{Type: EventAddressAdded, Interface: name, Address: addr, Timestamp: now})
			}
		}
		for _, addr := range oldInfo.Addresses {
			if !curAddrs[addr] {
				events = append(events, NetworkEvent{Type: EventAddressRemoved, Interface: name, Address: addr, Timestamp: now})
			}
		}
	}

	for name, oldInfo := range old {
		if _, exists := cur[name]; exists {
			continue
		}
		events = append(events, NetworkEvent{Type: EventInterfaceDown, Interface: name, Timestamp: now})
		for _, addr := range oldInfo.Addresses {
			events = append(events, NetworkEvent{Type: EventAddressRemoved, Interface: name, Address: addr, Timestamp: now})
		}
	}

	return events
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}

var _ SystemWatcher = (*PollingWatcher)(nil)
