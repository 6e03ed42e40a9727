package reachability

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/dep2p/go-reachability/internal/core/netmon"
	"github.com/dep2p/go-reachability/pkg/interfaces"
	"github.com/dep2p/go-reachability/pkg/types"
)

// ============================================================================
//                              networkMonitor
// ============================================================================

// networkMonitor 把系统网络变化转发给回调
//
// 多个事件在 debounce 窗口内只触发一次回调，窗口从第一个事件开始计时。
type networkMonitor struct {
	id       string
	host     types.Host
	callback interfaces.Callback
	notifier *netmon.Notifier
	clock    clock.Clock
	debounce time.Duration

	mu          sync.Mutex
	unsubscribe func()
	timer       *clock.Timer
	// timerSeq 标识当前窗口，Stop 或新窗口使旧定时器的回调失效
	timerSeq uint64
}

var _ interfaces.Monitor = (*networkMonitor)(nil)

func newNetworkMonitor(host types.Host, cb interfaces.Callback, n *netmon.Notifier, clk clock.Clock, debounce time.Duration) *networkMonitor {
	return &networkMonitor{
		id:       uuid.NewString(),
		host:     host,
		callback: cb,
		notifier: n,
		clock:    clk,
		debounce: debounce,
	}
}

// Start 订阅系统网络变化，重复调用无副作用
//
// ctx 只约束订阅过程，不决定监控器的生命周期。
func (m *networkMonitor) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unsubscribe != nil {
		return nil
	}
	unsub, err := m.notifier.Subscribe(m.handle)
	if err != nil {
		return err
	}
	m.unsubscribe = unsub

	logger.Debug("网络变化监控已启动", "monitor", m.id, "host", m.host.String())
	return nil
}

// Stop 取消订阅，未启动时调用无副作用
func (m *networkMonitor) Stop() error {
	m.mu.Lock()
	unsub := m.unsubscribe
	m.unsubscribe = nil
	m.timerSeq++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()

	if unsub == nil {
		return nil
	}
	unsub()

	logger.Debug("网络变化监控已停止", "monitor", m.id, "host", m.host.String())
	return nil
}

func (m *networkMonitor) handle(ev netmon.NetworkEvent) {
	logger.Debug("收到网络变化", "monitor", m.id, "event", ev.String())

	if m.debounce <= 0 {
		m.fire()
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unsubscribe == nil || m.timer != nil {
		return
	}
	m.timerSeq++
	seq := m.timerSeq
	m.timer = m.clock.AfterFunc(m.debounce, func() { m.flush(seq) })
}

// flush 窗口结束，seq 不是当前窗口时忽略
func (m *networkMonitor) flush(seq uint64) {
	m.mu.Lock()
	if seq != m.timerSeq || m.timer == nil {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	m.mu.Unlock()
	m.fire()
}

// fire 在锁外调用回调，回调内可以调用 Stop
func (m *networkMonitor) fire() {
	m.mu.Lock()
	active := m.unsubscribe != nil
	m.mu.Unlock()

	if active && m.callback != nil {
		m.callback.Change()
	}
}
