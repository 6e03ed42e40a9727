package netmon

import (
	"context"
	"errors"
	"sync"
)

// ErrNotifierClosed Notifier 已关闭
var ErrNotifierClosed = errors.New("netmon: notifier closed")

// Handler 网络事件处理函数
type Handler func(NetworkEvent)

// ============================================================================
//                              Notifier
// ============================================================================

// Notifier 在多个订阅者之间共享一个系统监听器
//
// 第一个订阅者到来时创建并启动监听器，最后一个订阅者离开时停止。
// 处理函数在同一个分发 goroutine 中串行调用，不应阻塞。
type Notifier struct {
	mu sync.Mutex

	newWatcher func() SystemWatcher

	subs   map[uint64]Handler
	nextID uint64

	run    *notifierRun
	closed bool
}

// notifierRun 一次监听器运行周期
type notifierRun struct {
	watcher SystemWatcher
	cancel  context.CancelFunc
}

// NewNotifier 创建 Notifier
func NewNotifier(config *WatcherConfig) *Notifier {
	return NewNotifierWithFactory(func() SystemWatcher {
		return NewSystemWatcher(config)
	})
}

// NewNotifierWithFactory 使用自定义监听器工厂创建 Notifier
func NewNotifierWithFactory(factory func() SystemWatcher) *Notifier {
	return &Notifier{
		newWatcher: factory,
		subs:       make(map[uint64]Handler),
	}
}

// Subscribe 注册处理函数，返回幂等的取消订阅函数
func (n *Notifier) Subscribe(h Handler) (func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil, ErrNotifierClosed
	}

	if n.run == nil {
		run, err := n.startLocked()
		if err != nil {
			return nil, err
		}
		n.run = run
	}

	n.nextID++
	id := n.nextID
	n.subs[id] = h

	logger.Debug("新增网络变化订阅", "id", id, "subscribers", len(n.subs))

	var once sync.Once
	return func() {
		once.Do(func() { n.unsubscribe(id) })
	}, nil
}

// Subscribers 当前订阅者数量
func (n *Notifier) Subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// Close 停止监听器并拒绝后续订阅
func (n *Notifier) Close() error {
	n.mu.Lock()
	n.closed = true
	run := n.run
	n.run = nil
	n.subs = make(map[uint64]Handler)
	n.mu.Unlock()

	if run == nil {
		return nil
	}
	return run.stop()
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	if _, ok := n.subs[id]; !ok {
		n.mu.Unlock()
		return
	}
	delete(n.subs, id)

	var run *notifierRun
	if len(n.subs) == 0 {
		run = n.run
		n.run = nil
	}
	n.mu.Unlock()

	logger.Debug("取消网络变化订阅", "id", id)

	// 在锁外停止，分发 goroutine 可能正在等待锁；
	// 处理函数内取消订阅同样走这里，因此 stop 不等待分发 goroutine 退出
	if run != nil {
		if err := run.stop(); err != nil {
			logger.Warn("停止系统网络监听失败", "error", err)
		}
	}
}

func (n *Notifier) startLocked() (*notifierRun, error) {
	w := n.newWatcher()
	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		cancel()
		return nil, err
	}

	run := &notifierRun{
		watcher: w,
		cancel:  cancel,
	}
	go n.dispatch(ctx, run)
	return run, nil
}

func (n *Notifier) dispatch(ctx context.Context, run *notifierRun) {
	events := run.watcher.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}

			n.mu.Lock()
			if n.run != run {
				n.mu.Unlock()
				return
			}
			handlers := make([]Handler, 0, len(n.subs))
			for _, h := range n.subs {
				handlers = append(handlers, h)
			}
			n.mu.Unlock()

			for _, h := range handlers {
				h(ev)
			}
		}
	}
}

func (r *notifierRun) stop() error {
	r.cancel()
	return r.watcher.Stop()
}
