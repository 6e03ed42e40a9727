package netmon

import (
	"context"
	"sync/atomic"
	"time"
)

// ============================================================================
//                              Mock Watcher (用于测试)
// ============================================================================

// MockWatcher 可控的模拟监听器（用于测试）
type MockWatcher struct {
	events chan NetworkEvent

	running    atomic.Bool
	startCount atomic.Int32
	stopCount  atomic.Int32

	// StartErr 非空时 Start 返回该错误
	StartErr error
}

// NewMockWatcher 创建模拟监听器
func NewMockWatcher() *MockWatcher {
	return &MockWatcher{events: make(chan NetworkEvent, 16)}
}

// Start 启动
func (w *MockWatcher) Start(_ context.Context) error {
	if w.StartErr != nil {
		return w.StartErr
	}
	w.startCount.Add(1)
	w.running.Store(true)
	return nil
}

// Stop 停止
func (w *MockWatcher) Stop() error {
	w.stopCount.Add(1)
	w.running.Store(false)
	return nil
}

// Events 返回事件通道
func (w *MockWatcher) Events() <-chan NetworkEvent {
	return w.events
}

// IsRunning 检查是否运行
func (w *MockWatcher) IsRunning() bool {
	return w.running.Load()
}

// Fire 注入一个事件
func (w *MockWatcher) Fire(t NetworkEventType) {
	w.events <- NetworkEvent{Type: t, Timestamp: time.Now()}
}

// StartCount 返回 Start 次数
func (w *MockWatcher) StartCount() int {
	return int(w.startCount.Load())
}

// StopCount 返回 Stop 次数
func (w *MockWatcher) StopCount() int {
	return int(w.stopCount.Load())
}
