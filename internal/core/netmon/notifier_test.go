package netmon

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockNotifier() (*Notifier, *MockWatcher) {
	w := NewMockWatcher()
	return NewNotifierWithFactory(func() SystemWatcher { return w }), w
}

// TestNotifier_SharedWatcher 多个订阅者共享一个监听器
func TestNotifier_SharedWatcher(t *testing.T) {
	n, w := newMockNotifier()

	var a, b atomic.Int32
	unsubA, err := n.Subscribe(func(NetworkEvent) { a.Add(1) })
	require.NoError(t, err)
	unsubB, err := n.Subscribe(func(NetworkEvent) { b.Add(1) })
	require.NoError(t, err)

	assert.Equal(t, 1, w.StartCount())
	assert.Equal(t, 2, n.Subscribers())

	w.Fire(EventInterfaceDown)
	require.Eventually(t, func() bool {
		return a.Load() == 1 && b.Load() == 1
	}, time.Second, 5*time.Millisecond)

	unsubA()
	assert.Equal(t, 0, w.StopCount(), "仍有订阅者时不应停止")

	w.Fire(EventAddressAdded)
	require.Eventually(t, func() bool { return b.Load() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), a.Load())

	unsubB()
	assert.Equal(t, 1, w.StopCount())
	assert.Equal(t, 0, n.Subscribers())
}

// TestNotifier_UnsubscribeIdempotent 取消订阅幂等
func TestNotifier_UnsubscribeIdempotent(t *testing.T) {
	n, w := newMockNotifier()

	unsub, err := n.Subscribe(func(NetworkEvent) {})
	require.NoError(t, err)

	unsub()
	unsub()
	assert.Equal(t, 1, w.StopCount())
}

// TestNotifier_Restart 最后一个订阅者离开后再次订阅会重新创建监听器
func TestNotifier_Restart(t *testing.T) {
	var watchers []*MockWatcher
	n := NewNotifierWithFactory(func() SystemWatcher {
		w := NewMockWatcher()
		watchers = append(watchers, w)
		return w
	})

	unsub, err := n.Subscribe(func(NetworkEvent) {})
	require.NoError(t, err)
	unsub()

	var got atomic.Int32
	unsub, err = n.Subscribe(func(NetworkEvent) { got.Add(1) })
	require.NoError(t, err)
	defer unsub()

	require.Len(t, watchers, 2)
	assert.Equal(t, 1, watchers[0].StopCount())
	assert.True(t, watchers[1].IsRunning())

	watchers[1].Fire(EventRouteChanged)
	require.Eventually(t, func() bool { return got.Load() == 1 }, time.Second, 5*time.Millisecond)
}

// TestNotifier_UnsubscribeFromHandler 处理函数内取消订阅不会死锁
func TestNotifier_UnsubscribeFromHandler(t *testing.T) {
	n, w := newMockNotifier()

	done := make(chan struct{})
	var unsub func()
	var err error
	unsub, err = n.Subscribe(func(NetworkEvent) {
		unsub()
		close(done)
	})
	require.NoError(t, err)

	w.Fire(EventNetworkChanged)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not return")
	}
	assert.Equal(t, 1, w.StopCount())
}

// TestNotifier_StartError 监听器启动失败时返回错误
func TestNotifier_StartError(t *testing.T) {
	n, w := newMockNotifier()
	w.StartErr = errors.New("socket: permission denied")

	_, err := n.Subscribe(func(NetworkEvent) {})
	assert.ErrorIs(t, err, w.StartErr)
	assert.Equal(t, 0, n.Subscribers())
}

// TestNotifier_Close 关闭后拒绝订阅
func TestNotifier_Close(t *testing.T) {
	n, w := newMockNotifier()

	_, err := n.Subscribe(func(NetworkEvent) {})
	require.NoError(t, err)

	require.NoError(t, n.Close())
	assert.Equal(t, 1, w.StopCount())

	_, err = n.Subscribe(func(NetworkEvent) {})
	assert.ErrorIs(t, err, ErrNotifierClosed)
}
