//go:build darwin || freebsd || netbsd || openbsd

package netmon

import (
	"context"
	"errors"
	"net/netip"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/route"
	"golang.org/x/sys/unix"
)

// routeSocketWatcher macOS/BSD routing socket 监听器
//
// 监听接口 up/down、地址增删和路由表变化；socket 不可用时回退到轮询。
type routeSocketWatcher struct {
	config *WatcherConfig
	events chan NetworkEvent

	fd       int
	fallback *PollingWatcher

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// newNativeSystemWatcher 创建平台原生监听器（BSD routing socket 实现）
func newNativeSystemWatcher(config *WatcherConfig) SystemWatcher {
	return &routeSocketWatcher{
		config: config,
		events: make(chan NetworkEvent, config.EventBufferSize),
		fd:     -1,
	}
}

// Start 启动监听
func (w *routeSocketWatcher) Start(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return nil
	}

	fd, err := unix.Socket(unix.AF_ROUTE, unix.SOCK_RAW, unix.AF_UNSPEC)
	if err == nil {
		tv := unix.NsecToTimeval(time.Second.Nanoseconds())
		if err = unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
			unix.Close(fd)
		}
	}
	if err != nil {
		logger.Warn("打开 routing socket 失败，回退到轮询", "error", err)
		w.fallback = newPollingWatcher(w.config, w.events)
		return w.fallback.Start(ctx)
	}
	w.fd = fd

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.readLoop(ctx)

	logger.Info("routing socket 网络变化监听已启动")
	return nil
}

// Stop 停止监听
func (w *routeSocketWatcher) Stop() error {
	if !w.running.CompareAndSwap(true, false) {
		return nil
	}

	if w.fallback != nil {
		err := w.fallback.Stop()
		w.fallback = nil
		return err
	}

	w.cancel()
	w.wg.Wait()

	err := unix.Close(w.fd)
	w.fd = -1

	logger.Info("routing socket 网络变化监听已停止")
	return err
}

// Events 返回事件通道
func (w *routeSocketWatcher) Events() <-chan NetworkEvent {
	return w.events
}

// IsRunning 检查是否运行
func (w *routeSocketWatcher) IsRunning() bool {
	return w.running.Load()
}

func (w *routeSocketWatcher) readLoop(ctx context.Context) {
	defer w.wg.Done()

	buf := make([]byte, 1<<16)
	for ctx.Err() == nil {
		n, err := unix.Read(w.fd, buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			if ctx.Err() == nil {
				logger.Warn("读取 routing socket 失败", "error", err)
			}
			return
		}

		msgs, err := route.ParseRIB(route.RIBTypeRoute, buf[:n])
		if err != nil {
			logger.Debug("解析 routing 消息失败", "error", err)
			emit(w.events, NetworkEvent{Type: EventNetworkChanged, Timestamp: time.Now()})
			continue
		}

		for _, ev := range routeMessageEvents(msgs, interfaceName, time.Now()) {
			emit(w.events, ev)
		}
	}
}

// routeMessageEvents 把 routing 消息转换为网络事件
func routeMessageEvents(msgs []route.Message, ifname func(int) string, now time.Time) []NetworkEvent {
	name := func(index int, fallback string) string {
		if fallback != "" {
			return fallback
		}
		if n := ifname(index); n != "" {
			return n
		}
		return "if" + strconv.Itoa(index)
	}

	var events []NetworkEvent
	for _, msg := range msgs {
		switch m := msg.(type) {
		case *route.InterfaceMessage:
			if m.Type != unix.RTM_IFINFO {
				continue
			}
			ev := NetworkEvent{Type: EventInterfaceDown, Interface: name(m.Index, m.Name), Timestamp: now}
			if m.Flags&unix.IFF_UP != 0 {
				ev.Type = EventInterfaceUp
			}
			events = append(events, ev)

		case *route.InterfaceAddrMessage:
			var t NetworkEventType
			switch m.Type {
			case unix.RTM_NEWADDR:
				t = EventAddressAdded
			case unix.RTM_DELADDR:
				t = EventAddressRemoved
			default:
				continue
			}
			ev := NetworkEvent{Type: t, Interface: name(m.Index, ""), Timestamp: now}
			if len(m.Addrs) > unix.RTAX_IFA {
				if addr, ok := routeAddr(m.Addrs[unix.RTAX_IFA]); ok {
					ev.Address = addr.String()
				}
			}
			events = append(events, ev)

		case *route.RouteMessage:
			switch m.Type {
			case unix.RTM_ADD, unix.RTM_DELETE, unix.RTM_CHANGE:
			default:
				continue
			}
			ev := NetworkEvent{Type: EventRouteChanged, Interface: name(m.Index, ""), Timestamp: now}
			if len(m.Addrs) > unix.RTAX_DST {
				if dst, ok := routeAddr(m.Addrs[unix.RTAX_DST]); ok && dst.IsUnspecified() {
					ev.Type = EventGatewayChanged
				}
			}
			events = append(events, ev)
		}
	}
	return events
}

func routeAddr(a route.Addr) (netip.Addr, bool) {
	switch v := a.(type) {
	case *route.Inet4Addr:
		return netip.AddrFrom4(v.IP), true
	case *route.Inet6Addr:
		return netip.AddrFrom16(v.IP), true
	default:
		return netip.Addr{}, false
	}
}
