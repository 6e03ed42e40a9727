//go:build linux

package netmon

import (
	"context"
	"encoding/binary"
	"errors"
	"net/netip"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// netlinkGroups 订阅的 rtnetlink 组播组
const netlinkGroups = unix.RTMGRP_LINK |
	unix.RTMGRP_IPV4_IFADDR |
	unix.RTMGRP_IPV6_IFADDR |
	unix.RTMGRP_IPV4_ROUTE |
	unix.RTMGRP_IPV6_ROUTE

// netlinkWatcher Linux rtnetlink 监听器
//
// 内核推送链路、地址和路由变化；socket 不可用时回退到轮询。
type netlinkWatcher struct {
	config *WatcherConfig
	events chan NetworkEvent

	fd       int
	fallback *PollingWatcher

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// newNativeSystemWatcher 创建平台原生监听器（Linux 实现）
func newNativeSystemWatcher(config *WatcherConfig) SystemWatcher {
	return &netlinkWatcher{
		config: config,
		events: make(chan NetworkEvent, config.EventBufferSize),
		fd:     -1,
	}
}

// Start 启动监听
func (w *netlinkWatcher) Start(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return nil
	}

	fd, err := openNetlink()
	if err != nil {
		logger.Warn("打开 netlink socket 失败，回退到轮询", "error", err)
		w.fallback = newPollingWatcher(w.config, w.events)
		return w.fallback.Start(ctx)
	}
	w.fd = fd

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.readLoop(ctx)

	logger.Info("netlink 网络变化监听已启动")
	return nil
}

// Stop 停止监听
func (w *netlinkWatcher) Stop() error {
	if !w.running.CompareAndSwap(true, false) {
		return nil
	}

	if w.fallback != nil {
		err := w.fallback.Stop()
		w.fallback = nil
		return err
	}

	w.cancel()
	// 读超时保证 readLoop 在 1s 内观察到取消
	w.wg.Wait()

	err := unix.Close(w.fd)
	w.fd = -1

	logger.Info("netlink 网络变化监听已停止")
	return err
}

// Events 返回事件通道
func (w *netlinkWatcher) Events() <-chan NetworkEvent {
	return w.events
}

// IsRunning 检查是否运行
func (w *netlinkWatcher) IsRunning() bool {
	return w.running.Load()
}

func openNetlink() (int, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.NETLINK_ROUTE)
	if err != nil {
		return -1, err
	}

	if err := unix.Bind(fd, &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: netlinkGroups}); err != nil {
		unix.Close(fd)
		return -1, err
	}

	tv := unix.NsecToTimeval(time.Second.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

func (w *netlinkWatcher) readLoop(ctx context.Context) {
	defer w.wg.Done()

	buf := make([]byte, 1<<16)
	for ctx.Err() == nil {
		n, _, err := unix.Recvfrom(w.fd, buf, 0)
		if err != nil {
			switch {
			case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
				continue
			case errors.Is(err, unix.ENOBUFS):
				// 内核队列溢出，具体事件已丢失
				emit(w.events, NetworkEvent{Type: EventNetworkChanged, Timestamp: time.Now()})
				continue
			default:
				if ctx.Err() == nil {
					logger.Warn("读取 netlink 消息失败", "error", err)
				}
				return
			}
		}

		for _, ev := range parseNetlinkMessages(buf[:n], interfaceName, time.Now()) {
			emit(w.events, ev)
		}
	}
}

// ============================================================================
//                              消息解析
// ============================================================================

// parseNetlinkMessages 把 rtnetlink 消息转换为网络事件
func parseNetlinkMessages(b []byte, ifname func(int) string, now time.Time) []NetworkEvent {
	var events []NetworkEvent

	for len(b) >= unix.SizeofNlMsghdr {
		msgLen := int(binary.NativeEndian.Uint32(b[0:4]))
		msgType := binary.NativeEndian.Uint16(b[4:6])
		if msgLen < unix.SizeofNlMsghdr || msgLen > len(b) {
			break
		}
		data := b[unix.SizeofNlMsghdr:msgLen]

		if ev, ok := parseNetlinkMessage(msgType, data, ifname); ok {
			ev.Timestamp = now
			events = append(events, ev)
		}

		next := nlmAlign(msgLen)
		if next > len(b) {
			break
		}
		b = b[next:]
	}
	return events
}

func parseNetlinkMessage(msgType uint16, data []byte, ifname func(int) string) (NetworkEvent, bool) {
	name := func(index uint32) string {
		if n := ifname(int(index)); n != "" {
			return n
		}
		return "if" + strconv.FormatUint(uint64(index), 10)
	}

	switch msgType {
	case unix.RTM_NEWLINK, unix.RTM_DELLINK:
		if len(data) < unix.SizeofIfInfomsg {
			return NetworkEvent{}, false
		}
		index := binary.NativeEndian.Uint32(data[4:8])
		flags := binary.NativeEndian.Uint32(data[8:12])
		ev := NetworkEvent{Type: EventInterfaceDown, Interface: name(index)}
		if msgType == unix.RTM_NEWLINK && flags&unix.IFF_UP != 0 {
			ev.Type = EventInterfaceUp
		}
		return ev, true

	case unix.RTM_NEWADDR, unix.RTM_DELADDR:
		if len(data) < unix.SizeofIfAddrmsg {
			return NetworkEvent{}, false
		}
		prefixLen := int(data[1])
		index := binary.NativeEndian.Uint32(data[4:8])
		ev := NetworkEvent{Type: EventAddressAdded, Interface: name(index)}
		if msgType == unix.RTM_DELADDR {
			ev.Type = EventAddressRemoved
		}
		if addr, ok := parseIfAddr(data[unix.SizeofIfAddrmsg:]); ok {
			ev.Address = netip.PrefixFrom(addr, prefixLen).String()
		}
		return ev, true

	case unix.RTM_NEWROUTE, unix.RTM_DELROUTE:
		if len(data) < unix.SizeofRtMsg {
			return NetworkEvent{}, false
		}
		dstLen := data[1]
		table := data[4]
		if table != unix.RT_TABLE_MAIN {
			return NetworkEvent{}, false
		}
		ev := NetworkEvent{Type: EventRouteChanged}
		if dstLen == 0 {
			ev.Type = EventGatewayChanged
		}
		return ev, true
	}

	return NetworkEvent{}, false
}

// parseIfAddr 从 rtattr 列表取地址，IFA_LOCAL 优先（点对点链路上 IFA_ADDRESS 是对端）
func parseIfAddr(attrs []byte) (netip.Addr, bool) {
	var address, local netip.Addr

	for len(attrs) >= unix.SizeofRtAttr {
		attrLen := int(binary.NativeEndian.Uint16(attrs[0:2]))
		attrType := binary.NativeEndian.Uint16(attrs[2:4])
		if attrLen < unix.SizeofRtAttr || attrLen > len(attrs) {
			break
		}

		value := attrs[unix.SizeofRtAttr:attrLen]
		switch attrType {
		case unix.IFA_ADDRESS:
			address, _ = netip.AddrFromSlice(value)
		case unix.IFA_LOCAL:
			local, _ = netip.AddrFromSlice(value)
		}

		next := rtaAlign(attrLen)
		if next > len(attrs) {
			break
		}
		attrs = attrs[next:]
	}

	if local.IsValid() {
		return local, true
	}
	return address, address.IsValid()
}

func nlmAlign(n int) int {
	return (n + unix.NLMSG_ALIGNTO - 1) &^ (unix.NLMSG_ALIGNTO - 1)
}

func rtaAlign(n int) int {
	return (n + unix.RTA_ALIGNTO - 1) &^ (unix.RTA_ALIGNTO - 1)
}
