//go:build darwin || freebsd || netbsd || openbsd

package netmon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/route"
	"golang.org/x/sys/unix"
)

func ifnames(names map[int]string) func(int) string {
	return func(index int) string { return names[index] }
}

// rtaxAddrs 按 RTAX_* 下标放置地址
func rtaxAddrs(at map[int]route.Addr) []route.Addr {
	addrs := make([]route.Addr, unix.RTAX_MAX)
	for i, a := range at {
		addrs[i] = a
	}
	return addrs
}

func TestRouteMessageEvents(t *testing.T) {
	now := time.Unix(1700000000, 0)
	names := ifnames(map[int]string{4: "en0", 7: "utun3"})

	tests := []struct {
		name string
		msgs []route.Message
		want []NetworkEvent
	}{
		{
			name: "接口启用与禁用",
			msgs: []route.Message{
				&route.InterfaceMessage{Type: unix.RTM_IFINFO, Index: 4, Flags: unix.IFF_UP},
				&route.InterfaceMessage{Type: unix.RTM_IFINFO, Index: 7, Name: "utun3"},
			},
			want: []NetworkEvent{
				{Type: EventInterfaceUp, Interface: "en0", Timestamp: now},
				{Type: EventInterfaceDown, Interface: "utun3", Timestamp: now},
			},
		},
		{
			name: "地址增删",
			msgs: []route.Message{
				&route.InterfaceAddrMessage{Type: unix.RTM_NEWADDR, Index: 4, Addrs: rtaxAddrs(map[int]route.Addr{
					unix.RTAX_IFA: &route.Inet4Addr{IP: [4]byte{192, 168, 1, 10}},
				})},
				&route.InterfaceAddrMessage{Type: unix.RTM_DELADDR, Index: 4, Addrs: rtaxAddrs(map[int]route.Addr{
					unix.RTAX_IFA: &route.Inet6Addr{IP: [16]byte{0xfe, 0x80, 15: 1}},
				})},
			},
			want: []NetworkEvent{
				{Type: EventAddressAdded, Interface: "en0", Address: "192.168.1.10", Timestamp: now},
				{Type: EventAddressRemoved, Interface: "en0", Address: "fe80::1", Timestamp: now},
			},
		},
		{
			name: "默认路由与普通路由",
			msgs: []route.Message{
				&route.RouteMessage{Type: unix.RTM_ADD, Index: 4, Addrs: rtaxAddrs(map[int]route.Addr{
					unix.RTAX_DST: &route.Inet4Addr{},
				})},
				&route.RouteMessage{Type: unix.RTM_DELETE, Index: 7, Addrs: rtaxAddrs(map[int]route.Addr{
					unix.RTAX_DST: &route.Inet4Addr{IP: [4]byte{10, 8, 0, 0}},
				})},
			},
			want: []NetworkEvent{
				{Type: EventGatewayChanged, Interface: "en0", Timestamp: now},
				{Type: EventRouteChanged, Interface: "utun3", Timestamp: now},
			},
		},
		{
			name: "未知接口用序号命名",
			msgs: []route.Message{
				&route.InterfaceMessage{Type: unix.RTM_IFINFO, Index: 12, Flags: unix.IFF_UP},
			},
			want: []NetworkEvent{
				{Type: EventInterfaceUp, Interface: "if12", Timestamp: now},
			},
		},
		{
			name: "忽略无关消息",
			msgs: []route.Message{
				&route.RouteMessage{Type: unix.RTM_GET, Index: 4},
				&route.InterfaceAddrMessage{Type: unix.RTM_IFINFO, Index: 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, routeMessageEvents(tt.msgs, names, now))
		})
	}
}
