//go:build linux

package netmon

import (
	"encoding/binary"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// nlMessage 构造一条 netlink 消息（含对齐填充）
func nlMessage(msgType uint16, payload []byte) []byte {
	msgLen := unix.SizeofNlMsghdr + len(payload)
	b := make([]byte, nlmAlign(msgLen))
	binary.NativeEndian.PutUint32(b[0:4], uint32(msgLen))
	binary.NativeEndian.PutUint16(b[4:6], msgType)
	copy(b[unix.SizeofNlMsghdr:], payload)
	return b
}

func ifInfoMsg(index uint32, flags uint32) []byte {
	b := make([]byte, unix.SizeofIfInfomsg)
	binary.NativeEndian.PutUint32(b[4:8], index)
	binary.NativeEndian.PutUint32(b[8:12], flags)
	return b
}

func rtAttr(attrType uint16, value []byte) []byte {
	attrLen := unix.SizeofRtAttr + len(value)
	b := make([]byte, rtaAlign(attrLen))
	binary.NativeEndian.PutUint16(b[0:2], uint16(attrLen))
	binary.NativeEndian.PutUint16(b[2:4], attrType)
	copy(b[unix.SizeofRtAttr:], value)
	return b
}

func ifAddrMsg(family byte, prefixLen byte, index uint32, attrs ...[]byte) []byte {
	b := make([]byte, unix.SizeofIfAddrmsg)
	b[0] = family
	b[1] = prefixLen
	binary.NativeEndian.PutUint32(b[4:8], index)
	for _, a := range attrs {
		b = append(b, a...)
	}
	return b
}

func rtMsg(dstLen byte, table byte) []byte {
	b := make([]byte, unix.SizeofRtMsg)
	b[1] = dstLen
	b[4] = table
	return b
}

func fakeIfname(index int) string {
	if index == 2 {
		return "eth0"
	}
	return ""
}

func TestParseNetlinkMessages_Link(t *testing.T) {
	now := time.Unix(1700000000, 0)
	buf := append(nlMessage(unix.RTM_NEWLINK, ifInfoMsg(2, unix.IFF_UP)),
		nlMessage(unix.RTM_NEWLINK, ifInfoMsg(2, 0))...)
	buf = append(buf, nlMessage(unix.RTM_DELLINK, ifInfoMsg(7, unix.IFF_UP))...)

	events := parseNetlinkMessages(buf, fakeIfname, now)
	require.Len(t, events, 3)

	assert.Equal(t, EventInterfaceUp, events[0].Type)
	assert.Equal(t, "eth0", events[0].Interface)
	assert.Equal(t, now, events[0].Timestamp)

	assert.Equal(t, EventInterfaceDown, events[1].Type)

	assert.Equal(t, EventInterfaceDown, events[2].Type)
	assert.Equal(t, "if7", events[2].Interface)
}

func TestParseNetlinkMessages_Address(t *testing.T) {
	v4 := netip.MustParseAddr("192.168.1.20").AsSlice()
	peer := netip.MustParseAddr("10.8.0.1").AsSlice()
	v6 := netip.MustParseAddr("2001:db8::5").AsSlice()

	buf := nlMessage(unix.RTM_NEWADDR, ifAddrMsg(unix.AF_INET, 24, 2, rtAttr(unix.IFA_ADDRESS, v4)))
	// 点对点链路：IFA_ADDRESS 为对端，IFA_LOCAL 为本地
	buf = append(buf, nlMessage(unix.RTM_NEWADDR, ifAddrMsg(unix.AF_INET, 32, 2,
		rtAttr(unix.IFA_ADDRESS, peer), rtAttr(unix.IFA_LOCAL, v4)))...)
	buf = append(buf, nlMessage(unix.RTM_DELADDR, ifAddrMsg(unix.AF_INET6, 64, 2, rtAttr(unix.IFA_ADDRESS, v6)))...)

	events := parseNetlinkMessages(buf, fakeIfname, time.Now())
	require.Len(t, events, 3)

	assert.Equal(t, EventAddressAdded, events[0].Type)
	assert.Equal(t, "192.168.1.20/24", events[0].Address)
	assert.Equal(t, "192.168.1.20/32", events[1].Address)
	assert.Equal(t, EventAddressRemoved, events[2].Type)
	assert.Equal(t, "2001:db8::5/64", events[2].Address)
}

func TestParseNetlinkMessages_Route(t *testing.T) {
	buf := nlMessage(unix.RTM_NEWROUTE, rtMsg(0, unix.RT_TABLE_MAIN))
	buf = append(buf, nlMessage(unix.RTM_DELROUTE, rtMsg(24, unix.RT_TABLE_MAIN))...)
	// local 表的路由忽略
	buf = append(buf, nlMessage(unix.RTM_NEWROUTE, rtMsg(32, unix.RT_TABLE_LOCAL))...)

	events := parseNetlinkMessages(buf, fakeIfname, time.Now())
	require.Len(t, events, 2)
	assert.Equal(t, EventGatewayChanged, events[0].Type)
	assert.Equal(t, EventRouteChanged, events[1].Type)
}

func TestParseNetlinkMessages_Malformed(t *testing.T) {
	// 长度字段超出缓冲区
	buf := nlMessage(unix.RTM_NEWLINK, ifInfoMsg(2, unix.IFF_UP))
	binary.NativeEndian.PutUint32(buf[0:4], 4096)
	assert.Empty(t, parseNetlinkMessages(buf, fakeIfname, time.Now()))

	// 负载过短
	short := nlMessage(unix.RTM_NEWADDR, []byte{unix.AF_INET, 24})
	assert.Empty(t, parseNetlinkMessages(short, fakeIfname, time.Now()))

	// 未关心的消息类型
	done := nlMessage(unix.NLMSG_DONE, make([]byte, 4))
	assert.Empty(t, parseNetlinkMessages(done, fakeIfname, time.Now()))

	assert.Empty(t, parseNetlinkMessages(nil, fakeIfname, time.Now()))
}
