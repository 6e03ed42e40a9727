package netmon

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"sort"
	"strings"
)

// InterfaceInfo 网络接口快照
type InterfaceInfo struct {
	Name      string
	HWAddr    string
	Flags     net.Flags
	Addresses []string
}

// IsUp 接口是否启用
func (i InterfaceInfo) IsUp() bool {
	return i.Flags&net.FlagUp != 0
}

// InterfaceLister 返回当前非回环接口快照，按接口名索引
type InterfaceLister func() (map[string]InterfaceInfo, error)

// ListInterfaces 基于 net.Interfaces() 的默认实现
func ListInterfaces() (map[string]InterfaceInfo, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	result := make(map[string]InterfaceInfo, len(ifaces))
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		info := InterfaceInfo{
			Name:   iface.Name,
			HWAddr: iface.HardwareAddr.String(),
			Flags:  iface.Flags,
		}
		if addrs, err := iface.Addrs(); err == nil {
			for _, addr := range addrs {
				info.Addresses = append(info.Addresses, addr.String())
			}
			sort.Strings(info.Addresses)
		}
		result[iface.Name] = info
	}
	return result, nil
}

// ActiveInterfaces 返回已启用且有地址的接口名（已排序）
func ActiveInterfaces(snapshot map[string]InterfaceInfo) []string {
	var names []string
	for name, info := range snapshot {
		if info.IsUp() && len(info.Addresses) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// fingerprint 基于所有接口和地址计算哈希
func fingerprint(snapshot map[string]InterfaceInfo) string {
	parts := make([]string, 0, len(snapshot))
	for _, info := range snapshot {
		parts = append(parts, info.Name+":"+info.HWAddr+":"+info.Flags.String()+
			":["+strings.Join(info.Addresses, ",")+"]")
	}
	sort.Strings(parts)

	h := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h[:])
}

// interfaceName 通过索引查询接口名，接口已删除时返回空串
func interfaceName(index int) string {
	iface, err := net.InterfaceByIndex(index)
	if err != nil {
		return ""
	}
	return iface.Name
}
