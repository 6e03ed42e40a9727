package types

import (
	"fmt"
	"strings"
	"time"
)

// DialResult 单个地址的 TCP 拨号结果
type DialResult struct {
	// Address 拨号地址 ip:port
	Address string

	// Latency 建连耗时（失败时为耗费时间）
	Latency time.Duration

	// Error 失败原因，成功为空
	Error string
}

// OK 拨号是否成功
func (r DialResult) OK() bool {
	return r.Error == ""
}

// Diagnosis 主机网络诊断报告
type Diagnosis struct {
	Host      Host
	StartedAt time.Time
	Duration  time.Duration

	// Online 存在已启用且有地址的非回环接口
	Online bool

	// Interfaces 已启用的非回环接口名
	Interfaces []string

	// InterfaceError 枚举本机接口失败的原因，此时 Online 无意义
	InterfaceError string

	// ResolvedAddrs DNS 解析结果
	ResolvedAddrs []string

	// ResolveError DNS 解析错误
	ResolveError string

	// Dials 每个解析地址的拨号结果
	Dials []DialResult

	// HTTPStatus HTTP 探测状态码（仅 HTTP 主机）
	HTTPStatus int

	// HTTPError HTTP 探测错误
	HTTPError string

	// Reachable 最终是否可达
	Reachable bool
}

// Summary 返回单行摘要
func (d *Diagnosis) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: ", d.Host)
	if d.Reachable {
		b.WriteString("reachable")
	} else {
		b.WriteString("unreachable")
	}

	switch {
	case d.InterfaceError != "":
		fmt.Fprintf(&b, ", interfaces: %s", d.InterfaceError)
	case !d.Online:
		b.WriteString(", no active network interface")
	case d.ResolveError != "":
		fmt.Fprintf(&b, ", dns: %s", d.ResolveError)
	default:
		ok := 0
		for _, r := range d.Dials {
			if r.OK() {
				ok++
			}
		}
		fmt.Fprintf(&b, ", tcp %d/%d", ok, len(d.Dials))
		if d.HTTPStatus != 0 {
			fmt.Fprintf(&b, ", http %d", d.HTTPStatus)
		} else if d.HTTPError != "" {
			fmt.Fprintf(&b, ", http: %s", d.HTTPError)
		}
	}

	fmt.Fprintf(&b, " (%s)", d.Duration.Round(time.Millisecond))
	return b.String()
}
