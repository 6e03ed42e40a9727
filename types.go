package reachability

import (
	"github.com/dep2p/go-reachability/pkg/interfaces"
	"github.com/dep2p/go-reachability/pkg/types"
)

// 类型别名，方便只引入根包的使用者
type (
	// Host 目标主机
	Host = types.Host

	// Scheme 连接协议
	Scheme = types.Scheme

	// Diagnosis 诊断报告
	Diagnosis = types.Diagnosis

	// Monitor 网络变化监控器
	Monitor = interfaces.Monitor

	// Callback 网络变化回调
	Callback = interfaces.Callback

	// CallbackFunc 函数回调适配器
	CallbackFunc = interfaces.CallbackFunc
)

// ParseHost 解析主机描述，见 types.ParseHost
func ParseHost(raw string) (Host, error) {
	return types.ParseHost(raw)
}

// NewHost 使用协议默认端口创建主机
func NewHost(scheme Scheme, hostname string) Host {
	return types.NewHost(scheme, hostname)
}
