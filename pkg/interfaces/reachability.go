// Package interfaces 定义 go-reachability 公共接口
//
// 本文件定义主机可达性检测与网络变化监控接口
package interfaces

import (
	"context"

	"github.com/dep2p/go-reachability/pkg/types"
)

// ============================================================================
//                              Reachability
// ============================================================================

// Reachability 主机可达性检测
type Reachability interface {
	// IsReachable 检测主机是否可达
	//
	// HTTP 主机发起 GET 请求，其他协议建立 TCP 连接后立即关闭。
	// 任何失败都返回 false。
	IsReachable(ctx context.Context, host types.Host) bool

	// Check 与 IsReachable 相同，但返回失败原因
	Check(ctx context.Context, host types.Host) error

	// Diagnose 诊断到主机的网络路径
	Diagnose(ctx context.Context, host types.Host) (*types.Diagnosis, error)

	// Monitor 创建网络变化监控器，变化时调用 callback
	Monitor(host types.Host, callback Callback) Monitor
}

// ============================================================================
//                              Monitor
// ============================================================================

// Monitor 网络变化监控器
type Monitor interface {
	// Start 订阅系统网络变化事件，重复调用无副作用
	Start(ctx context.Context) error

	// Stop 取消订阅，未启动时调用无副作用
	Stop() error
}

// Callback 网络变化回调
type Callback interface {
	Change()
}

// CallbackFunc 函数适配器
type CallbackFunc func()

// Change 实现 Callback
func (f CallbackFunc) Change() {
	f()
}
