package reachability

import (
	"context"
	"time"

	"github.com/dep2p/go-reachability/pkg/interfaces"
	"github.com/dep2p/go-reachability/pkg/types"
)

// Disabled 关闭检测时的实现：所有主机可达，监控器不订阅任何事件
type Disabled struct{}

var _ interfaces.Reachability = Disabled{}

// NewDisabled 创建 Disabled
func NewDisabled() Disabled {
	return Disabled{}
}

// IsReachable 总是返回 true
func (Disabled) IsReachable(context.Context, types.Host) bool {
	return true
}

// Check 总是返回 nil
func (Disabled) Check(context.Context, types.Host) error {
	return nil
}

// Diagnose 返回空报告
func (Disabled) Diagnose(_ context.Context, host types.Host) (*types.Diagnosis, error) {
	return &types.Diagnosis{
		Host:      host,
		StartedAt: time.Now(),
		Reachable: true,
	}, nil
}

// Monitor 返回空操作监控器
func (Disabled) Monitor(types.Host, interfaces.Callback) interfaces.Monitor {
	return noopMonitor{}
}

type noopMonitor struct{}

func (noopMonitor) Start(context.Context) error { return nil }
func (noopMonitor) Stop() error                 { return nil }
