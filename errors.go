package reachability

import (
	"errors"

	"github.com/dep2p/go-reachability/pkg/types"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 服务生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 服务未启动
	ErrNotStarted = errors.New("service not started")

	// ErrServiceClosed 服务已关闭
	ErrServiceClosed = errors.New("service closed")

	// ────────────────────────────────────────────────────────────────────────
	// 主机与探测错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrEmptyHostname 主机名为空
	ErrEmptyHostname = types.ErrEmptyHostname

	// ErrInvalidPort 端口无效
	ErrInvalidPort = types.ErrInvalidPort

	// ErrUnknownScheme 未知协议且未指定端口
	ErrUnknownScheme = types.ErrUnknownScheme

	// ErrHTTPStatus HTTP 探测返回错误状态码
	ErrHTTPStatus = types.ErrHTTPStatus
)
