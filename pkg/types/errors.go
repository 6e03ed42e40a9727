// Package types 定义 go-reachability 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import "errors"

// ============================================================================
//                              主机相关错误
// ============================================================================

var (
	// ErrEmptyHostname 主机名为空
	ErrEmptyHostname = errors.New("empty hostname")

	// ErrInvalidPort 端口超出 1..65535
	ErrInvalidPort = errors.New("invalid port")

	// ErrUnknownScheme 未知协议且未指定端口
	ErrUnknownScheme = errors.New("unknown scheme")
)

// ============================================================================
//                              探测相关错误
// ============================================================================

var (
	// ErrHTTPStatus HTTP 探测返回错误状态码（>= 400）
	ErrHTTPStatus = errors.New("http error status")
)
