// Package reachability 实现主机可达性检测
//
// # 探测方式
//
//   - http / https / dav / davs: 对主机 URL 发起 GET（不含用户名，含路径），
//     传输失败或状态码 >= 400 视为不可达
//   - 其他协议: 建立到 hostname:port 的 TCP 连接后立即关闭
//
// 同一主机的并发检测会合并为一次探测；启用结果缓存时，
// 系统网络变化会清空缓存。
//
// # 网络变化监控
//
// Monitor 订阅 netmon.Notifier，所有监控器共享同一个系统监听器。
// 在 ChangeDebounce 窗口内的多个事件只触发一次回调。
//
// # 诊断
//
// Diagnose 依次检查本机接口、DNS 解析、每个解析地址的 TCP 拨号，
// HTTP 主机再追加一次 HTTP 探测，返回结构化报告。
package reachability

import "github.com/dep2p/go-reachability/pkg/lib/log"

var logger = log.Logger("core/reachability")
