// Package netmon 提供操作系统网络变化监听
//
// # 概述
//
// netmon 把各平台的网络变化通知统一为 NetworkEvent 事件流：
//   - Linux: rtnetlink（链路、IPv4/IPv6 地址、路由组播组）
//   - macOS/BSD: AF_ROUTE routing socket
//   - 其他平台或原生监听不可用: 轮询 net.Interfaces() 并比较指纹
//
// Notifier 在多个订阅者之间共享同一个系统监听器：
// 第一个订阅者到来时启动，最后一个订阅者离开时停止。
//
// # 使用示例
//
//	n := netmon.NewNotifier(netmon.DefaultWatcherConfig())
//	unsubscribe, err := n.Subscribe(func(ev netmon.NetworkEvent) {
//	    logger.Info("网络变化", "type", ev.Type, "interface", ev.Interface)
//	})
//	if err != nil {
//	    return err
//	}
//	defer unsubscribe()
package netmon

import "github.com/dep2p/go-reachability/pkg/lib/log"

var logger = log.Logger("core/netmon")
