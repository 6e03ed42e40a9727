// Package reachability 提供主机可达性检测与系统网络变化订阅
//
// # 核心概念
//
//   - Host: 目标主机（协议、主机名、端口、用户名、路径）
//   - IsReachable: HTTP 类主机发起 GET，其他协议建立 TCP 连接
//   - Monitor: 系统网络发生变化时回调
//   - Diagnose: 生成接口、DNS、拨号、HTTP 各环节的诊断报告
//
// # 快速开始
//
//	svc, err := reachability.Start(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	host, _ := reachability.ParseHost("https://example.com")
//	if !svc.IsReachable(ctx, host) {
//	    report, _ := svc.Diagnose(ctx, host)
//	    fmt.Println(report.Summary())
//	}
//
//	mon := svc.Monitor(host, reachability.CallbackFunc(func() {
//	    fmt.Println("network changed")
//	}))
//	_ = mon.Start(ctx)
//
// # 配置
//
// 默认配置可以通过 WithConfigFile 从 JSON 文件加载，
// WithEnv 读取 REACH_* 环境变量，其余 With* 选项逐项覆盖。
package reachability
