// Package interfaces 定义 go-reachability 的公共接口
//
// 一个接口文件对应一个实现目录：
//   - reachability.go - 可达性检测与网络变化监控（internal/core/reachability）
package interfaces
