//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package netmon

// newNativeSystemWatcher 创建平台原生监听器（stub 实现）
//
// 返回 nil 表示不支持原生监听，回退到 PollingWatcher。
func newNativeSystemWatcher(_ *WatcherConfig) SystemWatcher {
	return nil
}
