// Package main 提供 reachability 命令行入口
//
// 用法:
//
//	reachability [flags] host...
//
// host 可以是 scheme://[user@]host[:port][/path] 或 host:port。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	reachability "github.com/dep2p/go-reachability"
	"github.com/dep2p/go-reachability/pkg/lib/log"
)

var logger = log.Logger("reachability/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile  = flag.String("config", "", "配置文件路径")
	timeout     = flag.Duration("timeout", 0, "连接与 HTTP 超时（0 = 使用配置）")
	noProxy     = flag.Bool("no-proxy", false, "不使用环境变量中的代理")
	diagnose    = flag.Bool("diagnose", false, "输出诊断报告")
	watch       = flag.Bool("watch", false, "网络变化时重新检测，直到 Ctrl+C")
	metricsAddr = flag.String("metrics-addr", "", "/metrics 监听地址，例如 127.0.0.1:9100")
	logLevel    = flag.String("log-level", "", "日志级别，例如 debug 或 core/netmon=debug,info")
	showVersion = flag.Bool("version", false, "显示版本信息")
)

// errUnreachable 至少一个主机不可达
var errUnreachable = errors.New("unreachable")

func main() {
	flag.Usage = printHelp
	err := run()
	switch {
	case err == nil:
	case errors.Is(err, errUnreachable):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(2)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(reachability.VersionInfo())
		return nil
	}

	hosts, err := parseHosts(flag.Args())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := reachability.Start(ctx, buildOptions()...)
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = svc.Close() }()

	addr := *metricsAddr
	if addr == "" {
		addr = svc.Config().Metrics.ListenAddr
	}
	if addr != "" {
		stop := serveMetrics(addr, svc.MetricsHandler())
		defer stop()
	}

	ok := checkAll(ctx, os.Stdout, svc, hosts, *diagnose)
	if !*watch {
		if !ok {
			return errUnreachable
		}
		return nil
	}

	for _, h := range hosts {
		m := svc.Monitor(h, reachability.CallbackFunc(func() {
			logger.Info("网络变化，重新检测", "host", h.String())
			checkAll(ctx, os.Stdout, svc, []reachability.Host{h}, *diagnose)
		}))
		if err := m.Start(ctx); err != nil {
			return fmt.Errorf("监控 %s: %w", h, err)
		}
	}

	fmt.Fprintln(os.Stderr, "正在监听网络变化，按 Ctrl+C 退出")
	waitForSignal()
	return nil
}

// buildOptions 按命令行参数构建选项
func buildOptions() []reachability.Option {
	opts := []reachability.Option{
		reachability.WithEnv(),
		reachability.WithLogging(),
	}
	if *configFile != "" {
		opts = append(opts, reachability.WithConfigFile(*configFile))
	}
	if *timeout > 0 {
		opts = append(opts,
			reachability.WithConnectTimeout(*timeout),
			reachability.WithHTTPTimeout(*timeout))
	}
	if *noProxy {
		opts = append(opts, reachability.WithProxy(false))
	}
	if *logLevel != "" {
		opts = append(opts, reachability.WithLogLevel(*logLevel))
	}
	if !*watch {
		opts = append(opts, reachability.WithWatcher(false))
	}
	return opts
}

func parseHosts(args []string) ([]reachability.Host, error) {
	if len(args) == 0 {
		printHelp()
		return nil, errors.New("缺少 host 参数")
	}

	hosts := make([]reachability.Host, 0, len(args))
	for _, a := range args {
		h, err := reachability.ParseHost(a)
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, h)
	}
	return hosts, nil
}

// checker checkAll 需要的检测能力
type checker interface {
	Check(ctx context.Context, host reachability.Host) error
	Diagnose(ctx context.Context, host reachability.Host) (*reachability.Diagnosis, error)
}

// checkAll 并发检测所有主机，按输入顺序输出结果，全部可达时返回 true
func checkAll(ctx context.Context, w io.Writer, c checker, hosts []reachability.Host, withDiagnosis bool) bool {
	lines := make([]string, len(hosts))
	reachable := make([]bool, len(hosts))

	var g errgroup.Group
	for i, h := range hosts {
		g.Go(func() error {
			if withDiagnosis {
				d, err := c.Diagnose(ctx, h)
				if err != nil {
					lines[i] = fmt.Sprintf("%s: %v", h, err)
					return nil
				}
				lines[i] = d.Summary()
				reachable[i] = d.Reachable
				return nil
			}

			if err := c.Check(ctx, h); err != nil {
				lines[i] = fmt.Sprintf("%s: unreachable (%v)", h, err)
				return nil
			}
			lines[i] = fmt.Sprintf("%s: reachable", h)
			reachable[i] = true
			return nil
		})
	}
	_ = g.Wait()

	ok := true
	for i, line := range lines {
		fmt.Fprintln(w, line)
		ok = ok && reachable[i]
	}
	return ok
}

// serveMetrics 在后台提供 /metrics，返回停止函数
func serveMetrics(addr string, handler http.Handler) func() {
	if handler == nil {
		logger.Warn("指标已关闭，忽略 metrics 地址", "addr", addr)
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics 服务失败", "addr", addr, "error", err)
		}
	}()
	logger.Info("metrics 服务已启动", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// waitForSignal 等待退出信号
func waitForSignal() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
}

// printHelp 显示帮助信息
func printHelp() {
	fmt.Fprintf(os.Stderr, `%s

用法: reachability [flags] host...

host 示例:
  https://example.com/health
  dav://user@cloud.example.com/remote.php/webdav
  ssh://git.example.com
  db.internal:5432

退出码: 0 全部可达, 1 存在不可达主机, 2 参数或启动错误

参数:
`, reachability.VersionInfo())
	flag.PrintDefaults()
}
