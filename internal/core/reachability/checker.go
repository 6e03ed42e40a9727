package reachability

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"

	"github.com/benbjohnson/clock"
	"golang.org/x/net/http/httpproxy"
	"golang.org/x/net/proxy"
	"golang.org/x/sync/singleflight"

	"github.com/dep2p/go-reachability/internal/core/netmon"
	"github.com/dep2p/go-reachability/pkg/interfaces"
	"github.com/dep2p/go-reachability/pkg/types"
)

// maxDrainBytes HTTP 响应体最多读取的字节数
const maxDrainBytes = 4 << 10

// ContextDialer 带 context 的拨号器
type ContextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Resolver DNS 解析器
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// ============================================================================
//                              Checker
// ============================================================================

// Checker 主机可达性检测器
type Checker struct {
	config   *Config
	notifier *netmon.Notifier
	metrics  *Metrics

	// dialer 探测用拨号器（可能经过代理）
	dialer ContextDialer
	// direct 诊断用直连拨号器
	direct   ContextDialer
	resolver Resolver
	client   *http.Client
	clock    clock.Clock
	lister   netmon.InterfaceLister

	group singleflight.Group
	cache *resultCache

	mu          sync.Mutex
	unsubscribe func()
}

var _ interfaces.Reachability = (*Checker)(nil)

// Option Checker 选项
type Option func(*Checker)

// WithDialer 使用自定义拨号器（探测与诊断都使用它）
func WithDialer(d ContextDialer) Option {
	return func(c *Checker) {
		c.dialer = d
		c.direct = d
	}
}

// WithResolver 使用自定义 DNS 解析器
func WithResolver(r Resolver) Option {
	return func(c *Checker) {
		c.resolver = r
	}
}

// WithClock 使用自定义时钟
func WithClock(clk clock.Clock) Option {
	return func(c *Checker) {
		c.clock = clk
	}
}

// WithInterfaceLister 使用自定义接口枚举
func WithInterfaceLister(l netmon.InterfaceLister) Option {
	return func(c *Checker) {
		c.lister = l
	}
}

// WithMetrics 记录探测指标
func WithMetrics(m *Metrics) Option {
	return func(c *Checker) {
		c.metrics = m
	}
}

// NewChecker 创建检测器
//
// notifier 为 nil 时创建一个独占的 Notifier。
func NewChecker(config *Config, notifier *netmon.Notifier, opts ...Option) (*Checker, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if notifier == nil {
		notifier = netmon.NewNotifier(config.Watcher)
	}

	c := &Checker{
		config:   config,
		notifier: notifier,
		resolver: net.DefaultResolver,
		clock:    clock.New(),
		lister:   netmon.ListInterfaces,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.dialer == nil {
		base := &net.Dialer{Timeout: config.ConnectTimeout}
		c.direct = base
		c.dialer = base
		if config.UseProxy {
			c.dialer = proxyDialer(base)
		}
	}

	// HTTP 代理由 Transport 处理，自身只需直连代理或目标
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = c.direct.DialContext
	transport.Proxy = nil
	if config.UseProxy {
		transport.Proxy = httpProxyFunc()
	}
	c.client = &http.Client{
		Transport: transport,
		Timeout:   config.HTTPTimeout,
	}

	if config.ResultCacheTTL > 0 {
		c.cache = newResultCache(config.ResultCacheSize, config.ResultCacheTTL)
	}
	return c, nil
}

// proxyDialer 按 ALL_PROXY / NO_PROXY 包装拨号器
func proxyDialer(forward *net.Dialer) ContextDialer {
	d := proxy.FromEnvironmentUsing(forward)
	if cd, ok := d.(ContextDialer); ok {
		return cd
	}
	return contextDialer{d}
}

// httpProxyFunc 按创建时的 HTTP_PROXY / HTTPS_PROXY / NO_PROXY 选择代理
//
// 与 http.ProxyFromEnvironment 不同，环境变量在每次创建 Checker 时重新读取。
// localhost 与回环地址不走代理。
func httpProxyFunc() func(*http.Request) (*url.URL, error) {
	fn := httpproxy.FromEnvironment().ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return fn(req.URL)
	}
}

// contextDialer 适配不支持 context 的 proxy.Dialer
type contextDialer struct {
	proxy.Dialer
}

func (d contextDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.Dial(network, address)
}

// ============================================================================
//                              生命周期
// ============================================================================

// Start 订阅系统网络变化，用于清空结果缓存与统计
func (c *Checker) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unsubscribe != nil {
		return nil
	}
	unsub, err := c.notifier.Subscribe(c.onNetworkChange)
	if err != nil {
		return fmt.Errorf("subscribe network changes: %w", err)
	}
	c.unsubscribe = unsub
	logger.Info("可达性检测已启动",
		"proxy", c.config.UseProxy,
		"cacheTTL", c.config.ResultCacheTTL)
	return nil
}

// Stop 取消订阅
func (c *Checker) Stop() error {
	c.mu.Lock()
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsub != nil {
		unsub()
		logger.Info("可达性检测已停止")
	}
	return nil
}

func (c *Checker) onNetworkChange(ev netmon.NetworkEvent) {
	c.metrics.ObserveNetworkChange(ev)
	if c.cache != nil {
		c.cache.Purge()
	}
	if ev.Type.IsMajorChange() {
		logger.Info("网络可用性变化，清空可达性缓存", "event", ev.String())
		return
	}
	logger.Debug("网络变化，清空可达性缓存", "event", ev.String())
}

// ============================================================================
//                              检测
// ============================================================================

// IsReachable 检测主机是否可达
func (c *Checker) IsReachable(ctx context.Context, host types.Host) bool {
	err := c.Check(ctx, host)
	if err != nil {
		logger.Debug("主机不可达", "host", host.String(), "error", err)
		return false
	}
	return true
}

// Check 检测主机，返回不可达原因
//
// 同一主机的并发检测共享一次探测。共享探测不随任何调用方取消，
// 只受 ConnectTimeout / HTTPTimeout 限制；每个调用方各自等待自己的 ctx。
func (c *Checker) Check(ctx context.Context, host types.Host) error {
	if err := host.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	key := probeKey(host)
	if c.cache != nil {
		if r, ok := c.cache.Get(key); ok {
			return r.err
		}
	}

	probeCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		var gen uint64
		if c.cache != nil {
			gen = c.cache.Generation()
		}
		err := c.probe(probeCtx, host)
		if c.cache != nil && !c.cache.Add(gen, key, err) {
			logger.Debug("探测期间网络变化，丢弃结果", "host", host.String())
		}
		return probeOutcome{err}, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r := <-ch:
		return r.Val.(probeOutcome).err
	}
}

// probeOutcome 在 singleflight 中携带探测结果
type probeOutcome struct {
	err error
}

// probeKey 合并与缓存使用的键
func probeKey(host types.Host) string {
	if host.IsHTTP() {
		return host.URL(false, true)
	}
	return "tcp://" + host.Address()
}

func (c *Checker) probe(ctx context.Context, host types.Host) error {
	start := c.clock.Now()
	if host.IsHTTP() {
		_, err := c.httpGet(ctx, host)
		c.metrics.ObserveProbe(methodHTTP, err == nil, c.clock.Since(start))
		return err
	}
	err := c.dialTCP(ctx, c.dialer, host.Address())
	c.metrics.ObserveProbe(methodTCP, err == nil, c.clock.Since(start))
	return err
}

// dialTCP 建立 TCP 连接后立即关闭
func (c *Checker) dialTCP(ctx context.Context, d ContextDialer, address string) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectTimeout)
	defer cancel()

	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return err
	}
	return conn.Close()
}

// httpGet 发起 GET 请求，返回状态码
func (c *Checker) httpGet(ctx context.Context, host types.Host) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host.URL(false, true), nil)
	if err != nil {
		return 0, err
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, fmt.Errorf("%w: %d %s", types.ErrHTTPStatus,
			resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return resp.StatusCode, nil
}

// ============================================================================
//                              监控
// ============================================================================

// Monitor 创建网络变化监控器
func (c *Checker) Monitor(host types.Host, callback interfaces.Callback) interfaces.Monitor {
	return newNetworkMonitor(host, callback, c.notifier, c.clock, c.config.ChangeDebounce)
}
