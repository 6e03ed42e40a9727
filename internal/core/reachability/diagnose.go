package reachability

import (
	"context"
	"net"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-reachability/internal/core/netmon"
	"github.com/dep2p/go-reachability/pkg/types"
)

// Diagnose 诊断到主机的网络路径
//
// 网络层面的失败都记录在报告里；只有主机无效或 ctx 被取消时返回错误。
func (c *Checker) Diagnose(ctx context.Context, host types.Host) (*types.Diagnosis, error) {
	if err := host.Validate(); err != nil {
		return nil, err
	}

	d := &types.Diagnosis{Host: host, StartedAt: c.clock.Now()}

	// 1. 本机接口
	snap, err := c.lister()
	if err != nil {
		logger.Warn("枚举网络接口失败", "error", err)
		d.InterfaceError = err.Error()
	} else {
		d.Interfaces = netmon.ActiveInterfaces(snap)
		d.Online = len(d.Interfaces) > 0
	}

	// 2. DNS 解析
	addrs, err := c.resolver.LookupIPAddr(ctx, host.Hostname)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		d.ResolveError = err.Error()
	}
	for _, a := range addrs {
		d.ResolvedAddrs = append(d.ResolvedAddrs, a.String())
	}

	// 3. 逐个地址 TCP 拨号
	d.Dials = c.dialAll(ctx, addrs, host.Port)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	// 4. HTTP 探测
	if host.IsHTTP() {
		status, err := c.httpGet(ctx, host)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		d.HTTPStatus = status
		if err != nil {
			d.HTTPError = err.Error()
		}
		d.Reachable = err == nil
	} else {
		for _, r := range d.Dials {
			if r.OK() {
				d.Reachable = true
				break
			}
		}
	}

	d.Duration = c.clock.Since(d.StartedAt)
	logger.Info("网络诊断完成", "host", host.String(), "result", d.Summary())
	return d, nil
}

// dialAll 并发拨号所有解析地址，结果顺序与 addrs 一致
func (c *Checker) dialAll(ctx context.Context, addrs []net.IPAddr, port int) []types.DialResult {
	if len(addrs) == 0 {
		return nil
	}

	results := make([]types.DialResult, len(addrs))
	var g errgroup.Group
	g.SetLimit(c.config.DiagnoseConcurrency)

	for i, a := range addrs {
		g.Go(func() error {
			address := net.JoinHostPort(a.String(), strconv.Itoa(port))
			start := c.clock.Now()
			err := c.dialTCP(ctx, c.direct, address)

			results[i] = types.DialResult{
				Address: address,
				Latency: c.clock.Since(start),
			}
			if err != nil {
				results[i].Error = err.Error()
			}
			logger.Debug("诊断拨号", "address", address, "error", err)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
