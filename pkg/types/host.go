package types

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ============================================================================
//                              Scheme
// ============================================================================

// Scheme 连接协议
type Scheme string

// 已知协议
const (
	SchemeTCP   Scheme = "tcp"
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
	SchemeDAV   Scheme = "dav"
	SchemeDAVS  Scheme = "davs"
	SchemeFTP   Scheme = "ftp"
	SchemeFTPS  Scheme = "ftps"
	SchemeSFTP  Scheme = "sftp"
	SchemeSSH   Scheme = "ssh"
	SchemeSMB   Scheme = "smb"
)

var defaultPorts = map[Scheme]int{
	SchemeHTTP:  80,
	SchemeHTTPS: 443,
	SchemeDAV:   80,
	SchemeDAVS:  443,
	SchemeFTP:   21,
	SchemeFTPS:  990,
	SchemeSFTP:  22,
	SchemeSSH:   22,
	SchemeSMB:   445,
}

// DefaultPort 返回协议默认端口，未知协议返回 0
func (s Scheme) DefaultPort() int {
	return defaultPorts[s]
}

// IsHTTP 是否使用 HTTP 探测（WebDAV 也走 HTTP）
func (s Scheme) IsHTTP() bool {
	switch s {
	case SchemeHTTP, SchemeHTTPS, SchemeDAV, SchemeDAVS:
		return true
	default:
		return false
	}
}

// wire 返回 URL 中实际使用的协议名
func (s Scheme) wire() string {
	switch s {
	case SchemeDAV:
		return string(SchemeHTTP)
	case SchemeDAVS:
		return string(SchemeHTTPS)
	default:
		return string(s)
	}
}

// ============================================================================
//                              Host
// ============================================================================

// Host 待检测的远端主机
type Host struct {
	// Scheme 协议，决定探测方式
	Scheme Scheme

	// Hostname 主机名或 IP
	Hostname string

	// Port 端口
	Port int

	// Username 用户名（构造探测 URL 时不使用）
	Username string

	// Path 默认路径
	Path string

	// RawQuery 查询串（不含 "?"），随路径一起出现在探测 URL 中
	RawQuery string
}

// NewHost 以协议默认端口创建主机
func NewHost(scheme Scheme, hostname string) Host {
	return Host{
		Scheme:   scheme,
		Hostname: hostname,
		Port:     scheme.DefaultPort(),
	}
}

// ParseHost 解析主机描述
//
// 支持 scheme://[user@]host[:port][/path][?query] 以及裸 host:port（视为 tcp）。
// 片段（#...）被忽略。
// 未指定端口时使用协议默认端口。
func ParseHost(raw string) (Host, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Host{}, ErrEmptyHostname
	}

	if !strings.Contains(raw, "://") {
		hostname, portStr, err := net.SplitHostPort(raw)
		if err != nil {
			return Host{}, fmt.Errorf("parse host %q: %w", raw, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Host{}, fmt.Errorf("parse host %q: %w", raw, ErrInvalidPort)
		}
		h := Host{Scheme: SchemeTCP, Hostname: hostname, Port: port}
		return h, h.Validate()
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Host{}, fmt.Errorf("parse host %q: %w", raw, err)
	}

	h := Host{
		Scheme:   Scheme(strings.ToLower(u.Scheme)),
		Hostname: u.Hostname(),
		Path:     u.Path,
		RawQuery: u.RawQuery,
	}
	if u.User != nil {
		h.Username = u.User.Username()
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return Host{}, fmt.Errorf("parse host %q: %w", raw, ErrInvalidPort)
		}
		h.Port = port
	} else {
		h.Port = h.Scheme.DefaultPort()
		if h.Port == 0 {
			return Host{}, fmt.Errorf("parse host %q: %w: %s", raw, ErrUnknownScheme, h.Scheme)
		}
	}

	return h, h.Validate()
}

// Validate 验证主机
func (h Host) Validate() error {
	if h.Hostname == "" {
		return ErrEmptyHostname
	}
	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, h.Port)
	}
	return nil
}

// IsHTTP 是否使用 HTTP 探测
func (h Host) IsHTTP() bool {
	return h.Scheme.IsHTTP()
}

// Address 返回 host:port 形式的拨号地址
func (h Host) Address() string {
	return net.JoinHostPort(h.Hostname, strconv.Itoa(h.Port))
}

// URL 构造主机 URL
//
// 端口等于协议默认端口时省略；withPath 同时控制查询串。
func (h Host) URL(withUsername, withPath bool) string {
	u := url.URL{
		Scheme: h.Scheme.wire(),
		Host:   h.Hostname,
	}
	if h.Port != 0 && h.Port != h.Scheme.DefaultPort() {
		u.Host = h.Address()
	} else if strings.Contains(h.Hostname, ":") {
		u.Host = "[" + h.Hostname + "]"
	}
	if withUsername && h.Username != "" {
		u.User = url.User(h.Username)
	}

	u.Path = "/"
	if withPath && h.Path != "" {
		u.Path = h.Path
		if !strings.HasPrefix(u.Path, "/") {
			u.Path = "/" + u.Path
		}
	}
	if withPath {
		u.RawQuery = h.RawQuery
	}
	return u.String()
}

// String 返回日志友好的表示
func (h Host) String() string {
	return string(h.Scheme) + "://" + h.Address()
}
