package transport

import (
	"net"
	"net/url"
	"strings"

	"github.com/dep2p/go-smartnode/pkg/types"
)

// Address 解析后的传输地址
type Address struct {
	// Kind 传输类型（tcp / sim）
	Kind string

	// Host 主机部分（tcp 为 host:port，sim 为端点名）
	Host string

	// Query 查询参数（sim 的链路参数）
	Query url.Values

	raw string
}

// ParseAddress 解析 "kind://rest" 格式地址
func ParseAddress(s string) (Address, error) {
	kind, rest, ok := strings.Cut(s, "://")
	if !ok || kind == "" || rest == "" {
		return Address{}, types.Errorf(types.ErrInvalidArgument, "invalid address %q", s)
	}
	u, err := url.Parse(s)
	if err != nil {
		return Address{}, types.Errorf(types.ErrInvalidArgument, "invalid address %q: %v", s, err)
	}
	if u.Host == "" || (u.Path != "" && u.Path != "/") {
		return Address{}, types.Errorf(types.ErrInvalidArgument, "invalid address %q", s)
	}
	return Address{
		Kind:  strings.ToLower(kind),
		Host:  u.Host,
		Query: u.Query(),
		raw:   s,
	}, nil
}

// KindOf 返回地址的传输类型
func KindOf(s string) (string, error) {
	a, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return a.Kind, nil
}

// HostPort 校验并拆分 host:port（tcp 地址用）
func (a Address) HostPort() (host, port string, err error) {
	host, port, err = net.SplitHostPort(a.Host)
	if err != nil || port == "" {
		return "", "", types.Errorf(types.ErrInvalidArgument, "invalid host:port %q", a.Host)
	}
	return host, port, nil
}

// String 返回原始地址
func (a Address) String() string {
	if a.raw != "" {
		return a.raw
	}
	return a.Kind + "://" + a.Host
}

// Format 构造地址字符串
func Format(kind, host string) string {
	return kind + "://" + host
}
