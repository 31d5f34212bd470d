package tcp

import (
	"time"

	"github.com/dep2p/go-smartnode/config"
)

// Kind TCP 地址类型
const Kind = "tcp"

// Config TCP 传输配置
type Config struct {
	// DialTimeout 拨号超时（0 表示不限制）
	DialTimeout time.Duration

	// KeepAlive TCP keep-alive 周期（负数关闭）
	KeepAlive time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		DialTimeout: 10 * time.Second,
		KeepAlive:   15 * time.Second,
	}
}

// ConfigFromUnified 从统一配置创建 TCP 配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg != nil {
		c.DialTimeout = cfg.Transport.TCP.DialTimeout.Duration()
		c.KeepAlive = cfg.Transport.TCP.KeepAlive.Duration()
	}
	return c
}
