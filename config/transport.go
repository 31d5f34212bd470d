package config

import (
	"errors"
	"time"
)

// TransportConfig 传输层配置
type TransportConfig struct {
	// TCP 配置
	TCP TCPConfig `json:"tcp" yaml:"tcp"`
}

// TCPConfig TCP 传输配置
type TCPConfig struct {
	// DialTimeout 拨号超时（0 表示不限）
	DialTimeout Duration `json:"dial_timeout" yaml:"dial_timeout"`

	// KeepAlive TCP KeepAlive 周期（负数关闭）
	KeepAlive Duration `json:"keep_alive" yaml:"keep_alive"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		TCP: TCPConfig{
			DialTimeout: Duration(10 * time.Second),
			KeepAlive:   Duration(15 * time.Second),
		},
	}
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	if c.TCP.DialTimeout < 0 {
		return errors.New("tcp dial_timeout must be non-negative")
	}
	return nil
}
