package config

import (
	"fmt"
	"strings"
)

// ProtocolsConfig 智能协议配置
type ProtocolsConfig struct {
	// Dir 协议定义目录，每个协议位于 <dir>/<id>/protocol.yaml
	Dir string `json:"dir" yaml:"dir"`

	// Preload 启动时加载的协议
	Preload []string `json:"preload,omitempty" yaml:"preload,omitempty"`
}

// DefaultProtocolsConfig 返回默认协议配置
func DefaultProtocolsConfig() ProtocolsConfig {
	return ProtocolsConfig{
		Dir: "protocols",
	}
}

// Validate 验证协议配置
func (c ProtocolsConfig) Validate() error {
	for _, id := range c.Preload {
		if id == "" || strings.HasPrefix(id, ".") || strings.ContainsAny(id, `/\`) {
			return fmt.Errorf("invalid protocol id %q in preload", id)
		}
	}
	return nil
}
