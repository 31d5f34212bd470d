package protocol

import (
	"github.com/dep2p/go-smartnode/config"
	"github.com/dep2p/go-smartnode/pkg/types"
)

// Config 协议模块配置
type Config struct {
	// Dir 协议定义目录（<Dir>/<id>/protocol.yaml）
	Dir string

	// Preload 启动时加载的协议
	Preload []types.ProtocolID
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Dir: "protocols",
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	for _, id := range c.Preload {
		if err := ValidateID(id); err != nil {
			return err
		}
	}
	return nil
}

// WithPreload 追加启动时加载的协议
func (c Config) WithPreload(ids ...types.ProtocolID) Config {
	c.Preload = append(append([]types.ProtocolID(nil), c.Preload...), ids...)
	return c
}

// ConfigFromUnified 从统一配置创建协议模块配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	c.Dir = cfg.Protocols.Dir
	for _, id := range cfg.Protocols.Preload {
		c.Preload = append(c.Preload, types.ProtocolID(id))
	}
	return c
}
