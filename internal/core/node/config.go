package node

import (
	"github.com/dep2p/go-smartnode/config"
	"github.com/dep2p/go-smartnode/pkg/types"
)

const (
	// DefaultMaxFrameSize 默认帧上限（不含长度前缀）
	DefaultMaxFrameSize = 1 << 20

	// DefaultReadBufferSize 默认单次读取缓冲区大小
	DefaultReadBufferSize = 64 << 10
)

// Config 节点配置
type Config struct {
	// ID 节点标识
	ID types.NodeID

	// MaxFrameSize 帧体上限（message_type + 载荷）
	MaxFrameSize int

	// ReadBufferSize 单次挂起读取的缓冲区大小
	ReadBufferSize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxFrameSize:   DefaultMaxFrameSize,
		ReadBufferSize: DefaultReadBufferSize,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.ID == "" {
		return types.Errorf(types.ErrInvalidArgument, "node: empty node id")
	}
	if c.MaxFrameSize <= 1 {
		return types.Errorf(types.ErrInvalidArgument, "node: max frame size %d too small", c.MaxFrameSize)
	}
	if c.ReadBufferSize <= 0 {
		return types.Errorf(types.ErrInvalidArgument, "node: read buffer size %d", c.ReadBufferSize)
	}
	return nil
}

// WithID 设置节点标识
func (c Config) WithID(id types.NodeID) Config {
	c.ID = id
	return c
}

// ConfigFromUnified 从统一配置创建节点默认配置（ID 由调用方设置）
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg != nil {
		c.MaxFrameSize = cfg.Node.MaxFrameSize
		c.ReadBufferSize = cfg.Node.ReadBufferSize
	}
	return c
}
