package config

import (
	"errors"
	"fmt"
)

// NodeConfig 节点默认参数
type NodeConfig struct {
	// MaxFrameSize 帧体上限（字节）
	MaxFrameSize int `json:"max_frame_size" yaml:"max_frame_size"`

	// ReadBufferSize 单次读取缓冲区大小（字节）
	ReadBufferSize int `json:"read_buffer_size" yaml:"read_buffer_size"`
}

// DefaultNodeConfig 返回默认节点参数
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		MaxFrameSize:   1 << 20,
		ReadBufferSize: 64 << 10,
	}
}

// Validate 验证节点参数
func (c NodeConfig) Validate() error {
	if c.MaxFrameSize <= 1 {
		return errors.New("node max_frame_size must be greater than 1")
	}
	if c.ReadBufferSize <= 0 {
		return errors.New("node read_buffer_size must be positive")
	}
	return nil
}

// NodeSpec 启动时创建的节点
type NodeSpec struct {
	// ID 节点标识，为空时自动生成
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Protocol 节点运行的协议（必须已加载或可从协议目录加载）
	Protocol string `json:"protocol" yaml:"protocol"`

	// Listen 监听地址（可选），例如 "sim://alice" 或 "tcp://127.0.0.1:9000"
	Listen string `json:"listen,omitempty" yaml:"listen,omitempty"`

	// Peers 已知对端
	Peers []PeerSpec `json:"peers,omitempty" yaml:"peers,omitempty"`
}

// PeerSpec 节点的已知对端
type PeerSpec struct {
	// ID 本地分配的对端标识
	ID uint32 `json:"id" yaml:"id"`

	// Address 对端地址
	Address string `json:"address" yaml:"address"`

	// Connect 启动时是否立即连接
	Connect bool `json:"connect,omitempty" yaml:"connect,omitempty"`
}

func validateNodes(nodes []NodeSpec) error {
	ids := make(map[string]struct{}, len(nodes))
	for i, n := range nodes {
		if n.Protocol == "" {
			return fmt.Errorf("nodes[%d]: protocol is required", i)
		}
		if n.ID != "" {
			if _, dup := ids[n.ID]; dup {
				return fmt.Errorf("nodes[%d]: duplicate node id %q", i, n.ID)
			}
			ids[n.ID] = struct{}{}
		}
		peers := make(map[uint32]struct{}, len(n.Peers))
		for j, p := range n.Peers {
			if p.Address == "" {
				return fmt.Errorf("nodes[%d].peers[%d]: address is required", i, j)
			}
			if _, dup := peers[p.ID]; dup {
				return fmt.Errorf("nodes[%d].peers[%d]: duplicate peer id %d", i, j, p.ID)
			}
			peers[p.ID] = struct{}{}
		}
	}
	return nil
}
