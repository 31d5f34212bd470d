package manager

import (
	"github.com/dep2p/go-smartnode/config"
	"github.com/dep2p/go-smartnode/internal/core/node"
)

// Config 管理器配置
type Config struct {
	// Node 新建节点使用的默认参数（ID 由 LaunchNode 覆盖）
	Node node.Config

	// Nodes 启动时创建的节点
	Nodes []config.NodeSpec
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{Node: node.DefaultConfig()}
}

// ConfigFromUnified 从统一配置创建管理器配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := Config{Node: node.ConfigFromUnified(cfg)}
	if cfg != nil {
		c.Nodes = append(c.Nodes, cfg.Nodes...)
	}
	return c
}
