package config

import (
	"errors"
	"fmt"
	"time"
)

// ValidateAll 验证整个配置的有效性
//
// 这是 Config.Validate() 的别名，提供更明确的语义。
// 它会递归验证所有子配置。
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并尝试自动修复常见问题
//
// 可修复的问题：
//   - 负的时长 -> 使用默认值
//   - 丢包率越界 -> 截断到 [0, 1]
//   - 非正的帧/缓冲大小 -> 使用默认值
//   - 自动推进但 tick 为 0 -> 使用默认 tick
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	sim := DefaultSimulatorConfig()
	if c.Simulator.TickInterval < 0 || (c.Simulator.AutoStart && c.Simulator.TickInterval == 0) {
		c.Simulator.TickInterval = sim.TickInterval
	}
	if c.Simulator.TraceCapacity < 0 {
		c.Simulator.TraceCapacity = 0
	}
	link := &c.Simulator.DefaultLink
	if link.Latency < 0 {
		link.Latency = 0
	}
	if link.Jitter < 0 {
		link.Jitter = 0
	}
	link.Loss = min(max(link.Loss, 0), 1)

	if c.Transport.TCP.DialTimeout < 0 {
		c.Transport.TCP.DialTimeout = Duration(10 * time.Second)
	}

	node := DefaultNodeConfig()
	if c.Node.MaxFrameSize <= 1 {
		c.Node.MaxFrameSize = node.MaxFrameSize
	}
	if c.Node.ReadBufferSize <= 0 {
		c.Node.ReadBufferSize = node.ReadBufferSize
	}

	// 验证修复后的配置
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed after fixes: %w", err)
	}

	return c, nil
}

// ValidateSubConfig 验证特定子配置
//
// 用于单独验证某个子配置而不验证整个配置树。
type ValidateSubConfig interface {
	Validate() error
}

var (
	_ ValidateSubConfig = SimulatorConfig{}
	_ ValidateSubConfig = LinkConfig{}
	_ ValidateSubConfig = TransportConfig{}
	_ ValidateSubConfig = ProtocolsConfig{}
	_ ValidateSubConfig = NodeConfig{}
)

// MustValidate 验证配置，如果失败则 panic
//
// 仅用于初始化阶段或测试代码。
// 生产代码应使用 Validate() 并处理错误。
func MustValidate(c *Config) {
	if err := c.Validate(); err != nil {
		panic(fmt.Sprintf("config validation failed: %v", err))
	}
}

// ValidateCompatibility 验证配置之间的兼容性
//
// 检查启动节点引用的协议是否可被加载：协议目录为空时，
// 节点使用的协议必须出现在预加载列表中。
func ValidateCompatibility(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Protocols.Dir != "" {
		return nil
	}

	preload := make(map[string]struct{}, len(c.Protocols.Preload))
	for _, id := range c.Protocols.Preload {
		preload[id] = struct{}{}
	}
	for _, n := range c.Nodes {
		if _, ok := preload[n.Protocol]; !ok {
			return fmt.Errorf("node %q uses protocol %q which is neither preloaded nor loadable (protocols.dir is empty)",
				n.ID, n.Protocol)
		}
	}
	return nil
}
