// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON / YAML 加载和保存配置
//   - 支持预设配置（simulation/network）
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Simulator.AutoStart = true
//
//	// 从文件加载（按扩展名选择 JSON 或 YAML）
//	cfg, err := config.LoadFile("smartnode.json")
package config

// Config 是 smartnode 的完整配置结构
//
// 配置按照功能模块组织：
//   - Simulator: 确定性虚拟网络
//   - Transport: 真实传输（TCP）
//   - Protocols: 智能协议定义目录与预加载
//   - Node: 节点帧与缓冲参数
//   - Metrics: Prometheus 指标
//   - Nodes: 启动时创建的节点
type Config struct {
	// Simulator 模拟器配置
	Simulator SimulatorConfig `json:"simulator" yaml:"simulator"`

	// Transport 传输层配置
	Transport TransportConfig `json:"transport" yaml:"transport"`

	// Protocols 协议配置
	Protocols ProtocolsConfig `json:"protocols" yaml:"protocols"`

	// Node 节点默认参数
	Node NodeConfig `json:"node" yaml:"node"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Nodes 启动时创建的节点
	Nodes []NodeSpec `json:"nodes,omitempty" yaml:"nodes,omitempty"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Simulator: DefaultSimulatorConfig(),
		Transport: DefaultTransportConfig(),
		Protocols: DefaultProtocolsConfig(),
		Node:      DefaultNodeConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
//
// 检查所有子配置是否有效，如果发现无效配置则返回错误。
func (c *Config) Validate() error {
	if err := c.Simulator.Validate(); err != nil {
		return err
	}
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	if err := c.Protocols.Validate(); err != nil {
		return err
	}
	if err := c.Node.Validate(); err != nil {
		return err
	}
	return validateNodes(c.Nodes)
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否注册 Prometheus 指标
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{Enabled: true}
}
