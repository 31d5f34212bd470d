package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-smartnode/config"
)

// Config 指标配置
type Config struct {
	// Enabled 是否启用指标收集
	Enabled bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{Enabled: true}
}

// ConfigFromUnified 从统一配置创建指标配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{Enabled: cfg.Metrics.Enabled}
}

// Params 指标模块依赖
type Params struct {
	fx.In

	Config     Config                `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// Result 指标模块输出
type Result struct {
	fx.Out

	Nodes     *NodeCollectors
	Simulator *Simulator
}

// Module 返回 Fx 模块
//
// 未提供 Registerer 时使用独立的 prometheus.Registry。
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(Provide),
	)
}

// Provide 创建收集器；禁用时返回 nil（所有方法 nil 安全）
func Provide(p Params) (Result, error) {
	if !p.Config.Enabled {
		return Result{}, nil
	}
	reg := p.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	nodes, err := NewNodeCollectors(reg)
	if err != nil {
		return Result{}, err
	}
	sim, err := NewSimulator(reg)
	if err != nil {
		return Result{}, err
	}
	return Result{Nodes: nodes, Simulator: sim}, nil
}
