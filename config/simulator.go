package config

import (
	"errors"
	"time"
)

// SimulatorConfig 模拟器配置
type SimulatorConfig struct {
	// Seed 随机数种子（抖动与丢包）
	Seed int64 `json:"seed" yaml:"seed"`

	// TickInterval 时钟驱动模式下每个 tick 推进的虚拟时间
	TickInterval Duration `json:"tick_interval" yaml:"tick_interval"`

	// AutoStart 运行时启动时自动开始推进
	AutoStart bool `json:"auto_start" yaml:"auto_start"`

	// TraceCapacity 保留的投递轨迹条数（0 关闭）
	TraceCapacity int `json:"trace_capacity" yaml:"trace_capacity"`

	// DefaultLink 地址未指定参数时的链路参数
	DefaultLink LinkConfig `json:"default_link" yaml:"default_link"`
}

// LinkConfig 模拟链路参数
type LinkConfig struct {
	// Latency 固定延迟
	Latency Duration `json:"latency" yaml:"latency"`

	// Jitter 附加在延迟上的随机抖动上限
	Jitter Duration `json:"jitter" yaml:"jitter"`

	// Loss 丢包概率 [0, 1]
	Loss float64 `json:"loss" yaml:"loss"`
}

// DefaultSimulatorConfig 返回默认模拟器配置
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		Seed:          1,
		TickInterval:  Duration(100 * time.Millisecond),
		TraceCapacity: 4096,
		DefaultLink: LinkConfig{
			Latency: Duration(10 * time.Millisecond),
		},
	}
}

// Validate 验证模拟器配置
func (c SimulatorConfig) Validate() error {
	if c.TickInterval < 0 {
		return errors.New("simulator tick_interval must be non-negative")
	}
	if c.AutoStart && c.TickInterval == 0 {
		return errors.New("simulator auto_start requires a positive tick_interval")
	}
	if c.TraceCapacity < 0 {
		return errors.New("simulator trace_capacity must be non-negative")
	}
	return c.DefaultLink.Validate()
}

// Validate 验证链路参数
func (c LinkConfig) Validate() error {
	if c.Latency < 0 {
		return errors.New("link latency must be non-negative")
	}
	if c.Jitter < 0 {
		return errors.New("link jitter must be non-negative")
	}
	if c.Loss < 0 || c.Loss > 1 {
		return errors.New("link loss must be within [0, 1]")
	}
	return nil
}
