package simulator

import (
	"net/url"
	"strconv"
	"time"

	"github.com/dep2p/go-smartnode/config"
	"github.com/dep2p/go-smartnode/pkg/types"
)

// Kind 模拟地址类型
const Kind = "sim"

// LinkParams 链路参数
type LinkParams struct {
	// Latency 固定单向延迟
	Latency time.Duration

	// Jitter 抖动上限，每次投递在 [0, Jitter] 内均匀采样
	Jitter time.Duration

	// Loss 丢包概率 [0, 1]
	Loss float64
}

// Validate 校验参数
func (p LinkParams) Validate() error {
	if p.Latency < 0 {
		return types.Errorf(ErrInvalidLinkParams, "negative latency %v", p.Latency)
	}
	if p.Jitter < 0 {
		return types.Errorf(ErrInvalidLinkParams, "negative jitter %v", p.Jitter)
	}
	if p.Loss < 0 || p.Loss > 1 {
		return types.Errorf(ErrInvalidLinkParams, "loss %v outside [0,1]", p.Loss)
	}
	return nil
}

// parseLinkParams 从地址查询参数覆盖默认链路参数
//
// 支持 latency、jitter（time.ParseDuration 格式）与 loss（浮点数）。
func parseLinkParams(q url.Values, base LinkParams) (LinkParams, error) {
	p := base
	if v := q.Get("latency"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return p, types.Errorf(ErrInvalidLinkParams, "latency %q: %v", v, err)
		}
		p.Latency = d
	}
	if v := q.Get("jitter"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return p, types.Errorf(ErrInvalidLinkParams, "jitter %q: %v", v, err)
		}
		p.Jitter = d
	}
	if v := q.Get("loss"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, types.Errorf(ErrInvalidLinkParams, "loss %q: %v", v, err)
		}
		p.Loss = f
	}
	return p, p.Validate()
}

// Config 模拟器配置
type Config struct {
	// Seed 随机数种子（抖动与丢包）
	Seed int64

	// TickInterval 时钟驱动模式下每个 tick 推进的虚拟时间
	TickInterval time.Duration

	// AutoStart 运行时启动时自动 Start(TickInterval)
	AutoStart bool

	// TraceCapacity 保留的投递轨迹条数（0 关闭轨迹）
	TraceCapacity int

	// DefaultLink 地址未指定参数时使用的链路参数
	DefaultLink LinkParams
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Seed:          1,
		TickInterval:  100 * time.Millisecond,
		TraceCapacity: 4096,
		DefaultLink: LinkParams{
			Latency: 10 * time.Millisecond,
		},
	}
}

// Validate 校验配置
func (c Config) Validate() error {
	if c.TickInterval < 0 {
		return types.Errorf(types.ErrInvalidArgument, "negative tick interval %v", c.TickInterval)
	}
	if c.AutoStart && c.TickInterval == 0 {
		return ErrInvalidTick
	}
	if c.TraceCapacity < 0 {
		return types.Errorf(types.ErrInvalidArgument, "negative trace capacity %d", c.TraceCapacity)
	}
	return c.DefaultLink.Validate()
}

// ConfigFromUnified 从统一配置创建模拟器配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	sc := cfg.Simulator
	c.Seed = sc.Seed
	c.TickInterval = sc.TickInterval.Duration()
	c.AutoStart = sc.AutoStart
	c.TraceCapacity = sc.TraceCapacity
	c.DefaultLink = LinkParams{
		Latency: sc.DefaultLink.Latency.Duration(),
		Jitter:  sc.DefaultLink.Jitter.Duration(),
		Loss:    sc.DefaultLink.Loss,
	}
	return c
}
