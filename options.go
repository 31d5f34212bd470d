package smartnode

import (
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-smartnode/config"
	"github.com/dep2p/go-smartnode/internal/core/protocol"
	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
)

// Option 运行时配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 统一配置（选项按顺序修改）
	config *config.Config

	// 处理器目录
	handlers []protocol.NamedHandler

	// 协议定义来源（默认按 config.Protocols.Dir 读取目录）
	source protocol.Source

	// Prometheus 注册器（默认独立注册表）
	registerer prometheus.Registerer

	// 模拟器时钟（测试注入 clock.Mock）
	clock clock.Clock

	// 输出 fx 生命周期日志
	fxLogging bool

	// 额外的 fx 选项
	extra []fx.Option
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{
		config: config.NewConfig(),
	}
}

// WithConfig 使用给定配置（替换此前选项对配置的修改）
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		c := *cfg
		c.Protocols.Preload = append([]string(nil), cfg.Protocols.Preload...)
		c.Nodes = append([]config.NodeSpec(nil), cfg.Nodes...)
		o.config = &c
		return nil
	}
}

// WithConfigFile 从 JSON / YAML 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// WithPreset 应用预设（"simulation" / "network"）
func WithPreset(name string) Option {
	return func(o *options) error {
		return config.ApplyPreset(o.config, name)
	}
}

// WithProtocolDir 设置协议定义目录
func WithProtocolDir(dir string) Option {
	return func(o *options) error {
		o.config.Protocols.Dir = dir
		return nil
	}
}

// WithPreload 追加启动时加载的协议
func WithPreload(ids ...string) Option {
	return func(o *options) error {
		o.config.Protocols.Preload = append(o.config.Protocols.Preload, ids...)
		return nil
	}
}

// WithNode 追加启动时创建的节点
func WithNode(spec config.NodeSpec) Option {
	return func(o *options) error {
		o.config.Nodes = append(o.config.Nodes, spec)
		return nil
	}
}

// WithHandler 向处理器目录注册处理器
//
// 协议清单的 handlers 段按名称引用目录中的处理器。
func WithHandler(name string, h pkgif.Handler) Option {
	return func(o *options) error {
		if name == "" || h == nil {
			return fmt.Errorf("invalid handler %q", name)
		}
		o.handlers = append(o.handlers, protocol.NamedHandler{Name: name, Handler: h})
		return nil
	}
}

// WithProtocolSource 使用自定义的协议定义来源
func WithProtocolSource(src protocol.Source) Option {
	return func(o *options) error {
		o.source = src
		return nil
	}
}

// WithRegisterer 把指标注册到给定的 Prometheus 注册器
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithClock 设置模拟器自动推进使用的时钟
func WithClock(c clock.Clock) Option {
	return func(o *options) error {
		o.clock = c
		return nil
	}
}

// WithFxLogging 输出 fx 生命周期日志（zap development 格式）
func WithFxLogging(enable bool) Option {
	return func(o *options) error {
		o.fxLogging = enable
		return nil
	}
}

// WithFxOptions 追加 fx 选项（扩展模块、Populate 等）
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.extra = append(o.extra, opts...)
		return nil
	}
}
