package protocol

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
)

// HandlerGroup 处理器值组名
const HandlerGroup = "protocol_handlers"

// NamedHandler 处理器目录条目
type NamedHandler struct {
	Name    string
	Handler pkgif.Handler
}

// AsHandler 把处理器加入 fx 值组，Registry 创建时注册到处理器目录
func AsHandler(name string, h pkgif.Handler) fx.Option {
	return fx.Provide(fx.Annotated{
		Group: HandlerGroup,
		Target: func() NamedHandler {
			return NamedHandler{Name: name, Handler: h}
		},
	})
}

// Params Registry 依赖参数
type Params struct {
	fx.In

	Config   Config
	Source   Source         `optional:"true"`
	Handlers []NamedHandler `group:"protocol_handlers"`
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("protocol",
		fx.Provide(ProvideRegistry),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideRegistry 创建注册表并注册值组中的处理器
func ProvideRegistry(p Params) (*Registry, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}
	src := p.Source
	if src == nil {
		src = DirSource{Root: p.Config.Dir}
	}
	reg := NewRegistry(src)
	for _, nh := range p.Handlers {
		if err := reg.RegisterHandler(nh.Name, nh.Handler); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

type lifecycleInput struct {
	fx.In

	LC       fx.Lifecycle
	Config   Config
	Registry *Registry
}

// registerLifecycle 启动时预加载配置中的协议
func registerLifecycle(in lifecycleInput) {
	in.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			var err error
			for _, id := range in.Config.Preload {
				err = multierr.Append(err, in.Registry.Load(id))
			}
			return err
		},
	})
}
