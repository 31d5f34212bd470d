package transport

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-smartnode/internal/util/idgen"
	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/lib/log"
)

var logger = log.Logger("core/transport")

// FactoryGroup 传输工厂的 fx 值组名
const FactoryGroup = `group:"transport_factories"`

// AsFactory 把构造函数注解为传输工厂值组成员
func AsFactory(ctor any) any {
	return fx.Annotate(ctor,
		fx.As(new(pkgif.TransportFactory)),
		fx.ResultTags(FactoryGroup),
	)
}

// registryInput 注册表依赖
type registryInput struct {
	fx.In

	Factories []pkgif.TransportFactory `group:"transport_factories"`
}

// registryOutput 注册表输出
type registryOutput struct {
	fx.Out

	Registry *Registry
	Resolver pkgif.TransportResolver
}

// Module 返回 Fx 模块
//
// 提供共享的 ConnectionID 生成器与按 kind 分派的注册表，
// 具体工厂由 tcp.Module() 与 simulator.Module() 加入值组。
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(idgen.New),
		fx.Provide(provideRegistry),
	)
}

func provideRegistry(in registryInput) (registryOutput, error) {
	r, err := NewRegistry(in.Factories...)
	if err != nil {
		return registryOutput{}, err
	}
	logger.Info("传输注册表就绪", "kinds", r.Kinds())
	return registryOutput{Registry: r, Resolver: r}, nil
}
